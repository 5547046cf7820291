package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/darkchannel/backend/internal/config"
	"github.com/darkchannel/backend/internal/repositories"
)

type fakePool struct{}

func (fakePool) Acquire(context.Context) (*pgxpool.Conn, error) {
	return nil, errors.New("not implemented")
}

func (fakePool) Close() {}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestBuildDependencies(t *testing.T) {
	cfg := config.Config{
		RateLimitPerMinute: 60,
		ObjectStore:        config.ObjectStoreConfig{Bucket: "test-bucket", Endpoint: "http://localhost:9000", Region: "us-east-1"},
	}

	t.Setenv("AWS_ACCESS_KEY_ID", "test")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "test")

	deps, cleanup := buildDependencies(context.Background(), cfg, fakePool{}, testLogger())
	if cleanup == nil {
		t.Fatal("expected cleanup function")
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		cleanup(ctx)
	}()

	if deps.Users == nil {
		t.Fatal("expected user repository to be configured")
	}
	if deps.Videos == nil {
		t.Fatal("expected video repository to be configured")
	}
	if deps.Channels == nil {
		t.Fatal("expected channel repository to be configured")
	}
	if deps.Genres == nil {
		t.Fatal("expected genre repository to be configured")
	}
	if deps.Ledger == nil {
		t.Fatal("expected credit ledger to be configured")
	}
	if deps.Workflow == nil {
		t.Fatal("expected workflow client to be configured")
	}
	if deps.Payments == nil {
		t.Fatal("expected payment provider to be configured")
	}
	if deps.Limiter == nil {
		t.Fatal("expected rate limiter to be configured")
	}
	if deps.Archiver == nil {
		t.Fatal("expected render archiver to be configured")
	}
}

func TestBuildDependenciesDegraded(t *testing.T) {
	deps, cleanup := buildDependencies(context.Background(), config.Config{RateLimitPerMinute: 60}, nil, testLogger())
	defer cleanup(context.Background())

	if _, ok := deps.Users.(repositories.DisabledUserRepository); !ok {
		t.Fatalf("expected disabled user repository, got %T", deps.Users)
	}
	if _, ok := deps.Videos.(repositories.DisabledVideoRepository); !ok {
		t.Fatalf("expected disabled video repository, got %T", deps.Videos)
	}
	if deps.Sealer != nil {
		t.Fatal("expected no channel sealer without a cipher key")
	}
	if deps.Archiver != nil {
		t.Fatal("expected no archiver without an object-store bucket")
	}
}

func TestBuildDependenciesSealer(t *testing.T) {
	cfg := config.Config{
		RateLimitPerMinute: 60,
		ChannelCipherKey:   "BwcHBwcHBwcHBwcHBwcHBwcHBwcHBwcHBwcHBwcHBwc=",
	}

	deps, cleanup := buildDependencies(context.Background(), cfg, nil, testLogger())
	defer cleanup(context.Background())

	if deps.Sealer == nil {
		t.Fatal("expected channel sealer to be configured")
	}
}

package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/darkchannel/backend/internal/archive"
	"github.com/darkchannel/backend/internal/auth"
	"github.com/darkchannel/backend/internal/config"
	"github.com/darkchannel/backend/internal/credits"
	"github.com/darkchannel/backend/internal/db"
	"github.com/darkchannel/backend/internal/handlers"
	"github.com/darkchannel/backend/internal/middleware"
	"github.com/darkchannel/backend/internal/payments"
	"github.com/darkchannel/backend/internal/repositories"
	"github.com/darkchannel/backend/internal/secrets"
	"github.com/darkchannel/backend/internal/storage"
	"github.com/darkchannel/backend/internal/workflow"
)

// buildDependencies wires together concrete implementations used by the HTTP
// handlers. A nil pool selects the degraded no-database mode: reads answer
// empty, writes answer 501. The returned cleanup stops background workers.
func buildDependencies(ctx context.Context, cfg config.Config, pool db.Pool, logger *slog.Logger) (handlers.Dependencies, func(context.Context)) {
	deps := handlers.Dependencies{
		Workflow: workflow.NewClient(workflow.Config{
			ScreenplayURL: cfg.N8N.ScreenplayURL,
			VideoURL:      cfg.N8N.VideoURL,
			Timeout:       cfg.N8N.Timeout,
		}, logger),
		Secret:   workflow.NewSecretVerifier(cfg.N8N.CallbackSecret),
		Payments: payments.NewProvider(cfg.Payments),
		Limiter:  middleware.NewClientRateLimiter(cfg.RateLimitPerMinute, time.Minute, 20, 10*time.Minute),
		Version:  version,
	}

	resolver := handlers.TokenResolver{
		AllowAnon:      cfg.Auth.AllowAnon,
		AllowAnonAdmin: cfg.Auth.AllowAnonAdmin,
		AnonEmail:      cfg.Auth.AnonEmail,
	}
	if cfg.Auth.JWTSecret != "" {
		verifier, err := auth.NewVerifier(auth.Config{Secret: cfg.Auth.JWTSecret})
		if err != nil {
			logger.Error("configure token verifier", "error", err)
		} else {
			resolver.Verifier = verifier
		}
	} else {
		logger.Warn("no identity-provider secret configured, bearer tokens cannot be verified")
	}
	deps.Identity = resolver

	if cfg.ChannelCipherKey != "" {
		cipher, err := secrets.NewCipher(cfg.ChannelCipherKey)
		if err != nil {
			logger.Error("configure channel cipher", "error", err)
		} else {
			deps.Sealer = cipher
		}
	}

	cleanup := func(context.Context) {}

	if pool == nil {
		deps.Users = repositories.DisabledUserRepository{}
		deps.Videos = repositories.DisabledVideoRepository{}
		deps.Channels = repositories.DisabledChannelRepository{}
		deps.Genres = repositories.DisabledGenreRepository{}
		deps.Ledger = credits.DisabledLedger{}
		return deps, cleanup
	}

	videoRepo := repositories.NewPostgresVideoRepository(pool)
	deps.Users = repositories.NewPostgresUserRepository(pool)
	deps.Videos = videoRepo
	deps.Channels = repositories.NewPostgresChannelRepository(pool)
	deps.Genres = repositories.NewPostgresGenreRepository(pool)
	deps.Ledger = credits.NewPostgresLedger(pool)

	if cfg.ObjectStore.Bucket != "" {
		store, err := storage.NewS3Storage(ctx, cfg.ObjectStore)
		if err != nil {
			logger.Error("configure render archive storage", "bucket", cfg.ObjectStore.Bucket, "error", err)
		} else {
			archiver := archive.NewArchiver(store, videoRepo, archive.Config{}, logger)
			deps.Archiver = archiver
			cleanup = func(ctx context.Context) {
				if err := archiver.Shutdown(ctx); err != nil {
					logger.Warn("archiver shutdown", "error", err)
				}
			}
		}
	}

	return deps, cleanup
}

package credits

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/cockroachdb/cockroach-go/v2/testserver"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/darkchannel/backend/internal/repositories"
)

var testPool *pgxpool.Pool

func TestMain(m *testing.M) {
	server, err := testserver.NewTestServer()
	if err != nil {
		fmt.Fprintf(os.Stderr, "start cockroach test server: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, server.PGURL().String())
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect to cockroach test server: %v\n", err)
		server.Stop()
		os.Exit(1)
	}

	if err := applyMigrations(ctx, pool); err != nil {
		fmt.Fprintf(os.Stderr, "apply migrations: %v\n", err)
		pool.Close()
		server.Stop()
		os.Exit(1)
	}

	testPool = pool

	code := m.Run()

	pool.Close()
	server.Stop()

	os.Exit(code)
}

func TestPostgresLedger(t *testing.T) {
	ctx := context.Background()
	resetUsers(t)

	ledger := NewPostgresLedger(testPool)

	// Missing accounts read as zero, matching lazy account creation.
	balance, err := ledger.Balance(ctx, "nobody@example.com")
	if err != nil {
		t.Fatalf("balance for missing account: %v", err)
	}
	if balance != 0 {
		t.Fatalf("expected zero balance, got %d", balance)
	}

	users := repositories.NewPostgresUserRepository(testPool)
	user, err := users.Ensure(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("ensure user: %v", err)
	}

	balance, err = ledger.Credit(ctx, user.Email, 30)
	if err != nil {
		t.Fatalf("credit: %v", err)
	}
	if balance != 30 {
		t.Fatalf("expected balance 30, got %d", balance)
	}

	remaining, err := ledger.Debit(ctx, user.Email, 12)
	if err != nil {
		t.Fatalf("debit: %v", err)
	}
	if remaining != 18 {
		t.Fatalf("expected balance 18, got %d", remaining)
	}

	if _, err := ledger.Debit(ctx, user.Email, 100); !errors.Is(err, repositories.ErrInsufficientCredits) {
		t.Fatalf("expected ErrInsufficientCredits, got %v", err)
	}
	balance, err = ledger.Balance(ctx, user.Email)
	if err != nil {
		t.Fatalf("balance after failed debit: %v", err)
	}
	if balance != 18 {
		t.Fatalf("expected failed debit to leave the balance untouched, got %d", balance)
	}

	if _, err := ledger.Credit(ctx, "nobody@example.com", 5); !errors.Is(err, repositories.ErrNotFound) {
		t.Fatalf("expected ErrNotFound crediting a missing account, got %v", err)
	}

	restored, err := ledger.Refund(ctx, user.Email, 12)
	if err != nil {
		t.Fatalf("refund: %v", err)
	}
	if restored != 30 {
		t.Fatalf("expected balance restored to 30, got %d", restored)
	}
}

func applyMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	migrationsDir := filepath.Join("..", "..", "migrations")
	entries, err := os.ReadDir(migrationsDir)
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		contents, err := os.ReadFile(filepath.Join(migrationsDir, entry.Name()))
		if err != nil {
			return fmt.Errorf("read migration %s: %w", entry.Name(), err)
		}

		if _, err := pool.Exec(ctx, string(contents)); err != nil {
			return fmt.Errorf("apply migration %s: %w", entry.Name(), err)
		}
	}

	return nil
}

func resetUsers(t *testing.T) {
	t.Helper()
	if _, err := testPool.Exec(context.Background(), "TRUNCATE TABLE users CASCADE"); err != nil {
		t.Fatalf("truncate users: %v", err)
	}
}

// Package credits implements the per-user credit pool. Credits are stored as
// a single non-negative counter on the users row; every mutation is a single
// atomic SQL statement so concurrent requests cannot over-debit a balance.
package credits

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/darkchannel/backend/internal/db"
	"github.com/darkchannel/backend/internal/repositories"
)

// Ledger exposes the credit operations used outside the batch-creation path:
// payment top-ups, admin adjustments, and balance reads.
type Ledger interface {
	Balance(ctx context.Context, email string) (int, error)
	// Debit subtracts amount from the balance. The decrement is conditional:
	// a balance below amount leaves the counter untouched and returns
	// repositories.ErrInsufficientCredits.
	Debit(ctx context.Context, email string, amount int) (int, error)
	// Credit adds amount to the balance and returns the new value.
	Credit(ctx context.Context, email string, amount int) (int, error)
	// Refund is a compensating credit; it is identical to Credit and exists
	// so call sites read as what they are.
	Refund(ctx context.Context, email string, amount int) (int, error)
}

// PostgresLedger is the database-backed ledger.
type PostgresLedger struct {
	pool db.Pool
}

// NewPostgresLedger constructs a ledger over the shared connection pool.
func NewPostgresLedger(pool db.Pool) *PostgresLedger {
	return &PostgresLedger{pool: pool}
}

// Balance returns the stored counter for the given email. A missing account
// reads as zero, matching the lazy account creation on first access.
func (l *PostgresLedger) Balance(ctx context.Context, email string) (int, error) {
	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return 0, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var balance int
	err = conn.QueryRow(ctx, `SELECT credits FROM users WHERE email = $1`, email).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("select credits: %w", err)
	}

	return balance, nil
}

// Debit performs an atomic conditional decrement.
func (l *PostgresLedger) Debit(ctx context.Context, email string, amount int) (int, error) {
	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return 0, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var remaining int
	err = conn.QueryRow(ctx, `
        UPDATE users
        SET credits = credits - $2, updated_at = NOW()
        WHERE email = $1 AND credits >= $2
        RETURNING credits
    `, email, amount).Scan(&remaining)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, repositories.ErrInsufficientCredits
		}
		return 0, fmt.Errorf("debit credits: %w", err)
	}

	return remaining, nil
}

// Credit performs an atomic increment and returns the new balance.
func (l *PostgresLedger) Credit(ctx context.Context, email string, amount int) (int, error) {
	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return 0, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var balance int
	err = conn.QueryRow(ctx, `
        UPDATE users
        SET credits = credits + $2, updated_at = NOW()
        WHERE email = $1
        RETURNING credits
    `, email, amount).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, repositories.ErrNotFound
		}
		return 0, fmt.Errorf("credit credits: %w", err)
	}

	return balance, nil
}

// Refund restores previously debited credits.
func (l *PostgresLedger) Refund(ctx context.Context, email string, amount int) (int, error) {
	return l.Credit(ctx, email, amount)
}

// DisabledLedger backs the degraded no-database mode: balances read as zero
// and mutations report the store as unavailable.
type DisabledLedger struct{}

func (DisabledLedger) Balance(context.Context, string) (int, error) {
	return 0, nil
}

func (DisabledLedger) Debit(context.Context, string, int) (int, error) {
	return 0, repositories.ErrNotConfigured
}

func (DisabledLedger) Credit(context.Context, string, int) (int, error) {
	return 0, repositories.ErrNotConfigured
}

func (DisabledLedger) Refund(context.Context, string, int) (int, error) {
	return 0, repositories.ErrNotConfigured
}

var _ Ledger = (*PostgresLedger)(nil)
var _ Ledger = DisabledLedger{}

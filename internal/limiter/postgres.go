package limiter

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier is the subset of a pgx pool the limiter needs.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Config tunes the failure window and lockout.
type Config struct {
	Window   time.Duration // failures older than this start a new count
	MaxFails int
	BlockFor time.Duration
}

// PG is a PostgreSQL-backed Limiter over the signin_limiter table.
type PG struct {
	q   Querier
	cfg Config
	now func() time.Time
}

// NewPG constructs a PostgreSQL-backed limiter.
func NewPG(q Querier, cfg Config) *PG {
	return &PG{q: q, cfg: cfg, now: time.Now}
}

// Allow reports the remaining lockout for k, or zero.
func (l *PG) Allow(ctx context.Context, k Key) (time.Duration, error) {
	const q = `SELECT blocked_until FROM signin_limiter WHERE email=$1 AND ip_hash=$2`
	var blockedUntil time.Time
	err := l.q.QueryRow(ctx, q, k.Email, k.IPHash).Scan(&blockedUntil)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if wait := blockedUntil.Sub(l.now()); wait > 0 {
		return wait, nil
	}
	return 0, nil
}

// Reset clears the failure count for k.
func (l *PG) Reset(ctx context.Context, k Key) error {
	const q = `DELETE FROM signin_limiter WHERE email=$1 AND ip_hash=$2`
	_, err := l.q.Exec(ctx, q, k.Email, k.IPHash)
	return err
}

// Fail bumps the failure count for k, restarting it when the previous failure
// fell outside the window, and blocks the bucket once MaxFails is reached.
func (l *PG) Fail(ctx context.Context, k Key) (time.Duration, error) {
	const q = `
INSERT INTO signin_limiter AS s (email, ip_hash, fail_count, updated_at)
VALUES ($1, $2, 1, now())
ON CONFLICT (email, ip_hash) DO UPDATE
SET fail_count = CASE
        WHEN now() - s.updated_at > make_interval(secs => $3) THEN 1
        ELSE s.fail_count + 1
    END,
    updated_at = now()
RETURNING fail_count`
	var fails int
	if err := l.q.QueryRow(ctx, q, k.Email, k.IPHash, l.cfg.Window.Seconds()).Scan(&fails); err != nil {
		return 0, err
	}
	if fails < l.cfg.MaxFails {
		return 0, nil
	}

	const block = `UPDATE signin_limiter SET blocked_until=$3 WHERE email=$1 AND ip_hash=$2`
	if _, err := l.q.Exec(ctx, block, k.Email, k.IPHash, l.now().Add(l.cfg.BlockFor)); err != nil {
		return 0, err
	}
	return l.cfg.BlockFor, nil
}

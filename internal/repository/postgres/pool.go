// Package postgres stores users, profiles and journal entries in PostgreSQL
// under row-level security.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/and161185/vibe-journal/internal/errs"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxPool is the subset of *pgxpool.Pool the repositories and the sign-in
// limiter rely on; pgxmock.PgxPoolIface satisfies it in tests.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	// BeginTx is used for every owner-scoped statement; see scoped.
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

// DB is the shared handle passed to every repository constructor.
type DB struct{ Pool PgxPool }

// New creates a new connection pool for the given DSN and verifies it.
func New(ctx context.Context, dsn string) (*DB, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return &DB{Pool: pool}, nil
}

func (db *DB) Close() { db.Pool.Close() }

// Postgres error codes the repositories translate into sentinels.
const (
	codeUniqueViolation       = "23505"
	codeCheckViolation        = "23514"
	codeNotNullViolation      = "23502"
	codeInvalidTextRep        = "22P02"
	codeInsufficientPrivilege = "42501" // also raised for row-level policy violations
)

// translate maps driver errors onto errs sentinels, keeping the original message.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return errs.ErrNotFound
	}
	var pg *pgconn.PgError
	if !errors.As(err, &pg) {
		return err
	}
	switch pg.Code {
	case codeUniqueViolation:
		return fmt.Errorf("%s: %w", pg.ConstraintName, errs.ErrAlreadyExists)
	case codeCheckViolation, codeNotNullViolation, codeInvalidTextRep:
		return fmt.Errorf("%s: %w", pg.Message, errs.ErrValidation)
	case codeInsufficientPrivilege:
		return fmt.Errorf("%s: %w", pg.Message, errs.ErrForbidden)
	}
	return err
}

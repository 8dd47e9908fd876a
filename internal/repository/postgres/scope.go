package postgres

import (
	"context"

	"github.com/and161185/vibe-journal/internal/errs"
	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
)

// setScopeSQL binds the row-level policies to caller for the rest of the transaction.
const setScopeSQL = `SELECT set_config('app.current_user_id', $1, true)`

// scoped runs fn inside a transaction in which the row-level policies see caller
// as the current user. The transaction commits when fn returns nil.
func (db *DB) scoped(ctx context.Context, caller uuid.UUID, fn func(tx pgx.Tx) error) (err error) {
	if caller == uuid.Nil {
		return errs.ErrUnauthorized
	}
	tx, err := db.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
			return
		}
		if e := tx.Commit(ctx); e != nil {
			err = e
		}
	}()

	if _, err = tx.Exec(ctx, setScopeSQL, caller.String()); err != nil {
		return err
	}
	return fn(tx)
}

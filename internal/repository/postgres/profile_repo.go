package postgres

import (
	"context"

	"github.com/and161185/vibe-journal/internal/model"
	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
)

// ProfileRepo implements ProfileRepository using PostgreSQL.
type ProfileRepo struct{ db *DB }

// NewProfileRepo constructs a profile repository.
func NewProfileRepo(db *DB) *ProfileRepo { return &ProfileRepo{db: db} }

const profileCols = `id, display_name, created_at, updated_at`

// Get returns the caller's profile.
func (r *ProfileRepo) Get(ctx context.Context, caller uuid.UUID) (*model.Profile, error) {
	const q = `SELECT ` + profileCols + ` FROM profiles WHERE id=$1`
	var p model.Profile
	err := r.db.scoped(ctx, caller, func(tx pgx.Tx) error {
		return tx.QueryRow(ctx, q, caller).Scan(&p.ID, &p.DisplayName, &p.CreatedAt, &p.UpdatedAt)
	})
	if err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

// SetDisplayName renames the caller's profile and returns it.
func (r *ProfileRepo) SetDisplayName(ctx context.Context, caller uuid.UUID, name string) (*model.Profile, error) {
	const q = `UPDATE profiles SET display_name=$2 WHERE id=$1 RETURNING ` + profileCols
	var p model.Profile
	err := r.db.scoped(ctx, caller, func(tx pgx.Tx) error {
		return tx.QueryRow(ctx, q, caller, name).Scan(&p.ID, &p.DisplayName, &p.CreatedAt, &p.UpdatedAt)
	})
	if err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

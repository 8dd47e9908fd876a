package postgres

import (
	"context"

	"github.com/and161185/vibe-journal/internal/model"
	"github.com/jackc/pgx/v5"
)

// UserRepo implements UserRepository using PostgreSQL.
type UserRepo struct{ db *DB }

// NewUserRepo constructs a user repository.
func NewUserRepo(db *DB) *UserRepo { return &UserRepo{db: db} }

// Create inserts a new user row. The insert runs scoped to the new user so the
// profile created by the users trigger passes the profiles insert policy.
func (r *UserRepo) Create(ctx context.Context, u *model.User, displayName string) error {
	const ins = `
INSERT INTO users (id, email, pwd_hash)
VALUES ($1, $2, $3)
RETURNING created_at`
	const rename = `UPDATE profiles SET display_name = $2 WHERE id = $1`

	err := r.db.scoped(ctx, u.ID, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, ins, u.ID, u.Email, u.PwdHash).Scan(&u.CreatedAt); err != nil {
			return err
		}
		if displayName == "" {
			return nil
		}
		_, err := tx.Exec(ctx, rename, u.ID, displayName)
		return err
	})
	return translate(err)
}

// GetByEmail selects a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	const q = `
SELECT id, email, pwd_hash, created_at
FROM users WHERE email=$1`
	var u model.User
	err := r.db.Pool.QueryRow(ctx, q, email).Scan(&u.ID, &u.Email, &u.PwdHash, &u.CreatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

// Package repository defines storage interfaces implemented by concrete backends.
package repository

import (
	"context"

	"github.com/and161185/vibe-journal/internal/model"
)

// UserRepository provides access to credential records.
type UserRepository interface {
	// Create inserts a new user; the store creates its profile in the same transaction
	// and names it displayName when non-empty.
	Create(ctx context.Context, u *model.User, displayName string) error
	// GetByEmail loads a user by normalized email.
	GetByEmail(ctx context.Context, email string) (*model.User, error)
}

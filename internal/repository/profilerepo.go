package repository

import (
	"context"

	"github.com/and161185/vibe-journal/internal/model"
	"github.com/gofrs/uuid/v5"
)

// ProfileRepository reads and updates the caller's own profile.
// Every call is scoped to caller by the row-level policies.
type ProfileRepository interface {
	// Get returns the caller's profile.
	Get(ctx context.Context, caller uuid.UUID) (*model.Profile, error)
	// SetDisplayName renames the caller's profile.
	SetDisplayName(ctx context.Context, caller uuid.UUID, name string) (*model.Profile, error)
}

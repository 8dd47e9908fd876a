package repository

import (
	"context"

	"github.com/and161185/vibe-journal/internal/model"
	"github.com/gofrs/uuid/v5"
)

// EntryRepository provides owner-scoped access to journal entries.
// caller is the authenticated identity every statement is scoped to.
type EntryRepository interface {
	// Create inserts one entry and returns it with generated id and timestamps.
	Create(ctx context.Context, caller uuid.UUID, e model.NewEntry) (*model.Entry, error)

	// List returns the caller's entries matching f, newest first.
	List(ctx context.Context, caller uuid.UUID, f model.EntryFilter) ([]model.Entry, error)

	// Get returns a single entry by id.
	Get(ctx context.Context, caller, id uuid.UUID) (*model.Entry, error)

	// Update applies a partial change and returns the updated entry.
	Update(ctx context.Context, caller, id uuid.UUID, p model.EntryPatch) (*model.Entry, error)

	// Delete removes an entry.
	Delete(ctx context.Context, caller, id uuid.UUID) error
}

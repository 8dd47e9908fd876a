package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/and161185/vibe-journal/internal/errs"
	"github.com/and161185/vibe-journal/internal/model"
	"github.com/and161185/vibe-journal/internal/repository"
	"github.com/gofrs/uuid/v5"
)

// EntryService defines operations over the caller's journal entries.
type EntryService interface {
	// Create validates and inserts one entry. Each call inserts a new row.
	Create(ctx context.Context, caller uuid.UUID, ne model.NewEntry) (*model.Entry, error)
	// List returns the caller's entries matching f, newest first.
	List(ctx context.Context, caller uuid.UUID, f model.EntryFilter) ([]model.Entry, error)
	// Get returns one entry.
	Get(ctx context.Context, caller, id uuid.UUID) (*model.Entry, error)
	// Update applies a validated partial change.
	Update(ctx context.Context, caller, id uuid.UUID, p model.EntryPatch) (*model.Entry, error)
	// Delete removes one entry.
	Delete(ctx context.Context, caller, id uuid.UUID) error
}

type EntryServiceImpl struct {
	repo repository.EntryRepository
}

// NewEntryService constructs EntryService.
func NewEntryService(repo repository.EntryRepository) *EntryServiceImpl {
	return &EntryServiceImpl{repo: repo}
}

// normalizeMedia keeps media fields only for media-carrying types and drops blanks.
func normalizeMedia(mt model.MediaType, url, annotation *string) (*string, *string) {
	if !mt.CarriesMedia() {
		return nil, nil
	}
	return optionalPtr(url), optionalPtr(annotation)
}

func optionalPtr(s *string) *string {
	if s == nil {
		return nil
	}
	return model.Optional(*s)
}

// Create validates input and delegates the insert.
// Validation rules:
// - content is non-empty after trimming and stored trimmed
// - zero category/media type take their defaults
// - media fields survive only for link, image and video
// - a zero owner means the caller; any other owner is left to the store's policy
func (s *EntryServiceImpl) Create(ctx context.Context, caller uuid.UUID, ne model.NewEntry) (*model.Entry, error) {
	if caller == uuid.Nil {
		return nil, errs.ErrUnauthorized
	}
	ne.Content = strings.TrimSpace(ne.Content)
	if ne.Content == "" {
		return nil, fmt.Errorf("content is blank: %w", errs.ErrValidation)
	}
	if ne.Category.IsZero() {
		ne.Category = model.DefaultCategory
	}
	if ne.MediaType.IsZero() {
		ne.MediaType = model.DefaultMediaType
	}
	ne.MediaURL, ne.MediaAnnotation = normalizeMedia(ne.MediaType, ne.MediaURL, ne.MediaAnnotation)
	if ne.UserID == uuid.Nil {
		ne.UserID = caller
	}

	e, err := s.repo.Create(ctx, caller, ne)
	if err != nil {
		return nil, fmt.Errorf("create entry: %w", err)
	}
	return e, nil
}

// List delegates to the repository; an empty filter lists everything.
func (s *EntryServiceImpl) List(ctx context.Context, caller uuid.UUID, f model.EntryFilter) ([]model.Entry, error) {
	if caller == uuid.Nil {
		return nil, errs.ErrUnauthorized
	}
	list, err := s.repo.List(ctx, caller, f)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	if list == nil {
		list = []model.Entry{}
	}
	return list, nil
}

// Get returns one entry of the caller.
func (s *EntryServiceImpl) Get(ctx context.Context, caller, id uuid.UUID) (*model.Entry, error) {
	if caller == uuid.Nil {
		return nil, errs.ErrUnauthorized
	}
	if id == uuid.Nil {
		return nil, fmt.Errorf("empty id: %w", errs.ErrValidation)
	}
	return s.repo.Get(ctx, caller, id)
}

// Update validates p with the same rules as Create. Switching to a media type
// that carries no media clears both media fields; setting media on an entry
// whose type carries none is rejected.
func (s *EntryServiceImpl) Update(ctx context.Context, caller, id uuid.UUID, p model.EntryPatch) (*model.Entry, error) {
	if caller == uuid.Nil {
		return nil, errs.ErrUnauthorized
	}
	if id == uuid.Nil {
		return nil, fmt.Errorf("empty id: %w", errs.ErrValidation)
	}
	if p.Content != nil {
		c := strings.TrimSpace(*p.Content)
		if c == "" {
			return nil, fmt.Errorf("content is blank: %w", errs.ErrValidation)
		}
		p.Content = &c
	}
	if p.MediaURL != nil {
		if p.MediaURL = model.Optional(*p.MediaURL); p.MediaURL == nil {
			p.ClearMediaURL = true
		}
	}
	if p.MediaAnnotation != nil {
		if p.MediaAnnotation = model.Optional(*p.MediaAnnotation); p.MediaAnnotation == nil {
			p.ClearMediaAnnotation = true
		}
	}
	if p.MediaType != nil && !p.MediaType.CarriesMedia() {
		p.MediaURL, p.MediaAnnotation = nil, nil
		p.ClearMediaURL, p.ClearMediaAnnotation = true, true
	}
	if p.IsEmpty() {
		return nil, fmt.Errorf("nothing to update: %w", errs.ErrValidation)
	}
	// Media may only be attached when the stored type carries it.
	if p.MediaType == nil && (p.MediaURL != nil || p.MediaAnnotation != nil) {
		cur, err := s.repo.Get(ctx, caller, id)
		if err != nil {
			return nil, fmt.Errorf("load entry: %w", err)
		}
		if !cur.MediaType.CarriesMedia() {
			return nil, fmt.Errorf("%s entries carry no media: %w", cur.MediaType, errs.ErrValidation)
		}
	}

	e, err := s.repo.Update(ctx, caller, id, p)
	if err != nil {
		return nil, fmt.Errorf("update entry: %w", err)
	}
	return e, nil
}

// Delete removes one entry of the caller.
func (s *EntryServiceImpl) Delete(ctx context.Context, caller, id uuid.UUID) error {
	if caller == uuid.Nil {
		return errs.ErrUnauthorized
	}
	if id == uuid.Nil {
		return fmt.Errorf("empty id: %w", errs.ErrValidation)
	}
	return s.repo.Delete(ctx, caller, id)
}

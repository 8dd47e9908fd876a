package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/and161185/vibe-journal/internal/errs"
	"github.com/and161185/vibe-journal/internal/model"
	"github.com/and161185/vibe-journal/internal/repository"
	"github.com/gofrs/uuid/v5"
)

// ProfileService reads and renames the caller's profile.
type ProfileService interface {
	Get(ctx context.Context, caller uuid.UUID) (*model.Profile, error)
	Rename(ctx context.Context, caller uuid.UUID, displayName string) (*model.Profile, error)
}

type ProfileServiceImpl struct {
	repo repository.ProfileRepository
}

// NewProfileService constructs ProfileService.
func NewProfileService(repo repository.ProfileRepository) *ProfileServiceImpl {
	return &ProfileServiceImpl{repo: repo}
}

func (s *ProfileServiceImpl) Get(ctx context.Context, caller uuid.UUID) (*model.Profile, error) {
	if caller == uuid.Nil {
		return nil, errs.ErrUnauthorized
	}
	return s.repo.Get(ctx, caller)
}

// Rename sets the display name; a blank name restores the default.
func (s *ProfileServiceImpl) Rename(ctx context.Context, caller uuid.UUID, displayName string) (*model.Profile, error) {
	if caller == uuid.Nil {
		return nil, errs.ErrUnauthorized
	}
	name := strings.TrimSpace(displayName)
	if name == "" {
		name = model.DefaultDisplayName
	}
	if utf8.RuneCountInString(name) > maxDisplayNameLen {
		return nil, fmt.Errorf("display name too long: %w", errs.ErrValidation)
	}
	return s.repo.SetDisplayName(ctx, caller, name)
}

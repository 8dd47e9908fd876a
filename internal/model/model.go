// Package model defines domain entities used by services, repositories and clients.
package model

import (
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"
)

// Tokens collects an issued access token and its session.
type Tokens struct {
	AccessToken string    `json:"access_token"`
	SessionID   uuid.UUID `json:"session_id"`
	UserID      uuid.UUID `json:"user_id"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Session is an authenticated caller as seen by the server.
type Session struct {
	ID        uuid.UUID `json:"session_id"`
	UserID    uuid.UUID `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// User is a credential record. The password is stored only as a PHC-encoded Argon2id hash.
type User struct {
	ID        uuid.UUID
	Email     string
	PwdHash   string
	CreatedAt time.Time
}

// Profile is the public face of a user; created by the database on signup.
type Profile struct {
	ID          uuid.UUID `json:"id"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// DefaultDisplayName is assigned to profiles created without one.
const DefaultDisplayName = "Anonymous"

// Entry is one journal record.
type Entry struct {
	ID              uuid.UUID `json:"id"`
	UserID          uuid.UUID `json:"user_id"`
	Content         string    `json:"content"`
	Category        Category  `json:"category"`
	MediaType       MediaType `json:"media_type"`
	MediaURL        *string   `json:"media_url,omitempty"`
	MediaAnnotation *string   `json:"media_annotation,omitempty"`
	Vibe            *Vibe     `json:"vibe,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// HasMedia reports whether any media field is present.
func (e Entry) HasMedia() bool {
	return e.MediaURL != nil || e.MediaAnnotation != nil
}

// NewEntry is an insert intent. UserID is the claimed owner; the store rejects
// it unless it equals the caller the write is scoped to.
type NewEntry struct {
	UserID          uuid.UUID
	Content         string
	Category        Category
	MediaType       MediaType
	MediaURL        *string
	MediaAnnotation *string
	Vibe            *Vibe
}

// EntryPatch is a partial update; nil fields are left unchanged.
// ClearVibe, ClearMediaURL and ClearMediaAnnotation set the column to NULL.
type EntryPatch struct {
	Content              *string
	Category             *Category
	MediaType            *MediaType
	MediaURL             *string
	MediaAnnotation      *string
	Vibe                 *Vibe
	ClearMediaURL        bool
	ClearMediaAnnotation bool
	ClearVibe            bool
}

// IsEmpty reports whether the patch changes nothing.
func (p EntryPatch) IsEmpty() bool {
	return p.Content == nil && p.Category == nil && p.MediaType == nil &&
		p.MediaURL == nil && p.MediaAnnotation == nil && p.Vibe == nil &&
		!p.ClearMediaURL && !p.ClearMediaAnnotation && !p.ClearVibe
}

// EntryFilter is a conjunction of optional equality predicates. A nil field means "all".
type EntryFilter struct {
	Category  *Category
	MediaType *MediaType
	Vibe      *Vibe
}

// Match reports whether e satisfies every set predicate.
// An entry without a vibe never matches a vibe predicate.
func (f EntryFilter) Match(e Entry) bool {
	if f.Category != nil && e.Category != *f.Category {
		return false
	}
	if f.MediaType != nil && e.MediaType != *f.MediaType {
		return false
	}
	if f.Vibe != nil && (e.Vibe == nil || *e.Vibe != *f.Vibe) {
		return false
	}
	return true
}

// IsAll reports whether no predicate is set.
func (f EntryFilter) IsAll() bool {
	return f.Category == nil && f.MediaType == nil && f.Vibe == nil
}

// Optional returns nil for blank input and the trimmed value otherwise.
// Blank optional text is stored as NULL, never as an empty string.
func Optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

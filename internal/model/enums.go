package model

import (
	"fmt"
	"strings"

	"github.com/and161185/vibe-journal/internal/errs"
)

// Category is the journal_category domain.
type Category struct{ v string }

// MediaType is the media_type domain.
type MediaType struct{ v string }

// Vibe is the entry_vibe domain. The zero value is never a valid mood;
// absence of a mood is modelled as *Vibe == nil.
type Vibe struct{ v string }

var (
	CategoryThoughts   = Category{"thoughts"}
	CategoryWishes     = Category{"wishes"}
	CategoryGrievances = Category{"grievances"}
	CategoryReflection = Category{"reflection"}
	CategoryGratitude  = Category{"gratitude"}

	MediaText               = MediaType{"text"}
	MediaVoice              = MediaType{"voice"}
	MediaAnnotatedMediaLink = MediaType{"annotated_media_link"}
	MediaImage              = MediaType{"image"}
	MediaVideo              = MediaType{"video"}

	VibeHappy    = Vibe{"happy"}
	VibeSad      = Vibe{"sad"}
	VibeAnxious  = Vibe{"anxious"}
	VibeCalm     = Vibe{"calm"}
	VibeExcited  = Vibe{"excited"}
	VibeAngry    = Vibe{"angry"}
	VibePeaceful = Vibe{"peaceful"}
	VibeConfused = Vibe{"confused"}
	VibeHopeful  = Vibe{"hopeful"}
	VibeNeutral  = Vibe{"neutral"}
)

// Declaration order of the persisted enums.
var (
	Categories = []Category{CategoryThoughts, CategoryWishes, CategoryGrievances, CategoryReflection, CategoryGratitude}
	MediaTypes = []MediaType{MediaText, MediaVoice, MediaAnnotatedMediaLink, MediaImage, MediaVideo}
	Vibes      = []Vibe{VibeHappy, VibeSad, VibeAnxious, VibeCalm, VibeExcited, VibeAngry, VibePeaceful, VibeConfused, VibeHopeful, VibeNeutral}
)

// DefaultCategory and DefaultMediaType mirror the column defaults.
var (
	DefaultCategory  = CategoryThoughts
	DefaultMediaType = MediaText
)

// ParseCategory maps a stored or user-supplied label to a Category.
func ParseCategory(s string) (Category, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, c := range Categories {
		if c.v == s {
			return c, nil
		}
	}
	return Category{}, fmt.Errorf("category %q: %w", s, errs.ErrValidation)
}

// ParseMediaType maps a stored or user-supplied label to a MediaType.
func ParseMediaType(s string) (MediaType, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, m := range MediaTypes {
		if m.v == s {
			return m, nil
		}
	}
	return MediaType{}, fmt.Errorf("media type %q: %w", s, errs.ErrValidation)
}

// ParseVibe maps a stored or user-supplied label to a Vibe.
func ParseVibe(s string) (Vibe, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, v := range Vibes {
		if v.v == s {
			return v, nil
		}
	}
	return Vibe{}, fmt.Errorf("vibe %q: %w", s, errs.ErrValidation)
}

// ParseOptionalVibe treats "" and "none" as no mood.
func ParseOptionalVibe(s string) (*Vibe, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return nil, nil
	}
	v, err := ParseVibe(s)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (c Category) String() string  { return c.v }
func (m MediaType) String() string { return m.v }
func (v Vibe) String() string      { return v.v }

// IsZero reports whether c was never parsed.
func (c Category) IsZero() bool  { return c.v == "" }
func (m MediaType) IsZero() bool { return m.v == "" }
func (v Vibe) IsZero() bool      { return v.v == "" }

// CarriesMedia reports whether entries of this type may reference external media.
func (m MediaType) CarriesMedia() bool {
	switch m {
	case MediaAnnotatedMediaLink, MediaImage, MediaVideo:
		return true
	}
	return false
}

// Label is the human-readable name shown on archive cards.
func (m MediaType) Label() string {
	switch m {
	case MediaText:
		return "Text"
	case MediaVoice:
		return "Voice"
	case MediaAnnotatedMediaLink:
		return "Annotated link"
	case MediaImage:
		return "Image"
	case MediaVideo:
		return "Video"
	}
	return ""
}

func (c Category) MarshalText() ([]byte, error) {
	if c.IsZero() {
		return nil, fmt.Errorf("empty category: %w", errs.ErrValidation)
	}
	return []byte(c.v), nil
}

func (c *Category) UnmarshalText(b []byte) error {
	p, err := ParseCategory(string(b))
	if err != nil {
		return err
	}
	*c = p
	return nil
}

func (m MediaType) MarshalText() ([]byte, error) {
	if m.IsZero() {
		return nil, fmt.Errorf("empty media type: %w", errs.ErrValidation)
	}
	return []byte(m.v), nil
}

func (m *MediaType) UnmarshalText(b []byte) error {
	p, err := ParseMediaType(string(b))
	if err != nil {
		return err
	}
	*m = p
	return nil
}

func (v Vibe) MarshalText() ([]byte, error) {
	if v.IsZero() {
		return nil, fmt.Errorf("empty vibe: %w", errs.ErrValidation)
	}
	return []byte(v.v), nil
}

func (v *Vibe) UnmarshalText(b []byte) error {
	p, err := ParseVibe(string(b))
	if err != nil {
		return err
	}
	*v = p
	return nil
}

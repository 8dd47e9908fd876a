package archive

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/and161185/vibe-journal/internal/model"
	"github.com/gofrs/uuid/v5"
)

const (
	excerptRunes    = 150
	timestampLayout = "Jan 2, 2006 3:04 PM"
)

// Color is a badge colour with its terminal escape.
type Color struct {
	Name string
	ANSI string
}

var (
	Blue   = Color{"blue", "\x1b[34m"}
	Purple = Color{"purple", "\x1b[35m"}
	Red    = Color{"red", "\x1b[31m"}
	Amber  = Color{"amber", "\x1b[33m"}
	Green  = Color{"green", "\x1b[32m"}
	Gray   = Color{"gray", "\x1b[90m"}
)

// CategoryColor is the fixed badge mapping.
func CategoryColor(c model.Category) Color {
	switch c {
	case model.CategoryThoughts:
		return Blue
	case model.CategoryWishes:
		return Purple
	case model.CategoryGrievances:
		return Red
	case model.CategoryReflection:
		return Amber
	case model.CategoryGratitude:
		return Green
	}
	return Gray
}

// VibeGlyph returns the mood glyph, or "" for no mood.
func VibeGlyph(v *model.Vibe) string {
	if v == nil {
		return ""
	}
	switch *v {
	case model.VibeHappy:
		return "😊"
	case model.VibeSad:
		return "😢"
	case model.VibeAnxious:
		return "😰"
	case model.VibeCalm:
		return "😌"
	case model.VibeExcited:
		return "🤩"
	case model.VibeAngry:
		return "😠"
	case model.VibePeaceful:
		return "🕊️"
	case model.VibeConfused:
		return "😕"
	case model.VibeHopeful:
		return "🌟"
	case model.VibeNeutral:
		return "😐"
	}
	return ""
}

// Media is the media block of a card. Link is empty when no URL was stored.
type Media struct {
	Label      string
	Link       string
	Annotation string
}

// Card is one rendered entry.
type Card struct {
	ID        uuid.UUID
	Category  string
	Color     Color
	Vibe      string
	Glyph     string
	CreatedAt string
	Excerpt   string
	Media     *Media
}

func cardFor(e model.Entry, loc *time.Location) Card {
	c := Card{
		ID:        e.ID,
		Category:  e.Category.String(),
		Color:     CategoryColor(e.Category),
		Glyph:     VibeGlyph(e.Vibe),
		CreatedAt: e.CreatedAt.In(loc).Format(timestampLayout),
		Excerpt:   truncate(e.Content, excerptRunes),
	}
	if e.Vibe != nil {
		c.Vibe = e.Vibe.String()
	}
	if e.MediaType.CarriesMedia() || e.HasMedia() {
		m := &Media{Label: e.MediaType.Label()}
		if e.MediaURL != nil {
			m.Link = *e.MediaURL
		}
		if e.MediaAnnotation != nil {
			m.Annotation = *e.MediaAnnotation
		}
		c.Media = m
	}
	return c
}

// truncate cuts s to at most n runes, marking the cut with an ellipsis.
func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return strings.TrimRight(string(r[:n]), " \t\n") + "…"
}

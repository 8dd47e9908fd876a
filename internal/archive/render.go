package archive

import (
	"fmt"
	"io"
	"strings"

	"github.com/and161185/vibe-journal/internal/model"
)

const ansiReset = "\x1b[0m"

// RenderText writes the view to a terminal. Colour escapes are emitted only when color is set.
func RenderText(w io.Writer, v *View, color bool) error {
	st := v.State()
	if st.Phase != PhaseReady {
		if st.Message == "" {
			return nil
		}
		_, err := fmt.Fprintln(w, st.Message)
		return err
	}

	badge := func(c Card) string {
		label := "[" + strings.ToUpper(c.Category) + "]"
		if !color {
			return label
		}
		return c.Color.ANSI + label + ansiReset
	}

	var b strings.Builder
	cards := v.Cards()
	for i, c := range cards {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s %s", badge(c), c.CreatedAt)
		if c.Glyph != "" {
			fmt.Fprintf(&b, " %s %s", c.Glyph, c.Vibe)
		}
		fmt.Fprintf(&b, "  id=%s\n  %s\n", c.ID, c.Excerpt)
		if c.Media != nil {
			fmt.Fprintf(&b, "  %s", c.Media.Label)
			if c.Media.Link != "" {
				fmt.Fprintf(&b, ": %s", c.Media.Link)
			}
			b.WriteString("\n")
			if c.Media.Annotation != "" {
				fmt.Fprintf(&b, "  %q\n", c.Media.Annotation)
			}
		}
	}
	b.WriteString(footer(len(cards), v.Total(), v.Filter()))
	_, err := io.WriteString(w, b.String())
	return err
}

// footer summarises how much of the archive is on screen.
func footer(shown, total int, f model.EntryFilter) string {
	if f.IsAll() {
		return fmt.Sprintf("\n%d entries\n", total)
	}
	var active []string
	if f.Category != nil {
		active = append(active, "category="+f.Category.String())
	}
	if f.MediaType != nil {
		active = append(active, "type="+f.MediaType.String())
	}
	if f.Vibe != nil {
		active = append(active, "vibe="+f.Vibe.String())
	}
	return fmt.Sprintf("\nShowing %d of %d entries (%s)\n", shown, total, strings.Join(active, ", "))
}

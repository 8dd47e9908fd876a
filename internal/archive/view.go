// Package archive implements the filtered list of a user's own entries.
package archive

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/and161185/vibe-journal/internal/clientsession"
	"github.com/and161185/vibe-journal/internal/model"
)

// ErrRedirectToAuth means the view needs a signed-in user; the caller should
// send the user to the sign-in entry point. No fetch has happened.
var ErrRedirectToAuth = errors.New("sign in required")

const (
	MsgNoEntries  = "No entries yet. Write your first one!"
	MsgNoMatches  = "No entries match the selected filters."
	MsgLoadFailed = "Could not load your entries. Please try again."
)

// Fetcher reads the caller's entries, newest first.
type Fetcher interface {
	ListEntries(ctx context.Context, token string, f model.EntryFilter) ([]model.Entry, error)
}

// Notifier shows error messages to the user.
type Notifier interface {
	Failure(msg string)
}

// Phase is the coarse display state of the view.
type Phase int

const (
	// PhaseIdle is an unactivated view; nothing has been requested yet.
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseEmpty
	// PhaseError means no fetch has succeeded and the last one failed.
	PhaseError
	PhaseReady
)

// State is what the view should render right now.
type State struct {
	Phase   Phase
	Message string
}

// View holds the fetched entry set and the three filter selections.
// Filtering never triggers a fetch; only Activate and Refresh do.
type View struct {
	src  Fetcher
	note Notifier
	loc  *time.Location
	now  func() time.Time

	mu      sync.Mutex
	sess    *clientsession.Session
	entries []model.Entry
	loaded  bool
	loading bool
	failed  bool
	filter  model.EntryFilter
}

// New returns an inactive view. Timestamps are rendered in loc (time.Local when nil).
func New(src Fetcher, note Notifier, loc *time.Location) *View {
	if loc == nil {
		loc = time.Local
	}
	return &View{src: src, note: note, loc: loc, now: time.Now}
}

// Activate binds the view to sess and performs the initial fetch.
func (v *View) Activate(ctx context.Context, sess *clientsession.Session) error {
	if !sess.Valid(v.now()) {
		v.mu.Lock()
		v.sess = nil
		v.mu.Unlock()
		return ErrRedirectToAuth
	}
	v.mu.Lock()
	v.sess = sess
	v.mu.Unlock()
	return v.Refresh(ctx)
}

// Refresh refetches every entry. On failure the previous data is kept.
func (v *View) Refresh(ctx context.Context) error {
	v.mu.Lock()
	sess := v.sess
	if !sess.Valid(v.now()) {
		v.mu.Unlock()
		return ErrRedirectToAuth
	}
	v.loading = true
	v.mu.Unlock()

	list, err := v.src.ListEntries(ctx, sess.AccessToken, model.EntryFilter{})

	v.mu.Lock()
	defer v.mu.Unlock()
	v.loading = false
	if err != nil {
		v.failed = true
		v.note.Failure(MsgLoadFailed)
		return fmt.Errorf("list entries: %w", err)
	}
	v.entries = list
	v.loaded = true
	v.failed = false
	return nil
}

// selection parses a filter choice; "" and "all" clear it.
func selection(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != "" && !strings.EqualFold(s, "all")
}

func (v *View) SetCategoryFilter(s string) error {
	var c *model.Category
	if s, ok := selection(s); ok {
		p, err := model.ParseCategory(s)
		if err != nil {
			return err
		}
		c = &p
	}
	v.mu.Lock()
	v.filter.Category = c
	v.mu.Unlock()
	return nil
}

func (v *View) SetMediaTypeFilter(s string) error {
	var m *model.MediaType
	if s, ok := selection(s); ok {
		p, err := model.ParseMediaType(s)
		if err != nil {
			return err
		}
		m = &p
	}
	v.mu.Lock()
	v.filter.MediaType = m
	v.mu.Unlock()
	return nil
}

func (v *View) SetVibeFilter(s string) error {
	var vb *model.Vibe
	if s, ok := selection(s); ok {
		p, err := model.ParseVibe(s)
		if err != nil {
			return err
		}
		vb = &p
	}
	v.mu.Lock()
	v.filter.Vibe = vb
	v.mu.Unlock()
	return nil
}

// ResetFilters shows every entry again.
func (v *View) ResetFilters() {
	v.mu.Lock()
	v.filter = model.EntryFilter{}
	v.mu.Unlock()
}

func (v *View) Filter() model.EntryFilter {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.filter
}

// Visible returns the fetched entries matching every active filter, in fetch order.
func (v *View) Visible() []model.Entry {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.visibleLocked()
}

func (v *View) visibleLocked() []model.Entry {
	out := make([]model.Entry, 0, len(v.entries))
	for _, e := range v.entries {
		if v.filter.Match(e) {
			out = append(out, e)
		}
	}
	return out
}

// Loading reports whether a fetch is in flight.
func (v *View) Loading() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.loading
}

// Total is the number of fetched entries before filtering.
func (v *View) Total() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.entries)
}

// State is derived from the last fetch outcome. Once any fetch has succeeded
// a later failure keeps showing the previous entries.
func (v *View) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	switch {
	case v.loading && !v.loaded:
		return State{Phase: PhaseLoading, Message: "Loading…"}
	case !v.loaded && v.failed:
		return State{Phase: PhaseError, Message: MsgLoadFailed}
	case !v.loaded:
		return State{Phase: PhaseIdle}
	case len(v.entries) == 0:
		return State{Phase: PhaseEmpty, Message: MsgNoEntries}
	case len(v.visibleLocked()) == 0:
		return State{Phase: PhaseEmpty, Message: MsgNoMatches}
	}
	return State{Phase: PhaseReady}
}

// Cards renders the visible entries.
func (v *View) Cards() []Card {
	v.mu.Lock()
	defer v.mu.Unlock()
	vis := v.visibleLocked()
	out := make([]Card, 0, len(vis))
	for _, e := range vis {
		out = append(out, cardFor(e, v.loc))
	}
	return out
}

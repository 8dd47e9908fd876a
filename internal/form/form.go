// Package form implements the entry creation form: field state, validation
// and a single insert per submission.
package form

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/and161185/vibe-journal/internal/client"
	"github.com/and161185/vibe-journal/internal/clientsession"
	"github.com/and161185/vibe-journal/internal/errs"
	"github.com/and161185/vibe-journal/internal/model"
)

var (
	// ErrBusy is returned when Submit is called while another submission is in flight.
	ErrBusy = errors.New("submission in progress")
	// ErrEmptyContent is returned for blank or whitespace-only content.
	ErrEmptyContent = fmt.Errorf("content is required: %w", errs.ErrValidation)
)

// User-facing messages. Failures are reported generically.
const (
	MsgSignedOut    = "You need to sign in to save entries."
	MsgEmptyContent = "Write something before saving."
	MsgSaved        = "Entry saved."
	MsgSaveFailed   = "Could not save your entry. Please try again."
)

// Creator inserts an entry on behalf of the session holder.
type Creator interface {
	CreateEntry(ctx context.Context, token string, in client.EntryInput) (*model.Entry, error)
}

// Notifier shows success and error messages to the user.
type Notifier interface {
	Success(msg string)
	Failure(msg string)
}

// Form holds the state of one entry creation dialog.
type Form struct {
	creator Creator
	note    Notifier
	now     func() time.Time

	// OnCreated runs after a successful insert, typically to refetch the archive.
	OnCreated func(ctx context.Context)

	busy atomic.Bool

	mu         sync.Mutex
	open       bool
	content    string
	category   model.Category
	mediaType  model.MediaType
	mediaURL   string
	annotation string
	vibe       *model.Vibe
}

// New returns a closed form with default field values.
func New(creator Creator, note Notifier) *Form {
	f := &Form{creator: creator, note: note, now: time.Now}
	f.resetLocked()
	return f
}

func (f *Form) resetLocked() {
	f.content = ""
	f.category = model.DefaultCategory
	f.mediaType = model.DefaultMediaType
	f.mediaURL = ""
	f.annotation = ""
	f.vibe = nil
}

func (f *Form) Open() {
	f.mu.Lock()
	f.open = true
	f.mu.Unlock()
}

// Close hides the form. Field values are kept until the next successful submit.
func (f *Form) Close() {
	f.mu.Lock()
	f.open = false
	f.mu.Unlock()
}

func (f *Form) IsOpen() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.open
}

// Busy reports whether a submission is in flight; inputs are disabled meanwhile.
func (f *Form) Busy() bool { return f.busy.Load() }

func (f *Form) SetContent(s string) {
	f.mu.Lock()
	f.content = s
	f.mu.Unlock()
}

func (f *Form) SetCategory(s string) error {
	c, err := model.ParseCategory(s)
	if err != nil {
		return err
	}
	f.mu.Lock()
	f.category = c
	f.mu.Unlock()
	return nil
}

func (f *Form) SetMediaType(s string) error {
	m, err := model.ParseMediaType(s)
	if err != nil {
		return err
	}
	f.mu.Lock()
	f.mediaType = m
	f.mu.Unlock()
	return nil
}

func (f *Form) SetMediaURL(s string) {
	f.mu.Lock()
	f.mediaURL = s
	f.mu.Unlock()
}

func (f *Form) SetMediaAnnotation(s string) {
	f.mu.Lock()
	f.annotation = s
	f.mu.Unlock()
}

// SetVibe accepts a mood label; "" and "none" clear it.
func (f *Form) SetVibe(s string) error {
	v, err := model.ParseOptionalVibe(s)
	if err != nil {
		return err
	}
	f.mu.Lock()
	f.vibe = v
	f.mu.Unlock()
	return nil
}

// ShowsMediaFields reports whether the URL and annotation inputs are visible.
func (f *Form) ShowsMediaFields() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.mediaType.CarriesMedia()
}

// Values is a snapshot of the form fields.
type Values struct {
	Content         string
	Category        model.Category
	MediaType       model.MediaType
	MediaURL        string
	MediaAnnotation string
	Vibe            *model.Vibe
}

func (f *Form) Values() Values {
	f.mu.Lock()
	defer f.mu.Unlock()
	return Values{
		Content:         f.content,
		Category:        f.category,
		MediaType:       f.mediaType,
		MediaURL:        f.mediaURL,
		MediaAnnotation: f.annotation,
		Vibe:            f.vibe,
	}
}

// input builds the insert from a field snapshot. Hidden media fields are
// dropped and blank optional text becomes absent.
func (v Values) input(owner *clientsession.Session) (client.EntryInput, error) {
	content := strings.TrimSpace(v.Content)
	if content == "" {
		return client.EntryInput{}, ErrEmptyContent
	}
	in := client.EntryInput{
		UserID:    owner.UserID,
		Content:   content,
		Category:  v.Category,
		MediaType: v.MediaType,
		Vibe:      v.Vibe,
	}
	if v.MediaType.CarriesMedia() {
		in.MediaURL = model.Optional(v.MediaURL)
		in.MediaAnnotation = model.Optional(v.MediaAnnotation)
	}
	return in, nil
}

// Submit validates the fields and issues exactly one insert. On success the
// form is reset and closed and OnCreated runs; on failure the fields are kept.
func (f *Form) Submit(ctx context.Context, sess *clientsession.Session) (*model.Entry, error) {
	if !f.busy.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}
	defer f.busy.Store(false)

	if !sess.Valid(f.now()) {
		f.note.Failure(MsgSignedOut)
		return nil, clientsession.ErrNoSession
	}
	in, err := f.Values().input(sess)
	if err != nil {
		f.note.Failure(MsgEmptyContent)
		return nil, err
	}

	e, err := f.creator.CreateEntry(ctx, sess.AccessToken, in)
	if err != nil {
		f.note.Failure(MsgSaveFailed)
		return nil, fmt.Errorf("create entry: %w", err)
	}

	f.mu.Lock()
	f.resetLocked()
	f.open = false
	f.mu.Unlock()

	f.note.Success(MsgSaved)
	if f.OnCreated != nil {
		f.OnCreated(ctx)
	}
	return e, nil
}

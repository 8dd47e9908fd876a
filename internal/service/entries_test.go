package service

import (
	"context"
	"errors"
	"testing"

	"github.com/and161185/vibe-journal/internal/errs"
	"github.com/and161185/vibe-journal/internal/model"
	"github.com/and161185/vibe-journal/internal/repository"
	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/require"
)

// fakeEntries records calls and enforces ownership the way the store's policy does.
type fakeEntries struct {
	rows        []model.Entry
	createCalls int
	lastPatch   model.EntryPatch
	err         error
}

var _ repository.EntryRepository = (*fakeEntries)(nil)

func (f *fakeEntries) Create(_ context.Context, caller uuid.UUID, ne model.NewEntry) (*model.Entry, error) {
	f.createCalls++
	if f.err != nil {
		return nil, f.err
	}
	if ne.UserID != caller {
		return nil, errs.ErrForbidden
	}
	e := model.Entry{
		ID: uuid.Must(uuid.NewV4()), UserID: ne.UserID, Content: ne.Content,
		Category: ne.Category, MediaType: ne.MediaType,
		MediaURL: ne.MediaURL, MediaAnnotation: ne.MediaAnnotation, Vibe: ne.Vibe,
	}
	f.rows = append(f.rows, e)
	return &e, nil
}

func (f *fakeEntries) List(_ context.Context, caller uuid.UUID, flt model.EntryFilter) ([]model.Entry, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []model.Entry
	for _, e := range f.rows {
		if e.UserID == caller && flt.Match(e) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeEntries) Get(_ context.Context, caller, id uuid.UUID) (*model.Entry, error) {
	for _, e := range f.rows {
		if e.ID == id && e.UserID == caller {
			return &e, nil
		}
	}
	return nil, errs.ErrNotFound
}

func (f *fakeEntries) Update(ctx context.Context, caller, id uuid.UUID, p model.EntryPatch) (*model.Entry, error) {
	f.lastPatch = p
	return f.Get(ctx, caller, id)
}

func (f *fakeEntries) Delete(_ context.Context, caller, id uuid.UUID) error {
	for i, e := range f.rows {
		if e.ID == id && e.UserID == caller {
			f.rows = append(f.rows[:i], f.rows[i+1:]...)
			return nil
		}
	}
	return errs.ErrNotFound
}

func TestEntryCreate_BlankContentNeverWrites(t *testing.T) {
	t.Parallel()
	repo := &fakeEntries{}
	s := NewEntryService(repo)
	caller := uuid.Must(uuid.NewV4())

	for _, c := range []string{"", "  ", "\n\t "} {
		_, err := s.Create(context.Background(), caller, model.NewEntry{Content: c})
		require.ErrorIs(t, err, errs.ErrValidation)
	}
	require.Zero(t, repo.createCalls)
}

func TestEntryCreate_GratefulScenario(t *testing.T) {
	t.Parallel()
	repo := &fakeEntries{}
	s := NewEntryService(repo)
	caller := uuid.Must(uuid.NewV4())
	happy := model.VibeHappy

	e, err := s.Create(context.Background(), caller, model.NewEntry{
		Content:   "Grateful for today",
		Category:  model.CategoryGratitude,
		MediaType: model.MediaText,
		Vibe:      &happy,
	})
	require.NoError(t, err)
	require.Equal(t, caller, e.UserID)
	require.Equal(t, "Grateful for today", e.Content)
	require.Equal(t, model.CategoryGratitude, e.Category)
	require.Equal(t, model.VibeHappy, *e.Vibe)
	require.Nil(t, e.MediaURL)
	require.Nil(t, e.MediaAnnotation)
}

func TestEntryCreate_DefaultsTrimAndMediaRules(t *testing.T) {
	t.Parallel()
	repo := &fakeEntries{}
	s := NewEntryService(repo)
	caller := uuid.Must(uuid.NewV4())
	ctx := context.Background()

	url, blank := "https://example.com/a.png", "   "
	e, err := s.Create(ctx, caller, model.NewEntry{
		Content: "  hello  ", MediaURL: &url, MediaAnnotation: &blank,
	})
	require.NoError(t, err)
	require.Equal(t, "hello", e.Content)
	require.Equal(t, model.DefaultCategory, e.Category)
	require.Equal(t, model.DefaultMediaType, e.MediaType)
	require.Nil(t, e.MediaURL, "text entries carry no media")

	e, err = s.Create(ctx, caller, model.NewEntry{
		Content: "pic", MediaType: model.MediaImage, MediaURL: &blank, MediaAnnotation: &blank,
	})
	require.NoError(t, err)
	require.Nil(t, e.MediaURL)
	require.Nil(t, e.MediaAnnotation)
	require.False(t, e.HasMedia())

	e, err = s.Create(ctx, caller, model.NewEntry{
		Content: "pic", MediaType: model.MediaImage, MediaURL: &url,
	})
	require.NoError(t, err)
	require.Equal(t, url, *e.MediaURL)
}

func TestEntryCreate_DuplicatesAreSeparateRows(t *testing.T) {
	t.Parallel()
	repo := &fakeEntries{}
	s := NewEntryService(repo)
	caller := uuid.Must(uuid.NewV4())
	ne := model.NewEntry{Content: "same"}

	a, err := s.Create(context.Background(), caller, ne)
	require.NoError(t, err)
	b, err := s.Create(context.Background(), caller, ne)
	require.NoError(t, err)
	require.NotEqual(t, a.ID, b.ID)
	require.Len(t, repo.rows, 2)
}

func TestEntryCreate_ForgedOwnerRejected(t *testing.T) {
	t.Parallel()
	s := NewEntryService(&fakeEntries{})

	_, err := s.Create(context.Background(), uuid.Must(uuid.NewV4()), model.NewEntry{
		UserID: uuid.Must(uuid.NewV4()), Content: "x",
	})
	require.ErrorIs(t, err, errs.ErrForbidden)

	_, err = s.Create(context.Background(), uuid.Nil, model.NewEntry{Content: "x"})
	require.ErrorIs(t, err, errs.ErrUnauthorized)
}

func TestEntryList_FiltersAndEmpty(t *testing.T) {
	t.Parallel()
	repo := &fakeEntries{}
	s := NewEntryService(repo)
	caller := uuid.Must(uuid.NewV4())
	ctx := context.Background()

	list, err := s.List(ctx, caller, model.EntryFilter{})
	require.NoError(t, err)
	require.NotNil(t, list)
	require.Empty(t, list)

	_, _ = s.Create(ctx, caller, model.NewEntry{Content: "a", Category: model.CategoryWishes})
	_, _ = s.Create(ctx, caller, model.NewEntry{Content: "b", Category: model.CategoryGratitude})
	_, _ = s.Create(ctx, uuid.Must(uuid.NewV4()), model.NewEntry{Content: "other"})

	c := model.CategoryWishes
	list, err = s.List(ctx, caller, model.EntryFilter{Category: &c})
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "a", list[0].Content)

	repo.err = errors.New("read failed")
	_, err = s.List(ctx, caller, model.EntryFilter{})
	require.Error(t, err)
}

func TestEntryUpdate_Normalization(t *testing.T) {
	t.Parallel()
	repo := &fakeEntries{}
	s := NewEntryService(repo)
	caller := uuid.Must(uuid.NewV4())
	ctx := context.Background()
	e, err := s.Create(ctx, caller, model.NewEntry{Content: "x"})
	require.NoError(t, err)

	blank := "  "
	_, err = s.Update(ctx, caller, e.ID, model.EntryPatch{Content: &blank})
	require.ErrorIs(t, err, errs.ErrValidation)

	_, err = s.Update(ctx, caller, e.ID, model.EntryPatch{})
	require.ErrorIs(t, err, errs.ErrValidation)

	_, err = s.Update(ctx, caller, e.ID, model.EntryPatch{MediaURL: &blank})
	require.NoError(t, err)
	require.True(t, repo.lastPatch.ClearMediaURL)
	require.Nil(t, repo.lastPatch.MediaURL)

	voice := model.MediaVoice
	url := "https://x"
	_, err = s.Update(ctx, caller, e.ID, model.EntryPatch{MediaType: &voice, MediaURL: &url})
	require.NoError(t, err)
	require.Nil(t, repo.lastPatch.MediaURL)
	require.True(t, repo.lastPatch.ClearMediaURL)
	require.True(t, repo.lastPatch.ClearMediaAnnotation)

	_, err = s.Update(ctx, caller, uuid.Nil, model.EntryPatch{Content: &url})
	require.ErrorIs(t, err, errs.ErrValidation)
}

func TestEntryUpdate_MediaNeedsMediaType(t *testing.T) {
	t.Parallel()
	repo := &fakeEntries{}
	s := NewEntryService(repo)
	caller := uuid.Must(uuid.NewV4())
	ctx := context.Background()

	text, err := s.Create(ctx, caller, model.NewEntry{Content: "plain"})
	require.NoError(t, err)
	img, err := s.Create(ctx, caller, model.NewEntry{Content: "pic", MediaType: model.MediaImage})
	require.NoError(t, err)

	url := "www.example.com/cat.jpg"
	note := "cat"
	repo.lastPatch = model.EntryPatch{}
	_, err = s.Update(ctx, caller, text.ID, model.EntryPatch{MediaURL: &url})
	require.ErrorIs(t, err, errs.ErrValidation)
	_, err = s.Update(ctx, caller, text.ID, model.EntryPatch{MediaAnnotation: &note})
	require.ErrorIs(t, err, errs.ErrValidation)
	require.True(t, repo.lastPatch.IsEmpty(), "rejected patches never reach the store")

	_, err = s.Update(ctx, caller, uuid.Must(uuid.NewV4()), model.EntryPatch{MediaURL: &url})
	require.ErrorIs(t, err, errs.ErrNotFound)

	_, err = s.Update(ctx, caller, img.ID, model.EntryPatch{MediaURL: &url, MediaAnnotation: &note})
	require.NoError(t, err)
	require.Equal(t, url, *repo.lastPatch.MediaURL)

	video := model.MediaVideo
	_, err = s.Update(ctx, caller, text.ID, model.EntryPatch{MediaType: &video, MediaURL: &url})
	require.NoError(t, err)
	require.Equal(t, url, *repo.lastPatch.MediaURL)
}

func TestEntryGet(t *testing.T) {
	t.Parallel()
	repo := &fakeEntries{}
	s := NewEntryService(repo)
	caller := uuid.Must(uuid.NewV4())
	ctx := context.Background()
	e, err := s.Create(ctx, caller, model.NewEntry{Content: "x"})
	require.NoError(t, err)

	got, err := s.Get(ctx, caller, e.ID)
	require.NoError(t, err)
	require.Equal(t, e.ID, got.ID)

	_, err = s.Get(ctx, uuid.Must(uuid.NewV4()), e.ID)
	require.ErrorIs(t, err, errs.ErrNotFound)
	_, err = s.Get(ctx, uuid.Nil, e.ID)
	require.ErrorIs(t, err, errs.ErrUnauthorized)
	_, err = s.Get(ctx, caller, uuid.Nil)
	require.ErrorIs(t, err, errs.ErrValidation)
}

func TestEntryDelete(t *testing.T) {
	t.Parallel()
	repo := &fakeEntries{}
	s := NewEntryService(repo)
	caller := uuid.Must(uuid.NewV4())
	ctx := context.Background()
	e, err := s.Create(ctx, caller, model.NewEntry{Content: "x"})
	require.NoError(t, err)

	require.ErrorIs(t, s.Delete(ctx, uuid.Must(uuid.NewV4()), e.ID), errs.ErrNotFound)
	require.NoError(t, s.Delete(ctx, caller, e.ID))
	require.ErrorIs(t, s.Delete(ctx, caller, e.ID), errs.ErrNotFound)
}

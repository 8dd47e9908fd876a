package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/and161185/vibe-journal/internal/errs"
	"github.com/and161185/vibe-journal/internal/model"
	"github.com/and161185/vibe-journal/internal/service"
	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const goodToken = "good.token.sig"

type fakeAuth struct {
	sess      model.Session
	authErr   error
	signInErr error
	signedOut []uuid.UUID
	revoked   []uuid.UUID
	lastIP    string
}

var _ service.AuthService = (*fakeAuth)(nil)

func (f *fakeAuth) SignUp(_ context.Context, email, _, _ string) (uuid.UUID, error) {
	if email == "taken@x.io" {
		return uuid.Nil, errs.ErrAlreadyExists
	}
	return f.sess.UserID, nil
}

func (f *fakeAuth) SignIn(_ context.Context, _, _, ip string) (model.Tokens, error) {
	f.lastIP = ip
	if f.signInErr != nil {
		return model.Tokens{}, f.signInErr
	}
	return model.Tokens{AccessToken: goodToken, SessionID: f.sess.ID, UserID: f.sess.UserID, ExpiresAt: f.sess.ExpiresAt}, nil
}

func (f *fakeAuth) Authenticate(_ context.Context, token string) (model.Session, error) {
	if f.authErr != nil {
		return model.Session{}, f.authErr
	}
	if token != goodToken {
		return model.Session{}, errs.ErrUnauthorized
	}
	return f.sess, nil
}

func (f *fakeAuth) SignOut(_ context.Context, id uuid.UUID) error {
	f.signedOut = append(f.signedOut, id)
	return nil
}

func (f *fakeAuth) SignOutAll(_ context.Context, uid uuid.UUID) error {
	f.revoked = append(f.revoked, uid)
	return nil
}

type fakeProfiles struct{ name string }

var _ service.ProfileService = (*fakeProfiles)(nil)

func (f *fakeProfiles) Get(_ context.Context, caller uuid.UUID) (*model.Profile, error) {
	return &model.Profile{ID: caller, DisplayName: f.name}, nil
}

func (f *fakeProfiles) Rename(_ context.Context, caller uuid.UUID, name string) (*model.Profile, error) {
	f.name = name
	return &model.Profile{ID: caller, DisplayName: name}, nil
}

type fakeEntries struct {
	created    []model.NewEntry
	lastFilter model.EntryFilter
	lastPatch  model.EntryPatch
	stored     map[uuid.UUID]model.Entry
	err        error
	panicOn    bool
}

var _ service.EntryService = (*fakeEntries)(nil)

func (f *fakeEntries) Create(_ context.Context, caller uuid.UUID, ne model.NewEntry) (*model.Entry, error) {
	if f.err != nil {
		return nil, f.err
	}
	if strings.TrimSpace(ne.Content) == "" {
		return nil, errs.ErrValidation
	}
	if ne.UserID != uuid.Nil && ne.UserID != caller {
		return nil, errs.ErrForbidden
	}
	f.created = append(f.created, ne)
	cat := ne.Category
	if cat.IsZero() {
		cat = model.DefaultCategory
	}
	return &model.Entry{ID: uuid.Must(uuid.NewV4()), UserID: caller, Content: ne.Content, Category: cat, MediaType: model.MediaText, Vibe: ne.Vibe}, nil
}

func (f *fakeEntries) List(_ context.Context, _ uuid.UUID, flt model.EntryFilter) ([]model.Entry, error) {
	if f.panicOn {
		panic("list exploded")
	}
	f.lastFilter = flt
	return []model.Entry{}, f.err
}

func (f *fakeEntries) Get(_ context.Context, caller, id uuid.UUID) (*model.Entry, error) {
	if f.err != nil {
		return nil, f.err
	}
	e, ok := f.stored[id]
	if !ok || e.UserID != caller {
		return nil, errs.ErrNotFound
	}
	return &e, nil
}

func (f *fakeEntries) Update(_ context.Context, caller, id uuid.UUID, p model.EntryPatch) (*model.Entry, error) {
	f.lastPatch = p
	return &model.Entry{ID: id, UserID: caller, Content: "x", Category: model.DefaultCategory, MediaType: model.MediaText}, nil
}

func (f *fakeEntries) Delete(context.Context, uuid.UUID, uuid.UUID) error { return f.err }

type fixture struct {
	srv     *httptest.Server
	auth    *fakeAuth
	entries *fakeEntries
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	auth := &fakeAuth{sess: model.Session{
		ID: uuid.Must(uuid.NewV4()), UserID: uuid.Must(uuid.NewV4()), ExpiresAt: time.Now().Add(time.Hour),
	}}
	entries := &fakeEntries{}
	s := New(auth, &fakeProfiles{name: model.DefaultDisplayName}, entries, zaptest.NewLogger(t), []string{"http://localhost:5173"})
	ts := httptest.NewServer(s.Routes())
	t.Cleanup(ts.Close)
	return &fixture{srv: ts, auth: auth, entries: entries}
}

func (fx *fixture) do(t *testing.T, method, path, body, token string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, fx.srv.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, dst any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dst))
}

func TestHealthz(t *testing.T) {
	fx := newFixture(t)
	resp := fx.do(t, http.MethodGet, "/healthz", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]bool
	decodeBody(t, resp, &body)
	require.True(t, body["ok"])
}

func TestSignUp(t *testing.T) {
	fx := newFixture(t)

	resp := fx.do(t, http.MethodPost, "/api/auth/signup", `{"email":"a@b.io","password":"password1"}`, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var out signUpResponse
	decodeBody(t, resp, &out)
	require.Equal(t, fx.auth.sess.UserID, out.UserID)

	resp = fx.do(t, http.MethodPost, "/api/auth/signup", `{"email":"not-an-email","password":"password1"}`, "")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = fx.do(t, http.MethodPost, "/api/auth/signup", `{"email":"a@b.io","password":"short"}`, "")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = fx.do(t, http.MethodPost, "/api/auth/signup", `{"email":"taken@x.io","password":"password1"}`, "")
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = fx.do(t, http.MethodPost, "/api/auth/signup", `{"email":"a@b.io","password":"password1","admin":true}`, "")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSignIn(t *testing.T) {
	fx := newFixture(t)

	resp := fx.do(t, http.MethodPost, "/api/auth/signin", `{"email":"a@b.io","password":"password1"}`, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out signInResponse
	decodeBody(t, resp, &out)
	require.Equal(t, goodToken, out.AccessToken)
	require.Equal(t, fx.auth.sess.UserID, out.UserID)
	require.NotEmpty(t, fx.auth.lastIP)

	fx.auth.signInErr = errs.ErrUnauthorized
	resp = fx.do(t, http.MethodPost, "/api/auth/signin", `{"email":"a@b.io","password":"nope"}`, "")
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	var e errorBody
	decodeBody(t, resp, &e)
	require.Equal(t, "unauthorized", e.Error)

	fx.auth.signInErr = errs.ErrRateLimited
	resp = fx.do(t, http.MethodPost, "/api/auth/signin", `{"email":"a@b.io","password":"nope"}`, "")
	require.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
}

func TestProtectedRoutesRequireBearer(t *testing.T) {
	fx := newFixture(t)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/entries"},
		{http.MethodPost, "/api/entries"},
		{http.MethodGet, "/api/profile"},
		{http.MethodPost, "/api/auth/signout"},
		{http.MethodDelete, "/api/entries/" + uuid.Must(uuid.NewV4()).String()},
	} {
		resp := fx.do(t, tc.method, tc.path, "", "")
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode, tc.path)
		resp = fx.do(t, tc.method, tc.path, "", "wrong")
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode, tc.path)
	}
	require.Empty(t, fx.entries.created)

	fx.auth.authErr = errors.New("redis down")
	resp := fx.do(t, http.MethodGet, "/api/entries", "", goodToken)
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestBearerToken(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Add("Authorization", "Basic foo")
	r.Header.Add("Authorization", "  bearer   tok.part.sig   ")
	got, err := bearerToken(r)
	require.NoError(t, err)
	require.Equal(t, "tok.part.sig", got)

	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer    ")
	_, err = bearerToken(r)
	require.ErrorIs(t, err, errs.ErrUnauthorized)
}

func TestSessionAndSignOut(t *testing.T) {
	fx := newFixture(t)

	resp := fx.do(t, http.MethodGet, "/api/auth/session", "", goodToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var s model.Session
	decodeBody(t, resp, &s)
	require.Equal(t, fx.auth.sess.ID, s.ID)

	resp = fx.do(t, http.MethodPost, "/api/auth/signout", "", goodToken)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	require.Equal(t, []uuid.UUID{fx.auth.sess.ID}, fx.auth.signedOut)
}

func TestSignOutAll(t *testing.T) {
	fx := newFixture(t)

	resp := fx.do(t, http.MethodPost, "/api/auth/signout-all", "", goodToken)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	require.Equal(t, []uuid.UUID{fx.auth.sess.UserID}, fx.auth.revoked)
	require.Empty(t, fx.auth.signedOut)

	resp = fx.do(t, http.MethodPost, "/api/auth/signout-all", "", "")
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Len(t, fx.auth.revoked, 1)
}

func TestProfile(t *testing.T) {
	fx := newFixture(t)

	resp := fx.do(t, http.MethodGet, "/api/profile", "", goodToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var p model.Profile
	decodeBody(t, resp, &p)
	require.Equal(t, model.DefaultDisplayName, p.DisplayName)

	resp = fx.do(t, http.MethodPut, "/api/profile", `{"display_name":"Robin"}`, goodToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &p)
	require.Equal(t, "Robin", p.DisplayName)
}

func TestCreateEntry(t *testing.T) {
	fx := newFixture(t)

	resp := fx.do(t, http.MethodPost, "/api/entries",
		`{"content":"Grateful for today","category":"gratitude","media_type":"text","vibe":"happy"}`, goodToken)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var e model.Entry
	decodeBody(t, resp, &e)
	require.Equal(t, fx.auth.sess.UserID, e.UserID)
	require.Equal(t, model.CategoryGratitude, e.Category)
	require.Equal(t, model.VibeHappy, *e.Vibe)

	resp = fx.do(t, http.MethodPost, "/api/entries", `{"content":"pic","media_type":"image","media_url":"  ","vibe":"none"}`, goodToken)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	last := fx.entries.created[len(fx.entries.created)-1]
	require.Nil(t, last.MediaURL)
	require.Nil(t, last.Vibe)
	require.Equal(t, model.MediaImage, last.MediaType)
}

func TestCreateEntry_Rejections(t *testing.T) {
	fx := newFixture(t)

	cases := map[string]struct {
		body string
		want int
	}{
		"blank content":   {`{"content":"   "}`, http.StatusBadRequest},
		"missing content": {`{"category":"wishes"}`, http.StatusBadRequest},
		"bad category":    {`{"content":"x","category":"musings"}`, http.StatusBadRequest},
		"bad media type":  {`{"content":"x","media_type":"audio"}`, http.StatusBadRequest},
		"bad vibe":        {`{"content":"x","vibe":"meh"}`, http.StatusBadRequest},
		"not json":        {`content=x`, http.StatusBadRequest},
		"forged owner":    {`{"content":"x","user_id":"` + uuid.Must(uuid.NewV4()).String() + `"}`, http.StatusForbidden},
	}
	for name, c := range cases {
		resp := fx.do(t, http.MethodPost, "/api/entries", c.body, goodToken)
		require.Equal(t, c.want, resp.StatusCode, name)
	}
	require.Empty(t, fx.entries.created)
}

func TestCreateEntry_MediaURLStoredAsGiven(t *testing.T) {
	fx := newFixture(t)

	resp := fx.do(t, http.MethodPost, "/api/entries",
		`{"content":"cat","media_type":"image","media_url":"www.example.com/cat.jpg"}`, goodToken)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.Len(t, fx.entries.created, 1)
	require.Equal(t, "www.example.com/cat.jpg", *fx.entries.created[0].MediaURL)

	resp = fx.do(t, http.MethodPost, "/api/entries",
		`{"content":"just words","media_type":"text","media_url":"not a url"}`, goodToken)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.Len(t, fx.entries.created, 2)

	resp = fx.do(t, http.MethodPost, "/api/entries",
		`{"content":"x","media_type":"image","media_url":"https://example.com/`+strings.Repeat("a", 2048)+`"}`, goodToken)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Len(t, fx.entries.created, 2)
}

func TestGetEntry(t *testing.T) {
	fx := newFixture(t)
	mine := model.Entry{ID: uuid.Must(uuid.NewV4()), UserID: fx.auth.sess.UserID, Content: "found it",
		Category: model.DefaultCategory, MediaType: model.MediaText}
	theirs := model.Entry{ID: uuid.Must(uuid.NewV4()), UserID: uuid.Must(uuid.NewV4()), Content: "hidden",
		Category: model.DefaultCategory, MediaType: model.MediaText}
	fx.entries.stored = map[uuid.UUID]model.Entry{mine.ID: mine, theirs.ID: theirs}

	resp := fx.do(t, http.MethodGet, "/api/entries/"+mine.ID.String(), "", goodToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var e model.Entry
	decodeBody(t, resp, &e)
	require.Equal(t, "found it", e.Content)

	resp = fx.do(t, http.MethodGet, "/api/entries/"+theirs.ID.String(), "", goodToken)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = fx.do(t, http.MethodGet, "/api/entries/not-a-uuid", "", goodToken)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = fx.do(t, http.MethodGet, "/api/entries/"+mine.ID.String(), "", "")
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestListEntries_QueryFilters(t *testing.T) {
	fx := newFixture(t)

	resp := fx.do(t, http.MethodGet, "/api/entries?category=wishes&media_type=all&vibe=calm", "", goodToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list []model.Entry
	decodeBody(t, resp, &list)
	require.NotNil(t, list)
	require.Equal(t, model.CategoryWishes, *fx.entries.lastFilter.Category)
	require.Nil(t, fx.entries.lastFilter.MediaType)
	require.Equal(t, model.VibeCalm, *fx.entries.lastFilter.Vibe)

	resp = fx.do(t, http.MethodGet, "/api/entries?vibe=ecstatic", "", goodToken)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	fx.entries.err = errors.New("db down")
	resp = fx.do(t, http.MethodGet, "/api/entries", "", goodToken)
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	var e errorBody
	decodeBody(t, resp, &e)
	require.Equal(t, "internal error", e.Error)
}

func TestUpdateEntry(t *testing.T) {
	fx := newFixture(t)
	id := uuid.Must(uuid.NewV4())

	resp := fx.do(t, http.MethodPatch, "/api/entries/"+id.String(),
		`{"category":"reflection","media_url":"","vibe":"none"}`, goodToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	p := fx.entries.lastPatch
	require.Equal(t, model.CategoryReflection, *p.Category)
	require.True(t, p.ClearMediaURL)
	require.True(t, p.ClearVibe)
	require.Nil(t, p.Vibe)

	resp = fx.do(t, http.MethodPatch, "/api/entries/not-a-uuid", `{"content":"x"}`, goodToken)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDeleteEntry(t *testing.T) {
	fx := newFixture(t)
	id := uuid.Must(uuid.NewV4()).String()

	resp := fx.do(t, http.MethodDelete, "/api/entries/"+id, "", goodToken)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	fx.entries.err = errs.ErrNotFound
	resp = fx.do(t, http.MethodDelete, "/api/entries/"+id, "", goodToken)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRecover_PanicBecomes500(t *testing.T) {
	fx := newFixture(t)
	fx.entries.panicOn = true

	resp := fx.do(t, http.MethodGet, "/api/entries", "", goodToken)
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestCORSPreflight(t *testing.T) {
	fx := newFixture(t)

	req, err := http.NewRequest(http.MethodOptions, fx.srv.URL+"/api/entries", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, "http://localhost:5173", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestStatusFor(t *testing.T) {
	t.Parallel()

	for err, want := range map[error]int{
		errs.ErrValidation:    http.StatusBadRequest,
		errs.ErrUnauthorized:  http.StatusUnauthorized,
		errs.ErrForbidden:     http.StatusForbidden,
		errs.ErrNotFound:      http.StatusNotFound,
		errs.ErrAlreadyExists: http.StatusConflict,
		errs.ErrRateLimited:   http.StatusTooManyRequests,
		errors.New("x"):       http.StatusInternalServerError,
	} {
		got, _ := statusFor(err)
		require.Equal(t, want, got, err.Error())
	}
}

package clientsession

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/and161185/vibe-journal/internal/errs"
	"github.com/and161185/vibe-journal/internal/model"
)

// ErrNoSession is returned when an operation needs a signed-in user and there is none.
var ErrNoSession = fmt.Errorf("not signed in: %w", errs.ErrUnauthorized)

// Remote is the server side of authentication.
type Remote interface {
	SignIn(ctx context.Context, email, password string) (model.Tokens, error)
	SignOut(ctx context.Context, token string) error
	SignOutAll(ctx context.Context, token string) error
}

// Manager owns the current Session: it is loaded once by Init and then
// passed explicitly to the components that need it.
type Manager struct {
	store  *FileStore
	remote Remote
	now    func() time.Time
	cur    *Session
}

// NewManager binds a session file to the authentication endpoint.
func NewManager(store *FileStore, remote Remote) *Manager {
	return &Manager{store: store, remote: remote, now: time.Now}
}

// Init loads the stored session. An expired session is discarded and
// reported as nil, as is a missing one.
func (m *Manager) Init() (*Session, error) {
	s, err := m.store.Load()
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if !s.Valid(m.now()) {
		m.cur = nil
		if s != nil {
			_ = m.store.Remove()
		}
		return nil, nil
	}
	m.cur = s
	return s, nil
}

// Current returns the session established by Init or SignIn, or nil.
func (m *Manager) Current() *Session {
	if !m.cur.Valid(m.now()) {
		return nil
	}
	return m.cur
}

// SignIn exchanges credentials for a session and persists it.
func (m *Manager) SignIn(ctx context.Context, email, password string) (*Session, error) {
	tok, err := m.remote.SignIn(ctx, email, password)
	if err != nil {
		return nil, err
	}
	s := Session{
		AccessToken: tok.AccessToken,
		UserID:      tok.UserID,
		SessionID:   tok.SessionID,
		ExpiresAt:   tok.ExpiresAt,
	}
	if err := m.store.Save(s); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	m.cur = &s
	return m.cur, nil
}

// SignOut revokes the session on the server and always tears down local state.
// A server that no longer knows the session is not an error.
func (m *Manager) SignOut(ctx context.Context) error {
	return m.teardown(ctx, m.remote.SignOut)
}

// SignOutEverywhere revokes every session of the current user, then tears
// down local state the same way SignOut does.
func (m *Manager) SignOutEverywhere(ctx context.Context) error {
	return m.teardown(ctx, m.remote.SignOutAll)
}

func (m *Manager) teardown(ctx context.Context, revoke func(context.Context, string) error) error {
	var remoteErr error
	if m.cur != nil && m.cur.AccessToken != "" {
		if err := revoke(ctx, m.cur.AccessToken); err != nil && !errors.Is(err, errs.ErrUnauthorized) {
			remoteErr = fmt.Errorf("revoke session: %w", err)
		}
	}
	m.cur = nil
	return errors.Join(remoteErr, m.store.Remove())
}

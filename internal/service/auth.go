// Package service contains application services for authentication, profiles and journal entries.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	pkgcrypto "github.com/and161185/vibe-journal/internal/crypto"
	"github.com/and161185/vibe-journal/internal/errs"
	"github.com/and161185/vibe-journal/internal/limiter"
	"github.com/and161185/vibe-journal/internal/model"
	"github.com/and161185/vibe-journal/internal/repository"
	"github.com/and161185/vibe-journal/internal/session"
	"github.com/gofrs/uuid/v5"
	"github.com/golang-jwt/jwt/v5"
)

const (
	minPasswordLen    = 8
	maxDisplayNameLen = 80
	tokenLeeway       = 30 * time.Second
)

// AuthService defines account and session operations.
type AuthService interface {
	// SignUp creates a user and its profile.
	SignUp(ctx context.Context, email, password, displayName string) (uuid.UUID, error)
	// SignIn applies rate limiting, verifies credentials and opens a session.
	SignIn(ctx context.Context, email, password, ip string) (model.Tokens, error)
	// Authenticate resolves a bearer token to a live session.
	Authenticate(ctx context.Context, token string) (model.Session, error)
	// SignOut revokes a session.
	SignOut(ctx context.Context, sessionID uuid.UUID) error
	// SignOutAll revokes every session of a user.
	SignOutAll(ctx context.Context, userID uuid.UUID) error
}

type AuthServiceImpl struct {
	users     repository.UserRepository
	sessions  session.Store
	lim       limiter.Limiter
	signKey   []byte
	accessTTL time.Duration
	now       func() time.Time
}

// NewAuthService constructs AuthService with required dependencies.
func NewAuthService(users repository.UserRepository, sessions session.Store, lim limiter.Limiter, signKey []byte, accessTTL time.Duration) *AuthServiceImpl {
	return &AuthServiceImpl{
		users:     users,
		sessions:  sessions,
		lim:       lim,
		signKey:   signKey,
		accessTTL: accessTTL,
		now:       time.Now,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SignUp validates input, hashes the password and stores the user.
func (s *AuthServiceImpl) SignUp(ctx context.Context, email, password, displayName string) (uuid.UUID, error) {
	email = normalizeEmail(email)
	if email == "" || !strings.Contains(email, "@") {
		return uuid.Nil, fmt.Errorf("email: %w", errs.ErrValidation)
	}
	if utf8.RuneCountInString(password) < minPasswordLen {
		return uuid.Nil, fmt.Errorf("password shorter than %d: %w", minPasswordLen, errs.ErrValidation)
	}
	displayName = strings.TrimSpace(displayName)
	if utf8.RuneCountInString(displayName) > maxDisplayNameLen {
		return uuid.Nil, fmt.Errorf("display name too long: %w", errs.ErrValidation)
	}

	uid, err := uuid.NewV4()
	if err != nil {
		return uuid.Nil, err
	}
	hash, err := pkgcrypto.HashPassword(password)
	if err != nil {
		return uuid.Nil, fmt.Errorf("hash password: %w", err)
	}
	u := &model.User{ID: uid, Email: email, PwdHash: hash}
	if err := s.users.Create(ctx, u, displayName); err != nil {
		return uuid.Nil, fmt.Errorf("create user: %w", err)
	}
	return uid, nil
}

// SignIn authenticates with rate limiting by (email, ip). Unknown email and
// wrong password are indistinguishable to the caller.
func (s *AuthServiceImpl) SignIn(ctx context.Context, email, password, ip string) (model.Tokens, error) {
	email = normalizeEmail(email)
	key := limiter.KeyFor(email, ip)

	wait, err := s.lim.Allow(ctx, key)
	if err != nil {
		return model.Tokens{}, fmt.Errorf("limiter: %w", err)
	}
	if wait > 0 {
		return model.Tokens{}, errs.ErrRateLimited
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, errs.ErrNotFound) {
		return model.Tokens{}, fmt.Errorf("load user: %w", err)
	}
	ok := false
	if u != nil {
		if ok, err = pkgcrypto.VerifyPassword(password, u.PwdHash); err != nil {
			return model.Tokens{}, fmt.Errorf("verify password: %w", err)
		}
	}
	if !ok {
		if blocked, ferr := s.lim.Fail(ctx, key); ferr == nil && blocked > 0 {
			return model.Tokens{}, errs.ErrRateLimited
		}
		return model.Tokens{}, errs.ErrUnauthorized
	}

	// best-effort
	_ = s.lim.Reset(ctx, key)

	return s.openSession(ctx, u.ID)
}

func (s *AuthServiceImpl) openSession(ctx context.Context, userID uuid.UUID) (model.Tokens, error) {
	sid, err := uuid.NewV4()
	if err != nil {
		return model.Tokens{}, err
	}
	now := s.now()
	exp := now.Add(s.accessTTL)
	claims := jwt.RegisteredClaims{
		ID:        sid.String(),
		Subject:   userID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signKey)
	if err != nil {
		return model.Tokens{}, fmt.Errorf("sign token: %w", err)
	}
	if err := s.sessions.Create(ctx, model.Session{ID: sid, UserID: userID, ExpiresAt: exp}); err != nil {
		return model.Tokens{}, fmt.Errorf("store session: %w", err)
	}
	return model.Tokens{AccessToken: signed, SessionID: sid, UserID: userID, ExpiresAt: exp}, nil
}

// Authenticate verifies the token signature and expiry and that its session is still live.
func (s *AuthServiceImpl) Authenticate(ctx context.Context, token string) (model.Session, error) {
	var claims jwt.RegisteredClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return s.signKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(tokenLeeway),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !parsed.Valid {
		return model.Session{}, errs.ErrUnauthorized
	}
	uid, err := uuid.FromString(claims.Subject)
	if err != nil {
		return model.Session{}, errs.ErrUnauthorized
	}
	sid, err := uuid.FromString(claims.ID)
	if err != nil {
		return model.Session{}, errs.ErrUnauthorized
	}

	live, err := s.sessions.Exists(ctx, sid)
	if err != nil {
		return model.Session{}, fmt.Errorf("session lookup: %w", err)
	}
	if !live {
		return model.Session{}, errs.ErrUnauthorized
	}
	return model.Session{ID: sid, UserID: uid, ExpiresAt: claims.ExpiresAt.Time}, nil
}

// SignOut revokes the session.
func (s *AuthServiceImpl) SignOut(ctx context.Context, sessionID uuid.UUID) error {
	if sessionID == uuid.Nil {
		return errs.ErrUnauthorized
	}
	return s.sessions.Delete(ctx, sessionID)
}

// SignOutAll revokes every live session of userID.
func (s *AuthServiceImpl) SignOutAll(ctx context.Context, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return errs.ErrUnauthorized
	}
	if err := s.sessions.DeleteAllForUser(ctx, userID); err != nil {
		return fmt.Errorf("revoke sessions: %w", err)
	}
	return nil
}

package httpserver

import (
	"context"

	"github.com/and161185/vibe-journal/internal/model"
	"github.com/gofrs/uuid/v5"
)

type ctxKey string

const sessionKey ctxKey = "vj.session"

// WithSession stores the authenticated session in context.
func WithSession(ctx context.Context, s model.Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

// SessionFromCtx fetches the authenticated session from context.
func SessionFromCtx(ctx context.Context) (model.Session, bool) {
	s, ok := ctx.Value(sessionKey).(model.Session)
	return s, ok
}

// UserIDFromCtx fetches the authenticated user ID from context.
func UserIDFromCtx(ctx context.Context) (uuid.UUID, bool) {
	s, ok := SessionFromCtx(ctx)
	if !ok || s.UserID == uuid.Nil {
		return uuid.Nil, false
	}
	return s.UserID, true
}

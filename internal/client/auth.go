package client

import (
	"context"
	"net/http"

	"github.com/and161185/vibe-journal/internal/model"
	"github.com/gofrs/uuid/v5"
)

// SignUp registers an account and returns the new user id.
func (c *Client) SignUp(ctx context.Context, email, password, displayName string) (uuid.UUID, error) {
	in := struct {
		Email       string `json:"email"`
		Password    string `json:"password"`
		DisplayName string `json:"display_name,omitempty"`
	}{email, password, displayName}
	var out struct {
		UserID uuid.UUID `json:"user_id"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/auth/signup", nil, "", in, &out); err != nil {
		return uuid.Nil, err
	}
	return out.UserID, nil
}

// SignIn exchanges credentials for an access token.
func (c *Client) SignIn(ctx context.Context, email, password string) (model.Tokens, error) {
	in := struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}{email, password}
	var out model.Tokens
	err := c.do(ctx, http.MethodPost, "/api/auth/signin", nil, "", in, &out)
	return out, err
}

// SignOut revokes the session behind token.
func (c *Client) SignOut(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodPost, "/api/auth/signout", nil, token, nil, nil)
}

// SignOutAll revokes every session of the token's user.
func (c *Client) SignOutAll(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodPost, "/api/auth/signout-all", nil, token, nil, nil)
}

// Session returns the server's view of the current session.
func (c *Client) Session(ctx context.Context, token string) (model.Session, error) {
	var out model.Session
	err := c.do(ctx, http.MethodGet, "/api/auth/session", nil, token, nil, &out)
	return out, err
}

// Profile returns the caller's profile.
func (c *Client) Profile(ctx context.Context, token string) (model.Profile, error) {
	var out model.Profile
	err := c.do(ctx, http.MethodGet, "/api/profile", nil, token, nil, &out)
	return out, err
}

// Rename sets the caller's display name. A blank name resets it to the default.
func (c *Client) Rename(ctx context.Context, token, displayName string) (model.Profile, error) {
	in := struct {
		DisplayName string `json:"display_name"`
	}{displayName}
	var out model.Profile
	err := c.do(ctx, http.MethodPut, "/api/profile", nil, token, in, &out)
	return out, err
}

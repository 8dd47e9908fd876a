package httpserver

import (
	"fmt"
	"net/http"
	"time"

	"github.com/and161185/vibe-journal/internal/errs"
	"github.com/gofrs/uuid/v5"
)

type signUpRequest struct {
	Email       string `json:"email" validate:"required,email,max=254"`
	Password    string `json:"password" validate:"required,min=8,max=256"`
	DisplayName string `json:"display_name" validate:"max=80"`
}

type signUpResponse struct {
	UserID uuid.UUID `json:"user_id"`
}

type signInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type signInResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
	UserID      uuid.UUID `json:"user_id"`
	SessionID   uuid.UUID `json:"session_id"`
}

func (s *Server) bind(w http.ResponseWriter, r *http.Request, dst any) error {
	if err := decode(w, r, dst); err != nil {
		return err
	}
	if err := s.validate.Struct(dst); err != nil {
		return fmt.Errorf("%v: %w", err, errs.ErrValidation)
	}
	return nil
}

func (s *Server) signUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if err := s.bind(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	id, err := s.auth.SignUp(r.Context(), req.Email, req.Password, req.DisplayName)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, signUpResponse{UserID: id})
}

func (s *Server) signIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if err := s.bind(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	tok, err := s.auth.SignIn(r.Context(), req.Email, req.Password, r.RemoteAddr)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, signInResponse{
		AccessToken: tok.AccessToken,
		ExpiresAt:   tok.ExpiresAt,
		UserID:      tok.UserID,
		SessionID:   tok.SessionID,
	})
}

func (s *Server) signOut(w http.ResponseWriter, r *http.Request) {
	sess, _ := SessionFromCtx(r.Context())
	if err := s.auth.SignOut(r.Context(), sess.ID); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// signOutAll revokes every session of the caller, including this one.
func (s *Server) signOutAll(w http.ResponseWriter, r *http.Request) {
	sess, _ := SessionFromCtx(r.Context())
	if err := s.auth.SignOutAll(r.Context(), sess.UserID); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) currentSession(w http.ResponseWriter, r *http.Request) {
	sess, _ := SessionFromCtx(r.Context())
	writeJSON(w, http.StatusOK, sess)
}

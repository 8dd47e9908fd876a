package httpserver

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/and161185/vibe-journal/internal/errs"
	"github.com/and161185/vibe-journal/internal/model"
	"github.com/go-chi/chi/v5"
	"github.com/gofrs/uuid/v5"
)

type profileRequest struct {
	DisplayName string `json:"display_name" validate:"max=80"`
}

func (s *Server) getProfile(w http.ResponseWriter, r *http.Request) {
	uid, _ := UserIDFromCtx(r.Context())
	p, err := s.profiles.Get(r.Context(), uid)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) putProfile(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := s.bind(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	uid, _ := UserIDFromCtx(r.Context())
	p, err := s.profiles.Rename(r.Context(), uid, req.DisplayName)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// entryRequest is the create body. Enum fields are parsed after validation;
// blank optional text is treated as absent. media_url is stored as given,
// only its length is bounded.
type entryRequest struct {
	UserID          *uuid.UUID `json:"user_id"`
	Content         string     `json:"content" validate:"required,max=20000"`
	Category        string     `json:"category"`
	MediaType       string     `json:"media_type"`
	MediaURL        *string    `json:"media_url" validate:"omitempty,max=2048"`
	MediaAnnotation *string    `json:"media_annotation" validate:"omitempty,max=2000"`
	Vibe            string     `json:"vibe"`
}

type entryPatchRequest struct {
	Content         *string `json:"content" validate:"omitempty,max=20000"`
	Category        *string `json:"category"`
	MediaType       *string `json:"media_type"`
	MediaURL        *string `json:"media_url" validate:"omitempty,max=2048"`
	MediaAnnotation *string `json:"media_annotation" validate:"omitempty,max=2000"`
	Vibe            *string `json:"vibe"`
}

// blankToNil reports whether p held only whitespace and clears it if so.
func blankToNil(p **string) bool {
	if *p == nil {
		return false
	}
	if strings.TrimSpace(**p) == "" {
		*p = nil
		return true
	}
	return false
}

func (req entryRequest) toNewEntry() (model.NewEntry, error) {
	ne := model.NewEntry{
		Content:         req.Content,
		MediaURL:        req.MediaURL,
		MediaAnnotation: req.MediaAnnotation,
	}
	if req.UserID != nil {
		ne.UserID = *req.UserID
	}
	var err error
	if req.Category != "" {
		if ne.Category, err = model.ParseCategory(req.Category); err != nil {
			return ne, err
		}
	}
	if req.MediaType != "" {
		if ne.MediaType, err = model.ParseMediaType(req.MediaType); err != nil {
			return ne, err
		}
	}
	if ne.Vibe, err = model.ParseOptionalVibe(req.Vibe); err != nil {
		return ne, err
	}
	return ne, nil
}

func (req entryPatchRequest) toPatch(clearURL, clearAnnotation bool) (model.EntryPatch, error) {
	p := model.EntryPatch{
		Content:              req.Content,
		MediaURL:             req.MediaURL,
		MediaAnnotation:      req.MediaAnnotation,
		ClearMediaURL:        clearURL,
		ClearMediaAnnotation: clearAnnotation,
	}
	if req.Category != nil {
		c, err := model.ParseCategory(*req.Category)
		if err != nil {
			return p, err
		}
		p.Category = &c
	}
	if req.MediaType != nil {
		m, err := model.ParseMediaType(*req.MediaType)
		if err != nil {
			return p, err
		}
		p.MediaType = &m
	}
	if req.Vibe != nil {
		v, err := model.ParseOptionalVibe(*req.Vibe)
		if err != nil {
			return p, err
		}
		if v == nil {
			p.ClearVibe = true
		}
		p.Vibe = v
	}
	return p, nil
}

func entryID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, fmt.Errorf("bad id: %w", errs.ErrValidation)
	}
	return id, nil
}

// filterFromQuery reads optional category, media_type and vibe predicates;
// an empty value or "all" leaves the predicate unset.
func filterFromQuery(r *http.Request) (model.EntryFilter, error) {
	var f model.EntryFilter
	q := r.URL.Query()
	set := func(name string) (string, bool) {
		v := strings.TrimSpace(q.Get(name))
		return v, v != "" && !strings.EqualFold(v, "all")
	}
	if v, ok := set("category"); ok {
		c, err := model.ParseCategory(v)
		if err != nil {
			return f, err
		}
		f.Category = &c
	}
	if v, ok := set("media_type"); ok {
		m, err := model.ParseMediaType(v)
		if err != nil {
			return f, err
		}
		f.MediaType = &m
	}
	if v, ok := set("vibe"); ok {
		vb, err := model.ParseVibe(v)
		if err != nil {
			return f, err
		}
		f.Vibe = &vb
	}
	return f, nil
}

func (s *Server) listEntries(w http.ResponseWriter, r *http.Request) {
	f, err := filterFromQuery(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	uid, _ := UserIDFromCtx(r.Context())
	list, err := s.entries.List(r.Context(), uid, f)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) createEntry(w http.ResponseWriter, r *http.Request) {
	var req entryRequest
	if err := decode(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	blankToNil(&req.MediaURL)
	blankToNil(&req.MediaAnnotation)
	if err := s.validate.Struct(req); err != nil {
		s.fail(w, r, fmt.Errorf("%v: %w", err, errs.ErrValidation))
		return
	}
	ne, err := req.toNewEntry()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	uid, _ := UserIDFromCtx(r.Context())
	e, err := s.entries.Create(r.Context(), uid, ne)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

func (s *Server) getEntry(w http.ResponseWriter, r *http.Request) {
	id, err := entryID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	uid, _ := UserIDFromCtx(r.Context())
	e, err := s.entries.Get(r.Context(), uid, id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) updateEntry(w http.ResponseWriter, r *http.Request) {
	id, err := entryID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var req entryPatchRequest
	if err := decode(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	clearURL := blankToNil(&req.MediaURL)
	clearAnnotation := blankToNil(&req.MediaAnnotation)
	if err := s.validate.Struct(req); err != nil {
		s.fail(w, r, fmt.Errorf("%v: %w", err, errs.ErrValidation))
		return
	}
	p, err := req.toPatch(clearURL, clearAnnotation)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	uid, _ := UserIDFromCtx(r.Context())
	e, err := s.entries.Update(r.Context(), uid, id, p)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) deleteEntry(w http.ResponseWriter, r *http.Request) {
	id, err := entryID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	uid, _ := UserIDFromCtx(r.Context())
	if err := s.entries.Delete(r.Context(), uid, id); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

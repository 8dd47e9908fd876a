package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/and161185/vibe-journal/internal/model"
	"github.com/gofrs/uuid/v5"
)

// EntryInput is a new entry as submitted by a client. Zero Category and
// MediaType let the server apply its defaults.
type EntryInput struct {
	UserID          uuid.UUID
	Content         string
	Category        model.Category
	MediaType       model.MediaType
	MediaURL        *string
	MediaAnnotation *string
	Vibe            *model.Vibe
}

type entryBody struct {
	UserID          *uuid.UUID `json:"user_id,omitempty"`
	Content         string     `json:"content"`
	Category        string     `json:"category,omitempty"`
	MediaType       string     `json:"media_type,omitempty"`
	MediaURL        *string    `json:"media_url,omitempty"`
	MediaAnnotation *string    `json:"media_annotation,omitempty"`
	Vibe            string     `json:"vibe,omitempty"`
}

// EntryChanges is a partial update in wire form. nil leaves a field as is;
// an empty media string clears it and Vibe "none" removes the mood.
type EntryChanges struct {
	Content         *string `json:"content,omitempty"`
	Category        *string `json:"category,omitempty"`
	MediaType       *string `json:"media_type,omitempty"`
	MediaURL        *string `json:"media_url,omitempty"`
	MediaAnnotation *string `json:"media_annotation,omitempty"`
	Vibe            *string `json:"vibe,omitempty"`
}

// ListEntries fetches the caller's entries, newest first. Set predicates in f
// are applied by the server.
func (c *Client) ListEntries(ctx context.Context, token string, f model.EntryFilter) ([]model.Entry, error) {
	var q url.Values
	if !f.IsAll() {
		q = url.Values{}
		if f.Category != nil {
			q.Set("category", f.Category.String())
		}
		if f.MediaType != nil {
			q.Set("media_type", f.MediaType.String())
		}
		if f.Vibe != nil {
			q.Set("vibe", f.Vibe.String())
		}
	}
	var out []model.Entry
	if err := c.do(ctx, http.MethodGet, "/api/entries", q, token, nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []model.Entry{}
	}
	return out, nil
}

// GetEntry fetches one of the caller's entries.
func (c *Client) GetEntry(ctx context.Context, token string, id uuid.UUID) (*model.Entry, error) {
	var out model.Entry
	if err := c.do(ctx, http.MethodGet, "/api/entries/"+id.String(), nil, token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateEntry inserts one entry. Every call creates a new row.
func (c *Client) CreateEntry(ctx context.Context, token string, in EntryInput) (*model.Entry, error) {
	body := entryBody{
		Content:         in.Content,
		Category:        in.Category.String(),
		MediaType:       in.MediaType.String(),
		MediaURL:        in.MediaURL,
		MediaAnnotation: in.MediaAnnotation,
	}
	if in.UserID != uuid.Nil {
		body.UserID = &in.UserID
	}
	if in.Vibe != nil {
		body.Vibe = in.Vibe.String()
	}
	var out model.Entry
	if err := c.do(ctx, http.MethodPost, "/api/entries", nil, token, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateEntry applies ch to one of the caller's entries.
func (c *Client) UpdateEntry(ctx context.Context, token string, id uuid.UUID, ch EntryChanges) (*model.Entry, error) {
	var out model.Entry
	if err := c.do(ctx, http.MethodPatch, "/api/entries/"+id.String(), nil, token, ch, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteEntry removes one of the caller's entries.
func (c *Client) DeleteEntry(ctx context.Context, token string, id uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/api/entries/"+id.String(), nil, token, nil, nil)
}

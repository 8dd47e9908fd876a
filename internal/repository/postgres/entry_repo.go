package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/and161185/vibe-journal/internal/errs"
	"github.com/and161185/vibe-journal/internal/model"
	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
)

// EntryRepo implements EntryRepository using PostgreSQL.
// Every statement carries an explicit owner predicate in addition to the
// row-level policies, so a superuser connection still sees only the caller's rows.
type EntryRepo struct{ db *DB }

// NewEntryRepo constructs an entry repository.
func NewEntryRepo(db *DB) *EntryRepo { return &EntryRepo{db: db} }

// Enum columns are read back as text and parsed into closed model types.
const entryCols = `id, user_id, content, category::text, media_type::text, media_url, media_annotation, vibe::text, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (*model.Entry, error) {
	var (
		e          model.Entry
		cat, media string
		vibe       *string
		parseErr   error
		parsedVibe model.Vibe
	)
	if err := row.Scan(&e.ID, &e.UserID, &e.Content, &cat, &media,
		&e.MediaURL, &e.MediaAnnotation, &vibe, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, err
	}
	if e.Category, parseErr = model.ParseCategory(cat); parseErr != nil {
		return nil, fmt.Errorf("entry %s: %w", e.ID, parseErr)
	}
	if e.MediaType, parseErr = model.ParseMediaType(media); parseErr != nil {
		return nil, fmt.Errorf("entry %s: %w", e.ID, parseErr)
	}
	if vibe != nil {
		if parsedVibe, parseErr = model.ParseVibe(*vibe); parseErr != nil {
			return nil, fmt.Errorf("entry %s: %w", e.ID, parseErr)
		}
		e.Vibe = &parsedVibe
	}
	return &e, nil
}

func vibeArg(v *model.Vibe) *string {
	if v == nil {
		return nil
	}
	s := v.String()
	return &s
}

// Create inserts one entry. A UserID other than caller is refused by the insert policy.
func (r *EntryRepo) Create(ctx context.Context, caller uuid.UUID, ne model.NewEntry) (*model.Entry, error) {
	const q = `
INSERT INTO journal_entries (user_id, content, category, media_type, media_url, media_annotation, vibe)
VALUES ($1, $2, $3::journal_category, $4::media_type, $5, $6, $7::entry_vibe)
RETURNING ` + entryCols

	var out *model.Entry
	err := r.db.scoped(ctx, caller, func(tx pgx.Tx) error {
		e, err := scanEntry(tx.QueryRow(ctx, q,
			ne.UserID, ne.Content, ne.Category.String(), ne.MediaType.String(),
			ne.MediaURL, ne.MediaAnnotation, vibeArg(ne.Vibe)))
		out = e
		return err
	})
	if err != nil {
		return nil, translate(err)
	}
	return out, nil
}

// List returns the caller's entries matching f, newest first.
func (r *EntryRepo) List(ctx context.Context, caller uuid.UUID, f model.EntryFilter) ([]model.Entry, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT ` + entryCols + ` FROM journal_entries WHERE user_id=$1`)
	args := []any{caller}
	if f.Category != nil {
		args = append(args, f.Category.String())
		fmt.Fprintf(&sb, ` AND category=$%d::journal_category`, len(args))
	}
	if f.MediaType != nil {
		args = append(args, f.MediaType.String())
		fmt.Fprintf(&sb, ` AND media_type=$%d::media_type`, len(args))
	}
	if f.Vibe != nil {
		args = append(args, f.Vibe.String())
		fmt.Fprintf(&sb, ` AND vibe=$%d::entry_vibe`, len(args))
	}
	sb.WriteString(` ORDER BY created_at DESC`)

	var out []model.Entry
	err := r.db.scoped(ctx, caller, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, sb.String(), args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			e, err := scanEntry(rows)
			if err != nil {
				return err
			}
			out = append(out, *e)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, translate(err)
	}
	return out, nil
}

// Get returns a single entry owned by caller.
func (r *EntryRepo) Get(ctx context.Context, caller, id uuid.UUID) (*model.Entry, error) {
	const q = `SELECT ` + entryCols + ` FROM journal_entries WHERE id=$1 AND user_id=$2`
	var out *model.Entry
	err := r.db.scoped(ctx, caller, func(tx pgx.Tx) error {
		e, err := scanEntry(tx.QueryRow(ctx, q, id, caller))
		out = e
		return err
	})
	if err != nil {
		return nil, translate(err)
	}
	return out, nil
}

// Update applies p to an entry owned by caller. updated_at is maintained by trigger.
func (r *EntryRepo) Update(ctx context.Context, caller, id uuid.UUID, p model.EntryPatch) (*model.Entry, error) {
	if p.IsEmpty() {
		return nil, fmt.Errorf("empty patch: %w", errs.ErrValidation)
	}

	args := []any{id, caller}
	var sets []string
	set := func(col string, v any, cast string) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s=$%d%s", col, len(args), cast))
	}
	if p.Content != nil {
		set("content", *p.Content, "")
	}
	if p.Category != nil {
		set("category", p.Category.String(), "::journal_category")
	}
	if p.MediaType != nil {
		set("media_type", p.MediaType.String(), "::media_type")
	}
	switch {
	case p.ClearMediaURL:
		sets = append(sets, "media_url=NULL")
	case p.MediaURL != nil:
		set("media_url", *p.MediaURL, "")
	}
	switch {
	case p.ClearMediaAnnotation:
		sets = append(sets, "media_annotation=NULL")
	case p.MediaAnnotation != nil:
		set("media_annotation", *p.MediaAnnotation, "")
	}
	switch {
	case p.ClearVibe:
		sets = append(sets, "vibe=NULL")
	case p.Vibe != nil:
		set("vibe", p.Vibe.String(), "::entry_vibe")
	}

	q := `UPDATE journal_entries SET ` + strings.Join(sets, ", ") +
		` WHERE id=$1 AND user_id=$2 RETURNING ` + entryCols

	var out *model.Entry
	err := r.db.scoped(ctx, caller, func(tx pgx.Tx) error {
		e, err := scanEntry(tx.QueryRow(ctx, q, args...))
		out = e
		return err
	})
	if err != nil {
		return nil, translate(err)
	}
	return out, nil
}

// Delete removes an entry owned by caller.
func (r *EntryRepo) Delete(ctx context.Context, caller, id uuid.UUID) error {
	const q = `DELETE FROM journal_entries WHERE id=$1 AND user_id=$2`
	err := r.db.scoped(ctx, caller, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, q, id, caller)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return errs.ErrNotFound
		}
		return nil
	})
	return translate(err)
}

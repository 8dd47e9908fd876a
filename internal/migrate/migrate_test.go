package migrate

import (
	"io/fs"
	"regexp"
	"strings"
	"testing"

	"github.com/and161185/vibe-journal/internal/model"
	"github.com/and161185/vibe-journal/migrations"
	"github.com/stretchr/testify/require"
)

func readAllMigrations(t *testing.T) string {
	t.Helper()
	names, err := fs.Glob(migrations.FS, "*.sql")
	require.NoError(t, err)
	require.NotEmpty(t, names)

	var sb strings.Builder
	for _, n := range names {
		b, err := fs.ReadFile(migrations.FS, n)
		require.NoError(t, err)
		require.True(t, strings.HasPrefix(string(b), "-- +goose Up"), "%s must start with a goose Up marker", n)
		require.Contains(t, string(b), "-- +goose Down", n)
		sb.Write(b)
	}
	return sb.String()
}

var enumRe = regexp.MustCompile(`CREATE TYPE (\w+) AS ENUM \(([^)]*)\)`)

func TestMigrations_EnumsMatchModel(t *testing.T) {
	t.Parallel()

	got := map[string][]string{}
	for _, m := range enumRe.FindAllStringSubmatch(readAllMigrations(t), -1) {
		var vals []string
		for _, v := range strings.Split(m[2], ",") {
			vals = append(vals, strings.Trim(strings.TrimSpace(v), "'"))
		}
		got[m[1]] = vals
	}

	want := map[string][]string{}
	for _, c := range model.Categories {
		want["journal_category"] = append(want["journal_category"], c.String())
	}
	for _, mt := range model.MediaTypes {
		want["media_type"] = append(want["media_type"], mt.String())
	}
	for _, v := range model.Vibes {
		want["entry_vibe"] = append(want["entry_vibe"], v.String())
	}
	require.Equal(t, want, got)
}

func TestMigrations_RowLevelSecurityForced(t *testing.T) {
	t.Parallel()

	sql := readAllMigrations(t)
	for _, table := range []string{"profiles", "journal_entries"} {
		require.Contains(t, sql, "ALTER TABLE "+table+" ENABLE ROW LEVEL SECURITY;")
		require.Contains(t, sql, "ALTER TABLE "+table+" FORCE ROW LEVEL SECURITY;")
		for _, op := range []string{"select", "insert", "update", "delete"} {
			require.Contains(t, sql, "CREATE POLICY "+table+"_"+op+"_own ON "+table)
		}
	}
}

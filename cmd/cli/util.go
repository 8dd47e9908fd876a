package main

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/and161185/vibe-journal/internal/client"
	"github.com/golang-jwt/jwt/v5"
)

// ---- transport ----

func loadTLS(caPath string, insecure bool) (*tls.Config, error) {
	if insecure {
		return &tls.Config{InsecureSkipVerify: true}, nil //nolint:gosec // -insecure is dev only
	}
	if caPath == "" {
		return nil, nil
	}
	pem, err := os.ReadFile(caPath)
	if err != nil {
		return nil, err
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pem) {
		return nil, errors.New("bad CA cert")
	}
	return &tls.Config{RootCAs: pool, MinVersion: tls.VersionTLS12}, nil
}

func httpClient(caPath string, insecure bool) (*http.Client, error) {
	tc, err := loadTLS(caPath, insecure)
	if err != nil {
		return nil, err
	}
	hc := &http.Client{Timeout: 15 * time.Second}
	if tc != nil {
		tr := http.DefaultTransport.(*http.Transport).Clone()
		tr.TLSClientConfig = tc
		hc.Transport = tr
	}
	return hc, nil
}

// tokenExpiry reads exp from an access token without verifying it; the
// server is the one that verifies. fallback is used when exp is absent.
func tokenExpiry(token string, fallback time.Time) time.Time {
	var claims jwt.RegisteredClaims
	_, _, err := jwt.NewParser().ParseUnverified(token, &claims)
	if err != nil || claims.ExpiresAt == nil {
		return fallback
	}
	return claims.ExpiresAt.Time
}

// ---- io ----

func readAll(p string) ([]byte, error) {
	if p == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(p)
}

func printJSON(w io.Writer, v any) {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

// notifier prints form and archive messages.
type notifier struct{ w io.Writer }

func (n notifier) Success(msg string) { fmt.Fprintln(n.w, "✓", msg) }
func (n notifier) Failure(msg string) { fmt.Fprintln(n.w, "✗", msg) }

// ---- edit flags ----

// changesFromFlags turns the flags the user actually passed into a patch,
// so that "-url ''" clears the link while an omitted -url leaves it alone.
func changesFromFlags(fs *flag.FlagSet) (client.EntryChanges, error) {
	var ch client.EntryChanges
	fs.Visit(func(f *flag.Flag) {
		v := f.Value.String()
		switch f.Name {
		case "content":
			ch.Content = &v
		case "category":
			ch.Category = &v
		case "media":
			ch.MediaType = &v
		case "url":
			ch.MediaURL = &v
		case "note":
			ch.MediaAnnotation = &v
		case "vibe":
			ch.Vibe = &v
		}
	})
	if ch == (client.EntryChanges{}) {
		return ch, errors.New("nothing to change")
	}
	if ch.Content != nil && strings.TrimSpace(*ch.Content) == "" {
		return ch, errors.New("content cannot be blank")
	}
	return ch, nil
}

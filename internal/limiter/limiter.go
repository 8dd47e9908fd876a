// Package limiter throttles repeated sign-in failures per (email, client address).
package limiter

import (
	"context"
	"crypto/sha256"
	"net"
	"strings"
	"time"
)

// Key identifies one throttling bucket. The client address is stored only as a hash.
type Key struct {
	Email  string
	IPHash []byte
}

// KeyFor builds a bucket key from a normalized email and a remote address.
// A port suffix on addr is ignored so reconnects share a bucket.
func KeyFor(email, addr string) Key {
	if host, _, err := net.SplitHostPort(addr); err == nil {
		addr = host
	}
	return Key{Email: strings.ToLower(strings.TrimSpace(email)), IPHash: HashIP(addr)}
}

// HashIP returns a stable hash for an IP string to avoid storing raw addresses.
func HashIP(ip string) []byte {
	h := sha256.Sum256([]byte(ip))
	return h[:]
}

// Limiter controls sign-in attempts and temporary lockouts.
type Limiter interface {
	// Allow returns zero when an attempt may proceed, otherwise how long to wait.
	Allow(ctx context.Context, k Key) (time.Duration, error)
	// Reset clears the bucket after a successful sign-in.
	Reset(ctx context.Context, k Key) error
	// Fail records a failed attempt and returns the lockout it caused, if any.
	Fail(ctx context.Context, k Key) (time.Duration, error)
}

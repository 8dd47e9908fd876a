// Package session keeps server-side records of issued access tokens so that
// sign-out revokes a token before it expires.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/and161185/vibe-journal/internal/errs"
	"github.com/and161185/vibe-journal/internal/model"
	"github.com/gofrs/uuid/v5"
	"github.com/redis/go-redis/v9"
)

// Client is the subset of *redis.Client used by the store.
type Client interface {
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	SAdd(ctx context.Context, key string, members ...any) *redis.IntCmd
	SRem(ctx context.Context, key string, members ...any) *redis.IntCmd
	SMembers(ctx context.Context, key string) *redis.StringSliceCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
}

// Store records live sessions.
type Store interface {
	Create(ctx context.Context, s model.Session) error
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteAllForUser(ctx context.Context, userID uuid.UUID) error
}

// RedisStore keeps session:<id> -> user id with the token's TTL and indexes
// ids per user under user_sessions:<uid>.
type RedisStore struct {
	rdb Client
	now func() time.Time
}

// NewRedisStore wraps a redis client.
func NewRedisStore(rdb Client) *RedisStore {
	return &RedisStore{rdb: rdb, now: time.Now}
}

func sessionKey(id uuid.UUID) string  { return "session:" + id.String() }
func userSetKey(uid uuid.UUID) string { return "user_sessions:" + uid.String() }

// Create stores s until its expiry. Already expired sessions are rejected.
func (s *RedisStore) Create(ctx context.Context, sess model.Session) error {
	ttl := sess.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return fmt.Errorf("session already expired: %w", errs.ErrValidation)
	}
	if err := s.rdb.Set(ctx, sessionKey(sess.ID), sess.UserID.String(), ttl).Err(); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	set := userSetKey(sess.UserID)
	if err := s.rdb.SAdd(ctx, set, sess.ID.String()).Err(); err != nil {
		return fmt.Errorf("index session: %w", err)
	}
	// The index lives as long as the newest session.
	return s.rdb.Expire(ctx, set, ttl).Err()
}

// Exists reports whether the session is still live.
func (s *RedisStore) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	err := s.rdb.Get(ctx, sessionKey(id)).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Delete revokes one session. Deleting an unknown session is not an error.
func (s *RedisStore) Delete(ctx context.Context, id uuid.UUID) error {
	uid, err := s.rdb.Get(ctx, sessionKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := s.rdb.Del(ctx, sessionKey(id)).Err(); err != nil {
		return err
	}
	if u, perr := uuid.FromString(uid); perr == nil {
		s.rdb.SRem(ctx, userSetKey(u), id.String())
	}
	return nil
}

// DeleteAllForUser revokes every session of a user.
func (s *RedisStore) DeleteAllForUser(ctx context.Context, userID uuid.UUID) error {
	set := userSetKey(userID)
	ids, err := s.rdb.SMembers(ctx, set).Result()
	if err != nil {
		return err
	}
	keys := make([]string, 0, len(ids)+1)
	for _, id := range ids {
		keys = append(keys, "session:"+id)
	}
	keys = append(keys, set)
	return s.rdb.Del(ctx, keys...).Err()
}

// Connect opens a pooled redis client from a redis:// URL and pings it.
func Connect(ctx context.Context, url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	opt.PoolSize = 10
	opt.MinIdleConns = 2
	opt.MaxRetries = 3
	opt.DialTimeout = 5 * time.Second
	opt.ReadTimeout = 3 * time.Second
	opt.WriteTimeout = 3 * time.Second

	rdb := redis.NewClient(opt)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

package storage

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// Redis is a [Store] backed by a Redis instance, for clients that share
// session state across processes (kiosk fleets, CLI sessions on one host).
// Keys are namespaced under the given prefix.
type Redis struct {
	client redis.UniversalClient
	prefix string
}

// NewRedis creates a Redis-backed store. prefix namespaces every key as
// "<prefix>:<key>"; an empty prefix stores keys bare.
func NewRedis(client redis.UniversalClient, prefix string) *Redis {
	return &Redis{client: client, prefix: prefix}
}

func (r *Redis) key(key string) string {
	if r.prefix == "" {
		return key
	}
	return r.prefix + ":" + key
}

// Get implements [Store].
func (r *Redis) Get(ctx context.Context, key string) (string, error) {
	value, err := r.client.Get(ctx, r.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

// Set implements [Store]. Values persist without expiry; the session layer
// owns their lifecycle through explicit deletes.
func (r *Redis) Set(ctx context.Context, key, value string) error {
	return r.client.Set(ctx, r.key(key), value, 0).Err()
}

// Delete implements [Store].
func (r *Redis) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.key(key)).Err()
}

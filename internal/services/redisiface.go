package services

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// SessionNamespace scopes credential keys in a shared redis database.
const SessionNamespace = "gamelog:session"

// errCacheMiss is what RedisClient.Get returns for an absent key.
var errCacheMiss = errors.New("session cache miss")

// RedisClient narrows redis to the operations the credential store needs.
type RedisClient interface {
	Set(ctx context.Context, key string, value []byte, expiration time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Expire(ctx context.Context, key string, expiration time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// RedisAdapter wraps *redis.Client to satisfy RedisClient. Keys are prefixed
// with the namespace, so profiles only ever name their own slot.
type RedisAdapter struct {
	client    *redis.Client
	namespace string
}

func NewRedisAdapter(client *redis.Client, namespace string) *RedisAdapter {
	return &RedisAdapter{client: client, namespace: namespace}
}

func (r *RedisAdapter) key(k string) string {
	if r.namespace == "" {
		return k
	}
	return r.namespace + ":" + k
}

func (r *RedisAdapter) Set(ctx context.Context, key string, value []byte, expiration time.Duration) error {
	return r.client.Set(ctx, r.key(key), value, expiration).Err()
}

func (r *RedisAdapter) Get(ctx context.Context, key string) (string, error) {
	v, err := r.client.Get(ctx, r.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", errCacheMiss
	}
	return v, err
}

func (r *RedisAdapter) Expire(ctx context.Context, key string, expiration time.Duration) error {
	return r.client.Expire(ctx, r.key(key), expiration).Err()
}

func (r *RedisAdapter) Del(ctx context.Context, keys ...string) error {
	scoped := make([]string, len(keys))
	for i, k := range keys {
		scoped[i] = r.key(k)
	}
	return r.client.Del(ctx, scoped...).Err()
}

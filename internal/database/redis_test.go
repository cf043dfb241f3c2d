package database

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/HammerMeetNail/gamelog/internal/config"
)

func stubRedis(t *testing.T, ping func(ctx context.Context, client *redis.Client) error) *redis.Options {
	t.Helper()
	origNew := newRedisClient
	origPing := redisPing
	t.Cleanup(func() {
		newRedisClient = origNew
		redisPing = origPing
	})

	got := &redis.Options{}
	newRedisClient = func(opts *redis.Options) *redis.Client {
		*got = *opts
		return redis.NewClient(&redis.Options{Addr: "localhost:0"})
	}
	redisPing = ping
	return got
}

func TestOpenRedis_PingError(t *testing.T) {
	pingErr := errors.New("ping failed")
	stubRedis(t, func(ctx context.Context, client *redis.Client) error { return pingErr })

	_, err := OpenRedis(context.Background(), config.RedisConfig{Host: "cache", Port: 6379})
	if !errors.Is(err, pingErr) {
		t.Fatalf("expected ping error to wrap %v, got %v", pingErr, err)
	}
	if !strings.Contains(err.Error(), "pinging redis at cache:6379") {
		t.Fatalf("expected address in error, got %q", err.Error())
	}
}

func TestOpenRedis_SetsOptions(t *testing.T) {
	got := stubRedis(t, func(ctx context.Context, client *redis.Client) error {
		if _, ok := ctx.Deadline(); !ok {
			t.Fatal("expected ping deadline")
		}
		return nil
	})

	db, err := OpenRedis(context.Background(), config.RedisConfig{Host: "cache", Port: 6380, Password: "pass", DB: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if got.Addr != "cache:6380" || got.Password != "pass" || got.DB != 2 {
		t.Fatalf("unexpected options %+v", got)
	}
	if got.DialTimeout != 3*time.Second || got.ReadTimeout != 2*time.Second || got.WriteTimeout != 2*time.Second {
		t.Fatalf("unexpected timeouts %+v", got)
	}
	if got.PoolSize != 2 {
		t.Fatalf("expected PoolSize 2, got %d", got.PoolSize)
	}
}

func TestRedis_CloseNil(t *testing.T) {
	var r *Redis
	if err := r.Close(); err != nil {
		t.Fatalf("unexpected close error: %v", err)
	}
}

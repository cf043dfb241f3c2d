package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/HammerMeetNail/gamelog/internal/logging"
	"github.com/HammerMeetNail/gamelog/internal/models"
)

// CredentialStore persists the session token and viewer id. Load returns a
// zero credential and a nil error when nobody is signed in.
type CredentialStore interface {
	Load(ctx context.Context) (models.Credential, error)
	Save(ctx context.Context, cred models.Credential) error
	Clear(ctx context.Context) error
}

type MemoryCredentialStore struct {
	mu   sync.RWMutex
	cred models.Credential
}

func NewMemoryCredentialStore(initial models.Credential) *MemoryCredentialStore {
	return &MemoryCredentialStore{cred: initial}
}

func (s *MemoryCredentialStore) Load(ctx context.Context) (models.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cred, nil
}

func (s *MemoryCredentialStore) Save(ctx context.Context, cred models.Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cred = cred
	return nil
}

func (s *MemoryCredentialStore) Clear(ctx context.Context) error {
	return s.Save(ctx, models.Credential{})
}

// RedisCredentialStore keeps the credential as JSON under one key. A missing
// key means signed out. Every
// successful Load slides the expiry forward.
type RedisCredentialStore struct {
	redis RedisClient
	key   string
	ttl   time.Duration
}

func NewRedisCredentialStore(client RedisClient, key string, ttl time.Duration) *RedisCredentialStore {
	return &RedisCredentialStore{redis: client, key: key, ttl: ttl}
}

func (s *RedisCredentialStore) Load(ctx context.Context) (models.Credential, error) {
	raw, err := s.redis.Get(ctx, s.key)
	if errors.Is(err, errCacheMiss) {
		return models.Credential{}, nil
	}
	if err != nil {
		return models.Credential{}, fmt.Errorf("load credential: %w", err)
	}

	var cred models.Credential
	if err := json.Unmarshal([]byte(raw), &cred); err != nil {
		return models.Credential{}, fmt.Errorf("decode credential: %w", err)
	}

	if s.ttl > 0 {
		if err := s.redis.Expire(ctx, s.key, s.ttl); err != nil {
			logging.Warn("Failed to refresh credential expiry", map[string]interface{}{
				"error": err.Error(),
				"key":   s.key,
			})
		}
	}
	return cred, nil
}

func (s *RedisCredentialStore) Save(ctx context.Context, cred models.Credential) error {
	payload, err := json.Marshal(cred)
	if err != nil {
		return fmt.Errorf("encode credential: %w", err)
	}
	if err := s.redis.Set(ctx, s.key, payload, s.ttl); err != nil {
		return fmt.Errorf("save credential: %w", err)
	}
	return nil
}

func (s *RedisCredentialStore) Clear(ctx context.Context) error {
	if err := s.redis.Del(ctx, s.key); err != nil {
		return fmt.Errorf("clear credential: %w", err)
	}
	return nil
}

// bearerFor loads the stored credential and insists on a signed-in viewer.
func bearerFor(ctx context.Context, store CredentialStore) (models.Credential, error) {
	cred, err := store.Load(ctx)
	if err != nil {
		return models.Credential{}, err
	}
	if !cred.Present() || cred.UserID == 0 {
		return models.Credential{}, ErrNotAuthenticated
	}
	return cred, nil
}

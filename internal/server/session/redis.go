package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/avolkov/authgate/internal/common"
)

// keyPrefix namespaces session keys so the store can share a Redis
// database with other components.
const keyPrefix = "authgate:session:"

// RedisStore keeps principals in Redis so sessions survive server restarts
// and can be shared by multiple instances. Session expiry is Redis's TTL;
// an expired session simply reads as absent.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func sessionKey(handle string) string {
	return keyPrefix + handle
}

func (s *RedisStore) Attach(ctx context.Context, handle string, p *Principal) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encoding principal: %w", err)
	}
	if err := s.client.Set(ctx, sessionKey(handle), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, handle string) (*Principal, error) {
	data, err := s.client.Get(ctx, sessionKey(handle)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis get: %w", err)
	}

	p := &Principal{}
	if err := json.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("decoding principal: %w", err)
	}
	return p, nil
}

// Replace overwrites the principal without resetting the session's TTL, so
// a settings change does not extend the session's lifetime. The write is
// conditional on the key still existing: a plain SET with KeepTTL on an
// expired handle would recreate the key without any TTL, reviving the
// session forever. A session that expired under the caller surfaces as
// common.ErrNotFound.
func (s *RedisStore) Replace(ctx context.Context, handle string, p *Principal) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encoding principal: %w", err)
	}
	err = s.client.SetArgs(ctx, sessionKey(handle), data, redis.SetArgs{Mode: "XX", KeepTTL: true}).Err()
	if errors.Is(err, redis.Nil) {
		return common.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (s *RedisStore) Destroy(ctx context.Context, handle string) error {
	if err := s.client.Del(ctx, sessionKey(handle)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/cellarstock/inventory-auth/internal/core/ports"
)

var _ ports.IdentityStore = (*IdentityStore)(nil)

// IdentityStore keeps identity records as plain Redis strings.
// Key format: <namespace>:<key>
type IdentityStore struct {
	client    *redis.Client
	namespace string
}

// NewIdentityStore wraps client. namespace prefixes every key.
func NewIdentityStore(client *redis.Client, namespace string) *IdentityStore {
	return &IdentityStore{client: client, namespace: namespace}
}

func (s *IdentityStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	v, err := s.client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return v, true, nil
}

func (s *IdentityStore) Set(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, s.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (s *IdentityStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

func (s *IdentityStore) key(k string) string {
	if s.namespace == "" {
		return k
	}
	return s.namespace + ":" + k
}

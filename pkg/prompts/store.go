package prompts

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// ErrTemplateNotFound indicates the store has no template for the stage.
// Loaders treat it the same as an unreachable store: fall back to defaults.
var ErrTemplateNotFound = errors.New("prompt template not found")

// Store is the external prompt template storage consulted before the
// embedded defaults.
type Store interface {
	Get(ctx context.Context, stage string) (string, error)
}

const redisKeyPrefix = "flowgen:prompts:"

// RedisStore reads stage templates from Redis, allowing prompt iteration
// without redeploying the service.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a Redis-backed template store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Get(ctx context.Context, stage string) (string, error) {
	value, err := s.client.Get(ctx, redisKeyPrefix+stage).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrTemplateNotFound
	}

	if err != nil {
		return "", fmt.Errorf("failed to read prompt template for stage %s: %w", stage, err)
	}

	return value, nil
}

// Set writes a stage template, used by operational tooling.
func (s *RedisStore) Set(ctx context.Context, stage, template string) error {
	err := s.client.Set(ctx, redisKeyPrefix+stage, template, 0).Err()
	if err != nil {
		return fmt.Errorf("failed to store prompt template for stage %s: %w", stage, err)
	}

	return nil
}

// StaticStore is an in-memory Store for tests and the one-shot CLI.
type StaticStore map[string]string

func (s StaticStore) Get(_ context.Context, stage string) (string, error) {
	if tmpl, ok := s[stage]; ok {
		return tmpl, nil
	}

	return "", ErrTemplateNotFound
}

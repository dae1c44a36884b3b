package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/teamsteps/teamsteps/internal/models"
)

// DefaultRedisKey holds the document when no key is configured.
const DefaultRedisKey = "teamsteps:users"

// RedisRepo stores the JSON document under a single key without expiry.
type RedisRepo struct {
	client *redis.Client
	key    string
}

// NewRedisRepo creates a Redis-backed repo. Key may be empty.
func NewRedisRepo(client *redis.Client, key string) *RedisRepo {
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisRepo{client: client, key: key}
}

func (r *RedisRepo) Name() string { return "redis" }

func (r *RedisRepo) Load(ctx context.Context) ([]models.UserWithToken, error) {
	b, err := r.client.Get(ctx, r.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%w: redis key %s", ErrNoDocument, r.key)
		}
		return nil, fmt.Errorf("redis get %s: %w", r.key, err)
	}
	return decodeUsers(b)
}

func (r *RedisRepo) Save(ctx context.Context, users []models.UserWithToken) error {
	b, err := encodeUsers(users)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, r.key, b, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", r.key, err)
	}
	return nil
}

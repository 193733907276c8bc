package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/pixo/internal/server/models"
	"github.com/go-redis/redis/v8"
)

// profileKey is the Redis key for a cached profile.
// Format: profile:<username>
const profileKey = "profile:%s"

// RedisProfileCache stores profiles as JSON strings with a TTL.
type RedisProfileCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewRedisClient parses redisURL (e.g. "redis://localhost:6379/0") and pings
// the server before handing the client out.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	if redisURL == "" {
		return nil, fmt.Errorf("redis URL cannot be empty")
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return client, nil
}

func NewRedisProfileCache(client redis.Cmdable, ttl time.Duration) *RedisProfileCache {
	return &RedisProfileCache{client: client, ttl: ttl}
}

func (c *RedisProfileCache) Get(ctx context.Context, username string) (*models.Profile, bool, error) {
	raw, err := c.client.Get(ctx, fmt.Sprintf(profileKey, username)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}

	var p models.Profile
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return nil, false, fmt.Errorf("decode cached profile: %w", err)
	}
	return &p, true, nil
}

func (c *RedisProfileCache) Set(ctx context.Context, profile *models.Profile) error {
	b, err := json.Marshal(profile)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, fmt.Sprintf(profileKey, profile.Username), b, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

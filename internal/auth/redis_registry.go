package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisRegistry keeps refresh-token membership in Redis, with the key TTL
// doubling as the expiry check.
type RedisRegistry struct {
	client *redis.Client
	prefix string
}

func NewRedisRegistry(client *redis.Client) *RedisRegistry {
	return &RedisRegistry{client: client, prefix: "refresh:"}
}

func (r *RedisRegistry) key(token string) string {
	return r.prefix + hashToken(token)
}

func (r *RedisRegistry) Register(ctx context.Context, token, userID string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return fmt.Errorf("refresh token expiry must be in the future")
	}

	return r.client.Set(ctx, r.key(token), userID, ttl).Err()
}

func (r *RedisRegistry) IsActive(ctx context.Context, token string) (bool, error) {
	count, err := r.client.Exists(ctx, r.key(token)).Result()
	if err != nil {
		return false, fmt.Errorf("check refresh token: %w", err)
	}

	return count > 0, nil
}

func (r *RedisRegistry) Revoke(ctx context.Context, token string) (bool, error) {
	deleted, err := r.client.Del(ctx, r.key(token)).Result()
	if err != nil {
		return false, fmt.Errorf("revoke refresh token: %w", err)
	}

	return deleted > 0, nil
}

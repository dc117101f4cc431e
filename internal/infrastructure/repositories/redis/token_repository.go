package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"mediahub/internal/core/domain"
	"mediahub/internal/core/ports"

	"github.com/redis/go-redis/v9"
)

const tokenKeyPrefix = keyPrefix + "token:"

// RedisTokenRepository stores tokens under keys that expire with the token,
// so reclamation is left to Redis.
type RedisTokenRepository struct {
	client *redis.Client
	now    func() time.Time
}

func NewRedisTokenRepository(client *redis.Client) ports.TokenRepository {
	return &RedisTokenRepository{client: client, now: time.Now}
}

func tokenKey(token string) string { return tokenKeyPrefix + token }

func (r *RedisTokenRepository) Save(ctx context.Context, token *domain.AuthToken) error {
	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("failed to marshal token: %w", err)
	}
	ttl := token.ExpiresAt.Sub(r.now())
	if ttl <= 0 {
		ttl = time.Second
	}
	created, err := r.client.SetNX(ctx, tokenKey(token.Token), data, ttl).Result()
	if err != nil {
		return fmt.Errorf("failed to store token in Redis: %w", err)
	}
	if !created {
		return fmt.Errorf("token: %w", domain.ErrConflict)
	}
	return nil
}

func (r *RedisTokenRepository) Get(ctx context.Context, token string) (*domain.AuthToken, error) {
	data, err := r.client.Get(ctx, tokenKey(token)).Bytes()
	if err == redis.Nil {
		return nil, fmt.Errorf("token: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get token from Redis: %w", err)
	}
	var out domain.AuthToken
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to unmarshal token: %w", err)
	}
	return &out, nil
}

// Revoke rewrites the document and keeps the remaining TTL.
func (r *RedisTokenRepository) Revoke(ctx context.Context, token string, at time.Time) error {
	current, err := r.Get(ctx, token)
	if err != nil {
		return err
	}
	if current.RevokedAt != nil {
		return nil
	}
	current.RevokedAt = &at
	data, err := json.Marshal(current)
	if err != nil {
		return fmt.Errorf("failed to marshal token: %w", err)
	}
	if err := r.client.SetArgs(ctx, tokenKey(token), data, redis.SetArgs{KeepTTL: true, Mode: "XX"}).Err(); err != nil && err != redis.Nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// DeleteExpired is a no-op; expired keys are evicted by their TTL.
func (r *RedisTokenRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	return 0, nil
}

package redisstore

import (
	"context"
	"fmt"
	"time"

	"github.com/linemk/proshop/internal/storage"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "token:blacklist:jti:"

// TokenBlacklist хранит отозванные jti в redis; ключ живёт до истечения токена.
type TokenBlacklist struct {
	client *redis.Client
}

var _ storage.TokenBlacklist = (*TokenBlacklist)(nil)

func NewTokenBlacklist(client *redis.Client) *TokenBlacklist {
	return &TokenBlacklist{client: client}
}

func (b *TokenBlacklist) Blacklist(ctx context.Context, jti string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		// токен уже истёк, хранить нечего
		return nil
	}
	if err := b.client.Set(ctx, keyPrefix+jti, "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to blacklist token: %w", err)
	}
	return nil
}

func (b *TokenBlacklist) IsBlacklisted(ctx context.Context, jti string) (bool, error) {
	n, err := b.client.Exists(ctx, keyPrefix+jti).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check token blacklist: %w", err)
	}
	return n > 0, nil
}

package cache

import (
	"context"
	"errors"
	"strings"
	"time"

	"fanverse/services/auth-service/internal/domain"

	"github.com/redis/go-redis/v9"
)

type TokenCache struct {
	client *redis.Client
}

func NewTokenCache(client *redis.Client) *TokenCache {
	return &TokenCache{client: client}
}

func (c *TokenCache) SaveRefresh(ctx context.Context, refreshToken, userID string, ttl time.Duration) error {
	return c.client.Set(ctx, "refresh_token:"+refreshToken, userID, ttl).Err()
}

// ConsumeRefresh returns the owner of a refresh token and removes it in one
// step, so a token rotates at most once.
func (c *TokenCache) ConsumeRefresh(ctx context.Context, refreshToken string) (string, error) {
	val, err := c.client.GetDel(ctx, "refresh_token:"+refreshToken).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", domain.ErrInvalidToken
		}
		return "", err
	}
	return val, nil
}

func (c *TokenCache) DeleteRefresh(ctx context.Context, refreshToken string) error {
	return c.client.Del(ctx, "refresh_token:"+refreshToken).Err()
}

func (c *TokenCache) SaveConfirmToken(ctx context.Context, token, userID string, ttl time.Duration) error {
	return c.client.Set(ctx, "confirm_token:"+token, userID, ttl).Err()
}

func (c *TokenCache) GetConfirmToken(ctx context.Context, token string) (string, error) {
	return c.get(ctx, "confirm_token:"+token)
}

func (c *TokenCache) DeleteConfirmToken(ctx context.Context, token string) error {
	return c.client.Del(ctx, "confirm_token:"+token).Err()
}

// AcquireResendSlot reports false while a previous confirmation email for
// the address is still inside its cooldown window.
func (c *TokenCache) AcquireResendSlot(ctx context.Context, email string, cooldown time.Duration) (bool, error) {
	key := "confirm_resend:" + strings.ToLower(email)
	return c.client.SetNX(ctx, key, 1, cooldown).Result()
}

func (c *TokenCache) get(ctx context.Context, key string) (string, error) {
	val, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", domain.ErrInvalidToken
		}
		return "", err
	}
	return val, nil
}

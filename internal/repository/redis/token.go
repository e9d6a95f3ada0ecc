package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/medhq/hospital-api/internal/repository"
)

// tokenRepository keeps refresh tokens in redis under a TTL so a
// logout revokes the session immediately instead of waiting for the
// JWT to lapse. Tokens are stored hashed; the raw value never touches
// the store.
type tokenRepository struct {
	client *goredis.Client
}

func NewTokenRepository(url string) (repository.TokenRepository, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	client := goredis.NewClient(opts)
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &tokenRepository{client: client}, nil
}

func tokenKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return "refresh_token:" + hex.EncodeToString(sum[:])
}

func userSetKey(userID uuid.UUID) string {
	return "user_tokens:" + userID.String()
}

func (r *tokenRepository) StoreRefreshToken(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return fmt.Errorf("refresh token already expired")
	}

	key := tokenKey(token)
	pipe := r.client.TxPipeline()
	pipe.Set(ctx, key, userID.String(), ttl)
	pipe.SAdd(ctx, userSetKey(userID), key)
	pipe.ExpireAt(ctx, userSetKey(userID), expiresAt)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store refresh token: %w", err)
	}
	return nil
}

func (r *tokenRepository) ValidateRefreshToken(ctx context.Context, token string) (uuid.UUID, error) {
	val, err := r.client.Get(ctx, tokenKey(token)).Result()
	if errors.Is(err, goredis.Nil) {
		return uuid.Nil, repository.ErrNotFound
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to look up refresh token: %w", err)
	}

	userID, err := uuid.Parse(val)
	if err != nil {
		return uuid.Nil, fmt.Errorf("corrupt refresh token entry: %w", err)
	}
	return userID, nil
}

func (r *tokenRepository) RevokeRefreshToken(ctx context.Context, token string) error {
	if err := r.client.Del(ctx, tokenKey(token)).Err(); err != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	return nil
}

func (r *tokenRepository) RevokeAllForUser(ctx context.Context, userID uuid.UUID) error {
	keys, err := r.client.SMembers(ctx, userSetKey(userID)).Result()
	if err != nil {
		return fmt.Errorf("failed to list user tokens: %w", err)
	}
	if len(keys) > 0 {
		if err := r.client.Del(ctx, keys...).Err(); err != nil {
			return fmt.Errorf("failed to revoke user tokens: %w", err)
		}
	}
	return r.client.Del(ctx, userSetKey(userID)).Err()
}

package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrTokenNotFound    = errors.New("token not found")
	ErrRedisUnavailable = errors.New("redis unavailable")
)

const (
	UserTokenPrefix    = "login:user:token"
	RefreshTokenPrefix = "login:user:refresh"
	UserTokenExpire    = 30 * time.Minute
)

// rotateRefresh swaps the stored refresh token only when the caller presents
// the current one.
var rotateRefresh = redis.NewScript(`
local val = redis.call("GET", KEYS[1])
if not val or val ~= ARGV[1] then
  return 0
end
redis.call("SET", KEYS[1], ARGV[2], "PX", ARGV[3])
return 1
`)

// TokenRepository keeps the single active access and refresh token per user.
type TokenRepository struct {
	RDB *redis.Client
}

func tokenKey(userID string) string {
	return fmt.Sprintf("%s:%s", UserTokenPrefix, userID)
}

func refreshKey(userID string) string {
	return fmt.Sprintf("%s:%s", RefreshTokenPrefix, userID)
}

func (r *TokenRepository) AddUserToken(ctx context.Context, userID, token string) error {
	if err := r.RDB.Set(ctx, tokenKey(userID), token, UserTokenExpire).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

func (r *TokenRepository) GetUserToken(ctx context.Context, userID string) (string, error) {
	token, err := r.RDB.Get(ctx, tokenKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrTokenNotFound
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return token, nil
}

// ExtendUserToken slides the session window.
func (r *TokenRepository) ExtendUserToken(ctx context.Context, userID string) error {
	if err := r.RDB.Expire(ctx, tokenKey(userID), UserTokenExpire).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

func (r *TokenRepository) SaveRefreshToken(ctx context.Context, userID, token string, ttl time.Duration) error {
	if err := r.RDB.Set(ctx, refreshKey(userID), token, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// RotateRefreshToken replaces oldToken with newToken. ErrTokenNotFound means
// oldToken is not the user's current refresh token.
func (r *TokenRepository) RotateRefreshToken(ctx context.Context, userID, oldToken, newToken string, ttl time.Duration) error {
	ok, err := rotateRefresh.Run(ctx, r.RDB, []string{refreshKey(userID)}, oldToken, newToken, ttl.Milliseconds()).Int()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if ok == 0 {
		return ErrTokenNotFound
	}
	return nil
}

// DeleteUserToken ends the session: both the access and the refresh token go.
func (r *TokenRepository) DeleteUserToken(ctx context.Context, userID string) error {
	if err := r.RDB.Del(ctx, tokenKey(userID), refreshKey(userID)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

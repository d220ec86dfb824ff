package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	OAuthStatePrefix = "oauth:state:"
	OAuthStateTTL    = 10 * time.Minute
)

var ErrStateNotFound = errors.New("oauth state not found")

type OAuthStateRepository struct {
	RDB *redis.Client
}

// Save returns false if the state already exists.
func (r *OAuthStateRepository) Save(ctx context.Context, state, provider string) (bool, error) {
	return r.RDB.SetNX(ctx, OAuthStatePrefix+state, provider, OAuthStateTTL).Result()
}

// Consume reads and deletes the state in one round trip.
func (r *OAuthStateRepository) Consume(ctx context.Context, state string) (string, error) {
	v, err := r.RDB.GetDel(ctx, OAuthStatePrefix+state).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrStateNotFound
	}
	return v, err
}

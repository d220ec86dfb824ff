package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

var Client *redis.Client

// Init creates the shared client and pings it once.
func Init(ctx context.Context, addr, password string, db int) error {
	Client = redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	return Client.Ping(pingCtx).Err()
}

func Close() error {
	if Client == nil {
		return nil
	}
	return Client.Close()
}

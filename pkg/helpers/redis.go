package helpers

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient initializes a redis client with short timeouts so a slow
// Redis degrades rate limiting instead of stalling requests.
func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	})
}

// RedisHealthy pings the server with a bounded wait.
func RedisHealthy(ctx context.Context, rdb *redis.Client) bool {
	if rdb == nil {
		return false
	}
	c, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	return rdb.Ping(c).Err() == nil
}

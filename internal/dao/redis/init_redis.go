// Package redis keeps per-user notification queues in Redis lists.
// It uses github.com/redis/go-redis/v9 as the client.
package redis

import (
	"context"
	"strconv"
	"time"

	"usermanagement_server/internal/config"
	"usermanagement_server/pkg/constants"
	"usermanagement_server/pkg/errorx"

	"github.com/redis/go-redis/v9"
)

// NewClient connects to the server described by conf and pings it.
func NewClient(ctx context.Context, conf config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         conf.Host + ":" + strconv.Itoa(conf.Port),
		Password:     conf.Password,
		DB:           conf.Db,
		PoolSize:     50,
		MinIdleConns: 5,
	})

	pingCtx, cancel := context.WithTimeout(ctx, constants.REDIS_TIMEOUT*time.Minute)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, errorx.Wrapf(err, errorx.CodeCacheError, "redis ping %s:%d", conf.Host, conf.Port)
	}
	return client, nil
}

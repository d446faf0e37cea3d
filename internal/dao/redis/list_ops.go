package redis

import (
	"context"
	"strconv"

	"usermanagement_server/pkg/errorx"

	"github.com/redis/go-redis/v9"
)

const queueKeyPrefix = "um:notifications:"

// ListQueue stores each recipient's pending payloads in one Redis list, oldest first.
type ListQueue struct {
	client *redis.Client
	maxLen int64
}

// NewListQueue keeps at most maxLen entries per recipient; older ones are trimmed.
func NewListQueue(client *redis.Client, maxLen int) *ListQueue {
	return &ListQueue{client: client, maxLen: int64(maxLen)}
}

func queueKey(recipient int64) string {
	return queueKeyPrefix + strconv.FormatInt(recipient, 10)
}

// Push appends payload and trims the list to the newest maxLen entries.
func (q *ListQueue) Push(ctx context.Context, recipient int64, payload []byte) error {
	key := queueKey(recipient)
	pipe := q.client.TxPipeline()
	pipe.RPush(ctx, key, payload)
	if q.maxLen > 0 {
		pipe.LTrim(ctx, key, -q.maxLen, -1)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return errorx.Wrapf(err, errorx.CodeCacheError, "redis push %s", key)
	}
	return nil
}

// Drain returns every payload and empties the list in one MULTI/EXEC.
func (q *ListQueue) Drain(ctx context.Context, recipient int64) ([][]byte, error) {
	key := queueKey(recipient)
	pipe := q.client.TxPipeline()
	rangeCmd := pipe.LRange(ctx, key, 0, -1)
	pipe.Del(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errorx.Wrapf(err, errorx.CodeCacheError, "redis drain %s", key)
	}
	values := rangeCmd.Val()
	out := make([][]byte, 0, len(values))
	for _, v := range values {
		out = append(out, []byte(v))
	}
	return out, nil
}

// Clear drops the recipient's list.
func (q *ListQueue) Clear(ctx context.Context, recipient int64) error {
	key := queueKey(recipient)
	if err := q.client.Del(ctx, key).Err(); err != nil {
		return errorx.Wrapf(err, errorx.CodeCacheError, "redis del %s", key)
	}
	return nil
}

// Len returns the number of pending payloads.
func (q *ListQueue) Len(ctx context.Context, recipient int64) (int, error) {
	key := queueKey(recipient)
	n, err := q.client.LLen(ctx, key).Result()
	if err != nil {
		return 0, errorx.Wrapf(err, errorx.CodeCacheError, "redis llen %s", key)
	}
	return int(n), nil
}

package notify

import (
	"context"
	"encoding/json"

	"usermanagement_server/pkg/errorx"

	"go.uber.org/zap"
)

// ListStore is the byte-level list backend behind RedisQueue (see dao/redis.ListQueue).
type ListStore interface {
	Push(ctx context.Context, recipient int64, payload []byte) error
	Drain(ctx context.Context, recipient int64) ([][]byte, error)
	Clear(ctx context.Context, recipient int64) error
	Len(ctx context.Context, recipient int64) (int, error)
}

// RedisQueue stores messages as JSON in a ListStore so queues survive restarts and are shared between instances.
type RedisQueue struct {
	lists ListStore
}

// NewRedisQueue wraps lists.
func NewRedisQueue(lists ListStore) *RedisQueue {
	return &RedisQueue{lists: lists}
}

func (q *RedisQueue) Push(ctx context.Context, recipient int64, msg Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return errorx.Wrap(err, errorx.CodeCacheError, "encode notification")
	}
	return q.lists.Push(ctx, recipient, payload)
}

// Drain skips entries that no longer decode, logging them.
func (q *RedisQueue) Drain(ctx context.Context, recipient int64) ([]Message, error) {
	raw, err := q.lists.Drain(ctx, recipient)
	if err != nil {
		return nil, err
	}
	out := make([]Message, 0, len(raw))
	for _, b := range raw {
		var msg Message
		if err := json.Unmarshal(b, &msg); err != nil {
			zap.L().Warn("drop undecodable notification", zap.Int64("recipient", recipient), zap.Error(err))
			continue
		}
		out = append(out, msg)
	}
	return out, nil
}

func (q *RedisQueue) Clear(ctx context.Context, recipient int64) error {
	return q.lists.Clear(ctx, recipient)
}

func (q *RedisQueue) Len(ctx context.Context, recipient int64) (int, error) {
	return q.lists.Len(ctx, recipient)
}

package notify

import (
	"context"
	"sync"
)

// Queue holds each recipient's undelivered messages in arrival order.
type Queue interface {
	Push(ctx context.Context, recipient int64, msg Message) error
	// Drain returns every pending message and empties the queue atomically.
	Drain(ctx context.Context, recipient int64) ([]Message, error)
	Clear(ctx context.Context, recipient int64) error
	Len(ctx context.Context, recipient int64) (int, error)
}

// MemoryQueue is a Queue kept in process memory.
// Each recipient keeps at most maxLen messages; the oldest are dropped first.
type MemoryQueue struct {
	mu     sync.Mutex
	queues map[int64][]Message
	maxLen int
}

// NewMemoryQueue creates an empty queue; maxLen <= 0 means unbounded.
func NewMemoryQueue(maxLen int) *MemoryQueue {
	return &MemoryQueue{queues: make(map[int64][]Message), maxLen: maxLen}
}

func (q *MemoryQueue) Push(ctx context.Context, recipient int64, msg Message) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	list := append(q.queues[recipient], msg)
	if q.maxLen > 0 && len(list) > q.maxLen {
		list = append([]Message(nil), list[len(list)-q.maxLen:]...)
	}
	q.queues[recipient] = list
	return nil
}

func (q *MemoryQueue) Drain(ctx context.Context, recipient int64) ([]Message, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	list := q.queues[recipient]
	delete(q.queues, recipient)
	if list == nil {
		return []Message{}, nil
	}
	return list, nil
}

func (q *MemoryQueue) Clear(ctx context.Context, recipient int64) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.queues, recipient)
	return nil
}

func (q *MemoryQueue) Len(ctx context.Context, recipient int64) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.queues[recipient]), nil
}

package notify

import (
	"context"
	"encoding/json"
	"strconv"

	"usermanagement_server/internal/infrastructure/metrics"

	"go.uber.org/zap"
)

// Presence tells whether a user is currently held in memory (i.e. online).
type Presence interface {
	HasCached(userId int64) bool
}

// LiveSender pushes a message over an open connection. It reports false when
// the recipient has no connection or the send buffer is full.
type LiveSender interface {
	SendLive(recipient int64, msg Message) bool
}

// EventPublisher receives a copy of every routed message, keyed by recipient.
type EventPublisher interface {
	Publish(key, value []byte)
}

// Deliverer routes notifications: online recipients get them live when
// connected and queued otherwise; offline recipients get nothing, since
// their state is rebuilt from the store on their next request.
type Deliverer struct {
	presence Presence
	queue    Queue
	live     LiveSender
	events   EventPublisher
}

// NewDeliverer builds a Deliverer. live and events may be nil.
func NewDeliverer(presence Presence, queue Queue, live LiveSender, events EventPublisher) *Deliverer {
	return &Deliverer{presence: presence, queue: queue, live: live, events: events}
}

// Notify routes p to recipient. Only queue failures are returned.
func (d *Deliverer) Notify(ctx context.Context, recipient int64, p Payload) error {
	if !d.presence.HasCached(recipient) {
		return nil
	}
	msg := NewMessage(p)
	d.publish(recipient, msg)

	if d.live != nil && d.live.SendLive(recipient, msg) {
		metrics.NotificationsPushed.WithLabelValues(msg.Type(), "live").Inc()
		return nil
	}
	if err := d.queue.Push(ctx, recipient, msg); err != nil {
		return err
	}
	metrics.NotificationsPushed.WithLabelValues(msg.Type(), "queue").Inc()
	return nil
}

// NotifyAll routes p to each recipient, logging queue failures instead of stopping.
func (d *Deliverer) NotifyAll(ctx context.Context, recipients []int64, p Payload) {
	for _, r := range recipients {
		if err := d.Notify(ctx, r, p); err != nil {
			zap.L().Warn("queue notification", zap.Int64("recipient", r), zap.String("type", p.Type()), zap.Error(err))
		}
	}
}

func (d *Deliverer) publish(recipient int64, msg Message) {
	if d.events == nil {
		return
	}
	value, err := json.Marshal(msg)
	if err != nil {
		zap.L().Warn("encode notification event", zap.Error(err))
		return
	}
	d.events.Publish([]byte(strconv.FormatInt(recipient, 10)), value)
}

// Package mq publishes user notifications to Kafka for consumers outside this process.
package mq

import (
	"context"
	"time"

	"usermanagement_server/internal/config"
	"usermanagement_server/pkg/errorx"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// KafkaPublisher writes notifications keyed by recipient id, so one recipient stays on one partition.
type KafkaPublisher struct {
	writer  *kafka.Writer
	pool    *WorkerPool
	timeout time.Duration
}

// NewKafkaPublisher builds the writer; no connection is made until the first write.
func NewKafkaPublisher(conf config.KafkaConfig) *KafkaPublisher {
	timeout := conf.Timeout * time.Second
	if timeout <= 0 {
		timeout = time.Second
	}
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(conf.HostPort),
			Topic:                  conf.NotifyTopic,
			Balancer:               &kafka.Hash{},
			WriteTimeout:           timeout,
			RequiredAcks:           kafka.RequireOne,
			AllowAutoTopicCreation: true,
		},
		pool:    NewWorkerPool(4, 1000),
		timeout: timeout,
	}
}

// WriteMessage writes one record synchronously.
func (k *KafkaPublisher) WriteMessage(ctx context.Context, key, value []byte) error {
	if err := k.writer.WriteMessages(ctx, kafka.Message{Key: key, Value: value}); err != nil {
		return errorx.Wrapf(err, errorx.CodeMQError, "kafka write topic=%s", k.writer.Topic)
	}
	return nil
}

// Publish hands the record to the worker pool; failures are logged and dropped.
func (k *KafkaPublisher) Publish(key, value []byte) {
	k.pool.Submit(func() {
		ctx, cancel := context.WithTimeout(context.Background(), k.timeout)
		defer cancel()
		if err := k.WriteMessage(ctx, key, value); err != nil {
			zap.L().Warn("publish notification", zap.ByteString("key", key), zap.Error(err))
		}
	})
}

// Close flushes pending publishes and closes the writer.
func (k *KafkaPublisher) Close() error {
	k.pool.Stop()
	return k.writer.Close()
}

// Package service is the composition root: it builds the store, the caches,
// the notification pipeline and the commands through the registry.
package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"usermanagement_server/internal/config"
	"usermanagement_server/internal/dao"
	"usermanagement_server/internal/dao/memory"
	mysqldao "usermanagement_server/internal/dao/mysql"
	myredis "usermanagement_server/internal/dao/redis"
	"usermanagement_server/internal/dao/sqlite"
	"usermanagement_server/internal/gateway/websocket"
	"usermanagement_server/internal/infrastructure/mq"
	"usermanagement_server/internal/service/command"
	"usermanagement_server/internal/service/identity"
	"usermanagement_server/internal/service/notify"
	"usermanagement_server/internal/service/presence"
	"usermanagement_server/internal/service/registry"
	"usermanagement_server/internal/service/social"

	"go.uber.org/zap"
)

var (
	StoreKey     = registry.NewKey[dao.Store]("store")
	UsersKey     = registry.NewKey[*identity.Cache]("identity_cache")
	GraphKey     = registry.NewKey[*social.Graph]("social_graph")
	QueueKey     = registry.NewKey[notify.Queue]("notification_queue")
	ConnsKey     = registry.NewKey[*websocket.ConnManager]("ws_connections")
	EventsKey    = registry.NewKey[*mq.KafkaPublisher]("notification_events")
	DelivererKey = registry.NewKey[*notify.Deliverer]("deliverer")
	SweeperKey   = registry.NewKey[*presence.Sweeper]("sweeper")
)

// Services is the plain set of built components handed to the HTTP layer and main.
type Services struct {
	Store      dao.Store
	Users      *identity.Cache
	Graph      *social.Graph
	Queue      notify.Queue
	Conns      *websocket.ConnManager
	Sweeper    *presence.Sweeper
	Dispatcher *command.Dispatcher

	closers []func() error
}

type options struct {
	store dao.Store
	queue notify.Queue
}

// Option replaces a configured backend.
type Option func(o *options)

// WithStore uses an already opened store instead of the configured driver.
// The caller keeps ownership of it.
func WithStore(store dao.Store) Option {
	return func(o *options) {
		o.store = store
	}
}

// WithQueue uses queue instead of the configured backend.
func WithQueue(queue notify.Queue) Option {
	return func(o *options) {
		o.queue = queue
	}
}

// NewServices builds every component in dependency order.
func NewServices(ctx context.Context, conf *config.Config, opts ...Option) (*Services, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	r := registry.New()
	var closers []func() error
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			_ = closers[i]()
		}
	}

	if o.store != nil {
		registry.Supply(r, StoreKey, o.store)
	} else {
		registry.Provide(r, StoreKey, func(*registry.Scope) (dao.Store, error) {
			store, err := OpenStore(conf)
			if err != nil {
				return nil, err
			}
			closers = append(closers, store.Close)
			return store, nil
		})
	}
	if o.queue != nil {
		registry.Supply(r, QueueKey, o.queue)
	} else {
		registry.Provide(r, QueueKey, func(*registry.Scope) (notify.Queue, error) {
			queue, closeQueue, err := OpenQueue(ctx, conf)
			if err != nil {
				return nil, err
			}
			closers = append(closers, closeQueue)
			return queue, nil
		})
	}

	registry.Provide(r, UsersKey, func(s *registry.Scope) (*identity.Cache, error) {
		return identity.NewCache(registry.Get(s, StoreKey)), nil
	}, StoreKey)
	registry.Provide(r, GraphKey, func(s *registry.Scope) (*social.Graph, error) {
		return social.NewGraph(registry.Get(s, StoreKey)), nil
	}, StoreKey)
	registry.Provide(r, ConnsKey, func(*registry.Scope) (*websocket.ConnManager, error) {
		conns := websocket.NewConnManager()
		closers = append(closers, func() error {
			conns.CloseAll()
			return nil
		})
		return conns, nil
	})

	deliverDeps := []registry.Dependency{UsersKey, QueueKey, ConnsKey}
	if conf.KafkaConfig.Enabled {
		registry.Provide(r, EventsKey, func(*registry.Scope) (*mq.KafkaPublisher, error) {
			publisher := mq.NewKafkaPublisher(conf.KafkaConfig)
			closers = append(closers, publisher.Close)
			return publisher, nil
		})
		deliverDeps = append(deliverDeps, EventsKey)
	}
	registry.Provide(r, DelivererKey, func(s *registry.Scope) (*notify.Deliverer, error) {
		var events notify.EventPublisher
		if conf.KafkaConfig.Enabled {
			events = registry.Get(s, EventsKey)
		}
		return notify.NewDeliverer(registry.Get(s, UsersKey), registry.Get(s, QueueKey), registry.Get(s, ConnsKey), events), nil
	}, deliverDeps...)
	registry.Provide(r, SweeperKey, func(s *registry.Scope) (*presence.Sweeper, error) {
		return presence.NewSweeper(registry.Get(s, UsersKey), registry.Get(s, GraphKey), conf.CacheConfig.OfflineThreshold()), nil
	}, UsersKey, GraphKey)

	command.Register(r, command.Components{
		Users:     UsersKey,
		Graph:     GraphKey,
		Queue:     QueueKey,
		Deliverer: DelivererKey,
		Sweeper:   SweeperKey,
	})

	c, err := r.Build()
	if err != nil {
		closeAll()
		return nil, err
	}
	zap.L().Debug("components built", zap.Strings("order", c.Order()))

	return &Services{
		Store:      registry.MustLookup(c, StoreKey),
		Users:      registry.MustLookup(c, UsersKey),
		Graph:      registry.MustLookup(c, GraphKey),
		Queue:      registry.MustLookup(c, QueueKey),
		Conns:      registry.MustLookup(c, ConnsKey),
		Sweeper:    registry.MustLookup(c, SweeperKey),
		Dispatcher: command.NewDispatcher(c),
		closers:    closers,
	}, nil
}

// OpenStore opens the store named by conf.StoreConfig.Driver.
func OpenStore(conf *config.Config) (dao.Store, error) {
	switch conf.StoreConfig.Driver {
	case "mysql":
		store, err := mysqldao.Open(mysqldao.DSN(conf.MysqlConfig))
		if err != nil {
			return nil, err
		}
		return store, nil
	case "sqlite":
		if err := os.MkdirAll(filepath.Dir(conf.StoreConfig.SqlitePath), 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite dir: %w", err)
		}
		store, err := sqlite.Open(conf.StoreConfig.SqlitePath)
		if err != nil {
			return nil, err
		}
		return store, nil
	case "memory":
		zap.L().Warn("using the in-memory store; data is lost on exit")
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", conf.StoreConfig.Driver)
	}
}

// OpenQueue opens the notification queue backend and returns its closer.
func OpenQueue(ctx context.Context, conf *config.Config) (notify.Queue, func() error, error) {
	switch conf.CacheConfig.QueueBackend {
	case "redis":
		client, err := myredis.NewClient(ctx, conf.RedisConfig)
		if err != nil {
			return nil, nil, err
		}
		lists := myredis.NewListQueue(client, conf.CacheConfig.MaxQueueLength)
		return notify.NewRedisQueue(lists), client.Close, nil
	case "memory":
		return notify.NewMemoryQueue(conf.CacheConfig.MaxQueueLength), func() error { return nil }, nil
	default:
		return nil, nil, fmt.Errorf("unknown queue backend %q", conf.CacheConfig.QueueBackend)
	}
}

// Shutdown runs a final sweep, writes everything still cached back and
// releases the backends. It keeps going past failures and joins them.
func (s *Services) Shutdown(ctx context.Context) error {
	var errs []error
	if _, err := s.Sweeper.Sweep(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := s.Users.SaveAll(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := s.Graph.SaveAll(ctx); err != nil {
		errs = append(errs, err)
	}
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Package presence evicts inactive users from the identity cache and the
// friend graph together.
package presence

import (
	"context"
	"errors"
	"time"

	"usermanagement_server/internal/service/identity"
	"usermanagement_server/internal/service/social"

	"go.uber.org/zap"
)

// Sweeper pairs identity eviction with graph eviction.
type Sweeper struct {
	users     *identity.Cache
	graph     *social.Graph
	threshold time.Duration
}

func NewSweeper(users *identity.Cache, graph *social.Graph, threshold time.Duration) *Sweeper {
	return &Sweeper{users: users, graph: graph, threshold: threshold}
}

// EvictUser writes userId back as OFFLINE and drops it from both caches.
func (s *Sweeper) EvictUser(ctx context.Context, userId int64) error {
	if err := s.users.Unload(ctx, userId); err != nil {
		return err
	}
	s.graph.Unload(userId)
	return nil
}

// Sweep evicts every user idle for longer than the threshold and returns their ids.
// Graph rows are written through on every mutation, so a failed SaveAll does
// not keep evicted users in the graph.
func (s *Sweeper) Sweep(ctx context.Context) ([]int64, error) {
	evicted, err := s.users.UnloadInactive(ctx, s.threshold)
	if saveErr := s.graph.SaveAll(ctx); saveErr != nil {
		err = errors.Join(err, saveErr)
	}
	for _, id := range evicted {
		s.graph.Unload(id)
	}
	zap.L().Info("inactivity sweep",
		zap.Int("evicted", len(evicted)),
		zap.Int("cached", s.users.CachedCount()),
		zap.Int("graph_loaded", s.graph.LoadedCount()),
	)
	if err != nil {
		zap.L().Error("inactivity sweep", zap.Error(err))
	}
	return evicted, err
}

// Run sweeps every interval until ctx is done.
func (s *Sweeper) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_, _ = s.Sweep(ctx)
		}
	}
}

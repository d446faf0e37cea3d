package command

import (
	"context"

	"usermanagement_server/internal/service/presence"
)

// ClearCacheCommand runs the inactivity sweep now and returns the evicted ids.
type ClearCacheCommand struct {
	sweeper *presence.Sweeper
}

func NewClearCacheCommand(sweeper *presence.Sweeper) *ClearCacheCommand {
	return &ClearCacheCommand{sweeper: sweeper}
}

func (c *ClearCacheCommand) Execute(ctx context.Context) (Result[[]int64], error) {
	evicted, err := c.sweeper.Sweep(ctx)
	if err != nil {
		return observe("clear_cache", Result[[]int64]{}, err)
	}
	if evicted == nil {
		evicted = []int64{}
	}
	return observe("clear_cache", Ok(evicted), nil)
}

package presence

import (
	"context"
	"sync"
	"testing"
	"time"

	"usermanagement_server/internal/dao/memory"
	"usermanagement_server/internal/model"
	"usermanagement_server/internal/service/identity"
	"usermanagement_server/internal/service/social"
	"usermanagement_server/pkg/enum/friend_request/friend_request_status_enum"
	"usermanagement_server/pkg/enum/user_info/user_status_enum"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func setup(t *testing.T) (*Sweeper, *identity.Cache, *social.Graph, *memory.Store, *clock) {
	t.Helper()
	store := memory.New()
	clk := &clock{t: time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)}
	users := identity.NewCache(store, identity.WithClock(clk.Now))
	graph := social.NewGraph(store)
	return NewSweeper(users, graph, 5*time.Minute), users, graph, store, clk
}

func TestSweepEvictsIdentityAndGraphTogether(t *testing.T) {
	ctx := context.Background()
	sw, users, graph, store, clk := setup(t)
	store.Seed(nil, []model.FriendRequest{
		model.NewFriendRequest(1, 2, friend_request_status_enum.ACCEPTED),
	})

	_, _, err := users.OnSeen(ctx, 1)
	require.NoError(t, err)
	require.NoError(t, graph.LoadUser(ctx, 1))
	clk.Advance(4 * time.Minute)
	_, _, err = users.OnSeen(ctx, 2)
	require.NoError(t, err)
	require.NoError(t, graph.LoadUser(ctx, 2))

	clk.Advance(2 * time.Minute)
	evicted, err := sw.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, evicted)

	assert.False(t, users.HasCached(1))
	assert.True(t, users.HasCached(2))
	assert.False(t, graph.IsLoaded(1))
	assert.True(t, graph.IsLoaded(2))
	assert.Equal(t, []int64{1}, graph.GetFriendList(2))

	row, ok := store.User(1)
	require.True(t, ok)
	assert.Equal(t, int8(user_status_enum.OFFLINE), row.Status)
}

func TestSweepKeepsUsersWhoseWriteBackFails(t *testing.T) {
	ctx := context.Background()
	sw, users, graph, store, clk := setup(t)
	_, _, err := users.OnSeen(ctx, 7)
	require.NoError(t, err)
	require.NoError(t, graph.LoadUser(ctx, 7))

	clk.Advance(time.Hour)
	store.FailOnSave(true)
	evicted, err := sw.Sweep(ctx)
	require.Error(t, err)
	assert.Empty(t, evicted)
	assert.True(t, users.HasCached(7))
	assert.True(t, graph.IsLoaded(7))
}

func TestEvictUser(t *testing.T) {
	ctx := context.Background()
	sw, users, graph, store, _ := setup(t)
	_, _, err := users.OnSeen(ctx, 3)
	require.NoError(t, err)
	require.NoError(t, graph.LoadUser(ctx, 3))

	require.NoError(t, sw.EvictUser(ctx, 3))
	assert.False(t, users.HasCached(3))
	assert.False(t, graph.IsLoaded(3))

	u, found, err := users.GetOrLoad(ctx, 3)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, int8(user_status_enum.OFFLINE), u.Status)
	_, ok := store.User(3)
	assert.True(t, ok)
}

func TestRunStopsWithContext(t *testing.T) {
	sw, _, _, _, _ := setup(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sw.Run(ctx, time.Millisecond)
		close(done)
	}()
	time.Sleep(5 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

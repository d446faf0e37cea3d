package social

import (
	"context"
	"testing"

	"usermanagement_server/internal/dao/memory"
	"usermanagement_server/internal/model"
	"usermanagement_server/pkg/enum/friend_request/friend_request_status_enum"
	"usermanagement_server/pkg/errorx"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGraph() (*Graph, *memory.Store) {
	store := memory.New()
	return NewGraph(store), store
}

// assertSymmetric checks both edge invariants over every loaded pair.
func assertSymmetric(t *testing.T, g *Graph) {
	t.Helper()
	g.mu.Lock()
	defer g.mu.Unlock()
	for a := range g.loaded {
		na := g.nodes[a]
		require.NotNil(t, na)
		for b := range na.confirmed {
			if g.loaded[b] {
				assert.True(t, g.nodes[b].confirmed.has(a), "confirmed %d-%d not symmetric", a, b)
			}
			assert.False(t, na.outgoing.has(b) || na.incoming.has(b), "%d-%d both friend and pending", a, b)
		}
		for b := range na.outgoing {
			if g.loaded[b] {
				assert.True(t, g.nodes[b].incoming.has(a), "outgoing %d->%d has no incoming", a, b)
			}
			assert.False(t, na.incoming.has(b), "%d-%d pending both ways", a, b)
		}
		for b := range na.incoming {
			if g.loaded[b] {
				assert.True(t, g.nodes[b].outgoing.has(a), "incoming %d<-%d has no outgoing", a, b)
			}
		}
	}
}

func TestRequestAcceptLifecycle(t *testing.T) {
	ctx := context.Background()
	g, store := newTestGraph()

	code, err := g.Request(ctx, 1, 2)
	require.NoError(t, err)
	assert.Empty(t, code)
	assert.Equal(t, []int64{2}, g.GetPendingOutgoing(1))
	assert.Equal(t, []int64{1}, g.GetPendingIncoming(2))

	row, ok := store.Request("1:2")
	require.True(t, ok)
	assert.Equal(t, int8(friend_request_status_enum.PENDING), row.Status)
	assert.Equal(t, int64(1), row.SenderId)

	code, err = g.Accept(ctx, 2, 1)
	require.NoError(t, err)
	assert.Empty(t, code)
	assert.Equal(t, []int64{2}, g.GetFriendList(1))
	assert.Equal(t, []int64{1}, g.GetFriendList(2))
	assert.Empty(t, g.GetPendingOutgoing(1))
	assert.Empty(t, g.GetPendingIncoming(2))

	row, _ = store.Request("1:2")
	assert.Equal(t, int8(friend_request_status_enum.ACCEPTED), row.Status)
	assertSymmetric(t, g)
}

func TestRequestRules(t *testing.T) {
	ctx := context.Background()
	g, _ := newTestGraph()

	code, err := g.Request(ctx, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, errorx.RequestSelf, code)

	_, err = g.Request(ctx, 1, 2)
	require.NoError(t, err)

	code, _ = g.Request(ctx, 1, 2)
	assert.Equal(t, errorx.RequestAlready, code)
	// a reverse request while one is pending is refused too
	code, _ = g.Request(ctx, 2, 1)
	assert.Equal(t, errorx.RequestAlready, code)

	_, _ = g.Accept(ctx, 2, 1)
	code, _ = g.Request(ctx, 2, 1)
	assert.Equal(t, errorx.FriendAlready, code)
	assertSymmetric(t, g)
}

func TestAcceptIsDirectional(t *testing.T) {
	ctx := context.Background()
	g, _ := newTestGraph()
	_, err := g.Request(ctx, 1, 2)
	require.NoError(t, err)

	code, err := g.Accept(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, errorx.RequestUndefined, code)
	assert.Empty(t, g.GetFriendList(1))

	code, _ = g.Accept(ctx, 3, 4)
	assert.Equal(t, errorx.RequestUndefined, code)
}

func TestRefuseAndCancel(t *testing.T) {
	ctx := context.Background()
	g, store := newTestGraph()

	_, _ = g.Request(ctx, 1, 2)
	code, err := g.RefuseOrCancel(ctx, 2, 1)
	require.NoError(t, err)
	assert.Empty(t, code)
	assert.Empty(t, g.GetPendingIncoming(2))
	assert.Empty(t, g.GetPendingOutgoing(1))
	_, ok := store.Request("1:2")
	assert.False(t, ok)

	_, _ = g.Request(ctx, 1, 2)
	code, _ = g.RefuseOrCancel(ctx, 1, 2)
	assert.Empty(t, code)
	assert.Empty(t, g.GetPendingOutgoing(1))

	code, _ = g.RefuseOrCancel(ctx, 1, 2)
	assert.Equal(t, errorx.RequestUndefined, code)
	assertSymmetric(t, g)
}

func TestRemoveFriendMarksRowRefused(t *testing.T) {
	ctx := context.Background()
	g, store := newTestGraph()
	_, _ = g.Request(ctx, 1, 2)
	_, _ = g.Accept(ctx, 2, 1)

	code, err := g.RemoveFriend(ctx, 2, 1)
	require.NoError(t, err)
	assert.Empty(t, code)
	assert.Empty(t, g.GetFriendList(1))
	assert.Empty(t, g.GetFriendList(2))
	row, ok := store.Request("1:2")
	require.True(t, ok)
	assert.Equal(t, int8(friend_request_status_enum.REFUSED), row.Status)

	code, _ = g.RemoveFriend(ctx, 1, 2)
	assert.Equal(t, errorx.FriendNot, code)

	// a refused row does not block a new request and is not loaded back
	code, err = g.Request(ctx, 2, 1)
	require.NoError(t, err)
	assert.Empty(t, code)
	assertSymmetric(t, g)
}

func TestLoadUserIgnoresRefusedAndIsIdempotent(t *testing.T) {
	ctx := context.Background()
	g, store := newTestGraph()
	store.Seed(nil, []model.FriendRequest{
		model.NewFriendRequest(1, 2, friend_request_status_enum.ACCEPTED),
		model.NewFriendRequest(3, 1, friend_request_status_enum.PENDING),
		model.NewFriendRequest(1, 4, friend_request_status_enum.PENDING),
		model.NewFriendRequest(1, 5, friend_request_status_enum.REFUSED),
	})

	require.NoError(t, g.LoadUser(ctx, 1))
	require.NoError(t, g.LoadUser(ctx, 1))
	assert.Equal(t, 1, store.Stats().RequestLoads)

	n := g.GetNode(1)
	assert.Equal(t, []int64{2}, n.Confirmed)
	assert.Equal(t, []int64{3}, n.Incoming)
	assert.Equal(t, []int64{4}, n.Outgoing)

	// partial peer nodes are visible before the peer is loaded
	assert.Equal(t, []int64{1}, g.GetFriendList(2))
	assert.False(t, g.IsLoaded(2))
	require.NoError(t, g.LoadUser(ctx, 2))
	assert.Equal(t, []int64{1}, g.GetFriendList(2))
	assertSymmetric(t, g)
}

func TestFailedWriteLeavesGraphUnchanged(t *testing.T) {
	ctx := context.Background()
	g, store := newTestGraph()
	_, _ = g.Request(ctx, 1, 2)
	_, _ = g.Request(ctx, 3, 1)
	_, _ = g.Accept(ctx, 1, 3)
	before1, before2, before3 := g.GetNode(1), g.GetNode(2), g.GetNode(3)

	store.FailOnSave(true)
	_, err := g.Accept(ctx, 2, 1)
	assert.Error(t, err)
	_, err = g.RefuseOrCancel(ctx, 1, 2)
	assert.Error(t, err)
	_, err = g.RemoveFriend(ctx, 1, 3)
	assert.Error(t, err)
	_, err = g.Request(ctx, 2, 3)
	assert.Error(t, err)
	_, err = g.RemoveUser(ctx, 1)
	assert.Error(t, err)

	assert.Equal(t, before1, g.GetNode(1))
	assert.Equal(t, before2, g.GetNode(2))
	assert.Equal(t, before3, g.GetNode(3))
}

func TestFailedLoadIsSurfaced(t *testing.T) {
	ctx := context.Background()
	g, store := newTestGraph()
	store.FailOnLoad(true)

	_, err := g.Request(ctx, 1, 2)
	require.Error(t, err)
	assert.False(t, g.IsLoaded(1))
}

func TestRemoveUserCascades(t *testing.T) {
	ctx := context.Background()
	g, store := newTestGraph()
	_, _ = g.Request(ctx, 1, 2)
	_, _ = g.Accept(ctx, 2, 1)
	_, _ = g.Request(ctx, 1, 3)
	_, _ = g.Request(ctx, 4, 1)

	before, err := g.RemoveUser(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, Node{Confirmed: []int64{2}, Outgoing: []int64{3}, Incoming: []int64{4}}, before)

	assert.Empty(t, g.GetFriendList(2))
	assert.Empty(t, g.GetPendingIncoming(3))
	assert.Empty(t, g.GetPendingOutgoing(4))
	assert.Empty(t, store.Requests())
	assert.False(t, g.IsLoaded(1))

	again, err := g.RemoveUser(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, Node{Confirmed: []int64{}, Outgoing: []int64{}, Incoming: []int64{}}, again)
	assertSymmetric(t, g)
}

func TestUnloadAndReload(t *testing.T) {
	ctx := context.Background()
	g, store := newTestGraph()
	_, _ = g.Request(ctx, 1, 2)
	_, _ = g.Accept(ctx, 2, 1)
	_, _ = g.Request(ctx, 1, 3)

	g.Unload(1)
	assert.False(t, g.IsLoaded(1))
	// loaded peers keep their side
	assert.Equal(t, []int64{1}, g.GetFriendList(2))

	require.NoError(t, g.LoadUser(ctx, 1))
	n := g.GetNode(1)
	assert.Equal(t, []int64{2}, n.Confirmed)
	assert.Equal(t, []int64{3}, n.Outgoing)
	assert.Equal(t, 4, store.Stats().RequestLoads)
	assertSymmetric(t, g)
}

func TestUnloadCleansPartialPeers(t *testing.T) {
	ctx := context.Background()
	g, store := newTestGraph()
	store.Seed(nil, []model.FriendRequest{model.NewFriendRequest(1, 9, friend_request_status_enum.ACCEPTED)})
	require.NoError(t, g.LoadUser(ctx, 1))

	g.Unload(1)
	g.mu.Lock()
	_, partial := g.nodes[9]
	g.mu.Unlock()
	assert.False(t, partial)
}

func TestSaveAllRepersistsLoadedRows(t *testing.T) {
	ctx := context.Background()
	g, store := newTestGraph()
	_, _ = g.Request(ctx, 1, 2)
	_, _ = g.Accept(ctx, 2, 1)
	_, _ = g.Request(ctx, 3, 1)

	// wipe the rows behind the graph's back
	for _, r := range store.Requests() {
		require.NoError(t, store.RemoveFriendRequestsById(ctx, []string{r.RequestId}))
	}
	require.NoError(t, g.SaveAll(ctx))

	accepted, ok := store.Request("1:2")
	require.True(t, ok)
	assert.Equal(t, int8(friend_request_status_enum.ACCEPTED), accepted.Status)
	pending, ok := store.Request("1:3")
	require.True(t, ok)
	assert.Equal(t, int8(friend_request_status_enum.PENDING), pending.Status)
	assert.Equal(t, int64(3), pending.SenderId)
}

func TestSaveAllKeepsAcceptedDirection(t *testing.T) {
	ctx := context.Background()
	g, store := newTestGraph()
	store.Seed(nil, []model.FriendRequest{model.NewFriendRequest(5, 2, friend_request_status_enum.ACCEPTED)})
	require.NoError(t, g.LoadUser(ctx, 2))
	require.NoError(t, g.LoadUser(ctx, 5))
	_, _ = g.Request(ctx, 4, 1)
	_, _ = g.Accept(ctx, 1, 4)

	for i := 0; i < 20; i++ {
		require.NoError(t, g.SaveAll(ctx))
		seeded, ok := store.Request("2:5")
		require.True(t, ok)
		assert.Equal(t, int64(5), seeded.SenderId)
		assert.Equal(t, int64(2), seeded.ReceiverId)
		accepted, ok := store.Request("1:4")
		require.True(t, ok)
		assert.Equal(t, int64(4), accepted.SenderId)
	}

	// only the receiver is left to write the row back
	g.Unload(5)
	require.NoError(t, g.SaveAll(ctx))
	seeded, _ := store.Request("2:5")
	assert.Equal(t, int64(5), seeded.SenderId)
	assert.Equal(t, int8(friend_request_status_enum.ACCEPTED), seeded.Status)
}

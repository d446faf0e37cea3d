// Package daotest holds the behaviour every dao.Store backend must share.
package daotest

import (
	"context"
	"testing"
	"time"

	"usermanagement_server/internal/dao"
	"usermanagement_server/internal/model"
	"usermanagement_server/pkg/enum/friend_request/friend_request_status_enum"
	"usermanagement_server/pkg/errorx"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunStoreSuite runs the shared contract against stores produced by open.
// open must return an empty store; it is called once per subtest.
func RunStoreSuite(t *testing.T, open func(t *testing.T) dao.Store) {
	ctx := context.Background()
	seen := time.UnixMilli(1700000000000)

	t.Run("user round trip", func(t *testing.T) {
		s := open(t)
		u := &model.UserInfo{UserId: 1, Name: "alice", LastSeen: seen, Status: 1}
		require.NoError(t, s.SaveUser(ctx, u))

		got, err := s.GetUserById(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, "alice", got.Name)
		assert.Equal(t, seen.UnixMilli(), got.LastSeen.UnixMilli())
		assert.Equal(t, int8(1), got.Status)

		byName, err := s.GetUserByName(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, int64(1), byName.UserId)

		ok, err := s.HasUserByName(ctx, "alice")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("save replaces", func(t *testing.T) {
		s := open(t)
		require.NoError(t, s.SaveUser(ctx, &model.UserInfo{UserId: 1, Name: "alice", LastSeen: seen}))
		require.NoError(t, s.SaveUser(ctx, &model.UserInfo{UserId: 1, Name: "alice2", LastSeen: seen}))

		ok, err := s.HasUserByName(ctx, "alice")
		require.NoError(t, err)
		assert.False(t, ok)
		got, err := s.GetUserById(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, "alice2", got.Name)
	})

	t.Run("duplicate name rejected", func(t *testing.T) {
		s := open(t)
		require.NoError(t, s.SaveUser(ctx, &model.UserInfo{UserId: 1, Name: "alice", LastSeen: seen}))
		err := s.SaveUser(ctx, &model.UserInfo{UserId: 2, Name: "alice", LastSeen: seen})
		require.Error(t, err)
		assert.Equal(t, errorx.CodeDBError, errorx.GetCode(err))
	})

	t.Run("missing user", func(t *testing.T) {
		s := open(t)
		_, err := s.GetUserById(ctx, 42)
		assert.True(t, errorx.IsNotFound(err))
		_, err = s.GetUserByName(ctx, "ghost")
		assert.True(t, errorx.IsNotFound(err))
		ok, err := s.HasUserByName(ctx, "ghost")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("remove user", func(t *testing.T) {
		s := open(t)
		require.NoError(t, s.SaveUser(ctx, &model.UserInfo{UserId: 1, Name: "alice", LastSeen: seen}))
		require.NoError(t, s.RemoveUser(ctx, 1))
		require.NoError(t, s.RemoveUser(ctx, 1))
		_, err := s.GetUserById(ctx, 1)
		assert.True(t, errorx.IsNotFound(err))
	})

	t.Run("friend request rows", func(t *testing.T) {
		s := open(t)
		pending := model.NewFriendRequest(1, 2, friend_request_status_enum.PENDING)
		other := model.NewFriendRequest(3, 1, friend_request_status_enum.ACCEPTED)
		unrelated := model.NewFriendRequest(2, 3, friend_request_status_enum.PENDING)
		require.NoError(t, s.SaveFriendRequests(ctx, []model.FriendRequest{pending, other, unrelated}))

		rows, err := s.GetFriendRequestsForUser(ctx, 1)
		require.NoError(t, err)
		assert.ElementsMatch(t, []model.FriendRequest{pending, other}, rows)

		// upsert flips the status on the same key
		accepted := pending
		accepted.Status = friend_request_status_enum.ACCEPTED
		require.NoError(t, s.SaveFriendRequests(ctx, []model.FriendRequest{accepted}))
		rows, err = s.GetFriendRequestsForUser(ctx, 2)
		require.NoError(t, err)
		assert.ElementsMatch(t, []model.FriendRequest{accepted, unrelated}, rows)

		require.NoError(t, s.RemoveFriendRequestsById(ctx, []string{unrelated.RequestId}))
		rows, err = s.GetFriendRequestsForUser(ctx, 3)
		require.NoError(t, err)
		assert.Equal(t, []model.FriendRequest{other}, rows)

		require.NoError(t, s.RemoveAllUserFriendRequests(ctx, 1))
		for _, id := range []int64{1, 2, 3} {
			rows, err = s.GetFriendRequestsForUser(ctx, id)
			require.NoError(t, err)
			assert.Empty(t, rows)
		}
	})

	t.Run("empty batches", func(t *testing.T) {
		s := open(t)
		assert.NoError(t, s.SaveFriendRequests(ctx, nil))
		assert.NoError(t, s.RemoveFriendRequestsById(ctx, nil))
	})
}

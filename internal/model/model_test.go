package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRequestIDIsCanonical(t *testing.T) {
	assert.Equal(t, "3:7", RequestID(7, 3))
	assert.Equal(t, "3:7", RequestID(3, 7))
	assert.Equal(t, "-2:10", RequestID(10, -2))
}

func TestNewFriendRequestKeepsDirection(t *testing.T) {
	r := NewFriendRequest(9, 2, 0)
	assert.Equal(t, "2:9", r.RequestId)
	assert.Equal(t, int64(9), r.SenderId)
	assert.Equal(t, int64(2), r.ReceiverId)
	assert.Equal(t, int64(2), r.Peer(9))
	assert.Equal(t, int64(9), r.Peer(2))
}

func TestToPublic(t *testing.T) {
	seen := time.UnixMilli(1700000000123)
	u := UserInfo{UserId: 1, Name: "alice", LastSeen: seen, Status: 1}
	assert.Equal(t, PublicUserInfo{Name: "alice", Status: 1, LastSeen: 1700000000123}, u.ToPublic())
	assert.True(t, u.IsOnline())
}

// Package dao defines the persistent store contract shared by the mysql, sqlite and memory backends.
//
// Lookups that miss return an errorx.CodeNotFound error (check with errorx.IsNotFound).
// Every other failure is an errorx.CodeDBError.
package dao

import (
	"context"

	"usermanagement_server/internal/model"
)

// Store is the durable backing for users and friend request rows.
type Store interface {
	GetUserById(ctx context.Context, userId int64) (*model.UserInfo, error)
	GetUserByName(ctx context.Context, name string) (*model.UserInfo, error)
	HasUserByName(ctx context.Context, name string) (bool, error)
	// SaveUser inserts or replaces the row keyed by UserId.
	SaveUser(ctx context.Context, user *model.UserInfo) error
	RemoveUser(ctx context.Context, userId int64) error

	// GetFriendRequestsForUser returns every row where userId is sender or receiver.
	GetFriendRequestsForUser(ctx context.Context, userId int64) ([]model.FriendRequest, error)
	// SaveFriendRequests upserts rows keyed by RequestId.
	SaveFriendRequests(ctx context.Context, requests []model.FriendRequest) error
	RemoveFriendRequestsById(ctx context.Context, requestIds []string) error
	RemoveAllUserFriendRequests(ctx context.Context, userId int64) error

	Close() error
}

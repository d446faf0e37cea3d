package repository

import (
	"context"

	"usermanagement_server/internal/model"

	"gorm.io/gorm"
)

// UserRepository reads and writes the users table.
type UserRepository interface {
	FindById(ctx context.Context, userId int64) (*model.UserInfo, error)
	FindByName(ctx context.Context, name string) (*model.UserInfo, error)
	CountByName(ctx context.Context, name string) (int64, error)
	// Upsert inserts the row or overwrites every column of the existing one.
	Upsert(ctx context.Context, user *model.UserInfo) error
	DeleteById(ctx context.Context, userId int64) error
}

// FriendRequestRepository reads and writes the friend_requests table.
type FriendRequestRepository interface {
	FindByUserId(ctx context.Context, userId int64) ([]model.FriendRequest, error)
	UpsertBatch(ctx context.Context, requests []model.FriendRequest) error
	DeleteByIds(ctx context.Context, requestIds []string) error
	DeleteByUserId(ctx context.Context, userId int64) error
}

// Repositories groups every repository over one *gorm.DB.
type Repositories struct {
	db            *gorm.DB
	User          UserRepository
	FriendRequest FriendRequestRepository
}

// NewRepositories builds all repositories on db.
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		db:            db,
		User:          NewUserRepository(db),
		FriendRequest: NewFriendRequestRepository(db),
	}
}

// DB exposes the underlying handle, mainly for Close.
func (r *Repositories) DB() *gorm.DB {
	return r.db
}

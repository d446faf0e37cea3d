package mysql

import (
	"context"

	"usermanagement_server/internal/dao/mysql/repository"
	"usermanagement_server/internal/model"
	"usermanagement_server/pkg/errorx"
)

// Store adapts the repositories to dao.Store.
type Store struct {
	repos *repository.Repositories
}

// NewStore wraps repos.
func NewStore(repos *repository.Repositories) *Store {
	return &Store{repos: repos}
}

func (s *Store) GetUserById(ctx context.Context, userId int64) (*model.UserInfo, error) {
	return s.repos.User.FindById(ctx, userId)
}

func (s *Store) GetUserByName(ctx context.Context, name string) (*model.UserInfo, error) {
	return s.repos.User.FindByName(ctx, name)
}

func (s *Store) HasUserByName(ctx context.Context, name string) (bool, error) {
	n, err := s.repos.User.CountByName(ctx, name)
	return n > 0, err
}

func (s *Store) SaveUser(ctx context.Context, user *model.UserInfo) error {
	return s.repos.User.Upsert(ctx, user)
}

func (s *Store) RemoveUser(ctx context.Context, userId int64) error {
	return s.repos.User.DeleteById(ctx, userId)
}

func (s *Store) GetFriendRequestsForUser(ctx context.Context, userId int64) ([]model.FriendRequest, error) {
	return s.repos.FriendRequest.FindByUserId(ctx, userId)
}

func (s *Store) SaveFriendRequests(ctx context.Context, requests []model.FriendRequest) error {
	return s.repos.FriendRequest.UpsertBatch(ctx, requests)
}

func (s *Store) RemoveFriendRequestsById(ctx context.Context, requestIds []string) error {
	return s.repos.FriendRequest.DeleteByIds(ctx, requestIds)
}

func (s *Store) RemoveAllUserFriendRequests(ctx context.Context, userId int64) error {
	return s.repos.FriendRequest.DeleteByUserId(ctx, userId)
}

func (s *Store) Close() error {
	sqlDB, err := s.repos.DB().DB()
	if err != nil {
		return errorx.Wrap(err, errorx.CodeDBError, "close mysql")
	}
	return sqlDB.Close()
}

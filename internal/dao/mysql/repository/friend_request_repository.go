package repository

import (
	"context"

	"usermanagement_server/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type friendRequestRepository struct {
	db *gorm.DB
}

// NewFriendRequestRepository creates a FriendRequestRepository on db.
func NewFriendRequestRepository(db *gorm.DB) FriendRequestRepository {
	return &friendRequestRepository{db: db}
}

// FindByUserId returns every row where userId is either side, whatever the status.
func (r *friendRequestRepository) FindByUserId(ctx context.Context, userId int64) ([]model.FriendRequest, error) {
	var requests []model.FriendRequest
	if err := r.db.WithContext(ctx).
		Where("sender_id = ? OR receiver_id = ?", userId, userId).
		Find(&requests).Error; err != nil {
		return nil, wrapDBErrorf(err, "find friend requests user_id=%d", userId)
	}
	return requests, nil
}

func (r *friendRequestRepository) UpsertBatch(ctx context.Context, requests []model.FriendRequest) error {
	if len(requests) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "request_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"sender_id", "receiver_id", "status"}),
		}).
		Create(&requests).Error
	return wrapDBErrorf(err, "save %d friend requests", len(requests))
}

func (r *friendRequestRepository) DeleteByIds(ctx context.Context, requestIds []string) error {
	if len(requestIds) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Where("request_id IN ?", requestIds).Delete(&model.FriendRequest{}).Error
	return wrapDBErrorf(err, "delete %d friend requests", len(requestIds))
}

func (r *friendRequestRepository) DeleteByUserId(ctx context.Context, userId int64) error {
	err := r.db.WithContext(ctx).
		Where("sender_id = ? OR receiver_id = ?", userId, userId).
		Delete(&model.FriendRequest{}).Error
	return wrapDBErrorf(err, "delete friend requests user_id=%d", userId)
}

package repository

import (
	"context"

	"usermanagement_server/internal/model"

	"gorm.io/gorm"
)

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a UserRepository on db.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) FindById(ctx context.Context, userId int64) (*model.UserInfo, error) {
	var user model.UserInfo
	if err := r.db.WithContext(ctx).First(&user, "user_id = ?", userId).Error; err != nil {
		return nil, wrapDBErrorf(err, "find user user_id=%d", userId)
	}
	return &user, nil
}

func (r *userRepository) FindByName(ctx context.Context, name string) (*model.UserInfo, error) {
	var user model.UserInfo
	if err := r.db.WithContext(ctx).First(&user, "name = ?", name).Error; err != nil {
		return nil, wrapDBErrorf(err, "find user name=%s", name)
	}
	return &user, nil
}

func (r *userRepository) CountByName(ctx context.Context, name string) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&model.UserInfo{}).Where("name = ?", name).Count(&n).Error; err != nil {
		return 0, wrapDBErrorf(err, "count user name=%s", name)
	}
	return n, nil
}

// Upsert looks the row up by primary key; a clash on name must fail, not update another row.
func (r *userRepository) Upsert(ctx context.Context, user *model.UserInfo) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&model.UserInfo{}).Where("user_id = ?", user.UserId).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return tx.Create(user).Error
		}
		return tx.Model(&model.UserInfo{}).
			Where("user_id = ?", user.UserId).
			Select("name", "last_seen", "status").
			Updates(user).Error
	})
	return wrapDBErrorf(err, "save user user_id=%d", user.UserId)
}

func (r *userRepository) DeleteById(ctx context.Context, userId int64) error {
	if err := r.db.WithContext(ctx).Delete(&model.UserInfo{}, "user_id = ?", userId).Error; err != nil {
		return wrapDBErrorf(err, "delete user user_id=%d", userId)
	}
	return nil
}

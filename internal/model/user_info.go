// Package model defines the persisted rows and the views built from them.
package model

import (
	"time"

	"usermanagement_server/pkg/enum/user_info/user_status_enum"
)

// UserInfo is one row of the users table and the record held by the identity cache.
type UserInfo struct {
	// UserId is assigned by the caller (the x-user-id header), never generated here.
	UserId int64 `gorm:"column:user_id;primaryKey;autoIncrement:false"`

	// Name is unique across all users, loaded or not.
	Name string `gorm:"column:name;uniqueIndex;type:varchar(20);not null"`

	// LastSeen never moves backwards while the record is cached.
	LastSeen time.Time `gorm:"column:last_seen;type:datetime(3);not null"`

	// Status 0=OFFLINE, 1=ONLINE
	Status int8 `gorm:"column:status;not null"`
}

func (UserInfo) TableName() string {
	return "users"
}

// IsOnline reports whether the record is marked ONLINE.
func (u *UserInfo) IsOnline() bool {
	return u.Status == user_status_enum.ONLINE
}

// PublicUserInfo is the projection of a user that other users may see.
type PublicUserInfo struct {
	Name     string `json:"name"`
	Status   int8   `json:"status"`
	LastSeen int64  `json:"last_seen"` // unix milliseconds
}

// ToPublic projects u to its public view.
func (u *UserInfo) ToPublic() PublicUserInfo {
	return PublicUserInfo{
		Name:     u.Name,
		Status:   u.Status,
		LastSeen: u.LastSeen.UnixMilli(),
	}
}

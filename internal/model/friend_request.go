package model

import (
	"strconv"
)

// FriendRequest is one row of the friend_requests table.
// A pair of users owns at most one row, keyed by RequestID.
type FriendRequest struct {
	RequestId  string `gorm:"column:request_id;primaryKey;type:varchar(41)"`
	SenderId   int64  `gorm:"column:sender_id;index;not null"`
	ReceiverId int64  `gorm:"column:receiver_id;index;not null"`
	// Status 0=PENDING, 1=ACCEPTED, 2=REFUSED
	Status int8 `gorm:"column:status;not null"`
}

func (FriendRequest) TableName() string {
	return "friend_requests"
}

// RequestID returns the canonical "min:max" key for the pair, independent of argument order.
func RequestID(a, b int64) string {
	if a > b {
		a, b = b, a
	}
	return strconv.FormatInt(a, 10) + ":" + strconv.FormatInt(b, 10)
}

// NewFriendRequest builds a row for sender -> receiver with the canonical key.
func NewFriendRequest(sender, receiver int64, status int8) FriendRequest {
	return FriendRequest{
		RequestId:  RequestID(sender, receiver),
		SenderId:   sender,
		ReceiverId: receiver,
		Status:     status,
	}
}

// Peer returns the other side of the row relative to id.
func (r FriendRequest) Peer(id int64) int64 {
	if r.SenderId == id {
		return r.ReceiverId
	}
	return r.SenderId
}

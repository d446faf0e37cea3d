package message_type_enum

const (
	USERNAME_CHANGED = "USERNAME_CHANGED"
	STATUS_CHANGED   = "STATUS_CHANGED"
	FRIEND_REMOVED   = "FRIEND_REMOVED"
	REQUEST_RECEIVED = "REQUEST_RECEIVED"
	REQUEST_ACCEPTED = "REQUEST_ACCEPTED"
	REQUEST_REFUSED  = "REQUEST_REFUSED"
	REQUEST_CANCELED = "REQUEST_CANCELED"
)

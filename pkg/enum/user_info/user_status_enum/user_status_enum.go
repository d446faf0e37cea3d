package user_status_enum

const (
	OFFLINE = iota
	ONLINE
)

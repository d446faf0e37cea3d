package friend_request_status_enum

// Persisted row states. REFUSED marks a terminated friendship and is ignored on load.
const (
	PENDING = iota
	ACCEPTED
	REFUSED
)

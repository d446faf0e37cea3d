package constants

const (
	CHANNEL_SIZE             = 100 // websocket send buffer per client
	REDIS_TIMEOUT            = 1   // redis timeout (minutes)
	USERNAME_MIN_LENGTH      = 3   // shortest allowed username
	USERNAME_MAX_LENGTH      = 20  // longest allowed username
	DEFAULT_USERNAME_PREFIX  = "user_"
	DEFAULT_USERNAME_SUFFIX  = 8 // random characters after the prefix
	RESERVED_USERNAME        = "default"
	OFFLINE_THRESHOLD_SECOND = 300 // inactivity before a user is swept
	SWEEP_INTERVAL_SECOND    = 600 // period of the background sweep
	MAX_QUEUE_LENGTH         = 200 // pending notifications kept per user
	USER_ID_HEADER           = "x-user-id"
	SENDER_ID_KEY            = "sender_id"
	REQUEST_ID_HEADER        = "X-Request-Id"
)

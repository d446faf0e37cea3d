package errorx

// ErrorCode is a business rule violation reported inside a result.
type ErrorCode string

// Username validation.
const (
	TooShort          ErrorCode = "TOO_SHORT"
	TooLong           ErrorCode = "TOO_LONG"
	InvalidCharacters ErrorCode = "INVALID_CHARACTERS"
	AlreadyTaken      ErrorCode = "ALREADY_TAKEN"
)

// Friend requests.
const (
	RequestSelf      ErrorCode = "REQUEST_SELF"
	FriendAlready    ErrorCode = "FRIEND_ALREADY"
	RequestAlready   ErrorCode = "REQUEST_ALREADY"
	RequestUndefined ErrorCode = "REQUEST_UNDEFINED"
	FriendNot        ErrorCode = "FRIEND_NOT"
)

// Users.
const (
	UserUndefined ErrorCode = "USER_UNDEFINED"
	DoesNotExist  ErrorCode = "DOES_NOT_EXIST"
	AlreadyExists ErrorCode = "ALREADY_EXISTS"
)

package request

// UsernameRequest is the body of POST /user and PUT /user/username.
// Length and character rules are checked by the command, which reports every violation.
type UsernameRequest struct {
	Username string `json:"username" binding:"required"`
}

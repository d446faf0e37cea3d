package handler

import (
	"usermanagement_server/internal/dto/request"
	"usermanagement_server/internal/service/command"

	"github.com/gin-gonic/gin"
)

// UserHandler serves the caller's own account and user lookups.
type UserHandler struct {
	d *command.Dispatcher
}

func NewUserHandler(d *command.Dispatcher) *UserHandler {
	return &UserHandler{d: d}
}

// GetSelf returns the caller's public view.
// GET /user
func (h *UserHandler) GetSelf(c *gin.Context) {
	res, err := h.d.GetUserData.Execute(c.Request.Context(), senderID(c))
	HandleResult(c, res, err)
}

// GetByName returns another user's public view.
// GET /user/:username
func (h *UserHandler) GetByName(c *gin.Context) {
	res, err := h.d.GetUserByName.Execute(c.Request.Context(), c.Param("username"))
	HandleResult(c, res, err)
}

// ResolveId maps a username to its id.
// GET /user/:username/id
func (h *UserHandler) ResolveId(c *gin.Context) {
	res, err := h.d.ResolveUserId.Execute(c.Request.Context(), c.Param("username"))
	HandleResult(c, res, err)
}

// Initialize registers the caller under a chosen name.
// POST /user, body request.UsernameRequest
func (h *UserHandler) Initialize(c *gin.Context) {
	var req request.UsernameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	res, err := h.d.Initialize.Execute(c.Request.Context(), senderID(c), req.Username)
	HandleResult(c, res, err)
}

// EditUsername renames the caller.
// PUT /user/username, body request.UsernameRequest
func (h *UserHandler) EditUsername(c *gin.Context) {
	var req request.UsernameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	res, err := h.d.EditUsername.Execute(c.Request.Context(), senderID(c), req.Username)
	HandleResult(c, res, err)
}

// Remove deletes the caller's account.
// DELETE /user
func (h *UserHandler) Remove(c *gin.Context) {
	res, err := h.d.RemoveUser.Execute(c.Request.Context(), senderID(c))
	HandleResult(c, res, err)
}

package handler

import (
	"usermanagement_server/internal/service/command"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	d *command.Dispatcher
}

func NewNotificationHandler(d *command.Dispatcher) *NotificationHandler {
	return &NotificationHandler{d: d}
}

// Poll drains the caller's queued notifications.
// GET /user/notifications
func (h *NotificationHandler) Poll(c *gin.Context) {
	res, err := h.d.PollNotifications.Execute(c.Request.Context(), senderID(c))
	HandleResult(c, res, err)
}

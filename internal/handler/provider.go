// Package handler turns HTTP requests into command executions.
package handler

import (
	"usermanagement_server/internal/gateway/websocket"
	"usermanagement_server/internal/service/command"
	"usermanagement_server/pkg/constants"

	"github.com/gin-gonic/gin"
)

// Handlers groups every handler so the router receives them in one value.
type Handlers struct {
	User         *UserHandler
	Friend       *FriendHandler
	Notification *NotificationHandler
	Admin        *AdminHandler
	Ws           *WsHandler
}

// NewHandlers builds the handlers over d. conns may be nil, which disables /ws.
func NewHandlers(d *command.Dispatcher, conns *websocket.ConnManager) *Handlers {
	return &Handlers{
		User:         NewUserHandler(d),
		Friend:       NewFriendHandler(d),
		Notification: NewNotificationHandler(d),
		Admin:        NewAdminHandler(d),
		Ws:           NewWsHandler(conns),
	}
}

// senderID is the caller id stored by middleware.SenderID.
func senderID(c *gin.Context) int64 {
	return c.GetInt64(constants.SENDER_ID_KEY)
}

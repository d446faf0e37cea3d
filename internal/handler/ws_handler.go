package handler

import (
	"net/http"

	"usermanagement_server/internal/gateway/websocket"
	"usermanagement_server/pkg/errorx"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// WsHandler opens the caller's live notification channel.
type WsHandler struct {
	conns *websocket.ConnManager
}

func NewWsHandler(conns *websocket.ConnManager) *WsHandler {
	return &WsHandler{conns: conns}
}

// Connect upgrades the request; queued notifications stay in the queue until polled.
// GET /ws
func (h *WsHandler) Connect(c *gin.Context) {
	if h.conns == nil {
		c.JSON(http.StatusNotFound, ResponseData{Code: errorx.CodeNotFound, Msg: "live notifications disabled"})
		return
	}
	if err := h.conns.Serve(c.Writer, c.Request, senderID(c)); err != nil {
		// the upgrader has already written the error response
		zap.L().Warn("ws upgrade", zap.Int64("user_id", senderID(c)), zap.Error(err))
	}
}

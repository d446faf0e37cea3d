package handler

import (
	"usermanagement_server/internal/service/command"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	d *command.Dispatcher
}

func NewAdminHandler(d *command.Dispatcher) *AdminHandler {
	return &AdminHandler{d: d}
}

// ClearCache runs the inactivity sweep now.
// POST /admin/cache/clear
func (h *AdminHandler) ClearCache(c *gin.Context) {
	res, err := h.d.ClearCache.Execute(c.Request.Context())
	HandleResult(c, res, err)
}

package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterUserRoutes registers the caller's account routes and user lookups.
func (rt *Router) RegisterUserRoutes(rg *gin.RouterGroup) {
	h := rt.handlers.User
	userGroup := rg.Group("/user")
	{
		userGroup.GET("", h.GetSelf)
		userGroup.DELETE("", h.Remove)
		userGroup.PUT("/username", h.EditUsername)
		userGroup.GET("/notifications", rt.handlers.Notification.Poll)
		userGroup.GET("/:username", h.GetByName)
		userGroup.GET("/:username/id", h.ResolveId)
	}
}

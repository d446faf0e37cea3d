package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterFriendRoutes registers the friend list and request lifecycle routes.
func (rt *Router) RegisterFriendRoutes(rg *gin.RouterGroup) {
	h := rt.handlers.Friend
	friendGroup := rg.Group("/user/friends")
	{
		friendGroup.GET("", h.List)
		friendGroup.DELETE("/:username", h.Remove)

		friendGroup.GET("/requests", h.Incoming)
		friendGroup.PUT("/requests/:username", h.Accept)
		friendGroup.DELETE("/requests/:username", h.Refuse)

		friendGroup.GET("/requests/outgoing", h.Outgoing)
		friendGroup.POST("/requests/outgoing/:username", h.Request)
		friendGroup.DELETE("/requests/outgoing/:username", h.Cancel)
	}
}

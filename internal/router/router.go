// Package router maps URLs to handlers.
package router

import (
	"usermanagement_server/internal/handler"
	"usermanagement_server/internal/infrastructure/metrics"
	"usermanagement_server/internal/infrastructure/middleware"
	"usermanagement_server/internal/service/command"

	"github.com/gin-gonic/gin"
)

// Router holds what route registration needs.
type Router struct {
	handlers *handler.Handlers
	onSeen   *command.OnUserSeenCommand
}

func NewRouter(handlers *handler.Handlers, onSeen *command.OnUserSeenCommand) *Router {
	return &Router{handlers: handlers, onSeen: onSeen}
}

// RegisterRoutes registers every route on r.
//
// Every /user route needs the x-user-id header. All of them except POST /user
// first mark the caller as seen, which also creates first-time callers.
func (rt *Router) RegisterRoutes(r *gin.Engine) {
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	identified := r.Group("/", middleware.SenderID())
	// registration must see a caller that does not exist yet
	identified.POST("/user", rt.handlers.User.Initialize)

	seen := identified.Group("/", middleware.UserSeen(rt.onSeen))
	rt.RegisterUserRoutes(seen)
	rt.RegisterFriendRoutes(seen)
	rt.RegisterWebSocketRoutes(seen)

	rt.RegisterAdminRoutes(r.Group("/"))
}

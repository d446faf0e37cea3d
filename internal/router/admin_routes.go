package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterAdminRoutes registers operator routes. They carry no identity and
// are expected to be reachable only from inside the deployment.
func (rt *Router) RegisterAdminRoutes(rg *gin.RouterGroup) {
	adminGroup := rg.Group("/admin")
	{
		adminGroup.POST("/cache/clear", rt.handlers.Admin.ClearCache)
	}
}

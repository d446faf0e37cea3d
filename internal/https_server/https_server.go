// Package https_server builds the gin engine with middleware and routes.
package https_server

import (
	"usermanagement_server/internal/config"
	"usermanagement_server/internal/handler"
	"usermanagement_server/internal/infrastructure/logger"
	"usermanagement_server/internal/infrastructure/middleware"
	"usermanagement_server/internal/router"
	"usermanagement_server/internal/service/command"
	"usermanagement_server/pkg/constants"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Init returns a gin engine serving the dispatcher's commands.
// Order: request id, access log, recovery, CORS, optional TLS redirect, routes.
func Init(conf *config.Config, handlers *handler.Handlers, d *command.Dispatcher) *gin.Engine {
	if conf.MainConfig.Mode != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()

	engine.Use(middleware.RequestID())
	engine.Use(logger.GinLogger())
	engine.Use(logger.GinRecovery(true))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"*"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", constants.USER_ID_HEADER, constants.REQUEST_ID_HEADER}
	corsConfig.ExposeHeaders = []string{constants.REQUEST_ID_HEADER}
	engine.Use(cors.New(corsConfig))

	if conf.MainConfig.TlsRedirect {
		engine.Use(middleware.TlsHandler(conf.MainConfig.Host, conf.MainConfig.Port, conf.MainConfig.Mode == "dev"))
	}

	router.NewRouter(handlers, d.OnUserSeen).RegisterRoutes(engine)
	return engine
}

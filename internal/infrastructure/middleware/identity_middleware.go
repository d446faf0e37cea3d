package middleware

import (
	"net/http"
	"strconv"

	"usermanagement_server/internal/service/command"
	"usermanagement_server/pkg/constants"
	"usermanagement_server/pkg/errorx"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SenderID reads the caller's id from the x-user-id header set by the
// authentication proxy and stores it in the context.
func SenderID() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(constants.USER_ID_HEADER)
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code": errorx.CodeUnauthorized,
				"msg":  errorx.ErrUnauthorized.Msg,
			})
			return
		}
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code": errorx.CodeUnauthorized,
				"msg":  "malformed " + constants.USER_ID_HEADER + " header",
			})
			return
		}
		c.Set(constants.SENDER_ID_KEY, id)
		c.Next()
	}
}

// UserSeen refreshes the caller's presence before the handler runs.
// It must come after SenderID.
func UserSeen(onSeen *command.OnUserSeenCommand) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetInt64(constants.SENDER_ID_KEY)
		if _, err := onSeen.Execute(c.Request.Context(), id); err != nil {
			zap.L().Error("mark user seen", zap.Int64("user_id", id), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"code": errorx.ErrServerBusy.Code,
				"msg":  errorx.ErrServerBusy.Msg,
			})
			return
		}
		c.Next()
	}
}

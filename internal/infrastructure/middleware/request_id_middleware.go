package middleware

import (
	"usermanagement_server/pkg/constants"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestID keeps an incoming X-Request-Id or assigns a new one, and echoes it back.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(constants.REQUEST_ID_HEADER)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(constants.REQUEST_ID_HEADER, id)
		c.Header(constants.REQUEST_ID_HEADER, id)
		c.Next()
	}
}

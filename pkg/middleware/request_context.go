package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Header and context keys for request correlation across the conversion API.
const (
	HeaderRequestID = "X-Request-ID"
	HeaderUserUUID  = "X-User-UUID"

	KeyRequestID = "request_id"
	KeyUserUUID  = "user_uuid"
)

// RequestContextMiddleware assigns every request a correlation id (honoring a
// caller-supplied one) and surfaces the caller identity to downstream
// handlers. The id is echoed back so clients can quote it when reporting a
// failed conversion.
func RequestContextMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.GetHeader(HeaderRequestID)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Set(KeyRequestID, reqID)
		c.Writer.Header().Set(HeaderRequestID, reqID)

		if userUUID := c.GetHeader(HeaderUserUUID); userUUID != "" {
			c.Set(KeyUserUUID, userUUID)
		}

		c.Next()
	}
}

package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	ContextKeyRequestID = "request_id"
	RequestIDHeader     = "X-Request-ID"

	// Longer client-supplied ids are replaced to keep log lines bounded.
	requestIDMaxLen = 64
)

// RequestID reuses the caller's X-Request-ID or generates one, and echoes it
// back on the response.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(RequestIDHeader)
		if rid == "" || len(rid) > requestIDMaxLen {
			rid = uuid.New().String()
		}

		c.Set(ContextKeyRequestID, rid)
		c.Header(RequestIDHeader, rid)
		c.Next()
	}
}

package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"referralhub/internal/handler/middleware"
	"referralhub/internal/service"
)

// currentUserID returns the authenticated caller. Outside JWTAuth it reports
// service.ErrUserNotFound, which writeError answers with 401.
func currentUserID(c *gin.Context) (uuid.UUID, error) {
	if v, ok := c.Get(middleware.ContextKeyUserID); ok {
		if id, ok := v.(uuid.UUID); ok && id != uuid.Nil {
			return id, nil
		}
	}
	return uuid.Nil, service.ErrUserNotFound
}

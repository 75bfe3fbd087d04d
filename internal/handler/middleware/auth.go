package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	jwtpkg "referralhub/pkg/jwt"
	"referralhub/pkg/response"
)

// ContextKeyUserID holds the caller's uuid.UUID, parsed from the token subject.
const ContextKeyUserID = "user_id"

// JWTAuth admits requests carrying a valid access token and records the
// caller's id for the handlers. Refresh tokens are refused here.
func JWTAuth(jwtManager *jwtpkg.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			response.Unauthorized(c, "authentication credentials were not provided")
			c.Abort()
			return
		}

		claims, err := jwtManager.Validate(token)
		if err != nil || claims.TokenType != jwtpkg.TokenTypeAccess {
			response.Unauthorized(c, "given token not valid for any token type")
			c.Abort()
			return
		}

		userID, err := uuid.Parse(claims.Subject)
		if err != nil {
			response.Unauthorized(c, "token contained no recognizable user identification")
			c.Abort()
			return
		}

		c.Set(ContextKeyUserID, userID)
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

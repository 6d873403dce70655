// Package middleware provides gin middleware shared by the API handlers.
package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ecotrackhq/carbon-tracker/internal/auth"
)

// userIDKey is the gin context key carrying the authenticated user id.
const userIDKey = "user_id"

// RequireAuth verifies the bearer token and stores the authenticated
// user id on the request context. Requests without a valid token are
// rejected with 401.
func RequireAuth(tokens *auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			unauthorized(c, "authorization header is required")
			return
		}

		tokenString := strings.TrimPrefix(header, "Bearer ")
		if tokenString == header {
			unauthorized(c, "authorization header must use the Bearer scheme")
			return
		}

		userID, err := tokens.Verify(tokenString)
		if err != nil {
			unauthorized(c, "invalid or expired token")
			return
		}

		c.Set(userIDKey, userID)
		c.Next()
	}
}

// UserID returns the authenticated user id set by RequireAuth.
func UserID(c *gin.Context) (uint, bool) {
	value, ok := c.Get(userIDKey)
	if !ok {
		return 0, false
	}
	userID, ok := value.(uint)
	return userID, ok
}

func unauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error":     message,
		"timestamp": time.Now().UTC(),
	})
}

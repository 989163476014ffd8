package security

import (
	"net/http"
	"strings"

	userservice "Connectify/module/user/service"

	"github.com/gin-gonic/gin"
)

// Context key the rest of the request pipeline reads the verified
// identity from.
const CtxUserIDKey = "userID"

// UserID returns the authenticated user id set by Middleware.
func UserID(c *gin.Context) string {
	return c.GetString(CtxUserIDKey)
}

// Middleware authenticates `Authorization: Bearer <token>` (or a bare
// token in the header) against the auth collaborator and injects the
// user id into the request context.
func Middleware(auth *userservice.Auth) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := BearerToken(c.GetHeader("Authorization"))
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false, "message": "authentication required",
			})
			return
		}

		userID, err := auth.VerifyToken(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false, "message": "invalid or expired token",
			})
			return
		}

		c.Set(CtxUserIDKey, userID)
		c.Next()
	}
}

// BearerToken strips an optional "Bearer " prefix.
func BearerToken(header string) string {
	header = strings.TrimSpace(header)
	if header == "" {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(header), "bearer ") {
		return strings.TrimSpace(header[len("bearer "):])
	}
	return header
}

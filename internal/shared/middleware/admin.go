package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"reservation-backend/internal/shared"
)

// AdminMiddleware checks if user has admin role
func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := c.Get(ContextRole)
		if !ok || role != shared.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"error":   "Access denied: admin role required",
			})
			return
		}

		c.Next()
	}
}

// IsAdmin reports whether the authenticated caller carries the admin role.
func IsAdmin(c *gin.Context) bool {
	role, _ := c.Get(ContextRole)
	return role == shared.RoleAdmin
}

package middleware

import (
	"net/http"

	"facilitybook/internal/domain"
	"facilitybook/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

// RequireRole ensures that the authenticated user has one of the
// specified roles.
func RequireRole(roles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("role")
		if !exists {
			response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Role not found in token")
			c.Abort()
			return
		}

		for _, r := range roles {
			if role.(string) == string(r) {
				c.Next()
				return
			}
		}

		response.Error(c, http.StatusForbidden, "FORBIDDEN", "Access denied: insufficient permissions")
		c.Abort()
	}
}

// AdminOnly allows facility operators and super-admins.
func AdminOnly() gin.HandlerFunc {
	return RequireRole(domain.RoleAdmin, domain.RoleSuperAdmin)
}

// SuperAdminOnly allows super-admins exclusively.
func SuperAdminOnly() gin.HandlerFunc {
	return RequireRole(domain.RoleSuperAdmin)
}

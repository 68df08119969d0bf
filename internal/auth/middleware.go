package auth

import (
	"net/http"
	"strings"

	"github.com/KevinKickass/OpenIOLink/internal/types"
	"github.com/gin-gonic/gin"
)

const (
	permissionsKey = "permissions"
	subjectKey     = "subject"
)

// Middleware validates the bearer token and stores the permissions of its role.
func (s *Service) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				types.NewErrorResponse(types.CodeAuthRequired, "Missing authorization header", nil))
			return
		}

		// "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				types.NewErrorResponse(types.CodeAuthRequired, "Invalid authorization header format", nil))
			return
		}

		claims, err := s.ValidateToken(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				types.NewErrorResponse(types.CodeAuthRequired, "Invalid or expired token", nil))
			return
		}

		c.Set(subjectKey, claims.Subject)
		c.Set(permissionsKey, roleToPermissions(Role(claims.Role)))
		c.Next()
	}
}

// RequirePermission rejects requests whose token lacks required.
func RequirePermission(required Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		perms, _ := c.Get(permissionsKey)
		permissions, _ := perms.([]Permission)

		for _, p := range permissions {
			if p == required {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden,
			types.NewErrorResponse(types.CodeAuthForbidden, "Insufficient permissions", string(required)))
	}
}

package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/coaching-center-api/internal/models"
	appErrors "github.com/noah-isme/coaching-center-api/pkg/errors"
	"github.com/noah-isme/coaching-center-api/pkg/response"
)

// RoleSelf admits a caller whose user id equals the :id route param.
const RoleSelf models.UserRole = "SELF"

// RequireRoles admits callers holding one of roles. Mount it after JWT.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	allowed := make(map[models.UserRole]struct{}, len(roles))
	allowSelf := false
	for _, role := range roles {
		if role == RoleSelf {
			allowSelf = true
			continue
		}
		allowed[role] = struct{}{}
	}

	return func(c *gin.Context) {
		claims, ok := Claims(c)
		if !ok {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		if _, ok := allowed[claims.Role]; ok {
			c.Next()
			return
		}
		if allowSelf {
			if target := c.Param("id"); target != "" && target == claims.UserID {
				c.Next()
				return
			}
		}
		response.Error(c, appErrors.ErrForbidden)
		c.Abort()
	}
}

package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/msulemvn/bloggers/internal/permissions"
	"github.com/msulemvn/bloggers/pkg/errors"
	"github.com/msulemvn/bloggers/pkg/metrics"
	"github.com/msulemvn/bloggers/pkg/response"
)

// RequirePermission checks that the authenticated user holds the named
// permission.
func RequirePermission(checker *permissions.Checker, permissionName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, ok := c.Get(CtxUserIDKey)
		if !ok {
			response.Error(c, errors.ErrUnauthorized)
			c.Abort()
			return
		}
		userID, _ := v.(string)
		allowed, err := checker.Check(c.Request.Context(), userID, permissionName)
		if err != nil {
			// Internal error while checking permissions
			metrics.PermissionChecks.WithLabelValues(permissionName, "error").Inc()
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"success": false, "error": gin.H{"code": errors.ErrInternalServer.Code, "message": "permission check failed"}})
			return
		}
		if !allowed {
			metrics.PermissionChecks.WithLabelValues(permissionName, "denied").Inc()
			response.Error(c, errors.ErrForbidden)
			c.Abort()
			return
		}
		metrics.PermissionChecks.WithLabelValues(permissionName, "allowed").Inc()
		c.Next()
	}
}

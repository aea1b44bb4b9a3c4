package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/franciscosanchezn/gin-recipes-api/internal/models"
)

// RequireRole is a middleware that checks if the user has the required role.
// It must run after OAuth2Auth.
func RequireRole(requiredRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := CurrentUserID(c)
		if userID == 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.NewAPIError(models.ErrUnauthorized, "User not authenticated"))
			return
		}

		userRole := c.GetString(ContextUserRole)
		if userRole != requiredRole {
			log.WithFields(logrus.Fields{
				"user_id":       userID,
				"user_role":     userRole,
				"required_role": requiredRole,
				"path":          c.FullPath(),
			}).Warn("Insufficient permissions")
			c.AbortWithStatusJSON(http.StatusForbidden, models.NewAPIError(models.ErrForbidden, "Insufficient permissions",
				map[string]interface{}{"required_role": requiredRole}))
			return
		}

		c.Next()
	}
}

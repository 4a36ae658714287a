package middleware

import (
	"net/http"

	"github.com/franciscosanchezn/foodgram-api/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// RequireRole is a middleware that checks if the user has the required role.
// It must run after TokenAuth.
func RequireRole(requiredRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := CurrentUserID(c)
		if !exists {
			abortUnauthorized(c, "Authentication credentials were not provided.")
			return
		}

		userRole := c.GetString(UserRoleKey)
		if userRole != requiredRole {
			log.WithFields(logrus.Fields{
				"user_id":       userID,
				"user_role":     userRole,
				"required_role": requiredRole,
			}).Info("Insufficient permissions")
			c.AbortWithStatusJSON(http.StatusForbidden,
				models.NewDetailError("You do not have permission to perform this action."))
			return
		}

		c.Next()
	}
}

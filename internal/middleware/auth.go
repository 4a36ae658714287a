package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/franciscosanchezn/foodgram-api/internal/auth"
	"github.com/franciscosanchezn/foodgram-api/internal/models"
	"github.com/gin-gonic/gin"
)

// Context keys set by the auth middleware
const (
	UserIDKey   = "userID"
	UserRoleKey = "userRole"
	TokenKey    = "accessToken"
)

// TokenValidator resolves an access token into its claims
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*auth.Claims, error)
}

// TokenAuth requires a valid access token. Both "Token <t>" and "Bearer <t>"
// schemes are accepted.
func TokenAuth(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			abortUnauthorized(c, "Authentication credentials were not provided.")
			return
		}
		authenticate(c, validator)
	}
}

// OptionalTokenAuth identifies the user when a token is present and lets
// anonymous requests through. A malformed or revoked token is still rejected.
func OptionalTokenAuth(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.Next()
			return
		}
		authenticate(c, validator)
	}
}

func authenticate(c *gin.Context, validator TokenValidator) {
	token, ok := extractToken(c.GetHeader("Authorization"))
	if !ok {
		abortUnauthorized(c, "Invalid token header. Use 'Token <token>' or 'Bearer <token>'.")
		return
	}

	claims, err := validator.ValidateToken(c.Request.Context(), token)
	if err != nil {
		log.WithError(err).Debug("Rejected access token")
		abortUnauthorized(c, "Invalid token.")
		return
	}

	c.Set(UserIDKey, claims.UserID)
	c.Set(UserRoleKey, claims.Role)
	c.Set(TokenKey, token)
	c.Next()
}

func extractToken(header string) (string, bool) {
	for _, scheme := range []string{"Token ", "Bearer "} {
		if strings.HasPrefix(header, scheme) {
			token := strings.TrimSpace(strings.TrimPrefix(header, scheme))
			return token, token != ""
		}
	}
	return "", false
}

func abortUnauthorized(c *gin.Context, detail string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, models.NewDetailError(detail))
}

// CurrentUserID returns the authenticated user, if any
func CurrentUserID(c *gin.Context) (uint, bool) {
	value, exists := c.Get(UserIDKey)
	if !exists {
		return 0, false
	}
	id, ok := value.(uint)
	return id, ok && id != 0
}

// IsAdmin reports whether the authenticated user carries the admin role
func IsAdmin(c *gin.Context) bool {
	return c.GetString(UserRoleKey) == models.RoleAdmin
}

// AccessToken returns the raw token the request was authenticated with
func AccessToken(c *gin.Context) string {
	return c.GetString(TokenKey)
}

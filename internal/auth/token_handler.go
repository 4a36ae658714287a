package auth

import (
	"net/http"

	"github.com/franciscosanchezn/foodgram-api/internal/models"
	"github.com/gin-gonic/gin"
)

// HandleToken godoc
// @Summary OAuth2 token endpoint
// @Description Issues an access token using the password grant. The username is the account email.
// @Tags auth
// @Accept x-www-form-urlencoded
// @Produce json
// @Param grant_type formData string true "Must be password"
// @Param client_id formData string true "Client ID"
// @Param client_secret formData string false "Client secret (confidential clients only)"
// @Param username formData string true "Account email"
// @Param password formData string true "Account password"
// @Success 200 {object} map[string]interface{} "access_token, token_type, expires_in"
// @Failure 400 {object} models.OAuth2Error
// @Failure 401 {object} models.OAuth2Error
// @Router /oauth/token [post]
func (o *OAuthService) HandleToken(c *gin.Context) {
	if err := o.server.HandleTokenRequest(c.Writer, c.Request); err != nil {
		log.WithError(err).Error("Failed to write token response")
		c.JSON(http.StatusInternalServerError, models.OAuth2Error{
			Error:            "server_error",
			ErrorDescription: "failed to write token response",
		})
	}
}

package controllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/franciscosanchezn/foodgram-api/internal/middleware"
	"github.com/franciscosanchezn/foodgram-api/internal/models"
	"github.com/franciscosanchezn/foodgram-api/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/go-oauth2/oauth2/v4"
)

// TokenIssuer creates and revokes access tokens
type TokenIssuer interface {
	IssueToken(ctx context.Context, user *models.User) (oauth2.TokenInfo, error)
	RevokeToken(ctx context.Context, access string) error
}

type AuthController struct {
	userService services.UserService
	tokens      TokenIssuer
}

func NewAuthController(userService services.UserService, tokens TokenIssuer) *AuthController {
	return &AuthController{
		userService: userService,
		tokens:      tokens,
	}
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	AuthToken string `json:"auth_token"`
}

// Login godoc
// @Summary Obtain an access token
// @Description Exchanges email and password for a token used as "Token <auth_token>"
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body LoginRequest true "Email and password"
// @Success 200 {object} LoginResponse
// @Failure 400 {object} models.ValidationErrors
// @Router /api/auth/token/login/ [post]
func (ac *AuthController) Login(c *gin.Context) {
	var req LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := ac.userService.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			c.JSON(http.StatusBadRequest, models.ValidationErrors{
				"non_field_errors": "Unable to log in with provided credentials.",
			})
			return
		}
		respondError(c, err)
		return
	}

	info, err := ac.tokens.IssueToken(c.Request.Context(), user)
	if err != nil {
		respondError(c, err)
		return
	}

	log.WithField("user_id", user.ID).Info("User logged in")
	c.JSON(http.StatusOK, LoginResponse{AuthToken: info.GetAccess()})
}

// Logout godoc
// @Summary Revoke the current access token
// @Tags auth
// @Success 204
// @Failure 401 {object} models.DetailError
// @Security TokenAuth
// @Router /api/auth/token/logout/ [post]
func (ac *AuthController) Logout(c *gin.Context) {
	if err := ac.tokens.RevokeToken(c.Request.Context(), middleware.AccessToken(c)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

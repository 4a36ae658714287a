package controllers

import (
	"net/http"
	"strconv"

	"github.com/franciscosanchezn/foodgram-api/internal/models"
	"github.com/franciscosanchezn/foodgram-api/internal/services"
	"github.com/gin-gonic/gin"
)

// UserController handles accounts and subscriptions
type UserController interface {
	ListUsers(c *gin.Context)
	Register(c *gin.Context)
	GetUser(c *gin.Context)
	Me(c *gin.Context)
	SetPassword(c *gin.Context)
	Subscribe(c *gin.Context)
	Unsubscribe(c *gin.Context)
	Subscriptions(c *gin.Context)
}

type userController struct {
	users    services.UserService
	present  presenter
	pageSize int
}

func NewUserController(users services.UserService, recipes services.RecipeService, pageSize int) UserController {
	return &userController{
		users:    users,
		present:  presenter{users: users, recipes: recipes},
		pageSize: pageSize,
	}
}

type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email,max=254"`
	Username  string `json:"username" binding:"required,max=150,username"`
	FirstName string `json:"first_name" binding:"required,max=150"`
	LastName  string `json:"last_name" binding:"required,max=150"`
	Password  string `json:"password" binding:"required,min=8,max=128"`
}

// RegisteredUser is returned on sign up; it never carries is_subscribed
type RegisteredUser struct {
	Email     string `json:"email"`
	ID        uint   `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type SetPasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8,max=128"`
}

// ListUsers godoc
// @Summary List users
// @Tags users
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} Paginated[UserResponse]
// @Router /api/users/ [get]
func (uc *userController) ListUsers(c *gin.Context) {
	page := pageFromQuery(c, uc.pageSize)
	users, total, err := uc.users.ListUsers(c.Request.Context(), page)
	if err != nil {
		respondError(c, err)
		return
	}

	results, err := uc.present.userList(c.Request.Context(), viewer(c), users)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, paginate(c, page, total, results))
}

// Register godoc
// @Summary Register a new user
// @Tags users
// @Accept json
// @Produce json
// @Param user body RegisterRequest true "Account"
// @Success 201 {object} RegisteredUser
// @Failure 400 {object} models.ValidationErrors
// @Router /api/users/ [post]
func (uc *userController) Register(c *gin.Context) {
	var req RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	user := &models.User{
		Email:     req.Email,
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  req.Password,
	}
	if err := uc.users.CreateUser(c.Request.Context(), user); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, RegisteredUser{
		Email:     user.Email,
		ID:        user.ID,
		Username:  user.Username,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	})
}

// GetUser godoc
// @Summary Get user profile
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} UserResponse
// @Failure 404 {object} models.DetailError
// @Router /api/users/{id}/ [get]
func (uc *userController) GetUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	uc.respondUser(c, id)
}

// Me godoc
// @Summary Current user profile
// @Tags users
// @Produce json
// @Success 200 {object} UserResponse
// @Failure 401 {object} models.DetailError
// @Security TokenAuth
// @Router /api/users/me/ [get]
func (uc *userController) Me(c *gin.Context) {
	uc.respondUser(c, viewer(c))
}

func (uc *userController) respondUser(c *gin.Context, id uint) {
	user, err := uc.users.GetUserByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	out, err := uc.present.userList(c.Request.Context(), viewer(c), []models.User{*user})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out[0])
}

// SetPassword godoc
// @Summary Change the current user's password
// @Tags users
// @Accept json
// @Param passwords body SetPasswordRequest true "Current and new password"
// @Success 204
// @Failure 400 {object} models.ValidationErrors
// @Failure 401 {object} models.DetailError
// @Security TokenAuth
// @Router /api/users/set_password/ [post]
func (uc *userController) SetPassword(c *gin.Context) {
	var req SetPasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := uc.users.SetPassword(c.Request.Context(), viewer(c), req.CurrentPassword, req.NewPassword); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Subscribe godoc
// @Summary Follow an author
// @Tags subscriptions
// @Produce json
// @Param id path int true "Author ID"
// @Param recipes_limit query int false "Maximum number of recipes in the response"
// @Success 201 {object} SubscriptionResponse
// @Failure 400 {object} models.MembershipError
// @Failure 404 {object} models.DetailError
// @Security TokenAuth
// @Router /api/users/{id}/subscribe/ [post]
func (uc *userController) Subscribe(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	author, err := uc.users.Subscribe(c.Request.Context(), viewer(c), id)
	if err != nil {
		respondMembershipError(c, err, "You are already subscribed to this author.", "")
		return
	}

	out, err := uc.present.subscriptions(c.Request.Context(), []models.User{*author}, recipesLimit(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, out[0])
}

// Unsubscribe godoc
// @Summary Stop following an author
// @Tags subscriptions
// @Param id path int true "Author ID"
// @Success 204
// @Failure 404 {object} models.MembershipError
// @Security TokenAuth
// @Router /api/users/{id}/subscribe/ [delete]
func (uc *userController) Unsubscribe(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := uc.users.Unsubscribe(c.Request.Context(), viewer(c), id); err != nil {
		respondMembershipError(c, err, "", "You are not subscribed to this author.")
		return
	}
	c.Status(http.StatusNoContent)
}

// Subscriptions godoc
// @Summary Authors the current user follows
// @Tags subscriptions
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Param recipes_limit query int false "Maximum number of recipes per author"
// @Success 200 {object} Paginated[SubscriptionResponse]
// @Failure 401 {object} models.DetailError
// @Security TokenAuth
// @Router /api/users/subscriptions/ [get]
func (uc *userController) Subscriptions(c *gin.Context) {
	page := pageFromQuery(c, uc.pageSize)
	authors, total, err := uc.users.Subscriptions(c.Request.Context(), viewer(c), page)
	if err != nil {
		respondError(c, err)
		return
	}

	results, err := uc.present.subscriptions(c.Request.Context(), authors, recipesLimit(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, paginate(c, page, total, results))
}

// recipesLimit reads recipes_limit; absent or invalid means no limit
func recipesLimit(c *gin.Context) int {
	limit, err := strconv.Atoi(c.Query("recipes_limit"))
	if err != nil || limit < 0 {
		return -1
	}
	return limit
}

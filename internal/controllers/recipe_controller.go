package controllers

import (
	"bytes"
	"context"
	"net/http"
	"strconv"

	"github.com/franciscosanchezn/foodgram-api/internal/metrics"
	"github.com/franciscosanchezn/foodgram-api/internal/middleware"
	"github.com/franciscosanchezn/foodgram-api/internal/models"
	"github.com/franciscosanchezn/foodgram-api/internal/services"
	"github.com/franciscosanchezn/foodgram-api/internal/shoppinglist"
	"github.com/gin-gonic/gin"
)

// RecipeController handles HTTP requests related to recipes, favorites and the shopping cart
type RecipeController interface {
	ListRecipes(c *gin.Context)
	GetRecipe(c *gin.Context)
	CreateRecipe(c *gin.Context)
	UpdateRecipe(c *gin.Context)
	DeleteRecipe(c *gin.Context)

	AddFavorite(c *gin.Context)
	RemoveFavorite(c *gin.Context)
	AddToShoppingCart(c *gin.Context)
	RemoveFromShoppingCart(c *gin.Context)
	// DownloadShoppingCart returns the aggregated ingredients of the cart as a file
	DownloadShoppingCart(c *gin.Context)
}

type recipeController struct {
	recipes  services.RecipeService
	present  presenter
	renderer *shoppinglist.Renderer
	pageSize int
}

func NewRecipeController(recipes services.RecipeService, users services.UserService, renderer *shoppinglist.Renderer, pageSize int) RecipeController {
	return &recipeController{
		recipes:  recipes,
		present:  presenter{users: users, recipes: recipes},
		renderer: renderer,
		pageSize: pageSize,
	}
}

type ingredientAmountRequest struct {
	ID     uint `json:"id"`
	Amount int  `json:"amount"`
}

// RecipeRequest is the create/update payload. Range and existence checks
// happen in the service so every field error is reported the same way.
type RecipeRequest struct {
	Ingredients []ingredientAmountRequest `json:"ingredients"`
	Tags        []uint                    `json:"tags"`
	Image       *string                   `json:"image"`
	Name        *string                   `json:"name"`
	Text        *string                   `json:"text"`
	CookingTime *int                      `json:"cooking_time"`
}

func (r RecipeRequest) input() services.RecipeInput {
	var items []services.IngredientAmount
	if r.Ingredients != nil {
		items = make([]services.IngredientAmount, len(r.Ingredients))
		for i, line := range r.Ingredients {
			items[i] = services.IngredientAmount{ID: line.ID, Amount: line.Amount}
		}
	}
	return services.RecipeInput{
		Name:        r.Name,
		Text:        r.Text,
		CookingTime: r.CookingTime,
		Image:       r.Image,
		Ingredients: items,
		Tags:        r.Tags,
	}
}

func actor(c *gin.Context) services.Actor {
	id, _ := middleware.CurrentUserID(c)
	return services.Actor{ID: id, Admin: middleware.IsAdmin(c)}
}

func viewer(c *gin.Context) uint {
	id, _ := middleware.CurrentUserID(c)
	return id
}

func queryFlag(c *gin.Context, key string) bool {
	value := c.Query(key)
	return value == "1" || value == "true" || value == "True"
}

// ListRecipes godoc
// @Summary List recipes
// @Description Paginated list of recipes, newest first
// @Tags recipes
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Param author query int false "Author ID"
// @Param tags query []string false "Tag slugs (any of)" collectionFormat(multi)
// @Param is_favorited query int false "Only favorites of the current user (1)"
// @Param is_in_shopping_cart query int false "Only recipes in the current user's cart (1)"
// @Success 200 {object} Paginated[RecipeResponse]
// @Failure 400 {object} models.ValidationErrors
// @Router /api/recipes/ [get]
func (rc *recipeController) ListRecipes(c *gin.Context) {
	filter := services.RecipeFilter{TagSlugs: c.QueryArray("tags")}

	if author := c.Query("author"); author != "" {
		authorID, err := strconv.ParseUint(author, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ValidationErrors{"author": "Select a valid choice."})
			return
		}
		filter.AuthorID = uint(authorID)
	}

	// Membership filters only make sense for a known user
	if userID := viewer(c); userID != 0 {
		if queryFlag(c, "is_favorited") {
			filter.FavoritedBy = userID
		}
		if queryFlag(c, "is_in_shopping_cart") {
			filter.InCartOf = userID
		}
	}

	page := pageFromQuery(c, rc.pageSize)
	recipes, total, err := rc.recipes.ListRecipes(c.Request.Context(), filter, page)
	if err != nil {
		respondError(c, err)
		return
	}

	results, err := rc.present.recipeList(c.Request.Context(), viewer(c), recipes)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, paginate(c, page, total, results))
}

// GetRecipe godoc
// @Summary Get recipe by ID
// @Tags recipes
// @Produce json
// @Param id path int true "Recipe ID"
// @Success 200 {object} RecipeResponse
// @Failure 404 {object} models.DetailError
// @Router /api/recipes/{id}/ [get]
func (rc *recipeController) GetRecipe(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	recipe, err := rc.recipes.GetRecipe(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	rc.respondRecipe(c, http.StatusOK, recipe)
}

// CreateRecipe godoc
// @Summary Create a recipe
// @Description Image is a base64 data URI, e.g. data:image/png;base64,...
// @Tags recipes
// @Accept json
// @Produce json
// @Param recipe body RecipeRequest true "Recipe"
// @Success 201 {object} RecipeResponse
// @Failure 400 {object} models.ValidationErrors
// @Failure 401 {object} models.DetailError
// @Failure 429 {object} models.DetailError
// @Security TokenAuth
// @Router /api/recipes/ [post]
func (rc *recipeController) CreateRecipe(c *gin.Context) {
	var req RecipeRequest
	if !bindJSON(c, &req) {
		return
	}

	recipe, err := rc.recipes.CreateRecipe(c.Request.Context(), actor(c), req.input())
	if err != nil {
		respondError(c, err)
		return
	}
	metrics.RecordRecipeCreated()
	rc.respondRecipe(c, http.StatusCreated, recipe)
}

// UpdateRecipe godoc
// @Summary Update a recipe
// @Description Ingredients and tags are replaced as a whole; omitted scalar fields are kept
// @Tags recipes
// @Accept json
// @Produce json
// @Param id path int true "Recipe ID"
// @Param recipe body RecipeRequest true "Recipe"
// @Success 200 {object} RecipeResponse
// @Failure 400 {object} models.ValidationErrors
// @Failure 403 {object} models.DetailError
// @Failure 404 {object} models.DetailError
// @Security TokenAuth
// @Router /api/recipes/{id}/ [patch]
func (rc *recipeController) UpdateRecipe(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req RecipeRequest
	if !bindJSON(c, &req) {
		return
	}

	recipe, err := rc.recipes.UpdateRecipe(c.Request.Context(), actor(c), id, req.input())
	if err != nil {
		respondError(c, err)
		return
	}
	rc.respondRecipe(c, http.StatusOK, recipe)
}

// DeleteRecipe godoc
// @Summary Delete a recipe
// @Tags recipes
// @Param id path int true "Recipe ID"
// @Success 204
// @Failure 403 {object} models.DetailError
// @Failure 404 {object} models.DetailError
// @Security TokenAuth
// @Router /api/recipes/{id}/ [delete]
func (rc *recipeController) DeleteRecipe(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := rc.recipes.DeleteRecipe(c.Request.Context(), actor(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (rc *recipeController) respondRecipe(c *gin.Context, status int, recipe *models.Recipe) {
	body, err := rc.present.recipe(c.Request.Context(), viewer(c), recipe)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(status, body)
}

// AddFavorite godoc
// @Summary Add a recipe to favorites
// @Tags favorites
// @Produce json
// @Param id path int true "Recipe ID"
// @Success 201 {object} ShortRecipeResponse
// @Failure 400 {object} models.MembershipError
// @Failure 404 {object} models.DetailError
// @Security TokenAuth
// @Router /api/recipes/{id}/favorite/ [post]
func (rc *recipeController) AddFavorite(c *gin.Context) {
	rc.addMembership(c, rc.recipes.AddFavorite, "Recipe is already in favorites.")
}

// RemoveFavorite godoc
// @Summary Remove a recipe from favorites
// @Tags favorites
// @Param id path int true "Recipe ID"
// @Success 204
// @Failure 404 {object} models.MembershipError
// @Security TokenAuth
// @Router /api/recipes/{id}/favorite/ [delete]
func (rc *recipeController) RemoveFavorite(c *gin.Context) {
	rc.removeMembership(c, rc.recipes.RemoveFavorite, "Recipe is not in favorites.")
}

// AddToShoppingCart godoc
// @Summary Add a recipe to the shopping cart
// @Tags shopping cart
// @Produce json
// @Param id path int true "Recipe ID"
// @Success 201 {object} ShortRecipeResponse
// @Failure 400 {object} models.MembershipError
// @Failure 404 {object} models.DetailError
// @Security TokenAuth
// @Router /api/recipes/{id}/shopping_cart/ [post]
func (rc *recipeController) AddToShoppingCart(c *gin.Context) {
	rc.addMembership(c, rc.recipes.AddToCart, "Recipe is already in the shopping cart.")
}

// RemoveFromShoppingCart godoc
// @Summary Remove a recipe from the shopping cart
// @Tags shopping cart
// @Param id path int true "Recipe ID"
// @Success 204
// @Failure 404 {object} models.MembershipError
// @Security TokenAuth
// @Router /api/recipes/{id}/shopping_cart/ [delete]
func (rc *recipeController) RemoveFromShoppingCart(c *gin.Context) {
	rc.removeMembership(c, rc.recipes.RemoveFromCart, "Recipe is not in the shopping cart.")
}

type addFunc func(ctx context.Context, userID, recipeID uint) (*models.Recipe, error)

type removeFunc func(ctx context.Context, userID, recipeID uint) error

func (rc *recipeController) addMembership(c *gin.Context, add addFunc, duplicate string) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	recipe, err := add(c.Request.Context(), viewer(c), id)
	if err != nil {
		respondMembershipError(c, err, duplicate, "")
		return
	}
	c.JSON(http.StatusCreated, newShortRecipeResponse(recipe))
}

func (rc *recipeController) removeMembership(c *gin.Context, remove removeFunc, missing string) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := remove(c.Request.Context(), viewer(c), id); err != nil {
		respondMembershipError(c, err, "", missing)
		return
	}
	c.Status(http.StatusNoContent)
}

// DownloadShoppingCart godoc
// @Summary Download the shopping list
// @Description Ingredients of every recipe in the cart, summed per name and unit
// @Tags shopping cart
// @Produce application/pdf
// @Produce text/plain
// @Param format query string false "pdf (default) or txt"
// @Success 200 {file} file
// @Failure 400 {object} models.ValidationErrors
// @Security TokenAuth
// @Router /api/recipes/download_shopping_cart/ [get]
func (rc *recipeController) DownloadShoppingCart(c *gin.Context) {
	format := c.DefaultQuery("format", "pdf")
	if format != "pdf" && format != "txt" {
		c.JSON(http.StatusBadRequest, models.ValidationErrors{"format": "Select pdf or txt."})
		return
	}

	lines, err := rc.recipes.ShoppingList(c.Request.Context(), viewer(c))
	if err != nil {
		respondError(c, err)
		return
	}

	var buf bytes.Buffer
	contentType := "text/plain; charset=utf-8"
	if format == "pdf" {
		contentType = "application/pdf"
		err = rc.renderer.WritePDF(&buf, lines)
	} else {
		err = shoppinglist.WriteText(&buf, lines)
	}
	if err != nil {
		respondError(c, err)
		return
	}

	metrics.RecordShoppingListDownload(format)
	c.Header("Content-Disposition", `attachment; filename="shopping_list.`+format+`"`)
	c.Data(http.StatusOK, contentType, buf.Bytes())
}

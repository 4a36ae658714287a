package controllers

import (
	"net/http"

	"github.com/franciscosanchezn/foodgram-api/internal/models"
	"github.com/franciscosanchezn/foodgram-api/internal/services"
	"github.com/gin-gonic/gin"
)

// IngredientController serves the ingredient catalogue. Writes are admin only.
type IngredientController interface {
	ListIngredients(c *gin.Context)
	GetIngredient(c *gin.Context)
	CreateIngredient(c *gin.Context)
	DeleteIngredient(c *gin.Context)
}

type ingredientController struct {
	service services.IngredientService
}

func NewIngredientController(service services.IngredientService) IngredientController {
	return &ingredientController{service: service}
}

type CreateIngredientRequest struct {
	Name            string `json:"name" binding:"required,max=200"`
	MeasurementUnit string `json:"measurement_unit" binding:"required,max=200"`
}

// ListIngredients godoc
// @Summary List ingredients
// @Description Case-insensitive search by name prefix
// @Tags ingredients
// @Produce json
// @Param name query string false "Name prefix"
// @Success 200 {array} models.Ingredient
// @Router /api/ingredients/ [get]
func (ic *ingredientController) ListIngredients(c *gin.Context) {
	ingredients, err := ic.service.ListIngredients(c.Request.Context(), c.Query("name"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ingredients)
}

// GetIngredient godoc
// @Summary Get ingredient by ID
// @Tags ingredients
// @Produce json
// @Param id path int true "Ingredient ID"
// @Success 200 {object} models.Ingredient
// @Failure 404 {object} models.DetailError
// @Router /api/ingredients/{id}/ [get]
func (ic *ingredientController) GetIngredient(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	ingredient, err := ic.service.GetIngredient(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ingredient)
}

// CreateIngredient godoc
// @Summary Create an ingredient
// @Tags ingredients
// @Accept json
// @Produce json
// @Param ingredient body CreateIngredientRequest true "Ingredient"
// @Success 201 {object} models.Ingredient
// @Failure 400 {object} models.ValidationErrors
// @Failure 403 {object} models.DetailError
// @Security TokenAuth
// @Router /api/ingredients/ [post]
func (ic *ingredientController) CreateIngredient(c *gin.Context) {
	var req CreateIngredientRequest
	if !bindJSON(c, &req) {
		return
	}

	ingredient := &models.Ingredient{Name: req.Name, MeasurementUnit: req.MeasurementUnit}
	if err := ic.service.CreateIngredient(c.Request.Context(), ingredient); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ingredient)
}

// DeleteIngredient godoc
// @Summary Delete an ingredient
// @Description Also removes the ingredient from every recipe
// @Tags ingredients
// @Param id path int true "Ingredient ID"
// @Success 204
// @Failure 403 {object} models.DetailError
// @Failure 404 {object} models.DetailError
// @Security TokenAuth
// @Router /api/ingredients/{id}/ [delete]
func (ic *ingredientController) DeleteIngredient(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := ic.service.DeleteIngredient(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

package controllers

import (
	"net/http"

	"github.com/franciscosanchezn/foodgram-api/internal/models"
	"github.com/franciscosanchezn/foodgram-api/internal/services"
	"github.com/gin-gonic/gin"
)

// TagController serves the tag catalogue. Writes are admin only.
type TagController interface {
	ListTags(c *gin.Context)
	GetTag(c *gin.Context)
	CreateTag(c *gin.Context)
	UpdateTag(c *gin.Context)
	DeleteTag(c *gin.Context)
}

type tagController struct {
	service services.TagService
}

func NewTagController(service services.TagService) TagController {
	return &tagController{service: service}
}

type CreateTagRequest struct {
	Name  string `json:"name" binding:"required,max=200"`
	Color string `json:"color" binding:"omitempty,color"`
	Slug  string `json:"slug" binding:"required,max=200,slug"`
}

type UpdateTagRequest struct {
	Name  *string `json:"name" binding:"omitnil,min=1,max=200"`
	Color *string `json:"color" binding:"omitempty,color"`
	Slug  *string `json:"slug" binding:"omitnil,min=1,max=200,slug"`
}

// ListTags godoc
// @Summary List tags
// @Tags tags
// @Produce json
// @Success 200 {array} models.Tag
// @Router /api/tags/ [get]
func (tc *tagController) ListTags(c *gin.Context) {
	tags, err := tc.service.ListTags(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tags)
}

// GetTag godoc
// @Summary Get tag by ID
// @Tags tags
// @Produce json
// @Param id path int true "Tag ID"
// @Success 200 {object} models.Tag
// @Failure 404 {object} models.DetailError
// @Router /api/tags/{id}/ [get]
func (tc *tagController) GetTag(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	tag, err := tc.service.GetTag(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tag)
}

// CreateTag godoc
// @Summary Create a tag
// @Tags tags
// @Accept json
// @Produce json
// @Param tag body CreateTagRequest true "Tag"
// @Success 201 {object} models.Tag
// @Failure 400 {object} models.ValidationErrors
// @Failure 403 {object} models.DetailError
// @Security TokenAuth
// @Router /api/tags/ [post]
func (tc *tagController) CreateTag(c *gin.Context) {
	var req CreateTagRequest
	if !bindJSON(c, &req) {
		return
	}

	tag := &models.Tag{Name: req.Name, Color: req.Color, Slug: req.Slug}
	if err := tc.service.CreateTag(c.Request.Context(), tag); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, tag)
}

// UpdateTag godoc
// @Summary Update a tag
// @Tags tags
// @Accept json
// @Produce json
// @Param id path int true "Tag ID"
// @Param tag body UpdateTagRequest true "Fields to change"
// @Success 200 {object} models.Tag
// @Failure 400 {object} models.ValidationErrors
// @Failure 403 {object} models.DetailError
// @Failure 404 {object} models.DetailError
// @Security TokenAuth
// @Router /api/tags/{id}/ [patch]
func (tc *tagController) UpdateTag(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req UpdateTagRequest
	if !bindJSON(c, &req) {
		return
	}

	tag, err := tc.service.UpdateTag(c.Request.Context(), id, services.TagUpdate{
		Name:  req.Name,
		Color: req.Color,
		Slug:  req.Slug,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tag)
}

// DeleteTag godoc
// @Summary Delete a tag
// @Description Recipes keep existing, only their association with the tag is removed
// @Tags tags
// @Param id path int true "Tag ID"
// @Success 204
// @Failure 403 {object} models.DetailError
// @Failure 404 {object} models.DetailError
// @Security TokenAuth
// @Router /api/tags/{id}/ [delete]
func (tc *tagController) DeleteTag(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := tc.service.DeleteTag(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

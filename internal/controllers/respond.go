package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/franciscosanchezn/foodgram-api/internal/models"
	"github.com/franciscosanchezn/foodgram-api/internal/services"
	"github.com/franciscosanchezn/foodgram-api/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

var log = logrus.New()

func init() {
	log.SetFormatter(&logrus.JSONFormatter{})
}

const notFoundDetail = "Not found."

// respondError maps service errors onto HTTP responses
func respondError(c *gin.Context, err error) {
	var validation *services.ValidationError
	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, validation.Fields)
	case errors.Is(err, storage.ErrInvalidImage):
		c.JSON(http.StatusBadRequest, models.ValidationErrors{"image": "Upload a valid image."})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, models.NewDetailError(notFoundDetail))
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, models.NewDetailError("You do not have permission to perform this action."))
	case errors.Is(err, services.ErrAlreadyExists):
		c.JSON(http.StatusBadRequest, models.NewMembershipError("Already exists."))
	case errors.Is(err, services.ErrMembershipNotFound):
		c.JSON(http.StatusNotFound, models.NewMembershipError(notFoundDetail))
	default:
		log.WithError(err).WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
		}).Error("Request failed")
		c.JSON(http.StatusInternalServerError, models.NewDetailError("internal server error"))
	}
}

// respondMembershipError is respondError with messages specific to a favorite,
// cart or subscription toggle
func respondMembershipError(c *gin.Context, err error, duplicate, missing string) {
	switch {
	case errors.Is(err, services.ErrAlreadyExists):
		c.JSON(http.StatusBadRequest, models.NewMembershipError(duplicate))
	case errors.Is(err, services.ErrMembershipNotFound):
		c.JSON(http.StatusNotFound, models.NewMembershipError(missing))
	case errors.Is(err, models.ErrSelfFollow):
		c.JSON(http.StatusBadRequest, models.NewMembershipError("You cannot subscribe to yourself."))
	default:
		respondError(c, err)
	}
}

// pathID parses the :id parameter. Anything but a positive integer is a 404.
func pathID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusNotFound, models.NewDetailError(notFoundDetail))
		return 0, false
	}
	return uint(id), true
}

package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/franciscosanchezn/foodgram-api/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)
	slugPattern     = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)
	colorPattern    = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

	registerOnce sync.Once
	registerErr  error
)

// RegisterValidators installs the custom binding tags on gin's validator.
// Field errors are reported under their JSON names.
func RegisterValidators() error {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			registerErr = errors.New("unexpected binding validator engine")
			return
		}

		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})

		custom := map[string]*regexp.Regexp{
			"username": usernamePattern,
			"slug":     slugPattern,
			"color":    colorPattern,
		}
		for tag, pattern := range custom {
			pattern := pattern
			err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
				return pattern.MatchString(fl.Field().String())
			})
			if err != nil {
				registerErr = fmt.Errorf("register %s validator: %w", tag, err)
				return
			}
		}
	})
	return registerErr
}

var errorMessageTemplates = map[string]string{
	"required": "This field is required.",
	"email":    "Enter a valid email address.",
	"username": "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters.",
	"slug":     "Enter a valid slug consisting of letters, numbers, underscores or hyphens.",
	"color":    "Enter a valid hex color, e.g. #E26C2D.",
}

func translateError(fe validator.FieldError) string {
	if message, ok := errorMessageTemplates[fe.Tag()]; ok {
		return message
	}

	isString := fe.Kind() == reflect.String
	switch fe.Tag() {
	case "min":
		if isString {
			return fmt.Sprintf("Ensure this field has at least %s characters.", fe.Param())
		}
		return fmt.Sprintf("Ensure this value is greater than or equal to %s.", fe.Param())
	case "max":
		if isString {
			return fmt.Sprintf("Ensure this field has no more than %s characters.", fe.Param())
		}
		return fmt.Sprintf("Ensure this value is less than or equal to %s.", fe.Param())
	default:
		return "Invalid value."
	}
}

// bindJSON decodes and validates the body. On failure it writes the 400
// response and returns false.
func bindJSON(c *gin.Context, obj interface{}) bool {
	err := c.ShouldBindJSON(obj)
	if err == nil {
		return true
	}

	var validationErrs validator.ValidationErrors
	var typeErr *json.UnmarshalTypeError
	var syntaxErr *json.SyntaxError
	switch {
	case errors.As(err, &validationErrs):
		fields := models.ValidationErrors{}
		for _, fe := range validationErrs {
			fields[fe.Field()] = translateError(fe)
		}
		c.JSON(http.StatusBadRequest, fields)
	case errors.As(err, &typeErr):
		field := typeErr.Field
		if field == "" {
			field = "non_field_errors"
		}
		c.JSON(http.StatusBadRequest, models.ValidationErrors{field: fmt.Sprintf("Expected a value of type %s.", typeErr.Type)})
	case errors.As(err, &syntaxErr), errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		c.JSON(http.StatusBadRequest, models.NewDetailError("JSON parse error - "+err.Error()))
	default:
		c.JSON(http.StatusBadRequest, models.NewDetailError(err.Error()))
	}
	return false
}

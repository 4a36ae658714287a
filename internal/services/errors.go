package services

import (
	"errors"
	"sort"
	"strings"

	"github.com/franciscosanchezn/foodgram-api/internal/models"
	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when the requested entity does not exist
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when a favorite, cart entry or subscription is added twice
	ErrAlreadyExists = errors.New("already exists")
	// ErrMembershipNotFound is returned when removing a favorite, cart entry or subscription that is absent
	ErrMembershipNotFound = errors.New("membership not found")
	// ErrForbidden is returned when a user mutates a recipe they do not own
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidCredentials is returned when an email/password pair does not match
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// ValidationError carries field-keyed messages for a rejected payload
type ValidationError struct {
	Fields models.ValidationErrors
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func newValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: models.ValidationErrors{field: message}}
}

// notFound maps gorm's missing-row error to ErrNotFound
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

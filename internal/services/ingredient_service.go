package services

import (
	"context"
	"errors"
	"strings"

	"github.com/franciscosanchezn/foodgram-api/internal/models"
	"gorm.io/gorm"
)

// IngredientService manages the ingredient catalogue. Writes are admin only.
type IngredientService interface {
	// ListIngredients returns ingredients whose name starts with prefix, case-insensitively
	ListIngredients(ctx context.Context, prefix string) ([]models.Ingredient, error)
	GetIngredient(ctx context.Context, id uint) (*models.Ingredient, error)
	CreateIngredient(ctx context.Context, ingredient *models.Ingredient) error
	DeleteIngredient(ctx context.Context, id uint) error
}

type ingredientService struct {
	db *gorm.DB
}

func NewIngredientService(db *gorm.DB) IngredientService {
	return &ingredientService{db: db}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (s *ingredientService) ListIngredients(ctx context.Context, prefix string) ([]models.Ingredient, error) {
	query := s.db.WithContext(ctx).Order("name").Order("id")
	if prefix = strings.TrimSpace(prefix); prefix != "" {
		query = query.Where(`LOWER(name) LIKE ? ESCAPE '\'`, likeEscaper.Replace(strings.ToLower(prefix))+"%")
	}

	var ingredients []models.Ingredient
	if err := query.Find(&ingredients).Error; err != nil {
		return nil, err
	}
	return ingredients, nil
}

func (s *ingredientService) GetIngredient(ctx context.Context, id uint) (*models.Ingredient, error) {
	var ingredient models.Ingredient
	if err := s.db.WithContext(ctx).First(&ingredient, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &ingredient, nil
}

func (s *ingredientService) CreateIngredient(ctx context.Context, ingredient *models.Ingredient) error {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Ingredient{}).
		Where("name = ? AND measurement_unit = ?", ingredient.Name, ingredient.MeasurementUnit).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return newValidationError("name", "This ingredient already exists with the same measurement unit.")
	}

	if err := s.db.WithContext(ctx).Create(ingredient).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return newValidationError("name", "This ingredient already exists with the same measurement unit.")
		}
		return err
	}
	return nil
}

func (s *ingredientService) DeleteIngredient(ctx context.Context, id uint) error {
	ingredient, err := s.GetIngredient(ctx, id)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("ingredient_id = ?", id).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return err
		}
		return tx.Delete(ingredient).Error
	})
}

// Package testutil holds helpers shared by package tests.
package testutil

import (
	"testing"

	"github.com/franciscosanchezn/foodgram-api/internal/database"
	"github.com/franciscosanchezn/foodgram-api/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// SetupTestDB opens a private in-memory SQLite database with the full schema
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	path := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := database.InitDatabaseWithRetry(database.DatabaseConfig{Driver: "sqlite", Path: path}, nil)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// CreateUser inserts a user whose password is "password123"
func CreateUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{
		Email:     username + "@example.com",
		Username:  username,
		FirstName: username,
		LastName:  "Tester",
		Password:  "password123",
		Role:      models.RoleUser,
	}
	require.NoError(t, user.HashPassword())
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreateIngredient inserts a catalogue ingredient
func CreateIngredient(t *testing.T, db *gorm.DB, name, unit string) *models.Ingredient {
	t.Helper()
	ingredient := &models.Ingredient{Name: name, MeasurementUnit: unit}
	require.NoError(t, db.Create(ingredient).Error)
	return ingredient
}

// CreateTag inserts a tag
func CreateTag(t *testing.T, db *gorm.DB, name, slug string) *models.Tag {
	t.Helper()
	tag := &models.Tag{Name: name, Slug: slug, Color: "#E26C2D"}
	require.NoError(t, db.Create(tag).Error)
	return tag
}

// Line builds a recipe ingredient row for CreateRecipe
func Line(ingredient *models.Ingredient, amount int) models.RecipeIngredient {
	return models.RecipeIngredient{IngredientID: ingredient.ID, Amount: amount}
}

// CreateRecipe inserts a recipe with the given ingredient lines
func CreateRecipe(t *testing.T, db *gorm.DB, author *models.User, name string, lines []models.RecipeIngredient, tags ...models.Tag) *models.Recipe {
	t.Helper()
	recipe := &models.Recipe{
		AuthorID:    author.ID,
		Name:        name,
		Text:        "Mix and cook.",
		CookingTime: 10,
		Image:       "http://localhost/media/recipes/" + name + ".png",
		Tags:        tags,
		Ingredients: lines,
	}
	require.NoError(t, db.Create(recipe).Error)
	return recipe
}

package services

import (
	"context"
	"testing"

	"github.com/franciscosanchezn/foodgram-api/internal/models"
	"github.com/franciscosanchezn/foodgram-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListIngredientsPrefixSearch(t *testing.T) {
	db := testutil.SetupTestDB(t)
	service := NewIngredientService(db)
	for _, name := range []string{"Sugar", "salt", "sour cream", "apple", "50% cocoa"} {
		testutil.CreateIngredient(t, db, name, "g")
	}

	names := func(items []models.Ingredient) []string {
		out := make([]string, 0, len(items))
		for _, i := range items {
			out = append(out, i.Name)
		}
		return out
	}

	testCases := []struct {
		prefix   string
		expected []string
	}{
		{prefix: "s", expected: []string{"Sugar", "salt", "sour cream"}},
		{prefix: "SA", expected: []string{"salt"}},
		{prefix: "cream", expected: []string{}},
		{prefix: "50%", expected: []string{"50% cocoa"}},
		{prefix: "%", expected: []string{}},
		{prefix: "", expected: []string{"50% cocoa", "Sugar", "apple", "salt", "sour cream"}},
	}
	for _, tt := range testCases {
		t.Run("prefix "+tt.prefix, func(t *testing.T) {
			items, err := service.ListIngredients(context.Background(), tt.prefix)
			require.NoError(t, err)
			assert.ElementsMatch(t, tt.expected, names(items))
		})
	}
}

func TestCreateIngredientRejectsDuplicates(t *testing.T) {
	db := testutil.SetupTestDB(t)
	service := NewIngredientService(db)
	ctx := context.Background()

	require.NoError(t, service.CreateIngredient(ctx, &models.Ingredient{Name: "milk", MeasurementUnit: "ml"}))
	require.NoError(t, service.CreateIngredient(ctx, &models.Ingredient{Name: "milk", MeasurementUnit: "cup"}))

	err := service.CreateIngredient(ctx, &models.Ingredient{Name: "milk", MeasurementUnit: "ml"})
	var vErr *ValidationError
	assert.ErrorAs(t, err, &vErr)
}

func TestDeleteIngredient(t *testing.T) {
	db := testutil.SetupTestDB(t)
	service := NewIngredientService(db)
	ctx := context.Background()
	author := testutil.CreateUser(t, db, "author")
	salt := testutil.CreateIngredient(t, db, "salt", "g")
	testutil.CreateRecipe(t, db, author, "soup", []models.RecipeIngredient{testutil.Line(salt, 5)})

	require.NoError(t, service.DeleteIngredient(ctx, salt.ID))
	_, err := service.GetIngredient(ctx, salt.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, service.DeleteIngredient(ctx, salt.ID), ErrNotFound)
}

func TestTagLifecycle(t *testing.T) {
	db := testutil.SetupTestDB(t)
	service := NewTagService(db)
	ctx := context.Background()

	breakfast := &models.Tag{Name: "Breakfast", Color: "#E26C2D", Slug: "breakfast"}
	require.NoError(t, service.CreateTag(ctx, breakfast))
	dinner := &models.Tag{Name: "Dinner", Color: "#49B64E", Slug: "dinner"}
	require.NoError(t, service.CreateTag(ctx, dinner))

	err := service.CreateTag(ctx, &models.Tag{Name: "Other", Slug: "dinner"})
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Fields, "slug")

	_, err = service.UpdateTag(ctx, breakfast.ID, TagUpdate{Slug: strPtr("dinner")})
	assert.ErrorAs(t, err, &vErr)

	updated, err := service.UpdateTag(ctx, breakfast.ID, TagUpdate{Name: strPtr("Brunch"), Slug: strPtr("brunch")})
	require.NoError(t, err)
	assert.Equal(t, "Brunch", updated.Name)
	assert.Equal(t, "brunch", updated.Slug)
	assert.Equal(t, "#E26C2D", updated.Color)

	tags, err := service.ListTags(ctx)
	require.NoError(t, err)
	require.Len(t, tags, 2)
	assert.Equal(t, "Brunch", tags[0].Name)

	author := testutil.CreateUser(t, db, "author")
	salt := testutil.CreateIngredient(t, db, "salt", "g")
	testutil.CreateRecipe(t, db, author, "soup", []models.RecipeIngredient{testutil.Line(salt, 5)}, *dinner)

	require.NoError(t, service.DeleteTag(ctx, dinner.ID))
	var links int64
	require.NoError(t, db.Table("recipe_tags").Count(&links).Error)
	assert.Zero(t, links)
	_, err = service.GetTag(ctx, dinner.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

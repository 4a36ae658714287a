package models

import (
	"time"
)

// Bounds enforced on recipe input and by database check constraints
const (
	MinCookingTime = 1
	MaxCookingTime = 300
	MinAmount      = 1
	MaxAmount      = 10000
)

// Recipe is a dish published by Author. Ingredients and tags are replaced
// as a whole on update.
type Recipe struct {
	ID          uint               `gorm:"primaryKey"`
	AuthorID    uint               `gorm:"not null;index"`
	Author      User               `gorm:"constraint:OnDelete:CASCADE"`
	Name        string             `gorm:"size:200;not null"`
	Text        string             `gorm:"type:text;not null"`
	Image       string             `gorm:"size:500"`
	ImageKey    string             `gorm:"size:255"`
	CookingTime int                `gorm:"not null;check:chk_recipe_cooking_time,cooking_time >= 1"`
	Tags        []Tag              `gorm:"many2many:recipe_tags;constraint:OnDelete:CASCADE"`
	Ingredients []RecipeIngredient `gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// RecipeIngredient links a recipe to an ingredient with the amount used.
type RecipeIngredient struct {
	ID           uint       `gorm:"primaryKey"`
	RecipeID     uint       `gorm:"not null;uniqueIndex:idx_recipe_ingredient"`
	IngredientID uint       `gorm:"not null;uniqueIndex:idx_recipe_ingredient;index"`
	Ingredient   Ingredient `gorm:"constraint:OnDelete:CASCADE"`
	Amount       int        `gorm:"not null;check:chk_recipe_ingredient_amount,amount >= 1"`
}

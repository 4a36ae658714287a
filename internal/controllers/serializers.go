package controllers

import (
	"context"

	"github.com/franciscosanchezn/foodgram-api/internal/models"
	"github.com/franciscosanchezn/foodgram-api/internal/services"
)

// UserResponse is the public representation of an account
type UserResponse struct {
	Email        string `json:"email"`
	ID           uint   `json:"id"`
	Username     string `json:"username"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	IsSubscribed bool   `json:"is_subscribed"`
}

// RecipeIngredientResponse is one ingredient line of a recipe
type RecipeIngredientResponse struct {
	ID              uint   `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	Amount          int    `json:"amount"`
}

type RecipeResponse struct {
	ID               uint                       `json:"id"`
	Tags             []models.Tag               `json:"tags"`
	Author           UserResponse               `json:"author"`
	Ingredients      []RecipeIngredientResponse `json:"ingredients"`
	IsFavorited      bool                       `json:"is_favorited"`
	IsInShoppingCart bool                       `json:"is_in_shopping_cart"`
	Name             string                     `json:"name"`
	Image            string                     `json:"image"`
	Text             string                     `json:"text"`
	CookingTime      int                        `json:"cooking_time"`
}

// ShortRecipeResponse is used in favorite/cart responses and subscriptions
type ShortRecipeResponse struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Image       string `json:"image"`
	CookingTime int    `json:"cooking_time"`
}

type SubscriptionResponse struct {
	UserResponse
	Recipes      []ShortRecipeResponse `json:"recipes"`
	RecipesCount int64                 `json:"recipes_count"`
}

func newUserResponse(user *models.User, subscribed bool) UserResponse {
	return UserResponse{
		Email:        user.Email,
		ID:           user.ID,
		Username:     user.Username,
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		IsSubscribed: subscribed,
	}
}

func newShortRecipeResponse(recipe *models.Recipe) ShortRecipeResponse {
	return ShortRecipeResponse{
		ID:          recipe.ID,
		Name:        recipe.Name,
		Image:       recipe.Image,
		CookingTime: recipe.CookingTime,
	}
}

// presenter builds representations that depend on who is asking
type presenter struct {
	users   services.UserService
	recipes services.RecipeService
}

func (p presenter) userList(ctx context.Context, viewerID uint, users []models.User) ([]UserResponse, error) {
	ids := make([]uint, len(users))
	for i := range users {
		ids[i] = users[i].ID
	}
	followed, err := p.users.FollowedAmong(ctx, viewerID, ids)
	if err != nil {
		return nil, err
	}

	out := make([]UserResponse, len(users))
	for i := range users {
		out[i] = newUserResponse(&users[i], followed[users[i].ID])
	}
	return out, nil
}

func (p presenter) recipeList(ctx context.Context, viewerID uint, recipes []models.Recipe) ([]RecipeResponse, error) {
	recipeIDs := make([]uint, len(recipes))
	authorIDs := make([]uint, 0, len(recipes))
	for i := range recipes {
		recipeIDs[i] = recipes[i].ID
		authorIDs = append(authorIDs, recipes[i].AuthorID)
	}

	flags, err := p.recipes.Flags(ctx, viewerID, recipeIDs)
	if err != nil {
		return nil, err
	}
	followed, err := p.users.FollowedAmong(ctx, viewerID, authorIDs)
	if err != nil {
		return nil, err
	}

	out := make([]RecipeResponse, len(recipes))
	for i := range recipes {
		recipe := &recipes[i]
		lines := make([]RecipeIngredientResponse, len(recipe.Ingredients))
		for j, line := range recipe.Ingredients {
			lines[j] = RecipeIngredientResponse{
				ID:              line.IngredientID,
				Name:            line.Ingredient.Name,
				MeasurementUnit: line.Ingredient.MeasurementUnit,
				Amount:          line.Amount,
			}
		}
		tags := recipe.Tags
		if tags == nil {
			tags = []models.Tag{}
		}
		out[i] = RecipeResponse{
			ID:               recipe.ID,
			Tags:             tags,
			Author:           newUserResponse(&recipe.Author, followed[recipe.AuthorID]),
			Ingredients:      lines,
			IsFavorited:      flags.Favorited[recipe.ID],
			IsInShoppingCart: flags.InCart[recipe.ID],
			Name:             recipe.Name,
			Image:            recipe.Image,
			Text:             recipe.Text,
			CookingTime:      recipe.CookingTime,
		}
	}
	return out, nil
}

func (p presenter) recipe(ctx context.Context, viewerID uint, recipe *models.Recipe) (RecipeResponse, error) {
	out, err := p.recipeList(ctx, viewerID, []models.Recipe{*recipe})
	if err != nil {
		return RecipeResponse{}, err
	}
	return out[0], nil
}

// subscriptions renders followed authors with their newest recipes; limit < 0 means all
func (p presenter) subscriptions(ctx context.Context, authors []models.User, limit int) ([]SubscriptionResponse, error) {
	ids := make([]uint, len(authors))
	for i := range authors {
		ids[i] = authors[i].ID
	}
	byAuthor, err := p.recipes.ByAuthors(ctx, ids, limit)
	if err != nil {
		return nil, err
	}

	out := make([]SubscriptionResponse, len(authors))
	for i := range authors {
		recipes := byAuthor.Recipes[authors[i].ID]
		short := make([]ShortRecipeResponse, len(recipes))
		for j := range recipes {
			short[j] = newShortRecipeResponse(&recipes[j])
		}
		out[i] = SubscriptionResponse{
			UserResponse: newUserResponse(&authors[i], true),
			Recipes:      short,
			RecipesCount: byAuthor.Counts[authors[i].ID],
		}
	}
	return out, nil
}

package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/franciscosanchezn/foodgram-api/internal/models"
	"github.com/franciscosanchezn/foodgram-api/internal/shoppinglist"
	"github.com/franciscosanchezn/foodgram-api/internal/storage"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var log = logrus.New()

func init() {
	log.SetFormatter(&logrus.JSONFormatter{})
}

const recipeImagePrefix = "recipes"

// Actor is the authenticated user performing a mutation
type Actor struct {
	ID    uint
	Admin bool
}

// IngredientAmount is one requested recipe line
type IngredientAmount struct {
	ID     uint
	Amount int
}

// RecipeInput is a create or update payload. Nil scalar fields are left
// unchanged on update; Ingredients and Tags always replace the stored ones.
type RecipeInput struct {
	Name        *string
	Text        *string
	CookingTime *int
	Image       *string
	Ingredients []IngredientAmount
	Tags        []uint
}

// RecipeFilter narrows the recipe list. Zero values disable a filter.
type RecipeFilter struct {
	AuthorID    uint
	TagSlugs    []string
	FavoritedBy uint
	InCartOf    uint
}

// RecipeFlags holds per-user membership of a set of recipes
type RecipeFlags struct {
	Favorited map[uint]bool
	InCart    map[uint]bool
}

// AuthorRecipes summarises an author's recipes for the subscriptions list
type AuthorRecipes struct {
	Recipes map[uint][]models.Recipe
	Counts  map[uint]int64
}

// RecipeService manages recipes and the favorites and cart built on top of them
type RecipeService interface {
	// ListRecipes returns one page of recipes, newest first
	ListRecipes(ctx context.Context, filter RecipeFilter, page Page) ([]models.Recipe, int64, error)
	GetRecipe(ctx context.Context, id uint) (*models.Recipe, error)
	CreateRecipe(ctx context.Context, actor Actor, input RecipeInput) (*models.Recipe, error)
	UpdateRecipe(ctx context.Context, actor Actor, id uint, input RecipeInput) (*models.Recipe, error)
	DeleteRecipe(ctx context.Context, actor Actor, id uint) error

	AddFavorite(ctx context.Context, userID, recipeID uint) (*models.Recipe, error)
	RemoveFavorite(ctx context.Context, userID, recipeID uint) error
	AddToCart(ctx context.Context, userID, recipeID uint) (*models.Recipe, error)
	RemoveFromCart(ctx context.Context, userID, recipeID uint) error

	// Flags reports which of recipeIDs userID favorited or put in the cart
	Flags(ctx context.Context, userID uint, recipeIDs []uint) (RecipeFlags, error)
	// ShoppingList aggregates the ingredients of every recipe in the user's cart
	ShoppingList(ctx context.Context, userID uint) ([]shoppinglist.Line, error)
	// ByAuthors returns up to limit newest recipes per author plus their totals; limit < 0 means all
	ByAuthors(ctx context.Context, authorIDs []uint, limit int) (AuthorRecipes, error)
}

type recipeService struct {
	db    *gorm.DB
	store storage.Store
}

func NewRecipeService(db *gorm.DB, store storage.Store) RecipeService {
	return &recipeService{db: db, store: store}
}

func preloadRecipe(tx *gorm.DB) *gorm.DB {
	return tx.
		Preload("Author").
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("tags.id") }).
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB { return db.Order("recipe_ingredients.id") }).
		Preload("Ingredients.Ingredient")
}

func (f RecipeFilter) scope(tx *gorm.DB) *gorm.DB {
	if f.AuthorID != 0 {
		tx = tx.Where("recipes.author_id = ?", f.AuthorID)
	}
	if len(f.TagSlugs) > 0 {
		tagged := tx.Session(&gorm.Session{NewDB: true}).
			Table("recipe_tags").
			Select("recipe_tags.recipe_id").
			Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
			Where("tags.slug IN ?", f.TagSlugs)
		tx = tx.Where("recipes.id IN (?)", tagged)
	}
	if f.FavoritedBy != 0 {
		favorited := tx.Session(&gorm.Session{NewDB: true}).
			Model(&models.Favorite{}).Select("recipe_id").Where("user_id = ?", f.FavoritedBy)
		tx = tx.Where("recipes.id IN (?)", favorited)
	}
	if f.InCartOf != 0 {
		inCart := tx.Session(&gorm.Session{NewDB: true}).
			Model(&models.Cart{}).Select("recipe_id").Where("user_id = ?", f.InCartOf)
		tx = tx.Where("recipes.id IN (?)", inCart)
	}
	return tx
}

func (s *recipeService) ListRecipes(ctx context.Context, filter RecipeFilter, page Page) ([]models.Recipe, int64, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&models.Recipe{}).Scopes(filter.scope).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var recipes []models.Recipe
	err := s.db.WithContext(ctx).
		Scopes(filter.scope, preloadRecipe).
		Order("recipes.id DESC").
		Offset(page.Offset()).
		Limit(page.Size).
		Find(&recipes).Error
	if err != nil {
		return nil, 0, err
	}
	return recipes, total, nil
}

func (s *recipeService) GetRecipe(ctx context.Context, id uint) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).Scopes(preloadRecipe).First(&recipe, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &recipe, nil
}

func (s *recipeService) CreateRecipe(ctx context.Context, actor Actor, input RecipeInput) (*models.Recipe, error) {
	tags, lines, err := s.validate(ctx, input, true)
	if err != nil {
		return nil, err
	}

	image, err := s.saveImage(ctx, *input.Image)
	if err != nil {
		return nil, err
	}

	recipe := models.Recipe{
		AuthorID:    actor.ID,
		Name:        strings.TrimSpace(*input.Name),
		Text:        *input.Text,
		CookingTime: *input.CookingTime,
		Image:       image.url,
		ImageKey:    image.key,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(&recipe).Error; err != nil {
			return err
		}
		return replaceAssociations(tx, &recipe, tags, lines)
	})
	if err != nil {
		s.deleteImage(ctx, image.key)
		return nil, fmt.Errorf("create recipe: %w", err)
	}

	log.WithFields(logrus.Fields{"recipe_id": recipe.ID, "author_id": actor.ID}).Info("Recipe created")
	return s.GetRecipe(ctx, recipe.ID)
}

func (s *recipeService) UpdateRecipe(ctx context.Context, actor Actor, id uint, input RecipeInput) (*models.Recipe, error) {
	existing, err := s.GetRecipe(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.AuthorID != actor.ID && !actor.Admin {
		return nil, ErrForbidden
	}

	tags, lines, err := s.validate(ctx, input, false)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if input.Name != nil {
		updates["name"] = strings.TrimSpace(*input.Name)
	}
	if input.Text != nil {
		updates["text"] = *input.Text
	}
	if input.CookingTime != nil {
		updates["cooking_time"] = *input.CookingTime
	}

	var replaced *storedImage
	if input.Image != nil && *input.Image != existing.Image {
		replaced, err = s.saveImage(ctx, *input.Image)
		if err != nil {
			return nil, err
		}
		updates["image"] = replaced.url
		updates["image_key"] = replaced.key
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(updates) > 0 {
			if err := tx.Model(&models.Recipe{ID: existing.ID}).Updates(updates).Error; err != nil {
				return err
			}
		}
		return replaceAssociations(tx, existing, tags, lines)
	})
	if err != nil {
		if replaced != nil {
			s.deleteImage(ctx, replaced.key)
		}
		return nil, fmt.Errorf("update recipe %d: %w", id, err)
	}

	if replaced != nil {
		s.deleteImage(ctx, existing.ImageKey)
	}
	return s.GetRecipe(ctx, id)
}

func (s *recipeService) DeleteRecipe(ctx context.Context, actor Actor, id uint) error {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, id).Error; err != nil {
		return notFound(err)
	}
	if recipe.AuthorID != actor.ID && !actor.Admin {
		return ErrForbidden
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, child := range []interface{}{&models.RecipeIngredient{}, &models.Favorite{}, &models.Cart{}} {
			if err := tx.Where("recipe_id = ?", id).Delete(child).Error; err != nil {
				return err
			}
		}
		if err := tx.Model(&recipe).Association("Tags").Clear(); err != nil {
			return err
		}
		return tx.Delete(&recipe).Error
	})
	if err != nil {
		return fmt.Errorf("delete recipe %d: %w", id, err)
	}

	s.deleteImage(ctx, recipe.ImageKey)
	log.WithFields(logrus.Fields{"recipe_id": id, "actor_id": actor.ID}).Info("Recipe deleted")
	return nil
}

// replaceAssociations clears the recipe's ingredient lines and tags and inserts the given ones
func replaceAssociations(tx *gorm.DB, recipe *models.Recipe, tags []models.Tag, lines []models.RecipeIngredient) error {
	if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.RecipeIngredient{}).Error; err != nil {
		return err
	}
	for i := range lines {
		lines[i].ID = 0
		lines[i].RecipeID = recipe.ID
	}
	if err := tx.Omit(clause.Associations).Create(&lines).Error; err != nil {
		return err
	}
	return tx.Model(&models.Recipe{ID: recipe.ID}).Association("Tags").Replace(tags)
}

// validate checks a payload and resolves its tags and ingredient lines.
// Scalars are required on create only; ingredients and tags always.
func (s *recipeService) validate(ctx context.Context, input RecipeInput, creating bool) ([]models.Tag, []models.RecipeIngredient, error) {
	fields := models.ValidationErrors{}
	required := "This field is required."

	if input.Name == nil {
		if creating {
			fields["name"] = required
		}
	} else if name := strings.TrimSpace(*input.Name); name == "" {
		fields["name"] = "This field may not be blank."
	} else if len([]rune(name)) > 200 {
		fields["name"] = "Ensure this field has no more than 200 characters."
	}

	if input.Text == nil {
		if creating {
			fields["text"] = required
		}
	} else if strings.TrimSpace(*input.Text) == "" {
		fields["text"] = "This field may not be blank."
	}

	if input.CookingTime == nil {
		if creating {
			fields["cooking_time"] = required
		}
	} else if *input.CookingTime < models.MinCookingTime || *input.CookingTime > models.MaxCookingTime {
		fields["cooking_time"] = fmt.Sprintf("Cooking time must be between %d and %d minutes.", models.MinCookingTime, models.MaxCookingTime)
	}

	if input.Image == nil {
		if creating {
			fields["image"] = required
		}
	} else if *input.Image == "" {
		fields["image"] = "This field may not be blank."
	}

	lines, msg, err := s.resolveIngredients(ctx, input.Ingredients)
	if err != nil {
		return nil, nil, err
	}
	if msg != "" {
		fields["ingredients"] = msg
	}

	tags, msg, err := s.resolveTags(ctx, input.Tags)
	if err != nil {
		return nil, nil, err
	}
	if msg != "" {
		fields["tags"] = msg
	}

	if len(fields) > 0 {
		return nil, nil, &ValidationError{Fields: fields}
	}
	return tags, lines, nil
}

func (s *recipeService) resolveIngredients(ctx context.Context, items []IngredientAmount) ([]models.RecipeIngredient, string, error) {
	if len(items) == 0 {
		return nil, "A recipe needs at least one ingredient.", nil
	}

	seen := make(map[uint]bool, len(items))
	ids := make([]uint, 0, len(items))
	for _, item := range items {
		if seen[item.ID] {
			return nil, "Ingredients must not repeat.", nil
		}
		seen[item.ID] = true
		if item.Amount < models.MinAmount || item.Amount > models.MaxAmount {
			return nil, fmt.Sprintf("Amount must be between %d and %d.", models.MinAmount, models.MaxAmount), nil
		}
		ids = append(ids, item.ID)
	}

	var found int64
	if err := s.db.WithContext(ctx).Model(&models.Ingredient{}).Where("id IN ?", ids).Count(&found).Error; err != nil {
		return nil, "", err
	}
	if int(found) != len(ids) {
		return nil, "Unknown ingredient.", nil
	}

	lines := make([]models.RecipeIngredient, 0, len(items))
	for _, item := range items {
		lines = append(lines, models.RecipeIngredient{IngredientID: item.ID, Amount: item.Amount})
	}
	return lines, "", nil
}

func (s *recipeService) resolveTags(ctx context.Context, ids []uint) ([]models.Tag, string, error) {
	if len(ids) == 0 {
		return nil, "A recipe needs at least one tag.", nil
	}
	seen := make(map[uint]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			return nil, "Tags must not repeat.", nil
		}
		seen[id] = true
	}

	var tags []models.Tag
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Order("id").Find(&tags).Error; err != nil {
		return nil, "", err
	}
	if len(tags) != len(ids) {
		return nil, "Unknown tag.", nil
	}
	return tags, "", nil
}

type storedImage struct {
	key string
	url string
}

func (s *recipeService) saveImage(ctx context.Context, uri string) (*storedImage, error) {
	img, err := storage.DecodeDataURI(uri)
	if err != nil {
		return nil, newValidationError("image", "Upload a valid image.")
	}
	key := storage.NewKey(recipeImagePrefix, img.Extension)
	url, err := s.store.Save(ctx, key, img.Data, img.ContentType)
	if err != nil {
		return nil, fmt.Errorf("store recipe image: %w", err)
	}
	return &storedImage{key: key, url: url}, nil
}

func (s *recipeService) deleteImage(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.store.Delete(ctx, key); err != nil {
		log.WithError(err).WithField("key", key).Warn("Failed to delete recipe image")
	}
}

func (s *recipeService) AddFavorite(ctx context.Context, userID, recipeID uint) (*models.Recipe, error) {
	return s.addMembership(ctx, &models.Favorite{UserID: userID, RecipeID: recipeID}, userID, recipeID)
}

func (s *recipeService) RemoveFavorite(ctx context.Context, userID, recipeID uint) error {
	return s.removeMembership(ctx, &models.Favorite{}, userID, recipeID)
}

func (s *recipeService) AddToCart(ctx context.Context, userID, recipeID uint) (*models.Recipe, error) {
	return s.addMembership(ctx, &models.Cart{UserID: userID, RecipeID: recipeID}, userID, recipeID)
}

func (s *recipeService) RemoveFromCart(ctx context.Context, userID, recipeID uint) error {
	return s.removeMembership(ctx, &models.Cart{}, userID, recipeID)
}

// addMembership inserts row, a Favorite or Cart for (userID, recipeID)
func (s *recipeService) addMembership(ctx context.Context, row interface{}, userID, recipeID uint) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, recipeID).Error; err != nil {
		return nil, notFound(err)
	}

	var count int64
	err := s.db.WithContext(ctx).Model(row).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Count(&count).Error
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrAlreadyExists
	}

	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyExists
		}
		return nil, err
	}
	return &recipe, nil
}

func (s *recipeService) removeMembership(ctx context.Context, model interface{}, userID, recipeID uint) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Recipe{}).Where("id = ?", recipeID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrNotFound
	}

	res := s.db.WithContext(ctx).Where("user_id = ? AND recipe_id = ?", userID, recipeID).Delete(model)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrMembershipNotFound
	}
	return nil
}

func (s *recipeService) Flags(ctx context.Context, userID uint, recipeIDs []uint) (RecipeFlags, error) {
	flags := RecipeFlags{Favorited: map[uint]bool{}, InCart: map[uint]bool{}}
	if userID == 0 || len(recipeIDs) == 0 {
		return flags, nil
	}

	lookups := []struct {
		model interface{}
		set   map[uint]bool
	}{
		{model: &models.Favorite{}, set: flags.Favorited},
		{model: &models.Cart{}, set: flags.InCart},
	}
	for _, lookup := range lookups {
		var ids []uint
		err := s.db.WithContext(ctx).Model(lookup.model).
			Where("user_id = ? AND recipe_id IN ?", userID, recipeIDs).
			Pluck("recipe_id", &ids).Error
		if err != nil {
			return RecipeFlags{}, err
		}
		for _, id := range ids {
			lookup.set[id] = true
		}
	}
	return flags, nil
}

func (s *recipeService) ShoppingList(ctx context.Context, userID uint) ([]shoppinglist.Line, error) {
	var items []shoppinglist.Item
	err := s.db.WithContext(ctx).
		Table("carts").
		Select("ingredients.name AS name, ingredients.measurement_unit AS unit, recipe_ingredients.amount AS amount").
		Joins("JOIN recipe_ingredients ON recipe_ingredients.recipe_id = carts.recipe_id").
		Joins("JOIN ingredients ON ingredients.id = recipe_ingredients.ingredient_id").
		Where("carts.user_id = ?", userID).
		Order("carts.id, recipe_ingredients.id").
		Scan(&items).Error
	if err != nil {
		return nil, fmt.Errorf("load shopping cart: %w", err)
	}
	return shoppinglist.Aggregate(items), nil
}

func (s *recipeService) ByAuthors(ctx context.Context, authorIDs []uint, limit int) (AuthorRecipes, error) {
	result := AuthorRecipes{Recipes: map[uint][]models.Recipe{}, Counts: map[uint]int64{}}
	if len(authorIDs) == 0 {
		return result, nil
	}

	var counts []struct {
		AuthorID uint
		Total    int64
	}
	err := s.db.WithContext(ctx).Model(&models.Recipe{}).
		Select("author_id, COUNT(*) AS total").
		Where("author_id IN ?", authorIDs).
		Group("author_id").
		Scan(&counts).Error
	if err != nil {
		return AuthorRecipes{}, err
	}
	for _, c := range counts {
		result.Counts[c.AuthorID] = c.Total
	}

	for _, authorID := range authorIDs {
		query := s.db.WithContext(ctx).Where("author_id = ?", authorID).Order("id DESC")
		if limit >= 0 {
			query = query.Limit(limit)
		}
		var recipes []models.Recipe
		if err := query.Find(&recipes).Error; err != nil {
			return AuthorRecipes{}, err
		}
		result.Recipes[authorID] = recipes
	}
	return result, nil
}

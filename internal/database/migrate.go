package database

import (
	"github.com/franciscosanchezn/foodgram-api/internal/models"
	"gorm.io/gorm"
)

// Models lists every table owned by the service, in dependency order
func Models() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Follow{},
		&models.Tag{},
		&models.Ingredient{},
		&models.Recipe{},
		&models.RecipeIngredient{},
		&models.Favorite{},
		&models.Cart{},
		&models.OAuthClient{},
		&models.OAuthToken{},
	}
}

// Migrate creates or updates the schema
func Migrate(db *gorm.DB) error {
	log.Info("Running schema migrations")
	if err := db.AutoMigrate(Models()...); err != nil {
		log.WithError(err).Error("Schema migration failed")
		return err
	}
	return nil
}

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/franciscosanchezn/foodgram-api/internal/config"
	"github.com/franciscosanchezn/foodgram-api/internal/database"
	"github.com/franciscosanchezn/foodgram-api/internal/models"
	"github.com/franciscosanchezn/foodgram-api/internal/services"
	"github.com/joho/godotenv"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const batchSize = 500

func main() {
	// Parse command line flags
	ingredientsFile := flag.String("ingredients", "", "JSON file with [{\"name\", \"measurement_unit\"}] entries")
	tagsFile := flag.String("tags", "", "JSON file with [{\"name\", \"color\", \"slug\"}] entries")
	adminEmail := flag.String("admin-email", "", "Create an admin user with this email")
	adminUsername := flag.String("admin-username", "admin", "Username of the admin user")
	adminPassword := flag.String("admin-password", "", "Password of the admin user")
	flag.Parse()

	_ = godotenv.Load()
	conf, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	db, err := database.InitDatabase(conf.Database())
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	if *ingredientsFile != "" {
		var ingredients []models.Ingredient
		if err := readJSON(*ingredientsFile, &ingredients); err != nil {
			log.Fatal(err)
		}
		n, err := insertMissing(db, &ingredients)
		if err != nil {
			log.Fatal("Failed to load ingredients:", err)
		}
		fmt.Printf("Loaded %d of %d ingredients\n", n, len(ingredients))
	}

	if *tagsFile != "" {
		var tags []models.Tag
		if err := readJSON(*tagsFile, &tags); err != nil {
			log.Fatal(err)
		}
		n, err := insertMissing(db, &tags)
		if err != nil {
			log.Fatal("Failed to load tags:", err)
		}
		fmt.Printf("Loaded %d of %d tags\n", n, len(tags))
	}

	if *adminEmail != "" {
		if *adminPassword == "" {
			log.Fatal("-admin-password is required with -admin-email")
		}
		admin := &models.User{
			Email:     *adminEmail,
			Username:  *adminUsername,
			FirstName: "Admin",
			LastName:  "Admin",
			Password:  *adminPassword,
			Role:      models.RoleAdmin,
		}
		if err := services.NewUserService(db).CreateUser(context.Background(), admin); err != nil {
			log.Fatal("Failed to create admin user:", err)
		}
		fmt.Printf("Admin user created!\n")
		fmt.Printf("Email: %s\n", admin.Email)
		fmt.Printf("Username: %s\n", admin.Username)
	}
}

func readJSON(path string, dst interface{}) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// insertMissing creates rows in batches, skipping ones that violate a unique constraint
func insertMissing(db *gorm.DB, rows interface{}) (int64, error) {
	res := db.Clauses(clause.OnConflict{DoNothing: true}).CreateInBatches(rows, batchSize)
	return res.RowsAffected, res.Error
}

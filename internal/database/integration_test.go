//go:build integration

package database

import (
	"context"
	"testing"

	"github.com/franciscosanchezn/foodgram-api/internal/models"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestPostgresMigrationAndConstraints(t *testing.T) {
	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "foodgram",
				"POSTGRES_PASSWORD": "foodgram",
				"POSTGRES_DB":       "foodgram",
			},
			WaitingFor: wait.ForAll(
				wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
				wait.ForListeningPort("5432/tcp"),
			),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	db, err := InitDatabase(DatabaseConfig{
		Driver:   "postgres",
		Host:     host,
		Port:     port.Port(),
		User:     "foodgram",
		Password: "foodgram",
		Name:     "foodgram",
		SSLMode:  "disable",
	})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	author := models.User{Email: "a@example.com", Username: "a", FirstName: "A", LastName: "A", Password: "x"}
	require.NoError(t, db.Create(&author).Error)

	// Check constraint rejects a non-positive cooking time even when validation is bypassed
	err = db.Create(&models.Recipe{AuthorID: author.ID, Name: "bad", Text: "t", CookingTime: 0}).Error
	require.Error(t, err)

	recipe := models.Recipe{AuthorID: author.ID, Name: "ok", Text: "t", CookingTime: 5}
	require.NoError(t, db.Create(&recipe).Error)
	require.NoError(t, db.Create(&models.Favorite{UserID: author.ID, RecipeID: recipe.ID}).Error)

	// Foreign key cascade removes memberships with the recipe
	require.NoError(t, db.Delete(&models.Recipe{}, recipe.ID).Error)
	var count int64
	require.NoError(t, db.Model(&models.Favorite{}).Count(&count).Error)
	require.Zero(t, count)
}

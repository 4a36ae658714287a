package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/franciscosanchezn/foodgram-api/docs" // Import generated docs
	"github.com/franciscosanchezn/foodgram-api/internal/auth"
	"github.com/franciscosanchezn/foodgram-api/internal/config"
	"github.com/franciscosanchezn/foodgram-api/internal/database"
	"github.com/franciscosanchezn/foodgram-api/internal/router"
	"github.com/franciscosanchezn/foodgram-api/internal/services"
	"github.com/franciscosanchezn/foodgram-api/internal/shoppinglist"
	"github.com/franciscosanchezn/foodgram-api/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

// @title Foodgram API
// @version 1.0
// @description Recipe sharing API: users publish recipes, follow authors, keep favorites and build a shopping list.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey TokenAuth
// @in header
// @name Authorization
// @description Type "Token" followed by a space and the auth token.
func main() {
	// Load environment variables
	loadDotenvFile()

	// Initialize logger
	setUpLogger()

	// Load configuration
	configuration := loadConfig()
	if configuration.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()

	// Initialize database connection
	db := setupDatabase(configuration)

	// Initialize services
	store, err := storage.New(ctx, configuration.Storage())
	checkPanicErr(err)
	renderer, err := shoppinglist.NewRenderer(configuration.ShoppingListFont)
	checkPanicErr(err)

	userService := services.NewUserService(db)
	oauthService := setupOAuth(ctx, db, userService, configuration)

	deps := router.Deps{
		DB:                 db,
		OAuth:              oauthService,
		Users:              userService,
		Recipes:            services.NewRecipeService(db, store),
		Tags:               services.NewTagService(db),
		Ingred:             services.NewIngredientService(db),
		Renderer:           renderer,
		Redis:              setupRedis(ctx, configuration),
		RecipeCreateLimit:  configuration.RecipeCreateLimit,
		PageSize:           configuration.PageSize,
		CORSAllowedOrigins: configuration.CORSAllowedOrigins,
	}
	if configuration.StorageDriver == "local" {
		deps.MediaRoot = configuration.MediaRoot
	}

	// Initialize Gin router
	engine, err := router.Setup(deps)
	checkPanicErr(err)

	// Start the server
	serve(engine, configuration)
}

// checkPanicErr checks if an error occurred and panics if it did
func checkPanicErr(err error) {
	if err != nil {
		panic(err)
	}
}

// loadDotenvFile loads environment variables from a .env file
// If the file is not found, it will log a warning and use system environment variables
func loadDotenvFile() {
	if err := godotenv.Load(); err != nil {
		log.Warn("No .env file found, using system environment variables")
	}
}

// setUpLogger initializes the logger with a JSON formatter and sets the log level based on the environment
func setUpLogger() {
	log.SetFormatter(&log.JSONFormatter{})
	environment := config.GetEnvWithDefault("APP_ENV", "development")
	switch environment {
	case "development":
		log.SetLevel(log.DebugLevel)
	case "production":
		log.SetLevel(log.ErrorLevel)
	default:
		log.SetLevel(log.InfoLevel)
	}
	if level, err := log.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil {
		log.SetLevel(level)
	}
}

// loadConfig loads the application configuration from environment variables
// It returns a Config struct or panics if there is an error
func loadConfig() *config.Config {
	conf, err := config.LoadConfig()
	checkPanicErr(err)
	return conf
}

// setupDatabase opens the configured database and migrates the schema
func setupDatabase(conf *config.Config) *gorm.DB {
	db, err := database.InitDatabase(conf.Database())
	checkPanicErr(err)
	checkPanicErr(database.Migrate(db))
	return db
}

// setupOAuth builds the token service, registers the web client and drops expired tokens
func setupOAuth(ctx context.Context, db *gorm.DB, users services.UserService, conf *config.Config) *auth.OAuthService {
	oauthService := auth.NewOAuthService(db, users, auth.Options{
		JWTSecret: conf.JWTSecret,
		TokenTTL:  conf.TokenTTL,
		ClientID:  conf.OAuthClientID,
	})
	checkPanicErr(oauthService.EnsureClient(ctx))

	removed, err := auth.NewGormTokenStore(db).DeleteExpired(ctx, time.Now())
	if err != nil {
		log.WithError(err).Warn("Failed to purge expired tokens")
	} else if removed > 0 {
		log.Infof("Purged %d expired tokens", removed)
	}
	return oauthService
}

// setupRedis connects to Redis when REDIS_URL is set. Without it recipe creation is not rate limited.
func setupRedis(ctx context.Context, conf *config.Config) *redis.Client {
	if conf.RedisURL == "" {
		log.Info("REDIS_URL not set, recipe creation rate limiting disabled")
		return nil
	}

	opts, err := redis.ParseURL(conf.RedisURL)
	checkPanicErr(err)
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		// The limiter fails open, so keep going
		log.WithError(err).Warn("Redis is not reachable yet")
	}
	return client
}

// serve runs the HTTP server until SIGINT or SIGTERM and then drains it
func serve(handler http.Handler, conf *config.Config) {
	srv := &http.Server{
		Addr:              fmt.Sprintf("%v:%d", conf.Host, conf.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Infof("Starting server on %s:%d", conf.Host, conf.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("Server forced to shutdown")
	}
}

package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/franciscosanchezn/foodgram-api/internal/database"
	"github.com/franciscosanchezn/foodgram-api/internal/storage"
	"github.com/sirupsen/logrus"
)

// Create a new instance of the logger
// Configure it to log at the desired level
// and format it as JSON for structured logging
var log = logrus.New()

func init() {
	log.SetFormatter(&logrus.JSONFormatter{})
	environment := GetEnvWithDefault("APP_ENV", "development")
	switch environment {
	case "development":
		log.SetLevel(logrus.DebugLevel)
	case "production":
		log.SetLevel(logrus.ErrorLevel)
	default:
		// Default to info level for other environments
		log.SetLevel(logrus.InfoLevel)
	}
}

// Config used for the application configuration, loading the input from environment variables
type Config struct {
	// Server Configuration
	Env  string `json:"env"`
	Port int    `json:"port"`
	Host string `json:"host"`

	// Database configuration
	DatabaseURL string `json:"database_url"`
	DBDriver    string `json:"db_driver"`
	DBHost      string `json:"db_host"`
	DBPort      string `json:"db_port"`
	DBName      string `json:"db_name"`
	DBUser      string `json:"db_user"`
	DBPassword  string `json:"db_password"`
	DBSSLMode   string `json:"db_sslmode"`
	DBPath      string `json:"db_path"`

	// Logging configuration
	LogLevel string `json:"log_level"`

	// Security Configuration
	JWTSecret     string        `json:"jwt_secret"`
	TokenTTL      time.Duration `json:"token_ttl"`
	OAuthClientID string        `json:"oauth_client_id"`

	// API behaviour
	PageSize           int      `json:"page_size"`
	RecipeCreateLimit  int      `json:"recipe_create_limit"`
	CORSAllowedOrigins []string `json:"cors_allowed_origins"`
	ShoppingListFont   string   `json:"shopping_list_font"`

	// Redis is optional; rate limiting is disabled without it
	RedisURL string `json:"redis_url"`

	// Image storage
	StorageDriver     string `json:"storage_driver"`
	MediaRoot         string `json:"media_root"`
	MediaURL          string `json:"media_url"`
	S3Bucket          string `json:"s3_bucket"`
	S3Region          string `json:"s3_region"`
	S3Endpoint        string `json:"s3_endpoint"`
	S3AccessKeyID     string `json:"s3_access_key_id"`
	S3SecretAccessKey string `json:"s3_secret_access_key"`
	S3PublicURL       string `json:"s3_public_url"`
}

// String returns a string representation of Config with sensitive data masked
func (c *Config) String() string {
	return fmt.Sprintf("Config{Env: %s, Port: %d, Host: %s, DatabaseURL: %s, DBDriver: %s, DBHost: %s, DBName: %s, DBUser: %s, DBPassword: [REDACTED], DBPath: %s, LogLevel: %s, JWTSecret: [REDACTED], TokenTTL: %s, PageSize: %d, RecipeCreateLimit: %d, RedisURL: %s, StorageDriver: %s, MediaRoot: %s, MediaURL: %s, S3Bucket: %s, S3Endpoint: %s, S3SecretAccessKey: [REDACTED]}",
		c.Env, c.Port, c.Host, maskDatabaseURL(c.DatabaseURL), c.DBDriver, c.DBHost, c.DBName, c.DBUser, c.DBPath,
		c.LogLevel, c.TokenTTL, c.PageSize, c.RecipeCreateLimit, maskDatabaseURL(c.RedisURL),
		c.StorageDriver, c.MediaRoot, c.MediaURL, c.S3Bucket, c.S3Endpoint)
}

// Database returns the connection settings for the database package
func (c *Config) Database() database.DatabaseConfig {
	return database.DatabaseConfig{
		Driver:   c.DBDriver,
		URL:      c.DatabaseURL,
		Host:     c.DBHost,
		Port:     c.DBPort,
		User:     c.DBUser,
		Password: c.DBPassword,
		Name:     c.DBName,
		SSLMode:  c.DBSSLMode,
		Path:     c.DBPath,
	}
}

// Storage returns the image storage settings
func (c *Config) Storage() storage.Config {
	return storage.Config{
		Driver:            c.StorageDriver,
		MediaRoot:         c.MediaRoot,
		MediaURL:          c.MediaURL,
		S3Bucket:          c.S3Bucket,
		S3Region:          c.S3Region,
		S3Endpoint:        c.S3Endpoint,
		S3AccessKeyID:     c.S3AccessKeyID,
		S3SecretAccessKey: c.S3SecretAccessKey,
		S3PublicURL:       c.S3PublicURL,
	}
}

// maskDatabaseURL masks password in database URL
func maskDatabaseURL(dbURL string) string {
	if dbURL == "" {
		return ""
	}

	parsed, err := url.Parse(dbURL)
	if err != nil {
		return "[REDACTED_INVALID_URL]"
	}

	if parsed.User != nil {
		// Replace password with [REDACTED]
		parsed.User = url.UserPassword(parsed.User.Username(), "[REDACTED]")
	}

	return parsed.String()
}

// LoadConfig read the proper configuration from environment variables and returns a Config struct
// It also validates formats like DatabaseURL and the storage settings
// Returns an error if any environment variable is invalid
func LoadConfig() (*Config, error) {
	log.Info("Loading configuration from environment variables")
	port, err := strconv.Atoi(GetEnvWithDefault("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	dbURL := GetEnvWithDefault("DATABASE_URL", "")
	dbDriver := GetEnvWithDefault("DB_DRIVER", "sqlite")
	if dbURL != "" {
		if _, err := url.ParseRequestURI(dbURL); err != nil {
			return nil, fmt.Errorf("invalid DATABASE_URL format: %w", err)
		}
		// A URL always means postgres
		dbDriver = "postgres"
	}

	config := &Config{
		Env:         GetEnvWithDefault("APP_ENV", "development"),
		Port:        port,
		Host:        GetEnvWithDefault("APP_HOST", "localhost"),
		DatabaseURL: dbURL,
		DBDriver:    dbDriver,
		DBHost:      GetEnvWithDefault("DB_HOST", "localhost"),
		DBPort:      GetEnvWithDefault("DB_PORT", "5432"),
		DBName:      GetEnvWithDefault("DB_NAME", "foodgram"),
		DBUser:      GetEnvWithDefault("DB_USER", "foodgram"),
		DBPassword:  GetEnvWithDefault("DB_PASSWORD", "foodgram"),
		DBSSLMode:   GetEnvWithDefault("DB_SSLMODE", "disable"),
		DBPath:      GetEnvWithDefault("DB_PATH", "foodgram.sqlite"),
		LogLevel:    GetEnvWithDefault("LOG_LEVEL", "info"),

		JWTSecret:     GetEnvWithDefault("JWT_SECRET", "secret"),
		TokenTTL:      time.Duration(GetEnvAsType("TOKEN_TTL_HOURS", 24)) * time.Hour,
		OAuthClientID: GetEnvWithDefault("OAUTH_CLIENT_ID", "foodgram-web"),

		PageSize:           GetEnvAsType("PAGE_SIZE", 6),
		RecipeCreateLimit:  GetEnvAsType("RECIPE_CREATE_LIMIT", 30),
		CORSAllowedOrigins: splitList(GetEnvWithDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
		ShoppingListFont:   GetEnvWithDefault("SHOPPING_LIST_FONT", ""),

		RedisURL: GetEnvWithDefault("REDIS_URL", ""),

		StorageDriver:     GetEnvWithDefault("STORAGE_DRIVER", "local"),
		MediaRoot:         GetEnvWithDefault("MEDIA_ROOT", "media"),
		MediaURL:          GetEnvWithDefault("MEDIA_URL", fmt.Sprintf("http://localhost:%d/media", port)),
		S3Bucket:          GetEnvWithDefault("S3_BUCKET", ""),
		S3Region:          GetEnvWithDefault("S3_REGION", "us-east-1"),
		S3Endpoint:        GetEnvWithDefault("S3_ENDPOINT", ""),
		S3AccessKeyID:     GetEnvWithDefault("S3_ACCESS_KEY_ID", ""),
		S3SecretAccessKey: GetEnvWithDefault("S3_SECRET_ACCESS_KEY", ""),
		S3PublicURL:       GetEnvWithDefault("S3_PUBLIC_URL", ""),
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	log.Infof("Configuration loaded: %s", config.String())
	return config, nil
}

func (c *Config) validate() error {
	if c.TokenTTL <= 0 {
		return errors.New("TOKEN_TTL_HOURS must be positive")
	}
	if c.PageSize < 1 || c.PageSize > 100 {
		return fmt.Errorf("PAGE_SIZE must be between 1 and 100, got %d", c.PageSize)
	}
	if c.RecipeCreateLimit < 1 {
		return fmt.Errorf("RECIPE_CREATE_LIMIT must be positive, got %d", c.RecipeCreateLimit)
	}
	if c.RedisURL != "" {
		if _, err := url.Parse(c.RedisURL); err != nil {
			return fmt.Errorf("invalid REDIS_URL: %w", err)
		}
	}
	switch c.StorageDriver {
	case "local":
	case "s3":
		if c.S3Bucket == "" {
			return errors.New("S3_BUCKET is required when STORAGE_DRIVER is s3")
		}
	default:
		return fmt.Errorf("unsupported STORAGE_DRIVER %q", c.StorageDriver)
	}
	return nil
}

func splitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

// Helper to get environment with default values
func GetEnvWithDefault(key, defaultValue string) string {
	log.Tracef("Getting environment variable: %s", key)
	value := os.Getenv(key)
	if value == "" {
		log.Debugf("Environment variable %s not set, using default value", key)
		return defaultValue
	}
	return value
}

// GetEnvAsType retrieves an environment variable and converts it to the specified type
// using generic type handling.
func GetEnvAsType[T any](key string, defaultValue T) T {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var result T
	switch any(result).(type) {
	case int:
		intValue, err := strconv.Atoi(value)
		if err != nil {
			return defaultValue
		}
		return any(intValue).(T)
	case string:
		return any(value).(T)
	case bool:
		boolValue, err := strconv.ParseBool(value)
		if err != nil {
			return defaultValue
		}
		return any(boolValue).(T)
	default:
		return defaultValue // Fallback for unsupported types
	}
}

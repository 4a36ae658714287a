package database

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var log = logrus.New()

func init() {
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.InfoLevel)
}

// InitDatabase initializes the database connection based on the provided configuration
// It supports both PostgreSQL and SQLite drivers with automatic retry logic and connection pooling
func InitDatabase(cfg DatabaseConfig) (*gorm.DB, error) {
	return InitDatabaseWithRetry(cfg, []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second, 8 * time.Second})
}

// InitDatabaseWithRetry connects like InitDatabase, sleeping retryDelays[i] after failed attempt i+1.
// Unique and foreign key violations are translated to gorm.ErrDuplicatedKey and gorm.ErrForeignKeyViolated.
func InitDatabaseWithRetry(cfg DatabaseConfig, retryDelays []time.Duration) (*gorm.DB, error) {
	driver := strings.ToLower(cfg.Driver)
	if _, err := dialectorFor(driver, ""); err != nil {
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"db_driver": driver,
		"db_host":   cfg.Host,
		"db_name":   cfg.Name,
		"db_path":   cfg.Path,
	}).Info("Initializing database connection")

	attempts := len(retryDelays) + 1
	for attempt := 1; ; attempt++ {
		db, err := open(driver, cfg.DSN())
		if err == nil {
			log.WithFields(logrus.Fields{
				"db_driver": driver,
				"attempt":   attempt,
			}).Info("Database initialized successfully")
			return db, nil
		}

		log.WithFields(logrus.Fields{
			"attempt":     attempt,
			"max_retries": attempts,
			"error":       err.Error(),
		}).Warn("Database connection attempt failed")

		if attempt == attempts {
			return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", attempts, err)
		}
		delay := retryDelays[attempt-1]
		log.WithField("delay", delay).Info("Retrying database connection")
		time.Sleep(delay)
	}
}

func dialectorFor(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case "postgres", "postgresql":
		return postgres.Open(dsn), nil
	case "sqlite", "":
		return sqlite.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s (supported: postgres, sqlite)", driver)
	}
}

// open connects once, pings and tunes the pool
func open(driver, dsn string) (*gorm.DB, error) {
	dialector, err := dialectorFor(driver, dsn)
	if err != nil {
		return nil, err
	}
	db, err := gorm.Open(dialector, &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	configureConnectionPool(sqlDB, driver)
	return db, nil
}

// configureConnectionPool sets up connection pool parameters.
// SQLite gets one long-lived connection so in-memory databases survive and writes serialize.
func configureConnectionPool(sqlDB *sql.DB, driver string) {
	maxOpen := 25
	lifetime := 5 * time.Minute
	if driver == "sqlite" || driver == "" {
		maxOpen = 1
		lifetime = 0
	}

	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(lifetime)

	log.WithFields(logrus.Fields{
		"max_open_conns":    maxOpen,
		"max_idle_conns":    5,
		"conn_max_lifetime": lifetime.String(),
	}).Debug("Connection pool configured")
}

// Package storage keeps recipe images on local disk or in an S3 compatible bucket.
package storage

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var log = logrus.New()

func init() {
	log.SetFormatter(&logrus.JSONFormatter{})
}

// Store persists image objects under a key and serves them from a public URL
type Store interface {
	// Save writes data under key and returns the URL clients fetch it from
	Save(ctx context.Context, key string, data []byte, contentType string) (string, error)
	// Delete removes the object; deleting a missing key is not an error
	Delete(ctx context.Context, key string) error
}

// Config selects and configures the backing store
type Config struct {
	Driver string // local or s3

	MediaRoot string
	MediaURL  string

	S3Bucket          string
	S3Region          string
	S3Endpoint        string
	S3AccessKeyID     string
	S3SecretAccessKey string
	S3PublicURL       string
}

// New builds the store named by cfg.Driver
func New(ctx context.Context, cfg Config) (Store, error) {
	switch strings.ToLower(cfg.Driver) {
	case "local", "":
		log.WithField("media_root", cfg.MediaRoot).Info("Using local image storage")
		return NewLocalStore(cfg.MediaRoot, cfg.MediaURL)
	case "s3":
		log.WithFields(logrus.Fields{
			"bucket":   cfg.S3Bucket,
			"endpoint": cfg.S3Endpoint,
		}).Info("Using S3 image storage")
		return NewS3Store(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported storage driver: %s (supported: local, s3)", cfg.Driver)
	}
}

// NewKey returns a fresh object key under prefix, e.g. recipes/<uuid>.png
func NewKey(prefix, extension string) string {
	return path.Join(prefix, uuid.NewString()+extension)
}

// Package storage provides the public object stores that hold avatars and
// gallery uploads.
package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/atinyakov/TwoHearts/internal/config"
)

// Store puts objects under a key and exposes them through a public URL.
type Store interface {
	Put(ctx context.Context, key, contentType string, body io.Reader) error
	URL(key string) (string, error)
}

// New builds the Store selected by opts.StorageDriver. It returns nil and no
// error when uploads are disabled.
func New(ctx context.Context, opts *config.Options) (Store, error) {
	switch strings.ToLower(opts.StorageDriver) {
	case "":
		return nil, nil
	case config.StorageS3:
		return NewS3Store(ctx, S3Config{
			Endpoint:  opts.S3Endpoint,
			Region:    opts.S3Region,
			Bucket:    opts.S3Bucket,
			AccessKey: opts.S3AccessKey,
			SecretKey: opts.S3SecretKey,
			PublicURL: opts.S3PublicURL,
		})
	case config.StorageCloudinary:
		return NewCloudinaryStore(opts.CloudinaryName, opts.CloudinaryAPIKey, opts.CloudinaryAPISecret, opts.CloudinaryFolder)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", opts.StorageDriver)
	}
}

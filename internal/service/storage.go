package service

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/atinyakov/TwoHearts/internal/common"
	"github.com/google/uuid"
)

// ObjectStore is the public object storage used for avatars and gallery
// uploads.
type ObjectStore interface {
	// Put stores body under key.
	Put(ctx context.Context, key, contentType string, body io.Reader) error
	// URL returns the public URL of key.
	URL(key string) (string, error)
}

// Upload is a file received from a client.
type Upload struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

var imageExtensions = map[string]bool{
	"jpg": true, "jpeg": true, "png": true, "gif": true, "webp": true, "heic": true,
}

// objectKey builds area/<userID>/<random>.<ext>, keeping the uploaded
// file's extension.
func objectKey(area, userID, filename string) (string, error) {
	ext := strings.TrimPrefix(strings.ToLower(path.Ext(filename)), ".")
	if !imageExtensions[ext] {
		return "", fmt.Errorf("%w: unsupported image type %q", common.ErrValidation, ext)
	}
	return fmt.Sprintf("%s/%s/%s.%s", area, userID, uuid.NewString(), ext), nil
}

// putPublic stores up under area and returns its public URL.
func putPublic(ctx context.Context, store ObjectStore, area, userID string, up Upload) (string, error) {
	if store == nil {
		return "", common.ErrStorageDisabled
	}
	key, err := objectKey(area, userID, up.Filename)
	if err != nil {
		return "", err
	}
	if err := store.Put(ctx, key, up.ContentType, up.Body); err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}
	return store.URL(key)
}

package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// CloudinaryStore keeps images in a Cloudinary folder. Object keys become
// public IDs without their extension.
type CloudinaryStore struct {
	cld    *cloudinary.Cloudinary
	folder string
}

// NewCloudinaryStore connects to the given cloud.
func NewCloudinaryStore(cloudName, apiKey, apiSecret, folder string) (*CloudinaryStore, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Cloudinary: %w", err)
	}
	cld.Config.URL.Secure = true
	// Stored URLs must not carry the SDK's analytics query.
	cld.Config.URL.Analytics = false
	return &CloudinaryStore{cld: cld, folder: strings.Trim(folder, "/")}, nil
}

func (s *CloudinaryStore) publicID(key string) string {
	id := strings.TrimSuffix(key, path.Ext(key))
	if s.folder == "" {
		return id
	}
	return s.folder + "/" + id
}

// Put uploads body as an image under the key's public ID.
func (s *CloudinaryStore) Put(ctx context.Context, key, contentType string, body io.Reader) error {
	res, err := s.cld.Upload.Upload(ctx, body, uploader.UploadParams{
		PublicID:     s.publicID(key),
		ResourceType: "image",
		Overwrite:    api.Bool(true),
	})
	if err != nil {
		return fmt.Errorf("failed to upload to Cloudinary: %w", err)
	}
	if res.Error.Message != "" {
		return fmt.Errorf("failed to upload to Cloudinary: %s", res.Error.Message)
	}
	return nil
}

// URL returns the secure delivery URL of key.
func (s *CloudinaryStore) URL(key string) (string, error) {
	img, err := s.cld.Image(s.publicID(key))
	if err != nil {
		return "", fmt.Errorf("cloudinary asset: %w", err)
	}
	return img.String()
}

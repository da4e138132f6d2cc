package service

import (
	"context"
	"strings"

	"github.com/atinyakov/TwoHearts/internal/models"
)

// ProfileService reads and edits the caller's public profile.
type ProfileService struct {
	repo  UserRepository
	store ObjectStore
}

// NewProfileService constructs a ProfileService. store may be nil.
func NewProfileService(repo UserRepository, store ObjectStore) *ProfileService {
	return &ProfileService{repo: repo, store: store}
}

// Get returns the caller's identity.
func (s *ProfileService) Get(ctx context.Context, userID string) (*models.Identity, error) {
	u, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	id := u.Identity()
	return &id, nil
}

// Update sets the display name and avatar URL.
func (s *ProfileService) Update(ctx context.Context, userID, name, avatarURL string) (*models.Identity, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalid("name is required")
	}
	u, err := s.repo.UpdateProfile(ctx, userID, name, strings.TrimSpace(avatarURL))
	if err != nil {
		return nil, err
	}
	id := u.Identity()
	return &id, nil
}

// UploadAvatar stores the image under avatars/<userID>/ and points the
// profile at its public URL.
func (s *ProfileService) UploadAvatar(ctx context.Context, userID string, up Upload) (*models.Identity, error) {
	url, err := putPublic(ctx, s.store, "avatars", userID, up)
	if err != nil {
		return nil, err
	}
	u, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	u, err = s.repo.UpdateProfile(ctx, userID, u.Name, url)
	if err != nil {
		return nil, err
	}
	id := u.Identity()
	return &id, nil
}

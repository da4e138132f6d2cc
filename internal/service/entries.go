package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/atinyakov/TwoHearts/internal/common"
	"github.com/atinyakov/TwoHearts/internal/models"
)

// EntryRepository defines the persistence of the per-owner entry kinds.
// Every method is scoped by the owner's user id.
type EntryRepository interface {
	ListJournal(ctx context.Context, userID string) ([]models.JournalEntry, error)
	CreateJournal(ctx context.Context, e models.JournalEntry) (*models.JournalEntry, error)
	UpdateJournal(ctx context.Context, userID, id, title, content string) (*models.JournalEntry, error)
	DeleteJournal(ctx context.Context, userID, id string) error

	ListMoods(ctx context.Context, userID string) ([]models.MoodEntry, error)
	CreateMood(ctx context.Context, e models.MoodEntry) (*models.MoodEntry, error)

	ListGoals(ctx context.Context, userID string) ([]models.GoalEntry, error)
	CreateGoal(ctx context.Context, e models.GoalEntry) (*models.GoalEntry, error)
	ToggleGoal(ctx context.Context, userID, id string) (*models.GoalEntry, error)
	DeleteGoal(ctx context.Context, userID, id string) error

	ListGratitude(ctx context.Context, userID string) ([]models.GratitudeEntry, error)
	CreateGratitude(ctx context.Context, e models.GratitudeEntry) (*models.GratitudeEntry, error)

	ListGallery(ctx context.Context, userID string) ([]models.GalleryImage, error)
	CreateGalleryImage(ctx context.Context, img models.GalleryImage) (*models.GalleryImage, error)
}

// EntryService validates and stores journal, mood, goal, gratitude and
// gallery entries.
type EntryService struct {
	repo  EntryRepository
	store ObjectStore
}

// NewEntryService constructs an EntryService. store may be nil, in which
// case gallery uploads fail with common.ErrStorageDisabled.
func NewEntryService(repo EntryRepository, store ObjectStore) *EntryService {
	return &EntryService{repo: repo, store: store}
}

func invalid(msg string) error {
	return fmt.Errorf("%w: %s", common.ErrValidation, msg)
}

func (s *EntryService) ListJournal(ctx context.Context, userID string) ([]models.JournalEntry, error) {
	return s.repo.ListJournal(ctx, userID)
}

// CreateJournal stores an entry that has a title, content or both.
func (s *EntryService) CreateJournal(ctx context.Context, userID, title, content string) (*models.JournalEntry, error) {
	if strings.TrimSpace(title) == "" && strings.TrimSpace(content) == "" {
		return nil, invalid("title or content is required")
	}
	return s.repo.CreateJournal(ctx, models.JournalEntry{UserID: userID, Title: title, Content: content})
}

// UpdateJournal replaces title and content. Last write wins.
func (s *EntryService) UpdateJournal(ctx context.Context, userID, id, title, content string) (*models.JournalEntry, error) {
	if strings.TrimSpace(title) == "" && strings.TrimSpace(content) == "" {
		return nil, invalid("title or content is required")
	}
	return s.repo.UpdateJournal(ctx, userID, id, title, content)
}

func (s *EntryService) DeleteJournal(ctx context.Context, userID, id string) error {
	return s.repo.DeleteJournal(ctx, userID, id)
}

func (s *EntryService) ListMoods(ctx context.Context, userID string) ([]models.MoodEntry, error) {
	return s.repo.ListMoods(ctx, userID)
}

// CreateMood appends a rating between models.MinMood and models.MaxMood.
func (s *EntryService) CreateMood(ctx context.Context, userID string, rating int, note string) (*models.MoodEntry, error) {
	if rating < models.MinMood || rating > models.MaxMood {
		return nil, invalid(fmt.Sprintf("rating must be between %d and %d", models.MinMood, models.MaxMood))
	}
	return s.repo.CreateMood(ctx, models.MoodEntry{UserID: userID, Rating: rating, Note: note})
}

func (s *EntryService) ListGoals(ctx context.Context, userID string) ([]models.GoalEntry, error) {
	return s.repo.ListGoals(ctx, userID)
}

// CreateGoal stores an uncompleted goal. An empty category means personal.
func (s *EntryService) CreateGoal(ctx context.Context, userID, text string, category models.GoalCategory) (*models.GoalEntry, error) {
	if strings.TrimSpace(text) == "" {
		return nil, invalid("goal text is required")
	}
	if category == "" {
		category = models.GoalPersonal
	}
	if !category.Valid() {
		return nil, invalid(fmt.Sprintf("unknown goal category %q", category))
	}
	return s.repo.CreateGoal(ctx, models.GoalEntry{UserID: userID, Text: text, Category: category})
}

// ToggleGoal flips completion on the server and returns the stored row.
func (s *EntryService) ToggleGoal(ctx context.Context, userID, id string) (*models.GoalEntry, error) {
	return s.repo.ToggleGoal(ctx, userID, id)
}

func (s *EntryService) DeleteGoal(ctx context.Context, userID, id string) error {
	return s.repo.DeleteGoal(ctx, userID, id)
}

func (s *EntryService) ListGratitude(ctx context.Context, userID string) ([]models.GratitudeEntry, error) {
	return s.repo.ListGratitude(ctx, userID)
}

func (s *EntryService) CreateGratitude(ctx context.Context, userID, text string) (*models.GratitudeEntry, error) {
	if strings.TrimSpace(text) == "" {
		return nil, invalid("gratitude text is required")
	}
	return s.repo.CreateGratitude(ctx, models.GratitudeEntry{UserID: userID, Text: text})
}

func (s *EntryService) ListGallery(ctx context.Context, userID string) ([]models.GalleryImage, error) {
	return s.repo.ListGallery(ctx, userID)
}

// CreateGalleryImage records an image that is already hosted at url.
func (s *EntryService) CreateGalleryImage(ctx context.Context, userID, title, url string) (*models.GalleryImage, error) {
	if strings.TrimSpace(title) == "" || strings.TrimSpace(url) == "" {
		return nil, invalid("title and url are required")
	}
	return s.repo.CreateGalleryImage(ctx, models.GalleryImage{UserID: userID, Title: title, URL: url})
}

// UploadGalleryImage stores the file under gallery/<userID>/ and records it.
func (s *EntryService) UploadGalleryImage(ctx context.Context, userID, title string, up Upload) (*models.GalleryImage, error) {
	if strings.TrimSpace(title) == "" {
		return nil, invalid("title is required")
	}
	url, err := putPublic(ctx, s.store, "gallery", userID, up)
	if err != nil {
		return nil, err
	}
	return s.repo.CreateGalleryImage(ctx, models.GalleryImage{UserID: userID, Title: title, URL: url})
}

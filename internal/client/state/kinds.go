package state

import (
	"context"
	"io"

	"github.com/atinyakov/TwoHearts/internal/models"
	"go.uber.org/zap"
)

// JournalAPI is the journal part of the API client.
type JournalAPI interface {
	ListJournal(ctx context.Context) ([]models.JournalEntry, error)
	CreateJournal(ctx context.Context, title, content string) (models.JournalEntry, error)
	UpdateJournal(ctx context.Context, id, title, content string) (models.JournalEntry, error)
	DeleteJournal(ctx context.Context, id string) error
}

// Journal holds the journal entries, newest first.
type Journal struct {
	*EntryList[models.JournalEntry]
	api JournalAPI
}

// NewJournal returns an empty journal backed by api.
func NewJournal(api JournalAPI, log *zap.Logger) *Journal {
	return &Journal{EntryList: NewEntryList[models.JournalEntry]("journal", NewestFirst, log), api: api}
}

// Reload fetches id's rows; a nil id clears the list.
func (j *Journal) Reload(ctx context.Context, id *models.Identity) {
	j.Load(ctx, id, j.api.ListJournal)
}

func (j *Journal) Add(ctx context.Context, title, content string) (models.JournalEntry, error) {
	return j.Create(ctx, func(ctx context.Context) (models.JournalEntry, error) {
		return j.api.CreateJournal(ctx, title, content)
	})
}

func (j *Journal) Edit(ctx context.Context, id, title, content string) (models.JournalEntry, error) {
	return j.Update(ctx, id, func(ctx context.Context) (models.JournalEntry, error) {
		return j.api.UpdateJournal(ctx, id, title, content)
	})
}

func (j *Journal) Remove(ctx context.Context, id string) error {
	return j.Delete(ctx, id, func(ctx context.Context) error {
		return j.api.DeleteJournal(ctx, id)
	})
}

// MoodAPI is the mood part of the API client.
type MoodAPI interface {
	ListMoods(ctx context.Context) ([]models.MoodEntry, error)
	CreateMood(ctx context.Context, rating int, note string) (models.MoodEntry, error)
}

// Moods holds the mood history, oldest first so it reads as a timeline.
type Moods struct {
	*EntryList[models.MoodEntry]
	api MoodAPI
}

// NewMoods returns an empty mood history backed by api.
func NewMoods(api MoodAPI, log *zap.Logger) *Moods {
	return &Moods{EntryList: NewEntryList[models.MoodEntry]("moods", OldestFirst, log), api: api}
}

// Reload fetches id's rows; a nil id clears the list.
func (m *Moods) Reload(ctx context.Context, id *models.Identity) {
	m.Load(ctx, id, m.api.ListMoods)
}

func (m *Moods) Add(ctx context.Context, rating int, note string) (models.MoodEntry, error) {
	return m.Create(ctx, func(ctx context.Context) (models.MoodEntry, error) {
		return m.api.CreateMood(ctx, rating, note)
	})
}

// GoalAPI is the goals part of the API client.
type GoalAPI interface {
	ListGoals(ctx context.Context) ([]models.GoalEntry, error)
	CreateGoal(ctx context.Context, text string, category models.GoalCategory) (models.GoalEntry, error)
	ToggleGoal(ctx context.Context, id string) (models.GoalEntry, error)
	DeleteGoal(ctx context.Context, id string) error
}

// Goals holds the goals list, newest first.
type Goals struct {
	*EntryList[models.GoalEntry]
	api GoalAPI
}

// NewGoals returns an empty goals list backed by api.
func NewGoals(api GoalAPI, log *zap.Logger) *Goals {
	return &Goals{EntryList: NewEntryList[models.GoalEntry]("goals", NewestFirst, log), api: api}
}

// Reload fetches id's rows; a nil id clears the list.
func (g *Goals) Reload(ctx context.Context, id *models.Identity) {
	g.Load(ctx, id, g.api.ListGoals)
}

func (g *Goals) Add(ctx context.Context, text string, category models.GoalCategory) (models.GoalEntry, error) {
	return g.Create(ctx, func(ctx context.Context) (models.GoalEntry, error) {
		return g.api.CreateGoal(ctx, text, category)
	})
}

// Toggle flips completion on the server and keeps whatever the server
// stored; the local value is never negated here.
func (g *Goals) Toggle(ctx context.Context, id string) (models.GoalEntry, error) {
	return g.Update(ctx, id, func(ctx context.Context) (models.GoalEntry, error) {
		return g.api.ToggleGoal(ctx, id)
	})
}

func (g *Goals) Remove(ctx context.Context, id string) error {
	return g.Delete(ctx, id, func(ctx context.Context) error {
		return g.api.DeleteGoal(ctx, id)
	})
}

// GratitudeAPI is the gratitude part of the API client.
type GratitudeAPI interface {
	ListGratitude(ctx context.Context) ([]models.GratitudeEntry, error)
	CreateGratitude(ctx context.Context, text string) (models.GratitudeEntry, error)
}

type Gratitude struct {
	*EntryList[models.GratitudeEntry]
	api GratitudeAPI
}

// NewGratitude returns an empty gratitude list backed by api.
func NewGratitude(api GratitudeAPI, log *zap.Logger) *Gratitude {
	return &Gratitude{EntryList: NewEntryList[models.GratitudeEntry]("gratitude", NewestFirst, log), api: api}
}

// Reload fetches id's rows; a nil id clears the list.
func (g *Gratitude) Reload(ctx context.Context, id *models.Identity) {
	g.Load(ctx, id, g.api.ListGratitude)
}

func (g *Gratitude) Add(ctx context.Context, text string) (models.GratitudeEntry, error) {
	return g.Create(ctx, func(ctx context.Context) (models.GratitudeEntry, error) {
		return g.api.CreateGratitude(ctx, text)
	})
}

// GalleryAPI is the gallery part of the API client.
type GalleryAPI interface {
	ListGallery(ctx context.Context) ([]models.GalleryImage, error)
	CreateGalleryImage(ctx context.Context, title, imageURL string) (models.GalleryImage, error)
	UploadGalleryImage(ctx context.Context, title, filename string, r io.Reader) (models.GalleryImage, error)
}

type Gallery struct {
	*EntryList[models.GalleryImage]
	api GalleryAPI
}

// NewGallery returns an empty gallery backed by api.
func NewGallery(api GalleryAPI, log *zap.Logger) *Gallery {
	return &Gallery{EntryList: NewEntryList[models.GalleryImage]("gallery", NewestFirst, log), api: api}
}

// Reload fetches id's rows; a nil id clears the list.
func (g *Gallery) Reload(ctx context.Context, id *models.Identity) {
	g.Load(ctx, id, g.api.ListGallery)
}

// Add records an image that is already hosted at imageURL.
func (g *Gallery) Add(ctx context.Context, title, imageURL string) (models.GalleryImage, error) {
	return g.Create(ctx, func(ctx context.Context) (models.GalleryImage, error) {
		return g.api.CreateGalleryImage(ctx, title, imageURL)
	})
}

// Upload sends a local image to object storage through the server.
func (g *Gallery) Upload(ctx context.Context, title, filename string, r io.Reader) (models.GalleryImage, error) {
	return g.Create(ctx, func(ctx context.Context) (models.GalleryImage, error) {
		return g.api.UploadGalleryImage(ctx, title, filename, r)
	})
}

package state

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/atinyakov/TwoHearts/internal/common"
	"github.com/atinyakov/TwoHearts/internal/models"
)

// fakeServer stores rows for several users; fakeAPI is one user's view of
// it, the way an api.Client carries one user's token.
type fakeServer struct {
	mu      sync.Mutex
	seq     int
	now     time.Time
	emails  map[string]string
	names   map[string]string
	journal []models.JournalEntry
	moods   []models.MoodEntry
	goals   []models.GoalEntry
	grat    []models.GratitudeEntry
	gallery []models.GalleryImage
	conns   []models.PartnerConnection
	notes   []models.LoveNote
}

func newFakeServer() *fakeServer {
	return &fakeServer{
		now:    time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		emails: map[string]string{},
		names:  map[string]string{},
	}
}

func (s *fakeServer) addUser(id, email, name string) *models.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.emails[email] = id
	s.names[id] = name
	return &models.Identity{ID: id, Email: email, Name: name}
}

func (s *fakeServer) next() (string, time.Time) {
	s.seq++
	s.now = s.now.Add(time.Minute)
	return fmt.Sprintf("id-%d", s.seq), s.now
}

type fakeAPI struct {
	srv  *fakeServer
	user string

	// failure injection
	listErr  error
	toggleAs *bool
}

func (f *fakeAPI) ListJournal(context.Context) ([]models.JournalEntry, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	f.srv.mu.Lock()
	defer f.srv.mu.Unlock()
	out := []models.JournalEntry{}
	for i := len(f.srv.journal) - 1; i >= 0; i-- {
		if f.srv.journal[i].UserID == f.user {
			out = append(out, f.srv.journal[i])
		}
	}
	return out, nil
}

func (f *fakeAPI) CreateJournal(_ context.Context, title, content string) (models.JournalEntry, error) {
	f.srv.mu.Lock()
	defer f.srv.mu.Unlock()
	id, at := f.srv.next()
	e := models.JournalEntry{ID: id, UserID: f.user, Title: title, Content: content, CreatedAt: at}
	f.srv.journal = append(f.srv.journal, e)
	return e, nil
}

func (f *fakeAPI) UpdateJournal(_ context.Context, id, title, content string) (models.JournalEntry, error) {
	f.srv.mu.Lock()
	defer f.srv.mu.Unlock()
	for i, e := range f.srv.journal {
		if e.ID == id && e.UserID == f.user {
			f.srv.journal[i].Title, f.srv.journal[i].Content = title, content
			return f.srv.journal[i], nil
		}
	}
	return models.JournalEntry{}, common.ErrNotFound
}

func (f *fakeAPI) DeleteJournal(_ context.Context, id string) error {
	f.srv.mu.Lock()
	defer f.srv.mu.Unlock()
	for i, e := range f.srv.journal {
		if e.ID == id && e.UserID == f.user {
			f.srv.journal = append(f.srv.journal[:i], f.srv.journal[i+1:]...)
			return nil
		}
	}
	return common.ErrNotFound
}

func (f *fakeAPI) ListMoods(context.Context) ([]models.MoodEntry, error) {
	f.srv.mu.Lock()
	defer f.srv.mu.Unlock()
	out := []models.MoodEntry{}
	for _, e := range f.srv.moods {
		if e.UserID == f.user {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeAPI) CreateMood(_ context.Context, rating int, note string) (models.MoodEntry, error) {
	if rating < models.MinMood || rating > models.MaxMood {
		return models.MoodEntry{}, common.ErrValidation
	}
	f.srv.mu.Lock()
	defer f.srv.mu.Unlock()
	id, at := f.srv.next()
	e := models.MoodEntry{ID: id, UserID: f.user, Rating: rating, Note: note, CreatedAt: at}
	f.srv.moods = append(f.srv.moods, e)
	return e, nil
}

func (f *fakeAPI) ListGoals(context.Context) ([]models.GoalEntry, error) {
	f.srv.mu.Lock()
	defer f.srv.mu.Unlock()
	out := []models.GoalEntry{}
	for i := len(f.srv.goals) - 1; i >= 0; i-- {
		if f.srv.goals[i].UserID == f.user {
			out = append(out, f.srv.goals[i])
		}
	}
	return out, nil
}

func (f *fakeAPI) CreateGoal(_ context.Context, text string, category models.GoalCategory) (models.GoalEntry, error) {
	f.srv.mu.Lock()
	defer f.srv.mu.Unlock()
	id, at := f.srv.next()
	e := models.GoalEntry{ID: id, UserID: f.user, Text: text, Category: category, CreatedAt: at}
	f.srv.goals = append(f.srv.goals, e)
	return e, nil
}

func (f *fakeAPI) ToggleGoal(_ context.Context, id string) (models.GoalEntry, error) {
	f.srv.mu.Lock()
	defer f.srv.mu.Unlock()
	for i, e := range f.srv.goals {
		if e.ID == id && e.UserID == f.user {
			f.srv.goals[i].Completed = !e.Completed
			if f.toggleAs != nil {
				f.srv.goals[i].Completed = *f.toggleAs
			}
			return f.srv.goals[i], nil
		}
	}
	return models.GoalEntry{}, common.ErrNotFound
}

func (f *fakeAPI) DeleteGoal(_ context.Context, id string) error {
	f.srv.mu.Lock()
	defer f.srv.mu.Unlock()
	for i, e := range f.srv.goals {
		if e.ID == id && e.UserID == f.user {
			f.srv.goals = append(f.srv.goals[:i], f.srv.goals[i+1:]...)
			return nil
		}
	}
	return common.ErrNotFound
}

func (f *fakeAPI) ListGratitude(context.Context) ([]models.GratitudeEntry, error) {
	f.srv.mu.Lock()
	defer f.srv.mu.Unlock()
	out := []models.GratitudeEntry{}
	for i := len(f.srv.grat) - 1; i >= 0; i-- {
		if f.srv.grat[i].UserID == f.user {
			out = append(out, f.srv.grat[i])
		}
	}
	return out, nil
}

func (f *fakeAPI) CreateGratitude(_ context.Context, text string) (models.GratitudeEntry, error) {
	f.srv.mu.Lock()
	defer f.srv.mu.Unlock()
	id, at := f.srv.next()
	e := models.GratitudeEntry{ID: id, UserID: f.user, Text: text, CreatedAt: at}
	f.srv.grat = append(f.srv.grat, e)
	return e, nil
}

func (f *fakeAPI) ListGallery(context.Context) ([]models.GalleryImage, error) {
	f.srv.mu.Lock()
	defer f.srv.mu.Unlock()
	out := []models.GalleryImage{}
	for i := len(f.srv.gallery) - 1; i >= 0; i-- {
		if f.srv.gallery[i].UserID == f.user {
			out = append(out, f.srv.gallery[i])
		}
	}
	return out, nil
}

func (f *fakeAPI) CreateGalleryImage(_ context.Context, title, imageURL string) (models.GalleryImage, error) {
	f.srv.mu.Lock()
	defer f.srv.mu.Unlock()
	id, at := f.srv.next()
	e := models.GalleryImage{ID: id, UserID: f.user, Title: title, URL: imageURL, CreatedAt: at}
	f.srv.gallery = append(f.srv.gallery, e)
	return e, nil
}

func (f *fakeAPI) UploadGalleryImage(ctx context.Context, title, filename string, r io.Reader) (models.GalleryImage, error) {
	if _, err := io.ReadAll(r); err != nil {
		return models.GalleryImage{}, err
	}
	return f.CreateGalleryImage(ctx, title, "https://cdn.example.com/"+filename)
}

func (f *fakeAPI) linkFor(c models.PartnerConnection) *models.PartnerLink {
	other := c.Other(f.user)
	return &models.PartnerLink{Connection: c, Partner: &models.Identity{ID: other, Name: f.srv.names[other]}}
}

func (f *fakeAPI) GetPartner(context.Context) (*models.PartnerLink, error) {
	f.srv.mu.Lock()
	defer f.srv.mu.Unlock()
	for _, c := range f.srv.conns {
		if c.Involves(f.user) {
			return f.linkFor(c), nil
		}
	}
	return nil, nil
}

func (f *fakeAPI) ConnectPartner(_ context.Context, email string) (*models.PartnerLink, error) {
	f.srv.mu.Lock()
	defer f.srv.mu.Unlock()
	other, ok := f.srv.emails[email]
	if !ok {
		return nil, common.ErrNotFound
	}
	for _, c := range f.srv.conns {
		if c.Involves(f.user) && c.Involves(other) {
			return nil, common.ErrAlreadyExists
		}
	}
	id, at := f.srv.next()
	c := models.PartnerConnection{ID: id, RequesterID: f.user, PartnerID: other, Status: models.StatusPending, CreatedAt: at}
	f.srv.conns = append(f.srv.conns, c)
	return f.linkFor(c), nil
}

func (f *fakeAPI) AcceptPartner(context.Context) (*models.PartnerLink, error) {
	f.srv.mu.Lock()
	defer f.srv.mu.Unlock()
	for i, c := range f.srv.conns {
		if c.PartnerID == f.user && c.Status == models.StatusPending {
			f.srv.conns[i].Status = models.StatusAccepted
			return f.linkFor(f.srv.conns[i]), nil
		}
	}
	return nil, common.ErrNotFound
}

func (f *fakeAPI) SendLoveNote(_ context.Context, content string) (*models.LoveNote, error) {
	f.srv.mu.Lock()
	defer f.srv.mu.Unlock()
	for _, c := range f.srv.conns {
		if c.Involves(f.user) && c.Status == models.StatusAccepted {
			id, at := f.srv.next()
			n := models.LoveNote{ID: id, SenderID: f.user, ReceiverID: c.Other(f.user), Content: content, CreatedAt: at}
			f.srv.notes = append(f.srv.notes, n)
			return &n, nil
		}
	}
	return nil, common.ErrInvalidState
}

package state

import (
	"context"
	"sync"

	"github.com/atinyakov/TwoHearts/internal/models"
	"go.uber.org/zap"
)

// Backend is everything the workspace needs from the API client.
type Backend interface {
	JournalAPI
	MoodAPI
	GoalAPI
	GratitudeAPI
	GalleryAPI
	PartnerAPI
}

// IdentitySource reports identity changes, nil meaning signed out.
type IdentitySource interface {
	OnChange(fn func(id *models.Identity))
	CurrentIdentity() *models.Identity
}

// Workspace bundles the per-identity holders. It is created once per
// client run and reloaded on every identity change.
type Workspace struct {
	Journal   *Journal
	Moods     *Moods
	Goals     *Goals
	Gratitude *Gratitude
	Gallery   *Gallery
	Partner   *Partner
}

// NewWorkspace returns a workspace with every holder empty.
func NewWorkspace(b Backend, log *zap.Logger) *Workspace {
	return &Workspace{
		Journal:   NewJournal(b, log),
		Moods:     NewMoods(b, log),
		Goals:     NewGoals(b, log),
		Gratitude: NewGratitude(b, log),
		Gallery:   NewGallery(b, log),
		Partner:   NewPartner(b, log),
	}
}

// Load reloads every holder for identity in parallel and waits for all of
// them. A nil identity empties everything.
func (w *Workspace) Load(ctx context.Context, identity *models.Identity) {
	reloaders := []func(context.Context, *models.Identity){
		w.Journal.Reload,
		w.Moods.Reload,
		w.Goals.Reload,
		w.Gratitude.Reload,
		w.Gallery.Reload,
		w.Partner.Reload,
	}

	var wg sync.WaitGroup
	for _, reload := range reloaders {
		wg.Add(1)
		go func() {
			defer wg.Done()
			reload(ctx, identity)
		}()
	}
	wg.Wait()
}

// Follow reloads the workspace whenever src changes identity, and once now
// for the identity src already has.
func (w *Workspace) Follow(ctx context.Context, src IdentitySource) {
	src.OnChange(func(id *models.Identity) { w.Load(ctx, id) })
	w.Load(ctx, src.CurrentIdentity())
}

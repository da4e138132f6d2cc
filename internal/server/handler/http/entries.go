package http

import (
	"context"
	"net/http"

	"github.com/atinyakov/TwoHearts/internal/middleware"
	"github.com/atinyakov/TwoHearts/internal/models"
	"github.com/atinyakov/TwoHearts/internal/service"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// EntryService defines the per-owner entry operations used by EntryHandler.
type EntryService interface {
	ListJournal(ctx context.Context, userID string) ([]models.JournalEntry, error)
	CreateJournal(ctx context.Context, userID, title, content string) (*models.JournalEntry, error)
	UpdateJournal(ctx context.Context, userID, id, title, content string) (*models.JournalEntry, error)
	DeleteJournal(ctx context.Context, userID, id string) error

	ListMoods(ctx context.Context, userID string) ([]models.MoodEntry, error)
	CreateMood(ctx context.Context, userID string, rating int, note string) (*models.MoodEntry, error)

	ListGoals(ctx context.Context, userID string) ([]models.GoalEntry, error)
	CreateGoal(ctx context.Context, userID, text string, category models.GoalCategory) (*models.GoalEntry, error)
	ToggleGoal(ctx context.Context, userID, id string) (*models.GoalEntry, error)
	DeleteGoal(ctx context.Context, userID, id string) error

	ListGratitude(ctx context.Context, userID string) ([]models.GratitudeEntry, error)
	CreateGratitude(ctx context.Context, userID, text string) (*models.GratitudeEntry, error)

	ListGallery(ctx context.Context, userID string) ([]models.GalleryImage, error)
	CreateGalleryImage(ctx context.Context, userID, title, url string) (*models.GalleryImage, error)
	UploadGalleryImage(ctx context.Context, userID, title string, up service.Upload) (*models.GalleryImage, error)
}

// EntryHandler serves the journal, moods, goals, gratitude and gallery lists.
type EntryHandler struct {
	Entries EntryService
	Log     *zap.Logger
}

// JournalRequest is the body of journal create and update.
type JournalRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// MoodRequest is the body of POST /api/moods.
type MoodRequest struct {
	Rating *int   `json:"rating"`
	Note   string `json:"note"`
}

// GoalRequest is the body of POST /api/goals.
type GoalRequest struct {
	Text     string              `json:"text"`
	Category models.GoalCategory `json:"category"`
}

// GratitudeRequest is the body of POST /api/gratitude.
type GratitudeRequest struct {
	Text string `json:"text"`
}

// GalleryRequest is the body of POST /api/gallery.
type GalleryRequest struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// respond writes v with status, or the mapped error.
func (h *EntryHandler) respond(w http.ResponseWriter, r *http.Request, status int, v any, err error) {
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, status, v)
}

func userID(r *http.Request) string {
	return middleware.GetUserIDFromContext(r.Context())
}

func (h *EntryHandler) ListJournal(w http.ResponseWriter, r *http.Request) {
	list, err := h.Entries.ListJournal(r.Context(), userID(r))
	h.respond(w, r, http.StatusOK, list, err)
}

func (h *EntryHandler) CreateJournal(w http.ResponseWriter, r *http.Request) {
	var req JournalRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	e, err := h.Entries.CreateJournal(r.Context(), userID(r), req.Title, req.Content)
	h.respond(w, r, http.StatusCreated, e, err)
}

func (h *EntryHandler) UpdateJournal(w http.ResponseWriter, r *http.Request) {
	var req JournalRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	e, err := h.Entries.UpdateJournal(r.Context(), userID(r), chi.URLParam(r, "id"), req.Title, req.Content)
	h.respond(w, r, http.StatusOK, e, err)
}

func (h *EntryHandler) DeleteJournal(w http.ResponseWriter, r *http.Request) {
	if err := h.Entries.DeleteJournal(r.Context(), userID(r), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *EntryHandler) ListMoods(w http.ResponseWriter, r *http.Request) {
	list, err := h.Entries.ListMoods(r.Context(), userID(r))
	h.respond(w, r, http.StatusOK, list, err)
}

func (h *EntryHandler) CreateMood(w http.ResponseWriter, r *http.Request) {
	var req MoodRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Rating == nil {
		writeErrorMessage(w, http.StatusBadRequest, "rating is required")
		return
	}
	e, err := h.Entries.CreateMood(r.Context(), userID(r), *req.Rating, req.Note)
	h.respond(w, r, http.StatusCreated, e, err)
}

func (h *EntryHandler) ListGoals(w http.ResponseWriter, r *http.Request) {
	list, err := h.Entries.ListGoals(r.Context(), userID(r))
	h.respond(w, r, http.StatusOK, list, err)
}

func (h *EntryHandler) CreateGoal(w http.ResponseWriter, r *http.Request) {
	var req GoalRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	e, err := h.Entries.CreateGoal(r.Context(), userID(r), req.Text, req.Category)
	h.respond(w, r, http.StatusCreated, e, err)
}

func (h *EntryHandler) ToggleGoal(w http.ResponseWriter, r *http.Request) {
	e, err := h.Entries.ToggleGoal(r.Context(), userID(r), chi.URLParam(r, "id"))
	h.respond(w, r, http.StatusOK, e, err)
}

func (h *EntryHandler) DeleteGoal(w http.ResponseWriter, r *http.Request) {
	if err := h.Entries.DeleteGoal(r.Context(), userID(r), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *EntryHandler) ListGratitude(w http.ResponseWriter, r *http.Request) {
	list, err := h.Entries.ListGratitude(r.Context(), userID(r))
	h.respond(w, r, http.StatusOK, list, err)
}

func (h *EntryHandler) CreateGratitude(w http.ResponseWriter, r *http.Request) {
	var req GratitudeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	e, err := h.Entries.CreateGratitude(r.Context(), userID(r), req.Text)
	h.respond(w, r, http.StatusCreated, e, err)
}

func (h *EntryHandler) ListGallery(w http.ResponseWriter, r *http.Request) {
	list, err := h.Entries.ListGallery(r.Context(), userID(r))
	h.respond(w, r, http.StatusOK, list, err)
}

func (h *EntryHandler) CreateGalleryImage(w http.ResponseWriter, r *http.Request) {
	var req GalleryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	img, err := h.Entries.CreateGalleryImage(r.Context(), userID(r), req.Title, req.URL)
	h.respond(w, r, http.StatusCreated, img, err)
}

// UploadGalleryImage handles POST /api/gallery/upload with multipart fields
// "title" and "file".
func (h *EntryHandler) UploadGalleryImage(w http.ResponseWriter, r *http.Request) {
	up, closeFn, ok := readUpload(w, r)
	if !ok {
		return
	}
	defer closeFn()

	img, err := h.Entries.UploadGalleryImage(r.Context(), userID(r), r.FormValue("title"), up)
	h.respond(w, r, http.StatusCreated, img, err)
}

package http

import (
	"context"
	"net/http"

	"github.com/atinyakov/TwoHearts/internal/middleware"
	"github.com/atinyakov/TwoHearts/internal/models"
	"github.com/atinyakov/TwoHearts/internal/service"
	"go.uber.org/zap"
)

// ProfileService reads and edits the caller's profile.
type ProfileService interface {
	Get(ctx context.Context, userID string) (*models.Identity, error)
	Update(ctx context.Context, userID, name, avatarURL string) (*models.Identity, error)
	UploadAvatar(ctx context.Context, userID string, up service.Upload) (*models.Identity, error)
}

// ProfileHandler serves /api/profile.
type ProfileHandler struct {
	Profiles ProfileService
	Log      *zap.Logger
}

// UpdateProfileRequest is the body of PUT /api/profile.
type UpdateProfileRequest struct {
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url"`
}

func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := h.Profiles.Get(r.Context(), middleware.GetUserIDFromContext(r.Context()))
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, id)
}

func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateProfileRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	id, err := h.Profiles.Update(r.Context(), middleware.GetUserIDFromContext(r.Context()), req.Name, req.AvatarURL)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, id)
}

// UploadAvatar handles POST /api/profile/avatar with a multipart "file" part.
func (h *ProfileHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	up, closeFn, ok := readUpload(w, r)
	if !ok {
		return
	}
	defer closeFn()

	id, err := h.Profiles.UploadAvatar(r.Context(), middleware.GetUserIDFromContext(r.Context()), up)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, id)
}

package http

import (
	"context"
	"net/http"

	"github.com/atinyakov/TwoHearts/internal/models"
	"go.uber.org/zap"
)

// PartnerService drives the partner connection and love notes.
type PartnerService interface {
	Get(ctx context.Context, userID string) (*models.PartnerLink, error)
	Connect(ctx context.Context, userID, email string) (*models.PartnerLink, error)
	Accept(ctx context.Context, userID string) (*models.PartnerLink, error)
	SendLoveNote(ctx context.Context, userID, content string) (*models.LoveNote, error)
}

// PartnerHandler serves /api/partner and /api/love-notes.
type PartnerHandler struct {
	Partners PartnerService
	Log      *zap.Logger
}

// ConnectRequest is the body of POST /api/partner/connect.
type ConnectRequest struct {
	Email string `json:"email"`
}

// LoveNoteRequest is the body of POST /api/love-notes.
type LoveNoteRequest struct {
	Content string `json:"content"`
}

// Get handles GET /api/partner. It answers 204 when the caller has no
// connection.
func (h *PartnerHandler) Get(w http.ResponseWriter, r *http.Request) {
	link, err := h.Partners.Get(r.Context(), userID(r))
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	if link == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, link)
}

func (h *PartnerHandler) Connect(w http.ResponseWriter, r *http.Request) {
	var req ConnectRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	link, err := h.Partners.Connect(r.Context(), userID(r), req.Email)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, link)
}

func (h *PartnerHandler) Accept(w http.ResponseWriter, r *http.Request) {
	link, err := h.Partners.Accept(r.Context(), userID(r))
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, link)
}

func (h *PartnerHandler) SendLoveNote(w http.ResponseWriter, r *http.Request) {
	var req LoveNoteRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	note, err := h.Partners.SendLoveNote(r.Context(), userID(r), req.Content)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, note)
}

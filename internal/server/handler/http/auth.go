// Package http provides the JSON-over-HTTP API of the TwoHearts server:
// authentication, profiles, the per-owner entry lists and the partner link.
package http

import (
	"context"
	"net/http"

	"github.com/atinyakov/TwoHearts/internal/middleware"
	"github.com/atinyakov/TwoHearts/internal/models"
	"go.uber.org/zap"
)

// AuthService defines the authentication operations
// required by the HTTP handlers.
type AuthService interface {
	// Register creates a new identity.
	Register(ctx context.Context, email, password, name string) (*models.Identity, error)
	// Login verifies credentials and returns an access token.
	Login(ctx context.Context, email, password string) (string, *models.Identity, error)
	// Logout revokes the session.
	Logout(ctx context.Context, sessionID string) error
	// Me returns the identity of userID.
	Me(ctx context.Context, userID string) (*models.Identity, error)
}

// AuthHandler handles HTTP requests for registration, login and logout.
type AuthHandler struct {
	// AuthService performs the underlying authentication operations.
	AuthService AuthService
	Log         *zap.Logger
}

// RegisterRequest represents the JSON payload for user registration.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// LoginRequest represents the JSON payload for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is returned by a successful login.
type LoginResponse struct {
	Token    string          `json:"token"`
	Identity models.Identity `json:"identity"`
}

// Register handles POST /api/register and answers 201 with the new identity.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	id, err := h.AuthService.Register(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, id)
}

// Login handles POST /api/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	token, id, err := h.AuthService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, LoginResponse{Token: token, Identity: *id})
}

// Logout handles POST /api/logout by revoking the caller's session.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.AuthService.Logout(r.Context(), middleware.GetSessionIDFromContext(r.Context())); err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Me handles GET /api/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	id, err := h.AuthService.Me(r.Context(), middleware.GetUserIDFromContext(r.Context()))
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, id)
}

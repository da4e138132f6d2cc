package http

import (
	"net/http"
	"time"

	"github.com/atinyakov/TwoHearts/internal/middleware"
	"go.uber.org/zap"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// RouterOptions collects the handlers and middleware dependencies of the API.
type RouterOptions struct {
	Auth    *AuthHandler
	Profile *ProfileHandler
	Entries *EntryHandler
	Partner *PartnerHandler

	// Authenticator verifies bearer tokens on protected routes.
	Authenticator middleware.Authenticator
	// RateLimiter guards register and login; nil disables it.
	RateLimiter *middleware.RateLimiter
	// AllowedOrigins enables CORS for browser clients when non-empty.
	AllowedOrigins []string
	// TrustProxy takes the client address from X-Forwarded-For and
	// X-Real-IP. Only enable it behind a proxy that overwrites them, since
	// the rate limiter keys on that address.
	TrustProxy bool

	Logger *zap.Logger
}

// NewRouter constructs and returns an HTTP handler that serves
// the TwoHearts API.
//
// Routes:
//
//	GET  /health
//	POST /api/register, /api/login        (rate limited)
//	POST /api/logout, GET /api/me         (authenticated)
//	/api/profile, /api/journal, /api/moods, /api/goals,
//	/api/gratitude, /api/gallery, /api/partner, /api/love-notes (authenticated)
//
// Middleware chain (applied in order):
//  1. RequestID and Recoverer from chi, RealIP when TrustProxy is set
//  2. WithRequestLogging(logger)
//  3. CORS for AllowedOrigins
//  4. AllowContentType: JSON, or multipart for uploads
//  5. RequireAuth on the protected group
func NewRouter(opts RouterOptions) http.Handler {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	if opts.TrustProxy {
		r.Use(chiMiddleware.RealIP)
	}
	r.Use(middleware.WithRequestLogging(opts.Logger))
	r.Use(chiMiddleware.Recoverer)

	if len(opts.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   opts.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			ExposedHeaders:   []string{"X-RateLimit-Limit", "X-RateLimit-Remaining"},
			AllowCredentials: false,
			MaxAge:           int((12 * time.Hour).Seconds()),
		}))
	}

	r.Use(chiMiddleware.AllowContentType("application/json", "multipart/form-data"))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		// Public endpoints
		r.Group(func(r chi.Router) {
			if opts.RateLimiter != nil {
				r.Use(opts.RateLimiter.Middleware)
			}
			r.Post("/register", opts.Auth.Register)
			r.Post("/login", opts.Auth.Login)
		})

		// Protected group: requires a valid bearer token
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(opts.Authenticator))

			r.Post("/logout", opts.Auth.Logout)
			r.Get("/me", opts.Auth.Me)

			r.Get("/profile", opts.Profile.Get)
			r.Put("/profile", opts.Profile.Update)
			r.Post("/profile/avatar", opts.Profile.UploadAvatar)

			r.Get("/journal", opts.Entries.ListJournal)
			r.Post("/journal", opts.Entries.CreateJournal)
			r.Put("/journal/{id}", opts.Entries.UpdateJournal)
			r.Delete("/journal/{id}", opts.Entries.DeleteJournal)

			r.Get("/moods", opts.Entries.ListMoods)
			r.Post("/moods", opts.Entries.CreateMood)

			r.Get("/goals", opts.Entries.ListGoals)
			r.Post("/goals", opts.Entries.CreateGoal)
			r.Post("/goals/{id}/toggle", opts.Entries.ToggleGoal)
			r.Delete("/goals/{id}", opts.Entries.DeleteGoal)

			r.Get("/gratitude", opts.Entries.ListGratitude)
			r.Post("/gratitude", opts.Entries.CreateGratitude)

			r.Get("/gallery", opts.Entries.ListGallery)
			r.Post("/gallery", opts.Entries.CreateGalleryImage)
			r.Post("/gallery/upload", opts.Entries.UploadGalleryImage)

			r.Get("/partner", opts.Partner.Get)
			r.Post("/partner/connect", opts.Partner.Connect)
			r.Post("/partner/accept", opts.Partner.Accept)
			r.Post("/love-notes", opts.Partner.SendLoveNote)
		})
	})

	return r
}

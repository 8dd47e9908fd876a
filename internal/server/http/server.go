// Package httpserver exposes the journal's JSON HTTP API.
package httpserver

import (
	"net/http"
	"time"

	"github.com/and161185/vibe-journal/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// Server wires services into HTTP handlers.
type Server struct {
	auth     service.AuthService
	profiles service.ProfileService
	entries  service.EntryService
	log      *zap.Logger
	validate *validator.Validate
	origins  []string
}

// New constructs an HTTP server with injected services. corsOrigins may be
// empty, in which case no CORS headers are sent.
func New(auth service.AuthService, profiles service.ProfileService, entries service.EntryService, log *zap.Logger, corsOrigins []string) *Server {
	return &Server{
		auth:     auth,
		profiles: profiles,
		entries:  entries,
		log:      log,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		origins:  corsOrigins,
	}
}

// Routes builds the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(Recover(s.log))
	r.Use(Logging(s.log))
	if len(s.origins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.origins,
			AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
			MaxAge:         300,
		}))
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/signup", s.signUp)
		r.Post("/auth/signin", s.signIn)

		r.Group(func(r chi.Router) {
			r.Use(RequireAuth(s.auth, s.log))
			r.Post("/auth/signout", s.signOut)
			r.Post("/auth/signout-all", s.signOutAll)
			r.Get("/auth/session", s.currentSession)

			r.Get("/profile", s.getProfile)
			r.Put("/profile", s.putProfile)

			r.Get("/entries", s.listEntries)
			r.Post("/entries", s.createEntry)
			r.Get("/entries/{id}", s.getEntry)
			r.Patch("/entries/{id}", s.updateEntry)
			r.Delete("/entries/{id}", s.deleteEntry)
		})
	})
	return r
}

// HTTPServer wraps Routes in an *http.Server with conservative timeouts.
func (s *Server) HTTPServer(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}
}

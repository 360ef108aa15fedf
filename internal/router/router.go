package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"isl-backend/internal/handlers"
	"isl-backend/internal/middleware"
)

type Handlers struct {
	Auth     *handlers.AuthHandler
	Catalog  *handlers.CatalogHandler
	Quiz     *handlers.QuizHandler
	Progress *handlers.ProgressHandler
	Status   *handlers.StatusHandler
	WS       http.HandlerFunc
}

// New builds the HTTP API. The returned limiter must be stopped on shutdown.
func New(jwtAuth *middleware.JWTAuth, h Handlers, frontendURL string, authRateLimit int) (http.Handler, *middleware.RateLimiter) {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS(frontendURL))

	authLimiter := middleware.NewRateLimiter(authRateLimit, time.Minute)

	r.Get("/", h.Status.Root)
	r.Get("/health", h.Status.Health)

	r.Route("/api/v1", func(r chi.Router) {

		// ──── Auth Routes (public) ────
		r.Route("/auth", func(r chi.Router) {
			r.Use(authLimiter.Middleware)
			r.Post("/register", h.Auth.Register)
			r.Post("/login", h.Auth.Login)
			r.Post("/refresh", h.Auth.Refresh)

			// Logout requires auth
			r.Group(func(r chi.Router) {
				r.Use(jwtAuth.Middleware)
				r.Post("/logout", h.Auth.Logout)
			})
		})

		// ──── Catalog Routes (public) ────
		r.Get("/modules", h.Catalog.ListModules)
		r.Get("/modules/{id}", h.Catalog.GetModule)
		r.Get("/dictionary", h.Catalog.Dictionary)

		// ──── Quiz Routes ────
		r.Group(func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Post("/modules/{id}/quiz", h.Quiz.Start)
		})

		r.Route("/quiz-sessions", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Get("/{id}", h.Quiz.Get)
			r.Post("/{id}/answer", h.Quiz.Answer)
			r.Delete("/{id}", h.Quiz.Exit)
		})

		// ──── Progress Routes ────
		r.Route("/progress", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Get("/", h.Progress.List)
			r.Delete("/{moduleId}", h.Progress.Reset)
			r.Post("/{moduleId}/lessons", h.Progress.MarkLessonComplete)
		})

		r.Group(func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Get("/profile", h.Progress.Profile)
			r.Get("/user/me", h.Auth.GetMe)
			r.Put("/user/me", h.Auth.UpdateMe)
		})

		// ──── WebSocket ────
		r.Get("/ws", h.WS)
	})

	return r, authLimiter
}

package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"notekeeper/interfaces/http/rest/middleware"
	"notekeeper/internal/service/content"
	"notekeeper/internal/service/user"
	"notekeeper/pkg/auth"
	"notekeeper/pkg/common"
	"notekeeper/pkg/observability"
)

// RouterConfig bundles everything the router needs. Metrics may be nil.
type RouterConfig struct {
	ContentService content.Service
	UserService    user.Service
	TokenValidator *auth.Validator
	Metrics        *observability.Collector
	Logger         *zap.Logger
}

// NewRouter assembles the HTTP routing tree. Account routes are public;
// everything under /content requires a valid bearer token.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.RequestLogger(cfg.Logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware)
		r.Handle("/metrics", cfg.Metrics.Handler())
	}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		common.RespondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	})
	r.Get("/ready", func(w http.ResponseWriter, _ *http.Request) {
		common.RespondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	})

	userHandler := NewUserHandler(cfg.UserService, cfg.Logger)
	r.Route("/user", func(r chi.Router) {
		r.Put("/signup", userHandler.Signup)
		r.Post("/login", userHandler.Login)
	})

	categoryHandler := NewCategoryHandler(cfg.ContentService, cfg.Logger)
	noteHandler := NewNoteHandler(cfg.ContentService, cfg.Logger)
	r.Route("/content", func(r chi.Router) {
		r.Use(middleware.Authenticate(cfg.TokenValidator))

		r.Get("/categories", categoryHandler.List)
		r.Post("/category", categoryHandler.Create)
		r.Get("/category/{categoryId}", categoryHandler.Get)
		r.Put("/category/{categoryId}", categoryHandler.Edit)
		r.Delete("/category/{categoryId}", categoryHandler.Delete)

		r.Get("/notes", noteHandler.List)
		r.Post("/note", noteHandler.Create)
		r.Get("/note/{noteId}", noteHandler.Get)
		r.Put("/note/{noteId}", noteHandler.Edit)
		r.Delete("/note/{noteId}", noteHandler.Delete)
	})

	return r
}

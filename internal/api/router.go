package api

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/hugh/teamboard/internal/api/handlers"
	"github.com/hugh/teamboard/internal/api/middleware"
	"github.com/hugh/teamboard/internal/auth"
	"github.com/hugh/teamboard/internal/task"
	"github.com/hugh/teamboard/internal/team"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Router struct {
	chi.Router
}

type RouterConfig struct {
	DB             *gorm.DB
	Redis          *redis.Client
	Logger         *slog.Logger
	JWTService     *auth.JWTService
	AuthService    *auth.Service
	TeamService    *team.Service
	TaskService    *task.Service
	Revoker        *auth.TokenRevoker
	AllowedOrigins []string // CORS allowed origins
	RateLimitReqs  int      // Rate limit requests per window
	RateLimitSecs  int      // Rate limit window in seconds
}

func NewRouter(cfg RouterConfig) *Router {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Logging(cfg.Logger))

	// Rate limiting - applied globally to prevent abuse
	if cfg.RateLimitReqs > 0 {
		r.Use(middleware.RateLimit(cfg.RateLimitReqs, cfg.RateLimitSecs))
	}

	// CORS - restrict to configured origins, or allow all in development
	allowedOrigins := cfg.AllowedOrigins
	if len(allowedOrigins) == 0 {
		// Default to localhost for development - configure in production
		allowedOrigins = []string{"http://localhost:3000", "http://localhost:8080"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(cfg.DB, cfg.Redis)
	authHandler := handlers.NewAuthHandler(cfg.AuthService, cfg.Revoker)
	teamHandler := handlers.NewTeamHandler(cfg.TeamService)
	taskHandler := handlers.NewTaskHandler(cfg.TaskService)

	// Health endpoints (no auth required)
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		// Public auth endpoints
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)

		// Public team listings; an optional token restricts ?myTeams=true
		r.Group(func(r chi.Router) {
			r.Use(middleware.OptionalAuth(cfg.JWTService, cfg.Revoker))
			r.Get("/teams", teamHandler.List)
			r.Get("/teams/{id}", teamHandler.Get)
		})

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWTService, cfg.Revoker))

			// Account endpoints
			r.Route("/auth", func(r chi.Router) {
				r.Post("/logout", authHandler.Logout)
				r.Get("/profile", authHandler.Profile)
				r.Put("/profile", authHandler.UpdateProfile)
				r.Put("/change-password", authHandler.ChangePassword)
				r.Delete("/delete-account", authHandler.DeleteAccount)
			})

			r.Get("/users/me/teams", teamHandler.MyTeams)

			// Team endpoints. Method routes rather than a subrouter:
			// GET /teams and GET /teams/{id} live in the public group above.
			r.Post("/teams", teamHandler.Create)
			r.Put("/teams/{id}", teamHandler.Update)
			r.Delete("/teams/{id}", teamHandler.Delete)
			r.Post("/teams/{id}/leave", teamHandler.Leave)
			r.Get("/teams/{id}/members", teamHandler.ListMembers)
			r.Post("/teams/{id}/members", teamHandler.AddMember)
			r.Delete("/teams/{id}/members/{memberID}", teamHandler.RemoveMember)
			r.Put("/teams/{id}/members/{memberID}/role", teamHandler.UpdateMemberRole)

			// Task endpoints
			r.Route("/tasks", func(r chi.Router) {
				r.Get("/", taskHandler.List)
				r.Post("/", taskHandler.Create)
				r.Get("/{id}", taskHandler.Get)
				r.Put("/{id}", taskHandler.Update)
				r.Delete("/{id}", taskHandler.Delete)
				r.Put("/{id}/status", taskHandler.UpdateStatus)
			})
		})
	})

	return &Router{r}
}

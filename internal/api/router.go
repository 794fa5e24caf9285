package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/ridetrack/server/internal/api/handlers"
	"github.com/ridetrack/server/internal/api/middleware"
	"github.com/ridetrack/server/internal/config"
	"github.com/ridetrack/server/internal/service"
	"github.com/ridetrack/server/internal/websocket"
	"go.uber.org/zap"
)

func NewRouter(services *service.Services, hub *websocket.Hub, cfg *config.Config, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(services.Auth)
	profileHandler := handlers.NewProfileHandler(services.Profile)
	connectionHandler := handlers.NewConnectionHandler(services.Connection)
	groupHandler := handlers.NewGroupHandler(services.Group)
	rideHandler := handlers.NewRideHandler(services.Ride)
	wsHandler := handlers.NewWebSocketHandler(hub, services.Auth, logger)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Public auth routes
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)

			// Protected auth routes
			r.Group(func(r chi.Router) {
				r.Use(middleware.Auth(services.Auth))
				r.Get("/me", authHandler.Me)
				r.Post("/logout", authHandler.Logout)
			})
		})

		// Group routes; list and detail are public reads
		r.Route("/groups", func(r chi.Router) {
			r.Get("/", groupHandler.List)
			r.Get("/{groupId}", groupHandler.Get)

			r.Group(func(r chi.Router) {
				r.Use(middleware.Auth(services.Auth))
				r.Post("/", groupHandler.Create)
				r.Post("/{groupId}/join", groupHandler.Join)
				r.Post("/{groupId}/leave", groupHandler.Leave)
				r.Post("/{groupId}/start_ride", rideHandler.Start)
				r.Post("/{groupId}/end_ride", rideHandler.End)
				r.Get("/{groupId}/rides", rideHandler.History)
			})
		})

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(services.Auth))

			// Profile routes
			r.Route("/profile", func(r chi.Router) {
				r.Get("/", profileHandler.GetProfile)
				r.Put("/", profileHandler.UpdateProfile)
			})

			// User directory
			r.Get("/users", connectionHandler.ListUsers)

			// Connection routes
			r.Route("/connections", func(r chi.Router) {
				r.Get("/", connectionHandler.List)
				r.Post("/send/{userId}", connectionHandler.SendRequest)
				r.Post("/accept/{userId}", connectionHandler.AcceptRequest)
			})
		})

		// WebSocket endpoint
		r.Get("/ws", wsHandler.Handle)
	})

	return r
}

package handlers

import (
	"net/http"

	"campus-match-backend/internal/metrics"
	"campus-match-backend/internal/middleware"
	"campus-match-backend/internal/services"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
)

// RouterConfig holds everything the HTTP surface needs
type RouterConfig struct {
	UserService    *services.UserService
	MatchService   *services.MatchService
	MessageService *services.MessageService
	Candidates     *services.CandidateSelector
	Pictures       PictureUploader
	Hub            *services.WSHub
	Notifier       services.Notifier
	AllowedOrigins []string
}

// NewRouter wires handlers onto a chi router
func NewRouter(cfg RouterConfig) http.Handler {
	authHandler := NewAuthHandler(cfg.UserService)
	userHandler := NewUserHandler(cfg.UserService, cfg.Pictures)
	matchHandler := NewMatchHandler(cfg.MatchService, cfg.Candidates, cfg.UserService, cfg.Hub, cfg.Notifier)
	messageHandler := NewMessageHandler(cfg.MessageService, cfg.Hub)
	wsHandler := NewWebSocketHandler(cfg.Hub, cfg.UserService, cfg.MessageService)

	r := chi.NewRouter()

	// Middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	}).Handler)

	r.Get("/health", HealthCheck)
	r.Handle("/metrics", metrics.Handler())
	r.Get("/ws", wsHandler.HandleWebSocket)

	r.Route("/api", func(r chi.Router) {
		// Public routes
		r.Post("/auth/signup", authHandler.Signup)
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/logout", authHandler.Logout)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(cfg.UserService))

			r.Get("/auth/check", authHandler.Check)

			r.Get("/users/me", authHandler.Check)
			r.Put("/users/me", userHandler.UpdateProfile)
			r.Delete("/users/me", userHandler.DeleteMe)
			r.Put("/users/me/push-token", userHandler.UpdatePushToken)
			r.Post("/users/me/picture", userHandler.UploadPicture)
			r.Get("/users/{id}", userHandler.GetUser)

			r.Get("/matches", matchHandler.GetMatches)
			r.Get("/matches/potential", matchHandler.GetPotentialMatches)
			r.Post("/matches/like", matchHandler.Like)
			r.Delete("/matches/{match_id}", matchHandler.Unmatch)

			r.Get("/messages/users", messageHandler.GetConversations)
			r.Get("/messages/{user_id}", messageHandler.GetHistory)
			r.Post("/messages/send/{user_id}", messageHandler.Send)
		})
	})

	return r
}

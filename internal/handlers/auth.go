package handlers

import (
	"net/http"
	"time"

	"campus-match-backend/internal/middleware"
	"campus-match-backend/internal/models"
	"campus-match-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// AuthHandler handles registration and sessions
type AuthHandler struct {
	userService *services.UserService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(userService *services.UserService) *AuthHandler {
	return &AuthHandler{
		userService: userService,
	}
}

// LoginRequest represents the request body for logging in
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// SessionResponse is returned by signup and login
type SessionResponse struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

// Signup handles POST /api/auth/signup
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req services.SignupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, token, err := h.userService.Signup(r.Context(), req)
	if err != nil {
		logServiceError(err).
			Str("username", req.Username).
			Msg("Failed to sign up")
		respondServiceError(w, err)
		return
	}

	log.Info().
		Str("user_id", user.ID).
		Str("school", user.School).
		Msg("User signed up")

	h.setSessionCookie(w, r, token)
	respondJSON(w, http.StatusCreated, SessionResponse{User: user, Token: token})
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, token, err := h.userService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		event := log.Error()
		if services.IsClientError(err) {
			event = log.Warn()
		}
		event.
			Err(err).
			Str("username", req.Username).
			Msg("Failed to log in")
		respondServiceError(w, err)
		return
	}

	h.setSessionCookie(w, r, token)
	respondJSON(w, http.StatusOK, SessionResponse{User: user, Token: token})
}

// Logout handles POST /api/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	clearSessionCookie(w, r)
	respondJSON(w, http.StatusOK, MessageResponse{Message: "Logged out successfully"})
}

// Check handles GET /api/auth/check and GET /api/users/me
func (h *AuthHandler) Check(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	user, err := h.userService.GetUser(r.Context(), userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to get current user")
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, user)
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, r *http.Request, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.userService.TokenTTL() / time.Second),
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteStrictMode,
	})
}

func clearSessionCookie(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteStrictMode,
	})
}

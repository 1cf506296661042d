package handlers

import (
	"context"
	"net/http"

	"campus-match-backend/internal/middleware"
	"campus-match-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// PictureUploader issues upload URLs for profile pictures
type PictureUploader interface {
	CreateUploadURL(ctx context.Context, userID, contentType string) (*services.UploadResponse, error)
}

// UserHandler handles user-related HTTP requests
type UserHandler struct {
	userService *services.UserService
	pictures    PictureUploader
}

// NewUserHandler creates a new user handler. pictures may be nil when no
// bucket is configured.
func NewUserHandler(userService *services.UserService, pictures PictureUploader) *UserHandler {
	return &UserHandler{
		userService: userService,
		pictures:    pictures,
	}
}

// PushTokenRequest represents the request body for registering a device
type PushTokenRequest struct {
	PushToken *string `json:"pushToken"`
}

// PictureUploadRequest represents the request body for a picture upload URL
type PictureUploadRequest struct {
	ContentType string `json:"contentType"`
}

// GetUser handles GET /api/users/{id}
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	profile, err := h.userService.GetPublicProfile(r.Context(), id)
	if err != nil {
		log.Error().Err(err).Str("target_id", id).Msg("Failed to get user")
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, profile)
}

// UpdateProfile handles PUT /api/users/me
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req services.UpdateProfileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, err := h.userService.UpdateProfile(r.Context(), userID, req)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to update profile")
		respondServiceError(w, err)
		return
	}

	log.Info().Str("user_id", userID).Msg("Profile updated")

	respondJSON(w, http.StatusOK, user)
}

// UpdatePushToken handles PUT /api/users/me/push-token
func (h *UserHandler) UpdatePushToken(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req PushTokenRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.userService.UpdatePushToken(r.Context(), userID, req.PushToken); err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to update push token")
		respondServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// UploadPicture handles POST /api/users/me/picture
func (h *UserHandler) UploadPicture(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	if h.pictures == nil {
		respondError(w, "Picture uploads are not configured", http.StatusServiceUnavailable)
		return
	}

	var req PictureUploadRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	response, err := h.pictures.CreateUploadURL(r.Context(), userID, req.ContentType)
	if err != nil {
		log.Error().
			Err(err).
			Str("user_id", userID).
			Str("content_type", req.ContentType).
			Msg("Failed to generate pre-signed URL")
		respondServiceError(w, err)
		return
	}

	log.Info().
		Str("user_id", userID).
		Str("picture_url", response.PictureURL).
		Msg("Pre-signed URL generated")

	respondJSON(w, http.StatusOK, response)
}

// DeleteMe handles DELETE /api/users/me
func (h *UserHandler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	if err := h.userService.DeleteUser(r.Context(), userID); err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to delete user")
		respondServiceError(w, err)
		return
	}

	log.Info().Str("user_id", userID).Msg("User deleted")

	clearSessionCookie(w, r)
	w.WriteHeader(http.StatusNoContent)
}

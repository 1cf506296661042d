package handlers

import (
	"net/http"

	"campus-match-backend/internal/middleware"
	"campus-match-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// MessageHandler handles direct message HTTP requests
type MessageHandler struct {
	messageService *services.MessageService
	wsHub          *services.WSHub
}

// NewMessageHandler creates a new message handler
func NewMessageHandler(messageService *services.MessageService, wsHub *services.WSHub) *MessageHandler {
	return &MessageHandler{
		messageService: messageService,
		wsHub:          wsHub,
	}
}

// GetConversations handles GET /api/messages/users
func (h *MessageHandler) GetConversations(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	profiles, err := h.messageService.Conversations(r.Context(), userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to get conversations")
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, profiles)
}

// GetHistory handles GET /api/messages/{user_id}
func (h *MessageHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	partnerID := chi.URLParam(r, "user_id")

	messages, err := h.messageService.History(r.Context(), userID, partnerID)
	if err != nil {
		logServiceError(err).
			Str("user_id", userID).
			Str("partner_id", partnerID).
			Msg("Failed to get messages")
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, messages)
}

// Send handles POST /api/messages/send/{user_id}
func (h *MessageHandler) Send(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	receiverID := chi.URLParam(r, "user_id")

	var req services.SendMessageRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	msg, err := h.messageService.Send(r.Context(), userID, receiverID, req)
	if err != nil {
		logServiceError(err).
			Str("user_id", userID).
			Str("receiver_id", receiverID).
			Msg("Failed to send message")
		respondServiceError(w, err)
		return
	}

	if err := h.wsHub.DeliverMessage(msg); err != nil {
		log.Error().Err(err).Str("receiver_id", receiverID).Msg("Failed to deliver message")
	}

	respondJSON(w, http.StatusCreated, msg)
}

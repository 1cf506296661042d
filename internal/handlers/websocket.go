package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"campus-match-backend/internal/middleware"
	"campus-match-backend/internal/services"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // CORS does not apply to upgrades; auth is by token
	},
}

// WebSocketHandler handles WebSocket connections
type WebSocketHandler struct {
	hub            *services.WSHub
	userService    *services.UserService
	messageService *services.MessageService
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(
	hub *services.WSHub,
	userService *services.UserService,
	messageService *services.MessageService,
) *WebSocketHandler {
	return &WebSocketHandler{
		hub:            hub,
		userService:    userService,
		messageService: messageService,
	}
}

// HandleWebSocket handles GET /ws
func (h *WebSocketHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	// Get token from query parameter, browsers fall back to the session cookie
	token := r.URL.Query().Get("token")
	if token == "" {
		if cookie, err := r.Cookie(middleware.SessionCookie); err == nil {
			token = cookie.Value
		}
	}
	if token == "" {
		respondError(w, "token required", http.StatusUnauthorized)
		return
	}

	userID, err := h.userService.ValidateJWT(token)
	if err != nil {
		respondError(w, "invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upgrade WebSocket connection")
		return
	}
	defer conn.Close()

	h.hub.Register(userID, conn)
	defer h.hub.Unregister(userID, conn)

	log.Info().Str("user_id", userID).Msg("WebSocket connection established")

	ctx := r.Context()
	for {
		_, messageBytes, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Error().Err(err).Str("user_id", userID).Msg("WebSocket error")
			}
			break
		}

		var msg services.WSMessage
		if err := json.Unmarshal(messageBytes, &msg); err != nil {
			log.Error().Err(err).Str("user_id", userID).Msg("Failed to parse WebSocket message")
			h.sendErrorToUser(userID, "Invalid message format")
			continue
		}

		if err := h.handleMessage(ctx, userID, msg); err != nil {
			log.Warn().Err(err).Str("user_id", userID).Str("type", msg.Type).Msg("Failed to handle message")
			h.sendErrorToUser(userID, err.Error())
		}
	}
}

// handleMessage processes incoming WebSocket messages
func (h *WebSocketHandler) handleMessage(ctx context.Context, userID string, msg services.WSMessage) error {
	switch msg.Type {
	case services.WSTypeSendMessage:
		return h.handleSendMessage(ctx, userID, msg)
	default:
		return errors.New("unknown message type")
	}
}

// handleSendMessage stores a direct message and pushes it to the receiver
func (h *WebSocketHandler) handleSendMessage(ctx context.Context, userID string, msg services.WSMessage) error {
	stored, err := h.messageService.Send(ctx, userID, msg.To, services.SendMessageRequest{Text: msg.Message})
	if err != nil {
		if services.IsClientError(err) {
			return errors.New(services.Message(err))
		}
		log.Error().Err(err).Str("user_id", userID).Str("to", msg.To).Msg("Failed to store message")
		return errors.New("internal server error")
	}

	if err := h.hub.DeliverMessage(stored); err != nil {
		log.Error().Err(err).Str("to", msg.To).Msg("Failed to deliver message")
	}

	return nil
}

// sendErrorToUser sends an error message to a user
func (h *WebSocketHandler) sendErrorToUser(userID, message string) {
	msg := services.WSMessage{
		Type:    services.WSTypeError,
		Message: message,
	}
	if err := h.hub.SendToUser(userID, msg); err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to send error message")
	}
}

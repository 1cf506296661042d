package services

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"campus-match-backend/internal/metrics"
	"campus-match-backend/internal/models"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const wsWriteTimeout = 10 * time.Second

// WebSocket message types
const (
	WSTypeMatchCreated = "match_created"
	WSTypeMatchRemoved = "match_removed"
	WSTypeSendMessage  = "send_message"
	WSTypeNewMessage   = "new_message"
	WSTypeError        = "error"
)

// WSMessage represents a WebSocket message
type WSMessage struct {
	Type      string      `json:"type"`
	Timestamp int64       `json:"timestamp,omitempty"`
	From      string      `json:"from,omitempty"`
	To        string      `json:"to,omitempty"`
	Message   string      `json:"message,omitempty"`
	Data      interface{} `json:"data,omitempty"`
}

// wsClient serializes writes to one connection
type wsClient struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *wsClient) write(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// WSHub manages WebSocket connections, one per user
type WSHub struct {
	mu      sync.RWMutex
	clients map[string]*wsClient
}

// NewWSHub creates a new WebSocket hub
func NewWSHub() *WSHub {
	return &WSHub{
		clients: make(map[string]*wsClient),
	}
}

// Register registers a new WebSocket connection for a user
func (h *WSHub) Register(userID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	// Close existing connection if any
	if existing, exists := h.clients[userID]; exists {
		existing.conn.Close()
	} else {
		metrics.WSConnections.Inc()
	}

	h.clients[userID] = &wsClient{conn: conn}

	log.Info().Str("user_id", userID).Msg("WebSocket connection registered")
}

// Unregister removes the user's connection if it is still conn
func (h *WSHub) Unregister(userID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if client, exists := h.clients[userID]; exists && client.conn == conn {
		client.conn.Close()
		delete(h.clients, userID)
		metrics.WSConnections.Dec()
		log.Info().Str("user_id", userID).Msg("WebSocket connection unregistered")
	}
}

// SendToUser sends a message to a specific user
func (h *WSHub) SendToUser(userID string, message WSMessage) error {
	h.mu.RLock()
	client, exists := h.clients[userID]
	h.mu.RUnlock()

	if !exists {
		return fmt.Errorf("user %s is not connected", userID)
	}

	data, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	if err := client.write(data); err != nil {
		h.Unregister(userID, client.conn)
		return fmt.Errorf("failed to send message: %w", err)
	}

	return nil
}

// IsOnline checks if a user is online
func (h *WSHub) IsOnline(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, exists := h.clients[userID]
	return exists
}

// NotifyMatchCreated tells userID that a match with partner formed
func (h *WSHub) NotifyMatchCreated(userID string, match *models.Match, partner models.PublicProfile) error {
	message := WSMessage{
		Type:      WSTypeMatchCreated,
		Timestamp: match.CreatedAt.UnixMilli(),
		Data: map[string]interface{}{
			"match":   match,
			"partner": partner,
		},
	}
	return h.SendToUser(userID, message)
}

// NotifyMatchRemoved tells userID that a match was removed
func (h *WSHub) NotifyMatchRemoved(userID, matchID string) error {
	message := WSMessage{
		Type: WSTypeMatchRemoved,
		Data: map[string]interface{}{
			"match_id": matchID,
		},
	}
	return h.SendToUser(userID, message)
}

// DeliverMessage pushes a stored message to its receiver when they are connected.
// Offline receivers read it from the history later.
func (h *WSHub) DeliverMessage(msg *models.Message) error {
	if !h.IsOnline(msg.ReceiverID) {
		return nil
	}

	message := WSMessage{
		Type:      WSTypeNewMessage,
		From:      msg.SenderID,
		To:        msg.ReceiverID,
		Message:   msg.Text,
		Timestamp: msg.CreatedAt.UnixMilli(),
		Data:      msg,
	}

	if err := h.SendToUser(msg.ReceiverID, message); err != nil {
		return err
	}

	log.Debug().
		Str("from", msg.SenderID).
		Str("to", msg.ReceiverID).
		Str("message_id", msg.ID).
		Msg("Message delivered")

	return nil
}

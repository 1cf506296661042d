package memory

import (
	"context"
	"fmt"

	"campus-match-backend/internal/models"
	"campus-match-backend/internal/repository"
)

// MessageRepository stores direct messages in memory
type MessageRepository struct {
	db *DB
}

// NewMessageRepository creates a new message repository
func NewMessageRepository(db *DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// Create stores a message
func (r *MessageRepository) Create(ctx context.Context, msg *models.Message) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for _, messages := range r.db.rooms {
		for _, m := range messages {
			if m.ID == msg.ID {
				return fmt.Errorf("message %s: %w", msg.ID, repository.ErrDuplicate)
			}
		}
	}
	r.db.rooms[msg.ChatRoomID] = append(r.db.rooms[msg.ChatRoomID], *msg)
	return nil
}

// ListByChatRoom retrieves the messages of a thread, oldest first
func (r *MessageRepository) ListByChatRoom(ctx context.Context, chatRoomID string) ([]*models.Message, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	var out []*models.Message
	for _, m := range r.db.rooms[chatRoomID] {
		msg := m
		out = append(out, &msg)
	}
	return out, nil
}

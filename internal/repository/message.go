package repository

import (
	"context"
	"fmt"

	"campus-match-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// MessageRepository handles database operations for direct messages
type MessageRepository struct {
	db *pgxpool.Pool
}

// NewMessageRepository creates a new message repository
func NewMessageRepository(db *pgxpool.Pool) *MessageRepository {
	return &MessageRepository{db: db}
}

// Create stores a message
func (r *MessageRepository) Create(ctx context.Context, msg *models.Message) error {
	query := `
		INSERT INTO messages (id, chat_room_id, sender_id, receiver_id, text, image, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.Exec(ctx, query,
		msg.ID, msg.ChatRoomID, msg.SenderID, msg.ReceiverID, msg.Text, msg.Image, msg.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("message %s: %w", msg.ID, ErrDuplicate)
		}
		return fmt.Errorf("failed to create message: %w", err)
	}
	return nil
}

// ListByChatRoom retrieves the messages of a thread, oldest first
func (r *MessageRepository) ListByChatRoom(ctx context.Context, chatRoomID string) ([]*models.Message, error) {
	query := `
		SELECT id, chat_room_id, sender_id, receiver_id, text, image, created_at
		FROM messages
		WHERE chat_room_id = $1
		ORDER BY created_at, id
	`
	rows, err := r.db.Query(ctx, query, chatRoomID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	var messages []*models.Message
	for rows.Next() {
		var msg models.Message
		err := rows.Scan(
			&msg.ID, &msg.ChatRoomID, &msg.SenderID, &msg.ReceiverID,
			&msg.Text, &msg.Image, &msg.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, &msg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating messages: %w", err)
	}

	return messages, nil
}

package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"campus-match-backend/internal/metrics"
	"campus-match-backend/internal/models"
	"campus-match-backend/internal/repository"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// MessageService stores direct messages between matched users
type MessageService struct {
	users    UserStore
	matches  *MatchService
	messages MessageStore
	validate *validator.Validate
	now      func() time.Time
	newID    func() string
}

// NewMessageService creates a new message service
func NewMessageService(users UserStore, matches *MatchService, messages MessageStore) *MessageService {
	return &MessageService{
		users:    users,
		matches:  matches,
		messages: messages,
		validate: newValidator(),
		now:      time.Now,
		newID:    func() string { return uuid.New().String() },
	}
}

// SendMessageRequest is the body of a direct message
type SendMessageRequest struct {
	Text  string `json:"text" validate:"max=2000"`
	Image string `json:"image" validate:"omitempty,url"`
}

// Send stores a message from senderID to receiverID. The two must be matched.
// The first message of a pair opens the chat room referenced by their match.
func (s *MessageService) Send(ctx context.Context, senderID, receiverID string, req SendMessageRequest) (*models.Message, error) {
	if receiverID == "" {
		return nil, invalidArgument("Receiver ID is required")
	}
	if receiverID == senderID {
		return nil, invalidArgument("Cannot message yourself")
	}

	req.Text = strings.TrimSpace(req.Text)
	req.Image = strings.TrimSpace(req.Image)
	if req.Text == "" && req.Image == "" {
		return nil, invalidArgument("Message text or image is required")
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, validationError(err)
	}

	match, err := s.partnerMatch(ctx, senderID, receiverID)
	if err != nil {
		return nil, err
	}

	room, err := s.matches.OpenChatRoom(ctx, match)
	if err != nil {
		return nil, err
	}

	msg := &models.Message{
		ID:         s.newID(),
		ChatRoomID: room,
		SenderID:   senderID,
		ReceiverID: receiverID,
		Text:       req.Text,
		Image:      req.Image,
		CreatedAt:  s.now(),
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, unavailable("failed to store message", err)
	}

	metrics.MessagesSent.Inc()
	return msg, nil
}

// History returns the conversation of userID with partnerID, oldest first
func (s *MessageService) History(ctx context.Context, userID, partnerID string) ([]*models.Message, error) {
	match, err := s.partnerMatch(ctx, userID, partnerID)
	if err != nil {
		return nil, err
	}
	if match.ChatRoomID == nil {
		return []*models.Message{}, nil
	}

	messages, err := s.messages.ListByChatRoom(ctx, *match.ChatRoomID)
	if err != nil {
		return nil, unavailable("failed to list messages", err)
	}
	if messages == nil {
		messages = []*models.Message{}
	}
	return messages, nil
}

// Conversations returns the public profiles of the users userID can message
func (s *MessageService) Conversations(ctx context.Context, userID string) ([]models.PublicProfile, error) {
	users, err := s.matches.ListMatches(ctx, userID)
	if err != nil {
		return nil, err
	}

	profiles := make([]models.PublicProfile, 0, len(users))
	for _, u := range users {
		profiles = append(profiles, u.Public())
	}
	return profiles, nil
}

// partnerMatch resolves partnerID and returns the active match with userID
func (s *MessageService) partnerMatch(ctx context.Context, userID, partnerID string) (*models.Match, error) {
	if _, err := s.users.GetByID(ctx, partnerID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("User not found")
		}
		return nil, unavailable("failed to get user", err)
	}
	return s.matches.ActiveMatch(ctx, userID, partnerID)
}

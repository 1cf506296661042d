package services

import (
	"context"
	"time"

	"campus-match-backend/internal/models"
)

// UserStore is the user directory. Implementations derive User.Matches from
// the match ledger and fill User.Likes from the like store. ListBySchool returns
// only users whose School equals the argument.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	ListBySchool(ctx context.Context, school string) ([]*models.User, error)
	ListMatchedWith(ctx context.Context, userID string) ([]*models.User, error)
	UpdateProfile(ctx context.Context, user *models.User) error
	UpdatePushToken(ctx context.Context, userID string, pushToken *string) error
	Delete(ctx context.Context, id string) error
}

// LikeStore records unilateral likes
type LikeStore interface {
	Add(ctx context.Context, actorID, targetID string) (bool, error)
	Exists(ctx context.Context, actorID, targetID string) (bool, error)
}

// MatchStore is the match ledger. Create must fail with repository.ErrDuplicate
// when the unordered pair already has a record.
type MatchStore interface {
	Create(ctx context.Context, match *models.Match) error
	GetByID(ctx context.Context, id string) (*models.Match, error)
	GetByPair(ctx context.Context, a, b string) (*models.Match, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Match, error)
	UpdateStatus(ctx context.Context, id string, from, to models.MatchStatus, at time.Time) error
	AttachChatRoom(ctx context.Context, id, chatRoomID string, at time.Time) (string, error)
}

// MessageStore holds direct messages grouped by chat room
type MessageStore interface {
	Create(ctx context.Context, msg *models.Message) error
	ListByChatRoom(ctx context.Context, chatRoomID string) ([]*models.Message, error)
}

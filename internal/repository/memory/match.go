package memory

import (
	"context"
	"fmt"
	"time"

	"campus-match-backend/internal/models"
	"campus-match-backend/internal/repository"
)

// MatchRepository stores match records in memory
type MatchRepository struct {
	db *DB
}

// NewMatchRepository creates a new match repository
func NewMatchRepository(db *DB) *MatchRepository {
	return &MatchRepository{db: db}
}

// Create inserts a match record. It returns ErrDuplicate when the pair already has one.
func (r *MatchRepository) Create(ctx context.Context, match *models.Match) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	key := pairKey(match.UserAID, match.UserBID)
	if _, exists := r.db.pairs[key]; exists {
		return fmt.Errorf("match %s/%s: %w", key[0], key[1], repository.ErrDuplicate)
	}
	if _, exists := r.db.matches[match.ID]; exists {
		return fmt.Errorf("match %s: %w", match.ID, repository.ErrDuplicate)
	}

	r.db.matches[match.ID] = copyMatch(match)
	r.db.pairs[key] = match.ID
	return nil
}

// GetByID retrieves a match by ID
func (r *MatchRepository) GetByID(ctx context.Context, id string) (*models.Match, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	m, ok := r.db.matches[id]
	if !ok {
		return nil, fmt.Errorf("match %s: %w", id, repository.ErrNotFound)
	}
	return copyMatch(m), nil
}

// GetByPair retrieves the match record of the unordered pair {a, b}
func (r *MatchRepository) GetByPair(ctx context.Context, a, b string) (*models.Match, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	key := pairKey(a, b)
	id, ok := r.db.pairs[key]
	if !ok {
		return nil, fmt.Errorf("match %s/%s: %w", key[0], key[1], repository.ErrNotFound)
	}
	return copyMatch(r.db.matches[id]), nil
}

// ListByUser retrieves the records a user is a member of, in any status
func (r *MatchRepository) ListByUser(ctx context.Context, userID string) ([]*models.Match, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	var out []*models.Match
	for _, m := range r.db.matchesOfLocked(userID, false) {
		out = append(out, copyMatch(m))
	}
	return out, nil
}

// UpdateStatus moves a match from one status to another
func (r *MatchRepository) UpdateStatus(ctx context.Context, id string, from, to models.MatchStatus, at time.Time) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	m, ok := r.db.matches[id]
	if !ok || m.Status != from {
		return fmt.Errorf("match %s in status %s: %w", id, from, repository.ErrNotFound)
	}
	m.Status = to
	m.UpdatedAt = at
	return nil
}

// AttachChatRoom sets the chat room of a match unless one is already set and
// returns the room the record ends up with.
func (r *MatchRepository) AttachChatRoom(ctx context.Context, id, chatRoomID string, at time.Time) (string, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	m, ok := r.db.matches[id]
	if !ok {
		return "", fmt.Errorf("match %s: %w", id, repository.ErrNotFound)
	}
	if m.ChatRoomID == nil {
		room := chatRoomID
		m.ChatRoomID = &room
		m.UpdatedAt = at
	}
	return *m.ChatRoomID, nil
}

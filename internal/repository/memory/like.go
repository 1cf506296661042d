package memory

import (
	"context"

	"campus-match-backend/internal/models"
)

// LikeRepository stores likes in memory
type LikeRepository struct {
	db *DB
}

// NewLikeRepository creates a new like repository
func NewLikeRepository(db *DB) *LikeRepository {
	return &LikeRepository{db: db}
}

// Add records that actorID likes targetID.
// It reports false when the like already existed.
func (r *LikeRepository) Add(ctx context.Context, actorID, targetID string) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for _, l := range r.db.likes[actorID] {
		if l.TargetID == targetID {
			return false, nil
		}
	}
	r.db.likes[actorID] = append(r.db.likes[actorID], models.Like{
		ActorID:   actorID,
		TargetID:  targetID,
		CreatedAt: now(),
	})
	return true, nil
}

// Exists checks if actorID likes targetID
func (r *LikeRepository) Exists(ctx context.Context, actorID, targetID string) (bool, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	for _, l := range r.db.likes[actorID] {
		if l.TargetID == targetID {
			return true, nil
		}
	}
	return false, nil
}

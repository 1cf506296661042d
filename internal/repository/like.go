package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// LikeRepository handles database operations for likes
type LikeRepository struct {
	db *pgxpool.Pool
}

// NewLikeRepository creates a new like repository
func NewLikeRepository(db *pgxpool.Pool) *LikeRepository {
	return &LikeRepository{db: db}
}

// Add records that actorID likes targetID.
// It reports false when the like already existed.
func (r *LikeRepository) Add(ctx context.Context, actorID, targetID string) (bool, error) {
	query := `
		INSERT INTO likes (actor_id, target_id, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (actor_id, target_id) DO NOTHING
	`
	result, err := r.db.Exec(ctx, query, actorID, targetID, time.Now())
	if err != nil {
		return false, fmt.Errorf("failed to add like: %w", err)
	}
	return result.RowsAffected() == 1, nil
}

// Exists checks if actorID likes targetID
func (r *LikeRepository) Exists(ctx context.Context, actorID, targetID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM likes WHERE actor_id = $1 AND target_id = $2)`
	var exists bool
	err := r.db.QueryRow(ctx, query, actorID, targetID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check like existence: %w", err)
	}
	return exists, nil
}

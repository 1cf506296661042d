package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"campus-match-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const matchColumns = `id, user_a_id, user_b_id, status, chat_room_id, created_at, updated_at`

// MatchRepository handles database operations for match records
type MatchRepository struct {
	db *pgxpool.Pool
}

// NewMatchRepository creates a new match repository
func NewMatchRepository(db *pgxpool.Pool) *MatchRepository {
	return &MatchRepository{db: db}
}

// Create inserts a match record. It returns ErrDuplicate when the pair already has one.
func (r *MatchRepository) Create(ctx context.Context, match *models.Match) error {
	query := `
		INSERT INTO matches (` + matchColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_a_id, user_b_id) DO NOTHING
	`
	result, err := r.db.Exec(ctx, query,
		match.ID, match.UserAID, match.UserBID, match.Status, match.ChatRoomID,
		match.CreatedAt, match.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create match: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("match %s/%s: %w", match.UserAID, match.UserBID, ErrDuplicate)
	}
	return nil
}

// GetByID retrieves a match by ID
func (r *MatchRepository) GetByID(ctx context.Context, id string) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1`
	match, err := scanMatch(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("match %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get match: %w", err)
	}
	return match, nil
}

// GetByPair retrieves the match record of the unordered pair {a, b}
func (r *MatchRepository) GetByPair(ctx context.Context, a, b string) (*models.Match, error) {
	userA, userB := models.OrderPair(a, b)
	query := `SELECT ` + matchColumns + ` FROM matches WHERE user_a_id = $1 AND user_b_id = $2`
	match, err := scanMatch(r.db.QueryRow(ctx, query, userA, userB))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("match %s/%s: %w", userA, userB, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get match by pair: %w", err)
	}
	return match, nil
}

// ListByUser retrieves the records a user is a member of, in any status
func (r *MatchRepository) ListByUser(ctx context.Context, userID string) ([]*models.Match, error) {
	query := `
		SELECT ` + matchColumns + `
		FROM matches
		WHERE user_a_id = $1 OR user_b_id = $1
		ORDER BY created_at
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	defer rows.Close()

	var matches []*models.Match
	for rows.Next() {
		match, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan match: %w", err)
		}
		matches = append(matches, match)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating matches: %w", err)
	}

	return matches, nil
}

// UpdateStatus moves a match from one status to another.
// It returns ErrNotFound when no record with that id is in the from status.
func (r *MatchRepository) UpdateStatus(ctx context.Context, id string, from, to models.MatchStatus, at time.Time) error {
	query := `UPDATE matches SET status = $1, updated_at = $2 WHERE id = $3 AND status = $4`
	result, err := r.db.Exec(ctx, query, to, at, id, from)
	if err != nil {
		return fmt.Errorf("failed to update match status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("match %s in status %s: %w", id, from, ErrNotFound)
	}
	return nil
}

// AttachChatRoom sets the chat room of a match unless one is already set and
// returns the room the record ends up with.
func (r *MatchRepository) AttachChatRoom(ctx context.Context, id, chatRoomID string, at time.Time) (string, error) {
	query := `
		UPDATE matches
		SET chat_room_id = COALESCE(chat_room_id, $1),
			updated_at = CASE WHEN chat_room_id IS NULL THEN $2 ELSE updated_at END
		WHERE id = $3
		RETURNING chat_room_id
	`
	var room string
	err := r.db.QueryRow(ctx, query, chatRoomID, at, id).Scan(&room)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", fmt.Errorf("match %s: %w", id, ErrNotFound)
		}
		return "", fmt.Errorf("failed to attach chat room: %w", err)
	}
	return room, nil
}

func scanMatch(row pgx.Row) (*models.Match, error) {
	var match models.Match
	err := row.Scan(
		&match.ID, &match.UserAID, &match.UserBID, &match.Status, &match.ChatRoomID,
		&match.CreatedAt, &match.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &match, nil
}

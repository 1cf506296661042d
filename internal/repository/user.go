package repository

import (
	"context"
	"errors"
	"fmt"

	"campus-match-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// userColumns selects a user row together with its likes and its matched partners.
// Matches are derived from the matches table, never stored on the user.
const userColumns = `
	u.id, u.username, u.email, u.full_name, u.password_hash, u.school, u.bio,
	u.profile_pic, u.push_token, u.created_at, u.updated_at,
	COALESCE((SELECT array_agg(l.target_id ORDER BY l.created_at) FROM likes l WHERE l.actor_id = u.id), '{}'),
	COALESCE((
		SELECT array_agg(CASE WHEN m.user_a_id = u.id THEN m.user_b_id ELSE m.user_a_id END ORDER BY m.created_at)
		FROM matches m
		WHERE (m.user_a_id = u.id OR m.user_b_id = u.id) AND m.status = 'matched'
	), '{}')
`

// UserRepository handles database operations for users
type UserRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, username, email, full_name, password_hash, school, bio,
			profile_pic, push_token, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.db.Exec(ctx, query,
		user.ID, user.Username, user.Email, user.FullName, user.PasswordHash, user.School,
		user.Bio, user.ProfilePic, user.PushToken, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("user %s: %w", user.Username, ErrDuplicate)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users u WHERE u.id = $1`
	user, err := scanUser(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// GetByUsername retrieves a user by username
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users u WHERE u.username = $1`
	user, err := scanUser(r.db.QueryRow(ctx, query, username))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user %s: %w", username, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user by username: %w", err)
	}
	return user, nil
}

// ListBySchool retrieves every user of a school, oldest first
func (r *UserRepository) ListBySchool(ctx context.Context, school string) ([]*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users u WHERE u.school = $1 ORDER BY u.created_at`
	return r.list(ctx, query, school)
}

// ListMatchedWith retrieves the users currently matched with userID
func (r *UserRepository) ListMatchedWith(ctx context.Context, userID string) ([]*models.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM matches m
		JOIN users u ON u.id = CASE WHEN m.user_a_id = $1 THEN m.user_b_id ELSE m.user_a_id END
		WHERE (m.user_a_id = $1 OR m.user_b_id = $1) AND m.status = 'matched'
		ORDER BY m.created_at
	`
	return r.list(ctx, query, userID)
}

func (r *UserRepository) list(ctx context.Context, query string, args ...any) ([]*models.User, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}

	return users, nil
}

// UpdateProfile updates the editable profile fields of a user
func (r *UserRepository) UpdateProfile(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users SET full_name = $1, bio = $2, profile_pic = $3, updated_at = $4
		WHERE id = $5
	`
	result, err := r.db.Exec(ctx, query, user.FullName, user.Bio, user.ProfilePic, user.UpdatedAt, user.ID)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("user %s: %w", user.ID, ErrNotFound)
	}
	return nil
}

// UpdatePushToken updates the push token for a user
func (r *UserRepository) UpdatePushToken(ctx context.Context, userID string, pushToken *string) error {
	query := `UPDATE users SET push_token = $1 WHERE id = $2`
	result, err := r.db.Exec(ctx, query, pushToken, userID)
	if err != nil {
		return fmt.Errorf("failed to update push token: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("user %s: %w", userID, ErrNotFound)
	}
	return nil
}

// Delete removes a user; likes and matches referencing it cascade
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	return nil
}

func scanUser(row pgx.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID, &user.Username, &user.Email, &user.FullName, &user.PasswordHash,
		&user.School, &user.Bio, &user.ProfilePic, &user.PushToken,
		&user.CreatedAt, &user.UpdatedAt, &user.Likes, &user.Matches,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

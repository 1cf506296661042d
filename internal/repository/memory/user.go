package memory

import (
	"context"
	"fmt"
	"sort"

	"campus-match-backend/internal/models"
	"campus-match-backend/internal/repository"
)

// UserRepository stores users in memory
type UserRepository struct {
	db *DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, exists := r.db.users[user.ID]; exists {
		return fmt.Errorf("user %s: %w", user.ID, repository.ErrDuplicate)
	}
	for _, u := range r.db.users {
		if u.Username == user.Username || u.Email == user.Email {
			return fmt.Errorf("user %s: %w", user.Username, repository.ErrDuplicate)
		}
	}

	stored := *user
	stored.Likes = nil
	stored.Matches = nil
	r.db.users[user.ID] = &stored
	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	u, ok := r.db.users[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, repository.ErrNotFound)
	}
	return r.db.userLocked(u), nil
}

// GetByUsername retrieves a user by username
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	for _, u := range r.db.users {
		if u.Username == username {
			return r.db.userLocked(u), nil
		}
	}
	return nil, fmt.Errorf("user %s: %w", username, repository.ErrNotFound)
}

// ListBySchool retrieves every user of a school, oldest first
func (r *UserRepository) ListBySchool(ctx context.Context, school string) ([]*models.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	var users []*models.User
	for _, u := range r.db.users {
		if u.School == school {
			users = append(users, r.db.userLocked(u))
		}
	}
	sortUsers(users)
	return users, nil
}

// ListMatchedWith retrieves the users currently matched with userID
func (r *UserRepository) ListMatchedWith(ctx context.Context, userID string) ([]*models.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	var users []*models.User
	for _, m := range r.db.matchesOfLocked(userID, true) {
		if u, ok := r.db.users[m.PartnerOf(userID)]; ok {
			users = append(users, r.db.userLocked(u))
		}
	}
	return users, nil
}

// UpdateProfile updates the editable profile fields of a user
func (r *UserRepository) UpdateProfile(ctx context.Context, user *models.User) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	u, ok := r.db.users[user.ID]
	if !ok {
		return fmt.Errorf("user %s: %w", user.ID, repository.ErrNotFound)
	}
	u.FullName = user.FullName
	u.Bio = user.Bio
	u.ProfilePic = user.ProfilePic
	u.UpdatedAt = user.UpdatedAt
	return nil
}

// UpdatePushToken updates the push token for a user
func (r *UserRepository) UpdatePushToken(ctx context.Context, userID string, pushToken *string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	u, ok := r.db.users[userID]
	if !ok {
		return fmt.Errorf("user %s: %w", userID, repository.ErrNotFound)
	}
	if pushToken == nil {
		u.PushToken = nil
		return nil
	}
	token := *pushToken
	u.PushToken = &token
	return nil
}

// Delete removes a user together with every like, match and message referencing it
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.users[id]; !ok {
		return fmt.Errorf("user %s: %w", id, repository.ErrNotFound)
	}
	delete(r.db.users, id)
	delete(r.db.likes, id)

	for actor, likes := range r.db.likes {
		kept := likes[:0]
		for _, l := range likes {
			if l.TargetID != id {
				kept = append(kept, l)
			}
		}
		r.db.likes[actor] = kept
	}

	for room, messages := range r.db.rooms {
		kept := messages[:0]
		for _, msg := range messages {
			if msg.SenderID != id && msg.ReceiverID != id {
				kept = append(kept, msg)
			}
		}
		r.db.rooms[room] = kept
	}

	for matchID, m := range r.db.matches {
		if m.HasMember(id) {
			delete(r.db.matches, matchID)
			delete(r.db.pairs, pairKey(m.UserAID, m.UserBID))
		}
	}

	return nil
}

func sortUsers(users []*models.User) {
	sort.Slice(users, func(i, j int) bool {
		if users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].ID < users[j].ID
		}
		return users[i].CreatedAt.Before(users[j].CreatedAt)
	})
}

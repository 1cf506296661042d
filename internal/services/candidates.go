package services

import (
	"context"
	"errors"

	"campus-match-backend/internal/models"
	"campus-match-backend/internal/repository"
)

// CandidateSelector picks the users that may be shown to someone as potential matches
type CandidateSelector struct {
	users UserStore
}

// NewCandidateSelector creates a new candidate selector
func NewCandidateSelector(users UserStore) *CandidateSelector {
	return &CandidateSelector{users: users}
}

// PotentialMatches returns the public profiles of users from the same school that
// the requesting user has neither liked nor matched with. Read-only.
func (c *CandidateSelector) PotentialMatches(ctx context.Context, userID string) ([]models.PublicProfile, error) {
	user, err := c.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("User not found")
		}
		return nil, unavailable("failed to get user", err)
	}

	schoolmates, err := c.users.ListBySchool(ctx, user.School)
	if err != nil {
		return nil, unavailable("failed to list users", err)
	}

	excluded := make(map[string]struct{}, len(user.Likes)+len(user.Matches)+1)
	excluded[user.ID] = struct{}{}
	for _, id := range user.Likes {
		excluded[id] = struct{}{}
	}
	for _, id := range user.Matches {
		excluded[id] = struct{}{}
	}

	candidates := make([]models.PublicProfile, 0, len(schoolmates))
	for _, u := range schoolmates {
		if _, skip := excluded[u.ID]; skip {
			continue
		}
		excluded[u.ID] = struct{}{}
		candidates = append(candidates, u.Public())
	}

	return candidates, nil
}

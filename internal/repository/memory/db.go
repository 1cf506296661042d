// Package memory provides in-process repositories with the same contracts as the
// PostgreSQL ones. Every read returns a copy, so callers never share state.
package memory

import (
	"sort"
	"sync"
	"time"

	"campus-match-backend/internal/models"
)

// DB is the shared state behind the memory repositories
type DB struct {
	mu      sync.RWMutex
	users   map[string]*models.User
	likes   map[string][]models.Like // by actor id, in insertion order
	matches map[string]*models.Match
	pairs   map[[2]string]string // ordered pair -> match id
	rooms   map[string][]models.Message // by chat room id, in insertion order
}

// NewDB creates an empty in-memory database
func NewDB() *DB {
	return &DB{
		users:   make(map[string]*models.User),
		likes:   make(map[string][]models.Like),
		matches: make(map[string]*models.Match),
		pairs:   make(map[[2]string]string),
		rooms:   make(map[string][]models.Message),
	}
}

func pairKey(a, b string) [2]string {
	userA, userB := models.OrderPair(a, b)
	return [2]string{userA, userB}
}

// userLocked returns a copy of a stored user with likes and matches filled in.
// The caller must hold db.mu.
func (db *DB) userLocked(u *models.User) *models.User {
	out := *u
	if u.PushToken != nil {
		token := *u.PushToken
		out.PushToken = &token
	}

	out.Likes = make([]string, 0, len(db.likes[u.ID]))
	for _, l := range db.likes[u.ID] {
		out.Likes = append(out.Likes, l.TargetID)
	}

	matched := db.matchesOfLocked(u.ID, true)
	out.Matches = make([]string, 0, len(matched))
	for _, m := range matched {
		out.Matches = append(out.Matches, m.PartnerOf(u.ID))
	}

	return &out
}

// matchesOfLocked returns the records userID belongs to, oldest first
func (db *DB) matchesOfLocked(userID string, onlyMatched bool) []*models.Match {
	var out []*models.Match
	for _, m := range db.matches {
		if !m.HasMember(userID) {
			continue
		}
		if onlyMatched && m.Status != models.MatchStatusMatched {
			continue
		}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func copyMatch(m *models.Match) *models.Match {
	out := *m
	if m.ChatRoomID != nil {
		room := *m.ChatRoomID
		out.ChatRoomID = &room
	}
	return &out
}

func now() time.Time {
	return time.Now()
}

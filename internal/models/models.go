package models

import (
	"errors"
	"time"
)

// ErrInvalidPair is returned when a match would not have exactly two distinct members
var ErrInvalidPair = errors.New("a match must have exactly 2 distinct users")

// User represents a registered user
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	FullName     string    `json:"fullName"`
	PasswordHash string    `json:"-"`
	School       string    `json:"school"`
	Bio          string    `json:"bio"`
	ProfilePic   string    `json:"profilePic"`
	PushToken    *string   `json:"-"`
	Likes        []string  `json:"likes"`
	Matches      []string  `json:"matches"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// PublicProfile is the projection of a user shown to other users
type PublicProfile struct {
	ID         string    `json:"id"`
	Username   string    `json:"username"`
	FullName   string    `json:"fullName"`
	School     string    `json:"school"`
	Bio        string    `json:"bio"`
	ProfilePic string    `json:"profilePic"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Public returns the public projection of the user
func (u *User) Public() PublicProfile {
	return PublicProfile{
		ID:         u.ID,
		Username:   u.Username,
		FullName:   u.FullName,
		School:     u.School,
		Bio:        u.Bio,
		ProfilePic: u.ProfilePic,
		CreatedAt:  u.CreatedAt,
	}
}

// HasLiked reports whether the user has expressed interest in userID
func (u *User) HasLiked(userID string) bool {
	return contains(u.Likes, userID)
}

// IsMatchedWith reports whether the user is matched with userID
func (u *User) IsMatchedWith(userID string) bool {
	return contains(u.Matches, userID)
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// Like is a unilateral expression of interest
type Like struct {
	ActorID   string    `json:"actorId"`
	TargetID  string    `json:"targetId"`
	CreatedAt time.Time `json:"createdAt"`
}

// MatchStatus is the state of a match record
type MatchStatus string

const (
	MatchStatusMatched  MatchStatus = "matched"
	MatchStatusRejected MatchStatus = "rejected"
)

// Match represents a confirmed mutual match between two users.
// UserAID is always lexicographically smaller than UserBID.
type Match struct {
	ID         string      `json:"id"`
	UserAID    string      `json:"userAId"`
	UserBID    string      `json:"userBId"`
	Status     MatchStatus `json:"status"`
	ChatRoomID *string     `json:"chatRoomId,omitempty"`
	CreatedAt  time.Time   `json:"createdAt"`
	UpdatedAt  time.Time   `json:"updatedAt"`
}

// OrderPair returns the two ids in canonical order
func OrderPair(a, b string) (string, string) {
	if a > b {
		return b, a
	}
	return a, b
}

// NewMatch builds a matched record for the unordered pair {a, b}
func NewMatch(id, a, b string, now time.Time) (*Match, error) {
	if a == "" || b == "" || a == b {
		return nil, ErrInvalidPair
	}
	userA, userB := OrderPair(a, b)
	return &Match{
		ID:        id,
		UserAID:   userA,
		UserBID:   userB,
		Status:    MatchStatusMatched,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Users returns both members of the match
func (m *Match) Users() []string {
	return []string{m.UserAID, m.UserBID}
}

// HasMember reports whether userID is one of the two members
func (m *Match) HasMember(userID string) bool {
	return m.UserAID == userID || m.UserBID == userID
}

// PartnerOf returns the other member of the match
func (m *Match) PartnerOf(userID string) string {
	if m.UserAID == userID {
		return m.UserBID
	}
	return m.UserAID
}

// Message is a direct message between two matched users.
// ChatRoomID is the thread referenced by their match record.
type Message struct {
	ID         string    `json:"id"`
	ChatRoomID string    `json:"chatRoomId"`
	SenderID   string    `json:"senderId"`
	ReceiverID string    `json:"receiverId"`
	Text       string    `json:"text"`
	Image      string    `json:"image,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

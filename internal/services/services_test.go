package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"campus-match-backend/internal/models"
	"campus-match-backend/internal/repository/memory"

	"github.com/stretchr/testify/require"
)

type testEnv struct {
	db       *memory.DB
	users    *memory.UserRepository
	likes    *memory.LikeRepository
	matches  *memory.MatchRepository
	messages *memory.MessageRepository
}

func newTestEnv() *testEnv {
	db := memory.NewDB()
	return &testEnv{
		db:       db,
		users:    memory.NewUserRepository(db),
		likes:    memory.NewLikeRepository(db),
		matches:  memory.NewMatchRepository(db),
		messages: memory.NewMessageRepository(db),
	}
}

var seedClock = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func (e *testEnv) addUser(t *testing.T, id, school string) {
	t.Helper()
	seedClock = seedClock.Add(time.Second)
	err := e.users.Create(context.Background(), &models.User{
		ID:        id,
		Username:  "user_" + id,
		Email:     id + "@example.com",
		FullName:  "User " + id,
		School:    school,
		CreatedAt: seedClock,
		UpdatedAt: seedClock,
	})
	require.NoError(t, err)
}

func (e *testEnv) user(t *testing.T, id string) *models.User {
	t.Helper()
	u, err := e.users.GetByID(context.Background(), id)
	require.NoError(t, err)
	return u
}

func (e *testEnv) matchService() *MatchService {
	return NewMatchService(e.users, e.likes, e.matches)
}

// flakyMatches fails the first n Create calls
type flakyMatches struct {
	MatchStore
	mu    sync.Mutex
	fails int
}

func (f *flakyMatches) Create(ctx context.Context, match *models.Match) error {
	f.mu.Lock()
	if f.fails > 0 {
		f.fails--
		f.mu.Unlock()
		return errors.New("connection reset")
	}
	f.mu.Unlock()
	return f.MatchStore.Create(ctx, match)
}

// brokenUsers fails every read
type brokenUsers struct {
	UserStore
}

func (brokenUsers) GetByID(ctx context.Context, id string) (*models.User, error) {
	return nil, errors.New("connection refused")
}

// slowLikes delays every Add, like a store across the network
type slowLikes struct {
	LikeStore
	delay time.Duration
}

func (s slowLikes) Add(ctx context.Context, actorID, targetID string) (bool, error) {
	time.Sleep(s.delay)
	return s.LikeStore.Add(ctx, actorID, targetID)
}

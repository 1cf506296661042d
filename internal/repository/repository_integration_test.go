//go:build integration

package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"campus-match-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Run with: CAMPUS_MATCH_TEST_DSN=postgres://... go test -tags integration ./internal/repository/
func openTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("CAMPUS_MATCH_TEST_DSN")
	if dsn == "" {
		t.Skip("CAMPUS_MATCH_TEST_DSN not set")
	}

	ctx := context.Background()
	db, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(db.Close)

	require.NoError(t, Migrate(ctx, db))
	// twice, migrations are idempotent
	require.NoError(t, Migrate(ctx, db))

	_, err = db.Exec(ctx, `TRUNCATE messages, matches, likes, users`)
	require.NoError(t, err)
	return db
}

func seedUser(t *testing.T, users *UserRepository, id, school string, created time.Time) {
	t.Helper()
	err := users.Create(context.Background(), &models.User{
		ID:        id,
		Username:  "user_" + id,
		Email:     id + "@example.com",
		FullName:  "User " + id,
		School:    school,
		CreatedAt: created,
		UpdatedAt: created,
	})
	require.NoError(t, err)
}

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	users := NewUserRepository(db)
	base := time.Now().UTC().Truncate(time.Millisecond)

	seedUser(t, users, "u1", "X", base)
	seedUser(t, users, "u2", "X", base.Add(time.Second))
	seedUser(t, users, "u3", "Y", base.Add(2*time.Second))

	t.Run("rejects duplicate username", func(t *testing.T) {
		err := users.Create(ctx, &models.User{
			ID: "u9", Username: "user_u1", Email: "other@example.com", FullName: "x", School: "X",
			CreatedAt: base, UpdatedAt: base,
		})
		assert.ErrorIs(t, err, ErrDuplicate)
	})

	t.Run("missing user", func(t *testing.T) {
		_, err := users.GetByID(ctx, "nope")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("new user has empty likes and matches", func(t *testing.T) {
		u, err := users.GetByID(ctx, "u1")
		require.NoError(t, err)
		assert.Empty(t, u.Likes)
		assert.Empty(t, u.Matches)
	})

	t.Run("lists by school in creation order", func(t *testing.T) {
		list, err := users.ListBySchool(ctx, "X")
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "u1", list[0].ID)
		assert.Equal(t, "u2", list[1].ID)
	})

	t.Run("by username", func(t *testing.T) {
		u, err := users.GetByUsername(ctx, "user_u2")
		require.NoError(t, err)
		assert.Equal(t, "u2", u.ID)
	})

	t.Run("push token", func(t *testing.T) {
		token := "device-token"
		require.NoError(t, users.UpdatePushToken(ctx, "u1", &token))
		u, err := users.GetByID(ctx, "u1")
		require.NoError(t, err)
		require.NotNil(t, u.PushToken)
		assert.Equal(t, token, *u.PushToken)

		assert.ErrorIs(t, users.UpdatePushToken(ctx, "missing", &token), ErrNotFound)
	})
}

func TestLikesAndMatchesDerivation(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	users := NewUserRepository(db)
	likes := NewLikeRepository(db)
	matches := NewMatchRepository(db)
	now := time.Now().UTC().Truncate(time.Millisecond)

	seedUser(t, users, "u1", "X", now)
	seedUser(t, users, "u2", "X", now)

	added, err := likes.Add(ctx, "u1", "u2")
	require.NoError(t, err)
	assert.True(t, added)

	added, err = likes.Add(ctx, "u1", "u2")
	require.NoError(t, err)
	assert.False(t, added)

	exists, err := likes.Exists(ctx, "u2", "u1")
	require.NoError(t, err)
	assert.False(t, exists)

	m, err := models.NewMatch("m1", "u2", "u1", now)
	require.NoError(t, err)
	require.NoError(t, matches.Create(ctx, m))

	dup, err := models.NewMatch("m2", "u1", "u2", now)
	require.NoError(t, err)
	assert.ErrorIs(t, matches.Create(ctx, dup), ErrDuplicate)

	u1, err := users.GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"u2"}, u1.Likes)
	assert.Equal(t, []string{"u2"}, u1.Matches)

	u2, err := users.GetByID(ctx, "u2")
	require.NoError(t, err)
	assert.Empty(t, u2.Likes)
	assert.Equal(t, []string{"u1"}, u2.Matches)

	matched, err := users.ListMatchedWith(ctx, "u2")
	require.NoError(t, err)
	require.Len(t, matched, 1)
	assert.Equal(t, "u1", matched[0].ID)

	t.Run("chat room is attached once", func(t *testing.T) {
		room, err := matches.AttachChatRoom(ctx, "m1", "room-1", time.Now())
		require.NoError(t, err)
		assert.Equal(t, "room-1", room)

		room, err = matches.AttachChatRoom(ctx, "m1", "room-2", time.Now())
		require.NoError(t, err)
		assert.Equal(t, "room-1", room)

		_, err = matches.AttachChatRoom(ctx, "missing", "room-3", time.Now())
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("rejected matches are not derived", func(t *testing.T) {
		err := matches.UpdateStatus(ctx, "m1", models.MatchStatusMatched, models.MatchStatusRejected, time.Now())
		require.NoError(t, err)

		err = matches.UpdateStatus(ctx, "m1", models.MatchStatusMatched, models.MatchStatusRejected, time.Now())
		assert.ErrorIs(t, err, ErrNotFound)

		u1, err := users.GetByID(ctx, "u1")
		require.NoError(t, err)
		assert.Empty(t, u1.Matches)

		byPair, err := matches.GetByPair(ctx, "u2", "u1")
		require.NoError(t, err)
		assert.Equal(t, models.MatchStatusRejected, byPair.Status)
		require.NotNil(t, byPair.ChatRoomID)
		assert.Equal(t, "room-1", *byPair.ChatRoomID)

		all, err := matches.ListByUser(ctx, "u1")
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})
}

func TestMessagesAndCascade(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	users := NewUserRepository(db)
	likes := NewLikeRepository(db)
	matches := NewMatchRepository(db)
	messages := NewMessageRepository(db)
	now := time.Now().UTC().Truncate(time.Millisecond)

	seedUser(t, users, "u1", "X", now)
	seedUser(t, users, "u2", "X", now)

	_, err := likes.Add(ctx, "u1", "u2")
	require.NoError(t, err)
	_, err = likes.Add(ctx, "u2", "u1")
	require.NoError(t, err)
	m, err := models.NewMatch("m1", "u1", "u2", now)
	require.NoError(t, err)
	require.NoError(t, matches.Create(ctx, m))

	for i, text := range []string{"first", "second", "third"} {
		sender, receiver := "u1", "u2"
		if i == 1 {
			sender, receiver = receiver, sender
		}
		require.NoError(t, messages.Create(ctx, &models.Message{
			ID:         "msg" + text,
			ChatRoomID: "room-1",
			SenderID:   sender,
			ReceiverID: receiver,
			Text:       text,
			CreatedAt:  now.Add(time.Duration(i) * time.Second),
		}))
	}

	history, err := messages.ListByChatRoom(ctx, "room-1")
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, "first", history[0].Text)
	assert.Equal(t, "second", history[1].Text)
	assert.Equal(t, "u2", history[1].SenderID)
	assert.Equal(t, "third", history[2].Text)

	require.NoError(t, users.Delete(ctx, "u2"))

	u1, err := users.GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, u1.Likes)
	assert.Empty(t, u1.Matches)

	_, err = matches.GetByID(ctx, "m1")
	assert.ErrorIs(t, err, ErrNotFound)

	history, err = messages.ListByChatRoom(ctx, "room-1")
	require.NoError(t, err)
	assert.Empty(t, history)

	assert.ErrorIs(t, users.Delete(ctx, "u2"), ErrNotFound)
}

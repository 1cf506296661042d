package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"campus-match-backend/internal/models"
	"campus-match-backend/internal/repository/memory"
	"campus-match-backend/internal/services"

	"github.com/stretchr/testify/require"
)

type pushCall struct {
	recipientID string
	partnerID   string
}

type fakeNotifier struct {
	calls chan pushCall
}

func (f *fakeNotifier) NotifyMatch(ctx context.Context, recipient *models.User, partner models.PublicProfile) error {
	f.calls <- pushCall{recipientID: recipient.ID, partnerID: partner.ID}
	return nil
}

type fakeUploader struct{}

func (fakeUploader) CreateUploadURL(ctx context.Context, userID, contentType string) (*services.UploadResponse, error) {
	return &services.UploadResponse{
		UploadURL:  "https://upload.example.com/" + userID,
		PictureURL: "https://cdn.example.com/" + userID + ".jpg",
		ExpiresIn:  300,
	}, nil
}

type testServer struct {
	router   http.Handler
	hub      *services.WSHub
	notifier *fakeNotifier
}

func newTestServer(t *testing.T, pictures PictureUploader) *testServer {
	t.Helper()
	db := memory.NewDB()
	users := memory.NewUserRepository(db)
	likes := memory.NewLikeRepository(db)
	matches := memory.NewMatchRepository(db)

	userService := services.NewUserService(users, "test-secret", time.Hour)
	matchService := services.NewMatchService(users, likes, matches)
	hub := services.NewWSHub()
	notifier := &fakeNotifier{calls: make(chan pushCall, 10)}

	router := NewRouter(RouterConfig{
		UserService:    userService,
		MatchService:   matchService,
		MessageService: services.NewMessageService(users, matchService, memory.NewMessageRepository(db)),
		Candidates:     services.NewCandidateSelector(users),
		Pictures:       pictures,
		Hub:            hub,
		Notifier:       notifier,
		AllowedOrigins: []string{"http://localhost:5173"},
	})

	return &testServer{router: router, hub: hub, notifier: notifier}
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

type session struct {
	id    string
	token string
}

func (s *testServer) signup(t *testing.T, username, school string) session {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/auth/signup", "", services.SignupRequest{
		Username: username,
		FullName: "Full " + username,
		Email:    username + "@example.com",
		Password: "secret123",
		School:   school,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var res SessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	return session{id: res.User.ID, token: res.Token}
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

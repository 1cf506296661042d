package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"campus-match-backend/internal/middleware"
	"campus-match-backend/internal/models"
	"campus-match-backend/internal/services"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthFlow(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(t, http.MethodPost, "/api/auth/signup", "", services.SignupRequest{
		Username: "alice1",
		FullName: "Alice",
		Email:    "alice@example.com",
		Password: "secret123",
		School:   "X",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.NotContains(t, rec.Body.String(), "passwordHash")

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, middleware.SessionCookie, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	t.Run("duplicate username", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/api/auth/signup", "", services.SignupRequest{
			Username: "alice1",
			FullName: "Other Alice",
			Email:    "other@example.com",
			Password: "secret123",
			School:   "X",
		})
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("short password", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/api/auth/signup", "", services.SignupRequest{
			Username: "bobby1",
			FullName: "Bob",
			Email:    "bob@example.com",
			Password: "123",
			School:   "X",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "password must be at least 6 characters", decode[ErrorResponse](t, rec).Error)
	})

	t.Run("login", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/api/auth/login", "", LoginRequest{Username: "alice1", Password: "secret123"})
		require.Equal(t, http.StatusOK, rec.Code)
		res := decode[SessionResponse](t, rec)
		assert.NotEmpty(t, res.Token)

		rec = s.do(t, http.MethodGet, "/api/auth/check", res.Token, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "alice1", decode[models.User](t, rec).Username)
	})

	t.Run("wrong password", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/api/auth/login", "", LoginRequest{Username: "alice1", Password: "nope123"})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Invalid credentials", decode[ErrorResponse](t, rec).Error)
	})

	t.Run("invalid token", func(t *testing.T) {
		rec := s.do(t, http.MethodGet, "/api/auth/check", "garbage", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Unauthorized - Invalid Token", decode[ErrorResponse](t, rec).Error)
	})

	t.Run("logout clears cookie", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/api/auth/logout", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		cookies := rec.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, "", cookies[0].Value)
	})
}

func TestProfileEndpoints(t *testing.T) {
	s := newTestServer(t, nil)
	alice := s.signup(t, "alice1", "X")
	bobby := s.signup(t, "bobby1", "X")

	bio := "Loves hiking"
	rec := s.do(t, http.MethodPut, "/api/users/me", alice.token, services.UpdateProfileRequest{Bio: &bio})
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decode[models.User](t, rec)
	assert.Equal(t, bio, updated.Bio)
	assert.Equal(t, "Full alice1", updated.FullName)

	rec = s.do(t, http.MethodGet, "/api/users/"+alice.id, bobby.token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	profile := decode[map[string]any](t, rec)
	assert.Equal(t, bio, profile["bio"])
	assert.NotContains(t, profile, "email")

	rec = s.do(t, http.MethodGet, "/api/users/nobody", bobby.token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	token := "device-token"
	rec = s.do(t, http.MethodPut, "/api/users/me/push-token", alice.token, PushTokenRequest{PushToken: &token})
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestUploadPicture(t *testing.T) {
	t.Run("not configured", func(t *testing.T) {
		s := newTestServer(t, nil)
		alice := s.signup(t, "alice1", "X")

		rec := s.do(t, http.MethodPost, "/api/users/me/picture", alice.token, PictureUploadRequest{ContentType: "image/jpeg"})
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("presigned", func(t *testing.T) {
		s := newTestServer(t, fakeUploader{})
		alice := s.signup(t, "alice1", "X")

		rec := s.do(t, http.MethodPost, "/api/users/me/picture", alice.token, PictureUploadRequest{ContentType: "image/jpeg"})
		require.Equal(t, http.StatusOK, rec.Code)
		res := decode[services.UploadResponse](t, rec)
		assert.Equal(t, "https://upload.example.com/"+alice.id, res.UploadURL)
		assert.Equal(t, 300, res.ExpiresIn)
	})
}

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	previous := log.Logger
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() { log.Logger = previous })
	return &buf
}

func logLevelOf(t *testing.T, buf *bytes.Buffer, message string) string {
	t.Helper()
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var entry map[string]any
		if json.Unmarshal([]byte(line), &entry) == nil && entry["message"] == message {
			return entry["level"].(string)
		}
	}
	t.Fatalf("no %q log entry in %s", message, buf.String())
	return ""
}

func TestSignupFailureLogLevel(t *testing.T) {
	s := newTestServer(t, nil)
	s.signup(t, "alice1", "X")

	t.Run("duplicate username is a client error", func(t *testing.T) {
		buf := captureLogs(t)
		rec := s.do(t, http.MethodPost, "/api/auth/signup", "", services.SignupRequest{
			Username: "alice1",
			FullName: "Other Alice",
			Email:    "other@example.com",
			Password: "secret123",
			School:   "X",
		})
		require.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, "info", logLevelOf(t, buf, "Failed to sign up"))
	})

	t.Run("validation failure is a client error", func(t *testing.T) {
		buf := captureLogs(t)
		rec := s.do(t, http.MethodPost, "/api/auth/signup", "", services.SignupRequest{Username: "bob"})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "info", logLevelOf(t, buf, "Failed to sign up"))
	})
}

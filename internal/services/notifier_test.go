package services

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"campus-match-backend/internal/models"

	"github.com/sideshow/apns2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPNsNotifier(t *testing.T) {
	var gotPath, gotTopic string
	var gotBody map[string]any
	status := http.StatusOK

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotTopic = r.Header.Get("apns-topic")
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &gotBody)
		w.Header().Set("apns-id", "push-1")
		w.WriteHeader(status)
		if status != http.StatusOK {
			w.Write([]byte(`{"reason":"BadDeviceToken"}`))
		}
	}))
	defer server.Close()

	client := &apns2.Client{Host: server.URL, HTTPClient: server.Client()}
	notifier := newAPNsNotifier(client, "com.example.match")

	token := "device-abc"
	recipient := &models.User{ID: "u1", PushToken: &token}
	partner := models.PublicProfile{ID: "u2", FullName: "Bob"}

	t.Run("sends alert", func(t *testing.T) {
		require.NoError(t, notifier.NotifyMatch(context.Background(), recipient, partner))
		assert.Equal(t, "/3/device/device-abc", gotPath)
		assert.Equal(t, "com.example.match", gotTopic)
		assert.Equal(t, "u2", gotBody["partner_id"])
	})

	t.Run("reports rejection", func(t *testing.T) {
		status = http.StatusBadRequest
		err := notifier.NotifyMatch(context.Background(), recipient, partner)
		assert.ErrorContains(t, err, "BadDeviceToken")
	})

	t.Run("skips users without a token", func(t *testing.T) {
		gotPath = ""
		require.NoError(t, notifier.NotifyMatch(context.Background(), &models.User{ID: "u3"}, partner))
		assert.Empty(t, gotPath)
	})
}

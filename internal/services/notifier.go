package services

import (
	"context"
	"fmt"

	"campus-match-backend/internal/models"

	"github.com/rs/zerolog/log"
	"github.com/sideshow/apns2"
	"github.com/sideshow/apns2/payload"
	"github.com/sideshow/apns2/token"
)

// Notifier delivers out-of-band match notifications
type Notifier interface {
	NotifyMatch(ctx context.Context, recipient *models.User, partner models.PublicProfile) error
}

// NoopNotifier drops every notification
type NoopNotifier struct{}

// NotifyMatch does nothing
func (NoopNotifier) NotifyMatch(context.Context, *models.User, models.PublicProfile) error {
	return nil
}

// APNsConfig configures token based APNs authentication
type APNsConfig struct {
	KeyPath    string
	KeyID      string
	TeamID     string
	Topic      string
	Production bool
}

// APNsNotifier pushes match alerts to iOS devices
type APNsNotifier struct {
	client *apns2.Client
	topic  string
}

// NewAPNsNotifier creates a notifier from a .p8 signing key
func NewAPNsNotifier(cfg APNsConfig) (*APNsNotifier, error) {
	authKey, err := token.AuthKeyFromFile(cfg.KeyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load APNs key: %w", err)
	}

	client := apns2.NewTokenClient(&token.Token{
		AuthKey: authKey,
		KeyID:   cfg.KeyID,
		TeamID:  cfg.TeamID,
	})
	if cfg.Production {
		client = client.Production()
	} else {
		client = client.Development()
	}

	return newAPNsNotifier(client, cfg.Topic), nil
}

func newAPNsNotifier(client *apns2.Client, topic string) *APNsNotifier {
	return &APNsNotifier{client: client, topic: topic}
}

// NotifyMatch sends an alert to the recipient's registered device, if any
func (n *APNsNotifier) NotifyMatch(ctx context.Context, recipient *models.User, partner models.PublicProfile) error {
	if recipient.PushToken == nil || *recipient.PushToken == "" {
		return nil
	}

	p := payload.NewPayload().
		AlertTitle("It's a match!").
		AlertBody(fmt.Sprintf("You and %s liked each other", partner.FullName)).
		Sound("default").
		Custom("partner_id", partner.ID)

	notification := &apns2.Notification{
		DeviceToken: *recipient.PushToken,
		Topic:       n.topic,
		Payload:     p,
	}

	res, err := n.client.PushWithContext(ctx, notification)
	if err != nil {
		return fmt.Errorf("failed to push notification: %w", err)
	}
	if !res.Sent() {
		return fmt.Errorf("push rejected: %d %s", res.StatusCode, res.Reason)
	}

	log.Debug().
		Str("user_id", recipient.ID).
		Str("apns_id", res.ApnsID).
		Msg("Match push sent")

	return nil
}

package services

import (
	"fmt"

	"homescout/internal/config"

	"github.com/rs/zerolog/log"
	"github.com/sideshow/apns2"
	"github.com/sideshow/apns2/payload"
	"github.com/sideshow/apns2/token"
)

// Notifier sends APNs pushes to devices of users who are not connected.
// With no key configured it is a no-op, so local setups work without Apple
// credentials.
type Notifier struct {
	client *apns2.Client
	topic  string
}

// NewNotifier creates a notifier from APNs credentials.
func NewNotifier(cfg config.APNsConfig) (*Notifier, error) {
	if cfg.KeyFile == "" {
		log.Info().Msg("APNs not configured, push notifications disabled")
		return &Notifier{}, nil
	}

	authKey, err := token.AuthKeyFromFile(cfg.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load APNs key: %w", err)
	}

	tok := &token.Token{
		AuthKey: authKey,
		KeyID:   cfg.KeyID,
		TeamID:  cfg.TeamID,
	}
	client := apns2.NewTokenClient(tok)
	if cfg.Production {
		client = client.Production()
	} else {
		client = client.Development()
	}

	return &Notifier{client: client, topic: cfg.Topic}, nil
}

// Notify pushes an alert to a device token. Best-effort by contract: callers
// log and ignore the error.
func (n *Notifier) Notify(deviceToken, title, body string) error {
	if n.client == nil || deviceToken == "" {
		return nil
	}

	notification := &apns2.Notification{
		DeviceToken: deviceToken,
		Topic:       n.topic,
		Payload:     payload.NewPayload().AlertTitle(title).AlertBody(body),
	}

	res, err := n.client.Push(notification)
	if err != nil {
		return fmt.Errorf("failed to push notification: %w", err)
	}
	if !res.Sent() {
		return fmt.Errorf("notification rejected: %s", res.Reason)
	}
	return nil
}

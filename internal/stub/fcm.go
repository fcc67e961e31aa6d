package stub

import (
	"context"
	"log"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// FCMSender forwards pushes to real devices through Firebase Cloud Messaging.
// The stub normally delivers over its WebSocket relay only; configure a
// service account to additionally reach devices registered with real FCM
// tokens. Returns nil when unconfigured; methods no-op on a nil receiver.
type FCMSender struct {
	client *messaging.Client
}

func NewFCMSender(serviceAccountPath string) *FCMSender {
	if serviceAccountPath == "" {
		return nil
	}
	ctx := context.Background()
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(serviceAccountPath))
	if err != nil {
		log.Printf("[FCM] failed to init Firebase app: %v", err)
		return nil
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		log.Printf("[FCM] failed to get Messaging client: %v", err)
		return nil
	}
	return &FCMSender{client: client}
}

// Send pushes one message to the given FCM token.
func (s *FCMSender) Send(ctx context.Context, token, title, body string, data map[string]string) {
	if s == nil || token == "" {
		return
	}
	msg := &messaging.Message{
		Notification: &messaging.Notification{Title: title, Body: body},
		Data:         data,
		Token:        token,
		Android: &messaging.AndroidConfig{
			Priority:     "high",
			Notification: &messaging.AndroidNotification{Sound: "default"},
		},
		APNS: &messaging.APNSConfig{
			Payload: &messaging.APNSPayload{Aps: &messaging.Aps{Sound: "default"}},
		},
	}
	if _, err := s.client.Send(ctx, msg); err != nil {
		log.Printf("[FCM] send error: %v", err)
	}
}

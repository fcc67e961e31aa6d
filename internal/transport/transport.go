// Package transport abstracts the push-delivery platform: permission prompt,
// credential issuance, and foreground message delivery. Background delivery is
// the platform's own concern and never reaches this process.
package transport

import (
	"context"
	"errors"
)

// Message is a raw push payload delivered while the application is in the
// foreground. Data carries the backend's string-to-string payload; the
// "type" key selects the notification type.
type Message struct {
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data"`
}

var (
	// ErrPermissionDenied means the user declined notifications. Recoverable;
	// the feature degrades silently.
	ErrPermissionDenied = errors.New("notification permission denied")
	// ErrTokenUnavailable means the transport could not issue a credential.
	ErrTokenUnavailable = errors.New("push token unavailable")
)

// Transport is the capability surface of the underlying push platform.
type Transport interface {
	// RequestPermission asks for notification permission. Denial is a normal
	// outcome, not an error.
	RequestPermission(ctx context.Context) (bool, error)
	// Token returns a device push credential. Tokens rotate under the
	// transport's control; callers re-fetch rather than detect staleness.
	Token(ctx context.Context) (string, error)
	// Listen registers fn for foreground messages and returns a stop function.
	// Implementations deliver each message at most once per Listen call.
	Listen(ctx context.Context, fn func(Message)) (stop func(), err error)
}

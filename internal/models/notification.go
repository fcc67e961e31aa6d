package models

import "time"

// Notification is a server-persisted notification record as returned by the
// backend. The client never creates these locally; it only caches the most
// recent few and mutates read state through the API.
type Notification struct {
	ID                string    `json:"id"`
	NotificationType  string    `json:"notificationType"`
	Title             string    `json:"title"`
	Body              string    `json:"body"`
	SentAt            time.Time `json:"sentAt"`
	IsRead            bool      `json:"isRead"`
	RecipientUserID   string    `json:"recipientUserId"`
	RecipientUserType string    `json:"recipientUserType"`
}

// Event is the ephemeral in-process value synthesized from a raw push
// payload. It lives only for the duration of fan-out to subscribers.
type Event struct {
	Type  string
	Title string
	Body  string
	Data  map[string]string
}

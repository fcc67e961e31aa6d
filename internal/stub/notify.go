package stub

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"hrpulse/internal/domain"
)

// pushPayload is the wire shape of a foreground push frame. It matches the
// client transport's Message.
type pushPayload struct {
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data"`
}

// notifier persists a ledger entry and fans the push out over the relay and,
// when configured, real FCM.
type notifier struct {
	db    *gorm.DB
	relay *Relay
	fcm   *FCMSender
}

// notify writes the notification record for the recipient and delivers a push
// to the supplied token. The sentinel token skips delivery; the record is
// still persisted so the next sync picks it up.
func (n *notifier) notify(ctx context.Context, recipientID, recipientType, token, ntype, title, body string) Notification {
	rec := Notification{
		ID:                uuid.NewString(),
		NotificationType:  ntype,
		Title:             title,
		Body:              body,
		SentAt:            time.Now(),
		RecipientUserID:   recipientID,
		RecipientUserType: recipientType,
	}
	if err := n.db.Create(&rec).Error; err != nil {
		log.Printf("[Stub] persist notification: %v", err)
		return rec
	}
	n.push(ctx, token, &rec)
	return rec
}

// broadcastToEmployees notifies every registered employee device. The real
// backend scopes this to the subadmin's company; the stub has no org chart and
// reaches all employees.
func (n *notifier) broadcastToEmployees(ctx context.Context, ntype, title, body string) int {
	var subs []Subscription
	if err := n.db.Where("user_type = ?", domain.UserTypeEmployee).Find(&subs).Error; err != nil {
		log.Printf("[Stub] list employee subscriptions: %v", err)
		return 0
	}
	seen := make(map[string]struct{})
	for _, sub := range subs {
		if _, dup := seen[sub.UserID]; dup {
			continue
		}
		seen[sub.UserID] = struct{}{}
		n.notify(ctx, sub.UserID, sub.UserType, sub.Token, ntype, title, body)
	}
	return len(seen)
}

func (n *notifier) push(ctx context.Context, token string, rec *Notification) {
	if token == "" || token == domain.SentinelToken {
		return
	}
	data := map[string]string{
		"type":           rec.NotificationType,
		"notificationId": rec.ID,
	}
	n.relay.Send(token, pushPayload{Title: rec.Title, Body: rec.Body, Data: data})
	n.fcm.Send(ctx, token, rec.Title, rec.Body, data)
}

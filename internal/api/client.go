// Package api is the typed client for the HR backend's push/notification REST
// contract. The backend owns all persistence; this client never interprets the
// token path segments it forwards on domain actions.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"hrpulse/internal/models"

	"github.com/go-resty/resty/v2"
)

type Client struct {
	r *resty.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	r := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json")
	return &Client{r: r}
}

// WithAuth sets the bearer token used on subsequent requests.
func (c *Client) WithAuth(accessToken string) *Client {
	c.r.SetAuthToken(accessToken)
	return c
}

// RegisterToken associates a device push token with (userID, userType).
// Re-registering the same tuple is safe; the backend overwrites.
func (c *Client) RegisterToken(ctx context.Context, token, userID, userType string) error {
	resp, err := c.r.R().
		SetContext(ctx).
		SetBody(map[string]string{"token": token, "userId": userID, "userType": userType}).
		Post("/fcm/register-token")
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("register token: %s", resp.Status())
	}
	return nil
}

// Recent returns the most-recent-first notifications for the user.
func (c *Client) Recent(ctx context.Context, userType, userID string, limit int) ([]models.Notification, error) {
	var out struct {
		Notifications []models.Notification `json:"notifications"`
	}
	resp, err := c.r.R().
		SetContext(ctx).
		SetQueryParam("limit", fmt.Sprintf("%d", limit)).
		SetResult(&out).
		Get("/fcm/notifications/" + userType + "/" + userID)
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("fetch notifications: %s", resp.Status())
	}
	return out.Notifications, nil
}

// UnreadCount returns the authoritative unread count for the user.
func (c *Client) UnreadCount(ctx context.Context, userType, userID string) (int, error) {
	var out struct {
		Count int `json:"count"`
	}
	resp, err := c.r.R().
		SetContext(ctx).
		SetResult(&out).
		Get("/fcm/notifications/" + userType + "/" + userID + "/unread-count")
	if err != nil {
		return 0, err
	}
	if resp.IsError() {
		return 0, fmt.Errorf("fetch unread count: %s", resp.Status())
	}
	return out.Count, nil
}

// MarkRead marks one notification read. A record already gone server-side is
// success: multiple tabs or devices may race on the same record.
func (c *Client) MarkRead(ctx context.Context, id string) error {
	resp, err := c.r.R().SetContext(ctx).Put("/fcm/notifications/" + id + "/mark-read")
	if err != nil {
		return err
	}
	if resp.IsError() && resp.StatusCode() != http.StatusNotFound {
		return fmt.Errorf("mark read: %s", resp.Status())
	}
	return nil
}

// MarkAllRead marks every notification for the user read and returns how many
// records the backend touched. An empty target set is a no-op, not an error.
func (c *Client) MarkAllRead(ctx context.Context, userType, userID string) (int, error) {
	var out struct {
		Count int `json:"count"`
	}
	resp, err := c.r.R().
		SetContext(ctx).
		SetBody(map[string]string{"userType": userType, "userId": userID}).
		SetResult(&out).
		Put("/fcm/notifications/mark-all-read")
	if err != nil {
		return 0, err
	}
	if resp.IsError() {
		return 0, fmt.Errorf("mark all read: %s", resp.Status())
	}
	return out.Count, nil
}

// Delete removes one notification. Missing records are success, as MarkRead.
func (c *Client) Delete(ctx context.Context, id string) error {
	var out struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	resp, err := c.r.R().SetContext(ctx).SetResult(&out).Delete("/fcm/notifications/" + id)
	if err != nil {
		return err
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil
	}
	if resp.IsError() || (!out.Success && out.Error != "") {
		return fmt.Errorf("delete notification: %s", resp.Status())
	}
	return nil
}

// DeleteBatch removes several notifications and returns how many existed
// server-side. Members already deleted elsewhere don't fail the batch.
func (c *Client) DeleteBatch(ctx context.Context, ids []string) (int, error) {
	var out struct {
		Success      bool   `json:"success"`
		DeletedCount int    `json:"deletedCount"`
		Error        string `json:"error"`
	}
	resp, err := c.r.R().
		SetContext(ctx).
		SetBody(map[string][]string{"notificationIds": ids}).
		SetResult(&out).
		Delete("/fcm/notifications/batch")
	if err != nil {
		return 0, err
	}
	if resp.IsError() || (!out.Success && out.Error != "") {
		return 0, fmt.Errorf("delete batch: %s", resp.Status())
	}
	return out.DeletedCount, nil
}

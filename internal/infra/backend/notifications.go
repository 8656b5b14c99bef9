package backend

import (
	"context"
	"fmt"
	"net/http"

	"github.com/edumarques81/vibesync-player/internal/domain/catalog"
)

// Notifications lists the signed-in user's notifications.
func (c *Client) Notifications(ctx context.Context) ([]catalog.Notification, error) {
	list, _, err := getList[catalog.Notification](ctx, c, "/api/notifications/", "notifications", nil)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return list, nil
}

// CreateNotification stores a notification for any user and returns it
// as saved.
func (c *Client) CreateNotification(ctx context.Context, n catalog.NewNotification) (*catalog.Notification, error) {
	var out catalog.Notification
	if err := c.send(ctx, http.MethodPost, "/api/notifications", n, &out); err != nil {
		return nil, fmt.Errorf("create notification for %s: %w", n.UserID, err)
	}
	return &out, nil
}

// MarkNotificationRead flags a notification as read.
func (c *Client) MarkNotificationRead(ctx context.Context, id string) error {
	if err := c.send(ctx, http.MethodPost, resource("/api/notifications", id, "mark-read"), nil, nil); err != nil {
		return fmt.Errorf("mark notification %s read: %w", id, err)
	}
	return nil
}

// DeleteNotification removes a notification.
func (c *Client) DeleteNotification(ctx context.Context, id string) error {
	if err := c.send(ctx, http.MethodDelete, resource("/api/notifications", id), nil, nil); err != nil {
		return fmt.Errorf("delete notification %s: %w", id, err)
	}
	return nil
}

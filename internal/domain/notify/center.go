// Package notify keeps the signed-in user's notification list in sync
// with the backend and with locally raised notices.
package notify

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/edumarques81/vibesync-player/internal/domain/catalog"
)

const (
	// RoleChangedPrefix marks ids of notices that only exist locally.
	RoleChangedPrefix = "role-changed-"
	// ProfileLink is where a role change notice points.
	ProfileLink = "/profile"
)

// ErrUnknownNotification is returned for ids not in the list.
var ErrUnknownNotification = errors.New("unknown notification")

// Backend is the notification API.
type Backend interface {
	Notifications(ctx context.Context) ([]catalog.Notification, error)
	MarkNotificationRead(ctx context.Context, id string) error
	DeleteNotification(ctx context.Context, id string) error
}

// RoleChanges hands out a pending role change message once.
type RoleChanges interface {
	TakeRoleChanged() (string, bool, error)
}

// Center is the notification list, newest first.
type Center struct {
	mu      sync.RWMutex
	items   []catalog.Notification
	backend Backend
	roles   RoleChanges
	now     func() time.Time
}

// NewCenter creates an empty center. roles may be nil.
func NewCenter(b Backend, roles RoleChanges) *Center {
	return &Center{backend: b, roles: roles, now: time.Now}
}

// IsLocal reports whether id was raised locally and is unknown to the
// backend.
func IsLocal(id string) bool {
	return strings.HasPrefix(id, RoleChangedPrefix)
}

// Load replaces the list with the backend's, then prepends a pending
// role change notice. A failed fetch keeps the previous list.
func (c *Center) Load(ctx context.Context) error {
	fetched, fetchErr := c.backend.Notifications(ctx)
	if fetchErr != nil {
		log.Error().Err(fetchErr).Msg("Error fetching notifications")
	}

	c.mu.Lock()
	if fetchErr == nil {
		c.items = slices.Clone(fetched)
	}
	c.mu.Unlock()

	if c.roles != nil {
		msg, ok, err := c.roles.TakeRoleChanged()
		switch {
		case err != nil:
			log.Warn().Err(err).Msg("Failed to read role change")
		case ok:
			now := c.now()
			c.Add(catalog.Notification{
				ID:        RoleChangedPrefix + uuid.NewString(),
				Message:   msg,
				Type:      catalog.NotificationRoleChanged,
				Link:      ProfileLink,
				CreatedAt: &now,
			})
		}
	}

	if fetchErr != nil {
		return fmt.Errorf("load notifications: %w", fetchErr)
	}
	return nil
}

// Add puts n at the top of the list.
func (c *Center) Add(n catalog.Notification) {
	c.mu.Lock()
	c.items = slices.Insert(c.items, 0, n)
	c.mu.Unlock()
}

// MarkAsRead flags id as read locally and, for server notifications,
// on the backend.
func (c *Center) MarkAsRead(ctx context.Context, id string) error {
	c.mu.Lock()
	i := c.indexLocked(id)
	if i >= 0 {
		c.items[i].Read = true
	}
	c.mu.Unlock()

	if i < 0 {
		return fmt.Errorf("mark %s read: %w", id, ErrUnknownNotification)
	}
	if IsLocal(id) {
		return nil
	}
	return c.backend.MarkNotificationRead(ctx, id)
}

// Remove drops id locally and, for server notifications, on the backend.
func (c *Center) Remove(ctx context.Context, id string) error {
	c.mu.Lock()
	i := c.indexLocked(id)
	if i >= 0 {
		c.items = slices.Delete(c.items, i, i+1)
	}
	c.mu.Unlock()

	if i < 0 {
		return fmt.Errorf("remove %s: %w", id, ErrUnknownNotification)
	}
	if IsLocal(id) {
		return nil
	}
	return c.backend.DeleteNotification(ctx, id)
}

// List returns a copy of the notifications, newest first.
func (c *Center) List() []catalog.Notification {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := slices.Clone(c.items)
	if out == nil {
		out = []catalog.Notification{}
	}
	return out
}

// Unread counts unread notifications.
func (c *Center) Unread() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	n := 0
	for _, item := range c.items {
		if !item.Read {
			n++
		}
	}
	return n
}

func (c *Center) indexLocked(id string) int {
	return slices.IndexFunc(c.items, func(n catalog.Notification) bool { return n.ID == id })
}

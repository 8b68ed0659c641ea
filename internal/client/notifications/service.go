// Package notifications keeps the client's view of user notifications:
// an initial REST fetch merged with realtime pushes. Notifications are
// never deleted client-side; reading only flips the IsRead flag.
package notifications

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dealerbridge/dealerbridge/internal/client/api"
	"github.com/dealerbridge/dealerbridge/internal/client/models"
)

// Service caches notifications and mirrors read-state changes to the
// backend. Safe for concurrent use; the realtime subscriber and the UI
// touch it from different goroutines.
type Service struct {
	api api.Client

	mu    sync.Mutex
	items []models.Notification
}

// NewService constructs a Service bound to the given API client.
func NewService(apiClient api.Client) *Service {
	return &Service{api: apiClient}
}

// Refresh replaces the cache with the server's current list.
func (s *Service) Refresh(ctx context.Context) error {
	list, err := s.api.Notifications(ctx)
	if err != nil {
		return fmt.Errorf("fetch notifications: %w", err)
	}

	s.mu.Lock()
	s.items = list
	s.mu.Unlock()
	return nil
}

// All returns a copy of the cached notifications, newest first as the
// server delivers them, with pushed items prepended.
func (s *Service) All() []models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Notification, len(s.items))
	copy(out, s.items)
	return out
}

// Unread counts cached notifications not yet read.
func (s *Service) Unread() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, item := range s.items {
		if !item.IsRead {
			n++
		}
	}
	return n
}

// ApplyPush folds a realtime notification payload into the cache. Intended
// as a bus subscriber for the notifications-changed signal. Pushes without
// an id get a client-generated one so read tracking still works.
func (s *Service) ApplyPush(payload map[string]any) {
	n := models.Notification{
		ID:        stringField(payload, "id"),
		Title:     stringField(payload, "title"),
		Message:   stringField(payload, "message"),
		Level:     stringField(payload, "level"),
		Type:      stringField(payload, "type"),
		Link:      stringField(payload, "link"),
		CreatedAt: time.Now().UTC(),
	}
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.Level == "" {
		n.Level = models.LevelInfo
	}

	s.mu.Lock()
	s.items = append([]models.Notification{n}, s.items...)
	s.mu.Unlock()
}

func stringField(payload map[string]any, key string) string {
	if v, ok := payload[key].(string); ok {
		return v
	}
	return ""
}

// MarkRead flips a single notification both server-side and in the cache.
func (s *Service) MarkRead(ctx context.Context, id string) error {
	if err := s.api.MarkNotificationRead(ctx, id); err != nil {
		return err
	}

	s.mu.Lock()
	for i := range s.items {
		if s.items[i].ID == id {
			s.items[i].IsRead = true
			break
		}
	}
	s.mu.Unlock()
	return nil
}

// MarkAllRead performs the bulk read call and updates the whole cache.
func (s *Service) MarkAllRead(ctx context.Context) error {
	if err := s.api.MarkAllNotificationsRead(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	for i := range s.items {
		s.items[i].IsRead = true
	}
	s.mu.Unlock()
	return nil
}

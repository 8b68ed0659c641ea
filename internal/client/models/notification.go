// Package models holds the client-side data shapes shared between the API
// client and the services built on it.
package models

import "time"

// Notification levels as delivered by the backend.
const (
	LevelInfo    = "info"
	LevelWarning = "warning"
	LevelError   = "error"
)

// Notification is a user-facing message delivered either by the initial
// REST fetch or by a realtime push. Notifications are never deleted
// client-side; reading only flips IsRead.
type Notification struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Level     string    `json:"level"`
	CreatedAt time.Time `json:"created_at"`
	Type      string    `json:"type,omitempty"`
	Link      string    `json:"link,omitempty"`
	IsRead    bool      `json:"is_read"`
}

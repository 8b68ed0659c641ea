// Package api is the REST client for the dealer-portal backend. It speaks
// the token, 2FA, and notification endpoints; everything else the portal
// does goes through the same transport but is owned by other services.
package api

import (
	"context"

	"github.com/dealerbridge/dealerbridge/internal/client/models"
)

// Credentials are what the user submits to log in. Otp is empty on the
// first attempt and filled in when the server demands a second factor.
type Credentials struct {
	Username string
	Password string
	Otp      string
}

// TokenPair is the credential-exchange result.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// TwoFASetup carries the provisioning data for 2FA enrollment: the QR code
// as base64 PNG plus the raw secret so headless clients can enroll without
// scanning anything.
type TwoFASetup struct {
	QR     string `json:"qr"`
	Secret string `json:"secret"`
}

// Client defines the portal API surface used by the session controller and
// the notification service.
//
// All methods honor context cancellation and return *APIError for non-2xx
// responses.
type Client interface {
	Token(ctx context.Context, creds Credentials) (TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (string, error)
	TwoFASetup(ctx context.Context, username, password string) (TwoFASetup, error)
	TwoFAVerify(ctx context.Context, username, password, otp string) error
	Notifications(ctx context.Context) ([]models.Notification, error)
	MarkNotificationRead(ctx context.Context, id string) error
	MarkAllNotificationsRead(ctx context.Context) error
}

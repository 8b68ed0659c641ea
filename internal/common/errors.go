// Package common defines shared constants and sentinel errors used across
// the DealerBridge client layers. Callers should use errors.Is to match
// these values.
package common

import "errors"

var (
	// Auth errors surfaced by the session controller.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrOtpRequired        = errors.New("otp code required")
	ErrOtpInvalid         = errors.New("otp code invalid")
	ErrTwoFaSetupRequired = errors.New("2fa setup required")
	ErrUnexpected         = errors.New("unexpected auth error")

	// Token lifecycle errors.
	ErrRefreshFailed = errors.New("token refresh failed")
	ErrNoSession     = errors.New("not authenticated")

	// Realtime channel errors.
	ErrConnectFailed = errors.New("realtime connect failed")
	ErrChannelClosed = errors.New("realtime channel closed")
)

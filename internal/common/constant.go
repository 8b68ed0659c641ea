// Package common contains shared constants and sentinel errors used across
// DealerBridge components.
package common

// Storage keys for the persisted session triple. The role key is a
// convenience cache; on reload the role is re-derived from the decoded
// access token when one is present.
const (
	AccessTokenKey  = "auth.access_token"
	RefreshTokenKey = "auth.refresh_token"
	RoleKey         = "auth.role"
)

// HTTP header names attached by the outbound gateway.
const (
	AuthorizationHeader = "Authorization"
	LocaleHeader        = "Accept-Language"
)

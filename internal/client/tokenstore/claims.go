package tokenstore

import (
	"github.com/golang-jwt/jwt/v5"

	"github.com/dealerbridge/dealerbridge/internal/client/routes"
)

// Claims are the access-token fields the UI cares about. Zero values mean
// the token omitted the claim or could not be decoded.
type Claims struct {
	Role     routes.Role
	UserID   int64
	Username string
}

// DecodeClaims extracts claims from an access token without verifying its
// signature. Verification is the server's job; the decoded payload is used
// for UI display and menu building only and must never gate a real
// authorization decision on the client. Any decode failure yields empty
// claims, never an error.
func DecodeClaims(token string) Claims {
	if token == "" {
		return Claims{}
	}

	mc := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, mc); err != nil {
		return Claims{}
	}

	var c Claims
	if role, ok := mc["role"].(string); ok {
		c.Role = routes.Role(role)
	}
	if id, ok := mc["user_id"].(float64); ok {
		c.UserID = int64(id)
	}
	if name, ok := mc["username"].(string); ok {
		c.Username = name
	}
	return c
}

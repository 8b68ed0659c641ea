// Package session holds the single source of truth for "is this client
// authenticated": the login/logout/OTP state machine over the token store
// and the portal API.
package session

import (
	"github.com/dealerbridge/dealerbridge/internal/client/routes"
)

// State of the authentication machine.
//
//	Idle -> Authenticating -> {Authenticated | OtpRequired | Error}
//
// From OtpRequired a retry goes back through Authenticating.
// Authenticated is terminal until Logout returns the machine to Idle.
type State string

const (
	StateIdle           State = "idle"
	StateAuthenticating State = "authenticating"
	StateAuthenticated  State = "authenticated"
	StateOtpRequired    State = "otp_required"
	StateError          State = "error"
)

// ErrorKind classifies the outcome of a failed login.
type ErrorKind string

const (
	KindNone               ErrorKind = ""
	KindInvalidCredentials ErrorKind = "invalid_credentials"
	KindOtpRequired        ErrorKind = "otp_required"
	KindOtpInvalid         ErrorKind = "otp_invalid"
	KindTwoFaSetupRequired ErrorKind = "twofa_setup_required"
	KindUnexpected         ErrorKind = "unexpected"
)

// Snapshot is a read-only copy of the session for UI decisions.
type Snapshot struct {
	State           State
	IsAuthenticated bool
	NeedsOtp        bool
	Role            routes.Role
	UserID          int64
	Username        string
	LastError       ErrorKind
}

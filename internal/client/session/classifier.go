package session

import (
	"strings"

	"github.com/dealerbridge/dealerbridge/internal/client/api"
)

// Classifier maps a failed credential-exchange response to an ErrorKind.
// The default implementation substring-matches the backend's detail
// string, which couples us to its exact wording; keeping the strategy
// behind this interface lets it be swapped for structured error codes if
// the backend ever grows them.
type Classifier interface {
	Classify(err error) ErrorKind
}

// DetailClassifier classifies by the server-provided detail text.
type DetailClassifier struct{}

func (DetailClassifier) Classify(err error) ErrorKind {
	detail := strings.ToLower(api.Detail(err))
	switch {
	case strings.Contains(detail, "otp code is required"):
		return KindOtpRequired
	case strings.Contains(detail, "invalid otp"):
		return KindOtpInvalid
	case strings.Contains(detail, "2fa setup"):
		return KindTwoFaSetupRequired
	case api.IsUnauthorized(err), strings.Contains(detail, "no active account"):
		return KindInvalidCredentials
	default:
		return KindUnexpected
	}
}

// needsOtp reports whether the kind should put the machine into the
// OtpRequired state, retaining the submitted credentials for a retry.
func (k ErrorKind) needsOtp() bool {
	switch k {
	case KindOtpRequired, KindOtpInvalid, KindTwoFaSetupRequired:
		return true
	}
	return false
}

package session

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dealerbridge/dealerbridge/internal/client/api"
)

func TestDetailClassifier(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{
			name: "otp required",
			err:  &api.APIError{Status: http.StatusBadRequest, Detail: "OTP code is required"},
			want: KindOtpRequired,
		},
		{
			name: "otp invalid",
			err:  &api.APIError{Status: http.StatusBadRequest, Detail: "Invalid OTP code"},
			want: KindOtpInvalid,
		},
		{
			name: "2fa setup",
			err:  &api.APIError{Status: http.StatusBadRequest, Detail: "2FA setup required for this account"},
			want: KindTwoFaSetupRequired,
		},
		{
			name: "invalid credentials by wording",
			err:  &api.APIError{Status: http.StatusBadRequest, Detail: "No active account found with the given credentials"},
			want: KindInvalidCredentials,
		},
		{
			name: "invalid credentials by status",
			err:  &api.APIError{Status: http.StatusUnauthorized, Detail: "whatever"},
			want: KindInvalidCredentials,
		},
		{
			name: "server error",
			err:  &api.APIError{Status: http.StatusInternalServerError, Detail: "internal error"},
			want: KindUnexpected,
		},
		{
			name: "wrapped api error",
			err:  fmt.Errorf("exchanging credentials: %w", &api.APIError{Status: http.StatusUnauthorized, Detail: "whatever"}),
			want: KindInvalidCredentials,
		},
		{
			name: "non-api error",
			err:  errors.New("dial tcp: connection refused"),
			want: KindUnexpected,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, DetailClassifier{}.Classify(tc.err))
		})
	}
}

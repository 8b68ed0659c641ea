package session

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/dealerbridge/dealerbridge/internal/client/api"
	"github.com/dealerbridge/dealerbridge/internal/client/models"
	"github.com/dealerbridge/dealerbridge/internal/client/routes"
	"github.com/dealerbridge/dealerbridge/internal/client/tokenstore"
	"github.com/dealerbridge/dealerbridge/internal/common"
	"github.com/dealerbridge/dealerbridge/internal/logging"

	_ "modernc.org/sqlite"
)

// ---- helpers ----

func setupStore(t *testing.T) *tokenstore.Store {
	t.Helper()
	db, err := sql.Open("sqlite", "file:session_"+t.Name()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`CREATE TABLE metadata (key TEXT PRIMARY KEY, value TEXT NOT NULL)`)
	require.NoError(t, err)

	return tokenstore.New(db, testLogger())
}

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func mintToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)
	return signed
}

// fakeAPI implements api.Client for controller tests.
type fakeAPI struct {
	tokenResp api.TokenPair
	tokenErr  error

	setupResp api.TwoFASetup
	setupErr  error
	verifyErr error

	lastCreds api.Credentials
	calls     int
}

func (f *fakeAPI) Token(ctx context.Context, creds api.Credentials) (api.TokenPair, error) {
	f.calls++
	f.lastCreds = creds
	return f.tokenResp, f.tokenErr
}

func (f *fakeAPI) Refresh(ctx context.Context, refreshToken string) (string, error) {
	return "", errors.New("not used")
}

func (f *fakeAPI) TwoFASetup(ctx context.Context, username, password string) (api.TwoFASetup, error) {
	return f.setupResp, f.setupErr
}

func (f *fakeAPI) TwoFAVerify(ctx context.Context, username, password, otp string) error {
	return f.verifyErr
}

func (f *fakeAPI) Notifications(ctx context.Context) ([]models.Notification, error) {
	return nil, nil
}

func (f *fakeAPI) MarkNotificationRead(ctx context.Context, id string) error { return nil }

func (f *fakeAPI) MarkAllNotificationsRead(ctx context.Context) error { return nil }

func authFailure(detail string) error {
	return &api.APIError{Status: http.StatusUnauthorized, Detail: detail}
}

// ---- TESTS ----

func TestLogin_SuccessWithoutOtp(t *testing.T) {
	ctx := context.Background()
	store := setupStore(t)

	access := mintToken(t, jwt.MapClaims{"role": "manager", "user_id": float64(5), "username": "mgr"})
	f := &fakeAPI{tokenResp: api.TokenPair{Access: access, Refresh: "R1"}}
	c := NewController(f, store, testLogger())

	require.NoError(t, c.Login(ctx, api.Credentials{Username: "mgr", Password: "pw"}))

	snap := c.Snapshot()
	require.True(t, snap.IsAuthenticated)
	require.False(t, snap.NeedsOtp)
	require.Equal(t, routes.RoleManager, snap.Role)
	require.Equal(t, int64(5), snap.UserID)
	require.Equal(t, "mgr", snap.Username)

	require.Equal(t, access, store.AccessToken(ctx))
	require.Equal(t, "R1", store.RefreshToken(ctx))
	require.Equal(t, "manager", store.Get(ctx, common.RoleKey))
}

func TestLogin_RoleFallbackWhenTokenOmitsRole(t *testing.T) {
	ctx := context.Background()
	store := setupStore(t)

	access := mintToken(t, jwt.MapClaims{"user_id": float64(9)})
	f := &fakeAPI{tokenResp: api.TokenPair{Access: access, Refresh: "R"}}
	c := NewController(f, store, testLogger())

	require.NoError(t, c.Login(ctx, api.Credentials{Username: "u", Password: "p"}))
	require.Equal(t, routes.DefaultRole, c.Snapshot().Role)
	require.Equal(t, string(routes.DefaultRole), store.Get(ctx, common.RoleKey))
}

func TestLogin_OtpRequiredRetainsCredentials(t *testing.T) {
	ctx := context.Background()
	store := setupStore(t)

	f := &fakeAPI{tokenErr: authFailure("OTP code is required")}
	c := NewController(f, store, testLogger())

	err := c.Login(ctx, api.Credentials{Username: "u", Password: "p"})
	require.ErrorIs(t, err, common.ErrOtpRequired)

	snap := c.Snapshot()
	require.True(t, snap.NeedsOtp)
	require.False(t, snap.IsAuthenticated)
	require.Equal(t, KindOtpRequired, snap.LastError)

	// no tokens stored on a failed exchange
	require.Equal(t, "", store.AccessToken(ctx))
	require.Equal(t, "", store.RefreshToken(ctx))
}

func TestRetryWithOtp_ResubmitsPendingCredentials(t *testing.T) {
	ctx := context.Background()
	store := setupStore(t)

	f := &fakeAPI{tokenErr: authFailure("OTP code is required")}
	c := NewController(f, store, testLogger())

	_ = c.Login(ctx, api.Credentials{Username: "u", Password: "p"})

	access := mintToken(t, jwt.MapClaims{"role": "dealer"})
	f.tokenErr = nil
	f.tokenResp = api.TokenPair{Access: access, Refresh: "R"}

	require.NoError(t, c.RetryWithOtp(ctx, "123456"))
	require.Equal(t, api.Credentials{Username: "u", Password: "p", Otp: "123456"}, f.lastCreds)
	require.True(t, c.Snapshot().IsAuthenticated)
}

func TestLogin_InvalidOtpStaysInChallenge(t *testing.T) {
	ctx := context.Background()

	f := &fakeAPI{tokenErr: authFailure("OTP code is required")}
	c := NewController(f, setupStore(t), testLogger())

	_ = c.Login(ctx, api.Credentials{Username: "u", Password: "p"})

	f.tokenErr = authFailure("Invalid OTP code")
	err := c.RetryWithOtp(ctx, "000000")
	require.ErrorIs(t, err, common.ErrOtpInvalid)

	snap := c.Snapshot()
	require.True(t, snap.NeedsOtp)
	require.Equal(t, KindOtpInvalid, snap.LastError)
}

func TestLogin_TwoFaSetupRequired(t *testing.T) {
	f := &fakeAPI{tokenErr: authFailure("2FA setup required")}
	c := NewController(f, setupStore(t), testLogger())

	err := c.Login(context.Background(), api.Credentials{Username: "u", Password: "p"})
	require.ErrorIs(t, err, common.ErrTwoFaSetupRequired)
	require.True(t, c.Snapshot().NeedsOtp)
}

func TestLogin_InvalidCredentialsStaysOutOfOtpState(t *testing.T) {
	f := &fakeAPI{tokenErr: authFailure("No active account found with the given credentials")}
	c := NewController(f, setupStore(t), testLogger())

	err := c.Login(context.Background(), api.Credentials{Username: "u", Password: "bad"})
	require.ErrorIs(t, err, common.ErrInvalidCredentials)

	snap := c.Snapshot()
	require.False(t, snap.NeedsOtp)
	require.Equal(t, StateError, snap.State)

	// nothing retained to retry with
	require.ErrorIs(t, c.RetryWithOtp(context.Background(), "123456"), common.ErrNoSession)
}

func TestLogin_NetworkErrorIsUnexpected(t *testing.T) {
	f := &fakeAPI{tokenErr: errors.New("connection refused")}
	c := NewController(f, setupStore(t), testLogger())

	err := c.Login(context.Background(), api.Credentials{Username: "u", Password: "p"})
	require.ErrorIs(t, err, common.ErrUnexpected)
	require.False(t, c.Snapshot().NeedsOtp)
}

func TestClearOtpChallenge(t *testing.T) {
	ctx := context.Background()
	f := &fakeAPI{tokenErr: authFailure("OTP code is required")}
	c := NewController(f, setupStore(t), testLogger())

	_ = c.Login(ctx, api.Credentials{Username: "u", Password: "p"})
	require.True(t, c.Snapshot().NeedsOtp)

	c.ClearOtpChallenge()

	snap := c.Snapshot()
	require.False(t, snap.NeedsOtp)
	require.Equal(t, KindNone, snap.LastError)
	require.ErrorIs(t, c.RetryWithOtp(ctx, "1"), common.ErrNoSession)
}

func TestLogout_IsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := setupStore(t)

	access := mintToken(t, jwt.MapClaims{"role": "admin"})
	f := &fakeAPI{tokenResp: api.TokenPair{Access: access, Refresh: "R"}}
	c := NewController(f, store, testLogger())

	require.NoError(t, c.Login(ctx, api.Credentials{Username: "a", Password: "p"}))

	c.Logout(ctx)
	first := c.Snapshot()

	c.Logout(ctx)
	second := c.Snapshot()

	require.Equal(t, first, second)
	require.Equal(t, StateIdle, second.State)
	require.Equal(t, "", store.AccessToken(ctx))
	require.Equal(t, "", store.RefreshToken(ctx))
	require.Equal(t, "", store.Get(ctx, common.RoleKey))
}

func TestRestore_DecodedClaimWinsOverCachedRole(t *testing.T) {
	ctx := context.Background()
	store := setupStore(t)

	access := mintToken(t, jwt.MapClaims{"role": "warehouse", "username": "wh"})
	store.SaveSession(ctx, access, "R", "dealer") // stale cache disagrees

	c := NewController(&fakeAPI{}, store, testLogger())
	require.True(t, c.Restore(ctx))

	snap := c.Snapshot()
	require.True(t, snap.IsAuthenticated)
	require.Equal(t, routes.RoleWarehouse, snap.Role)
}

func TestRestore_CachedRoleCoversTokenWithoutClaim(t *testing.T) {
	ctx := context.Background()
	store := setupStore(t)

	access := mintToken(t, jwt.MapClaims{"username": "x"})
	store.SaveSession(ctx, access, "R", "accountant")

	c := NewController(&fakeAPI{}, store, testLogger())
	require.True(t, c.Restore(ctx))
	require.Equal(t, routes.RoleAccountant, c.Snapshot().Role)
}

func TestRestore_NoPersistedToken(t *testing.T) {
	c := NewController(&fakeAPI{}, setupStore(t), testLogger())
	require.False(t, c.Restore(context.Background()))
	require.False(t, c.Snapshot().IsAuthenticated)
}

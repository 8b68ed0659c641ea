package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/dealerbridge/dealerbridge/internal/client/api"
	"github.com/dealerbridge/dealerbridge/internal/client/routes"
	"github.com/dealerbridge/dealerbridge/internal/client/tokenstore"
	"github.com/dealerbridge/dealerbridge/internal/common"
	"github.com/dealerbridge/dealerbridge/internal/logging"
)

// Controller orchestrates login, logout, and the OTP challenge. It owns
// the Session state exclusively; all mutation happens through its methods
// behind a mutex. Auth failures surface on the session and never force a
// logout; a user mid-authentication is not de-authenticated.
type Controller struct {
	api        api.Client
	tokens     *tokenstore.Store
	classifier Classifier
	logger     logging.Logger

	mu      sync.Mutex
	state   State
	claims  tokenstore.Claims
	role    routes.Role
	pending *api.Credentials
	lastErr ErrorKind
}

// NewController wires a Controller over the API client and token store.
func NewController(apiClient api.Client, tokens *tokenstore.Store, logger logging.Logger) *Controller {
	return &Controller{
		api:        apiClient,
		tokens:     tokens,
		classifier: DetailClassifier{},
		logger:     logger,
		state:      StateIdle,
	}
}

// SetClassifier swaps the error-classification strategy. Call before use.
func (c *Controller) SetClassifier(cl Classifier) { c.classifier = cl }

// Login performs one credential-exchange call. On success the tokens and
// resolved role are persisted and the machine lands in Authenticated. On
// failure the error is classified: the OTP family of errors moves the
// machine to OtpRequired and retains the submitted credentials so the next
// attempt can resubmit them with a code; anything else lands in Error with
// credentials dropped.
func (c *Controller) Login(ctx context.Context, creds api.Credentials) error {
	c.mu.Lock()
	c.state = StateAuthenticating
	c.mu.Unlock()

	pair, err := c.api.Token(ctx, creds)
	if err != nil {
		return c.loginFailed(ctx, creds, err)
	}

	claims := tokenstore.DecodeClaims(pair.Access)
	role := claims.Role
	if role == "" {
		role = routes.DefaultRole
	}

	c.tokens.SaveSession(ctx, pair.Access, pair.Refresh, string(role))

	c.mu.Lock()
	c.state = StateAuthenticated
	c.claims = claims
	c.role = role
	c.pending = nil
	c.lastErr = KindNone
	c.mu.Unlock()

	c.logger.Info(ctx, "login succeeded", "username", claims.Username, "role", role)
	return nil
}

func (c *Controller) loginFailed(ctx context.Context, creds api.Credentials, err error) error {
	kind := c.classifier.Classify(err)

	c.mu.Lock()
	c.lastErr = kind
	if kind.needsOtp() {
		c.state = StateOtpRequired
		c.pending = &creds
	} else {
		c.state = StateError
		c.pending = nil
	}
	c.mu.Unlock()

	c.logger.Warn(ctx, "login failed", "kind", kind)
	return fmt.Errorf("%w: %w", sentinelFor(kind), err)
}

func sentinelFor(kind ErrorKind) error {
	switch kind {
	case KindOtpRequired:
		return common.ErrOtpRequired
	case KindOtpInvalid:
		return common.ErrOtpInvalid
	case KindTwoFaSetupRequired:
		return common.ErrTwoFaSetupRequired
	case KindInvalidCredentials:
		return common.ErrInvalidCredentials
	default:
		return common.ErrUnexpected
	}
}

// RetryWithOtp resubmits the credentials retained by the outstanding OTP
// challenge together with the given code.
func (c *Controller) RetryWithOtp(ctx context.Context, otp string) error {
	c.mu.Lock()
	if c.pending == nil {
		c.mu.Unlock()
		return common.ErrNoSession
	}
	creds := *c.pending
	c.mu.Unlock()

	creds.Otp = otp
	return c.Login(ctx, creds)
}

// ClearOtpChallenge drops the pending OTP state without touching tokens.
func (c *Controller) ClearOtpChallenge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateOtpRequired {
		c.state = StateIdle
	}
	c.pending = nil
	c.lastErr = KindNone
}

// Logout clears the whole session and erases the persisted token triple.
// Idempotent: calling it twice yields the same empty state.
func (c *Controller) Logout(ctx context.Context) {
	c.mu.Lock()
	c.state = StateIdle
	c.claims = tokenstore.Claims{}
	c.role = ""
	c.pending = nil
	c.lastErr = KindNone
	c.mu.Unlock()

	c.tokens.ClearSession(ctx)
	c.logger.Info(ctx, "logged out")
}

// Restore rebuilds the session from persisted tokens on startup. The role
// decoded from the access token wins over the cached role key when the two
// disagree; the cache only covers tokens that omit the claim.
func (c *Controller) Restore(ctx context.Context) bool {
	access := c.tokens.AccessToken(ctx)
	if access == "" {
		return false
	}

	claims := tokenstore.DecodeClaims(access)
	role := claims.Role
	if role == "" {
		if cached := c.tokens.Get(ctx, common.RoleKey); cached != "" {
			role = routes.Role(cached)
		} else {
			role = routes.DefaultRole
		}
	}

	c.mu.Lock()
	c.state = StateAuthenticated
	c.claims = claims
	c.role = role
	c.mu.Unlock()

	c.logger.Info(ctx, "session restored", "username", claims.Username, "role", role)
	return true
}

// SetupTwoFA requests 2FA enrollment data for the account.
func (c *Controller) SetupTwoFA(ctx context.Context, username, password string) (api.TwoFASetup, error) {
	return c.api.TwoFASetup(ctx, username, password)
}

// VerifyTwoFA confirms 2FA enrollment with the first generated code.
func (c *Controller) VerifyTwoFA(ctx context.Context, username, password, otp string) error {
	return c.api.TwoFAVerify(ctx, username, password, otp)
}

// Snapshot returns a copy of the current session for UI decisions.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		State:           c.state,
		IsAuthenticated: c.state == StateAuthenticated,
		NeedsOtp:        c.state == StateOtpRequired,
		Role:            c.role,
		UserID:          c.claims.UserID,
		Username:        c.claims.Username,
		LastError:       c.lastErr,
	}
}

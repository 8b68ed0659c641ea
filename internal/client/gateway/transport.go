// Package gateway is the outbound request pipeline. Every API call passes
// through its Transport, which attaches the bearer token and locale header
// and, on a 401, performs exactly one silent refresh-and-retry. Concurrent
// 401s share a single in-flight refresh.
package gateway

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/dealerbridge/dealerbridge/internal/common"
	"github.com/dealerbridge/dealerbridge/internal/logging"
)

// DefaultTimeout bounds every outbound call. There is no per-request
// cancellation beyond the caller's context.
const DefaultTimeout = 30 * time.Second

// TokenSource supplies and updates the persisted tokens. Satisfied by
// *tokenstore.Store.
type TokenSource interface {
	AccessToken(ctx context.Context) string
	RefreshToken(ctx context.Context) string
	SetAccessToken(ctx context.Context, token string)
}

// RefreshFunc exchanges a refresh token for a new access token. It must go
// straight to the network, not back through this transport.
type RefreshFunc func(ctx context.Context, refreshToken string) (string, error)

type ctxKey int

const retriedKey ctxKey = 0

// Transport implements http.RoundTripper.
type Transport struct {
	// Base is the underlying transport; nil means http.DefaultTransport.
	Base http.RoundTripper

	Tokens  TokenSource
	Refresh RefreshFunc
	Locale  string
	Logger  logging.Logger

	// OnAuthLost runs when the session is beyond saving: a 401 with no
	// refresh token, or a failed refresh. Wired to the session
	// controller's Logout.
	OnAuthLost func(ctx context.Context)

	group singleflight.Group
}

// NewClient builds an *http.Client routed through t with the default
// timeout applied.
func NewClient(t *Transport) *http.Client {
	return &http.Client{Transport: t, Timeout: DefaultTimeout}
}

func (t *Transport) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}
	return http.DefaultTransport
}

// isAuthPath reports whether the request targets the token or refresh
// endpoint. Those calls carry credentials themselves and must never be
// retried through the refresh machinery.
func isAuthPath(path string) bool {
	return strings.HasSuffix(path, "/token/") || strings.HasSuffix(path, "/token/refresh/")
}

// RoundTrip attaches auth headers, forwards the request, and transparently
// retries once after refreshing an expired access token. The caller always
// receives either the retried response or the original one; refresh
// mechanics stay invisible.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	out := req.Clone(ctx)
	t.setHeaders(ctx, out, t.Tokens.AccessToken(ctx))

	resp, err := t.base().RoundTrip(out)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}
	if isAuthPath(req.URL.Path) || ctx.Value(retriedKey) != nil {
		return resp, nil
	}

	refreshToken := t.Tokens.RefreshToken(ctx)
	if refreshToken == "" {
		t.authLost(ctx)
		return resp, nil
	}

	// Coalesce: however many requests hit 401 at once, only one refresh
	// call goes out and every waiter shares its outcome.
	access, refreshErr, _ := t.group.Do("refresh", func() (any, error) {
		newAccess, err := t.Refresh(ctx, refreshToken)
		if err != nil {
			return nil, err
		}
		t.Tokens.SetAccessToken(ctx, newAccess)
		return newAccess, nil
	})
	if refreshErr != nil {
		t.log(ctx, "token refresh failed", "error", refreshErr)
		t.authLost(ctx)
		// The caller sees the original failure, not the refresh mechanics.
		return resp, nil
	}

	retry, ok := t.rebuildRequest(ctx, req, access.(string))
	if !ok {
		return resp, nil
	}

	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	return t.base().RoundTrip(retry)
}

// rebuildRequest clones the original request for the single retry with the
// new token. A request with a non-replayable body cannot be retried.
func (t *Transport) rebuildRequest(ctx context.Context, req *http.Request, access string) (*http.Request, bool) {
	retry := req.Clone(context.WithValue(ctx, retriedKey, struct{}{}))

	if req.Body != nil {
		if req.GetBody == nil {
			return nil, false
		}
		body, err := req.GetBody()
		if err != nil {
			return nil, false
		}
		retry.Body = body
	}

	t.setHeaders(ctx, retry, access)
	return retry, true
}

func (t *Transport) setHeaders(ctx context.Context, req *http.Request, access string) {
	if access != "" {
		req.Header.Set(common.AuthorizationHeader, "Bearer "+access)
	}
	if t.Locale != "" {
		req.Header.Set(common.LocaleHeader, t.Locale)
	}
}

func (t *Transport) authLost(ctx context.Context) {
	if t.OnAuthLost != nil {
		t.OnAuthLost(ctx)
	}
}

func (t *Transport) log(ctx context.Context, msg string, args ...any) {
	if t.Logger != nil {
		t.Logger.Warn(ctx, msg, args...)
	}
}

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/dealerbridge/dealerbridge/internal/client/models"
	"github.com/dealerbridge/dealerbridge/internal/common"
)

// Endpoint paths, relative to the API base URL.
const (
	tokenPath         = "/token/"
	refreshPath       = "/auth/token/refresh/"
	twoFASetupPath    = "/2fa/setup/"
	twoFAVerifyPath   = "/2fa/verify/"
	notificationsPath = "/notifications/"
)

// RESTClient implements Client over HTTP. The supplied http.Client decides
// whether calls go through the authenticated gateway transport or straight
// to the network (the refresh call itself must use a bare client).
type RESTClient struct {
	baseURL string
	http    *http.Client
}

// New constructs a RESTClient for the given base URL.
func New(baseURL string, hc *http.Client) *RESTClient {
	return &RESTClient{baseURL: strings.TrimRight(baseURL, "/"), http: hc}
}

func (c *RESTClient) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// decodeError turns a non-2xx response into an *APIError, pulling the
// "detail" field out of the body when one is present.
func decodeError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return apiErr
	}

	var body struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(data, &body) == nil && body.Detail != "" {
		apiErr.Detail = body.Detail
	}
	return apiErr
}

func (c *RESTClient) Token(ctx context.Context, creds Credentials) (TokenPair, error) {
	req := map[string]string{
		"username": creds.Username,
		"password": creds.Password,
	}
	if creds.Otp != "" {
		req["otp"] = creds.Otp
	}

	var pair TokenPair
	if err := c.do(ctx, http.MethodPost, tokenPath, req, &pair); err != nil {
		return TokenPair{}, err
	}
	return pair, nil
}

func (c *RESTClient) Refresh(ctx context.Context, refreshToken string) (string, error) {
	req := map[string]string{"refresh": refreshToken}

	var resp struct {
		Access string `json:"access"`
	}
	if err := c.do(ctx, http.MethodPost, refreshPath, req, &resp); err != nil {
		return "", err
	}
	if resp.Access == "" {
		return "", common.ErrRefreshFailed
	}
	return resp.Access, nil
}

func (c *RESTClient) TwoFASetup(ctx context.Context, username, password string) (TwoFASetup, error) {
	req := map[string]string{"username": username, "password": password}

	var setup TwoFASetup
	if err := c.do(ctx, http.MethodPost, twoFASetupPath, req, &setup); err != nil {
		return TwoFASetup{}, err
	}
	return setup, nil
}

func (c *RESTClient) TwoFAVerify(ctx context.Context, username, password, otp string) error {
	req := map[string]string{"username": username, "password": password, "otp": otp}
	return c.do(ctx, http.MethodPost, twoFAVerifyPath, req, nil)
}

func (c *RESTClient) Notifications(ctx context.Context) ([]models.Notification, error) {
	var list []models.Notification
	if err := c.do(ctx, http.MethodGet, notificationsPath, nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *RESTClient) MarkNotificationRead(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, notificationsPath+id+"/read/", nil, nil)
}

func (c *RESTClient) MarkAllNotificationsRead(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, notificationsPath+"read-all/", nil, nil)
}

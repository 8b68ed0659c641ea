// Package realtime keeps the push-notification channel alive. It opens a
// websocket carrying the current access token once a session exists, fans
// typed events out to the signal bus, and reconnects with bounded backoff
// on abnormal closure.
package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dealerbridge/dealerbridge/internal/client/signals"
	"github.com/dealerbridge/dealerbridge/internal/common"
	"github.com/dealerbridge/dealerbridge/internal/logging"
)

// Config tunes the channel. Zero values fall back to the defaults below.
type Config struct {
	// Endpoint is the push endpoint, e.g. wss://host/ws/notifications/.
	Endpoint string

	// ReconnectBase is the first reconnect delay; it doubles per attempt.
	ReconnectBase time.Duration

	// ReconnectMax caps the per-attempt delay.
	ReconnectMax time.Duration

	// MaxAttempts bounds consecutive failed reconnects. Once exceeded the
	// channel goes into a persistent offline state instead of retrying
	// forever against an unreachable server.
	MaxAttempts int
}

const (
	defaultReconnectBase = 3 * time.Second
	defaultReconnectMax  = 60 * time.Second
	defaultMaxAttempts   = 10
)

// TokenSource yields the access token placed on the connection URL.
type TokenSource interface {
	AccessToken(ctx context.Context) string
}

// conn is the subset of *websocket.Conn the channel uses; a test seam.
type conn interface {
	ReadMessage() (int, []byte, error)
	Close() error
}

// Channel is the long-lived push connection. Not activated until the
// session is authenticated; Close tears it down and cancels any pending
// reconnect so a stale timer cannot race a fresh login.
type Channel struct {
	cfg    Config
	tokens TokenSource
	bus    *signals.Bus
	toast  ToastFunc
	logger logging.Logger

	dial func(ctx context.Context, url string) (conn, error)

	mu       sync.Mutex
	conn     conn
	timer    *time.Timer
	attempts int
	closed   bool
	offline  bool
}

// New builds a Channel. toast may be nil when no toast surface exists.
func New(cfg Config, tokens TokenSource, bus *signals.Bus, toast ToastFunc, logger logging.Logger) *Channel {
	if cfg.ReconnectBase <= 0 {
		cfg.ReconnectBase = defaultReconnectBase
	}
	if cfg.ReconnectMax <= 0 {
		cfg.ReconnectMax = defaultReconnectMax
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaultMaxAttempts
	}
	c := &Channel{cfg: cfg, tokens: tokens, bus: bus, toast: toast, logger: logger}
	c.dial = c.dialWebsocket
	return c
}

func (c *Channel) dialWebsocket(ctx context.Context, url string) (conn, error) {
	ws, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	return ws, nil
}

// Open connects and starts the read loop. A failed initial dial schedules
// a reconnect before returning the error, so a transient outage at login
// time still self-heals.
func (c *Channel) Open(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return common.ErrChannelClosed
	}
	c.mu.Unlock()

	if err := c.connect(ctx); err != nil {
		c.scheduleReconnect(ctx)
		return fmt.Errorf("%w: %w", common.ErrConnectFailed, err)
	}
	return nil
}

func (c *Channel) connect(ctx context.Context) error {
	url := c.cfg.Endpoint + "?token=" + c.tokens.AccessToken(ctx)

	ws, err := c.dial(ctx, url)
	if err != nil {
		return err
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		ws.Close()
		return common.ErrChannelClosed
	}
	c.conn = ws
	c.attempts = 0
	c.offline = false
	c.mu.Unlock()

	c.logger.Info(ctx, "realtime channel open", "endpoint", c.cfg.Endpoint)
	go c.readLoop(ctx, ws)
	return nil
}

func (c *Channel) readLoop(ctx context.Context, ws conn) {
	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			c.handleClose(ctx, err)
			return
		}
		c.handleMessage(ctx, data)
	}
}

// handleClose decides between clean teardown (do nothing) and abnormal
// closure (schedule one reconnect). A normal close frame from the server
// counts as clean: the peer said goodbye, so dialing it again is pointless.
func (c *Channel) handleClose(ctx context.Context, err error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.conn = nil
	c.mu.Unlock()

	if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
		c.logger.Info(ctx, "realtime channel closed by server", "error", err)
		return
	}

	c.logger.Warn(ctx, "realtime channel closed abnormally", "error", err)
	c.scheduleReconnect(ctx)
}

// scheduleReconnect arms a single reconnect timer with exponential backoff
// and jitter. Past MaxAttempts the channel goes offline for good and says
// so on the bus.
func (c *Channel) scheduleReconnect(ctx context.Context) {
	c.mu.Lock()
	if c.closed || c.offline {
		c.mu.Unlock()
		return
	}

	c.attempts++
	attempt := c.attempts
	if attempt > c.cfg.MaxAttempts {
		c.offline = true
		c.mu.Unlock()
		c.logger.Error(ctx, "realtime channel offline", "attempts", attempt-1)
		c.bus.Publish(signals.RealtimeOffline, nil)
		return
	}

	delay := c.backoff(attempt)
	c.timer = time.AfterFunc(delay, func() {
		if err := c.connect(ctx); err != nil {
			c.scheduleReconnect(ctx)
		}
	})
	c.mu.Unlock()

	c.logger.Info(ctx, "realtime reconnect scheduled", "attempt", attempt, "delay", delay)
}

// backoff returns base doubled per attempt, capped, with ±20% jitter.
func (c *Channel) backoff(attempt int) time.Duration {
	d := c.cfg.ReconnectBase
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= c.cfg.ReconnectMax {
			d = c.cfg.ReconnectMax
			break
		}
	}
	jitter := 1 + (rand.Float64()*0.4 - 0.2)
	return time.Duration(float64(d) * jitter)
}

// Offline reports whether the channel gave up reconnecting.
func (c *Channel) Offline() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.offline
}

// Close tears the channel down: the connection is closed cleanly and any
// scheduled-but-not-yet-fired reconnect timer is cancelled.
func (c *Channel) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
}

// envelope is the primary inbound message shape; messages without an
// event name are treated as bare notification payloads.
type envelope struct {
	Event string         `json:"event"`
	Data  map[string]any `json:"data"`
}

func (c *Channel) handleMessage(ctx context.Context, raw []byte) {
	var env envelope
	event := ""
	var data map[string]any

	if err := json.Unmarshal(raw, &env); err == nil && env.Event != "" {
		event = env.Event
		data = env.Data
	} else {
		var bare map[string]any
		if err := json.Unmarshal(raw, &bare); err != nil {
			c.logger.Warn(ctx, "realtime message is not json", "error", err)
			return
		}
		event = bareNotificationEvent
		data = bare
	}

	signal, ok := eventSignals[event]
	if !ok {
		c.logger.Debug(ctx, "realtime event dropped", "event", event)
		return
	}

	c.bus.Publish(signal, data)

	if c.toast != nil {
		if toast, ok := makeToast(event, data); ok {
			c.toast(toast)
		}
	}
}

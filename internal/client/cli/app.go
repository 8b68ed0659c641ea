package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/dealerbridge/dealerbridge/internal/client/api"
	"github.com/dealerbridge/dealerbridge/internal/client/config"
	"github.com/dealerbridge/dealerbridge/internal/client/gateway"
	"github.com/dealerbridge/dealerbridge/internal/client/notifications"
	"github.com/dealerbridge/dealerbridge/internal/client/realtime"
	"github.com/dealerbridge/dealerbridge/internal/client/routes"
	"github.com/dealerbridge/dealerbridge/internal/client/session"
	"github.com/dealerbridge/dealerbridge/internal/client/signals"
	"github.com/dealerbridge/dealerbridge/internal/client/store"
	"github.com/dealerbridge/dealerbridge/internal/client/tokenstore"
	"github.com/dealerbridge/dealerbridge/internal/logging"

	_ "modernc.org/sqlite"
)

// App wires the session controller, the API gateway, the notification
// service and the realtime channel into an interactive terminal client.
type App struct {
	config        *config.Config
	db            *sql.DB
	tokens        *tokenstore.Store
	session       *session.Controller
	notifications *notifications.Service
	authorizer    *routes.Authorizer
	bus           *signals.Bus
	channel       *realtime.Channel
	logger        logging.Logger
	reader        *bufio.Reader
}

// NewApp builds the full client stack from cfg. The returned App owns the
// local database handle; Run closes it on exit.
func NewApp(cfg *config.Config) (*App, error) {

	ctx := context.Background()

	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	db, err := store.Open(ctx, cfg.DatabasePath)
	if err != nil {
		logger.Error(ctx, "error opening local database", "error", err)
		return nil, err
	}

	tokens := tokenstore.New(db, logger)

	// Token refresh must bypass the retrying transport, otherwise a 401 on
	// the refresh call itself could recurse.
	refreshClient := api.New(cfg.APIBaseURL, &http.Client{Timeout: gateway.DefaultTimeout})

	transport := &gateway.Transport{
		Tokens:  tokens,
		Refresh: refreshClient.Refresh,
		Locale:  cfg.Locale,
		Logger:  logger,
	}
	apiClient := api.New(cfg.APIBaseURL, gateway.NewClient(transport))

	app := &App{
		config:     cfg,
		db:         db,
		tokens:     tokens,
		authorizer: routes.NewAuthorizer(routes.DefaultTable),
		bus:        signals.NewBus(),
		logger:     logger,
		reader:     bufio.NewReader(os.Stdin),
	}

	app.session = session.NewController(apiClient, tokens, logger)
	app.notifications = notifications.NewService(apiClient)

	transport.OnAuthLost = func(ctx context.Context) {
		app.closeChannel()
		app.session.Logout(ctx)
		fmt.Println("Session expired, please log in again.")
	}

	app.bus.Subscribe(signals.NotificationsChanged, func(payload map[string]any) {
		app.notifications.ApplyPush(payload)
	})
	app.bus.Subscribe(signals.RealtimeOffline, func(map[string]any) {
		fmt.Println("Push connection lost, reconnect by logging in again.")
	})

	return app, nil
}

// Run restores a persisted session if one exists and starts the REPL.
func (a *App) Run(ctx context.Context) {
	defer a.db.Close()
	defer a.closeChannel()

	if a.session.Restore(ctx) {
		snap := a.session.Snapshot()
		fmt.Printf("Restored session for %s (%s)\n", snap.Username, snap.Role)
		a.afterLogin(ctx)
	}

	a.Root(ctx)
}

func (a *App) isLoggedIn() bool {
	return a.session.Snapshot().IsAuthenticated
}

func (a *App) needsOtp() bool {
	return a.session.Snapshot().NeedsOtp
}

// afterLogin opens a fresh push channel and primes the notification cache.
// A channel instance is single-use, so each login gets a new one.
func (a *App) afterLogin(ctx context.Context) {
	a.closeChannel()
	a.channel = realtime.New(realtime.Config{
		Endpoint:      a.config.WSEndpoint,
		ReconnectBase: a.config.ReconnectBase,
		ReconnectMax:  a.config.ReconnectMax,
		MaxAttempts:   a.config.ReconnectMaxAttempts,
	}, a.tokens, a.bus, a.printToast, a.logger)

	if err := a.channel.Open(ctx); err != nil {
		a.logger.Warn(ctx, "push channel unavailable", "error", err)
	}
	if err := a.notifications.Refresh(ctx); err != nil {
		a.logger.Warn(ctx, "could not load notifications", "error", err)
	}
}

func (a *App) closeChannel() {
	if a.channel != nil {
		a.channel.Close()
		a.channel = nil
	}
}

func (a *App) printToast(t realtime.Toast) {
	fmt.Printf("\n[%s] %s: %s\n", strings.ToUpper(t.Level), t.Title, t.Message)
}

package config

import "time"

// Config holds runtime settings for the DealerBridge client.
//
// Fields:
//   - APIBaseURL: base URL of the portal REST API.
//   - WSEndpoint: websocket URL of the push-notification endpoint.
//   - Locale: language code sent on every request's Accept-Language header.
//   - DatabasePath: SQLite file holding the persisted session.
//   - ReconnectBase/ReconnectMax/ReconnectMaxAttempts: realtime channel
//     backoff tuning.
type Config struct {
	APIBaseURL           string
	WSEndpoint           string
	Locale               string
	DatabasePath         string
	ReconnectBase        time.Duration
	ReconnectMax         time.Duration
	ReconnectMaxAttempts int
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://127.0.0.1:8000/api"
	c.WSEndpoint = "ws://127.0.0.1:8000/ws/notifications/"
	c.Locale = "en"
	c.DatabasePath = "dealerbridge.db"
	c.ReconnectBase = 3 * time.Second
	c.ReconnectMax = 60 * time.Second
	c.ReconnectMaxAttempts = 10
}

// LoadConfig constructs a Config, applies defaults, then overlays values
// from JSON (if present) and command-line flags (if present). Later
// sources take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}

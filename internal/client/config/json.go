package config

import (
	"encoding/json"
	"os"

	"github.com/dealerbridge/dealerbridge/internal/flagx"
	"github.com/dealerbridge/dealerbridge/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Durations
// rely on timex.Duration so JSON can specify them either as strings like
// "3s" or as integer nanoseconds.
type JsonConfig struct {
	APIBaseURL           string         `json:"api_base_url"`
	WSEndpoint           string         `json:"ws_endpoint"`
	Locale               string         `json:"locale"`
	DatabasePath         string         `json:"database_path"`
	ReconnectBase        timex.Duration `json:"reconnect_base"`
	ReconnectMax         timex.Duration `json:"reconnect_max"`
	ReconnectMaxAttempts int            `json:"reconnect_max_attempts"`
}

// parseJson overlays cfg with values loaded from the JSON file named by
// the -c/-config flags. Empty JSON fields leave the current value alone,
// so the intended usage stays: defaults -> parseJson -> parseFlags, with
// later stages overriding earlier ones.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.APIBaseURL != "" {
		cfg.APIBaseURL = jc.APIBaseURL
	}
	if jc.WSEndpoint != "" {
		cfg.WSEndpoint = jc.WSEndpoint
	}
	if jc.Locale != "" {
		cfg.Locale = jc.Locale
	}
	if jc.DatabasePath != "" {
		cfg.DatabasePath = jc.DatabasePath
	}
	if jc.ReconnectBase.Duration > 0 {
		cfg.ReconnectBase = jc.ReconnectBase.Duration
	}
	if jc.ReconnectMax.Duration > 0 {
		cfg.ReconnectMax = jc.ReconnectMax.Duration
	}
	if jc.ReconnectMaxAttempts > 0 {
		cfg.ReconnectMaxAttempts = jc.ReconnectMaxAttempts
	}
}

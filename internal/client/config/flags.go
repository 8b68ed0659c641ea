package config

import (
	"flag"
	"os"

	"github.com/dealerbridge/dealerbridge/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   base URL of the portal REST API
//	-w string   websocket URL of the push endpoint
//	-l string   locale code sent with every request
//	-d string   path to the local SQLite database
//
// The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-w", "-l", "-d"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.APIBaseURL, "a", cfg.APIBaseURL, "base URL of the portal REST API")
	fs.StringVar(&cfg.WSEndpoint, "w", cfg.WSEndpoint, "websocket URL of the push endpoint")
	fs.StringVar(&cfg.Locale, "l", cfg.Locale, "locale code")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "path to the local database")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}

// Package cli implements the interactive terminal client for the
// DealerBridge portal: login with optional 2FA, persisted sessions,
// role-aware navigation and live push notifications.
package cli

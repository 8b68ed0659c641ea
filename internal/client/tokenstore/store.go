// Package tokenstore persists the session token triple (access token,
// refresh token, last-known role) in the client's local SQLite database
// and decodes access-token claims for UI decisions.
package tokenstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dealerbridge/dealerbridge/internal/common"
	"github.com/dealerbridge/dealerbridge/internal/dbx"
	"github.com/dealerbridge/dealerbridge/internal/logging"
)

// Store is a durable key/value store over the metadata table.
//
// Storage faults never propagate to callers: a failed read yields an empty
// string and a failed write is logged and dropped. Losing a cached token
// only costs the user a re-login; failing the whole client does more harm.
type Store struct {
	db     *sql.DB
	logger logging.Logger
}

// New constructs a Store over an open database handle.
func New(db *sql.DB, logger logging.Logger) *Store {
	return &Store{db: db, logger: logger}
}

// Get reads the value for key. Missing keys and storage faults both yield
// an empty string; faults are logged.
func (s *Store) Get(ctx context.Context, key string) string {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return ""
	}
	if err != nil {
		s.logger.Error(ctx, "token store read failed", "key", key, "error", err)
		return ""
	}
	return value
}

// Set writes value under key. An empty value removes the key. Faults are
// logged and swallowed.
func (s *Store) Set(ctx context.Context, key, value string) {
	if err := set(ctx, s.db, key, value); err != nil {
		s.logger.Error(ctx, "token store write failed", "key", key, "error", err)
	}
}

func set(ctx context.Context, db dbx.DBTX, key, value string) error {
	if value == "" {
		_, err := db.ExecContext(ctx, `DELETE FROM metadata WHERE key = ?`, key)
		if err != nil {
			return fmt.Errorf("failed to delete metadata[%s]: %w", key, err)
		}
		return nil
	}
	_, err := db.ExecContext(ctx, `
		INSERT INTO metadata (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to set metadata[%s]: %w", key, err)
	}
	return nil
}

// SaveSession persists the token triple in a single transaction so a crash
// cannot leave a new access token next to a stale refresh token.
func (s *Store) SaveSession(ctx context.Context, access, refresh, role string) {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := set(ctx, tx, common.AccessTokenKey, access); err != nil {
			return err
		}
		if err := set(ctx, tx, common.RefreshTokenKey, refresh); err != nil {
			return err
		}
		return set(ctx, tx, common.RoleKey, role)
	})
	if err != nil {
		s.logger.Error(ctx, "token store session write failed", "error", err)
	}
}

// ClearSession removes all three persisted session keys. Safe to call when
// nothing is stored.
func (s *Store) ClearSession(ctx context.Context) {
	for _, key := range []string{common.AccessTokenKey, common.RefreshTokenKey, common.RoleKey} {
		s.Set(ctx, key, "")
	}
}

// AccessToken is a convenience accessor for the persisted access token.
func (s *Store) AccessToken(ctx context.Context) string {
	return s.Get(ctx, common.AccessTokenKey)
}

// RefreshToken is a convenience accessor for the persisted refresh token.
func (s *Store) RefreshToken(ctx context.Context) string {
	return s.Get(ctx, common.RefreshTokenKey)
}

// SetAccessToken overwrites just the access token. Used by the gateway
// after a silent refresh; the refresh token and role are untouched.
func (s *Store) SetAccessToken(ctx context.Context, token string) {
	s.Set(ctx, common.AccessTokenKey, token)
}

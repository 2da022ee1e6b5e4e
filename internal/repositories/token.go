package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// TokenKey is the fixed client_state key holding the bearer token.
const TokenKey = "token"

// TokenRepository persists the single bearer token across process runs.
type TokenRepository struct {
	db *sql.DB
}

// NewTokenRepository creates a new [TokenRepository] with the given database connection
func NewTokenRepository(db *sql.DB) *TokenRepository {
	return &TokenRepository{db: db}
}

// Save stores token, replacing any previous value.
func (r *TokenRepository) Save(token string) error {
	if token == "" {
		return fmt.Errorf("token is empty")
	}

	query := `
		INSERT INTO client_state (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`
	if _, err := r.db.Exec(query, TokenKey, token, time.Now()); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}

// Read returns the stored token and whether one exists.
func (r *TokenRepository) Read() (string, bool, error) {
	var token string
	err := r.db.QueryRow("SELECT value FROM client_state WHERE key = ?", TokenKey).Scan(&token)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read token: %w", err)
	}
	return token, token != "", nil
}

// Clear removes the stored token. Clearing an empty store is not an error.
func (r *TokenRepository) Clear() error {
	if _, err := r.db.Exec("DELETE FROM client_state WHERE key = ?", TokenKey); err != nil {
		return fmt.Errorf("failed to clear token: %w", err)
	}
	return nil
}

package store

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/rpggio/profitability/internal/repository"
)

// ErrUnauthorized is returned when a bearer token matches no API key.
var ErrUnauthorized = errors.New("unauthorized: invalid token")

// APIKeyRepository maps bearer tokens to the person they act as. Only the
// SHA-256 of a token is stored.
type APIKeyRepository struct {
	db  *DB
	now func() time.Time
}

// NewAPIKeyRepository creates a new API key repository
func NewAPIKeyRepository(db *DB) *APIKeyRepository {
	return &APIKeyRepository{db: db, now: time.Now}
}

// Create registers token for a person.
func (r *APIKeyRepository) Create(ctx context.Context, token, personID, description string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO api_keys (key_hash, person_id, description, created_at) VALUES (?, ?, ?, ?)`,
		HashToken(token), personID, nullable(description), r.now().UTC(),
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return repository.ErrForeignKeyViolation
		}
		if isUniqueViolation(err) {
			return repository.ErrConflict
		}
		return fmt.Errorf("failed to create api key: %w", err)
	}
	return nil
}

// ResolveViewer returns the person a token acts as and stamps its last use.
func (r *APIKeyRepository) ResolveViewer(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", ErrUnauthorized
	}
	hash := HashToken(token)
	var personID string
	err := r.db.QueryRowContext(ctx, `SELECT person_id FROM api_keys WHERE key_hash = ?`, hash).Scan(&personID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrUnauthorized
		}
		return "", fmt.Errorf("failed to resolve api key: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, `UPDATE api_keys SET last_used = ? WHERE key_hash = ?`, r.now().UTC(), hash); err != nil {
		return "", fmt.Errorf("failed to touch api key: %w", err)
	}
	return personID, nil
}

// HashToken returns the stored form of a token.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

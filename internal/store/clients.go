package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rpggio/profitability/internal/domain/ledger"
	"github.com/rpggio/profitability/internal/repository"
)

// ClientRepository implements ledger.ClientRepository
type ClientRepository struct {
	db *DB
}

// NewClientRepository creates a new client repository
func NewClientRepository(db *DB) *ClientRepository {
	return &ClientRepository{db: db}
}

// Upsert creates or replaces a client.
func (r *ClientRepository) Upsert(ctx context.Context, c *ledger.Client) error {
	kind := c.Kind
	if kind == "" {
		kind = ledger.ClientExternal
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO clients (id, name, kind, active) VALUES (?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			kind = excluded.kind,
			active = excluded.active
	`, c.ID, c.Name, string(kind), c.Active)
	if err != nil {
		return fmt.Errorf("failed to upsert client: %w", err)
	}
	return nil
}

// Get retrieves a client by ID
func (r *ClientRepository) Get(ctx context.Context, id string) (*ledger.Client, error) {
	var (
		c    ledger.Client
		kind string
	)
	err := r.db.QueryRowContext(ctx, `SELECT id, name, kind, active FROM clients WHERE id = ?`, id).
		Scan(&c.ID, &c.Name, &kind, &c.Active)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get client: %w", err)
	}
	c.Kind = ledger.ClientKind(kind)
	return &c, nil
}

// List returns every client ordered by name.
func (r *ClientRepository) List(ctx context.Context) ([]ledger.Client, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, kind, active FROM clients ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	defer rows.Close()

	var clients []ledger.Client
	for rows.Next() {
		var (
			c    ledger.Client
			kind string
		)
		if err := rows.Scan(&c.ID, &c.Name, &kind, &c.Active); err != nil {
			return nil, fmt.Errorf("failed to scan client: %w", err)
		}
		c.Kind = ledger.ClientKind(kind)
		clients = append(clients, c)
	}
	return clients, rows.Err()
}

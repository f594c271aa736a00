package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rpggio/profitability/internal/domain/valuation"
	"github.com/rpggio/profitability/internal/repository"
)

// QuoteRepository implements valuation.Repository
type QuoteRepository struct {
	db *DB
}

// NewQuoteRepository creates a new quote repository
func NewQuoteRepository(db *DB) *QuoteRepository {
	return &QuoteRepository{db: db}
}

const quoteColumns = `id, name, client_id, service_id, hours, direct_cost, overhead_pct, overhead,
	total_cost, margin_pct, margin, price, lines, created_by, created_at`

// Create stores a quote with its lines encoded as JSON.
func (r *QuoteRepository) Create(ctx context.Context, q *valuation.Quote) error {
	lines, err := json.Marshal(q.Lines)
	if err != nil {
		return fmt.Errorf("failed to encode quote lines: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `INSERT INTO quotes (`+quoteColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		q.ID,
		q.Name,
		nullable(q.ClientID),
		nullable(q.ServiceID),
		q.Hours,
		q.DirectCost,
		q.OverheadPct,
		q.Overhead,
		q.TotalCost,
		q.MarginPct,
		q.Margin,
		q.Price,
		string(lines),
		nullable(q.CreatedBy),
		q.CreatedAt.UTC(),
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return repository.ErrForeignKeyViolation
		}
		if isUniqueViolation(err) {
			return repository.ErrConflict
		}
		return fmt.Errorf("failed to create quote: %w", err)
	}
	return nil
}

// Get retrieves a quote by ID
func (r *QuoteRepository) Get(ctx context.Context, id string) (*valuation.Quote, error) {
	q, err := scanQuote(r.db.QueryRowContext(ctx, `SELECT `+quoteColumns+` FROM quotes WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get quote: %w", err)
	}
	return q, nil
}

// List returns quotes newest first, optionally limited to a client.
func (r *QuoteRepository) List(ctx context.Context, clientID string) ([]valuation.Quote, error) {
	var (
		conditions []string
		args       []any
	)
	if clientID != "" {
		conditions = append(conditions, "client_id = ?")
		args = append(args, clientID)
	}
	rows, err := r.db.QueryContext(ctx, `SELECT `+quoteColumns+` FROM quotes`+joinConditions(conditions)+` ORDER BY created_at DESC, id`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list quotes: %w", err)
	}
	defer rows.Close()

	var out []valuation.Quote
	for rows.Next() {
		q, err := scanQuote(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan quote: %w", err)
		}
		out = append(out, *q)
	}
	return out, rows.Err()
}

func scanQuote(s scanner) (*valuation.Quote, error) {
	var (
		q                              valuation.Quote
		clientID, serviceID, createdBy sql.NullString
		lines                          string
	)
	err := s.Scan(&q.ID, &q.Name, &clientID, &serviceID, &q.Hours, &q.DirectCost, &q.OverheadPct, &q.Overhead,
		&q.TotalCost, &q.MarginPct, &q.Margin, &q.Price, &lines, &createdBy, &q.CreatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(lines), &q.Lines); err != nil {
		return nil, fmt.Errorf("failed to decode quote lines: %w", err)
	}
	q.ClientID = str(clientID)
	q.ServiceID = str(serviceID)
	q.CreatedBy = str(createdBy)
	return &q, nil
}

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rpggio/profitability/internal/domain/ledger"
	"github.com/rpggio/profitability/internal/repository"
)

// RevenueRepository implements ledger.RevenueRepository
type RevenueRepository struct {
	db *DB
}

// NewRevenueRepository creates a new recognized revenue repository
func NewRevenueRepository(db *DB) *RevenueRepository {
	return &RevenueRepository{db: db}
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Upsert replaces the amount recognized for a service in a month.
func (r *RevenueRepository) Upsert(ctx context.Context, rev *ledger.RecognizedRevenue) error {
	return upsertRevenue(ctx, r.db, rev)
}

func upsertRevenue(ctx context.Context, db execer, rev *ledger.RecognizedRevenue) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO recognized_revenue (service_id, client_id, year, month, amount)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (service_id, year, month) DO UPDATE SET
			client_id = excluded.client_id,
			amount = excluded.amount
	`, rev.ServiceID, rev.ClientID, rev.Year, int(rev.Month), rev.Amount)
	if err != nil {
		if isForeignKeyViolation(err) {
			return repository.ErrForeignKeyViolation
		}
		return fmt.Errorf("failed to upsert revenue: %w", err)
	}
	return nil
}

// List returns revenue rows matching the filter ordered by month.
func (r *RevenueRepository) List(ctx context.Context, filter ledger.RevenueFilter) ([]ledger.RecognizedRevenue, error) {
	var (
		conditions []string
		args       []any
	)
	if filter.ServiceID != "" {
		conditions = append(conditions, "service_id = ?")
		args = append(args, filter.ServiceID)
	}
	if filter.ClientID != "" {
		conditions = append(conditions, "client_id = ?")
		args = append(args, filter.ClientID)
	}
	if filter.Year != 0 {
		conditions = append(conditions, "year = ?")
		args = append(args, filter.Year)
	}
	if filter.Month != 0 {
		conditions = append(conditions, "month = ?")
		args = append(args, int(filter.Month))
	}

	query := `SELECT service_id, client_id, year, month, amount FROM recognized_revenue` +
		joinConditions(conditions) + ` ORDER BY year, month, service_id`
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list revenue: %w", err)
	}
	defer rows.Close()

	var out []ledger.RecognizedRevenue
	for rows.Next() {
		var (
			rev   ledger.RecognizedRevenue
			month int
		)
		if err := rows.Scan(&rev.ServiceID, &rev.ClientID, &rev.Year, &month, &rev.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan revenue: %w", err)
		}
		rev.Month = time.Month(month)
		out = append(out, rev)
	}
	return out, rows.Err()
}

package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rpggio/profitability/internal/domain/ledger"
	"github.com/rpggio/profitability/internal/repository"
)

// InvoiceRepository implements ledger.InvoiceRepository
type InvoiceRepository struct {
	db *DB
}

// NewInvoiceRepository creates a new invoice repository
func NewInvoiceRepository(db *DB) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

// Create stores an invoice
func (r *InvoiceRepository) Create(ctx context.Context, inv *ledger.Invoice) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO invoices (id, client_id, project_id, date, amount, paid)
		VALUES (?, ?, ?, ?, ?, ?)
	`, inv.ID, inv.ClientID, nullable(inv.ProjectID), dateOnly(inv.Date), inv.Amount, inv.Paid)
	if err != nil {
		if isForeignKeyViolation(err) {
			return repository.ErrForeignKeyViolation
		}
		if isUniqueViolation(err) {
			return repository.ErrConflict
		}
		return fmt.Errorf("failed to create invoice: %w", err)
	}
	return nil
}

// List returns invoices matching the filter ordered by date.
func (r *InvoiceRepository) List(ctx context.Context, filter ledger.InvoiceFilter) ([]ledger.Invoice, error) {
	var (
		conditions []string
		args       []any
	)
	if filter.ClientID != "" {
		conditions = append(conditions, "client_id = ?")
		args = append(args, filter.ClientID)
	}
	if filter.ProjectID != "" {
		conditions = append(conditions, "project_id = ?")
		args = append(args, filter.ProjectID)
	}
	if !filter.From.IsZero() {
		conditions = append(conditions, "date >= ?")
		args = append(args, dateOnly(filter.From))
	}
	if !filter.To.IsZero() {
		conditions = append(conditions, "date <= ?")
		args = append(args, dateOnly(filter.To))
	}

	query := `SELECT id, client_id, project_id, date, amount, paid FROM invoices` +
		joinConditions(conditions) + ` ORDER BY date, id`
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	defer rows.Close()

	var out []ledger.Invoice
	for rows.Next() {
		var (
			inv       ledger.Invoice
			projectID sql.NullString
		)
		if err := rows.Scan(&inv.ID, &inv.ClientID, &projectID, &inv.Date, &inv.Amount, &inv.Paid); err != nil {
			return nil, fmt.Errorf("failed to scan invoice: %w", err)
		}
		inv.ProjectID = str(projectID)
		inv.Date = inv.Date.UTC()
		out = append(out, inv)
	}
	return out, rows.Err()
}

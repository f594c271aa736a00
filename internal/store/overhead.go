package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rpggio/profitability/internal/domain/ledger"
	"github.com/rpggio/profitability/internal/repository"
)

// OverheadRepository implements ledger.OverheadRepository
type OverheadRepository struct {
	db *DB
}

// NewOverheadRepository creates a new overhead expense repository
func NewOverheadRepository(db *DB) *OverheadRepository {
	return &OverheadRepository{db: db}
}

// Create stores an expense. A concept may be booked once per month.
func (r *OverheadRepository) Create(ctx context.Context, e *ledger.OverheadExpense) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO overhead_expenses (id, year, month, concept, category, amount, note)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, e.ID, e.Year, int(e.Month), e.Concept, nullable(e.Category), e.Amount, nullable(e.Note))
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrConflict
		}
		return fmt.Errorf("failed to create overhead expense: %w", err)
	}
	return nil
}

// List returns the expenses of a year, or of one month when month is set.
func (r *OverheadRepository) List(ctx context.Context, year int, month time.Month) ([]ledger.OverheadExpense, error) {
	conditions := []string{"year = ?"}
	args := []any{year}
	if month != 0 {
		conditions = append(conditions, "month = ?")
		args = append(args, int(month))
	}

	query := `SELECT id, year, month, concept, category, amount, note FROM overhead_expenses` +
		joinConditions(conditions) + ` ORDER BY month, concept`
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list overhead expenses: %w", err)
	}
	defer rows.Close()

	var out []ledger.OverheadExpense
	for rows.Next() {
		var (
			e              ledger.OverheadExpense
			m              int
			category, note sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.Year, &m, &e.Concept, &category, &e.Amount, &note); err != nil {
			return nil, fmt.Errorf("failed to scan overhead expense: %w", err)
		}
		e.Month = time.Month(m)
		e.Category = str(category)
		e.Note = str(note)
		out = append(out, e)
	}
	return out, rows.Err()
}

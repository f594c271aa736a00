package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rpggio/profitability/internal/domain/ledger"
	"github.com/rpggio/profitability/internal/repository"
)

// ServiceRepository implements ledger.ServiceRepository
type ServiceRepository struct {
	db *DB
}

// NewServiceRepository creates a new contracted service repository
func NewServiceRepository(db *DB) *ServiceRepository {
	return &ServiceRepository{db: db}
}

const serviceColumns = `id, client_id, name, monthly_value, billing, start_date, end_date, active`

// Upsert creates or replaces a contracted service.
func (r *ServiceRepository) Upsert(ctx context.Context, s *ledger.ContractedService) error {
	billing := s.Billing
	if billing == "" {
		billing = ledger.Recurring
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO services (`+serviceColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			client_id = excluded.client_id,
			name = excluded.name,
			monthly_value = excluded.monthly_value,
			billing = excluded.billing,
			start_date = excluded.start_date,
			end_date = excluded.end_date,
			active = excluded.active
	`, s.ID, s.ClientID, s.Name, s.MonthlyValue, string(billing), nullTime(s.StartDate), nullTime(s.EndDate), s.Active)
	if err != nil {
		if isForeignKeyViolation(err) {
			return repository.ErrForeignKeyViolation
		}
		return fmt.Errorf("failed to upsert service: %w", err)
	}
	return nil
}

// Get retrieves a contracted service by ID
func (r *ServiceRepository) Get(ctx context.Context, id string) (*ledger.ContractedService, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+serviceColumns+` FROM services WHERE id = ?`, id)
	s, err := scanService(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get service: %w", err)
	}
	return s, nil
}

// List returns services, optionally limited to a client.
func (r *ServiceRepository) List(ctx context.Context, clientID string) ([]ledger.ContractedService, error) {
	var (
		conditions []string
		args       []any
	)
	if clientID != "" {
		conditions = append(conditions, "client_id = ?")
		args = append(args, clientID)
	}
	rows, err := r.db.QueryContext(ctx, `SELECT `+serviceColumns+` FROM services`+joinConditions(conditions)+` ORDER BY name, id`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}
	defer rows.Close()

	var services []ledger.ContractedService
	for rows.Next() {
		s, err := scanService(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan service: %w", err)
		}
		services = append(services, *s)
	}
	return services, rows.Err()
}

// ValueChanges returns a service's value changes effective in year, oldest first.
func (r *ServiceRepository) ValueChanges(ctx context.Context, serviceID string, year int) ([]ledger.ValueChange, error) {
	query := `
		SELECT id, service_id, previous_value, new_value, effective_date, reason, changed_by, created_at
		FROM value_changes
		WHERE service_id = ? AND effective_date >= ? AND effective_date < ?
		ORDER BY effective_date, created_at
	`
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	rows, err := r.db.QueryContext(ctx, query, serviceID, from, from.AddDate(1, 0, 0))
	if err != nil {
		return nil, fmt.Errorf("failed to list value changes: %w", err)
	}
	defer rows.Close()

	var changes []ledger.ValueChange
	for rows.Next() {
		var (
			c                 ledger.ValueChange
			reason, changedBy sql.NullString
		)
		if err := rows.Scan(&c.ID, &c.ServiceID, &c.Previous, &c.New, &c.EffectiveDate, &reason, &changedBy, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan value change: %w", err)
		}
		c.Reason = str(reason)
		c.ChangedBy = str(changedBy)
		c.EffectiveDate = c.EffectiveDate.UTC()
		changes = append(changes, c)
	}
	return changes, rows.Err()
}

// ApplyValueChange records the change and updates the service in one
// transaction. With rewriteRevenue set, recognized revenue from the effective
// month through December of that year is replaced by the new value.
func (r *ServiceRepository) ApplyValueChange(ctx context.Context, change *ledger.ValueChange, rewriteRevenue bool) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var clientID string
	err = tx.QueryRowContext(ctx, `SELECT client_id FROM services WHERE id = ?`, change.ServiceID).Scan(&clientID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return repository.ErrNotFound
		}
		return fmt.Errorf("failed to get service: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO value_changes (id, service_id, previous_value, new_value, effective_date, reason, changed_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, change.ID, change.ServiceID, change.Previous, change.New, dateOnly(change.EffectiveDate),
		nullable(change.Reason), nullable(change.ChangedBy), change.CreatedAt.UTC())
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrConflict
		}
		return fmt.Errorf("failed to insert value change: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `UPDATE services SET monthly_value = ? WHERE id = ?`, change.New, change.ServiceID); err != nil {
		return fmt.Errorf("failed to update service value: %w", err)
	}

	if rewriteRevenue {
		year := change.EffectiveDate.Year()
		for m := change.EffectiveDate.Month(); m <= time.December; m++ {
			if err := upsertRevenue(ctx, tx, &ledger.RecognizedRevenue{
				ServiceID: change.ServiceID,
				ClientID:  clientID,
				Year:      year,
				Month:     m,
				Amount:    change.New,
			}); err != nil {
				return err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func scanService(s scanner) (*ledger.ContractedService, error) {
	var (
		svc        ledger.ContractedService
		billing    string
		start, end sql.NullTime
	)
	if err := s.Scan(&svc.ID, &svc.ClientID, &svc.Name, &svc.MonthlyValue, &billing, &start, &end, &svc.Active); err != nil {
		return nil, err
	}
	svc.Billing = ledger.Billing(billing)
	svc.StartDate = timePtr(start)
	svc.EndDate = timePtr(end)
	return &svc, nil
}

func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time.UTC()
	return &t
}

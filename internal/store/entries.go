package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rpggio/profitability/internal/domain/ledger"
	"github.com/rpggio/profitability/internal/repository"
)

// TimeEntryRepository implements ledger.TimeEntryRepository
type TimeEntryRepository struct {
	db *DB
}

// NewTimeEntryRepository creates a new time entry repository
func NewTimeEntryRepository(db *DB) *TimeEntryRepository {
	return &TimeEntryRepository{db: db}
}

const entryColumns = `id, person_id, client_id, project_id, area_id, service_id, task_id, date, hours, note, created_at`

// Create stores a new time entry
func (r *TimeEntryRepository) Create(ctx context.Context, e *ledger.TimeEntry) error {
	query := `INSERT INTO time_entries (` + entryColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		e.ID,
		e.PersonID,
		e.ClientID,
		nullable(e.ProjectID),
		nullable(e.AreaID),
		nullable(e.ServiceID),
		nullable(e.TaskID),
		dateOnly(e.Date),
		e.Hours,
		nullable(e.Note),
		e.CreatedAt.UTC(),
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return repository.ErrForeignKeyViolation
		}
		if isUniqueViolation(err) {
			return repository.ErrConflict
		}
		return fmt.Errorf("failed to create time entry: %w", err)
	}
	return nil
}

// Get retrieves a time entry by ID
func (r *TimeEntryRepository) Get(ctx context.Context, id string) (*ledger.TimeEntry, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+entryColumns+` FROM time_entries WHERE id = ?`, id)
	e, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get time entry: %w", err)
	}
	return e, nil
}

// Update rewrites the mutable fields of a time entry
func (r *TimeEntryRepository) Update(ctx context.Context, e *ledger.TimeEntry) error {
	query := `
		UPDATE time_entries
		SET client_id = ?, project_id = ?, area_id = ?, service_id = ?, task_id = ?,
		    date = ?, hours = ?, note = ?
		WHERE id = ?
	`
	result, err := r.db.ExecContext(ctx, query,
		e.ClientID,
		nullable(e.ProjectID),
		nullable(e.AreaID),
		nullable(e.ServiceID),
		nullable(e.TaskID),
		dateOnly(e.Date),
		e.Hours,
		nullable(e.Note),
		e.ID,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return repository.ErrForeignKeyViolation
		}
		return fmt.Errorf("failed to update time entry: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes a time entry
func (r *TimeEntryRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM time_entries WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete time entry: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// List returns entries matching the filter ordered by date.
func (r *TimeEntryRepository) List(ctx context.Context, filter ledger.EntryFilter) ([]ledger.TimeEntry, error) {
	var (
		conditions []string
		args       []any
	)
	if filter.PersonID != "" {
		conditions = append(conditions, "person_id = ?")
		args = append(args, filter.PersonID)
	}
	if filter.ClientID != "" {
		conditions = append(conditions, "client_id = ?")
		args = append(args, filter.ClientID)
	}
	if filter.ProjectID != "" {
		conditions = append(conditions, "project_id = ?")
		args = append(args, filter.ProjectID)
	}
	if filter.AreaID != "" {
		conditions = append(conditions, "area_id = ?")
		args = append(args, filter.AreaID)
	}
	if !filter.From.IsZero() {
		conditions = append(conditions, "date >= ?")
		args = append(args, dateOnly(filter.From))
	}
	if !filter.To.IsZero() {
		conditions = append(conditions, "date <= ?")
		args = append(args, dateOnly(filter.To))
	}

	query := `SELECT ` + entryColumns + ` FROM time_entries` + joinConditions(conditions) + ` ORDER BY date, created_at, id`
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list time entries: %w", err)
	}
	defer rows.Close()

	var entries []ledger.TimeEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan time entry: %w", err)
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

func scanEntry(s scanner) (*ledger.TimeEntry, error) {
	var (
		e                                          ledger.TimeEntry
		projectID, areaID, serviceID, taskID, note sql.NullString
	)
	err := s.Scan(&e.ID, &e.PersonID, &e.ClientID, &projectID, &areaID, &serviceID, &taskID,
		&e.Date, &e.Hours, &note, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	e.ProjectID = str(projectID)
	e.AreaID = str(areaID)
	e.ServiceID = str(serviceID)
	e.TaskID = str(taskID)
	e.Note = str(note)
	e.Date = e.Date.UTC()
	return &e, nil
}

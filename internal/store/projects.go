package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rpggio/profitability/internal/domain/ledger"
	"github.com/rpggio/profitability/internal/repository"
)

// ProjectRepository implements ledger.ProjectRepository
type ProjectRepository struct {
	db *DB
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(db *DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

const projectColumns = `id, client_id, code, name, kind, status, start_date, end_date, budget, target_margin_pct`

// Upsert creates or replaces a project.
func (r *ProjectRepository) Upsert(ctx context.Context, p *ledger.Project) error {
	status := p.Status
	if status == "" {
		status = "active"
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO projects (`+projectColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			client_id = excluded.client_id,
			code = excluded.code,
			name = excluded.name,
			kind = excluded.kind,
			status = excluded.status,
			start_date = excluded.start_date,
			end_date = excluded.end_date,
			budget = excluded.budget,
			target_margin_pct = excluded.target_margin_pct
	`, p.ID, p.ClientID, nullable(p.Code), p.Name, nullable(p.Kind), status,
		nullTime(p.StartDate), nullTime(p.EndDate), p.Budget, p.TargetMarginPct)
	if err != nil {
		if isForeignKeyViolation(err) {
			return repository.ErrForeignKeyViolation
		}
		return fmt.Errorf("failed to upsert project: %w", err)
	}
	return nil
}

// Get retrieves a project by ID
func (r *ProjectRepository) Get(ctx context.Context, id string) (*ledger.Project, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = ?`, id)
	p, err := scanProject(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return p, nil
}

// List returns projects, optionally limited to a client.
func (r *ProjectRepository) List(ctx context.Context, clientID string) ([]ledger.Project, error) {
	var (
		conditions []string
		args       []any
	)
	if clientID != "" {
		conditions = append(conditions, "client_id = ?")
		args = append(args, clientID)
	}
	rows, err := r.db.QueryContext(ctx, `SELECT `+projectColumns+` FROM projects`+joinConditions(conditions)+` ORDER BY name, id`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []ledger.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, *p)
	}
	return projects, rows.Err()
}

func scanProject(s scanner) (*ledger.Project, error) {
	var (
		p          ledger.Project
		code, kind sql.NullString
		start, end sql.NullTime
	)
	err := s.Scan(&p.ID, &p.ClientID, &code, &p.Name, &kind, &p.Status, &start, &end, &p.Budget, &p.TargetMarginPct)
	if err != nil {
		return nil, err
	}
	p.Code = str(code)
	p.Kind = str(kind)
	p.StartDate = timePtr(start)
	p.EndDate = timePtr(end)
	return &p, nil
}

// AssignmentRepository implements ledger.AssignmentRepository
type AssignmentRepository struct {
	db *DB
}

// NewAssignmentRepository creates a new AssignmentRepository
func NewAssignmentRepository(db *DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// Upsert creates or replaces an assignment.
func (r *AssignmentRepository) Upsert(ctx context.Context, a *ledger.Assignment) error {
	role := a.Role
	if role == "" {
		role = ledger.RoleCollaborator
	}
	var override any
	if a.HourlyCostOverride != nil {
		override = *a.HourlyCostOverride
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO assignments (id, project_id, person_id, role, estimated_hours, hourly_cost_override, start_date, active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			project_id = excluded.project_id,
			person_id = excluded.person_id,
			role = excluded.role,
			estimated_hours = excluded.estimated_hours,
			hourly_cost_override = excluded.hourly_cost_override,
			start_date = excluded.start_date,
			active = excluded.active
	`, a.ID, a.ProjectID, a.PersonID, role, a.EstimatedHours, override, nullTime(a.StartDate), a.Active)
	if err != nil {
		if isForeignKeyViolation(err) {
			return repository.ErrForeignKeyViolation
		}
		return fmt.Errorf("failed to upsert assignment: %w", err)
	}
	return nil
}

// List returns a project's assignments.
func (r *AssignmentRepository) List(ctx context.Context, projectID string) ([]ledger.Assignment, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, project_id, person_id, role, estimated_hours, hourly_cost_override, start_date, active
		FROM assignments
		WHERE project_id = ?
		ORDER BY role DESC, person_id
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}
	defer rows.Close()

	var out []ledger.Assignment
	for rows.Next() {
		var (
			a        ledger.Assignment
			override sql.NullFloat64
			start    sql.NullTime
		)
		if err := rows.Scan(&a.ID, &a.ProjectID, &a.PersonID, &a.Role, &a.EstimatedHours, &override, &start, &a.Active); err != nil {
			return nil, fmt.Errorf("failed to scan assignment: %w", err)
		}
		if override.Valid {
			v := override.Float64
			a.HourlyCostOverride = &v
		}
		a.StartDate = timePtr(start)
		out = append(out, a)
	}
	return out, rows.Err()
}

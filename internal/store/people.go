package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rpggio/profitability/internal/domain/ledger"
	"github.com/rpggio/profitability/internal/repository"
)

// PersonRepository implements ledger.PersonRepository
type PersonRepository struct {
	db *DB
}

// NewPersonRepository creates a new person repository
func NewPersonRepository(db *DB) *PersonRepository {
	return &PersonRepository{db: db}
}

const personColumns = `id, name, email, area_id, seniority, manager_id, admin, monthly_cost, employment, active`

// Upsert creates or replaces a person.
func (r *PersonRepository) Upsert(ctx context.Context, p *ledger.Person) error {
	query := `
		INSERT INTO people (` + personColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			email = excluded.email,
			area_id = excluded.area_id,
			seniority = excluded.seniority,
			manager_id = excluded.manager_id,
			admin = excluded.admin,
			monthly_cost = excluded.monthly_cost,
			employment = excluded.employment,
			active = excluded.active
	`
	employment := p.Employment
	if employment == "" {
		employment = ledger.FullTime
	}
	_, err := r.db.ExecContext(ctx, query,
		p.ID, p.Name, nullable(p.Email), nullable(p.AreaID), nullable(p.Seniority),
		nullable(p.ManagerID), p.Admin, p.MonthlyCost, string(employment), p.Active,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return repository.ErrForeignKeyViolation
		}
		return fmt.Errorf("failed to upsert person: %w", err)
	}
	return nil
}

// Get retrieves a person by ID
func (r *PersonRepository) Get(ctx context.Context, id string) (*ledger.Person, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+personColumns+` FROM people WHERE id = ?`, id)
	p, err := scanPerson(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get person: %w", err)
	}
	return p, nil
}

// List returns every person, active or not.
func (r *PersonRepository) List(ctx context.Context) ([]ledger.Person, error) {
	return r.list(ctx, `SELECT `+personColumns+` FROM people ORDER BY name, id`)
}

// ListActive returns active people, optionally limited to an area.
func (r *PersonRepository) ListActive(ctx context.Context, areaID string) ([]ledger.Person, error) {
	if areaID == "" {
		return r.list(ctx, `SELECT `+personColumns+` FROM people WHERE active = TRUE ORDER BY name, id`)
	}
	return r.list(ctx, `SELECT `+personColumns+` FROM people WHERE active = TRUE AND area_id = ? ORDER BY name, id`, areaID)
}

func (r *PersonRepository) list(ctx context.Context, query string, args ...any) ([]ledger.Person, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list people: %w", err)
	}
	defer rows.Close()

	var people []ledger.Person
	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan person: %w", err)
		}
		people = append(people, *p)
	}
	return people, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPerson(s scanner) (*ledger.Person, error) {
	var (
		p                                   ledger.Person
		email, areaID, seniority, managerID sql.NullString
		employment                          string
	)
	if err := s.Scan(&p.ID, &p.Name, &email, &areaID, &seniority, &managerID, &p.Admin, &p.MonthlyCost, &employment, &p.Active); err != nil {
		return nil, err
	}
	p.Email = str(email)
	p.AreaID = str(areaID)
	p.Seniority = str(seniority)
	p.ManagerID = str(managerID)
	p.Employment = ledger.Employment(employment)
	return &p, nil
}

// AreaRepository implements ledger.AreaRepository
type AreaRepository struct {
	db *DB
}

// NewAreaRepository creates a new area repository
func NewAreaRepository(db *DB) *AreaRepository {
	return &AreaRepository{db: db}
}

// Upsert creates or renames an area.
func (r *AreaRepository) Upsert(ctx context.Context, a *ledger.Area) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO areas (id, name) VALUES (?, ?) ON CONFLICT (id) DO UPDATE SET name = excluded.name`,
		a.ID, a.Name,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert area: %w", err)
	}
	return nil
}

// List returns every area ordered by name.
func (r *AreaRepository) List(ctx context.Context) ([]ledger.Area, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM areas ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list areas: %w", err)
	}
	defer rows.Close()

	var areas []ledger.Area
	for rows.Next() {
		var a ledger.Area
		if err := rows.Scan(&a.ID, &a.Name); err != nil {
			return nil, fmt.Errorf("failed to scan area: %w", err)
		}
		areas = append(areas, a)
	}
	return areas, rows.Err()
}

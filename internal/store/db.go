// Package store implements the ledger repositories on database/sql. SQLite
// (modernc, pure Go) is the default; PostgreSQL is reached through the pgx
// stdlib driver. Queries are written with ? placeholders and rebound for
// PostgreSQL.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Dialect is the SQL flavour of the connection.
type Dialect string

const (
	SQLite   Dialect = "sqlite"
	Postgres Dialect = "postgres"
)

// DB wraps a database connection
type DB struct {
	*sql.DB
	dialect Dialect
}

// New opens a SQLite database.
func New(dataSourceName string) (*DB, error) {
	return Open(SQLite, dataSourceName)
}

// Open connects with the given dialect.
func Open(dialect Dialect, dsn string) (*DB, error) {
	switch dialect {
	case SQLite, "":
		db, err := sql.Open("sqlite", dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		// One connection keeps :memory: databases and PRAGMAs consistent.
		db.SetMaxOpenConns(1)
		if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
		}
		return &DB{DB: db, dialect: SQLite}, nil

	case Postgres:
		db, err := sql.Open("pgx", dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		if err := db.Ping(); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		return &DB{DB: db, dialect: Postgres}, nil

	default:
		return nil, fmt.Errorf("unsupported database driver %q", dialect)
	}
}

// Dialect reports the connection's SQL flavour.
func (db *DB) Dialect() Dialect { return db.dialect }

func (db *DB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return db.DB.ExecContext(ctx, db.rebind(query), args...)
}

func (db *DB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return db.DB.QueryContext(ctx, db.rebind(query), args...)
}

func (db *DB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return db.DB.QueryRowContext(ctx, db.rebind(query), args...)
}

// BeginTx starts a transaction whose statements are rebound like the DB's.
func (db *DB) BeginTx(ctx context.Context, opts *sql.TxOptions) (*Tx, error) {
	tx, err := db.DB.BeginTx(ctx, opts)
	if err != nil {
		return nil, err
	}
	return &Tx{Tx: tx, db: db}, nil
}

// Tx wraps a transaction
type Tx struct {
	*sql.Tx
	db *DB
}

func (tx *Tx) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return tx.Tx.ExecContext(ctx, tx.db.rebind(query), args...)
}

func (tx *Tx) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return tx.Tx.QueryRowContext(ctx, tx.db.rebind(query), args...)
}

// rebind rewrites ? placeholders to $1..$n for PostgreSQL.
func (db *DB) rebind(query string) string {
	if db.dialect != Postgres || !strings.Contains(query, "?") {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// RunMigrations creates the schema. It is idempotent.
func (db *DB) RunMigrations() error {
	return db.RunMigrationsContext(context.Background())
}

// RunMigrationsContext creates the schema, one statement at a time.
func (db *DB) RunMigrationsContext(ctx context.Context) error {
	for _, stmt := range strings.Split(schema, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := db.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}
	return nil
}

const schema = `
CREATE TABLE IF NOT EXISTS areas (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS people (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    email TEXT,
    area_id TEXT REFERENCES areas(id),
    seniority TEXT,
    manager_id TEXT,
    admin BOOLEAN NOT NULL DEFAULT FALSE,
    monthly_cost DOUBLE PRECISION NOT NULL DEFAULT 0,
    employment TEXT NOT NULL CHECK(employment IN ('full_time', 'part_time')),
    active BOOLEAN NOT NULL DEFAULT TRUE
);
CREATE INDEX IF NOT EXISTS idx_people_area ON people(area_id);
CREATE INDEX IF NOT EXISTS idx_people_manager ON people(manager_id);

CREATE TABLE IF NOT EXISTS clients (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    kind TEXT NOT NULL CHECK(kind IN ('external', 'house', 'aggregate')),
    active BOOLEAN NOT NULL DEFAULT TRUE
);

CREATE TABLE IF NOT EXISTS services (
    id TEXT PRIMARY KEY,
    client_id TEXT NOT NULL REFERENCES clients(id),
    name TEXT NOT NULL,
    monthly_value DOUBLE PRECISION NOT NULL DEFAULT 0,
    billing TEXT NOT NULL CHECK(billing IN ('recurring', 'spot')),
    start_date DATE,
    end_date DATE,
    active BOOLEAN NOT NULL DEFAULT TRUE
);
CREATE INDEX IF NOT EXISTS idx_services_client ON services(client_id);

CREATE TABLE IF NOT EXISTS value_changes (
    id TEXT PRIMARY KEY,
    service_id TEXT NOT NULL REFERENCES services(id),
    previous_value DOUBLE PRECISION NOT NULL,
    new_value DOUBLE PRECISION NOT NULL,
    effective_date DATE NOT NULL,
    reason TEXT,
    changed_by TEXT,
    created_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_value_changes_service ON value_changes(service_id, effective_date);

CREATE TABLE IF NOT EXISTS recognized_revenue (
    service_id TEXT NOT NULL REFERENCES services(id),
    client_id TEXT NOT NULL REFERENCES clients(id),
    year INTEGER NOT NULL,
    month INTEGER NOT NULL CHECK(month BETWEEN 1 AND 12),
    amount DOUBLE PRECISION NOT NULL,
    PRIMARY KEY (service_id, year, month)
);
CREATE INDEX IF NOT EXISTS idx_revenue_client ON recognized_revenue(client_id, year, month);

CREATE TABLE IF NOT EXISTS projects (
    id TEXT PRIMARY KEY,
    client_id TEXT NOT NULL REFERENCES clients(id),
    code TEXT,
    name TEXT NOT NULL,
    kind TEXT,
    status TEXT NOT NULL DEFAULT 'active',
    start_date DATE,
    end_date DATE,
    budget DOUBLE PRECISION NOT NULL DEFAULT 0,
    target_margin_pct DOUBLE PRECISION NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_projects_client ON projects(client_id);

CREATE TABLE IF NOT EXISTS assignments (
    id TEXT PRIMARY KEY,
    project_id TEXT NOT NULL REFERENCES projects(id),
    person_id TEXT NOT NULL REFERENCES people(id),
    role TEXT NOT NULL CHECK(role IN ('lead', 'collaborator')),
    estimated_hours DOUBLE PRECISION NOT NULL DEFAULT 0,
    hourly_cost_override DOUBLE PRECISION,
    start_date DATE,
    active BOOLEAN NOT NULL DEFAULT TRUE
);
CREATE INDEX IF NOT EXISTS idx_assignments_project ON assignments(project_id);

CREATE TABLE IF NOT EXISTS time_entries (
    id TEXT PRIMARY KEY,
    person_id TEXT NOT NULL REFERENCES people(id),
    client_id TEXT NOT NULL REFERENCES clients(id),
    project_id TEXT REFERENCES projects(id),
    area_id TEXT,
    service_id TEXT,
    task_id TEXT,
    date DATE NOT NULL,
    hours DOUBLE PRECISION NOT NULL CHECK(hours > 0 AND hours <= 24),
    note TEXT,
    created_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_entries_date ON time_entries(date);
CREATE INDEX IF NOT EXISTS idx_entries_person ON time_entries(person_id, date);
CREATE INDEX IF NOT EXISTS idx_entries_client ON time_entries(client_id, date);

CREATE TABLE IF NOT EXISTS overhead_expenses (
    id TEXT PRIMARY KEY,
    year INTEGER NOT NULL,
    month INTEGER NOT NULL CHECK(month BETWEEN 1 AND 12),
    concept TEXT NOT NULL,
    category TEXT,
    amount DOUBLE PRECISION NOT NULL,
    note TEXT,
    UNIQUE (year, month, concept)
);

CREATE TABLE IF NOT EXISTS invoices (
    id TEXT PRIMARY KEY,
    client_id TEXT NOT NULL REFERENCES clients(id),
    project_id TEXT REFERENCES projects(id),
    date DATE NOT NULL,
    amount DOUBLE PRECISION NOT NULL,
    paid BOOLEAN NOT NULL DEFAULT FALSE
);
CREATE INDEX IF NOT EXISTS idx_invoices_date ON invoices(date);

CREATE TABLE IF NOT EXISTS quotes (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    client_id TEXT REFERENCES clients(id),
    service_id TEXT REFERENCES services(id),
    hours DOUBLE PRECISION NOT NULL,
    direct_cost DOUBLE PRECISION NOT NULL,
    overhead_pct DOUBLE PRECISION NOT NULL,
    overhead DOUBLE PRECISION NOT NULL,
    total_cost DOUBLE PRECISION NOT NULL,
    margin_pct DOUBLE PRECISION NOT NULL,
    margin DOUBLE PRECISION NOT NULL,
    price DOUBLE PRECISION NOT NULL,
    lines TEXT NOT NULL,
    created_by TEXT,
    created_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS api_keys (
    key_hash TEXT PRIMARY KEY,
    person_id TEXT NOT NULL REFERENCES people(id),
    description TEXT,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    last_used TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_api_keys_person ON api_keys(person_id)
`

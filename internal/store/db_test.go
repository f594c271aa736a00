package store

import (
	"context"
	"testing"
	"time"

	"github.com/rpggio/profitability/internal/domain/ledger"
	"github.com/stretchr/testify/require"
)

// NewTestDB creates a new in-memory SQLite database for testing
func NewTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := New(":memory:")
	require.NoError(t, err, "failed to create test database")

	err = db.RunMigrations()
	require.NoError(t, err, "failed to run migrations")

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

// seed stores a small ledger: one area, two people, two clients, a service and a project.
func seed(t *testing.T, repos *Repos) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, repos.Areas.Upsert(ctx, &ledger.Area{ID: "dev", Name: "Development"}))
	require.NoError(t, repos.People.Upsert(ctx, &ledger.Person{
		ID: "ana", Name: "Ana", AreaID: "dev", Admin: true, MonthlyCost: 3000, Employment: ledger.FullTime, Active: true,
	}))
	require.NoError(t, repos.People.Upsert(ctx, &ledger.Person{
		ID: "bob", Name: "Bob", AreaID: "dev", ManagerID: "ana", MonthlyCost: 1500, Employment: ledger.PartTime, Active: true,
	}))
	require.NoError(t, repos.Clients.Upsert(ctx, &ledger.Client{ID: "acme", Name: "Acme", Kind: ledger.ClientExternal, Active: true}))
	require.NoError(t, repos.Clients.Upsert(ctx, &ledger.Client{ID: "house", Name: "House", Kind: ledger.ClientHouse, Active: true}))
	require.NoError(t, repos.Services.Upsert(ctx, &ledger.ContractedService{
		ID: "web", ClientID: "acme", Name: "Web", MonthlyValue: 100, Billing: ledger.Recurring, Active: true,
	}))
	require.NoError(t, repos.Projects.Upsert(ctx, &ledger.Project{
		ID: "p1", ClientID: "acme", Code: "P-1", Name: "Portal", Budget: 500, TargetMarginPct: 25,
	}))
}

// TestMigrations verifies that migrations run successfully
func TestMigrations(t *testing.T) {
	db := NewTestDB(t)

	tables := []string{
		"areas",
		"people",
		"clients",
		"services",
		"value_changes",
		"recognized_revenue",
		"projects",
		"assignments",
		"time_entries",
		"overhead_expenses",
		"invoices",
		"quotes",
		"api_keys",
	}

	for _, table := range tables {
		var count int
		err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&count)
		require.NoError(t, err, "failed to query table %s", table)
		require.Equal(t, 1, count, "table %s not found", table)
	}

	// Running twice is harmless.
	require.NoError(t, db.RunMigrations())
}

// TestForeignKeys verifies that foreign key constraints are enabled
func TestForeignKeys(t *testing.T) {
	db := NewTestDB(t)

	var enabled int
	err := db.QueryRow("PRAGMA foreign_keys").Scan(&enabled)
	require.NoError(t, err)
	require.Equal(t, 1, enabled, "foreign keys not enabled")
}

func TestRebind(t *testing.T) {
	pg := &DB{dialect: Postgres}
	require.Equal(t, "SELECT * FROM t WHERE a = $1 AND b = $2", pg.rebind("SELECT * FROM t WHERE a = ? AND b = ?"))
	require.Equal(t, "SELECT 1", pg.rebind("SELECT 1"))

	lite := &DB{dialect: SQLite}
	require.Equal(t, "SELECT * FROM t WHERE a = ?", lite.rebind("SELECT * FROM t WHERE a = ?"))
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open("oracle", "x")
	require.Error(t, err)
}

func TestDateOnly(t *testing.T) {
	loc := time.FixedZone("x", -5*3600)
	got := dateOnly(time.Date(2024, 3, 5, 22, 30, 0, 0, loc))
	require.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), got)
}

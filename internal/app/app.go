// Package app wires the store, the domain services and the configuration
// into the set of services both binaries serve.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rpggio/profitability/internal/config"
	"github.com/rpggio/profitability/internal/domain/ledger"
	"github.com/rpggio/profitability/internal/domain/profitability"
	"github.com/rpggio/profitability/internal/domain/valuation"
	"github.com/rpggio/profitability/internal/mcp"
	"github.com/rpggio/profitability/internal/store"
	"github.com/rpggio/profitability/internal/transport"
)

// App holds the wired services.
type App struct {
	Repos  *store.Repos
	Config *config.Store
	Engine *profitability.Service
	Ledger *ledger.Service
	Quotes *valuation.Service
}

// Options tune the wiring.
type Options struct {
	// Now overrides the clock of the write service; nil means time.Now.
	Now    func() time.Time
	Logger *slog.Logger
}

// New builds the services over db. Engine settings are read from cfg on
// every computation; quote rates and the edit window are fixed at startup.
func New(db *store.DB, cfg *config.Store, opts Options) *App {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	repos := store.NewRepos(db)
	current := cfg.Config()

	ledgerOpts := current.Engine.LedgerOptions()
	ledgerOpts.Now = opts.Now

	return &App{
		Repos:  repos,
		Config: cfg,
		Engine: profitability.NewService(repos.Readers(), cfg, logger),
		Ledger: ledger.NewService(repos.Stores(), ledgerOpts, logger),
		Quotes: valuation.NewService(repos.Quotes, repos.People, current.Engine.Settings().Rates, logger).
			WithDefaults(current.Engine.Quote),
	}
}

// Services returns the MCP service set.
func (a *App) Services() mcp.Services {
	return mcp.Services{Engine: a.Engine, Ledger: a.Ledger, Quotes: a.Quotes}
}

// Resolver resolves bearer tokens from the api_keys table, then from the
// configured key hashes.
func (a *App) Resolver() transport.Chain {
	return transport.Chain{a.Repos.APIKeys, transport.StaticKeys(a.Config.Config().Auth.APIKeys)}
}

// OpenDB connects to the configured database and creates the schema.
func OpenDB(ctx context.Context, cfg config.DBConfig) (*store.DB, error) {
	var (
		db  *store.DB
		err error
	)
	switch cfg.Driver {
	case "postgres":
		db, err = store.Open(store.Postgres, cfg.DSN)
	default:
		if err := ensureDBDir(cfg.Path); err != nil {
			return nil, fmt.Errorf("failed to prepare database path: %w", err)
		}
		db, err = store.New(cfg.Path)
	}
	if err != nil {
		return nil, err
	}
	if err := db.RunMigrationsContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func ensureDBDir(path string) error {
	if path == ":memory:" || path == "" || strings.HasPrefix(path, "file:") {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

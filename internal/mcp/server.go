package mcp

import (
	"context"
	"log/slog"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/profitability/internal/domain/access"
	"github.com/rpggio/profitability/internal/domain/capacity"
	"github.com/rpggio/profitability/internal/domain/ledger"
	"github.com/rpggio/profitability/internal/domain/profitability"
	"github.com/rpggio/profitability/internal/domain/reporting"
	"github.com/rpggio/profitability/internal/domain/valuation"
)

// Engine defines the read operations needed by MCP.
type Engine interface {
	Scope(ctx context.Context, viewerID string) (access.Scope, error)
	Report(ctx context.Context, scope access.Scope, kind profitability.Kind, q profitability.Query) (any, error)
	HourlyCost(ctx context.Context, scope access.Scope, personID string) (*profitability.PersonCost, error)
	PersonProductivity(ctx context.Context, scope access.Scope, personID string, period ledger.Period) (*reporting.Productivity, error)
	ProjectAnnualRevenue(ctx context.Context, serviceID string, year int) (*profitability.Projection, error)
	HiringNeed(ctx context.Context, scope access.Scope, period ledger.Period, req capacity.HiringRequest) (*capacity.Signal, error)
}

// Ledger defines the write operations needed by MCP.
type Ledger interface {
	RecordTimeEntry(ctx context.Context, req ledger.RecordTimeEntryRequest) (*ledger.TimeEntry, error)
	UpdateTimeEntry(ctx context.Context, actorID string, req ledger.UpdateTimeEntryRequest) (*ledger.TimeEntry, error)
	DeleteTimeEntry(ctx context.Context, actorID, id string) error
	ChangeServiceValue(ctx context.Context, req ledger.ChangeServiceValueRequest) (*ledger.ValueChange, error)
	RecordOverheadExpense(ctx context.Context, req ledger.RecordOverheadExpenseRequest) (*ledger.OverheadExpense, error)
	RecordRevenue(ctx context.Context, serviceID string, year int, month time.Month, amount float64) (*ledger.RecognizedRevenue, error)
	RecordInvoice(ctx context.Context, req ledger.RecordInvoiceRequest) (*ledger.Invoice, error)
}

// Quotes defines the quoting operations needed by MCP.
type Quotes interface {
	Estimate(ctx context.Context, req valuation.QuoteRequest) (*valuation.Quote, error)
	CreateQuote(ctx context.Context, req valuation.QuoteRequest) (*valuation.Quote, error)
	GetQuote(ctx context.Context, id string) (*valuation.Quote, error)
	ListQuotes(ctx context.Context, clientID string) ([]valuation.Quote, error)
}

// Services contains all domain services needed by MCP.
type Services struct {
	Engine Engine
	Ledger Ledger
	Quotes Quotes
}

// Config contains server configuration.
type Config struct {
	Services      Services
	Resolver      ViewerResolver
	AuthEnabled   bool
	TransportMode string // "stdio" or "http"
	// DefaultViewer is the person used when auth is disabled.
	DefaultViewer string
	// Now resolves periods that omit a year; nil means time.Now.
	Now    func() time.Time
	Logger *slog.Logger
}

// NewServer creates and configures an MCP server with all tools and middleware.
func NewServer(cfg Config) *sdkmcp.Server {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	server := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    "profitability",
		Version: "0.1.0",
	}, &sdkmcp.ServerOptions{
		Instructions: serverInstructions,
		Logger:       cfg.Logger,
	})

	registerDocResources(server)

	// Stdio is a local session and always acts as the configured viewer.
	if cfg.TransportMode == "stdio" || !cfg.AuthEnabled {
		server.AddReceivingMiddleware(noAuthMiddleware(cfg.DefaultViewer))
	} else {
		server.AddReceivingMiddleware(authMiddleware(cfg.Resolver))
	}
	server.AddReceivingMiddleware(trafficLoggingMiddleware(cfg.Logger, "inbound"))
	server.AddSendingMiddleware(trafficLoggingMiddleware(cfg.Logger, "outbound"))

	t := &tools{svc: cfg.Services, now: cfg.Now, logger: cfg.Logger}
	t.register(server)

	return server
}

// Package valuation prices prospective work from the hourly cost of the
// people who would staff it.
package valuation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rpggio/profitability/internal/domain/costing"
	"github.com/rpggio/profitability/internal/domain/ledger"
	"github.com/rpggio/profitability/internal/repository"
	"github.com/shopspring/decimal"
)

// Defaults applied when a request leaves a percentage unset.
const (
	DefaultOverheadPct = 30.0
	DefaultMarginPct   = 20.0
)

var (
	ErrInvalidQuote  = errors.New("invalid quote")
	ErrQuoteNotFound = errors.New("quote not found")
)

// Repository persists quotes.
type Repository interface {
	Create(ctx context.Context, q *Quote) error
	Get(ctx context.Context, id string) (*Quote, error)
	List(ctx context.Context, clientID string) ([]Quote, error)
}

// QuoteLine is one person's staffing in a quote.
type QuoteLine struct {
	PersonID   string         `json:"person_id"`
	Name       string         `json:"name"`
	Seniority  string         `json:"seniority,omitempty"`
	Hours      float64        `json:"hours"`
	Billing    ledger.Billing `json:"billing"`
	HourlyCost float64        `json:"hourly_cost"`
	Cost       float64        `json:"cost"`
}

// Quote is a priced estimate. Amounts are in the accounting unit.
type Quote struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	ClientID    string      `json:"client_id,omitempty"`
	ServiceID   string      `json:"service_id,omitempty"`
	Hours       float64     `json:"hours"`
	DirectCost  float64     `json:"direct_cost"`
	OverheadPct float64     `json:"overhead_pct"`
	Overhead    float64     `json:"overhead"`
	TotalCost   float64     `json:"total_cost"`
	MarginPct   float64     `json:"margin_pct"`
	Margin      float64     `json:"margin"`
	Price       float64     `json:"price"`
	Lines       []QuoteLine `json:"lines"`
	CreatedBy   string      `json:"created_by,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
}

// LineRequest staffs one person for a number of hours.
type LineRequest struct {
	PersonID string         `json:"person_id"`
	Hours    float64        `json:"hours"`
	Billing  ledger.Billing `json:"billing,omitempty"`
}

// QuoteRequest defines quote inputs. Nil percentages take the defaults.
type QuoteRequest struct {
	Name        string        `json:"name"`
	ClientID    string        `json:"client_id,omitempty"`
	ServiceID   string        `json:"service_id,omitempty"`
	Lines       []LineRequest `json:"lines"`
	OverheadPct *float64      `json:"overhead_pct,omitempty"`
	MarginPct   *float64      `json:"margin_pct,omitempty"`
	CreatedBy   string        `json:"created_by,omitempty"`
}

// Defaults are the percentages applied when a request leaves one unset.
type Defaults struct {
	OverheadPct float64 `json:"overhead_pct" yaml:"overhead_pct"`
	MarginPct   float64 `json:"margin_pct" yaml:"margin_pct"`
}

// Service prices and stores quotes.
type Service struct {
	quotes   Repository
	people   ledger.PersonRepository
	rates    costing.Rates
	defaults Defaults
	now      func() time.Time
	logger   *slog.Logger
}

// NewService creates a new valuation service.
func NewService(quotes Repository, people ledger.PersonRepository, rates costing.Rates, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		quotes:   quotes,
		people:   people,
		rates:    rates,
		defaults: Defaults{OverheadPct: DefaultOverheadPct, MarginPct: DefaultMarginPct},
		now:      time.Now,
		logger:   logger,
	}
}

// WithDefaults returns a copy of the service using d for unset percentages.
func (s *Service) WithDefaults(d Defaults) *Service {
	cp := *s
	cp.defaults = d
	return &cp
}

// Estimate prices a request without saving it.
func (s *Service) Estimate(ctx context.Context, req QuoteRequest) (*Quote, error) {
	if len(req.Lines) == 0 {
		return nil, fmt.Errorf("%w: at least one line is required", ErrInvalidQuote)
	}
	overheadPct := pct(req.OverheadPct, s.defaults.OverheadPct)
	marginPct := pct(req.MarginPct, s.defaults.MarginPct)
	if overheadPct < 0 || marginPct < 0 {
		return nil, fmt.Errorf("%w: percentages must not be negative", ErrInvalidQuote)
	}

	q := &Quote{
		Name:        strings.TrimSpace(req.Name),
		ClientID:    req.ClientID,
		ServiceID:   req.ServiceID,
		OverheadPct: overheadPct,
		MarginPct:   marginPct,
		CreatedBy:   req.CreatedBy,
		Lines:       make([]QuoteLine, 0, len(req.Lines)),
	}

	hours, direct := decimal.Zero, decimal.Zero
	for _, lr := range req.Lines {
		if lr.Hours <= 0 {
			return nil, fmt.Errorf("%w: hours for %s must be positive", ErrInvalidQuote, lr.PersonID)
		}
		p, err := s.people.Get(ctx, lr.PersonID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, fmt.Errorf("%w: %s", ledger.ErrPersonNotFound, lr.PersonID)
			}
			return nil, fmt.Errorf("failed to get person: %w", err)
		}
		billing := lr.Billing
		if billing == "" {
			billing = ledger.Recurring
		}
		rate := s.rates.HourlyCost(p.MonthlyCost)
		cost := decimal.NewFromFloat(lr.Hours).Mul(decimal.NewFromFloat(rate))
		q.Lines = append(q.Lines, QuoteLine{
			PersonID:   p.ID,
			Name:       p.Name,
			Seniority:  p.Seniority,
			Hours:      lr.Hours,
			Billing:    billing,
			HourlyCost: rate,
			Cost:       cost.Round(2).InexactFloat64(),
		})
		hours = hours.Add(decimal.NewFromFloat(lr.Hours))
		direct = direct.Add(cost)
	}

	hundred := decimal.NewFromInt(100)
	overhead := direct.Mul(decimal.NewFromFloat(overheadPct)).Div(hundred)
	total := direct.Add(overhead)
	margin := total.Mul(decimal.NewFromFloat(marginPct)).Div(hundred)

	q.Hours = hours.Round(1).InexactFloat64()
	q.DirectCost = direct.Round(2).InexactFloat64()
	q.Overhead = overhead.Round(2).InexactFloat64()
	q.TotalCost = total.Round(2).InexactFloat64()
	q.Margin = margin.Round(2).InexactFloat64()
	q.Price = total.Add(margin).Round(2).InexactFloat64()
	return q, nil
}

// CreateQuote prices and saves a quote.
func (s *Service) CreateQuote(ctx context.Context, req QuoteRequest) (*Quote, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidQuote)
	}
	q, err := s.Estimate(ctx, req)
	if err != nil {
		return nil, err
	}
	q.ID = uuid.NewString()
	q.CreatedAt = s.now().UTC()

	if err := s.quotes.Create(ctx, q); err != nil {
		if errors.Is(err, repository.ErrForeignKeyViolation) {
			return nil, fmt.Errorf("%w: unknown client or service", ErrInvalidQuote)
		}
		return nil, fmt.Errorf("failed to create quote: %w", err)
	}

	s.logger.InfoContext(ctx, "quote created", "quote_id", q.ID, "price", q.Price)
	return q, nil
}

// GetQuote returns a saved quote.
func (s *Service) GetQuote(ctx context.Context, id string) (*Quote, error) {
	q, err := s.quotes.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrQuoteNotFound
		}
		return nil, fmt.Errorf("failed to get quote: %w", err)
	}
	return q, nil
}

// ListQuotes returns saved quotes, newest first. An empty clientID lists all.
func (s *Service) ListQuotes(ctx context.Context, clientID string) ([]Quote, error) {
	list, err := s.quotes.List(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list quotes: %w", err)
	}
	return list, nil
}

func pct(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}

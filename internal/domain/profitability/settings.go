// Package profitability reads ledger data through repositories and runs the
// pure costing, overhead, attribution, reporting and capacity algorithms over
// it. Every call recomputes from the store; nothing is cached.
package profitability

import (
	"errors"
	"fmt"

	"github.com/rpggio/profitability/internal/calendar"
	"github.com/rpggio/profitability/internal/domain/costing"
	"github.com/rpggio/profitability/internal/domain/overhead"
	"github.com/rpggio/profitability/internal/domain/reporting"
)

// RevenueBasis selects which rows count as revenue for a period.
type RevenueBasis string

const (
	// RevenueRecognized uses monthly recognized revenue per service.
	RevenueRecognized RevenueBasis = "recognized"
	// RevenueInvoiced uses invoices dated inside the period.
	RevenueInvoiced RevenueBasis = "invoiced"
)

// Calendars names the calendar each report type uses.
type Calendars struct {
	Overhead  string `json:"overhead" yaml:"overhead"`
	Capacity  string `json:"capacity" yaml:"capacity"`
	Occupancy string `json:"occupancy" yaml:"occupancy"`
}

// Settings is the immutable configuration of one computation.
type Settings struct {
	Rates             costing.Rates
	Calendars         Calendars
	Baseline          reporting.Baseline
	OverheadPolicy    overhead.Policy
	HouseClientID     string
	ExcludedClientIDs []string
	TargetMarginPct   float64
	RevenueBasis      RevenueBasis
}

// DefaultSettings returns the standard engine configuration.
func DefaultSettings() Settings {
	return Settings{
		Rates: costing.DefaultRates(),
		Calendars: Calendars{
			Overhead:  calendar.Weekday98,
			Capacity:  calendar.Flat22x8,
			Occupancy: calendar.Weekday7,
		},
		Baseline:        reporting.DefaultBaseline(),
		OverheadPolicy:  overhead.PolicyHouse,
		HouseClientID:   "house",
		TargetMarginPct: 20,
		RevenueBasis:    RevenueRecognized,
	}
}

// ErrInvalidSettings is returned by Validate.
var ErrInvalidSettings = errors.New("invalid engine settings")

// Validate checks calendar names, policy and basis.
func (s Settings) Validate() error {
	for _, name := range []string{s.Calendars.Overhead, s.Calendars.Capacity, s.Calendars.Occupancy} {
		if _, err := calendar.Lookup(name); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidSettings, err)
		}
	}
	if _, err := overhead.ParsePolicy(string(s.OverheadPolicy)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSettings, err)
	}
	switch s.RevenueBasis {
	case "", RevenueRecognized, RevenueInvoiced:
	default:
		return fmt.Errorf("%w: unknown revenue basis %q", ErrInvalidSettings, s.RevenueBasis)
	}
	if s.HouseClientID == "" {
		return fmt.Errorf("%w: house client id is required", ErrInvalidSettings)
	}
	return nil
}

// SettingsSource yields the settings to snapshot at the start of a computation.
type SettingsSource interface {
	Settings() Settings
}

// Static is a SettingsSource that never changes.
type Static Settings

func (s Static) Settings() Settings { return Settings(s) }

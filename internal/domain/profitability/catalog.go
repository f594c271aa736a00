package profitability

import (
	"context"
	"errors"
	"fmt"

	"github.com/rpggio/profitability/internal/domain/access"
	"github.com/rpggio/profitability/internal/domain/ledger"
)

// Kind names a period report.
type Kind string

const (
	KindProductivity Kind = "productivity"
	KindAreas        Kind = "areas"
	KindClients      Kind = "clients"
	KindTopClients   Kind = "top-clients"
	KindProjects     Kind = "projects"
	KindAtRisk       Kind = "at-risk"
	KindOverhead     Kind = "overhead"
	KindCapacity     Kind = "capacity"
	KindOccupancy    Kind = "occupancy"
	KindTeam         Kind = "team"
	KindLoad         Kind = "load"
	KindBonus        Kind = "bonus"
	KindExecutive    Kind = "executive"
)

// ErrUnknownReport is returned for a report kind that does not exist.
var ErrUnknownReport = errors.New("unknown report")

// KindInfo describes a report kind.
type KindInfo struct {
	Kind        Kind   `json:"kind"`
	Description string `json:"description"`
	AdminOnly   bool   `json:"admin_only"`
}

// Kinds lists every period report in display order.
func Kinds() []KindInfo {
	return []KindInfo{
		{KindProductivity, "Per-person hours, revenue, cost, margin, ROI, raise and bonus eligibility", false},
		{KindAreas, "Productivity rolled up by business area", false},
		{KindClients, "Client profitability with overhead, net utility and line items", true},
		{KindTopClients, "The most profitable clients", true},
		{KindProjects, "Project margins against budget and target", true},
		{KindAtRisk, "Projects over budget or below target margin", true},
		{KindOverhead, "Fixed overhead plus unbooked hours and how they are allocated", true},
		{KindCapacity, "Booked against expected hours per person", false},
		{KindOccupancy, "Occupancy against the business calendar", false},
		{KindTeam, "Team ranking by ROI with people needing attention", false},
		{KindLoad, "People grouped as overloaded, balanced or underutilized", false},
		{KindBonus, "Projected bonuses by eligibility tier", false},
		{KindExecutive, "Company summary: revenue, cost, overhead, margin, ROI", true},
	}
}

// ParseKind validates a report name.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds() {
		if string(k.Kind) == s {
			return k.Kind, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownReport, s)
}

// Query is the input of a period report.
type Query struct {
	Period ledger.Period
	// Limit caps ranked reports; 0 means the default of 5.
	Limit int
}

// Report runs a period report by kind.
func (s *Service) Report(ctx context.Context, scope access.Scope, kind Kind, q Query) (any, error) {
	switch kind {
	case KindProductivity:
		return s.Productivity(ctx, scope, q.Period)
	case KindAreas:
		return s.AreaReport(ctx, scope, q.Period)
	case KindClients:
		return s.ClientReport(ctx, scope, q.Period)
	case KindTopClients:
		n := q.Limit
		if n <= 0 {
			n = 5
		}
		return s.TopClients(ctx, scope, q.Period, n)
	case KindProjects:
		return s.Projects(ctx, scope, q.Period)
	case KindAtRisk:
		return s.AtRiskProjects(ctx, scope, q.Period)
	case KindOverhead:
		return s.Overhead(ctx, scope, q.Period)
	case KindCapacity:
		return s.Capacity(ctx, scope, q.Period)
	case KindOccupancy:
		return s.Occupancy(ctx, scope, q.Period)
	case KindTeam:
		return s.TeamComparison(ctx, scope, q.Period)
	case KindLoad:
		return s.LoadBalance(ctx, scope, q.Period)
	case KindBonus:
		return s.BonusProjection(ctx, scope, q.Period)
	case KindExecutive:
		return s.Executive(ctx, scope, q.Period)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownReport, kind)
	}
}

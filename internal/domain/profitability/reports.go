package profitability

import (
	"context"
	"errors"
	"fmt"

	"github.com/rpggio/profitability/internal/calendar"
	"github.com/rpggio/profitability/internal/domain/access"
	"github.com/rpggio/profitability/internal/domain/capacity"
	"github.com/rpggio/profitability/internal/domain/costing"
	"github.com/rpggio/profitability/internal/domain/ledger"
	"github.com/rpggio/profitability/internal/domain/overhead"
	"github.com/rpggio/profitability/internal/domain/reporting"
	"github.com/rpggio/profitability/internal/repository"
	"github.com/samber/lo"
)

// PersonCost is a person's hourly cost.
type PersonCost struct {
	PersonID         string  `json:"person_id"`
	Name             string  `json:"name"`
	MonthlyCost      float64 `json:"monthly_cost"`
	MonthlyCostUnits float64 `json:"monthly_cost_units"`
	HourlyCost       float64 `json:"hourly_cost"`
}

// HourlyCost returns a person's hourly cost in accounting units, or nil if
// the person does not exist.
func (s *Service) HourlyCost(ctx context.Context, scope access.Scope, personID string) (*PersonCost, error) {
	if err := scope.Check(personID); err != nil {
		return nil, err
	}
	p, err := s.getPerson(ctx, personID)
	if err != nil || p == nil {
		return nil, err
	}
	rates := s.source.Settings().Rates
	return &PersonCost{
		PersonID:         p.ID,
		Name:             p.Name,
		MonthlyCost:      p.MonthlyCost,
		MonthlyCostUnits: costing.Round(rates.MonthlyCostUnits(p.MonthlyCost), 4),
		HourlyCost:       rates.HourlyCost(p.MonthlyCost),
	}, nil
}

// Projection is a service's time-weighted annual revenue.
type Projection struct {
	ServiceID string            `json:"service_id"`
	Name      string            `json:"name"`
	Year      int               `json:"year"`
	Nominal   float64           `json:"nominal_monthly_value"`
	Changes   int               `json:"changes"`
	Projected float64           `json:"projected_annual_revenue"`
	Segments  []costing.Segment `json:"segments"`
}

// ProjectAnnualRevenue projects a service's revenue for year, or returns nil
// if the service does not exist.
func (s *Service) ProjectAnnualRevenue(ctx context.Context, serviceID string, year int) (*Projection, error) {
	svc, err := s.r.Services.Get(ctx, serviceID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get service: %w", err)
	}
	changes, err := s.r.Services.ValueChanges(ctx, serviceID, year)
	if err != nil {
		return nil, fmt.Errorf("failed to list value changes: %w", err)
	}
	return &Projection{
		ServiceID: svc.ID,
		Name:      svc.Name,
		Year:      year,
		Nominal:   svc.MonthlyValue,
		Changes:   len(changes),
		Projected: costing.ProjectAnnualRevenue(svc.MonthlyValue, changes, year),
		Segments:  costing.Segments(svc.MonthlyValue, changes, year),
	}, nil
}

// Overhead distributes the period's overhead. Admin only.
func (s *Service) Overhead(ctx context.Context, scope access.Scope, period ledger.Period) (*overhead.Distribution, error) {
	if err := scope.RequireAll(); err != nil {
		return nil, err
	}
	snap, err := s.load(ctx, period)
	if err != nil {
		return nil, err
	}
	dist, err := s.allocate(ctx, snap)
	if err != nil {
		return nil, err
	}
	return &dist, nil
}

// Productivity returns a record per visible active person.
func (s *Service) Productivity(ctx context.Context, scope access.Scope, period ledger.Period) ([]reporting.Productivity, error) {
	snap, err := s.load(ctx, period)
	if err != nil {
		return nil, err
	}
	cd, err := s.attributeClients(ctx, snap)
	if err != nil {
		return nil, err
	}
	return access.Filter(scope, s.records(snap, cd.result), personOf), nil
}

// PersonProductivity returns one person's record, or nil if the person does
// not exist.
func (s *Service) PersonProductivity(ctx context.Context, scope access.Scope, personID string, period ledger.Period) (*reporting.Productivity, error) {
	if err := scope.Check(personID); err != nil {
		return nil, err
	}
	p, err := s.getPerson(ctx, personID)
	if err != nil || p == nil {
		return nil, err
	}
	snap, err := s.load(ctx, period)
	if err != nil {
		return nil, err
	}
	cd, err := s.attributeClients(ctx, snap)
	if err != nil {
		return nil, err
	}
	rec := reporting.BuildProductivity(*p, cd.result.Person(p.ID), snap.months, snap.settings.Baseline)
	return &rec, nil
}

// AreaReport rolls visible people up by area.
func (s *Service) AreaReport(ctx context.Context, scope access.Scope, period ledger.Period) ([]reporting.Rollup, error) {
	records, err := s.Productivity(ctx, scope, period)
	if err != nil {
		return nil, err
	}
	areas, err := s.r.Areas.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list areas: %w", err)
	}
	names := lo.SliceToMap(areas, func(a ledger.Area) (string, string) { return a.ID, a.Name })
	return reporting.RollupAreas(records, names), nil
}

// ClientReport returns every client's profitability after overhead. Admin only.
func (s *Service) ClientReport(ctx context.Context, scope access.Scope, period ledger.Period) ([]reporting.ClientRollup, error) {
	if err := scope.RequireAll(); err != nil {
		return nil, err
	}
	snap, err := s.load(ctx, period)
	if err != nil {
		return nil, err
	}
	cd, err := s.attributeClients(ctx, snap)
	if err != nil {
		return nil, err
	}
	dist, err := s.allocate(ctx, snap)
	if err != nil {
		return nil, err
	}
	lines, err := s.clientLines(ctx, snap, cd, dist)
	if err != nil {
		return nil, err
	}
	return reporting.RollupClients(reporting.ClientInput{
		Clients:     cd.clients,
		Attribution: cd.result,
		Overhead:    dist.ByClient,
		Lines:       lines,
		Excluded:    snap.settings.ExcludedClientIDs,
	}), nil
}

// TopClients ranks external clients by net utility. n <= 0 returns all.
func (s *Service) TopClients(ctx context.Context, scope access.Scope, period ledger.Period, n int) ([]reporting.ClientRollup, error) {
	rollups, err := s.ClientReport(ctx, scope, period)
	if err != nil {
		return nil, err
	}
	return reporting.TopClients(rollups, n), nil
}

// Projects scores every project with hours or revenue in the period against its budget and target. Admin only.
func (s *Service) Projects(ctx context.Context, scope access.Scope, period ledger.Period) ([]reporting.ProjectStatus, error) {
	if err := scope.RequireAll(); err != nil {
		return nil, err
	}
	snap, err := s.load(ctx, period)
	if err != nil {
		return nil, err
	}
	return s.projectStatuses(ctx, snap)
}

func (s *Service) projectStatuses(ctx context.Context, snap *snapshot) ([]reporting.ProjectStatus, error) {
	projects, res, err := s.attributeProjects(ctx, snap)
	if err != nil {
		return nil, err
	}
	out := make([]reporting.ProjectStatus, 0, len(projects))
	for _, p := range projects {
		pool, ok := res.Pools[p.ID]
		if !ok {
			continue
		}
		out = append(out, reporting.AssessProject(p, pool, snap.settings.TargetMarginPct))
	}
	return out, nil
}

// AtRiskProjects lists flagged projects, worst margin first. Admin only.
func (s *Service) AtRiskProjects(ctx context.Context, scope access.Scope, period ledger.Period) ([]reporting.ProjectStatus, error) {
	statuses, err := s.Projects(ctx, scope, period)
	if err != nil {
		return nil, err
	}
	return reporting.AtRiskProjects(statuses), nil
}

// CapacityReport is the capacity view of a period.
type CapacityReport struct {
	Period   string            `json:"period"`
	Calendar string            `json:"calendar"`
	Records  []capacity.Record `json:"records"`
	Summary  capacity.Summary  `json:"summary"`
}

// Capacity compares visible people's booked and expected hours.
func (s *Service) Capacity(ctx context.Context, scope access.Scope, period ledger.Period) (*CapacityReport, error) {
	snap, err := s.load(ctx, period)
	if err != nil {
		return nil, err
	}
	records, err := s.capacityRecords(snap)
	if err != nil {
		return nil, err
	}
	records = access.Filter(scope, records, func(r capacity.Record) string { return r.PersonID })
	return &CapacityReport{
		Period:   period.String(),
		Calendar: snap.settings.Calendars.Capacity,
		Records:  records,
		Summary:  capacity.Summarize(records),
	}, nil
}

func (s *Service) capacityRecords(snap *snapshot) ([]capacity.Record, error) {
	cal, err := calendar.Lookup(snap.settings.Calendars.Capacity)
	if err != nil {
		return nil, err
	}
	return capacity.Analyzer{Calendar: cal}.Analyze(snap.period, snap.active, snap.entries), nil
}

// HiringNeed checks whether a tier's slack absorbs new demand. Admin only.
func (s *Service) HiringNeed(ctx context.Context, scope access.Scope, period ledger.Period, req capacity.HiringRequest) (*capacity.Signal, error) {
	if err := scope.RequireAll(); err != nil {
		return nil, err
	}
	if req.Seniority == "" || req.DemandHours <= 0 {
		return nil, fmt.Errorf("%w: seniority and positive demand hours are required", ledger.ErrInvalidInput)
	}
	snap, err := s.load(ctx, period)
	if err != nil {
		return nil, err
	}
	records, err := s.capacityRecords(snap)
	if err != nil {
		return nil, err
	}
	sig := capacity.HiringNeed(records, req)
	return &sig, nil
}

// Occupancy measures visible people against the occupancy calendar.
func (s *Service) Occupancy(ctx context.Context, scope access.Scope, period ledger.Period) ([]capacity.Occupancy, error) {
	snap, err := s.load(ctx, period)
	if err != nil {
		return nil, err
	}
	cal, err := calendar.Lookup(snap.settings.Calendars.Occupancy)
	if err != nil {
		return nil, err
	}
	occ := capacity.OccupancyFor(cal, period, snap.active, snap.entries)
	return access.Filter(scope, occ, func(o capacity.Occupancy) string { return o.PersonID }), nil
}

// TeamComparison benchmarks visible people against each other.
func (s *Service) TeamComparison(ctx context.Context, scope access.Scope, period ledger.Period) (*reporting.TeamComparison, error) {
	records, err := s.Productivity(ctx, scope, period)
	if err != nil {
		return nil, err
	}
	tc := reporting.CompareTeam(records)
	return &tc, nil
}

// LoadBalance groups visible people by how loaded they are.
func (s *Service) LoadBalance(ctx context.Context, scope access.Scope, period ledger.Period) (*reporting.LoadBalance, error) {
	records, err := s.Productivity(ctx, scope, period)
	if err != nil {
		return nil, err
	}
	lb := reporting.BalanceLoad(records)
	return &lb, nil
}

// BonusProjection totals the bonuses visible people would earn.
func (s *Service) BonusProjection(ctx context.Context, scope access.Scope, period ledger.Period) (*reporting.BonusProjection, error) {
	records, err := s.Productivity(ctx, scope, period)
	if err != nil {
		return nil, err
	}
	bp := reporting.ProjectBonuses(records)
	return &bp, nil
}

// Executive summarizes the company for a period. Admin only.
func (s *Service) Executive(ctx context.Context, scope access.Scope, period ledger.Period) (*reporting.Executive, error) {
	if err := scope.RequireAll(); err != nil {
		return nil, err
	}
	snap, err := s.load(ctx, period)
	if err != nil {
		return nil, err
	}
	cd, err := s.attributeClients(ctx, snap)
	if err != nil {
		return nil, err
	}
	dist, err := s.allocate(ctx, snap)
	if err != nil {
		return nil, err
	}
	statuses, err := s.projectStatuses(ctx, snap)
	if err != nil {
		return nil, err
	}

	rates := snap.settings.Rates
	companyCost := lo.SumBy(snap.active, func(p ledger.Person) float64 {
		return rates.MonthlyCostUnits(p.MonthlyCost) * float64(snap.months)
	})
	// Gap cost is already part of company cost; only fixed overhead is added.
	ex := reporting.Summarize(reporting.ExecutiveInput{
		Period:      period,
		Records:     s.records(snap, cd.result),
		CompanyCost: companyCost,
		Pools:       cd.result.Pools,
		Overhead:    dist.FixedOverheadTotal,
		AtRisk:      len(reporting.AtRiskProjects(statuses)),
	})
	return &ex, nil
}

func (s *Service) getPerson(ctx context.Context, id string) (*ledger.Person, error) {
	p, err := s.r.People.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get person: %w", err)
	}
	return p, nil
}

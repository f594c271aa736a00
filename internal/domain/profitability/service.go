package profitability

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/rpggio/profitability/internal/calendar"
	"github.com/rpggio/profitability/internal/domain/access"
	"github.com/rpggio/profitability/internal/domain/attribution"
	"github.com/rpggio/profitability/internal/domain/costing"
	"github.com/rpggio/profitability/internal/domain/ledger"
	"github.com/rpggio/profitability/internal/domain/overhead"
	"github.com/rpggio/profitability/internal/domain/reporting"
	"github.com/rpggio/profitability/internal/repository"
	"github.com/samber/lo"
)

// Readers are the repositories the engine reads from.
type Readers struct {
	People      ledger.PersonRepository
	Areas       ledger.AreaRepository
	Clients     ledger.ClientRepository
	Entries     ledger.TimeEntryRepository
	Services    ledger.ServiceRepository
	Revenue     ledger.RevenueRepository
	Overhead    ledger.OverheadRepository
	Projects    ledger.ProjectRepository
	Assignments ledger.AssignmentRepository
	Invoices    ledger.InvoiceRepository
}

// Service answers profitability queries.
type Service struct {
	r      Readers
	source SettingsSource
	logger *slog.Logger
}

// NewService creates a new profitability service. A nil source uses the
// default settings.
func NewService(r Readers, source SettingsSource, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if source == nil {
		source = Static(DefaultSettings())
	}
	return &Service{r: r, source: source, logger: logger}
}

// Scope builds the access scope for a viewer. An unknown viewer sees nobody.
func (s *Service) Scope(ctx context.Context, viewerID string) (access.Scope, error) {
	viewer, err := s.r.People.Get(ctx, viewerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return access.NewScope(nil, nil), nil
		}
		return access.Scope{}, fmt.Errorf("failed to get viewer: %w", err)
	}
	people, err := s.r.People.ListActive(ctx, "")
	if err != nil {
		return access.Scope{}, fmt.Errorf("failed to list people: %w", err)
	}
	return access.NewScope(viewer, people), nil
}

// snapshot is the data and settings one computation runs over.
type snapshot struct {
	settings Settings
	period   ledger.Period
	months   int
	people   []ledger.Person
	active   []ledger.Person
	hourly   map[string]float64
	entries  []ledger.TimeEntry
}

func (s *Service) load(ctx context.Context, period ledger.Period) (*snapshot, error) {
	settings := s.source.Settings()
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	people, err := s.r.People.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list people: %w", err)
	}
	entries, err := s.r.Entries.List(ctx, ledger.ForPeriod(period))
	if err != nil {
		return nil, fmt.Errorf("failed to list time entries: %w", err)
	}

	snap := &snapshot{
		settings: settings,
		period:   period,
		months:   len(period.Months()),
		people:   people,
		active:   lo.Filter(people, func(p ledger.Person, _ int) bool { return p.Active }),
		hourly:   make(map[string]float64, len(people)),
		entries:  entries,
	}
	for _, p := range people {
		snap.hourly[p.ID] = settings.Rates.HourlyCost(p.MonthlyCost)
	}

	s.logger.DebugContext(ctx, "snapshot loaded", "period", period.String(), "people", len(people), "entries", len(entries))
	return snap, nil
}

// clientData is the client dimension of a snapshot.
type clientData struct {
	clients   []ledger.Client
	byService map[string]float64
	result    attribution.Result
}

func (s *Service) attributeClients(ctx context.Context, snap *snapshot) (*clientData, error) {
	clients, err := s.r.Clients.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	aggregate := lo.SliceToMap(
		lo.Filter(clients, func(c ledger.Client, _ int) bool { return c.Kind == ledger.ClientAggregate }),
		func(c ledger.Client) (string, bool) { return c.ID, true },
	)

	byClient := map[string]float64{}
	byService := map[string]float64{}
	if snap.settings.RevenueBasis == RevenueInvoiced {
		invoices, err := s.r.Invoices.List(ctx, ledger.InvoiceFilter{From: snap.period.From, To: snap.period.To})
		if err != nil {
			return nil, fmt.Errorf("failed to list invoices: %w", err)
		}
		for _, inv := range invoices {
			if !aggregate[inv.ClientID] {
				byClient[inv.ClientID] += inv.Amount
			}
		}
	} else {
		for _, year := range years(snap.period) {
			rows, err := s.r.Revenue.List(ctx, ledger.RevenueFilter{Year: year})
			if err != nil {
				return nil, fmt.Errorf("failed to list revenue: %w", err)
			}
			for _, row := range rows {
				if aggregate[row.ClientID] || !snap.period.ContainsMonth(row.Year, row.Month) {
					continue
				}
				byClient[row.ClientID] += row.Amount
				byService[row.ServiceID] += row.Amount
			}
		}
	}

	res := attribution.Attribute(attribution.Input{
		Dimension:  attribution.ByClient,
		Entries:    snap.entries,
		HourlyCost: snap.hourly,
		Revenue:    byClient,
	})
	return &clientData{clients: clients, byService: byService, result: res}, nil
}

func (s *Service) allocate(ctx context.Context, snap *snapshot) (overhead.Distribution, error) {
	var expenses []ledger.OverheadExpense
	for _, year := range years(snap.period) {
		rows, err := s.r.Overhead.List(ctx, year, 0)
		if err != nil {
			return overhead.Distribution{}, fmt.Errorf("failed to list overhead expenses: %w", err)
		}
		expenses = append(expenses, rows...)
	}

	cal, err := calendar.Lookup(snap.settings.Calendars.Overhead)
	if err != nil {
		return overhead.Distribution{}, err
	}
	alloc := overhead.Allocator{
		Calendar:      cal,
		Policy:        snap.settings.OverheadPolicy,
		HouseClientID: snap.settings.HouseClientID,
		Rates:         snap.settings.Rates,
	}
	return alloc.Allocate(overhead.Input{
		Period:     snap.period,
		People:     snap.people,
		HourlyCost: snap.hourly,
		Entries:    snap.entries,
		Expenses:   expenses,
	}), nil
}

// clientLines builds each client's service lines and its share of gap cost.
func (s *Service) clientLines(ctx context.Context, snap *snapshot, cd *clientData, dist overhead.Distribution) (map[string][]attribution.LineItem, error) {
	lines := map[string][]attribution.LineItem{}

	if len(cd.byService) > 0 {
		services, err := s.r.Services.List(ctx, "")
		if err != nil {
			return nil, fmt.Errorf("failed to list services: %w", err)
		}
		year := snap.period.From.Year()
		for _, svc := range services {
			amount, ok := cd.byService[svc.ID]
			if !ok {
				continue
			}
			changes, err := s.r.Services.ValueChanges(ctx, svc.ID, year)
			if err != nil {
				return nil, fmt.Errorf("failed to list value changes: %w", err)
			}
			lines[svc.ClientID] = append(lines[svc.ClientID], attribution.ServiceLine{
				ServiceID: svc.ID,
				Name:      svc.Name,
				Billing:   svc.Billing,
				Amount:    amount,
				Projected: costing.ProjectAnnualRevenue(svc.MonthlyValue, changes, year),
			})
		}
		for id := range lines {
			sort.SliceStable(lines[id], func(i, j int) bool { return lines[id][i].Revenue() > lines[id][j].Revenue() })
		}
	}

	if dist.Total > 0 && dist.GapHoursTotal > 0 {
		for clientID, amount := range dist.ByClient {
			frac := amount / dist.Total
			lines[clientID] = append(lines[clientID], attribution.GapLine{
				Hours:  dist.GapHoursTotal * frac,
				Amount: dist.GapCostTotal * frac,
			})
		}
	}
	return lines, nil
}

func (s *Service) attributeProjects(ctx context.Context, snap *snapshot) ([]ledger.Project, attribution.Result, error) {
	projects, err := s.r.Projects.List(ctx, "")
	if err != nil {
		return nil, attribution.Result{}, fmt.Errorf("failed to list projects: %w", err)
	}

	overrides := map[string]map[string]float64{}
	for _, p := range projects {
		assignments, err := s.r.Assignments.List(ctx, p.ID)
		if err != nil {
			return nil, attribution.Result{}, fmt.Errorf("failed to list assignments: %w", err)
		}
		for _, a := range assignments {
			if !a.Active || a.HourlyCostOverride == nil {
				continue
			}
			if overrides[p.ID] == nil {
				overrides[p.ID] = map[string]float64{}
			}
			overrides[p.ID][a.PersonID] = *a.HourlyCostOverride
		}
	}

	invoices, err := s.r.Invoices.List(ctx, ledger.InvoiceFilter{From: snap.period.From, To: snap.period.To})
	if err != nil {
		return nil, attribution.Result{}, fmt.Errorf("failed to list invoices: %w", err)
	}
	revenue := map[string]float64{}
	for _, inv := range invoices {
		if inv.ProjectID != "" {
			revenue[inv.ProjectID] += inv.Amount
		}
	}

	res := attribution.Attribute(attribution.Input{
		Dimension:  attribution.ByProject,
		Entries:    snap.entries,
		HourlyCost: snap.hourly,
		Overrides:  overrides,
		Revenue:    revenue,
	})
	return projects, res, nil
}

func (s *Service) records(snap *snapshot, res attribution.Result) []reporting.Productivity {
	out := make([]reporting.Productivity, 0, len(snap.active))
	for _, p := range snap.active {
		out = append(out, reporting.BuildProductivity(p, res.Person(p.ID), snap.months, snap.settings.Baseline))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func years(p ledger.Period) []int {
	var out []int
	for y := p.From.Year(); y <= p.To.Year(); y++ {
		out = append(out, y)
	}
	return out
}

func personOf(r reporting.Productivity) string { return r.PersonID }

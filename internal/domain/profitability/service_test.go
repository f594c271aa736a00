package profitability_test

import (
	"context"
	"testing"
	"time"

	"github.com/rpggio/profitability/internal/domain/access"
	"github.com/rpggio/profitability/internal/domain/attribution"
	"github.com/rpggio/profitability/internal/domain/capacity"
	"github.com/rpggio/profitability/internal/domain/costing"
	"github.com/rpggio/profitability/internal/domain/ledger"
	"github.com/rpggio/profitability/internal/domain/overhead"
	"github.com/rpggio/profitability/internal/domain/profitability"
	"github.com/rpggio/profitability/internal/domain/reporting"
	"github.com/rpggio/profitability/internal/repository"
	"github.com/rpggio/profitability/internal/repository/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var march = ledger.MonthPeriod(2024, time.March)

type fixture struct {
	people      *mocks.PersonRepository
	areas       *mocks.AreaRepository
	clients     *mocks.ClientRepository
	entries     *mocks.TimeEntryRepository
	services    *mocks.ServiceRepository
	revenue     *mocks.RevenueRepository
	overhead    *mocks.OverheadRepository
	projects    *mocks.ProjectRepository
	assignments *mocks.AssignmentRepository
	invoices    *mocks.InvoiceRepository
	settings    profitability.Settings
	svc         *profitability.Service
}

func at(day int) time.Time { return time.Date(2024, time.March, day, 0, 0, 0, 0, time.UTC) }

// newFixture seeds March 2024: Ana (1/h) and Bob (3/h) book on acme, Ana also
// on globex and the house client. Boss is an admin with no cost.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		people:      &mocks.PersonRepository{},
		areas:       &mocks.AreaRepository{},
		clients:     &mocks.ClientRepository{},
		entries:     &mocks.TimeEntryRepository{},
		services:    &mocks.ServiceRepository{},
		revenue:     &mocks.RevenueRepository{},
		overhead:    &mocks.OverheadRepository{},
		projects:    &mocks.ProjectRepository{},
		assignments: &mocks.AssignmentRepository{},
		invoices:    &mocks.InvoiceRepository{},
	}
	f.settings = profitability.DefaultSettings()
	f.settings.Rates = costing.Rates{UnitValue: 1, EffectiveMonthlyHours: 100}

	people := []ledger.Person{
		{ID: "ana", Name: "Ana", AreaID: "dev", Seniority: "senior", ManagerID: "boss", MonthlyCost: 100, Employment: ledger.FullTime, Active: true},
		{ID: "bob", Name: "Bob", AreaID: "dev", Seniority: "junior", ManagerID: "boss", MonthlyCost: 300, Employment: ledger.FullTime, Active: true},
		{ID: "boss", Name: "Boss", Admin: true, Employment: ledger.FullTime, Active: true},
		{ID: "old", Name: "Old", MonthlyCost: 500, Active: false},
	}
	f.people.On("List", mock.Anything).Return(people, nil).Maybe()
	f.people.On("ListActive", mock.Anything, "").Return(people[:3], nil).Maybe()
	for i := range people {
		f.people.On("Get", mock.Anything, people[i].ID).Return(&people[i], nil).Maybe()
	}
	f.people.On("Get", mock.Anything, "ghost").Return(nil, repository.ErrNotFound).Maybe()

	f.areas.On("List", mock.Anything).Return([]ledger.Area{{ID: "dev", Name: "Development"}}, nil).Maybe()
	f.clients.On("List", mock.Anything).Return([]ledger.Client{
		{ID: "acme", Name: "Acme", Kind: ledger.ClientExternal, Active: true},
		{ID: "globex", Name: "Globex", Kind: ledger.ClientExternal, Active: true},
		{ID: "house", Name: "Internal", Kind: ledger.ClientHouse, Active: true},
		{ID: "group", Name: "Group", Kind: ledger.ClientAggregate, Active: true},
	}, nil).Maybe()

	f.entries.On("List", mock.Anything, ledger.ForPeriod(march)).Return([]ledger.TimeEntry{
		{PersonID: "ana", ClientID: "acme", ProjectID: "p1", Date: at(4), Hours: 10},
		{PersonID: "bob", ClientID: "acme", ProjectID: "p1", Date: at(5), Hours: 10},
		{PersonID: "ana", ClientID: "globex", Date: at(6), Hours: 5},
		{PersonID: "ana", ClientID: "house", Date: at(7), Hours: 4},
	}, nil).Maybe()

	f.revenue.On("List", mock.Anything, ledger.RevenueFilter{Year: 2024}).Return([]ledger.RecognizedRevenue{
		{ServiceID: "s1", ClientID: "acme", Year: 2024, Month: time.March, Amount: 100},
		{ServiceID: "s2", ClientID: "globex", Year: 2024, Month: time.March, Amount: 20},
		{ServiceID: "s1", ClientID: "acme", Year: 2024, Month: time.April, Amount: 999},
		{ServiceID: "sg", ClientID: "group", Year: 2024, Month: time.March, Amount: 5000},
	}, nil).Maybe()
	f.services.On("List", mock.Anything, "").Return([]ledger.ContractedService{
		{ID: "s1", ClientID: "acme", Name: "Payroll", MonthlyValue: 100, Billing: ledger.Recurring},
		{ID: "s2", ClientID: "globex", Name: "Audit", MonthlyValue: 20, Billing: ledger.Spot},
	}, nil).Maybe()
	f.services.On("ValueChanges", mock.Anything, mock.Anything, 2024).Return([]ledger.ValueChange{}, nil).Maybe()

	f.overhead.On("List", mock.Anything, 2024, time.Month(0)).Return([]ledger.OverheadExpense{
		{Year: 2024, Month: time.March, Concept: "rent", Amount: 30},
		{Year: 2024, Month: time.May, Concept: "rent", Amount: 30},
	}, nil).Maybe()

	f.projects.On("List", mock.Anything, "").Return([]ledger.Project{
		{ID: "p1", ClientID: "acme", Name: "Payroll migration", Budget: 50, TargetMarginPct: 30},
		{ID: "p2", ClientID: "globex", Name: "Dormant"},
	}, nil).Maybe()
	override := 2.0
	f.assignments.On("List", mock.Anything, "p1").Return([]ledger.Assignment{
		{ProjectID: "p1", PersonID: "ana", HourlyCostOverride: &override, Active: true},
	}, nil).Maybe()
	f.assignments.On("List", mock.Anything, "p2").Return([]ledger.Assignment{}, nil).Maybe()
	f.invoices.On("List", mock.Anything, ledger.InvoiceFilter{From: march.From, To: march.To}).Return([]ledger.Invoice{
		{ClientID: "acme", ProjectID: "p1", Date: at(28), Amount: 60},
		{ClientID: "globex", Date: at(28), Amount: 15},
	}, nil).Maybe()

	f.rebuild()
	return f
}

func (f *fixture) rebuild() {
	f.svc = profitability.NewService(profitability.Readers{
		People:      f.people,
		Areas:       f.areas,
		Clients:     f.clients,
		Entries:     f.entries,
		Services:    f.services,
		Revenue:     f.revenue,
		Overhead:    f.overhead,
		Projects:    f.projects,
		Assignments: f.assignments,
		Invoices:    f.invoices,
	}, profitability.Static(f.settings), nil)
}

func TestProductivity(t *testing.T) {
	f := newFixture(t)
	records, err := f.svc.Productivity(context.Background(), access.All(), march)
	require.NoError(t, err)
	require.Len(t, records, 3)

	ana := records[0]
	require.Equal(t, "ana", ana.PersonID)
	require.Equal(t, 19.0, ana.HoursWorked)
	require.InDelta(t, 19.0, ana.CostTotal, 1e-9)
	require.InDelta(t, 45.0, ana.RevenueProrated, 1e-9)
	require.InDelta(t, 26.0, ana.Margin, 1e-9)
	require.Len(t, ana.Breakdown, 3)
	require.Equal(t, "acme", ana.Breakdown[0].Pool)

	bob := records[1]
	require.InDelta(t, 75.0, bob.RevenueProrated, 1e-9)

	boss := records[2]
	require.Zero(t, boss.HoursWorked)
	require.Equal(t, reporting.BonusNone, boss.Bonus)
}

func TestProductivity_ScopedToViewer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	scope, err := f.svc.Scope(ctx, "ana")
	require.NoError(t, err)
	records, err := f.svc.Productivity(ctx, scope, march)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "ana", records[0].PersonID)

	_, err = f.svc.PersonProductivity(ctx, scope, "bob", march)
	require.ErrorIs(t, err, access.ErrNotVisible)

	_, err = f.svc.ClientReport(ctx, scope, march)
	require.ErrorIs(t, err, access.ErrRestricted)

	boss, err := f.svc.Scope(ctx, "boss")
	require.NoError(t, err)
	records, err = f.svc.Productivity(ctx, boss, march)
	require.NoError(t, err)
	require.Len(t, records, 3)

	nobody, err := f.svc.Scope(ctx, "ghost")
	require.NoError(t, err)
	records, err = f.svc.Productivity(ctx, nobody, march)
	require.NoError(t, err)
	require.Empty(t, records)
}

func TestPersonProductivity_UnknownIsNil(t *testing.T) {
	f := newFixture(t)
	rec, err := f.svc.PersonProductivity(context.Background(), access.All(), "ghost", march)
	require.NoError(t, err)
	require.Nil(t, rec)

	rec, err = f.svc.PersonProductivity(context.Background(), access.All(), "bob", march)
	require.NoError(t, err)
	require.InDelta(t, 45.0, rec.Margin, 1e-9)
}

func TestHourlyCost(t *testing.T) {
	f := newFixture(t)
	pc, err := f.svc.HourlyCost(context.Background(), access.All(), "bob")
	require.NoError(t, err)
	require.Equal(t, 3.0, pc.HourlyCost)
	require.Equal(t, 300.0, pc.MonthlyCostUnits)

	pc, err = f.svc.HourlyCost(context.Background(), access.All(), "ghost")
	require.NoError(t, err)
	require.Nil(t, pc)
}

func TestProjectAnnualRevenue(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.services.On("Get", ctx, "s1").Return(&ledger.ContractedService{ID: "s1", Name: "Payroll", MonthlyValue: 200}, nil)
	f.services.On("ValueChanges", ctx, "s1", 2025).Return([]ledger.ValueChange{
		{ServiceID: "s1", Previous: 100, New: 200, EffectiveDate: time.Date(2025, time.October, 1, 0, 0, 0, 0, time.UTC)},
	}, nil)
	f.services.On("Get", ctx, "nope").Return(nil, repository.ErrNotFound)

	proj, err := f.svc.ProjectAnnualRevenue(ctx, "s1", 2025)
	require.NoError(t, err)
	require.Equal(t, 1500.0, proj.Projected)
	require.Len(t, proj.Segments, 2)

	proj, err = f.svc.ProjectAnnualRevenue(ctx, "nope", 2025)
	require.NoError(t, err)
	require.Nil(t, proj)
}

func TestOverhead_HouseAndByHours(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	dist, err := f.svc.Overhead(ctx, access.All(), march)
	require.NoError(t, err)
	require.Equal(t, overhead.PolicyHouse, dist.Policy)
	require.Equal(t, 30.0, dist.FixedOverheadTotal)
	require.Equal(t, 523.0, dist.GapHoursTotal)
	require.InDelta(t, 687.0, dist.GapCostTotal, 1e-9)
	require.InDelta(t, 717.0, dist.ByClient["house"], 1e-9)

	f.settings.OverheadPolicy = overhead.PolicyByHours
	f.rebuild()
	dist, err = f.svc.Overhead(ctx, access.All(), march)
	require.NoError(t, err)
	require.InDelta(t, 717.0*20/25, dist.ByClient["acme"], 1e-9)
	require.InDelta(t, 717.0*5/25, dist.ByClient["globex"], 1e-9)
	require.Zero(t, dist.ByClient["house"])
	require.InDelta(t, 717.0, dist.ByArea["dev"], 1e-9)
}

func TestClientReport(t *testing.T) {
	f := newFixture(t)
	rollups, err := f.svc.ClientReport(context.Background(), access.All(), march)
	require.NoError(t, err)
	require.Len(t, rollups, 3)

	acme := rollups[0]
	require.Equal(t, "acme", acme.EntityID)
	require.Equal(t, 100.0, acme.RevenueTotal)
	require.InDelta(t, 60.0, acme.NetUtility, 1e-9)
	require.Len(t, acme.Lines, 1)
	line, ok := acme.Lines[0].(attribution.ServiceLine)
	require.True(t, ok)
	require.Equal(t, 1200.0, line.Projected)

	require.Equal(t, "globex", rollups[1].EntityID)

	house := rollups[2]
	require.Equal(t, ledger.ClientHouse, house.Kind)
	require.InDelta(t, -721.0, house.NetUtility, 1e-9)
	require.Len(t, house.Lines, 1)
	gap, ok := house.Lines[0].(attribution.GapLine)
	require.True(t, ok)
	require.Equal(t, 523.0, gap.Hours)

	top, err := f.svc.TopClients(context.Background(), access.All(), march, 1)
	require.NoError(t, err)
	require.Len(t, top, 1)
	require.Equal(t, "acme", top[0].EntityID)
}

func TestClientReport_UnbookedRevenue(t *testing.T) {
	f := newFixture(t)
	f.clients.ExpectedCalls = nil
	f.clients.On("List", mock.Anything).Return([]ledger.Client{
		{ID: "acme", Name: "Acme", Kind: ledger.ClientExternal, Active: true},
		{ID: "globex", Name: "Globex", Kind: ledger.ClientExternal, Active: true},
		{ID: "house", Name: "Internal", Kind: ledger.ClientHouse, Active: true},
		{ID: "initech", Name: "Initech", Kind: ledger.ClientExternal, Active: true},
	}, nil)
	f.revenue.ExpectedCalls = nil
	f.revenue.On("List", mock.Anything, ledger.RevenueFilter{Year: 2024}).Return([]ledger.RecognizedRevenue{
		{ServiceID: "s1", ClientID: "acme", Year: 2024, Month: time.March, Amount: 100},
		{ServiceID: "s2", ClientID: "globex", Year: 2024, Month: time.March, Amount: 20},
		{ServiceID: "s9", ClientID: "initech", Year: 2024, Month: time.March, Amount: 40},
	}, nil)

	rollups, err := f.svc.ClientReport(context.Background(), access.All(), march)
	require.NoError(t, err)
	require.Len(t, rollups, 4)

	byID := map[string]reporting.ClientRollup{}
	for _, r := range rollups {
		byID[r.EntityID] = r
	}
	initech, ok := byID["initech"]
	require.True(t, ok, "unbooked client missing from report")
	require.Equal(t, 40.0, initech.RevenueTotal)
	require.Equal(t, 40.0, initech.Unattributed)
	require.Zero(t, initech.PeopleCount)
	require.Zero(t, byID["acme"].Unattributed)
	require.Equal(t, ledger.ClientHouse, rollups[3].Kind)
}

func TestClientReport_InvoicedBasis(t *testing.T) {
	f := newFixture(t)
	f.settings.RevenueBasis = profitability.RevenueInvoiced
	f.rebuild()

	rollups, err := f.svc.ClientReport(context.Background(), access.All(), march)
	require.NoError(t, err)
	require.Equal(t, 60.0, rollups[0].RevenueTotal)
	require.Empty(t, lineKinds(rollups[0].Lines, attribution.KindService))
}

func lineKinds(lines []attribution.LineItem, kind attribution.LineKind) []attribution.LineItem {
	var out []attribution.LineItem
	for _, l := range lines {
		if l.Kind() == kind {
			out = append(out, l)
		}
	}
	return out
}

func TestAreaReport(t *testing.T) {
	f := newFixture(t)
	rollups, err := f.svc.AreaReport(context.Background(), access.All(), march)
	require.NoError(t, err)
	require.Len(t, rollups, 2)
	require.Equal(t, "dev", rollups[0].EntityID)
	require.Equal(t, "Development", rollups[0].Name)
	require.InDelta(t, 120.0, rollups[0].RevenueTotal, 1e-9)
}

func TestProjectsAndAtRisk(t *testing.T) {
	f := newFixture(t)
	statuses, err := f.svc.Projects(context.Background(), access.All(), march)
	require.NoError(t, err)
	require.Len(t, statuses, 1, "dormant projects are skipped")

	p1 := statuses[0]
	require.Equal(t, 50.0, p1.Cost, "ana's override of 2/h applies")
	require.Equal(t, 60.0, p1.Revenue)

	atRisk, err := f.svc.AtRiskProjects(context.Background(), access.All(), march)
	require.NoError(t, err)
	require.Len(t, atRisk, 1)
	require.Contains(t, atRisk[0].Reasons, "revenue above 110% of budget")
}

func TestCapacityAndHiring(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	report, err := f.svc.Capacity(ctx, access.All(), march)
	require.NoError(t, err)
	require.Equal(t, "flat-22x8", report.Calendar)
	require.Len(t, report.Records, 3)
	require.Equal(t, 3, report.Summary.People)
	require.Equal(t, 1, report.Summary.ByState[capacity.NoBookings])

	sig, err := f.svc.HiringNeed(ctx, access.All(), march, capacity.HiringRequest{Seniority: "junior", DemandHours: 200})
	require.NoError(t, err)
	require.True(t, sig.Hire)
	require.Equal(t, 166.0, sig.Slack)
	require.Equal(t, 34.0, sig.Shortfall)

	_, err = f.svc.HiringNeed(ctx, access.All(), march, capacity.HiringRequest{})
	require.ErrorIs(t, err, ledger.ErrInvalidInput)

	occ, err := f.svc.Occupancy(ctx, access.All(), march)
	require.NoError(t, err)
	require.Len(t, occ, 3)
}

func TestTeamLoadAndBonus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tc, err := f.svc.TeamComparison(ctx, access.All(), march)
	require.NoError(t, err)
	require.Equal(t, 3, tc.People)

	lb, err := f.svc.LoadBalance(ctx, access.All(), march)
	require.NoError(t, err)
	require.Len(t, lb.Underutilized, 3)

	bp, err := f.svc.BonusProjection(ctx, access.All(), march)
	require.NoError(t, err)
	require.Equal(t, 4800.0, bp.Payroll)
}

func TestExecutive(t *testing.T) {
	f := newFixture(t)
	ex, err := f.svc.Executive(context.Background(), access.All(), march)
	require.NoError(t, err)
	require.Equal(t, 3, ex.People)
	require.Equal(t, 400.0, ex.CompanyCost)
	require.InDelta(t, 120.0, ex.Revenue, 1e-9)
	require.Equal(t, 30.0, ex.Overhead)
	require.InDelta(t, -310.0, ex.Margin, 1e-9)
	require.Equal(t, 1, ex.AtRisk)
}

func TestInvalidSettings(t *testing.T) {
	f := newFixture(t)
	f.settings.Calendars.Capacity = "lunar"
	f.rebuild()

	_, err := f.svc.Capacity(context.Background(), access.All(), march)
	require.ErrorIs(t, err, profitability.ErrInvalidSettings)
}

package overhead

import (
	"testing"
	"time"

	"github.com/rpggio/profitability/internal/calendar"
	"github.com/rpggio/profitability/internal/domain/costing"
	"github.com/rpggio/profitability/internal/domain/ledger"
	"github.com/stretchr/testify/require"
)

func march(d int) time.Time { return time.Date(2024, time.March, d, 0, 0, 0, 0, time.UTC) }

func fixture() (Allocator, Input) {
	cal, _ := calendar.Lookup(calendar.Weekday98) // March 2024: 184h
	alloc := Allocator{
		Calendar:      cal,
		HouseClientID: "house",
		Rates:         costing.Rates{UnitValue: 1000, EffectiveMonthlyHours: 156},
	}
	in := Input{
		Period: ledger.MonthPeriod(2024, time.March),
		People: []ledger.Person{
			{ID: "ana", AreaID: "audit", Active: true},
			{ID: "bob", AreaID: "tax", Active: true},
			{ID: "old", Active: false},
		},
		HourlyCost: map[string]float64{"ana": 1, "bob": 2, "old": 5},
		Entries: []ledger.TimeEntry{
			{PersonID: "ana", ClientID: "acme", Date: march(4), Hours: 100},
			{PersonID: "ana", ClientID: "house", Date: march(5), Hours: 20},
			{PersonID: "bob", ClientID: "globex", Date: march(6), Hours: 200},
			{PersonID: "bob", ClientID: "globex", Date: march(6).AddDate(0, 1, 0), Hours: 50},
		},
		Expenses: []ledger.OverheadExpense{
			{Year: 2024, Month: time.March, Concept: "rent", Amount: 30000},
			{Year: 2024, Month: time.April, Concept: "rent", Amount: 30000},
		},
	}
	return alloc, in
}

func TestAllocate_HousePolicy(t *testing.T) {
	alloc, in := fixture()
	dist := alloc.Allocate(in)

	require.Equal(t, PolicyHouse, dist.Policy)
	require.Equal(t, calendar.Weekday98, dist.Calendar)
	require.InDelta(t, 30.0, dist.FixedOverheadTotal, 1e-9)
	// ana: 184-120 = 64h at 1; bob booked 200 > 184, so no gap; old is inactive.
	require.InDelta(t, 64.0, dist.GapHoursTotal, 1e-9)
	require.InDelta(t, 64.0, dist.GapCostTotal, 1e-9)
	require.InDelta(t, 94.0, dist.Total, 1e-9)
	require.Equal(t, map[string]float64{"house": 94}, dist.ByClient)
	require.Empty(t, dist.ByArea)
	require.Len(t, dist.Gaps, 2)
}

func TestAllocate_ByHoursPolicy(t *testing.T) {
	alloc, in := fixture()
	alloc.Policy = PolicyByHours
	dist := alloc.Allocate(in)

	// External hours: acme 100, globex 200.
	require.InDelta(t, 94.0/3, dist.ByClient["acme"], 1e-9)
	require.InDelta(t, 94.0*2/3, dist.ByClient["globex"], 1e-9)
	require.NotContains(t, dist.ByClient, "house")
	require.InDelta(t, 94.0/3, dist.ByArea["audit"], 1e-9)
	require.InDelta(t, 94.0*2/3, dist.ByArea["tax"], 1e-9)

	total := 0.0
	for _, v := range dist.ByClient {
		total += v
	}
	require.InDelta(t, dist.Total, total, 1e-9)
}

func TestAllocate_ByHoursWithoutExternalHoursFallsBackToHouse(t *testing.T) {
	alloc, in := fixture()
	alloc.Policy = PolicyByHours
	in.Entries = []ledger.TimeEntry{{PersonID: "ana", ClientID: "house", Date: march(4), Hours: 10}}
	dist := alloc.Allocate(in)
	require.Equal(t, []string{"house"}, keys(dist.ByClient))
	require.InDelta(t, dist.Total, dist.ByClient["house"], 1e-9)
}

func TestAllocate_ZeroCostPersonHasNoGapCost(t *testing.T) {
	alloc, in := fixture()
	in.HourlyCost = map[string]float64{}
	in.Expenses = nil
	dist := alloc.Allocate(in)
	require.InDelta(t, 64.0, dist.GapHoursTotal, 1e-9)
	require.Equal(t, 0.0, dist.GapCostTotal)
	require.Equal(t, 0.0, dist.ByClient["house"])
}

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy("")
	require.NoError(t, err)
	require.Equal(t, PolicyHouse, p)
	p, err = ParsePolicy("by_hours")
	require.NoError(t, err)
	require.Equal(t, PolicyByHours, p)
	_, err = ParsePolicy("random")
	require.Error(t, err)
}

func keys(m map[string]float64) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

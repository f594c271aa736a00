package capacity

import (
	"testing"
	"time"

	"github.com/rpggio/profitability/internal/calendar"
	"github.com/rpggio/profitability/internal/domain/ledger"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	cases := map[float64]State{
		0:     NoBookings,
		30:    Low,
		59.99: Low,
		60:    Optimal,
		89.9:  Optimal,
		90:    High,
		95:    High,
		110:   High,
		111:   Overloaded,
	}
	for pct, want := range cases {
		require.Equal(t, want, Classify(pct), "utilization %v", pct)
	}
}

func flat(t *testing.T) calendar.Calendar {
	cal, err := calendar.Lookup(calendar.Flat22x8)
	require.NoError(t, err)
	return cal
}

func hours(person string, h float64) ledger.TimeEntry {
	return ledger.TimeEntry{PersonID: person, ClientID: "acme", Date: time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC), Hours: h}
}

func TestAnalyze(t *testing.T) {
	people := []ledger.Person{
		{ID: "ana", Name: "Ana", Seniority: "senior", Employment: ledger.FullTime},
		{ID: "bob", Name: "Bob", Seniority: "junior", Employment: ledger.PartTime},
		{ID: "eve", Name: "Eve", Seniority: "senior", Employment: ledger.FullTime},
	}
	entries := []ledger.TimeEntry{hours("ana", 100), hours("ana", 67.2), hours("bob", 97.68)}

	records := Analyzer{Calendar: flat(t)}.Analyze(ledger.MonthPeriod(2024, time.March), people, entries)
	require.Len(t, records, 3)

	bob := records[0]
	require.Equal(t, "bob", bob.PersonID)
	require.Equal(t, 88.0, bob.HoursExpected)
	require.InDelta(t, 111.0, bob.UtilizationPct, 1e-9)
	require.Equal(t, Overloaded, bob.State)
	require.Zero(t, bob.Slack)

	ana := records[1]
	require.Equal(t, 176.0, ana.HoursExpected)
	require.InDelta(t, 95.0, ana.UtilizationPct, 1e-9)
	require.Equal(t, High, ana.State)
	require.InDelta(t, 8.8, ana.Slack, 1e-9)

	eve := records[2]
	require.Equal(t, NoBookings, eve.State)
	require.Equal(t, 176.0, eve.Slack)

	sum := Summarize(records)
	require.Equal(t, 3, sum.People)
	require.Equal(t, 1, sum.ByState[High])
	require.Equal(t, 1, sum.ByState[Overloaded])
	require.Equal(t, 1, sum.ByState[NoBookings])
	require.Equal(t, 0, sum.ByState[Optimal])
	require.InDelta(t, 184.8, sum.Slack, 1e-9)
}

func TestAnalyze_QuarterScalesExpected(t *testing.T) {
	q1, err := ledger.NewPeriod(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	records := Analyzer{Calendar: flat(t)}.Analyze(q1, []ledger.Person{{ID: "ana", Employment: ledger.FullTime}}, nil)
	require.Equal(t, 528.0, records[0].HoursExpected)
}

func TestHiringNeed(t *testing.T) {
	records := []Record{
		{PersonID: "a", Seniority: "senior", AreaID: "dev", Slack: 20},
		{PersonID: "b", Seniority: "senior", AreaID: "ops", Slack: 30},
		{PersonID: "c", Seniority: "junior", AreaID: "dev", Slack: 100},
	}

	sig := HiringNeed(records, HiringRequest{Seniority: "senior", DemandHours: 80})
	require.True(t, sig.Hire)
	require.Equal(t, 2, sig.People)
	require.Equal(t, 50.0, sig.Slack)
	require.Equal(t, 30.0, sig.Shortfall)
	require.Contains(t, sig.Message, "senior")

	scoped := HiringNeed(records, HiringRequest{Seniority: "senior", AreaID: "dev", DemandHours: 20})
	require.False(t, scoped.Hire)
	require.Zero(t, scoped.Shortfall)
	require.Equal(t, 1, scoped.People)

	none := HiringNeed(records, HiringRequest{Seniority: "principal", DemandHours: 1})
	require.True(t, none.Hire)
	require.Equal(t, 1.0, none.Shortfall)
}

func TestOccupancy(t *testing.T) {
	cal, err := calendar.Lookup(calendar.Weekday7)
	require.NoError(t, err)

	people := []ledger.Person{{ID: "ana"}, {ID: "bob"}, {ID: "eve"}, {ID: "kim"}}
	entries := []ledger.TimeEntry{hours("ana", 147), hours("bob", 110.25), hours("eve", 73.5)}

	occ := OccupancyFor(cal, ledger.MonthPeriod(2024, time.March), people, entries)
	require.Len(t, occ, 4)
	require.Equal(t, 147.0, occ[0].Available)
	require.Equal(t, BandHigh, occ[0].Band)
	require.Equal(t, BandMedium, occ[1].Band)
	require.Equal(t, BandLow, occ[2].Band)
	require.Equal(t, BandVeryLow, occ[3].Band)
	require.Equal(t, BandVeryLow, BandFor(49.9))
}

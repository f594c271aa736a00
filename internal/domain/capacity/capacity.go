// Package capacity compares booked hours with each person's expected hours
// and flags when demand cannot be absorbed by the current team.
package capacity

import (
	"fmt"
	"sort"

	"github.com/rpggio/profitability/internal/calendar"
	"github.com/rpggio/profitability/internal/domain/attribution"
	"github.com/rpggio/profitability/internal/domain/ledger"
	"github.com/samber/lo"
)

// State classifies a utilization percentage.
type State string

const (
	NoBookings State = "no bookings"
	Low        State = "low"
	Optimal    State = "optimal"
	High       State = "high"
	Overloaded State = "overloaded"
)

// States lists every state from least to most loaded.
var States = []State{NoBookings, Low, Optimal, High, Overloaded}

// Classify maps utilization to a state; the first matching band wins.
func Classify(utilizationPct float64) State {
	switch {
	case utilizationPct <= 0:
		return NoBookings
	case utilizationPct < 60:
		return Low
	case utilizationPct < 90:
		return Optimal
	case utilizationPct <= 110:
		return High
	default:
		return Overloaded
	}
}

// Record is one person's capacity for a period.
type Record struct {
	PersonID       string            `json:"person_id"`
	Name           string            `json:"name"`
	AreaID         string            `json:"area_id,omitempty"`
	Seniority      string            `json:"seniority,omitempty"`
	Employment     ledger.Employment `json:"employment"`
	HoursWorked    float64           `json:"hours_worked"`
	HoursExpected  float64           `json:"hours_expected"`
	UtilizationPct float64           `json:"utilization_pct"`
	Slack          float64           `json:"slack"`
	State          State             `json:"state"`
}

// Analyzer derives expected hours from a calendar.
type Analyzer struct {
	Calendar calendar.Calendar
}

// Expected is the calendar's hours over the period's months scaled by the
// person's employment fraction.
func (a Analyzer) Expected(p ledger.Person, period ledger.Period) float64 {
	total := 0.0
	for _, ym := range period.Months() {
		total += a.Calendar.AvailableHours(ym.Year, ym.Month)
	}
	return total * p.Employment.Fraction()
}

// Analyze builds a record per person, most utilized first.
func (a Analyzer) Analyze(period ledger.Period, people []ledger.Person, entries []ledger.TimeEntry) []Record {
	booked := bookedHours(entries)
	out := make([]Record, 0, len(people))
	for _, p := range people {
		r := Record{
			PersonID:      p.ID,
			Name:          p.Name,
			AreaID:        p.AreaID,
			Seniority:     p.Seniority,
			Employment:    p.Employment,
			HoursWorked:   booked[p.ID],
			HoursExpected: a.Expected(p, period),
		}
		r.UtilizationPct = attribution.Percent(r.HoursWorked, r.HoursExpected)
		r.Slack = max(0, r.HoursExpected-r.HoursWorked)
		r.State = Classify(r.UtilizationPct)
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].UtilizationPct > out[j].UtilizationPct })
	return out
}

// Summary counts people per state.
type Summary struct {
	People         int           `json:"people"`
	ByState        map[State]int `json:"by_state"`
	HoursWorked    float64       `json:"hours_worked"`
	HoursExpected  float64       `json:"hours_expected"`
	UtilizationPct float64       `json:"utilization_pct"`
	Slack          float64       `json:"slack"`
}

func Summarize(records []Record) Summary {
	s := Summary{
		People:  len(records),
		ByState: lo.SliceToMap(States, func(st State) (State, int) { return st, 0 }),
	}
	for _, r := range records {
		s.ByState[r.State]++
		s.HoursWorked += r.HoursWorked
		s.HoursExpected += r.HoursExpected
		s.Slack += r.Slack
	}
	s.UtilizationPct = attribution.Percent(s.HoursWorked, s.HoursExpected)
	return s
}

// HiringRequest describes new demand for a seniority tier, optionally
// limited to one area.
type HiringRequest struct {
	Seniority   string  `json:"seniority"`
	AreaID      string  `json:"area_id,omitempty"`
	DemandHours float64 `json:"demand_hours"`
}

// Signal is the outcome of a hiring-need check.
type Signal struct {
	Seniority string  `json:"seniority"`
	AreaID    string  `json:"area_id,omitempty"`
	People    int     `json:"people"`
	Slack     float64 `json:"slack"`
	Demand    float64 `json:"demand"`
	Shortfall float64 `json:"shortfall"`
	Hire      bool    `json:"hire"`
	Message   string  `json:"message"`
}

// HiringNeed sums the slack of people in the requested tier and signals a
// hire when demand exceeds it.
func HiringNeed(records []Record, req HiringRequest) Signal {
	pool := lo.Filter(records, func(r Record, _ int) bool {
		return r.Seniority == req.Seniority && (req.AreaID == "" || r.AreaID == req.AreaID)
	})
	sig := Signal{
		Seniority: req.Seniority,
		AreaID:    req.AreaID,
		People:    len(pool),
		Slack:     lo.SumBy(pool, func(r Record) float64 { return r.Slack }),
		Demand:    req.DemandHours,
	}
	if sig.Demand > sig.Slack {
		sig.Shortfall = sig.Demand - sig.Slack
		sig.Hire = true
		sig.Message = fmt.Sprintf("hire %s: demand exceeds available capacity by %.1fh", tierLabel(req), sig.Shortfall)
	} else {
		sig.Message = fmt.Sprintf("current %s capacity absorbs the demand (%.1fh slack left)", tierLabel(req), sig.Slack-sig.Demand)
	}
	return sig
}

func tierLabel(req HiringRequest) string {
	if req.AreaID == "" {
		return req.Seniority
	}
	return req.Seniority + " in " + req.AreaID
}

func bookedHours(entries []ledger.TimeEntry) map[string]float64 {
	out := map[string]float64{}
	for _, e := range entries {
		out[e.PersonID] += e.Hours
	}
	return out
}

// Package overhead computes unbooked-hours cost and fixed operating expense
// and distributes them over clients and areas.
package overhead

import (
	"fmt"

	"github.com/rpggio/profitability/internal/calendar"
	"github.com/rpggio/profitability/internal/domain/costing"
	"github.com/rpggio/profitability/internal/domain/ledger"
	"github.com/samber/lo"
)

// Policy selects how overhead is spread.
type Policy string

const (
	// PolicyHouse books all overhead on the house client.
	PolicyHouse Policy = "house"
	// PolicyByHours spreads overhead by share of booked hours.
	PolicyByHours Policy = "by_hours"
)

// ParsePolicy validates a policy name. Empty means PolicyHouse.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case "", PolicyHouse:
		return PolicyHouse, nil
	case PolicyByHours:
		return PolicyByHours, nil
	default:
		return "", fmt.Errorf("unknown overhead policy %q", s)
	}
}

// Allocator distributes overhead for a period.
type Allocator struct {
	Calendar      calendar.Calendar
	Policy        Policy
	HouseClientID string
	Rates         costing.Rates
}

// Input is the data an allocation reads. Entries outside Period are ignored.
type Input struct {
	Period     ledger.Period
	People     []ledger.Person
	HourlyCost map[string]float64
	Entries    []ledger.TimeEntry
	Expenses   []ledger.OverheadExpense
}

// Gap is one person's unbooked hours in one month.
type Gap struct {
	PersonID  string           `json:"person_id"`
	Month     ledger.YearMonth `json:"month"`
	Available float64          `json:"available_hours"`
	Booked    float64          `json:"booked_hours"`
	Hours     float64          `json:"gap_hours"`
	Cost      float64          `json:"gap_cost"`
}

// Distribution is the overhead for a period and where it landed.
type Distribution struct {
	Policy             Policy             `json:"policy"`
	Calendar           string             `json:"calendar"`
	FixedOverheadTotal float64            `json:"fixed_overhead_total"`
	GapHoursTotal      float64            `json:"gap_hours_total"`
	GapCostTotal       float64            `json:"gap_cost_total"`
	Total              float64            `json:"total"`
	ByClient           map[string]float64 `json:"by_client"`
	ByArea             map[string]float64 `json:"by_area"`
	Gaps               []Gap              `json:"gaps,omitempty"`
}

// Allocate computes fixed overhead and gap cost for every active person and
// month in the period, then distributes the total under the policy.
func (a Allocator) Allocate(in Input) Distribution {
	dist := Distribution{
		Policy:   a.policy(),
		ByClient: map[string]float64{},
		ByArea:   map[string]float64{},
	}
	if a.Calendar != nil {
		dist.Calendar = a.Calendar.Name()
	}

	months := in.Period.Months()
	for _, e := range in.Expenses {
		if in.Period.ContainsMonth(e.Year, e.Month) {
			dist.FixedOverheadTotal += a.Rates.ToUnits(e.Amount)
		}
	}

	entries := lo.Filter(in.Entries, func(e ledger.TimeEntry, _ int) bool {
		return in.Period.Contains(e.Date)
	})
	booked := map[string]map[ledger.YearMonth]float64{}
	for _, e := range entries {
		ym := ledger.YearMonth{Year: e.Date.Year(), Month: e.Date.Month()}
		if booked[e.PersonID] == nil {
			booked[e.PersonID] = map[ledger.YearMonth]float64{}
		}
		booked[e.PersonID][ym] += e.Hours
	}

	for _, p := range in.People {
		if !p.Active {
			continue
		}
		rate := in.HourlyCost[p.ID]
		for _, ym := range months {
			available := 0.0
			if a.Calendar != nil {
				available = a.Calendar.AvailableHours(ym.Year, ym.Month)
			}
			b := booked[p.ID][ym]
			hours := max(0, available-b)
			gap := Gap{PersonID: p.ID, Month: ym, Available: available, Booked: b, Hours: hours, Cost: hours * rate}
			dist.Gaps = append(dist.Gaps, gap)
			dist.GapHoursTotal += gap.Hours
			dist.GapCostTotal += gap.Cost
		}
	}

	dist.Total = dist.FixedOverheadTotal + dist.GapCostTotal
	if dist.Policy == PolicyByHours {
		a.spreadByHours(&dist, entries, in.People)
	} else {
		dist.ByClient[a.HouseClientID] = dist.Total
	}
	return dist
}

func (a Allocator) policy() Policy {
	if a.Policy == "" {
		return PolicyHouse
	}
	return a.Policy
}

// spreadByHours shares the total by booked hours on non-house clients. Areas
// are taken from the entry, falling back to the person's area.
func (a Allocator) spreadByHours(dist *Distribution, entries []ledger.TimeEntry, people []ledger.Person) {
	external := lo.Filter(entries, func(e ledger.TimeEntry, _ int) bool {
		return e.ClientID != a.HouseClientID
	})
	totalHours := lo.SumBy(external, func(e ledger.TimeEntry) float64 { return e.Hours })
	if totalHours <= 0 {
		dist.ByClient[a.HouseClientID] = dist.Total
		return
	}

	areaOf := lo.SliceToMap(people, func(p ledger.Person) (string, string) { return p.ID, p.AreaID })
	for _, e := range external {
		share := dist.Total * e.Hours / totalHours
		dist.ByClient[e.ClientID] += share
		area := e.AreaID
		if area == "" {
			area = areaOf[e.PersonID]
		}
		dist.ByArea[area] += share
	}
}

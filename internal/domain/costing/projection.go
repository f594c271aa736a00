package costing

import (
	"sort"
	"time"

	"github.com/rpggio/profitability/internal/domain/ledger"
)

// ProjectAnnualRevenue time-weights a service's revenue for year across the
// value changes effective that year.
//
// With no changes the projection is nominal x 12. Otherwise the first
// change's previous value covers January up to the first change month, each
// change's new value covers the months until the next change, and the last
// value runs through December. Changes from other years are ignored; the rest
// are ordered by effective date, then creation time, so several changes in
// one month leave zero-length segments and the last one wins. A change in
// January leaves a zero-length initial segment.
func ProjectAnnualRevenue(nominal float64, changes []ledger.ValueChange, year int) float64 {
	inYear := orderedChanges(changes, year)
	if len(inYear) == 0 {
		return nominal * 12
	}

	total := 0.0
	value := inYear[0].Previous
	start := int(time.January)
	for _, c := range inYear {
		month := int(c.EffectiveDate.Month())
		total += value * float64(month-start)
		value = c.New
		start = month
	}
	total += value * float64(13-start)
	return total
}

// Segment is a run of months billed at one value.
type Segment struct {
	From  time.Month `json:"from"`
	To    time.Month `json:"to"`
	Value float64    `json:"value"`
}

// Segments explains a projection as the non-empty month runs it summed.
func Segments(nominal float64, changes []ledger.ValueChange, year int) []Segment {
	inYear := orderedChanges(changes, year)
	if len(inYear) == 0 {
		return []Segment{{From: time.January, To: time.December, Value: nominal}}
	}

	var segs []Segment
	value := inYear[0].Previous
	start := time.January
	for _, c := range inYear {
		month := c.EffectiveDate.Month()
		if month > start {
			segs = append(segs, Segment{From: start, To: month - 1, Value: value})
		}
		value = c.New
		start = month
	}
	segs = append(segs, Segment{From: start, To: time.December, Value: value})
	return segs
}

func orderedChanges(changes []ledger.ValueChange, year int) []ledger.ValueChange {
	inYear := make([]ledger.ValueChange, 0, len(changes))
	for _, c := range changes {
		if c.EffectiveDate.Year() == year {
			inYear = append(inYear, c)
		}
	}
	sort.SliceStable(inYear, func(i, j int) bool {
		a, b := inYear[i], inYear[j]
		if !a.EffectiveDate.Equal(b.EffectiveDate) {
			return a.EffectiveDate.Before(b.EffectiveDate)
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})
	return inYear
}

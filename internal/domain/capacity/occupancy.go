package capacity

import (
	"sort"

	"github.com/rpggio/profitability/internal/calendar"
	"github.com/rpggio/profitability/internal/domain/attribution"
	"github.com/rpggio/profitability/internal/domain/ledger"
)

// Band is a coarse occupancy level.
type Band string

const (
	BandHigh    Band = "high"
	BandMedium  Band = "medium"
	BandLow     Band = "low"
	BandVeryLow Band = "very low"
)

// BandFor maps an occupancy percentage to its band.
func BandFor(pct float64) Band {
	switch {
	case pct >= 90:
		return BandHigh
	case pct >= 70:
		return BandMedium
	case pct >= 50:
		return BandLow
	default:
		return BandVeryLow
	}
}

// Occupancy is a person's booked hours against calendar availability.
type Occupancy struct {
	PersonID  string  `json:"person_id"`
	Name      string  `json:"name"`
	Booked    float64 `json:"booked"`
	Available float64 `json:"available"`
	Pct       float64 `json:"occupancy_pct"`
	Band      Band    `json:"band"`
}

// OccupancyFor measures occupancy over the period using cal. Availability is
// not scaled by employment.
func OccupancyFor(cal calendar.Calendar, period ledger.Period, people []ledger.Person, entries []ledger.TimeEntry) []Occupancy {
	available := 0.0
	for _, ym := range period.Months() {
		available += cal.AvailableHours(ym.Year, ym.Month)
	}
	booked := bookedHours(entries)

	out := make([]Occupancy, 0, len(people))
	for _, p := range people {
		o := Occupancy{PersonID: p.ID, Name: p.Name, Booked: booked[p.ID], Available: available}
		o.Pct = attribution.Percent(o.Booked, o.Available)
		o.Band = BandFor(o.Pct)
		out = append(out, o)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Pct > out[j].Pct })
	return out
}

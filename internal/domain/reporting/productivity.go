// Package reporting rolls attribution results up into person, area, client
// and project reports and derives threshold-based recommendations.
package reporting

import (
	"github.com/rpggio/profitability/internal/domain/attribution"
	"github.com/rpggio/profitability/internal/domain/ledger"
)

// Baseline is the expected booked hours per month by employment.
type Baseline struct {
	FullTime float64 `json:"full_time" yaml:"full_time"`
	PartTime float64 `json:"part_time" yaml:"part_time"`
}

// DefaultBaseline expects 156h a month full time and 78h part time.
func DefaultBaseline() Baseline {
	return Baseline{FullTime: 156, PartTime: 78}
}

// Expected returns the hours expected over months.
func (b Baseline) Expected(e ledger.Employment, months int) float64 {
	if e == ledger.PartTime {
		return b.PartTime * float64(months)
	}
	return b.FullTime * float64(months)
}

// Raise is a salary raise recommendation.
type Raise string

const (
	RaiseYes    Raise = "Yes"
	RaiseReview Raise = "Review"
	RaiseNo     Raise = "No"
)

// RaiseFor recommends a raise. Thresholds are strict.
func RaiseFor(roi, compliance, marginPct float64) Raise {
	switch {
	case roi > 150 && compliance > 90 && marginPct > 20:
		return RaiseYes
	case roi > 100:
		return RaiseReview
	default:
		return RaiseNo
	}
}

// BonusTier is the bonus as a percentage of one monthly salary.
type BonusTier int

const (
	BonusNone BonusTier = 0
	Bonus25   BonusTier = 25
	Bonus50   BonusTier = 50
	Bonus75   BonusTier = 75
	Bonus100  BonusTier = 100
)

// Tiers lists bonus tiers from highest to lowest.
var Tiers = []BonusTier{Bonus100, Bonus75, Bonus50, Bonus25, BonusNone}

func (t BonusTier) String() string {
	switch t {
	case Bonus100:
		return "100%"
	case Bonus75:
		return "75%"
	case Bonus50:
		return "50%"
	case Bonus25:
		return "25%"
	default:
		return "does not qualify"
	}
}

// MarshalText encodes the tier as its label, so reports and map keys read
// "75%" rather than 75.
func (t BonusTier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// BonusFor evaluates the bands top-down; the first match wins.
func BonusFor(roi, compliance, marginPct float64) BonusTier {
	switch {
	case roi > 200 && compliance > 95 && marginPct > 25:
		return Bonus100
	case roi > 150 && compliance > 90 && marginPct > 20:
		return Bonus75
	case roi > 120 && compliance > 85 && marginPct > 15:
		return Bonus50
	case roi > 80 && compliance > 80:
		return Bonus25
	default:
		return BonusNone
	}
}

// Productivity is a person's report for a period.
type Productivity struct {
	PersonID            string              `json:"person_id"`
	Name                string              `json:"name"`
	AreaID              string              `json:"area_id,omitempty"`
	Seniority           string              `json:"seniority,omitempty"`
	Employment          ledger.Employment   `json:"employment"`
	MonthlyCost         float64             `json:"monthly_cost"`
	HoursWorked         float64             `json:"hours_worked"`
	HoursExpected       float64             `json:"hours_expected"`
	CompliancePct       float64             `json:"compliance_pct"`
	CostTotal           float64             `json:"cost_total"`
	RevenueProrated     float64             `json:"revenue_prorated"`
	Margin              float64             `json:"margin"`
	MarginPct           float64             `json:"margin_pct"`
	ROI                 float64             `json:"roi"`
	Efficiency          float64             `json:"efficiency"`
	ProductivityPerHour float64             `json:"productivity_per_hour"`
	Breakdown           []attribution.Share `json:"per_client_breakdown"`
	Raise               Raise               `json:"raise_recommendation"`
	Bonus               BonusTier           `json:"bonus_tier"`
}

// BuildProductivity turns a person's attribution into a productivity record.
func BuildProductivity(p ledger.Person, pr attribution.PersonResult, months int, b Baseline) Productivity {
	rec := Productivity{
		PersonID:        p.ID,
		Name:            p.Name,
		AreaID:          p.AreaID,
		Seniority:       p.Seniority,
		Employment:      p.Employment,
		MonthlyCost:     p.MonthlyCost,
		HoursWorked:     pr.Hours,
		HoursExpected:   b.Expected(p.Employment, months),
		CostTotal:       pr.Cost,
		RevenueProrated: pr.Revenue,
		Margin:          pr.Margin,
		MarginPct:       pr.MarginPct,
		ROI:             pr.ROI,
		Breakdown:       pr.Shares,
	}
	if rec.Breakdown == nil {
		rec.Breakdown = []attribution.Share{}
	}
	rec.CompliancePct = attribution.Percent(rec.HoursWorked, rec.HoursExpected)
	rec.Efficiency = attribution.Ratio(rec.RevenueProrated, rec.CostTotal)
	rec.ProductivityPerHour = attribution.Ratio(rec.RevenueProrated, rec.HoursWorked)
	rec.Raise = RaiseFor(rec.ROI, rec.CompliancePct, rec.MarginPct)
	rec.Bonus = BonusFor(rec.ROI, rec.CompliancePct, rec.MarginPct)
	return rec
}

package reporting

import (
	"sort"

	"github.com/samber/lo"
)

// RankedPerson is one row of a team ranking.
type RankedPerson struct {
	Rank          int     `json:"rank"`
	PersonID      string  `json:"person_id"`
	Name          string  `json:"name"`
	ROI           float64 `json:"roi"`
	MarginPct     float64 `json:"margin_pct"`
	CompliancePct float64 `json:"compliance_pct"`
	Efficiency    float64 `json:"efficiency"`
}

// TeamComparison benchmarks people against the team average.
type TeamComparison struct {
	People         int            `json:"people"`
	AvgROI         float64        `json:"avg_roi"`
	AvgMarginPct   float64        `json:"avg_margin_pct"`
	AvgEfficiency  float64        `json:"avg_efficiency"`
	AvgCompliance  float64        `json:"avg_compliance"`
	Ranking        []RankedPerson `json:"ranking"`
	Top            []RankedPerson `json:"top"`
	NeedsAttention []RankedPerson `json:"needs_attention"`
}

const topPerformers = 5

// CompareTeam ranks people by ROI. People with ROI or compliance under 80
// need attention.
func CompareTeam(records []Productivity) TeamComparison {
	tc := TeamComparison{
		People:         len(records),
		AvgROI:         mean(records, func(r Productivity) float64 { return r.ROI }),
		AvgMarginPct:   mean(records, func(r Productivity) float64 { return r.MarginPct }),
		AvgEfficiency:  mean(records, func(r Productivity) float64 { return r.Efficiency }),
		AvgCompliance:  mean(records, func(r Productivity) float64 { return r.CompliancePct }),
		Ranking:        []RankedPerson{},
		NeedsAttention: []RankedPerson{},
	}

	sorted := append([]Productivity(nil), records...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].ROI > sorted[j].ROI })
	for i, r := range sorted {
		rp := RankedPerson{
			Rank:          i + 1,
			PersonID:      r.PersonID,
			Name:          r.Name,
			ROI:           r.ROI,
			MarginPct:     r.MarginPct,
			CompliancePct: r.CompliancePct,
			Efficiency:    r.Efficiency,
		}
		tc.Ranking = append(tc.Ranking, rp)
		if r.ROI < 80 || r.CompliancePct < 80 {
			tc.NeedsAttention = append(tc.NeedsAttention, rp)
		}
	}
	tc.Top = tc.Ranking[:min(topPerformers, len(tc.Ranking))]
	return tc
}

// LoadEntry is a person's booked load against expectation.
type LoadEntry struct {
	PersonID      string  `json:"person_id"`
	Name          string  `json:"name"`
	HoursWorked   float64 `json:"hours_worked"`
	HoursExpected float64 `json:"hours_expected"`
	CompliancePct float64 `json:"compliance_pct"`
}

// LoadBalance splits people by compliance: above 110 is overloaded and
// below 70 is underutilized.
type LoadBalance struct {
	Overloaded    []LoadEntry `json:"overloaded"`
	Balanced      []LoadEntry `json:"balanced"`
	Underutilized []LoadEntry `json:"underutilized"`
}

// BalanceLoad classifies each record, most loaded first within a group.
func BalanceLoad(records []Productivity) LoadBalance {
	lb := LoadBalance{Overloaded: []LoadEntry{}, Balanced: []LoadEntry{}, Underutilized: []LoadEntry{}}
	sorted := append([]Productivity(nil), records...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].CompliancePct > sorted[j].CompliancePct })

	for _, r := range sorted {
		e := LoadEntry{
			PersonID:      r.PersonID,
			Name:          r.Name,
			HoursWorked:   r.HoursWorked,
			HoursExpected: r.HoursExpected,
			CompliancePct: r.CompliancePct,
		}
		switch {
		case r.CompliancePct > 110:
			lb.Overloaded = append(lb.Overloaded, e)
		case r.CompliancePct < 70:
			lb.Underutilized = append(lb.Underutilized, e)
		default:
			lb.Balanced = append(lb.Balanced, e)
		}
	}
	return lb
}

// BonusLine is one person's projected bonus.
type BonusLine struct {
	PersonID    string    `json:"person_id"`
	Name        string    `json:"name"`
	Tier        BonusTier `json:"tier"`
	MonthlyCost float64   `json:"monthly_cost"`
	Amount      float64   `json:"amount"`
}

// BonusProjection totals the bonuses the current tiers would pay.
type BonusProjection struct {
	Lines        []BonusLine       `json:"lines"`
	CountByTier  map[BonusTier]int `json:"count_by_tier"`
	Total        float64           `json:"total"`
	Payroll      float64           `json:"annual_payroll"`
	PctOfPayroll float64           `json:"pct_of_payroll"`
}

// ProjectBonuses pays each person their tier's share of one monthly cost and
// relates the total to a year of payroll.
func ProjectBonuses(records []Productivity) BonusProjection {
	bp := BonusProjection{
		Lines:       make([]BonusLine, 0, len(records)),
		CountByTier: lo.SliceToMap(Tiers, func(t BonusTier) (BonusTier, int) { return t, 0 }),
	}
	for _, r := range records {
		line := BonusLine{
			PersonID:    r.PersonID,
			Name:        r.Name,
			Tier:        r.Bonus,
			MonthlyCost: r.MonthlyCost,
			Amount:      r.MonthlyCost * float64(r.Bonus) / 100,
		}
		bp.Lines = append(bp.Lines, line)
		bp.CountByTier[r.Bonus]++
		bp.Total += line.Amount
		bp.Payroll += r.MonthlyCost * 12
	}
	sort.SliceStable(bp.Lines, func(i, j int) bool { return bp.Lines[i].Amount > bp.Lines[j].Amount })
	if bp.Payroll > 0 {
		bp.PctOfPayroll = bp.Total / bp.Payroll * 100
	}
	return bp
}

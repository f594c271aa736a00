package reporting

import (
	"github.com/rpggio/profitability/internal/domain/attribution"
	"github.com/rpggio/profitability/internal/domain/ledger"
	"github.com/samber/lo"
)

// Executive is the company-wide summary for a period.
type Executive struct {
	Period        string  `json:"period"`
	People        int     `json:"people"`
	HoursWorked   float64 `json:"hours_worked"`
	HoursExpected float64 `json:"hours_expected"`
	CompliancePct float64 `json:"compliance_pct"`
	// CompanyCost is the payroll of active people over the period, in units.
	CompanyCost  float64 `json:"company_cost"`
	BookedCost   float64 `json:"booked_cost"`
	Revenue      float64 `json:"revenue"`
	Unattributed float64 `json:"unattributed_revenue"`
	Overhead     float64 `json:"overhead"`
	Margin       float64 `json:"margin"`
	MarginPct    float64 `json:"margin_pct"`
	ROI          float64 `json:"roi"`
	AtRisk       int     `json:"projects_at_risk"`
}

// ExecutiveInput feeds Summarize.
type ExecutiveInput struct {
	Period      ledger.Period
	Records     []Productivity
	CompanyCost float64
	Pools       map[string]attribution.Pool
	Overhead    float64
	AtRisk      int
}

// Summarize rolls a period's records and pools into the executive summary.
// Margin is revenue less the company cost and overhead.
func Summarize(in ExecutiveInput) Executive {
	pools := lo.Values(in.Pools)
	ex := Executive{
		Period:        in.Period.String(),
		People:        len(in.Records),
		HoursWorked:   lo.SumBy(in.Records, func(r Productivity) float64 { return r.HoursWorked }),
		HoursExpected: lo.SumBy(in.Records, func(r Productivity) float64 { return r.HoursExpected }),
		CompanyCost:   in.CompanyCost,
		BookedCost:    lo.SumBy(pools, func(p attribution.Pool) float64 { return p.Cost }),
		Revenue:       lo.SumBy(pools, func(p attribution.Pool) float64 { return p.Revenue }),
		Unattributed:  lo.SumBy(pools, func(p attribution.Pool) float64 { return p.Unattributed }),
		Overhead:      in.Overhead,
		AtRisk:        in.AtRisk,
	}
	ex.CompliancePct = attribution.Percent(ex.HoursWorked, ex.HoursExpected)
	ex.Margin = ex.Revenue - ex.CompanyCost - ex.Overhead
	ex.MarginPct = attribution.Percent(ex.Margin, ex.Revenue)
	ex.ROI = attribution.Percent(ex.Margin, ex.CompanyCost+ex.Overhead)
	return ex
}

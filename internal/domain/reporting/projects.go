package reporting

import (
	"sort"

	"github.com/rpggio/profitability/internal/domain/attribution"
	"github.com/rpggio/profitability/internal/domain/ledger"
)

// At-risk reasons.
const (
	ReasonLowMargin      = "margin below 80% of target"
	ReasonOverBudget     = "revenue above 110% of budget"
	ReasonNegativeMargin = "negative margin"
)

// ProjectStatus is a project's profitability against its budget and target.
type ProjectStatus struct {
	ProjectID       string   `json:"project_id"`
	Code            string   `json:"code,omitempty"`
	Name            string   `json:"name"`
	ClientID        string   `json:"client_id"`
	Budget          float64  `json:"budget"`
	Revenue         float64  `json:"revenue"`
	Cost            float64  `json:"cost"`
	Hours           float64  `json:"hours"`
	Margin          float64  `json:"margin"`
	MarginPct       float64  `json:"margin_pct"`
	TargetMarginPct float64  `json:"target_margin_pct"`
	BudgetUsePct    float64  `json:"budget_use_pct"`
	Reasons         []string `json:"reasons"`
}

// AtRisk reports whether any reason flagged the project.
func (s ProjectStatus) AtRisk() bool { return len(s.Reasons) > 0 }

// AssessProject scores a project's pool. defaultTarget applies when the
// project carries no target margin of its own.
func AssessProject(p ledger.Project, pool attribution.Pool, defaultTarget float64) ProjectStatus {
	s := ProjectStatus{
		ProjectID:       p.ID,
		Code:            p.Code,
		Name:            p.Name,
		ClientID:        p.ClientID,
		Budget:          p.Budget,
		Revenue:         pool.Revenue,
		Cost:            pool.Cost,
		Hours:           pool.Hours,
		Margin:          pool.Revenue - pool.Cost,
		TargetMarginPct: p.TargetMarginPct,
		Reasons:         []string{},
	}
	if s.TargetMarginPct <= 0 {
		s.TargetMarginPct = defaultTarget
	}
	s.MarginPct = attribution.Percent(s.Margin, s.Revenue)
	s.BudgetUsePct = attribution.Percent(s.Revenue, s.Budget)

	if s.TargetMarginPct > 0 && s.MarginPct < 0.8*s.TargetMarginPct {
		s.Reasons = append(s.Reasons, ReasonLowMargin)
	}
	if s.Budget > 0 && s.Revenue > 1.1*s.Budget {
		s.Reasons = append(s.Reasons, ReasonOverBudget)
	}
	if s.Margin < 0 {
		s.Reasons = append(s.Reasons, ReasonNegativeMargin)
	}
	return s
}

// AtRiskProjects keeps flagged projects, worst margin first.
func AtRiskProjects(statuses []ProjectStatus) []ProjectStatus {
	out := []ProjectStatus{}
	for _, s := range statuses {
		if s.AtRisk() {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Margin < out[j].Margin })
	return out
}

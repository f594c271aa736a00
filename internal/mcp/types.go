package mcp

import "github.com/rpggio/profitability/internal/domain/profitability"

// Period arguments repeat on every tool that takes one: explicit from/to
// wins, then year with optional month, then the current month.

type ListReportsParams struct{}

type ReportParams struct {
	Year  int    `json:"year,omitempty" jsonschema:"calendar year; alone it selects the whole year"`
	Month int    `json:"month,omitempty" jsonschema:"month 1-12 within year"`
	From  string `json:"from,omitempty" jsonschema:"range start as YYYY-MM-DD; requires to"`
	To    string `json:"to,omitempty" jsonschema:"inclusive range end as YYYY-MM-DD"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum rows for ranked reports"`
}

type PersonParams struct {
	PersonID string `json:"person_id" jsonschema:"person id"`
}

type PersonPeriodParams struct {
	PersonID string `json:"person_id" jsonschema:"person id"`
	Year     int    `json:"year,omitempty" jsonschema:"calendar year"`
	Month    int    `json:"month,omitempty" jsonschema:"month 1-12 within year"`
	From     string `json:"from,omitempty" jsonschema:"range start as YYYY-MM-DD"`
	To       string `json:"to,omitempty" jsonschema:"inclusive range end as YYYY-MM-DD"`
}

type ProjectRevenueParams struct {
	ServiceID string `json:"service_id" jsonschema:"contracted service id"`
	Year      int    `json:"year,omitempty" jsonschema:"year to project; defaults to the current year"`
}

type HiringNeedParams struct {
	Seniority   string  `json:"seniority" jsonschema:"seniority tier to check"`
	AreaID      string  `json:"area_id,omitempty" jsonschema:"restrict to one area"`
	DemandHours float64 `json:"demand_hours" jsonschema:"new hours the tier must absorb"`
	Year        int     `json:"year,omitempty" jsonschema:"calendar year"`
	Month       int     `json:"month,omitempty" jsonschema:"month 1-12 within year"`
	From        string  `json:"from,omitempty" jsonschema:"range start as YYYY-MM-DD"`
	To          string  `json:"to,omitempty" jsonschema:"inclusive range end as YYYY-MM-DD"`
}

type RecordTimeEntryParams struct {
	PersonID  string  `json:"person_id,omitempty" jsonschema:"person booking the hours; defaults to you"`
	ClientID  string  `json:"client_id" jsonschema:"client the hours are for"`
	ProjectID string  `json:"project_id,omitempty" jsonschema:"project id"`
	AreaID    string  `json:"area_id,omitempty" jsonschema:"area; defaults to the person's area"`
	ServiceID string  `json:"service_id,omitempty" jsonschema:"contracted service id"`
	TaskID    string  `json:"task_id,omitempty" jsonschema:"external task reference"`
	Date      string  `json:"date,omitempty" jsonschema:"day worked as YYYY-MM-DD; defaults to today"`
	Hours     float64 `json:"hours" jsonschema:"hours worked, more than 0 and at most 24"`
	Note      string  `json:"note,omitempty" jsonschema:"free text"`
}

type UpdateTimeEntryParams struct {
	ID        string  `json:"id" jsonschema:"time entry id"`
	ClientID  string  `json:"client_id" jsonschema:"client the hours are for"`
	ProjectID string  `json:"project_id,omitempty" jsonschema:"project id"`
	ServiceID string  `json:"service_id,omitempty" jsonschema:"contracted service id"`
	Date      string  `json:"date" jsonschema:"day worked as YYYY-MM-DD"`
	Hours     float64 `json:"hours" jsonschema:"hours worked, more than 0 and at most 24"`
	Note      string  `json:"note,omitempty" jsonschema:"free text"`
}

type DeleteTimeEntryParams struct {
	ID string `json:"id" jsonschema:"time entry id"`
}

type ChangeServiceValueParams struct {
	ServiceID     string  `json:"service_id" jsonschema:"contracted service id"`
	NewValue      float64 `json:"new_value" jsonschema:"new monthly value"`
	EffectiveDate string  `json:"effective_date,omitempty" jsonschema:"YYYY-MM-DD; defaults to today"`
	Reason        string  `json:"reason,omitempty" jsonschema:"why the value changed"`
}

type RecordOverheadExpenseParams struct {
	Year     int     `json:"year" jsonschema:"calendar year"`
	Month    int     `json:"month" jsonschema:"month 1-12"`
	Concept  string  `json:"concept" jsonschema:"expense concept, unique per month"`
	Category string  `json:"category,omitempty" jsonschema:"grouping label"`
	Amount   float64 `json:"amount" jsonschema:"amount in currency"`
	Note     string  `json:"note,omitempty" jsonschema:"free text"`
}

type RecordRevenueParams struct {
	ServiceID string  `json:"service_id" jsonschema:"contracted service id"`
	Year      int     `json:"year" jsonschema:"calendar year"`
	Month     int     `json:"month" jsonschema:"month 1-12"`
	Amount    float64 `json:"amount" jsonschema:"recognized amount; replaces any previous amount"`
}

type RecordInvoiceParams struct {
	ClientID  string  `json:"client_id" jsonschema:"client invoiced"`
	ProjectID string  `json:"project_id,omitempty" jsonschema:"project the invoice belongs to"`
	Date      string  `json:"date" jsonschema:"invoice date as YYYY-MM-DD"`
	Amount    float64 `json:"amount" jsonschema:"invoiced amount"`
	Paid      bool    `json:"paid,omitempty" jsonschema:"whether the invoice is paid"`
}

type QuoteLineParams struct {
	PersonID string  `json:"person_id" jsonschema:"person staffed on the work"`
	Hours    float64 `json:"hours" jsonschema:"hours estimated for the person"`
	Billing  string  `json:"billing,omitempty" jsonschema:"recurring or spot"`
}

type QuoteParams struct {
	Name        string            `json:"name" jsonschema:"quote name"`
	ClientID    string            `json:"client_id,omitempty" jsonschema:"prospective client"`
	ServiceID   string            `json:"service_id,omitempty" jsonschema:"service being priced"`
	Lines       []QuoteLineParams `json:"lines" jsonschema:"staffing lines"`
	OverheadPct *float64          `json:"overhead_pct,omitempty" jsonschema:"overhead percentage; defaults from configuration"`
	MarginPct   *float64          `json:"margin_pct,omitempty" jsonschema:"margin percentage; defaults from configuration"`
}

type GetQuoteParams struct {
	ID string `json:"id" jsonschema:"quote id"`
}

type ListQuotesParams struct {
	ClientID string `json:"client_id,omitempty" jsonschema:"only quotes for this client"`
}

// ReportInfo is one entry of list_reports.
type ReportInfo struct {
	Tool        string `json:"tool"`
	Kind        string `json:"kind"`
	Description string `json:"description"`
	AdminOnly   bool   `json:"admin_only"`
}

// ReportResponse wraps a report with the period it covers.
type ReportResponse struct {
	Kind   profitability.Kind `json:"kind"`
	Period string             `json:"period"`
	Data   any                `json:"data"`
}

// DeleteResponse confirms a deletion.
type DeleteResponse struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}

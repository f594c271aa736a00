package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `profitability answers who and what makes money: hours booked by people are
costed, matched against recognized revenue and overhead, and rolled up by person, area, client and project.

Core concepts:
- Hourly cost: monthly cost converted to the accounting unit, divided by effective monthly hours.
- Period: a month (year+month), a year (year only), or an explicit from/to date range. Omitting all
  period arguments means the current month.
- Overhead: fixed expenses plus the cost of unbooked hours, allocated by the configured policy.
- Visibility: you see yourself and your active direct reports; administrators see everyone.
  Company-wide reports (clients, projects, overhead, executive) are for administrators.

Default workflow:
1) Call list_reports to see which reports exist and which need admin rights.
2) Run a report_* tool for a period. Prefer months; years recompute twelve months of data.
3) Drill down with get_person_productivity, get_hourly_cost or project_annual_revenue.
4) Book hours with record_time_entry; only your own recent entries can be edited.
5) Price new work with estimate_quote, then create_quote to keep it.

Docs:
- profit://docs/index
- profit://docs/formulas
- profit://docs/writes
`

type docResource struct {
	URI         string
	Name        string
	Title       string
	Description string
	Content     string
}

var docResources = []docResource{
	{
		URI:         "profit://docs/index",
		Name:        "docs_index",
		Title:       "profitability docs index",
		Description: "What the server computes and which doc to read next.",
		Content: `# profitability: docs index

- profit://docs/formulas: how cost, revenue, overhead, margin and ROI are computed.
- profit://docs/writes: what the write tools check and which errors they return.

## Reports

| Tool | Admin only |
|---|---|
| report_productivity | no |
| report_areas | no |
| report_capacity | no |
| report_occupancy | no |
| report_team | no |
| report_load | no |
| report_bonus | no |
| report_clients | yes |
| report_top_clients | yes |
| report_projects | yes |
| report_at_risk | yes |
| report_overhead | yes |
| report_executive | yes |

Reports for people outside your visibility are filtered, never rejected.
Asking for one specific person outside it returns NOT_VISIBLE.
`,
	},
	{
		URI:         "profit://docs/formulas",
		Name:        "docs_formulas",
		Title:       "Formulas",
		Description: "Cost, revenue, overhead and margin formulas used by every report.",
		Content: `# Formulas

- monthly_cost_units = monthly_cost / unit_value
- hourly_cost = monthly_cost_units / effective_monthly_hours (rounded to 4 decimals)
- entry cost = hours x hourly cost (an assignment override on the project wins)
- cost share on a client = person cost on the client / total cost on the client
- prorated revenue = client recognized revenue x cost share
- margin = prorated revenue - cost; margin_pct = margin / revenue x 100 (0 when revenue is 0)
- roi = margin / cost x 100 (0 when cost is 0)

Revenue of a client nobody booked hours on is reported as unattributed on the client report.

## Overhead

fixed expenses of the period + cost of unbooked expected hours. Expected hours come from the
overhead calendar. With the house policy the whole amount lands on the house client; with
by_hours it is shared by booked hours on external clients.

## Annual projection

Value changes split the year into segments. Each segment contributes value x months covered;
the projection is the time-weighted sum over the year.
`,
	},
	{
		URI:         "profit://docs/writes",
		Name:        "docs_writes",
		Title:       "Write tools",
		Description: "Checks and error codes of the write tools.",
		Content: `# Write tools

Every write is one transaction and is never retried. Retry only after fixing the cause.

- record_time_entry: 0 < hours <= 24, date not in the future and inside the edit window,
  active person, existing client. Codes: INVALID_INPUT, FUTURE_DATE, EDIT_WINDOW_CLOSED,
  PERSON_NOT_FOUND, PERSON_INACTIVE, CLIENT_NOT_FOUND.
- update_time_entry / delete_time_entry: only the owner, inside the edit window. NOT_OWNER.
- change_service_value (admin): VALUE_UNCHANGED when the value is the same. Recurring services
  have their recognized revenue rewritten from the effective month through December.
- record_overhead_expense (admin): one row per year, month and concept. DUPLICATE_EXPENSE.
- record_revenue, record_invoice (admin).
`,
	},
}

func registerDocResources(server *sdkmcp.Server) {
	for _, doc := range docResources {
		server.AddResource(&sdkmcp.Resource{
			URI:         doc.URI,
			Name:        doc.Name,
			Title:       doc.Title,
			Description: doc.Description,
			MIMEType:    "text/markdown",
			Size:        int64(len(doc.Content)),
		}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
			uri := doc.URI
			if req != nil && req.Params != nil && req.Params.URI != "" {
				uri = req.Params.URI
			}
			return &sdkmcp.ReadResourceResult{
				Contents: []*sdkmcp.ResourceContents{{
					URI:      uri,
					MIMEType: "text/markdown",
					Text:     doc.Content,
				}},
			}, nil
		})
	}
}

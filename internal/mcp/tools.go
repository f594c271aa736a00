package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/profitability/internal/domain/access"
	"github.com/rpggio/profitability/internal/domain/capacity"
	"github.com/rpggio/profitability/internal/domain/ledger"
	"github.com/rpggio/profitability/internal/domain/profitability"
	"github.com/rpggio/profitability/internal/domain/valuation"
)

type tools struct {
	svc    Services
	now    func() time.Time
	logger *slog.Logger
}

// ReportToolName is the MCP tool that runs a report kind.
func ReportToolName(kind profitability.Kind) string {
	return "report_" + strings.ReplaceAll(string(kind), "-", "_")
}

func (t *tools) register(server *sdkmcp.Server) {
	// Reports
	addTool(server, t, "list_reports", "List the period reports and whether they need admin rights", t.listReports)
	for _, info := range profitability.Kinds() {
		kind := info.Kind
		desc := info.Description
		if info.AdminOnly {
			desc += " (admin only)"
		}
		addTool(server, t, ReportToolName(kind), desc, func(ctx context.Context, in ReportParams) (any, error) {
			return t.report(ctx, kind, in)
		})
	}

	// Engine lookups
	addTool(server, t, "get_hourly_cost", "Get a person's hourly cost in accounting units", t.hourlyCost)
	addTool(server, t, "get_person_productivity", "Get one person's productivity record for a period", t.personProductivity)
	addTool(server, t, "project_annual_revenue", "Project a service's time-weighted revenue for a year from its value changes", t.projectAnnualRevenue)
	addTool(server, t, "check_hiring_need", "Check whether a seniority tier has the slack to absorb new demand (admin only)", t.hiringNeed)

	// Ledger writes
	addTool(server, t, "record_time_entry", "Book hours worked for a client", t.recordTimeEntry)
	addTool(server, t, "update_time_entry", "Edit one of your time entries inside the edit window", t.updateTimeEntry)
	addTool(server, t, "delete_time_entry", "Delete one of your time entries inside the edit window", t.deleteTimeEntry)
	addTool(server, t, "change_service_value", "Change a service's monthly value and rewrite recurring revenue (admin only)", t.changeServiceValue)
	addTool(server, t, "record_overhead_expense", "Record a fixed monthly expense (admin only)", t.recordOverheadExpense)
	addTool(server, t, "record_revenue", "Record recognized revenue of a service for a month (admin only)", t.recordRevenue)
	addTool(server, t, "record_invoice", "Record an invoice for a client or project (admin only)", t.recordInvoice)

	// Quotes
	addTool(server, t, "estimate_quote", "Price staffed hours without saving (admin only)", t.estimateQuote)
	addTool(server, t, "create_quote", "Price staffed hours and save the quote (admin only)", t.createQuote)
	addTool(server, t, "get_quote", "Get a saved quote (admin only)", t.getQuote)
	addTool(server, t, "list_quotes", "List saved quotes, newest first (admin only)", t.listQuotes)
}

// addTool registers fn as a tool. Domain errors become IsError results
// carrying an APIError so clients can branch on the code.
func addTool[In any](server *sdkmcp.Server, t *tools, name, description string, fn func(context.Context, In) (any, error)) {
	sdkmcp.AddTool(server, &sdkmcp.Tool{Name: name, Description: description},
		func(ctx context.Context, _ *sdkmcp.CallToolRequest, in In) (*sdkmcp.CallToolResult, any, error) {
			out, err := fn(ctx, in)
			if err != nil {
				return t.errorResult(ctx, name, err), nil, nil
			}
			res, err := jsonResult(out)
			if err != nil {
				return nil, nil, fmt.Errorf("failed to encode %s result: %w", name, err)
			}
			return res, nil, nil
		})
}

func jsonResult(v any) (*sdkmcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return &sdkmcp.CallToolResult{
		Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: string(data)}},
	}, nil
}

func (t *tools) errorResult(ctx context.Context, name string, err error) *sdkmcp.CallToolResult {
	apiErr := MapError(err)
	if apiErr.Code == "INTERNAL" {
		t.logger.Error("tool failed", "tool", name, "viewer_id", getViewerID(ctx), "error", err)
	}
	data, _ := json.Marshal(apiErr)
	return &sdkmcp.CallToolResult{
		IsError: true,
		Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: string(data)}},
	}
}

func (t *tools) scope(ctx context.Context) (access.Scope, error) {
	return t.svc.Engine.Scope(ctx, getViewerID(ctx))
}

func (t *tools) adminScope(ctx context.Context) (access.Scope, error) {
	scope, err := t.scope(ctx)
	if err != nil {
		return access.Scope{}, err
	}
	if err := scope.RequireAll(); err != nil {
		return access.Scope{}, err
	}
	return scope, nil
}

func (t *tools) period(year, month int, from, to string) (ledger.Period, error) {
	return ledger.ParsePeriod(year, month, from, to, t.now())
}

// date parses YYYY-MM-DD; empty means today when fallback is set.
func (t *tools) date(field, s string, fallback bool) (time.Time, error) {
	if s == "" {
		if fallback {
			return t.now(), nil
		}
		return time.Time{}, fmt.Errorf("%w: %s is required", ledger.ErrInvalidInput, field)
	}
	d, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s: %v", ledger.ErrInvalidInput, field, err)
	}
	return d, nil
}

func month(m int) (time.Month, error) {
	if m < 1 || m > 12 {
		return 0, fmt.Errorf("%w: month must be 1-12", ledger.ErrInvalidInput)
	}
	return time.Month(m), nil
}

func notFound(code, message string) error {
	return &APIError{Code: code, Message: message}
}

func (t *tools) listReports(_ context.Context, _ ListReportsParams) (any, error) {
	kinds := profitability.Kinds()
	resp := make([]ReportInfo, 0, len(kinds))
	for _, k := range kinds {
		resp = append(resp, ReportInfo{
			Tool:        ReportToolName(k.Kind),
			Kind:        string(k.Kind),
			Description: k.Description,
			AdminOnly:   k.AdminOnly,
		})
	}
	return resp, nil
}

func (t *tools) report(ctx context.Context, kind profitability.Kind, in ReportParams) (any, error) {
	period, err := t.period(in.Year, in.Month, in.From, in.To)
	if err != nil {
		return nil, err
	}
	scope, err := t.scope(ctx)
	if err != nil {
		return nil, err
	}
	data, err := t.svc.Engine.Report(ctx, scope, kind, profitability.Query{Period: period, Limit: in.Limit})
	if err != nil {
		return nil, err
	}
	return ReportResponse{Kind: kind, Period: period.String(), Data: data}, nil
}

func (t *tools) hourlyCost(ctx context.Context, in PersonParams) (any, error) {
	scope, err := t.scope(ctx)
	if err != nil {
		return nil, err
	}
	cost, err := t.svc.Engine.HourlyCost(ctx, scope, in.PersonID)
	if err != nil {
		return nil, err
	}
	if cost == nil {
		return nil, notFound("PERSON_NOT_FOUND", "person not found")
	}
	return cost, nil
}

func (t *tools) personProductivity(ctx context.Context, in PersonPeriodParams) (any, error) {
	period, err := t.period(in.Year, in.Month, in.From, in.To)
	if err != nil {
		return nil, err
	}
	scope, err := t.scope(ctx)
	if err != nil {
		return nil, err
	}
	rec, err := t.svc.Engine.PersonProductivity(ctx, scope, in.PersonID, period)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, notFound("PERSON_NOT_FOUND", "person not found")
	}
	return rec, nil
}

func (t *tools) projectAnnualRevenue(ctx context.Context, in ProjectRevenueParams) (any, error) {
	year := in.Year
	if year == 0 {
		year = t.now().Year()
	}
	proj, err := t.svc.Engine.ProjectAnnualRevenue(ctx, in.ServiceID, year)
	if err != nil {
		return nil, err
	}
	if proj == nil {
		return nil, notFound("SERVICE_NOT_FOUND", "service not found")
	}
	return proj, nil
}

func (t *tools) hiringNeed(ctx context.Context, in HiringNeedParams) (any, error) {
	period, err := t.period(in.Year, in.Month, in.From, in.To)
	if err != nil {
		return nil, err
	}
	scope, err := t.scope(ctx)
	if err != nil {
		return nil, err
	}
	return t.svc.Engine.HiringNeed(ctx, scope, period, capacity.HiringRequest{
		Seniority:   in.Seniority,
		AreaID:      in.AreaID,
		DemandHours: in.DemandHours,
	})
}

func (t *tools) recordTimeEntry(ctx context.Context, in RecordTimeEntryParams) (any, error) {
	viewer := getViewerID(ctx)
	personID := in.PersonID
	if personID == "" {
		personID = viewer
	}
	if personID != viewer {
		scope, err := t.scope(ctx)
		if err != nil {
			return nil, err
		}
		if err := scope.Check(personID); err != nil {
			return nil, err
		}
	}
	date, err := t.date("date", in.Date, true)
	if err != nil {
		return nil, err
	}
	return t.svc.Ledger.RecordTimeEntry(ctx, ledger.RecordTimeEntryRequest{
		PersonID:  personID,
		ClientID:  in.ClientID,
		ProjectID: in.ProjectID,
		AreaID:    in.AreaID,
		ServiceID: in.ServiceID,
		TaskID:    in.TaskID,
		Date:      date,
		Hours:     in.Hours,
		Note:      in.Note,
	})
}

func (t *tools) updateTimeEntry(ctx context.Context, in UpdateTimeEntryParams) (any, error) {
	date, err := t.date("date", in.Date, false)
	if err != nil {
		return nil, err
	}
	return t.svc.Ledger.UpdateTimeEntry(ctx, getViewerID(ctx), ledger.UpdateTimeEntryRequest{
		ID:        in.ID,
		ClientID:  in.ClientID,
		ProjectID: in.ProjectID,
		ServiceID: in.ServiceID,
		Date:      date,
		Hours:     in.Hours,
		Note:      in.Note,
	})
}

func (t *tools) deleteTimeEntry(ctx context.Context, in DeleteTimeEntryParams) (any, error) {
	if err := t.svc.Ledger.DeleteTimeEntry(ctx, getViewerID(ctx), in.ID); err != nil {
		return nil, err
	}
	return DeleteResponse{ID: in.ID, Deleted: true}, nil
}

func (t *tools) changeServiceValue(ctx context.Context, in ChangeServiceValueParams) (any, error) {
	if _, err := t.adminScope(ctx); err != nil {
		return nil, err
	}
	effective, err := t.date("effective_date", in.EffectiveDate, true)
	if err != nil {
		return nil, err
	}
	return t.svc.Ledger.ChangeServiceValue(ctx, ledger.ChangeServiceValueRequest{
		ServiceID:     in.ServiceID,
		NewValue:      in.NewValue,
		EffectiveDate: effective,
		Reason:        in.Reason,
		ChangedBy:     getViewerID(ctx),
	})
}

func (t *tools) recordOverheadExpense(ctx context.Context, in RecordOverheadExpenseParams) (any, error) {
	if _, err := t.adminScope(ctx); err != nil {
		return nil, err
	}
	m, err := month(in.Month)
	if err != nil {
		return nil, err
	}
	return t.svc.Ledger.RecordOverheadExpense(ctx, ledger.RecordOverheadExpenseRequest{
		Year:     in.Year,
		Month:    m,
		Concept:  in.Concept,
		Category: in.Category,
		Amount:   in.Amount,
		Note:     in.Note,
	})
}

func (t *tools) recordRevenue(ctx context.Context, in RecordRevenueParams) (any, error) {
	if _, err := t.adminScope(ctx); err != nil {
		return nil, err
	}
	m, err := month(in.Month)
	if err != nil {
		return nil, err
	}
	return t.svc.Ledger.RecordRevenue(ctx, in.ServiceID, in.Year, m, in.Amount)
}

func (t *tools) recordInvoice(ctx context.Context, in RecordInvoiceParams) (any, error) {
	if _, err := t.adminScope(ctx); err != nil {
		return nil, err
	}
	date, err := t.date("date", in.Date, false)
	if err != nil {
		return nil, err
	}
	return t.svc.Ledger.RecordInvoice(ctx, ledger.RecordInvoiceRequest{
		ClientID:  in.ClientID,
		ProjectID: in.ProjectID,
		Date:      date,
		Amount:    in.Amount,
		Paid:      in.Paid,
	})
}

func (t *tools) quoteRequest(ctx context.Context, in QuoteParams) valuation.QuoteRequest {
	lines := make([]valuation.LineRequest, 0, len(in.Lines))
	for _, l := range in.Lines {
		lines = append(lines, valuation.LineRequest{
			PersonID: l.PersonID,
			Hours:    l.Hours,
			Billing:  ledger.Billing(l.Billing),
		})
	}
	return valuation.QuoteRequest{
		Name:        in.Name,
		ClientID:    in.ClientID,
		ServiceID:   in.ServiceID,
		Lines:       lines,
		OverheadPct: in.OverheadPct,
		MarginPct:   in.MarginPct,
		CreatedBy:   getViewerID(ctx),
	}
}

func (t *tools) estimateQuote(ctx context.Context, in QuoteParams) (any, error) {
	if _, err := t.adminScope(ctx); err != nil {
		return nil, err
	}
	return t.svc.Quotes.Estimate(ctx, t.quoteRequest(ctx, in))
}

func (t *tools) createQuote(ctx context.Context, in QuoteParams) (any, error) {
	if _, err := t.adminScope(ctx); err != nil {
		return nil, err
	}
	return t.svc.Quotes.CreateQuote(ctx, t.quoteRequest(ctx, in))
}

func (t *tools) getQuote(ctx context.Context, in GetQuoteParams) (any, error) {
	if _, err := t.adminScope(ctx); err != nil {
		return nil, err
	}
	return t.svc.Quotes.GetQuote(ctx, in.ID)
}

func (t *tools) listQuotes(ctx context.Context, in ListQuotesParams) (any, error) {
	if _, err := t.adminScope(ctx); err != nil {
		return nil, err
	}
	return t.svc.Quotes.ListQuotes(ctx, in.ClientID)
}

package functional_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/profitability/internal/config"
	"github.com/rpggio/profitability/internal/testserver"
	"github.com/stretchr/testify/require"
)

type apiError struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	RecoveryHint string `json:"recovery_hint"`
}

type productivity struct {
	PersonID        string  `json:"person_id"`
	HoursWorked     float64 `json:"hours_worked"`
	CostTotal       float64 `json:"cost_total"`
	RevenueProrated float64 `json:"revenue_prorated"`
	Margin          float64 `json:"margin"`
	ROI             float64 `json:"roi"`
}

type report[T any] struct {
	Kind   string `json:"kind"`
	Period string `json:"period"`
	Data   T      `json:"data"`
}

// newServer starts the fixture server with one accounting unit per currency
// unit so hourly costs are round numbers (ana 20, bob 10, cid 10).
func newServer(t *testing.T) *testserver.TestServer {
	t.Helper()
	return testserver.New(t, func(cfg *config.Config) {
		cfg.Engine.UnitValue = 1
	})
}

func callRaw(t *testing.T, session *sdkmcp.ClientSession, name string, args map[string]any) (string, bool) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if args == nil {
		args = map[string]any{}
	}
	result, err := session.CallTool(ctx, &sdkmcp.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err, "CallTool %s failed", name)
	require.NotEmpty(t, result.Content, "Tool %s returned no content", name)
	text, ok := result.Content[0].(*sdkmcp.TextContent)
	require.True(t, ok, "Tool %s returned no text content", name)
	return text.Text, result.IsError
}

func callTool(t *testing.T, session *sdkmcp.ClientSession, name string, args map[string]any, out any) {
	t.Helper()
	text, isErr := callRaw(t, session, name, args)
	require.False(t, isErr, "Tool %s returned error: %s", name, text)
	if out != nil {
		require.NoError(t, json.Unmarshal([]byte(text), out))
	}
}

func callToolError(t *testing.T, session *sdkmcp.ClientSession, name string, args map[string]any) apiError {
	t.Helper()
	text, isErr := callRaw(t, session, name, args)
	require.True(t, isErr, "Tool %s should have failed: %s", name, text)
	var e apiError
	require.NoError(t, json.Unmarshal([]byte(text), &e))
	return e
}

func march() map[string]any {
	return map[string]any{"year": 2024, "month": 3}
}

func TestFunctional_Authentication(t *testing.T) {
	ts := newServer(t)

	anonymous := ts.Connect(t, "")
	_, err := anonymous.CallTool(context.Background(), &sdkmcp.CallToolParams{Name: "list_reports", Arguments: map[string]any{}})
	require.Error(t, err)

	forged := ts.Connect(t, "forged-token")
	_, err = forged.CallTool(context.Background(), &sdkmcp.CallToolParams{Name: "list_reports", Arguments: map[string]any{}})
	require.Error(t, err)

	admin := ts.Connect(t, testserver.AdminToken)
	var reports []map[string]any
	callTool(t, admin, "list_reports", nil, &reports)
	require.NotEmpty(t, reports)
}

func TestFunctional_ProductivityAttribution(t *testing.T) {
	ts := newServer(t)
	admin := ts.Connect(t, testserver.AdminToken)

	var resp report[[]productivity]
	callTool(t, admin, "report_productivity", march(), &resp)
	require.Equal(t, "productivity", resp.Kind)
	require.Len(t, resp.Data, 3)

	byID := map[string]productivity{}
	for _, p := range resp.Data {
		byID[p.PersonID] = p
	}
	// Acme earns 1000; ana carries 160 of its 200 cost.
	require.Equal(t, 8.0, byID["ana"].HoursWorked)
	require.InDelta(t, 160.0, byID["ana"].CostTotal, 0.001)
	require.InDelta(t, 800.0, byID["ana"].RevenueProrated, 0.001)
	require.InDelta(t, 640.0, byID["ana"].Margin, 0.001)
	require.InDelta(t, 400.0, byID["ana"].ROI, 0.001)
	// Globex earns 400 and only cid booked it.
	require.InDelta(t, 400.0, byID["cid"].RevenueProrated, 0.001)

	var total float64
	for _, p := range resp.Data {
		total += p.RevenueProrated
	}
	require.InDelta(t, 1400.0, total, 0.001)
}

func TestFunctional_Visibility(t *testing.T) {
	ts := newServer(t)
	bob := ts.Connect(t, testserver.ManagerToken)

	var resp report[[]productivity]
	callTool(t, bob, "report_productivity", march(), &resp)
	require.Len(t, resp.Data, 1)
	require.Equal(t, "bob", resp.Data[0].PersonID)

	e := callToolError(t, bob, "report_executive", march())
	require.Equal(t, "RESTRICTED", e.Code)

	e = callToolError(t, bob, "get_hourly_cost", map[string]any{"person_id": "ana"})
	require.Equal(t, "NOT_VISIBLE", e.Code)

	var cost struct {
		HourlyCost float64 `json:"hourly_cost"`
	}
	callTool(t, bob, "get_hourly_cost", map[string]any{"person_id": "bob"}, &cost)
	require.Equal(t, 10.0, cost.HourlyCost)
}

func TestFunctional_TimeEntryWorkflow(t *testing.T) {
	ts := newServer(t)
	bob := ts.Connect(t, testserver.ManagerToken)
	cid := ts.Connect(t, testserver.MemberToken)

	var entry struct {
		ID    string  `json:"id"`
		Hours float64 `json:"hours"`
	}
	callTool(t, bob, "record_time_entry", map[string]any{"client_id": "acme", "project_id": "p1", "hours": 3}, &entry)
	require.NotEmpty(t, entry.ID)

	var rec productivity
	callTool(t, bob, "get_person_productivity", map[string]any{"person_id": "bob", "year": 2024, "month": 3}, &rec)
	require.Equal(t, 9.0, rec.HoursWorked)

	e := callToolError(t, cid, "update_time_entry", map[string]any{"id": entry.ID, "client_id": "acme", "date": "2024-03-08", "hours": 1})
	require.Equal(t, "NOT_OWNER", e.Code)

	e = callToolError(t, bob, "record_time_entry", map[string]any{"client_id": "acme", "hours": 2, "date": "2024-02-01"})
	require.Equal(t, "EDIT_WINDOW_CLOSED", e.Code)

	e = callToolError(t, bob, "record_time_entry", map[string]any{"client_id": "acme", "hours": 2, "date": "2024-03-09"})
	require.Equal(t, "FUTURE_DATE", e.Code)

	e = callToolError(t, bob, "record_time_entry", map[string]any{"client_id": "nobody", "hours": 2})
	require.Equal(t, "CLIENT_NOT_FOUND", e.Code)

	callTool(t, bob, "update_time_entry", map[string]any{"id": entry.ID, "client_id": "acme", "date": "2024-03-08", "hours": 1}, &entry)
	require.Equal(t, 1.0, entry.Hours)

	callTool(t, bob, "delete_time_entry", map[string]any{"id": entry.ID}, nil)
	callTool(t, bob, "get_person_productivity", map[string]any{"person_id": "bob", "year": 2024, "month": 3}, &rec)
	require.Equal(t, 6.0, rec.HoursWorked)
}

func TestFunctional_ValueChangeProjection(t *testing.T) {
	ts := newServer(t)
	admin := ts.Connect(t, testserver.AdminToken)

	var proj struct {
		Projected float64 `json:"projected_annual_revenue"`
		Changes   int     `json:"changes"`
	}
	callTool(t, admin, "project_annual_revenue", map[string]any{"service_id": "web", "year": 2024}, &proj)
	require.Equal(t, 12000.0, proj.Projected)

	callTool(t, admin, "change_service_value", map[string]any{
		"service_id":     "web",
		"new_value":      1500,
		"effective_date": "2024-10-01",
		"reason":         "renewal",
	}, nil)

	callTool(t, admin, "project_annual_revenue", map[string]any{"service_id": "web", "year": 2024}, &proj)
	require.Equal(t, 1, proj.Changes)
	require.Equal(t, 9*1000.0+3*1500.0, proj.Projected)

	e := callToolError(t, admin, "change_service_value", map[string]any{"service_id": "web", "new_value": 1500})
	require.Equal(t, "VALUE_UNCHANGED", e.Code)
}

func TestFunctional_OverheadAndExecutive(t *testing.T) {
	ts := newServer(t)
	admin := ts.Connect(t, testserver.AdminToken)

	e := callToolError(t, admin, "record_overhead_expense", map[string]any{"year": 2024, "month": 3, "concept": "rent", "amount": 100})
	require.Equal(t, "DUPLICATE_EXPENSE", e.Code)

	callTool(t, admin, "record_overhead_expense", map[string]any{"year": 2024, "month": 3, "concept": "internet", "amount": 100}, nil)

	var dist report[struct {
		Policy             string  `json:"policy"`
		FixedOverheadTotal float64 `json:"fixed_overhead_total"`
	}]
	callTool(t, admin, "report_overhead", march(), &dist)
	require.Equal(t, "house", dist.Data.Policy)
	require.InDelta(t, 1000.0, dist.Data.FixedOverheadTotal, 0.001)

	var exec report[map[string]any]
	callTool(t, admin, "report_executive", march(), &exec)
	require.NotEmpty(t, exec.Data)
}

func TestFunctional_Quotes(t *testing.T) {
	ts := newServer(t)
	admin := ts.Connect(t, testserver.AdminToken)

	args := map[string]any{
		"name":         "Portal v2",
		"client_id":    "acme",
		"lines":        []map[string]any{{"person_id": "bob", "hours": 10}},
		"overhead_pct": 10,
		"margin_pct":   0,
	}
	var estimate struct {
		ID    string  `json:"id"`
		Price float64 `json:"price"`
	}
	callTool(t, admin, "estimate_quote", args, &estimate)
	require.Empty(t, estimate.ID)
	require.InDelta(t, 110.0, estimate.Price, 0.001)

	callTool(t, admin, "create_quote", args, &estimate)
	require.NotEmpty(t, estimate.ID)

	var quotes []struct {
		ID string `json:"id"`
	}
	callTool(t, admin, "list_quotes", map[string]any{"client_id": "acme"}, &quotes)
	require.Len(t, quotes, 1)
	require.Equal(t, estimate.ID, quotes[0].ID)

	e := callToolError(t, admin, "get_quote", map[string]any{"id": "missing"})
	require.Equal(t, "QUOTE_NOT_FOUND", e.Code)

	bob := ts.Connect(t, testserver.ManagerToken)
	e = callToolError(t, bob, "estimate_quote", args)
	require.Equal(t, "RESTRICTED", e.Code)
}

func TestFunctional_DocumentationResources(t *testing.T) {
	ts := newServer(t)
	session := ts.Connect(t, testserver.AdminToken)

	ctx := context.Background()
	res, err := session.ListResources(ctx, nil)
	require.NoError(t, err)
	require.NotEmpty(t, res.Resources)

	read, err := session.ReadResource(ctx, &sdkmcp.ReadResourceParams{URI: "profit://docs/formulas"})
	require.NoError(t, err)
	require.Len(t, read.Contents, 1)
	require.Contains(t, read.Contents[0].Text, "hourly_cost")
}

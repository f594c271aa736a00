package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rpggio/profitability/internal/domain/access"
	"github.com/rpggio/profitability/internal/domain/capacity"
	"github.com/rpggio/profitability/internal/domain/ledger"
	"github.com/rpggio/profitability/internal/domain/profitability"
	"github.com/rpggio/profitability/internal/domain/reporting"
	"github.com/rpggio/profitability/internal/mcp"
	"github.com/stretchr/testify/require"
)

type engineStub struct {
	viewers []string
	queries []profitability.Query
}

func (e *engineStub) Scope(_ context.Context, viewerID string) (access.Scope, error) {
	e.viewers = append(e.viewers, viewerID)
	viewer := ledger.Person{ID: viewerID, Admin: viewerID == "ana", Active: true}
	return access.NewScope(&viewer, nil), nil
}
func (e *engineStub) Report(_ context.Context, scope access.Scope, kind profitability.Kind, q profitability.Query) (any, error) {
	e.queries = append(e.queries, q)
	if kind == profitability.KindExecutive {
		if err := scope.RequireAll(); err != nil {
			return nil, err
		}
	}
	return map[string]string{"viewer": scope.ViewerID()}, nil
}
func (e *engineStub) HourlyCost(context.Context, access.Scope, string) (*profitability.PersonCost, error) {
	return nil, nil
}
func (e *engineStub) PersonProductivity(_ context.Context, scope access.Scope, personID string, _ ledger.Period) (*reporting.Productivity, error) {
	if err := scope.Check(personID); err != nil {
		return nil, err
	}
	return &reporting.Productivity{PersonID: personID}, nil
}
func (e *engineStub) ProjectAnnualRevenue(_ context.Context, serviceID string, year int) (*profitability.Projection, error) {
	if serviceID != "web" {
		return nil, nil
	}
	return &profitability.Projection{ServiceID: serviceID, Year: year}, nil
}
func (e *engineStub) HiringNeed(context.Context, access.Scope, ledger.Period, capacity.HiringRequest) (*capacity.Signal, error) {
	return nil, nil
}

func newTestServer(t *testing.T, engine *engineStub) *httptest.Server {
	t.Helper()
	resolver := &testResolver{tokenToViewer: map[string]string{"ana-token": "ana", "bob-token": "bob"}}
	server := httptest.NewServer(NewServer(Config{
		Engine: engine,
		Auth:   AuthMiddleware(resolver),
		Now:    func() time.Time { return time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC) },
	}))
	t.Cleanup(server.Close)
	return server
}

func get(t *testing.T, url, token string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestHTTPServer_Health(t *testing.T) {
	server := newTestServer(t, &engineStub{})

	resp := get(t, server.URL+"/health", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHTTPServer_Report(t *testing.T) {
	engine := &engineStub{}
	server := newTestServer(t, engine)

	resp := get(t, server.URL+"/api/reports/top-clients?year=2024&limit=2", "ana-token")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var body mcp.ReportResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, profitability.KindTopClients, body.Kind)
	require.Equal(t, map[string]any{"viewer": "ana"}, body.Data)

	require.Len(t, engine.queries, 1)
	require.Equal(t, ledger.YearPeriod(2024), engine.queries[0].Period)
	require.Equal(t, 2, engine.queries[0].Limit)
}

func TestHTTPServer_ReportErrors(t *testing.T) {
	server := newTestServer(t, &engineStub{})

	tests := []struct {
		name   string
		path   string
		token  string
		status int
		code   string
	}{
		{name: "no token", path: "/api/reports/productivity", status: http.StatusUnauthorized},
		{name: "unknown kind", path: "/api/reports/gossip", token: "ana-token", status: http.StatusNotFound, code: "UNKNOWN_REPORT"},
		{name: "bad month", path: "/api/reports/productivity?year=2024&month=13", token: "ana-token", status: http.StatusBadRequest, code: "INVALID_INPUT"},
		{name: "bad year", path: "/api/reports/productivity?year=soon", token: "ana-token", status: http.StatusBadRequest, code: "INVALID_INPUT"},
		{name: "restricted", path: "/api/reports/executive", token: "bob-token", status: http.StatusForbidden, code: "RESTRICTED"},
		{name: "not visible", path: "/api/people/ana/productivity", token: "bob-token", status: http.StatusForbidden, code: "NOT_VISIBLE"},
		{name: "unknown service", path: "/api/services/nope/projection", token: "ana-token", status: http.StatusNotFound, code: "SERVICE_NOT_FOUND"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := get(t, server.URL+tt.path, tt.token)
			require.Equal(t, tt.status, resp.StatusCode)
			if tt.code == "" {
				return
			}
			var apiErr mcp.APIError
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&apiErr))
			require.Equal(t, tt.code, apiErr.Code)
		})
	}
}

func TestHTTPServer_Projection(t *testing.T) {
	server := newTestServer(t, &engineStub{})

	resp := get(t, server.URL+"/api/services/web/projection", "bob-token")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var proj profitability.Projection
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&proj))
	require.Equal(t, 2024, proj.Year)
}

func TestHTTPServer_DefaultViewer(t *testing.T) {
	engine := &engineStub{}
	server := httptest.NewServer(NewServer(Config{Engine: engine, DefaultViewer: "bob"}))
	t.Cleanup(server.Close)

	resp := get(t, server.URL+"/api/reports/productivity", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, []string{"bob"}, engine.viewers)
}

package functional_test

import (
	"context"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/profitability/internal/testserver"
	"github.com/stretchr/testify/require"
)

// stdioSession wraps an MCP client session for stdio transport testing
type stdioSession struct {
	session *sdkmcp.ClientSession
	cancel  context.CancelFunc
}

func newStdioSession(t *testing.T, viewer string) *stdioSession {
	t.Helper()
	return newStdioSessionWithEnv(t, viewer, nil)
}

func newStdioSessionWithEnv(t *testing.T, viewer string, extraEnv []string) *stdioSession {
	t.Helper()

	// Find the binary
	binaryPath := "./bin/profitability"
	if _, err := os.Stat(binaryPath); os.IsNotExist(err) {
		binaryPath = "../../bin/profitability"
		if _, err := os.Stat(binaryPath); os.IsNotExist(err) {
			t.Skip("Server binary not found. Run 'make build' first.")
		}
	}

	dbPath := filepath.Join(t.TempDir(), "profit.db")
	testserver.Seed(t, dbPath)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)

	cmd := exec.CommandContext(ctx, binaryPath)
	cmd.Env = append(os.Environ(),
		"PROFIT_TRANSPORT=stdio",
		"PROFIT_DB_PATH="+dbPath,
		"PROFIT_AUTH_ENABLED=false",
		"PROFIT_VIEWER_ID="+viewer,
		"PROFIT_UNIT_VALUE=1",
	)
	if len(extraEnv) > 0 {
		cmd.Env = append(cmd.Env, extraEnv...)
	}

	transport := &sdkmcp.CommandTransport{Command: cmd}

	client := sdkmcp.NewClient(&sdkmcp.Implementation{
		Name:    "test-client",
		Version: "1.0.0",
	}, nil)

	session, err := client.Connect(ctx, transport, nil)
	if err != nil {
		cancel()
		t.Fatalf("Failed to connect: %v", err)
	}

	t.Cleanup(func() {
		session.Close()
		cancel()
	})

	return &stdioSession{session: session, cancel: cancel}
}

func (s *stdioSession) callTool(t *testing.T, name string, args map[string]any) json.RawMessage {
	t.Helper()
	text, isErr := callRaw(t, s.session, name, args)
	require.False(t, isErr, "Tool %s returned error: %s", name, text)
	return json.RawMessage(text)
}

func TestStdioFunctional_MCPProtocolCompliance(t *testing.T) {
	s := newStdioSession(t, "ana")

	initResult := s.session.InitializeResult()
	require.NotNil(t, initResult)
	require.NotNil(t, initResult.ServerInfo)
	require.Equal(t, "profitability", initResult.ServerInfo.Name)
	require.Equal(t, "0.1.0", initResult.ServerInfo.Version)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	tools, err := s.session.ListTools(ctx, nil)
	require.NoError(t, err)

	toolMap := make(map[string]*sdkmcp.Tool)
	for _, tool := range tools.Tools {
		toolMap[tool.Name] = tool
	}
	for _, name := range []string{"list_reports", "report_productivity", "report_executive", "get_hourly_cost", "project_annual_revenue", "record_time_entry", "estimate_quote"} {
		require.Contains(t, toolMap, name)
		require.NotEmpty(t, toolMap[name].Description)
		require.NotNil(t, toolMap[name].InputSchema)
	}
}

func TestStdioFunctional_ViewerFromEnvironment(t *testing.T) {
	s := newStdioSession(t, "bob")

	var resp report[[]productivity]
	require.NoError(t, json.Unmarshal(s.callTool(t, "report_productivity", march()), &resp))
	require.Len(t, resp.Data, 1)
	require.Equal(t, "bob", resp.Data[0].PersonID)

	e := callToolError(t, s.session, "report_executive", march())
	require.Equal(t, "RESTRICTED", e.Code)
}

func TestStdioFunctional_Reports(t *testing.T) {
	s := newStdioSession(t, "ana")

	var resp report[[]productivity]
	require.NoError(t, json.Unmarshal(s.callTool(t, "report_productivity", march()), &resp))
	require.Len(t, resp.Data, 3)

	var proj struct {
		Projected float64 `json:"projected_annual_revenue"`
	}
	require.NoError(t, json.Unmarshal(s.callTool(t, "project_annual_revenue", map[string]any{"service_id": "web", "year": 2024}), &proj))
	require.Equal(t, 12000.0, proj.Projected)
}

func TestStdioFunctional_LogFile(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "profitability.log")
	s := newStdioSessionWithEnv(t, "ana", []string{
		"PROFIT_LOG_FILE=" + logPath,
		"PROFIT_LOG_LEVEL=debug",
	})

	_ = s.callTool(t, "list_reports", nil)

	require.Eventually(t, func() bool {
		data, err := os.ReadFile(logPath)
		if err != nil {
			return false
		}
		text := string(data)
		return strings.Contains(text, `msg="mcp request"`) &&
			strings.Contains(text, `msg="mcp response"`) &&
			strings.Contains(text, "method=tools/call")
	}, 5*time.Second, 100*time.Millisecond)
}

func TestStdioFunctional_DocumentationResources(t *testing.T) {
	s := newStdioSession(t, "ana")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	resources, err := s.session.ListResources(ctx, nil)
	require.NoError(t, err)

	uris := make(map[string]*sdkmcp.Resource, len(resources.Resources))
	for _, r := range resources.Resources {
		uris[r.URI] = r
	}
	for _, uri := range []string{"profit://docs/index", "profit://docs/formulas", "profit://docs/writes"} {
		r, ok := uris[uri]
		require.True(t, ok, "missing expected doc resource: %s", uri)
		require.NotEmpty(t, r.Name)
		require.Equal(t, "text/markdown", r.MIMEType)
		require.Greater(t, r.Size, int64(0))
	}

	read, err := s.session.ReadResource(ctx, &sdkmcp.ReadResourceParams{URI: "profit://docs/index"})
	require.NoError(t, err)
	require.NotEmpty(t, read.Contents)
	require.Equal(t, "profit://docs/index", read.Contents[0].URI)
}

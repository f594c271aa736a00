// Package testserver runs the full HTTP stack over an in-memory database
// seeded with a small fixture, for functional tests.
package testserver

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/profitability/internal/app"
	"github.com/rpggio/profitability/internal/config"
	"github.com/rpggio/profitability/internal/dataset"
	"github.com/rpggio/profitability/internal/mcp"
	"github.com/rpggio/profitability/internal/store"
	"github.com/rpggio/profitability/internal/transport"
	"github.com/stretchr/testify/require"
)

//go:embed testdata/fixture.yaml
var fixture []byte

// Now is the clock the server runs on. Fixture entries fall inside its
// edit window.
var Now = time.Date(2024, time.March, 8, 12, 0, 0, 0, time.UTC)

// Fixture tokens.
const (
	AdminToken   = "ana-token"
	ManagerToken = "bob-token"
	MemberToken  = "cid-token"
)

type TestServer struct {
	Server *httptest.Server
	DB     *store.DB
	App    *app.App
}

// New starts a server with auth enabled. mutate may adjust the
// configuration before the services are built.
func New(t *testing.T, mutate func(*config.Config)) *TestServer {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := store.New(dsn)
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())

	cfg := config.Default()
	cfg.Auth.Enabled = true
	if mutate != nil {
		mutate(&cfg)
	}
	require.NoError(t, cfg.Validate())

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	a := app.New(db, config.NewStore(cfg), app.Options{Now: func() time.Time { return Now }, Logger: logger})

	f, err := dataset.Parse(bytes.NewReader(fixture))
	require.NoError(t, err)
	_, err = dataset.NewLoader(a.Repos, logger).Load(context.Background(), f)
	require.NoError(t, err)

	mcpServer := mcp.NewServer(mcp.Config{
		Services:      a.Services(),
		Resolver:      a.Resolver(),
		AuthEnabled:   cfg.Auth.Enabled,
		TransportMode: "http",
		Now:           func() time.Time { return Now },
		Logger:        logger,
	})
	mcpHandler := sdkmcp.NewStreamableHTTPHandler(
		func(*http.Request) *sdkmcp.Server { return mcpServer },
		&sdkmcp.StreamableHTTPOptions{SessionTimeout: 5 * time.Minute},
	)

	var auth func(http.Handler) http.Handler
	if cfg.Auth.Enabled {
		auth = transport.AuthMiddleware(a.Resolver())
	}
	server := httptest.NewServer(transport.NewServer(transport.Config{
		MCP:    mcpHandler,
		Engine: a.Engine,
		Auth:   auth,
		Now:    func() time.Time { return Now },
		Logger: logger,
	}))

	t.Cleanup(func() {
		server.Close()
		_ = db.Close()
	})

	return &TestServer{Server: server, DB: db, App: a}
}

// Seed migrates the sqlite database at path and loads the fixture into it,
// for tests that start the server binary.
func Seed(t *testing.T, path string) {
	t.Helper()

	db, err := store.New(path)
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, db.RunMigrations())

	f, err := dataset.Parse(bytes.NewReader(fixture))
	require.NoError(t, err)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	_, err = dataset.NewLoader(store.NewRepos(db), logger).Load(context.Background(), f)
	require.NoError(t, err)
}

// Connect opens an MCP client session authenticated with token.
func (ts *TestServer) Connect(t *testing.T, token string) *sdkmcp.ClientSession {
	t.Helper()

	clientTransport := &sdkmcp.StreamableClientTransport{
		Endpoint:   ts.Server.URL + "/mcp",
		HTTPClient: &http.Client{Transport: bearer{token: token, base: http.DefaultTransport}},
	}
	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "test-client", Version: "1.0.0"}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	session, err := client.Connect(ctx, clientTransport, nil)
	if err != nil {
		cancel()
		t.Fatalf("Failed to connect: %v", err)
	}
	t.Cleanup(func() {
		session.Close()
		cancel()
	})
	return session
}

type bearer struct {
	token string
	base  http.RoundTripper
}

func (b bearer) RoundTrip(r *http.Request) (*http.Response, error) {
	r = r.Clone(r.Context())
	if b.token != "" {
		r.Header.Set("Authorization", "Bearer "+b.token)
	}
	return b.base.RoundTrip(r)
}

package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rpggio/profitability/internal/calendar"
	"github.com/rpggio/profitability/internal/domain/overhead"
	"github.com/rpggio/profitability/internal/domain/profitability"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PROFIT_CONFIG_PATH", "")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 8080, cfg.Server.Port)
	require.Equal(t, "sqlite", cfg.DB.Driver)
	require.Equal(t, "http", cfg.Transport.Mode)
	require.Equal(t, profitability.DefaultSettings(), withNilExcluded(cfg.Engine.Settings()))
	require.Equal(t, 7, cfg.Engine.EditWindowDays)
}

func withNilExcluded(s profitability.Settings) profitability.Settings {
	if len(s.ExcludedClientIDs) == 0 {
		s.ExcludedClientIDs = nil
	}
	return s
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `
server:
  port: 9090
db:
  path: /tmp/x.db
engine:
  unit_value: 1000
  overhead_policy: by_hours
  calendars:
    overhead: flat-22x8
    capacity: flat-22x8
    occupancy: weekday-7
  expected_hours:
    full_time: 160
    part_time: 80
  excluded_client_ids: [legacy]
  quote:
    overhead_pct: 25
    margin_pct: 15
`)
	t.Setenv("PROFIT_CONFIG_PATH", path)
	t.Setenv("PROFIT_SERVER_PORT", "7070")
	t.Setenv("PROFIT_REVENUE_BASIS", "invoiced")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 7070, cfg.Server.Port)
	require.Equal(t, "/tmp/x.db", cfg.DB.Path)

	s := cfg.Engine.Settings()
	require.Equal(t, 1000.0, s.Rates.UnitValue)
	require.Equal(t, 156.0, s.Rates.EffectiveMonthlyHours)
	require.Equal(t, overhead.PolicyByHours, s.OverheadPolicy)
	require.Equal(t, calendar.Flat22x8, s.Calendars.Overhead)
	require.Equal(t, 160.0, s.Baseline.FullTime)
	require.Equal(t, []string{"legacy"}, s.ExcludedClientIDs)
	require.Equal(t, profitability.RevenueInvoiced, s.RevenueBasis)
	require.Equal(t, 25.0, cfg.Engine.Quote.OverheadPct)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
		env  map[string]string
	}{
		{name: "unknown calendar", body: "engine:\n  calendars:\n    overhead: lunar\n"},
		{name: "unknown policy", body: "engine:\n  overhead_policy: random\n"},
		{name: "postgres without dsn", body: "db:\n  driver: postgres\n"},
		{name: "bad transport", body: "transport:\n  mode: carrier-pigeon\n"},
		{name: "bad port", body: "", env: map[string]string{"PROFIT_SERVER_PORT": "eighty"}},
		{name: "zero unit value", body: "engine:\n  unit_value: 0\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("PROFIT_CONFIG_PATH", writeConfig(t, t.TempDir(), tt.body))
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			require.Error(t, err)
		})
	}
}

func TestSettings_CopiesExcluded(t *testing.T) {
	e := Default().Engine
	e.ExcludedClientIDs = []string{"a"}
	s := e.Settings()
	e.ExcludedClientIDs[0] = "b"
	require.Equal(t, []string{"a"}, s.ExcludedClientIDs)
}

func TestStore_Snapshot(t *testing.T) {
	store := NewStore(Default())
	before := store.Settings()

	next := Default()
	next.Engine.TargetMarginPct = 35
	store.Replace(next)

	require.Equal(t, 20.0, before.TargetMarginPct)
	require.Equal(t, 35.0, store.Settings().TargetMarginPct)
	require.Equal(t, 35.0, store.Config().Engine.TargetMarginPct)
}

func TestWatch_Reloads(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "engine:\n  target_margin_pct: 20\n")
	cfg, err := LoadFile(path)
	require.NoError(t, err)
	store := NewStore(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- Watch(ctx, store, path, nil) }()

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("engine:\n  target_margin_pct: 42\n"), 0o644))

	require.Eventually(t, func() bool {
		return store.Settings().TargetMarginPct == 42
	}, 3*time.Second, 50*time.Millisecond)

	// A broken file keeps the last good configuration.
	require.NoError(t, os.WriteFile(path, []byte("engine:\n  overhead_policy: nope\n"), 0o644))
	time.Sleep(500 * time.Millisecond)
	require.Equal(t, 42.0, store.Settings().TargetMarginPct)

	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
}

package profitability_test

import (
	"context"
	"testing"

	"github.com/rpggio/profitability/internal/domain/access"
	"github.com/rpggio/profitability/internal/domain/profitability"
	"github.com/rpggio/profitability/internal/domain/reporting"
	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	k, err := profitability.ParseKind("top-clients")
	require.NoError(t, err)
	require.Equal(t, profitability.KindTopClients, k)

	_, err = profitability.ParseKind("weather")
	require.ErrorIs(t, err, profitability.ErrUnknownReport)
}

func TestReport_EveryKindRuns(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, info := range profitability.Kinds() {
		t.Run(string(info.Kind), func(t *testing.T) {
			out, err := f.svc.Report(ctx, access.All(), info.Kind, profitability.Query{Period: march})
			require.NoError(t, err)
			require.NotNil(t, out)
		})
	}
}

func TestReport_AdminOnlyKinds(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	scope, err := f.svc.Scope(ctx, "ana")
	require.NoError(t, err)

	for _, info := range profitability.Kinds() {
		_, err := f.svc.Report(ctx, scope, info.Kind, profitability.Query{Period: march})
		if info.AdminOnly {
			require.ErrorIs(t, err, access.ErrRestricted, info.Kind)
		} else {
			require.NoError(t, err, info.Kind)
		}
	}
}

func TestReport_TopClientsLimit(t *testing.T) {
	f := newFixture(t)
	out, err := f.svc.Report(context.Background(), access.All(), profitability.KindTopClients, profitability.Query{Period: march, Limit: 1})
	require.NoError(t, err)
	top, ok := out.([]reporting.ClientRollup)
	require.True(t, ok)
	require.Len(t, top, 1)
	require.Equal(t, "acme", top[0].EntityID)
}

func TestReport_Unknown(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Report(context.Background(), access.All(), "weather", profitability.Query{Period: march})
	require.ErrorIs(t, err, profitability.ErrUnknownReport)
}

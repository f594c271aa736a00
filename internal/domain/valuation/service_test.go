package valuation_test

import (
	"context"
	"testing"

	"github.com/rpggio/profitability/internal/domain/costing"
	"github.com/rpggio/profitability/internal/domain/ledger"
	"github.com/rpggio/profitability/internal/domain/valuation"
	"github.com/rpggio/profitability/internal/repository"
	"github.com/rpggio/profitability/internal/repository/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var rates = costing.Rates{UnitValue: 1000, EffectiveMonthlyHours: 100}

func newService(t *testing.T) (*valuation.Service, *mocks.QuoteRepository, *mocks.PersonRepository) {
	t.Helper()
	quotes := &mocks.QuoteRepository{}
	people := &mocks.PersonRepository{}
	people.On("Get", mock.Anything, "ana").Return(&ledger.Person{ID: "ana", Name: "Ana", Seniority: "senior", MonthlyCost: 200_000}, nil).Maybe()
	people.On("Get", mock.Anything, "bob").Return(&ledger.Person{ID: "bob", Name: "Bob", MonthlyCost: 100_000}, nil).Maybe()
	people.On("Get", mock.Anything, "ghost").Return(nil, repository.ErrNotFound).Maybe()
	return valuation.NewService(quotes, people, rates, nil), quotes, people
}

func TestEstimate_Defaults(t *testing.T) {
	svc, _, _ := newService(t)

	q, err := svc.Estimate(context.Background(), valuation.QuoteRequest{
		Lines: []valuation.LineRequest{{PersonID: "ana", Hours: 10}, {PersonID: "bob", Hours: 20, Billing: ledger.Spot}},
	})
	require.NoError(t, err)
	require.Equal(t, 30.0, q.Hours)
	require.Equal(t, 40.0, q.DirectCost)
	require.Equal(t, 30.0, q.OverheadPct)
	require.Equal(t, 12.0, q.Overhead)
	require.Equal(t, 52.0, q.TotalCost)
	require.Equal(t, 20.0, q.MarginPct)
	require.Equal(t, 10.4, q.Margin)
	require.Equal(t, 62.4, q.Price)

	require.Len(t, q.Lines, 2)
	require.Equal(t, 2.0, q.Lines[0].HourlyCost)
	require.Equal(t, ledger.Recurring, q.Lines[0].Billing)
	require.Equal(t, ledger.Spot, q.Lines[1].Billing)
	require.Empty(t, q.ID)
}

func TestEstimate_CustomPercentages(t *testing.T) {
	svc, _, _ := newService(t)
	zero, fifty := 0.0, 50.0

	q, err := svc.Estimate(context.Background(), valuation.QuoteRequest{
		Lines:       []valuation.LineRequest{{PersonID: "bob", Hours: 10}},
		OverheadPct: &zero,
		MarginPct:   &fifty,
	})
	require.NoError(t, err)
	require.Equal(t, 10.0, q.TotalCost)
	require.Equal(t, 15.0, q.Price)
}

func TestEstimate_Invalid(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()
	neg := -1.0

	_, err := svc.Estimate(ctx, valuation.QuoteRequest{})
	require.ErrorIs(t, err, valuation.ErrInvalidQuote)

	_, err = svc.Estimate(ctx, valuation.QuoteRequest{Lines: []valuation.LineRequest{{PersonID: "ana", Hours: 0}}})
	require.ErrorIs(t, err, valuation.ErrInvalidQuote)

	_, err = svc.Estimate(ctx, valuation.QuoteRequest{Lines: []valuation.LineRequest{{PersonID: "ana", Hours: 1}}, MarginPct: &neg})
	require.ErrorIs(t, err, valuation.ErrInvalidQuote)

	_, err = svc.Estimate(ctx, valuation.QuoteRequest{Lines: []valuation.LineRequest{{PersonID: "ghost", Hours: 1}}})
	require.ErrorIs(t, err, ledger.ErrPersonNotFound)
}

func TestCreateQuote(t *testing.T) {
	svc, quotes, _ := newService(t)
	ctx := context.Background()
	quotes.On("Create", ctx, mock.MatchedBy(func(q *valuation.Quote) bool {
		return q.ID != "" && q.Name == "Audit 2025" && q.Price == 62.4 && !q.CreatedAt.IsZero()
	})).Return(nil)

	q, err := svc.CreateQuote(ctx, valuation.QuoteRequest{
		Name:      "  Audit 2025 ",
		ClientID:  "acme",
		CreatedBy: "ana",
		Lines:     []valuation.LineRequest{{PersonID: "ana", Hours: 10}, {PersonID: "bob", Hours: 20}},
	})
	require.NoError(t, err)
	require.NotEmpty(t, q.ID)
	quotes.AssertExpectations(t)

	_, err = svc.CreateQuote(ctx, valuation.QuoteRequest{Lines: []valuation.LineRequest{{PersonID: "ana", Hours: 1}}})
	require.ErrorIs(t, err, valuation.ErrInvalidQuote)
}

func TestCreateQuote_UnknownClient(t *testing.T) {
	svc, quotes, _ := newService(t)
	quotes.On("Create", mock.Anything, mock.Anything).Return(repository.ErrForeignKeyViolation)

	_, err := svc.CreateQuote(context.Background(), valuation.QuoteRequest{
		Name:     "x",
		ClientID: "nope",
		Lines:    []valuation.LineRequest{{PersonID: "bob", Hours: 1}},
	})
	require.ErrorIs(t, err, valuation.ErrInvalidQuote)
}

func TestGetAndListQuotes(t *testing.T) {
	svc, quotes, _ := newService(t)
	ctx := context.Background()
	quotes.On("Get", ctx, "q1").Return(&valuation.Quote{ID: "q1"}, nil)
	quotes.On("Get", ctx, "missing").Return(nil, repository.ErrNotFound)
	quotes.On("List", ctx, "acme").Return([]valuation.Quote{{ID: "q1"}, {ID: "q2"}}, nil)

	q, err := svc.GetQuote(ctx, "q1")
	require.NoError(t, err)
	require.Equal(t, "q1", q.ID)

	_, err = svc.GetQuote(ctx, "missing")
	require.ErrorIs(t, err, valuation.ErrQuoteNotFound)

	list, err := svc.ListQuotes(ctx, "acme")
	require.NoError(t, err)
	require.Len(t, list, 2)
}

func TestEstimate_ConfiguredDefaults(t *testing.T) {
	base, _, _ := newService(t)
	svc := base.WithDefaults(valuation.Defaults{OverheadPct: 10, MarginPct: 0})

	q, err := svc.Estimate(context.Background(), valuation.QuoteRequest{
		Lines: []valuation.LineRequest{{PersonID: "bob", Hours: 10}},
	})
	require.NoError(t, err)
	require.Equal(t, 10.0, q.DirectCost)
	require.Equal(t, 1.0, q.Overhead)
	require.Equal(t, 11.0, q.Price)

	q, err = base.Estimate(context.Background(), valuation.QuoteRequest{
		Lines: []valuation.LineRequest{{PersonID: "bob", Hours: 10}},
	})
	require.NoError(t, err)
	require.Equal(t, valuation.DefaultOverheadPct, q.OverheadPct)
}

package mocks

import (
	"context"
	"time"

	"github.com/rpggio/profitability/internal/domain/ledger"
	"github.com/rpggio/profitability/internal/domain/valuation"
	"github.com/stretchr/testify/mock"
)

// PersonRepository is a mock for ledger.PersonRepository.
type PersonRepository struct {
	mock.Mock
}

func (m *PersonRepository) Get(ctx context.Context, id string) (*ledger.Person, error) {
	args := m.Called(ctx, id)
	if p, ok := args.Get(0).(*ledger.Person); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *PersonRepository) List(ctx context.Context) ([]ledger.Person, error) {
	args := m.Called(ctx)
	if list, ok := args.Get(0).([]ledger.Person); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *PersonRepository) ListActive(ctx context.Context, areaID string) ([]ledger.Person, error) {
	args := m.Called(ctx, areaID)
	if list, ok := args.Get(0).([]ledger.Person); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// AreaRepository is a mock for ledger.AreaRepository.
type AreaRepository struct {
	mock.Mock
}

func (m *AreaRepository) List(ctx context.Context) ([]ledger.Area, error) {
	args := m.Called(ctx)
	if list, ok := args.Get(0).([]ledger.Area); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// ClientRepository is a mock for ledger.ClientRepository.
type ClientRepository struct {
	mock.Mock
}

func (m *ClientRepository) Get(ctx context.Context, id string) (*ledger.Client, error) {
	args := m.Called(ctx, id)
	if c, ok := args.Get(0).(*ledger.Client); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ClientRepository) List(ctx context.Context) ([]ledger.Client, error) {
	args := m.Called(ctx)
	if list, ok := args.Get(0).([]ledger.Client); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// TimeEntryRepository is a mock for ledger.TimeEntryRepository.
type TimeEntryRepository struct {
	mock.Mock
}

func (m *TimeEntryRepository) Create(ctx context.Context, entry *ledger.TimeEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *TimeEntryRepository) Get(ctx context.Context, id string) (*ledger.TimeEntry, error) {
	args := m.Called(ctx, id)
	if e, ok := args.Get(0).(*ledger.TimeEntry); ok {
		return e, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *TimeEntryRepository) Update(ctx context.Context, entry *ledger.TimeEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *TimeEntryRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *TimeEntryRepository) List(ctx context.Context, filter ledger.EntryFilter) ([]ledger.TimeEntry, error) {
	args := m.Called(ctx, filter)
	if list, ok := args.Get(0).([]ledger.TimeEntry); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// ServiceRepository is a mock for ledger.ServiceRepository.
type ServiceRepository struct {
	mock.Mock
}

func (m *ServiceRepository) Get(ctx context.Context, id string) (*ledger.ContractedService, error) {
	args := m.Called(ctx, id)
	if s, ok := args.Get(0).(*ledger.ContractedService); ok {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ServiceRepository) List(ctx context.Context, clientID string) ([]ledger.ContractedService, error) {
	args := m.Called(ctx, clientID)
	if list, ok := args.Get(0).([]ledger.ContractedService); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ServiceRepository) ValueChanges(ctx context.Context, serviceID string, year int) ([]ledger.ValueChange, error) {
	args := m.Called(ctx, serviceID, year)
	if list, ok := args.Get(0).([]ledger.ValueChange); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ServiceRepository) ApplyValueChange(ctx context.Context, change *ledger.ValueChange, rewriteRevenue bool) error {
	args := m.Called(ctx, change, rewriteRevenue)
	return args.Error(0)
}

// RevenueRepository is a mock for ledger.RevenueRepository.
type RevenueRepository struct {
	mock.Mock
}

func (m *RevenueRepository) List(ctx context.Context, filter ledger.RevenueFilter) ([]ledger.RecognizedRevenue, error) {
	args := m.Called(ctx, filter)
	if list, ok := args.Get(0).([]ledger.RecognizedRevenue); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *RevenueRepository) Upsert(ctx context.Context, rev *ledger.RecognizedRevenue) error {
	args := m.Called(ctx, rev)
	return args.Error(0)
}

// OverheadRepository is a mock for ledger.OverheadRepository.
type OverheadRepository struct {
	mock.Mock
}

func (m *OverheadRepository) List(ctx context.Context, year int, month time.Month) ([]ledger.OverheadExpense, error) {
	args := m.Called(ctx, year, month)
	if list, ok := args.Get(0).([]ledger.OverheadExpense); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *OverheadRepository) Create(ctx context.Context, expense *ledger.OverheadExpense) error {
	args := m.Called(ctx, expense)
	return args.Error(0)
}

// InvoiceRepository is a mock for ledger.InvoiceRepository.
type InvoiceRepository struct {
	mock.Mock
}

func (m *InvoiceRepository) List(ctx context.Context, filter ledger.InvoiceFilter) ([]ledger.Invoice, error) {
	args := m.Called(ctx, filter)
	if list, ok := args.Get(0).([]ledger.Invoice); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *InvoiceRepository) Create(ctx context.Context, inv *ledger.Invoice) error {
	args := m.Called(ctx, inv)
	return args.Error(0)
}

// ProjectRepository is a mock for ledger.ProjectRepository.
type ProjectRepository struct {
	mock.Mock
}

func (m *ProjectRepository) Get(ctx context.Context, id string) (*ledger.Project, error) {
	args := m.Called(ctx, id)
	if p, ok := args.Get(0).(*ledger.Project); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ProjectRepository) List(ctx context.Context, clientID string) ([]ledger.Project, error) {
	args := m.Called(ctx, clientID)
	if list, ok := args.Get(0).([]ledger.Project); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// AssignmentRepository is a mock for ledger.AssignmentRepository.
type AssignmentRepository struct {
	mock.Mock
}

func (m *AssignmentRepository) List(ctx context.Context, projectID string) ([]ledger.Assignment, error) {
	args := m.Called(ctx, projectID)
	if list, ok := args.Get(0).([]ledger.Assignment); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// QuoteRepository is a mock for valuation.Repository.
type QuoteRepository struct {
	mock.Mock
}

func (m *QuoteRepository) Create(ctx context.Context, q *valuation.Quote) error {
	args := m.Called(ctx, q)
	return args.Error(0)
}

func (m *QuoteRepository) Get(ctx context.Context, id string) (*valuation.Quote, error) {
	args := m.Called(ctx, id)
	if q, ok := args.Get(0).(*valuation.Quote); ok {
		return q, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *QuoteRepository) List(ctx context.Context, clientID string) ([]valuation.Quote, error) {
	args := m.Called(ctx, clientID)
	if list, ok := args.Get(0).([]valuation.Quote); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

package ledger

import (
	"context"
	"time"
)

// PersonRepository reads people.
type PersonRepository interface {
	Get(ctx context.Context, id string) (*Person, error)
	List(ctx context.Context) ([]Person, error)
	ListActive(ctx context.Context, areaID string) ([]Person, error)
}

// ClientRepository reads clients.
type ClientRepository interface {
	Get(ctx context.Context, id string) (*Client, error)
	List(ctx context.Context) ([]Client, error)
}

// AreaRepository reads organizational areas.
type AreaRepository interface {
	List(ctx context.Context) ([]Area, error)
}

// TimeEntryRepository persists booked hours.
type TimeEntryRepository interface {
	Create(ctx context.Context, entry *TimeEntry) error
	Get(ctx context.Context, id string) (*TimeEntry, error)
	Update(ctx context.Context, entry *TimeEntry) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter EntryFilter) ([]TimeEntry, error)
}

// ServiceRepository persists contracted services and their value history.
type ServiceRepository interface {
	Get(ctx context.Context, id string) (*ContractedService, error)
	List(ctx context.Context, clientID string) ([]ContractedService, error)
	ValueChanges(ctx context.Context, serviceID string, year int) ([]ValueChange, error)
	// ApplyValueChange stores the change, updates the nominal value and, when
	// rewriteRevenue is set, recognized revenue from the effective month on.
	ApplyValueChange(ctx context.Context, change *ValueChange, rewriteRevenue bool) error
}

// RevenueRepository persists recognized monthly revenue.
type RevenueRepository interface {
	List(ctx context.Context, filter RevenueFilter) ([]RecognizedRevenue, error)
	Upsert(ctx context.Context, rev *RecognizedRevenue) error
}

// OverheadRepository persists fixed operating expenses. Month 0 lists the whole year.
type OverheadRepository interface {
	List(ctx context.Context, year int, month time.Month) ([]OverheadExpense, error)
	Create(ctx context.Context, expense *OverheadExpense) error
}

// ProjectRepository reads projects.
type ProjectRepository interface {
	Get(ctx context.Context, id string) (*Project, error)
	List(ctx context.Context, clientID string) ([]Project, error)
}

// AssignmentRepository reads project assignments.
type AssignmentRepository interface {
	List(ctx context.Context, projectID string) ([]Assignment, error)
}

// InvoiceRepository persists invoices.
type InvoiceRepository interface {
	List(ctx context.Context, filter InvoiceFilter) ([]Invoice, error)
	Create(ctx context.Context, inv *Invoice) error
}

// Stores bundles the repositories the write service needs.
type Stores struct {
	People   PersonRepository
	Clients  ClientRepository
	Entries  TimeEntryRepository
	Services ServiceRepository
	Revenue  RevenueRepository
	Overhead OverheadRepository
	Invoices InvoiceRepository
}

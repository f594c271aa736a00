package store

import (
	"github.com/rpggio/profitability/internal/domain/ledger"
	"github.com/rpggio/profitability/internal/domain/profitability"
)

// Repos bundles every repository over one connection.
type Repos struct {
	People      *PersonRepository
	Areas       *AreaRepository
	Clients     *ClientRepository
	Entries     *TimeEntryRepository
	Services    *ServiceRepository
	Revenue     *RevenueRepository
	Overhead    *OverheadRepository
	Projects    *ProjectRepository
	Assignments *AssignmentRepository
	Invoices    *InvoiceRepository
	Quotes      *QuoteRepository
	APIKeys     *APIKeyRepository
}

// NewRepos creates every repository on db.
func NewRepos(db *DB) *Repos {
	return &Repos{
		People:      NewPersonRepository(db),
		Areas:       NewAreaRepository(db),
		Clients:     NewClientRepository(db),
		Entries:     NewTimeEntryRepository(db),
		Services:    NewServiceRepository(db),
		Revenue:     NewRevenueRepository(db),
		Overhead:    NewOverheadRepository(db),
		Projects:    NewProjectRepository(db),
		Assignments: NewAssignmentRepository(db),
		Invoices:    NewInvoiceRepository(db),
		Quotes:      NewQuoteRepository(db),
		APIKeys:     NewAPIKeyRepository(db),
	}
}

// Readers returns the repositories the profitability engine reads.
func (r *Repos) Readers() profitability.Readers {
	return profitability.Readers{
		People:      r.People,
		Areas:       r.Areas,
		Clients:     r.Clients,
		Entries:     r.Entries,
		Services:    r.Services,
		Revenue:     r.Revenue,
		Overhead:    r.Overhead,
		Projects:    r.Projects,
		Assignments: r.Assignments,
		Invoices:    r.Invoices,
	}
}

// Stores returns the repositories the ledger write service uses.
func (r *Repos) Stores() ledger.Stores {
	return ledger.Stores{
		People:   r.People,
		Clients:  r.Clients,
		Entries:  r.Entries,
		Services: r.Services,
		Revenue:  r.Revenue,
		Overhead: r.Overhead,
		Invoices: r.Invoices,
	}
}

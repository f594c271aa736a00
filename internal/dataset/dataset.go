// Package dataset loads ledger fixtures from YAML into a store. It is used
// for bulk imports, demos and functional tests.
package dataset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rpggio/profitability/internal/domain/ledger"
	"github.com/rpggio/profitability/internal/repository"
	"github.com/rpggio/profitability/internal/store"
	"gopkg.in/yaml.v3"
)

// APIKey grants a bearer token the identity of a person.
type APIKey struct {
	Token       string `yaml:"token"`
	PersonID    string `yaml:"person_id"`
	Description string `yaml:"description"`
}

// File is the on-disk dataset layout. Sections load in dependency order.
type File struct {
	Areas       []ledger.Area              `yaml:"areas"`
	People      []ledger.Person            `yaml:"people"`
	Clients     []ledger.Client            `yaml:"clients"`
	Services    []ledger.ContractedService `yaml:"services"`
	Projects    []ledger.Project           `yaml:"projects"`
	Assignments []ledger.Assignment        `yaml:"assignments"`
	Entries     []ledger.TimeEntry         `yaml:"time_entries"`
	Revenue     []ledger.RecognizedRevenue `yaml:"revenue"`
	Overhead    []ledger.OverheadExpense   `yaml:"overhead"`
	Invoices    []ledger.Invoice           `yaml:"invoices"`
	APIKeys     []APIKey                   `yaml:"api_keys"`
}

// Parse decodes a dataset. Unknown keys are rejected.
func Parse(r io.Reader) (*File, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var f File
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return &f, nil
		}
		return nil, fmt.Errorf("failed to parse dataset: %w", err)
	}
	return &f, nil
}

// ReadFile parses the dataset at path.
func ReadFile(path string) (*File, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer fh.Close()
	return Parse(fh)
}

// Stats counts what a load wrote and skipped.
type Stats struct {
	Written int `json:"written"`
	Skipped int `json:"skipped"`
}

// Loader writes datasets through the store repositories.
type Loader struct {
	repos  *store.Repos
	logger *slog.Logger
	now    func() time.Time
}

// NewLoader creates a dataset loader.
func NewLoader(repos *store.Repos, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{repos: repos, logger: logger, now: time.Now}
}

// Load writes f. Reference data is upserted. Append-only rows that collide
// with an existing one (same id, same expense concept and month, same token)
// are skipped, so reloading a file with explicit ids is harmless.
func (l *Loader) Load(ctx context.Context, f *File) (Stats, error) {
	var st Stats

	for i := range f.Areas {
		if err := l.repos.Areas.Upsert(ctx, &f.Areas[i]); err != nil {
			return st, fmt.Errorf("area %s: %w", f.Areas[i].ID, err)
		}
		st.Written++
	}
	for i := range f.People {
		if err := l.repos.People.Upsert(ctx, &f.People[i]); err != nil {
			return st, fmt.Errorf("person %s: %w", f.People[i].ID, err)
		}
		st.Written++
	}
	for i := range f.Clients {
		if err := l.repos.Clients.Upsert(ctx, &f.Clients[i]); err != nil {
			return st, fmt.Errorf("client %s: %w", f.Clients[i].ID, err)
		}
		st.Written++
	}
	for i := range f.Services {
		if err := l.repos.Services.Upsert(ctx, &f.Services[i]); err != nil {
			return st, fmt.Errorf("service %s: %w", f.Services[i].ID, err)
		}
		st.Written++
	}
	for i := range f.Projects {
		if err := l.repos.Projects.Upsert(ctx, &f.Projects[i]); err != nil {
			return st, fmt.Errorf("project %s: %w", f.Projects[i].ID, err)
		}
		st.Written++
	}
	for i := range f.Assignments {
		a := &f.Assignments[i]
		if a.ID == "" {
			a.ID = a.ProjectID + ":" + a.PersonID
		}
		if err := l.repos.Assignments.Upsert(ctx, a); err != nil {
			return st, fmt.Errorf("assignment %s: %w", a.ID, err)
		}
		st.Written++
	}
	for i := range f.Revenue {
		if err := l.repos.Revenue.Upsert(ctx, &f.Revenue[i]); err != nil {
			return st, fmt.Errorf("revenue %s %d-%02d: %w", f.Revenue[i].ServiceID, f.Revenue[i].Year, f.Revenue[i].Month, err)
		}
		st.Written++
	}

	for i := range f.Entries {
		e := &f.Entries[i]
		if e.ID == "" {
			e.ID = uuid.NewString()
		}
		if e.CreatedAt.IsZero() {
			e.CreatedAt = l.now()
		}
		if err := l.append(&st, l.repos.Entries.Create(ctx, e)); err != nil {
			return st, fmt.Errorf("time entry %s: %w", e.ID, err)
		}
	}
	for i := range f.Overhead {
		e := &f.Overhead[i]
		if e.ID == "" {
			e.ID = uuid.NewString()
		}
		if err := l.append(&st, l.repos.Overhead.Create(ctx, e)); err != nil {
			return st, fmt.Errorf("overhead %s: %w", e.Concept, err)
		}
	}
	for i := range f.Invoices {
		inv := &f.Invoices[i]
		if inv.ID == "" {
			inv.ID = uuid.NewString()
		}
		if err := l.append(&st, l.repos.Invoices.Create(ctx, inv)); err != nil {
			return st, fmt.Errorf("invoice %s: %w", inv.ID, err)
		}
	}
	for _, k := range f.APIKeys {
		if err := l.append(&st, l.repos.APIKeys.Create(ctx, k.Token, k.PersonID, k.Description)); err != nil {
			return st, fmt.Errorf("api key for %s: %w", k.PersonID, err)
		}
	}

	l.logger.InfoContext(ctx, "dataset loaded", "written", st.Written, "skipped", st.Skipped)
	return st, nil
}

func (l *Loader) append(st *Stats, err error) error {
	switch {
	case err == nil:
		st.Written++
		return nil
	case errors.Is(err, repository.ErrConflict):
		st.Skipped++
		return nil
	default:
		return err
	}
}

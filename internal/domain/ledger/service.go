package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rpggio/profitability/internal/repository"
)

// Service performs the ledger writes. Each write is a single repository
// transaction; failures are returned to the caller and never retried.
type Service struct {
	stores     Stores
	editWindow int
	now        func() time.Time
	logger     *slog.Logger
}

// NewService creates a new ledger service.
func NewService(stores Stores, opts Options, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	window := opts.EditWindowDays
	if window <= 0 {
		window = DefaultEditWindowDays
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Service{stores: stores, editWindow: window, now: now, logger: logger}
}

// RecordTimeEntryRequest defines time entry inputs.
type RecordTimeEntryRequest struct {
	PersonID  string
	ClientID  string
	ProjectID string
	AreaID    string
	ServiceID string
	TaskID    string
	Date      time.Time
	Hours     float64
	Note      string
}

// RecordTimeEntry books hours for a person.
func (s *Service) RecordTimeEntry(ctx context.Context, req RecordTimeEntryRequest) (*TimeEntry, error) {
	if strings.TrimSpace(req.PersonID) == "" || strings.TrimSpace(req.ClientID) == "" {
		return nil, fmt.Errorf("%w: person and client are required", ErrInvalidInput)
	}
	if err := validateHours(req.Hours); err != nil {
		return nil, err
	}
	if err := s.checkWindow(req.Date); err != nil {
		return nil, err
	}

	person, err := s.getPerson(ctx, req.PersonID)
	if err != nil {
		return nil, err
	}
	if !person.Active {
		return nil, ErrPersonInactive
	}
	if err := s.checkClient(ctx, req.ClientID); err != nil {
		return nil, err
	}

	areaID := req.AreaID
	if areaID == "" {
		areaID = person.AreaID
	}
	entry := &TimeEntry{
		ID:        uuid.NewString(),
		PersonID:  req.PersonID,
		ClientID:  req.ClientID,
		ProjectID: req.ProjectID,
		AreaID:    areaID,
		ServiceID: req.ServiceID,
		TaskID:    req.TaskID,
		Date:      day(req.Date),
		Hours:     req.Hours,
		Note:      strings.TrimSpace(req.Note),
		CreatedAt: s.now(),
	}
	if err := s.stores.Entries.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("recording time entry: %w", mapWriteError(err))
	}

	s.logger.Info("time entry recorded", "entry_id", entry.ID, "person_id", entry.PersonID, "client_id", entry.ClientID, "hours", entry.Hours)
	return entry, nil
}

// UpdateTimeEntryRequest defines editable time entry fields.
type UpdateTimeEntryRequest struct {
	ID        string
	ClientID  string
	ProjectID string
	ServiceID string
	Date      time.Time
	Hours     float64
	Note      string
}

// UpdateTimeEntry edits an entry owned by actorID.
func (s *Service) UpdateTimeEntry(ctx context.Context, actorID string, req UpdateTimeEntryRequest) (*TimeEntry, error) {
	entry, err := s.ownedEntry(ctx, actorID, req.ID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.ClientID) == "" {
		return nil, fmt.Errorf("%w: client is required", ErrInvalidInput)
	}
	if err := validateHours(req.Hours); err != nil {
		return nil, err
	}
	if err := s.checkWindow(req.Date); err != nil {
		return nil, err
	}
	if req.ClientID != entry.ClientID {
		if err := s.checkClient(ctx, req.ClientID); err != nil {
			return nil, err
		}
	}

	entry.ClientID = req.ClientID
	entry.ProjectID = req.ProjectID
	entry.ServiceID = req.ServiceID
	entry.Date = day(req.Date)
	entry.Hours = req.Hours
	entry.Note = strings.TrimSpace(req.Note)

	if err := s.stores.Entries.Update(ctx, entry); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrEntryNotFound
		}
		return nil, fmt.Errorf("updating time entry: %w", mapWriteError(err))
	}

	s.logger.Info("time entry updated", "entry_id", entry.ID, "person_id", actorID)
	return entry, nil
}

// DeleteTimeEntry removes an entry owned by actorID.
func (s *Service) DeleteTimeEntry(ctx context.Context, actorID, id string) error {
	if _, err := s.ownedEntry(ctx, actorID, id); err != nil {
		return err
	}
	if err := s.stores.Entries.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrEntryNotFound
		}
		return fmt.Errorf("deleting time entry: %w", err)
	}
	s.logger.Info("time entry deleted", "entry_id", id, "person_id", actorID)
	return nil
}

// ChangeServiceValueRequest defines a nominal value edit.
type ChangeServiceValueRequest struct {
	ServiceID     string
	NewValue      float64
	EffectiveDate time.Time
	Reason        string
	ChangedBy     string
}

// ChangeServiceValue records a ValueChange and applies the new nominal value.
// Recurring services also get their recognized revenue rewritten from the
// effective month onwards.
func (s *Service) ChangeServiceValue(ctx context.Context, req ChangeServiceValueRequest) (*ValueChange, error) {
	if req.NewValue < 0 {
		return nil, fmt.Errorf("%w: value must not be negative", ErrInvalidInput)
	}
	svc, err := s.stores.Services.Get(ctx, req.ServiceID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrServiceNotFound
		}
		return nil, fmt.Errorf("getting service: %w", err)
	}
	if svc.MonthlyValue == req.NewValue {
		return nil, ErrValueUnchanged
	}

	effective := req.EffectiveDate
	if effective.IsZero() {
		effective = s.now()
	}
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		reason = fmt.Sprintf("changed from %g to %g", svc.MonthlyValue, req.NewValue)
	}

	change := &ValueChange{
		ID:            uuid.NewString(),
		ServiceID:     svc.ID,
		Previous:      svc.MonthlyValue,
		New:           req.NewValue,
		EffectiveDate: day(effective),
		Reason:        reason,
		ChangedBy:     req.ChangedBy,
		CreatedAt:     s.now(),
	}
	if err := s.stores.Services.ApplyValueChange(ctx, change, svc.Billing == Recurring); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrServiceNotFound
		}
		return nil, fmt.Errorf("applying value change: %w", err)
	}

	s.logger.Info("service value changed", "service_id", svc.ID, "previous", change.Previous, "new", change.New, "effective", change.EffectiveDate.Format(time.DateOnly))
	return change, nil
}

// RecordOverheadExpenseRequest defines a fixed expense.
type RecordOverheadExpenseRequest struct {
	Year     int
	Month    time.Month
	Concept  string
	Category string
	Amount   float64
	Note     string
}

// RecordOverheadExpense books a fixed operating expense for a month.
func (s *Service) RecordOverheadExpense(ctx context.Context, req RecordOverheadExpenseRequest) (*OverheadExpense, error) {
	if req.Year <= 0 || req.Month < time.January || req.Month > time.December {
		return nil, fmt.Errorf("%w: invalid year or month", ErrInvalidInput)
	}
	if strings.TrimSpace(req.Concept) == "" || req.Amount < 0 {
		return nil, fmt.Errorf("%w: concept and non-negative amount are required", ErrInvalidInput)
	}

	expense := &OverheadExpense{
		ID:       uuid.NewString(),
		Year:     req.Year,
		Month:    req.Month,
		Concept:  strings.TrimSpace(req.Concept),
		Category: req.Category,
		Amount:   req.Amount,
		Note:     req.Note,
	}
	if err := s.stores.Overhead.Create(ctx, expense); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrDuplicateExpense
		}
		return nil, fmt.Errorf("recording overhead expense: %w", err)
	}
	return expense, nil
}

// RecordRevenue stores the recognized revenue of a service for a month,
// replacing any previous amount.
func (s *Service) RecordRevenue(ctx context.Context, serviceID string, year int, month time.Month, amount float64) (*RecognizedRevenue, error) {
	if year <= 0 || month < time.January || month > time.December || amount < 0 {
		return nil, fmt.Errorf("%w: invalid revenue row", ErrInvalidInput)
	}
	svc, err := s.stores.Services.Get(ctx, serviceID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrServiceNotFound
		}
		return nil, fmt.Errorf("getting service: %w", err)
	}
	rev := &RecognizedRevenue{ServiceID: svc.ID, ClientID: svc.ClientID, Year: year, Month: month, Amount: amount}
	if err := s.stores.Revenue.Upsert(ctx, rev); err != nil {
		return nil, fmt.Errorf("recording revenue: %w", mapWriteError(err))
	}
	return rev, nil
}

// RecordInvoiceRequest defines an invoice.
type RecordInvoiceRequest struct {
	ClientID  string
	ProjectID string
	Date      time.Time
	Amount    float64
	Paid      bool
}

// RecordInvoice stores an invoice for a client or project.
func (s *Service) RecordInvoice(ctx context.Context, req RecordInvoiceRequest) (*Invoice, error) {
	if req.Amount <= 0 || req.Date.IsZero() {
		return nil, fmt.Errorf("%w: positive amount and date are required", ErrInvalidInput)
	}
	if err := s.checkClient(ctx, req.ClientID); err != nil {
		return nil, err
	}
	inv := &Invoice{
		ID:        uuid.NewString(),
		ClientID:  req.ClientID,
		ProjectID: req.ProjectID,
		Date:      day(req.Date),
		Amount:    req.Amount,
		Paid:      req.Paid,
	}
	if err := s.stores.Invoices.Create(ctx, inv); err != nil {
		return nil, fmt.Errorf("recording invoice: %w", mapWriteError(err))
	}
	return inv, nil
}

func (s *Service) ownedEntry(ctx context.Context, actorID, id string) (*TimeEntry, error) {
	entry, err := s.stores.Entries.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrEntryNotFound
		}
		return nil, fmt.Errorf("getting time entry: %w", err)
	}
	if entry.PersonID != actorID {
		return nil, ErrNotOwner
	}
	if err := s.checkWindow(entry.Date); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *Service) getPerson(ctx context.Context, id string) (*Person, error) {
	person, err := s.stores.People.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPersonNotFound
		}
		return nil, fmt.Errorf("getting person: %w", err)
	}
	return person, nil
}

func (s *Service) checkClient(ctx context.Context, id string) error {
	if _, err := s.stores.Clients.Get(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrClientNotFound
		}
		return fmt.Errorf("getting client: %w", err)
	}
	return nil
}

// checkWindow rejects future days and days older than the edit window.
func (s *Service) checkWindow(date time.Time) error {
	if date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}
	today := day(s.now())
	d := day(date)
	if d.After(today) {
		return ErrFutureDate
	}
	if d.Before(today.AddDate(0, 0, -s.editWindow)) {
		return ErrEditWindowClosed
	}
	return nil
}

func validateHours(hours float64) error {
	if hours <= 0 || hours > 24 {
		return fmt.Errorf("%w: hours must be in (0, 24]", ErrInvalidInput)
	}
	return nil
}

func mapWriteError(err error) error {
	if errors.Is(err, repository.ErrForeignKeyViolation) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return err
}

package ledger

import "errors"

var (
	// ErrInvalidInput indicates a malformed write request.
	ErrInvalidInput = errors.New("invalid ledger input")
	// ErrPersonNotFound indicates the person doesn't exist.
	ErrPersonNotFound = errors.New("person not found")
	// ErrPersonInactive indicates the person can no longer book time.
	ErrPersonInactive = errors.New("person is inactive")
	// ErrClientNotFound indicates the client doesn't exist.
	ErrClientNotFound = errors.New("client not found")
	// ErrServiceNotFound indicates the contracted service doesn't exist.
	ErrServiceNotFound = errors.New("service not found")
	// ErrEntryNotFound indicates the time entry doesn't exist.
	ErrEntryNotFound = errors.New("time entry not found")
	// ErrNotOwner indicates the actor doesn't own the time entry.
	ErrNotOwner = errors.New("time entry belongs to another person")
	// ErrFutureDate indicates hours booked on a day that hasn't happened yet.
	ErrFutureDate = errors.New("cannot book hours in the future")
	// ErrEditWindowClosed indicates the entry is older than the edit window.
	ErrEditWindowClosed = errors.New("edit window closed")
	// ErrValueUnchanged indicates a value change that keeps the same value.
	ErrValueUnchanged = errors.New("service value unchanged")
	// ErrDuplicateExpense indicates an expense concept already booked for the month.
	ErrDuplicateExpense = errors.New("overhead expense already recorded for month")
)

package ledger

import "time"

// EntryFilter narrows time entry listings. Zero values are ignored.
type EntryFilter struct {
	PersonID  string
	ClientID  string
	ProjectID string
	AreaID    string
	From      time.Time
	To        time.Time
}

// ForPeriod returns a filter covering every entry in p.
func ForPeriod(p Period) EntryFilter {
	return EntryFilter{From: p.From, To: p.To}
}

// RevenueFilter narrows recognized revenue listings. Month 0 means the whole year.
type RevenueFilter struct {
	ServiceID string
	ClientID  string
	Year      int
	Month     time.Month
}

// InvoiceFilter narrows invoice listings.
type InvoiceFilter struct {
	ClientID  string
	ProjectID string
	From      time.Time
	To        time.Time
}

// Options configures the write service.
type Options struct {
	// EditWindowDays is how many days back an entry may be booked or edited.
	EditWindowDays int
	// Now overrides the clock; nil means time.Now.
	Now func() time.Time
}

// DefaultEditWindowDays matches the weekly timesheet cycle.
const DefaultEditWindowDays = 7

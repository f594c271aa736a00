package ledger

import (
	"fmt"
	"time"
)

// YearMonth identifies a calendar month.
type YearMonth struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
}

func (ym YearMonth) String() string {
	return fmt.Sprintf("%04d-%02d", ym.Year, int(ym.Month))
}

// Period is an inclusive range of days.
type Period struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// MonthPeriod covers a single calendar month.
func MonthPeriod(year int, month time.Month) Period {
	from := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return Period{From: from, To: from.AddDate(0, 1, -1)}
}

// YearPeriod covers January to December of year.
func YearPeriod(year int) Period {
	return Period{
		From: time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC),
	}
}

// NewPeriod builds a period from two dates. The bounds are truncated to days.
func NewPeriod(from, to time.Time) (Period, error) {
	p := Period{From: day(from), To: day(to)}
	if p.To.Before(p.From) {
		return Period{}, fmt.Errorf("%w: period ends before it starts", ErrInvalidInput)
	}
	return p, nil
}

// ParsePeriod resolves the usual period arguments. Explicit from/to dates
// (YYYY-MM-DD) win; otherwise a year with an optional month; otherwise the
// month containing now.
func ParsePeriod(year, month int, from, to string, now time.Time) (Period, error) {
	if from != "" || to != "" {
		if from == "" || to == "" {
			return Period{}, fmt.Errorf("%w: from and to must be given together", ErrInvalidInput)
		}
		f, err := time.Parse(time.DateOnly, from)
		if err != nil {
			return Period{}, fmt.Errorf("%w: from: %v", ErrInvalidInput, err)
		}
		t, err := time.Parse(time.DateOnly, to)
		if err != nil {
			return Period{}, fmt.Errorf("%w: to: %v", ErrInvalidInput, err)
		}
		return NewPeriod(f, t)
	}
	if month < 0 || month > 12 {
		return Period{}, fmt.Errorf("%w: month must be 1-12", ErrInvalidInput)
	}
	if year == 0 {
		if month != 0 {
			return MonthPeriod(now.Year(), time.Month(month)), nil
		}
		return MonthPeriod(now.Year(), now.Month()), nil
	}
	if month == 0 {
		return YearPeriod(year), nil
	}
	return MonthPeriod(year, time.Month(month)), nil
}

// Contains reports whether t falls on a day inside the period.
func (p Period) Contains(t time.Time) bool {
	d := day(t)
	return !d.Before(p.From) && !d.After(p.To)
}

// ContainsMonth reports whether the month overlaps the period.
func (p Period) ContainsMonth(year int, month time.Month) bool {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	return !last.Before(day(p.From)) && !first.After(day(p.To))
}

// Months lists every month overlapping the period in order.
func (p Period) Months() []YearMonth {
	var months []YearMonth
	cur := time.Date(p.From.Year(), p.From.Month(), 1, 0, 0, 0, 0, time.UTC)
	for !cur.After(p.To) {
		months = append(months, YearMonth{Year: cur.Year(), Month: cur.Month()})
		cur = cur.AddDate(0, 1, 0)
	}
	return months
}

func (p Period) String() string {
	return p.From.Format(time.DateOnly) + ".." + p.To.Format(time.DateOnly)
}

func day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

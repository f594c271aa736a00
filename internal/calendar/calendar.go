// Package calendar provides the named business-hour calendars used to derive
// how many hours a person could have booked in a month.
package calendar

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

// Built-in calendar names.
const (
	// Weekday98 allows 9h Monday to Thursday and 8h on Friday.
	Weekday98 = "weekday-9-8"
	// Weekday7 allows a flat 7h Monday to Friday.
	Weekday7 = "weekday-7"
	// Flat22x8 assumes 22 business days of 8h regardless of the month.
	Flat22x8 = "flat-22x8"
)

// ErrUnknownCalendar is returned when a calendar name is not registered.
var ErrUnknownCalendar = errors.New("unknown calendar")

// Calendar reports available working hours for a month.
type Calendar interface {
	Name() string
	AvailableHours(year int, month time.Month) float64
}

// Weekly allows a fixed number of hours per weekday.
type Weekly struct {
	name  string
	hours [7]float64
}

// NewWeekly builds a calendar from per-weekday allowances. Missing weekdays are 0h.
func NewWeekly(name string, hours map[time.Weekday]float64) Weekly {
	w := Weekly{name: name}
	for day, h := range hours {
		w.hours[day] = h
	}
	return w
}

func (w Weekly) Name() string { return w.name }

// AvailableHours sums the weekday allowance over every day of the month.
func (w Weekly) AvailableHours(year int, month time.Month) float64 {
	total := 0.0
	day := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	for day.Month() == month {
		total += w.hours[day.Weekday()]
		day = day.AddDate(0, 0, 1)
	}
	return total
}

// Flat allows the same number of hours every month.
type Flat struct {
	name        string
	Days        int
	HoursPerDay float64
}

// NewFlat builds a calendar of days x hoursPerDay per month.
func NewFlat(name string, days int, hoursPerDay float64) Flat {
	return Flat{name: name, Days: days, HoursPerDay: hoursPerDay}
}

func (f Flat) Name() string { return f.name }

func (f Flat) AvailableHours(int, time.Month) float64 {
	return float64(f.Days) * f.HoursPerDay
}

var builtin = map[string]Calendar{
	Weekday98: NewWeekly(Weekday98, map[time.Weekday]float64{
		time.Monday:    9,
		time.Tuesday:   9,
		time.Wednesday: 9,
		time.Thursday:  9,
		time.Friday:    8,
	}),
	Weekday7: NewWeekly(Weekday7, map[time.Weekday]float64{
		time.Monday:    7,
		time.Tuesday:   7,
		time.Wednesday: 7,
		time.Thursday:  7,
		time.Friday:    7,
	}),
	Flat22x8: NewFlat(Flat22x8, 22, 8),
}

// Lookup returns a built-in calendar by name.
func Lookup(name string) (Calendar, error) {
	cal, ok := builtin[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCalendar, name)
	}
	return cal, nil
}

// Names lists the built-in calendars in sorted order.
func Names() []string {
	names := make([]string, 0, len(builtin))
	for name := range builtin {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

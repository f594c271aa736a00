package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWeekday98(t *testing.T) {
	cal, err := Lookup(Weekday98)
	require.NoError(t, err)

	// March 2024: 21 weekdays, 5 of them Fridays.
	require.Equal(t, 16*9.0+5*8.0, cal.AvailableHours(2024, time.March))
	// February 2024 (leap): 21 weekdays, 4 Fridays.
	require.Equal(t, 17*9.0+4*8.0, cal.AvailableHours(2024, time.February))
}

func TestWeekday7(t *testing.T) {
	cal, err := Lookup(Weekday7)
	require.NoError(t, err)
	require.Equal(t, 21*7.0, cal.AvailableHours(2024, time.March))
}

func TestFlat22x8(t *testing.T) {
	cal, err := Lookup(Flat22x8)
	require.NoError(t, err)
	require.Equal(t, 176.0, cal.AvailableHours(2024, time.February))
	require.Equal(t, 176.0, cal.AvailableHours(2025, time.December))
}

func TestLookupUnknown(t *testing.T) {
	_, err := Lookup("lunar")
	require.ErrorIs(t, err, ErrUnknownCalendar)
	require.Equal(t, []string{Flat22x8, Weekday7, Weekday98}, Names())
}

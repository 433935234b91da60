package test_utils

import (
	"testing"
	"time"

	"github.com/klokku/klokku-calendar/pkg/event"
	"github.com/stretchr/testify/require"
)

// Location loads an IANA zone or fails the test.
func Location(t testing.TB, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	require.NoError(t, err)
	return loc
}

// DateTime parses yyyy-MM-ddTHH:mm in loc or fails the test.
func DateTime(t testing.TB, s string, loc *time.Location) time.Time {
	t.Helper()
	dt, err := event.ParseDateTime(s, loc)
	require.NoError(t, err)
	return dt
}

// Date parses yyyy-MM-dd in loc or fails the test.
func Date(t testing.TB, s string, loc *time.Location) time.Time {
	t.Helper()
	d, err := event.ParseDate(s, loc)
	require.NoError(t, err)
	return d
}

// Single builds a single timed event from two yyyy-MM-ddTHH:mm strings.
func Single(t testing.TB, subject, start, end string, loc *time.Location) event.Event {
	t.Helper()
	e, err := event.BuildSingle(event.Fields{
		Subject: subject,
		Start:   DateTime(t, start, loc),
		End:     DateTime(t, end, loc),
	})
	require.NoError(t, err)
	return e
}

// Starts lists the start times of events formatted as yyyy-MM-ddTHH:mm.
func Starts(events []event.Event) []string {
	starts := make([]string, 0, len(events))
	for _, e := range events {
		starts = append(starts, e.StartTime.Format(event.DateTimeLayout))
	}
	return starts
}

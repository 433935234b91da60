package event

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teambition/rrule-go"
)

var newYork = mustLoad("America/New_York")

func mustLoad(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return loc
}

func fields(subject string, start, end time.Time) Fields {
	return Fields{Subject: subject, Start: start, End: end}
}

func TestExpandBySequence(t *testing.T) {
	t.Run("skips days outside the weekday set, including the start day", func(t *testing.T) {
		start := time.Date(2025, 11, 11, 10, 0, 0, 0, newYork) // Tuesday
		mwf, err := ParseWeekdays("MWF")
		require.NoError(t, err)

		events, err := ExpandBySequence(fields("Recurring Event", start, start.Add(30*time.Minute)), mwf, 6)

		require.NoError(t, err)
		require.Len(t, events, 6)
		wantDays := []int{12, 14, 17, 19, 21, 24}
		for i, e := range events {
			assert.Equal(t, time.Date(2025, 11, wantDays[i], 10, 0, 0, 0, newYork), e.StartTime)
			assert.Equal(t, time.Date(2025, 11, wantDays[i], 10, 30, 0, 0, newYork), e.EndTime)
			assert.Equal(t, KindRecurringBySequence, e.Kind)
			assert.Equal(t, 6, e.Recurrence.Occurrences)
			assert.Equal(t, events[0].Recurrence.SeriesID, e.SeriesID())
		}
	})

	t.Run("returns n events in increasing order on requested weekdays", func(t *testing.T) {
		start := time.Date(2025, 3, 1, 23, 0, 0, 0, newYork)
		for _, codes := range []string{"M", "TR", "SU", "MTWRFSU"} {
			weekdays, err := ParseWeekdays(codes)
			require.NoError(t, err)
			for _, n := range []int{1, 7, 30} {
				events, err := ExpandBySequence(fields("e", start, start.Add(59*time.Minute)), weekdays, n)
				require.NoError(t, err)
				require.Len(t, events, n)
				for i, e := range events {
					assert.True(t, weekdays.Contains(e.StartTime.Weekday()))
					assert.Equal(t, 23, e.StartTime.Hour(), "time of day survives the DST change")
					if i > 0 {
						assert.True(t, events[i-1].StartTime.Before(e.StartTime))
						assert.False(t, SameDate(events[i-1].StartTime, e.StartTime))
					}
				}
			}
		}
	})

	t.Run("matches rrule expansion", func(t *testing.T) {
		start := time.Date(2025, 1, 6, 9, 15, 0, 0, time.UTC)
		weekdays := NewWeekdays(time.Tuesday, time.Saturday)
		events, err := ExpandBySequence(fields("e", start, start.Add(time.Hour)), weekdays, 10)
		require.NoError(t, err)

		rule, err := rrule.NewRRule(rrule.ROption{
			Freq:      rrule.DAILY,
			Dtstart:   start,
			Count:     10,
			Byweekday: []rrule.Weekday{rrule.TU, rrule.SA},
		})
		require.NoError(t, err)
		want := rule.All()
		require.Len(t, want, 10)
		for i, e := range events {
			assert.True(t, want[i].Equal(e.StartTime))
		}
	})

	t.Run("all-day occurrences cover whole days", func(t *testing.T) {
		f := Fields{Subject: "Holiday", Start: time.Date(2025, 12, 22, 0, 0, 0, 0, newYork), AllDay: true}
		events, err := ExpandBySequence(f, NewWeekdays(time.Monday), 2)
		require.NoError(t, err)
		require.Len(t, events, 2)
		assert.Equal(t, time.Date(2025, 12, 29, 0, 0, 0, 0, newYork), events[1].StartTime)
		assert.Equal(t, time.Date(2025, 12, 30, 0, 0, 0, 0, newYork), events[1].EndTime)
		assert.True(t, events[1].AllDay)
	})

	t.Run("rejects invalid rules before materializing", func(t *testing.T) {
		start := time.Date(2025, 11, 11, 22, 0, 0, 0, newYork)
		testCases := []struct {
			name     string
			f        Fields
			weekdays Weekdays
			n        int
			field    string
		}{
			{"zero count", fields("e", start, start.Add(time.Hour)), NewWeekdays(time.Monday), 0, "occurrences"},
			{"negative count", fields("e", start, start.Add(time.Hour)), NewWeekdays(time.Monday), -2, "occurrences"},
			{"empty weekdays", fields("e", start, start.Add(time.Hour)), 0, 3, "weekdays"},
			{"spans midnight", fields("e", start, start.Add(3*time.Hour)), NewWeekdays(time.Monday), 3, "end"},
			{"empty subject", fields("  ", start, start.Add(time.Hour)), NewWeekdays(time.Monday), 3, "subject"},
			{"end before start", fields("e", start, start.Add(-time.Hour)), NewWeekdays(time.Monday), 3, "end"},
		}
		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				events, err := ExpandBySequence(tc.f, tc.weekdays, tc.n)
				assert.Nil(t, events)
				var verr *ValidationError
				require.ErrorAs(t, err, &verr)
				assert.Equal(t, tc.field, verr.Field)
				assert.ErrorIs(t, err, ErrValidation)
			})
		}
	})
}

func TestExpandUntil(t *testing.T) {
	start := time.Date(2025, 11, 10, 10, 0, 0, 0, newYork) // Monday
	mw := NewWeekdays(time.Monday, time.Wednesday)

	t.Run("boundary is inclusive on the occurrence end", func(t *testing.T) {
		boundary := time.Date(2025, 11, 19, 11, 0, 0, 0, newYork)
		events, err := ExpandUntil(fields("e", start, start.Add(time.Hour)), mw, boundary)
		require.NoError(t, err)
		require.Len(t, events, 4)
		assert.Equal(t, boundary, events[3].EndTime)
		for _, e := range events {
			assert.False(t, e.EndTime.After(boundary))
			assert.Equal(t, KindRecurringUntil, e.Kind)
			assert.Equal(t, boundary, e.Recurrence.Until)
		}
	})

	t.Run("excludes an occurrence ending one minute after the boundary", func(t *testing.T) {
		boundary := time.Date(2025, 11, 19, 10, 59, 0, 0, newYork)
		events, err := ExpandUntil(fields("e", start, start.Add(time.Hour)), mw, boundary)
		require.NoError(t, err)
		require.Len(t, events, 3)
		assert.Equal(t, 17, events[2].StartTime.Day())
	})

	t.Run("every occurrence up to the boundary is produced", func(t *testing.T) {
		boundary := time.Date(2026, 2, 1, 0, 0, 0, 0, newYork)
		events, err := ExpandUntil(fields("e", start, start.Add(time.Hour)), mw, boundary)
		require.NoError(t, err)
		count := 0
		for d := start; !d.After(boundary); d = d.AddDate(0, 0, 1) {
			if mw.Contains(d.Weekday()) && !AtTimeOf(d, start.Add(time.Hour)).After(boundary) {
				count++
			}
		}
		assert.Len(t, events, count)
	})

	t.Run("boundary before the first end is rejected", func(t *testing.T) {
		_, err := ExpandUntil(fields("e", start, start.Add(time.Hour)), mw, start)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "until", verr.Field)
	})

	t.Run("a rule without any matching day is rejected", func(t *testing.T) {
		_, err := ExpandUntil(fields("e", start, start.Add(time.Hour)), NewWeekdays(time.Friday), start.Add(2*time.Hour))
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("all-day until the end of the boundary day", func(t *testing.T) {
		f := Fields{Subject: "Gym", Start: start, AllDay: true}
		events, err := ExpandUntil(f, mw, StartOfNextDay(time.Date(2025, 11, 17, 0, 0, 0, 0, newYork)))
		require.NoError(t, err)
		require.Len(t, events, 3)
		assert.Equal(t, time.Date(2025, 11, 17, 0, 0, 0, 0, newYork), events[2].StartTime)
	})
}

func TestBuildSingle(t *testing.T) {
	start := time.Date(2025, 11, 11, 11, 0, 0, 0, newYork)

	t.Run("zero duration is allowed", func(t *testing.T) {
		e, err := BuildSingle(fields("Ping", start, start))
		require.NoError(t, err)
		assert.Equal(t, time.Duration(0), e.Duration())
		assert.Equal(t, KindSingle, e.Kind)
		assert.False(t, e.IsRecurring())
	})

	t.Run("multi-day single events are allowed", func(t *testing.T) {
		e, err := BuildSingle(fields("Trip", start, start.AddDate(0, 0, 3)))
		require.NoError(t, err)
		assert.Equal(t, 72*time.Hour, e.Duration())
	})

	t.Run("all-day spans until the start of the next day", func(t *testing.T) {
		e, err := BuildAllDay(Fields{Subject: "abc"}, time.Date(2025, 12, 22, 15, 30, 0, 0, newYork))
		require.NoError(t, err)
		assert.Equal(t, time.Date(2025, 12, 22, 0, 0, 0, 0, newYork), e.StartTime)
		assert.Equal(t, time.Date(2025, 12, 23, 0, 0, 0, 0, newYork), e.EndTime)
		assert.True(t, e.AllDay)
	})

	t.Run("rebuild keeps identity and series", func(t *testing.T) {
		events, err := ExpandBySequence(fields("e", start, start.Add(time.Hour)), NewWeekdays(time.Tuesday), 2)
		require.NoError(t, err)
		f := events[1].Fields()
		f.Subject = "renamed"
		rebuilt, err := Rebuild(events[1], f)
		require.NoError(t, err)
		assert.Equal(t, events[1].ID, rebuilt.ID)
		assert.Equal(t, events[1].Recurrence, rebuilt.Recurrence)
		assert.Equal(t, "renamed", rebuilt.Subject)

		f.End = f.Start.AddDate(0, 0, 1)
		_, err = Rebuild(events[1], f)
		assert.ErrorIs(t, err, ErrValidation)
	})
}

func TestWeekdays(t *testing.T) {
	w, err := ParseWeekdays("mwfu")
	require.NoError(t, err)
	assert.Equal(t, "MWFU", w.String())
	assert.Equal(t, []time.Weekday{time.Monday, time.Wednesday, time.Friday, time.Sunday}, w.Days())

	assert.Equal(t, "MTRS", w.Rotate(1).String())
	assert.Equal(t, w, w.Rotate(7))
	assert.Equal(t, w.Rotate(-1), w.Rotate(6))

	_, err = ParseWeekdays("MX")
	assert.ErrorIs(t, err, ErrValidation)
	_, err = ParseWeekdays("")
	assert.ErrorIs(t, err, ErrValidation)
}

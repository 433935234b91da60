package registry

import (
	"testing"

	"github.com/klokku/klokku-calendar/internal/test_utils"
	"github.com/klokku/klokku-calendar/pkg/calendar"
	"github.com/klokku/klokku-calendar/pkg/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_CopyEvent(t *testing.T) {
	t.Run("converts the anchor and lands it on the target time", func(t *testing.T) {
		r, _, ctx := setupRegistryTest(t)
		berlin, err := r.CreateCalendar(ctx, "Berlin", "Europe/Berlin")
		require.NoError(t, err)
		work := r.Active()
		standup := test_utils.Single(t, "Standup", "2025-11-11T11:00", "2025-11-11T12:00", work.Location())
		require.NoError(t, work.Store.Create(ctx, standup, calendar.AutoDecline))

		copies, err := r.CopyEvent(ctx, "Standup", standup.StartTime, "Berlin",
			test_utils.DateTime(t, "2025-11-20T09:00", berlin.Location()))

		require.NoError(t, err)
		require.Len(t, copies, 1)
		assert.Equal(t, "2025-11-20T09:00", copies[0].StartTime.Format(event.DateTimeLayout))
		assert.Equal(t, "2025-11-20T10:00", copies[0].EndTime.Format(event.DateTimeLayout))
		assert.NotEqual(t, standup.ID, copies[0].ID)
		stored, err := berlin.Store.Events(ctx)
		require.NoError(t, err)
		assert.Equal(t, copies, stored)
	})

	t.Run("copying there and back restores the local times", func(t *testing.T) {
		r, _, ctx := setupRegistryTest(t)
		tokyo, err := r.CreateCalendar(ctx, "Travel", "Asia/Tokyo")
		require.NoError(t, err)
		home, err := r.CreateCalendar(ctx, "Home", "America/New_York")
		require.NoError(t, err)
		work := r.Active()
		original := test_utils.Single(t, "Call", "2025-11-11T11:00", "2025-11-11T12:15", work.Location())
		require.NoError(t, work.Store.Create(ctx, original, calendar.AutoDecline))

		there, err := r.CopyEvent(ctx, "Call", original.StartTime, "Travel",
			test_utils.DateTime(t, "2025-11-13T09:30", tokyo.Location()))
		require.NoError(t, err)
		require.NoError(t, r.UseCalendar(ctx, "Travel"))
		back, err := r.CopyEvent(ctx, "Call", there[0].StartTime, "Home",
			test_utils.DateTime(t, "2025-11-11T11:00", home.Location()))

		require.NoError(t, err)
		assert.Equal(t, "2025-11-11T11:00", back[0].StartTime.Format(event.DateTimeLayout))
		assert.Equal(t, "2025-11-11T12:15", back[0].EndTime.Format(event.DateTimeLayout))
	})

	t.Run("a recurring anchor copies the whole series with rotated weekdays", func(t *testing.T) {
		r, _, ctx := setupRegistryTest(t)
		tokyo, err := r.CreateCalendar(ctx, "Travel", "Asia/Tokyo")
		require.NoError(t, err)
		work := r.Active()
		mwf, err := event.ParseWeekdays("MWF")
		require.NoError(t, err)
		series, err := event.ExpandBySequence(event.Fields{
			Subject: "Recurring Event",
			Start:   test_utils.DateTime(t, "2025-11-11T10:00", work.Location()),
			End:     test_utils.DateTime(t, "2025-11-11T10:30", work.Location()),
		}, mwf, 6)
		require.NoError(t, err)
		require.NoError(t, work.Store.CreateSeries(ctx, series, calendar.AutoDecline))

		copies, err := r.CopyEvent(ctx, "Recurring Event", series[0].StartTime, "Travel",
			test_utils.DateTime(t, "2025-11-13T00:00", tokyo.Location()))

		require.NoError(t, err)
		assert.Equal(t, []string{
			"2025-11-13T00:00", "2025-11-15T00:00", "2025-11-18T00:00",
			"2025-11-20T00:00", "2025-11-22T00:00", "2025-11-25T00:00",
		}, test_utils.Starts(copies))
		for _, c := range copies {
			assert.Equal(t, "TRS", c.Recurrence.Weekdays.String())
			assert.Equal(t, copies[0].SeriesID(), c.SeriesID())
			assert.NotEqual(t, series[0].SeriesID(), c.SeriesID())
			assert.True(t, c.Recurrence.Weekdays.Contains(c.StartTime.Weekday()))
			assert.Equal(t, 6, c.Recurrence.Occurrences)
		}
		stored, err := tokyo.Store.Series(ctx, copies[0].SeriesID())
		require.NoError(t, err)
		assert.Len(t, stored, 6)
	})

	t.Run("a conflict in the target commits nothing", func(t *testing.T) {
		r, _, ctx := setupRegistryTest(t)
		berlin, err := r.CreateCalendar(ctx, "Berlin", "Europe/Berlin")
		require.NoError(t, err)
		work := r.Active()
		mw, err := event.ParseWeekdays("MW")
		require.NoError(t, err)
		series, err := event.ExpandBySequence(event.Fields{
			Subject: "Gym",
			Start:   test_utils.DateTime(t, "2025-11-10T07:00", work.Location()),
			End:     test_utils.DateTime(t, "2025-11-10T08:00", work.Location()),
		}, mw, 4)
		require.NoError(t, err)
		require.NoError(t, work.Store.CreateSeries(ctx, series, calendar.AutoDecline))
		blocker := test_utils.Single(t, "Dinner", "2025-11-17T13:30", "2025-11-17T14:30", berlin.Location())
		require.NoError(t, berlin.Store.Create(ctx, blocker, calendar.AutoDecline))

		_, err = r.CopyEvent(ctx, "Gym", series[0].StartTime, "Berlin",
			test_utils.DateTime(t, "2025-11-10T13:00", berlin.Location()))

		var conflict *event.ConflictError
		require.ErrorAs(t, err, &conflict)
		assert.Equal(t, "Dinner", conflict.Existing.Subject)
		stored, err := berlin.Store.Events(ctx)
		require.NoError(t, err)
		assert.Equal(t, []event.Event{blocker}, stored)
	})

	t.Run("unknown anchor or target", func(t *testing.T) {
		r, _, ctx := setupRegistryTest(t)
		loc := r.Active().Location()
		_, err := r.CopyEvent(ctx, "ghost", test_utils.DateTime(t, "2025-11-11T11:00", loc), "Work",
			test_utils.DateTime(t, "2025-11-12T11:00", loc))
		assert.ErrorIs(t, err, event.ErrNotFound)
		_, err = r.CopyEvent(ctx, "ghost", test_utils.DateTime(t, "2025-11-11T11:00", loc), "Nowhere",
			test_utils.DateTime(t, "2025-11-12T11:00", loc))
		assert.ErrorIs(t, err, event.ErrNotFound)
	})
}

func TestRegistry_CopyEventsOnDate(t *testing.T) {
	r, _, ctx := setupRegistryTest(t)
	berlin, err := r.CreateCalendar(ctx, "Berlin", "Europe/Berlin")
	require.NoError(t, err)
	work := r.Active()
	loc := work.Location()
	allDay, err := event.BuildAllDay(event.Fields{Subject: "Conference"}, test_utils.Date(t, "2025-11-14", loc))
	require.NoError(t, err)
	require.NoError(t, work.Store.CreateSeries(ctx, []event.Event{
		test_utils.Single(t, "Breakfast", "2025-11-11T09:00", "2025-11-11T10:00", loc),
		test_utils.Single(t, "Late call", "2025-11-11T22:00", "2025-11-11T23:00", loc),
		allDay,
	}, calendar.AutoDecline))

	t.Run("times are converted and moved by whole days", func(t *testing.T) {
		copies, err := r.CopyEventsOnDate(ctx, test_utils.Date(t, "2025-11-11", loc), "Berlin",
			test_utils.Date(t, "2025-11-20", berlin.Location()))

		require.NoError(t, err)
		assert.Equal(t, []string{"2025-11-20T15:00", "2025-11-21T04:00"}, test_utils.Starts(copies))
	})

	t.Run("all-day events keep their date shape", func(t *testing.T) {
		copies, err := r.CopyEventsBetween(ctx, test_utils.Date(t, "2025-11-14", loc), test_utils.Date(t, "2025-11-14", loc),
			"Berlin", test_utils.Date(t, "2025-12-01", berlin.Location()))

		require.NoError(t, err)
		require.Len(t, copies, 1)
		assert.True(t, copies[0].AllDay)
		assert.Equal(t, "2025-12-01T00:00", copies[0].StartTime.Format(event.DateTimeLayout))
		assert.Equal(t, "2025-12-02T00:00", copies[0].EndTime.Format(event.DateTimeLayout))
		assert.Equal(t, berlin.Location(), copies[0].StartTime.Location())
	})

	t.Run("range copy keeps relative days", func(t *testing.T) {
		copies, err := r.CopyEventsBetween(ctx, test_utils.Date(t, "2025-11-11", loc), test_utils.Date(t, "2025-11-14", loc),
			"Berlin", test_utils.Date(t, "2026-01-05", berlin.Location()))

		require.NoError(t, err)
		assert.Equal(t, []string{"2026-01-05T15:00", "2026-01-06T04:00", "2026-01-08T00:00"}, test_utils.Starts(copies))
	})

	t.Run("empty selections and inverted ranges", func(t *testing.T) {
		_, err := r.CopyEventsOnDate(ctx, test_utils.Date(t, "2025-11-30", loc), "Berlin", test_utils.Date(t, "2025-12-30", loc))
		assert.ErrorIs(t, err, event.ErrNotFound)
		_, err = r.CopyEventsBetween(ctx, test_utils.Date(t, "2025-11-12", loc), test_utils.Date(t, "2025-11-11", loc), "Berlin", test_utils.Date(t, "2025-12-30", loc))
		assert.ErrorIs(t, err, event.ErrValidation)
	})
}

package registry

import (
	"context"
	"testing"

	"github.com/klokku/klokku-calendar/internal/event_bus"
	"github.com/klokku/klokku-calendar/internal/test_utils"
	"github.com/klokku/klokku-calendar/pkg/calendar"
	"github.com/klokku/klokku-calendar/pkg/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRegistryTest(t *testing.T) (*Registry, *test_utils.BusRecorder, context.Context) {
	bus := event_bus.NewEventBus()
	recorder := test_utils.RecordBus(bus,
		event_bus.CalendarCreatedEvent,
		event_bus.CalendarRenamedEvent,
		event_bus.CalendarTimezoneChangedEvent,
		event_bus.CalendarDeletedEvent,
		event_bus.CalendarActivatedEvent,
		event_bus.CalendarEventsChangedEvent,
	)
	r, err := New(bus, "Work", "America/New_York")
	require.NoError(t, err)
	return r, recorder, context.Background()
}

func TestRegistry_New(t *testing.T) {
	r, recorder, _ := setupRegistryTest(t)

	assert.Equal(t, "Work", r.Active().Name)
	assert.Equal(t, "America/New_York", r.Active().Location().String())
	assert.Equal(t, []event_bus.EventType{event_bus.CalendarCreatedEvent}, recorder.Types())

	_, err := New(nil, "Work", "Mars/Olympus")
	assert.ErrorIs(t, err, event.ErrValidation)
}

func TestRegistry_RenameCalendar(t *testing.T) {
	r, recorder, ctx := setupRegistryTest(t)
	loc := r.Active().Location()
	require.NoError(t, r.Active().Store.Create(ctx, test_utils.Single(t, "Standup", "2025-11-11T11:00", "2025-11-11T12:00", loc), calendar.AutoDecline))
	before, err := r.Active().Store.Events(ctx)
	require.NoError(t, err)

	require.NoError(t, r.RenameCalendar(ctx, "Work", "WorkCal"))

	assert.Equal(t, "WorkCal", r.Active().Name)
	assert.Equal(t, loc, r.Active().Location())
	after, err := r.Active().Store.Events(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)
	_, err = r.Calendar("Work")
	assert.ErrorIs(t, err, event.ErrNotFound)
	assert.Contains(t, recorder.Types(), event_bus.CalendarRenamedEvent)

	t.Run("events published after the rename carry the new name", func(t *testing.T) {
		require.NoError(t, r.Active().Store.Create(ctx, test_utils.Single(t, "Retro", "2025-11-12T11:00", "2025-11-12T12:00", loc), calendar.AutoDecline))
		events := recorder.Events()
		last := events[len(events)-1]
		require.Equal(t, event_bus.CalendarEventsChangedEvent, last.Type)
		assert.Equal(t, "WorkCal", last.Data.(event_bus.CalendarEventsChanged).Calendar)
	})

	t.Run("names stay unique", func(t *testing.T) {
		_, err := r.CreateCalendar(ctx, "Home", "Europe/Berlin")
		require.NoError(t, err)
		assert.ErrorIs(t, r.RenameCalendar(ctx, "Home", "WorkCal"), event.ErrValidation)
		assert.ErrorIs(t, r.RenameCalendar(ctx, "Nope", "Other"), event.ErrNotFound)
	})
}

func TestRegistry_EditCalendar(t *testing.T) {
	r, recorder, ctx := setupRegistryTest(t)
	loc := r.Active().Location()
	standup := test_utils.Single(t, "Standup", "2025-11-11T11:00", "2025-11-11T12:00", loc)
	require.NoError(t, r.Active().Store.Create(ctx, standup, calendar.AutoDecline))

	require.NoError(t, r.EditCalendar(ctx, "Work", "timezone", "Asia/Tokyo"))

	events, err := r.Active().Store.Events(ctx)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "2025-11-12T01:00", events[0].StartTime.Format(event.DateTimeLayout))
	assert.True(t, standup.StartTime.Equal(events[0].StartTime))
	assert.Contains(t, recorder.Types(), event_bus.CalendarTimezoneChangedEvent)

	require.NoError(t, r.EditCalendar(ctx, "Work", "NAME", "Office"))
	assert.Equal(t, "Office", r.Active().Name)

	assert.ErrorIs(t, r.EditCalendar(ctx, "Office", "colour", "blue"), event.ErrValidation)
	assert.ErrorIs(t, r.EditCalendar(ctx, "Office", "timezone", "Nowhere/Land"), event.ErrValidation)
}

func TestRegistry_UseAndDelete(t *testing.T) {
	r, _, ctx := setupRegistryTest(t)
	_, err := r.CreateCalendar(ctx, "Home", "Europe/Berlin")
	require.NoError(t, err)
	_, err = r.CreateCalendar(ctx, "Club", "Europe/Berlin")
	require.NoError(t, err)

	require.NoError(t, r.UseCalendar(ctx, "Home"))
	assert.Equal(t, "Home", r.Active().Name)
	assert.ErrorIs(t, r.UseCalendar(ctx, "Gym"), event.ErrNotFound)
	assert.Equal(t, "Home", r.Active().Name)

	require.NoError(t, r.DeleteCalendar(ctx, "Home"))
	assert.Equal(t, "Club", r.Active().Name)
	require.NoError(t, r.DeleteCalendar(ctx, "Work"))

	err = r.DeleteCalendar(ctx, "Club")
	assert.ErrorIs(t, err, event.ErrValidation)
	require.Len(t, r.Calendars(), 1)
}

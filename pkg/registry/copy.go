package registry

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/klokku/klokku-calendar/pkg/calendar"
	"github.com/klokku/klokku-calendar/pkg/event"
	log "github.com/sirupsen/logrus"
)

// offset is applied to the wall clock of every copied event, after converting it into the
// target zone.
type offset struct {
	days    int
	minutes int
}

// CopyEvent copies the event of the active calendar with the given subject and start into
// target so that it starts at targetStart. A recurring event brings its whole series along.
func (r *Registry) CopyEvent(ctx context.Context, subject string, start time.Time, target string, targetStart time.Time) ([]event.Event, error) {
	src := r.Active()
	dst, err := r.Calendar(target)
	if err != nil {
		return nil, err
	}
	found, err := src.Store.Find(ctx, subject, start)
	if err != nil {
		return nil, err
	}
	if len(found) > 1 {
		return nil, &event.ValidationError{Field: "event", Reason: fmt.Sprintf("%d events named %q start at %s", len(found), subject, start.Format(event.DateTimeLayout))}
	}
	anchor := found[0]

	batch := []event.Event{anchor}
	if anchor.IsRecurring() {
		if batch, err = src.Store.Series(ctx, anchor.SeriesID()); err != nil {
			return nil, err
		}
	}

	targetStart = targetStart.In(dst.Location())
	var off offset
	if anchor.AllDay {
		off.days = event.DaysBetween(anchor.StartTime, targetStart)
	} else {
		converted := anchor.StartTime.In(dst.Location())
		off.days = event.DaysBetween(converted, targetStart)
		off.minutes = event.MinutesOfDay(targetStart) - event.MinutesOfDay(converted)
	}
	return r.copyBatch(ctx, batch, dst, off)
}

// CopyEventsOnDate copies every event of the active calendar starting on date to targetDate
// in target. Times of day are converted into the target zone and otherwise kept.
func (r *Registry) CopyEventsOnDate(ctx context.Context, date time.Time, target string, targetDate time.Time) ([]event.Event, error) {
	return r.CopyEventsBetween(ctx, date, date, target, targetDate)
}

// CopyEventsBetween copies every event of the active calendar starting on a date in [from, to]
// so that from lands on targetStart in target.
func (r *Registry) CopyEventsBetween(ctx context.Context, from, to time.Time, target string, targetStart time.Time) ([]event.Event, error) {
	src := r.Active()
	dst, err := r.Calendar(target)
	if err != nil {
		return nil, err
	}
	if event.DaysBetween(from, to) < 0 {
		return nil, &event.ValidationError{Field: "to", Reason: fmt.Sprintf("%s is before %s", to.Format(event.DateLayout), from.Format(event.DateLayout))}
	}

	all, err := src.Store.Events(ctx)
	if err != nil {
		return nil, err
	}
	batch := make([]event.Event, 0)
	for _, e := range all {
		if event.DaysBetween(from, e.StartTime) >= 0 && event.DaysBetween(e.StartTime, to) >= 0 {
			batch = append(batch, e)
		}
	}
	if len(batch) == 0 {
		return nil, &event.NotFoundError{What: "events", Key: fmt.Sprintf("between %s and %s", from.Format(event.DateLayout), to.Format(event.DateLayout))}
	}
	return r.copyBatch(ctx, batch, dst, offset{days: event.DaysBetween(from, targetStart)})
}

// copyBatch shifts every event by off and inserts the copies into dst in one transaction.
// Members of one source series become one new series with the weekday set rotated along.
func (r *Registry) copyBatch(ctx context.Context, batch []event.Event, dst *Calendar, off offset) ([]event.Event, error) {
	loc := dst.Location()
	seriesSize := make(map[uuid.UUID]int)
	for _, e := range batch {
		if e.IsRecurring() {
			seriesSize[e.SeriesID()]++
		}
	}
	recurrences := make(map[uuid.UUID]event.Recurrence)

	copies := make([]event.Event, 0, len(batch))
	for _, e := range batch {
		f := e.Fields()
		f.Start = shift(e.StartTime, e.AllDay, loc, off)
		f.End = shift(e.EndTime, e.AllDay, loc, off)
		if f.AllDay {
			f.End = f.Start
		}

		if !e.IsRecurring() {
			c, err := event.BuildSingle(f)
			if err != nil {
				return nil, err
			}
			copies = append(copies, c)
			continue
		}

		rec, ok := recurrences[e.SeriesID()]
		if !ok {
			rec = copyRecurrence(e, f.Start, seriesSize[e.SeriesID()], loc, off)
			recurrences[e.SeriesID()] = rec
		}
		c, err := event.BuildOccurrence(f, e.Kind, rec)
		if err != nil {
			return nil, err
		}
		copies = append(copies, c)
	}

	if err := dst.Store.CreateSeries(ctx, copies, calendar.AutoDecline); err != nil {
		return nil, err
	}
	log.Debugf("copied %d events into %q shifted by %d days %d minutes", len(copies), dst.Name, off.days, off.minutes)
	return copies, nil
}

// copyRecurrence derives the rule of a copied series from its first copied member. The weekday
// set turns by the civil days that member moved, zone conversion included.
func copyRecurrence(first event.Event, copiedStart time.Time, copied int, loc *time.Location, off offset) event.Recurrence {
	rec := first.Recurrence
	rec.SeriesID = uuid.New()
	rec.Weekdays = rec.Weekdays.Rotate(event.DaysBetween(first.StartTime, copiedStart))
	switch first.Kind {
	case event.KindRecurringBySequence:
		rec.Occurrences = copied
	case event.KindRecurringUntil:
		rec.Until = shift(rec.Until, first.AllDay, loc, off)
	}
	return rec
}

// shift converts t into loc and moves its wall clock by off. All-day values keep their own
// date and only move by whole days.
func shift(t time.Time, allDay bool, loc *time.Location, off offset) time.Time {
	if allDay {
		y, m, d := t.Date()
		return time.Date(y, m, d+off.days, 0, 0, 0, 0, loc)
	}
	t = t.In(loc)
	y, m, d := t.Date()
	return time.Date(y, m, d+off.days, t.Hour(), t.Minute()+off.minutes, t.Second(), t.Nanosecond(), loc)
}

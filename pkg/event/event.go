package event

import (
	"time"

	"github.com/google/uuid"
)

const (
	DateLayout      = "2006-01-02"
	DateTimeLayout  = "2006-01-02T15:04"
	TimeOfDayLayout = "15:04"
)

type Kind int

const (
	KindSingle Kind = iota
	KindRecurringBySequence
	KindRecurringUntil
)

func (k Kind) String() string {
	switch k {
	case KindSingle:
		return "single"
	case KindRecurringBySequence:
		return "recurring-by-sequence"
	case KindRecurringUntil:
		return "recurring-until"
	}
	return "unknown"
}

// Recurrence is the payload of the recurring variants. It is the zero value for single events.
type Recurrence struct {
	SeriesID uuid.UUID
	Weekdays Weekdays
	// Occurrences is only meaningful for KindRecurringBySequence.
	Occurrences int
	// Until is the inclusive boundary of KindRecurringUntil.
	Until time.Time
}

// Event is one materialized calendar entry. Values are built through BuildSingle, BuildAllDay,
// the expansion functions or Rebuild, never assembled directly.
type Event struct {
	ID          uuid.UUID
	Subject     string
	StartTime   time.Time
	EndTime     time.Time
	Description string
	Location    string
	Private     bool
	AllDay      bool
	Kind        Kind
	Recurrence  Recurrence
}

// Fields are the editable properties shared by all event variants.
type Fields struct {
	Subject     string
	Start       time.Time
	End         time.Time
	Description string
	Location    string
	Private     bool
	AllDay      bool
}

func (e Event) Fields() Fields {
	return Fields{
		Subject:     e.Subject,
		Start:       e.StartTime,
		End:         e.EndTime,
		Description: e.Description,
		Location:    e.Location,
		Private:     e.Private,
		AllDay:      e.AllDay,
	}
}

func (e Event) IsRecurring() bool {
	return e.Kind != KindSingle
}

// SeriesID returns uuid.Nil for single events.
func (e Event) SeriesID() uuid.UUID {
	if !e.IsRecurring() {
		return uuid.Nil
	}
	return e.Recurrence.SeriesID
}

func (e Event) Duration() time.Duration {
	return e.EndTime.Sub(e.StartTime)
}

// StartsOn reports whether the event starts on the civil date of day.
func (e Event) StartsOn(day time.Time) bool {
	return SameDate(e.StartTime, day.In(e.StartTime.Location()))
}

// Matches reports whether the event has the given subject, start and end.
func (e Event) Matches(subject string, start, end time.Time) bool {
	return e.Subject == subject && e.StartTime.Equal(start) && e.EndTime.Equal(end)
}

// In returns a copy with every timestamp projected into loc. Timed events keep their
// instants. All-day events keep their civil date and cover that whole day in loc.
func (e Event) In(loc *time.Location) Event {
	if e.AllDay {
		e.StartTime = WallClockIn(e.StartTime, loc)
		e.EndTime = StartOfNextDay(e.StartTime)
		if !e.Recurrence.Until.IsZero() {
			e.Recurrence.Until = WallClockIn(e.Recurrence.Until, loc)
		}
		return e
	}
	e.StartTime = e.StartTime.In(loc)
	e.EndTime = e.EndTime.In(loc)
	if !e.Recurrence.Until.IsZero() {
		e.Recurrence.Until = e.Recurrence.Until.In(loc)
	}
	return e
}

// LinkSeries returns copies of events attached to seriesID.
func LinkSeries(events []Event, seriesID uuid.UUID) []Event {
	linked := make([]Event, len(events))
	for i, e := range events {
		e.Recurrence.SeriesID = seriesID
		linked[i] = e
	}
	return linked
}

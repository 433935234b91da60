package event

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// BuildSingle validates fields and returns a single event. All-day fields are normalized to
// cover the whole civil day of Start, ending at the start of the next day.
func BuildSingle(f Fields) (Event, error) {
	f = normalize(f)
	if err := validateFields(f); err != nil {
		return Event{}, err
	}
	return newEvent(f, KindSingle, Recurrence{}), nil
}

// BuildAllDay returns a single all-day event on the civil date of date.
func BuildAllDay(f Fields, date time.Time) (Event, error) {
	f.AllDay = true
	f.Start = date
	f.End = date
	return BuildSingle(f)
}

// BuildOccurrence validates one member of a recurring series. It is used when a series member
// is edited or copied on its own, so no expansion takes place.
func BuildOccurrence(f Fields, kind Kind, rec Recurrence) (Event, error) {
	if kind == KindSingle {
		return Event{}, invalid("kind", "an occurrence needs a recurring kind")
	}
	f = normalize(f)
	if err := validateRecurring(f, rec.Weekdays); err != nil {
		return Event{}, err
	}
	if rec.SeriesID == uuid.Nil {
		rec.SeriesID = uuid.New()
	}
	return newEvent(f, kind, rec), nil
}

// Rebuild validates f as a new version of old. Identity, variant and series are kept.
func Rebuild(old Event, f Fields) (Event, error) {
	var (
		e   Event
		err error
	)
	switch old.Kind {
	case KindSingle:
		e, err = BuildSingle(f)
	case KindRecurringBySequence, KindRecurringUntil:
		e, err = BuildOccurrence(f, old.Kind, old.Recurrence)
	default:
		return Event{}, invalid("kind", "unknown event kind %d", old.Kind)
	}
	if err != nil {
		return Event{}, err
	}
	e.ID = old.ID
	return e, nil
}

func newEvent(f Fields, kind Kind, rec Recurrence) Event {
	return Event{
		ID:          uuid.New(),
		Subject:     f.Subject,
		StartTime:   f.Start,
		EndTime:     f.End,
		Description: f.Description,
		Location:    f.Location,
		Private:     f.Private,
		AllDay:      f.AllDay,
		Kind:        kind,
		Recurrence:  rec,
	}
}

func normalize(f Fields) Fields {
	f.Subject = strings.TrimSpace(f.Subject)
	if f.AllDay && !f.Start.IsZero() {
		f.Start = StartOfDay(f.Start)
		f.End = StartOfNextDay(f.Start)
	}
	return f
}

func validateFields(f Fields) error {
	if f.Subject == "" {
		return invalid("subject", "must not be empty")
	}
	if f.Start.IsZero() {
		return invalid("start", "is required")
	}
	if f.End.IsZero() {
		return invalid("end", "is required")
	}
	if f.End.Before(f.Start) {
		return invalid("end", "%s is before start %s", f.End.Format(DateTimeLayout), f.Start.Format(DateTimeLayout))
	}
	return nil
}

func validateRecurring(f Fields, weekdays Weekdays) error {
	if err := validateFields(f); err != nil {
		return err
	}
	if weekdays.IsEmpty() {
		return invalid("weekdays", "at least one weekday is required")
	}
	if !f.AllDay && !SameDate(f.Start, f.End) {
		return invalid("end", "a recurring event must start and end on the same day")
	}
	return nil
}

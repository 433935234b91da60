package event

import (
	"time"

	"github.com/google/uuid"
)

// MaxOccurrences caps a single expansion.
const MaxOccurrences = 5000

// ExpandBySequence materializes the first n days, from the start date on, whose weekday is
// in weekdays. Every occurrence keeps the original time of day and shares one series id.
func ExpandBySequence(f Fields, weekdays Weekdays, n int) ([]Event, error) {
	f = normalize(f)
	if err := validateRecurring(f, weekdays); err != nil {
		return nil, err
	}
	if n <= 0 {
		return nil, invalid("occurrences", "must be greater than zero, got %d", n)
	}
	if n > MaxOccurrences {
		return nil, invalid("occurrences", "at most %d occurrences are allowed, got %d", MaxOccurrences, n)
	}

	rec := Recurrence{SeriesID: uuid.New(), Weekdays: weekdays, Occurrences: n}
	events := make([]Event, 0, n)
	for i := 0; len(events) < n; i++ {
		day := cursor(f.Start, i)
		if weekdays.Contains(day.Weekday()) {
			events = append(events, occurrenceOn(day, f, KindRecurringBySequence, rec))
		}
	}
	return events, nil
}

// ExpandUntil materializes every matching day whose occurrence ends no later than boundary.
// The boundary is inclusive.
func ExpandUntil(f Fields, weekdays Weekdays, boundary time.Time) ([]Event, error) {
	f = normalize(f)
	if err := validateRecurring(f, weekdays); err != nil {
		return nil, err
	}
	if boundary.IsZero() {
		return nil, invalid("until", "is required")
	}
	if boundary.Before(f.End) {
		return nil, invalid("until", "%s is before the end of the first occurrence %s",
			boundary.Format(DateTimeLayout), f.End.Format(DateTimeLayout))
	}

	rec := Recurrence{SeriesID: uuid.New(), Weekdays: weekdays, Until: boundary}
	events := make([]Event, 0)
	for i := 0; ; i++ {
		candidate := occurrenceOn(cursor(f.Start, i), f, KindRecurringUntil, rec)
		if candidate.EndTime.After(boundary) {
			break
		}
		if !weekdays.Contains(candidate.StartTime.Weekday()) {
			continue
		}
		if len(events) == MaxOccurrences {
			return nil, invalid("until", "the rule produces more than %d occurrences", MaxOccurrences)
		}
		events = append(events, candidate)
	}
	if len(events) == 0 {
		return nil, invalid("until", "no %s day before %s", weekdays, boundary.Format(DateTimeLayout))
	}
	return events, nil
}

// cursor returns noon of the i-th civil day after start, so DST gaps at midnight cannot shift
// the date.
func cursor(start time.Time, i int) time.Time {
	y, m, d := start.Date()
	return time.Date(y, m, d+i, 12, 0, 0, 0, start.Location())
}

func occurrenceOn(day time.Time, f Fields, kind Kind, rec Recurrence) Event {
	if f.AllDay {
		f.Start = StartOfDay(day)
		f.End = StartOfNextDay(day)
	} else {
		f.Start = AtTimeOf(day, f.Start)
		f.End = AtTimeOf(day, f.End)
	}
	return newEvent(f, kind, rec)
}

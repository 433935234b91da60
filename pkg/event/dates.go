package event

import (
	"time"
)

// ParseDate reads yyyy-MM-dd as midnight in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, loc)
	if err != nil {
		return time.Time{}, invalid("date", "%q does not match %s", s, "yyyy-MM-dd")
	}
	return t, nil
}

// ParseDateTime reads yyyy-MM-ddTHH:mm in loc.
func ParseDateTime(s string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(DateTimeLayout, s, loc)
	if err != nil {
		return time.Time{}, invalid("date-time", "%q does not match %s", s, "yyyy-MM-ddTHH:mm")
	}
	return t, nil
}

// ParseTimeOfDay reads HH:mm and returns the hour and minute.
func ParseTimeOfDay(s string) (int, int, error) {
	t, err := time.Parse(TimeOfDayLayout, s)
	if err != nil {
		return 0, 0, invalid("time", "%q does not match %s", s, "HH:mm")
	}
	return t.Hour(), t.Minute(), nil
}

func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// StartOfNextDay is the exclusive end of the civil day containing t.
func StartOfNextDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, t.Location())
}

func SameDate(a, b time.Time) bool {
	y1, m1, d1 := a.Date()
	y2, m2, d2 := b.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// DaysBetween counts civil days from a's date to b's date, each read in its own location.
func DaysBetween(a, b time.Time) int {
	y1, m1, d1 := a.Date()
	y2, m2, d2 := b.Date()
	from := time.Date(y1, m1, d1, 0, 0, 0, 0, time.UTC)
	to := time.Date(y2, m2, d2, 0, 0, 0, 0, time.UTC)
	return int(to.Sub(from).Hours() / 24)
}

// AtTimeOf places the clock time of clock onto the civil date of date, in date's location.
func AtTimeOf(date, clock time.Time) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, clock.Hour(), clock.Minute(), clock.Second(), clock.Nanosecond(), date.Location())
}

// WallClockIn reads the date and clock of t in loc, which changes the instant.
func WallClockIn(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), loc)
}

// MinutesOfDay is the wall clock offset of t from its midnight, in minutes.
func MinutesOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

// ParseUntil reads the boundary of an until rule. A date-time is taken literally; a bare date
// means the end of that day, which is the start of the next one.
func ParseUntil(s string, loc *time.Location) (time.Time, error) {
	if t, err := time.ParseInLocation(DateTimeLayout, s, loc); err == nil {
		return t, nil
	}
	d, err := time.ParseInLocation(DateLayout, s, loc)
	if err != nil {
		return time.Time{}, invalid("until", "%q is neither yyyy-MM-dd nor yyyy-MM-ddTHH:mm", s)
	}
	return StartOfNextDay(d), nil
}

// ParseMoment reads either a full date-time or HH:mm. The latter is placed on the civil date
// of ref.
func ParseMoment(s string, ref time.Time, loc *time.Location) (time.Time, error) {
	if t, err := time.ParseInLocation(DateTimeLayout, s, loc); err == nil {
		return t, nil
	}
	h, m, err := ParseTimeOfDay(s)
	if err != nil {
		return time.Time{}, invalid("date-time", "%q is neither yyyy-MM-ddTHH:mm nor HH:mm", s)
	}
	y, mo, d := ref.In(loc).Date()
	return time.Date(y, mo, d, h, m, 0, 0, loc), nil
}

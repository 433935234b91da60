package event

import (
	"sort"
)

// CheckConflict reports the first existing event, by start time, that the candidate overlaps.
// Only events starting on the candidate's start date are considered. An all-day event on either
// side blocks the whole day; otherwise intervals that merely touch do not conflict.
func CheckConflict(candidate Event, existing []Event) error {
	sameDay := make([]Event, 0, len(existing))
	for _, e := range existing {
		if SameDate(e.StartTime.In(candidate.StartTime.Location()), candidate.StartTime) {
			sameDay = append(sameDay, e)
		}
	}
	sort.SliceStable(sameDay, func(i, j int) bool {
		return sameDay[i].StartTime.Before(sameDay[j].StartTime)
	})

	for _, e := range sameDay {
		if overlaps(candidate, e) {
			return &ConflictError{Candidate: candidate, Existing: e}
		}
	}
	return nil
}

func overlaps(c, e Event) bool {
	if c.AllDay || e.AllDay {
		return true
	}
	swallowsStart := c.StartTime.Before(e.StartTime) && c.EndTime.After(e.StartTime)
	startsInside := e.StartTime.Before(c.StartTime) && e.EndTime.After(c.StartTime)
	identical := c.StartTime.Equal(e.StartTime) && c.EndTime.Equal(e.EndTime)
	return swallowsStart || startsInside || identical
}

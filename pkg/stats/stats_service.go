package stats

import (
	"context"
	"fmt"
	"time"

	"github.com/klokku/klokku-calendar/pkg/calendar"
	"github.com/klokku/klokku-calendar/pkg/event"
	log "github.com/sirupsen/logrus"
)

type StatsService interface {
	GetStats(ctx context.Context, from time.Time, to time.Time) (StatsSummary, error)
}

// CalendarProvider returns the calendar the statistics are computed for.
type CalendarProvider func() calendar.Calendar

type StatsServiceImpl struct {
	calendar CalendarProvider
}

func NewStatsServiceImpl(calendar CalendarProvider) *StatsServiceImpl {
	return &StatsServiceImpl{calendar: calendar}
}

// GetStats summarizes the events starting on the dates from..to, both inclusive, read in the
// calendar's timezone.
func (s *StatsServiceImpl) GetStats(ctx context.Context, from time.Time, to time.Time) (StatsSummary, error) {
	if event.DaysBetween(from, to) < 0 {
		return StatsSummary{}, &event.ValidationError{Field: "to", Reason: fmt.Sprintf("%s is before %s", to.Format(event.DateLayout), from.Format(event.DateLayout))}
	}
	cal := s.calendar()
	loc := cal.Location()
	from = dateIn(from, loc)
	to = dateIn(to, loc)

	events, err := cal.Events(ctx)
	if err != nil {
		return StatsSummary{}, fmt.Errorf("failed to get events: %w", err)
	}
	log.Tracef("summarizing %d events between %s and %s", len(events), from.Format(event.DateLayout), to.Format(event.DateLayout))
	return Summarize(events, from, to), nil
}

// dateIn keeps the civil date of t and moves it to midnight in loc.
func dateIn(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

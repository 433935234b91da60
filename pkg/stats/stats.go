package stats

import (
	"sort"
	"strings"
	"time"

	"github.com/klokku/klokku-calendar/pkg/event"
)

type DailyStats struct {
	Date      time.Time
	Subjects  []SubjectStats
	Events    int
	TotalTime time.Duration
}

type SubjectStats struct {
	Subject  string
	Events   int
	Duration time.Duration
}

type WeekdayStats struct {
	Weekday time.Weekday
	Events  int
}

// PeriodStats counts events per week or per month. Start is the first day of the period.
type PeriodStats struct {
	Start  time.Time
	Events int
}

type StatsSummary struct {
	StartDate     time.Time
	EndDate       time.Time
	Days          []DailyStats
	Subjects      []SubjectStats
	Weekdays      []WeekdayStats
	Weeks         []PeriodStats
	Months        []PeriodStats
	TotalEvents   int
	TotalTime     time.Duration
	AveragePerDay float64
	BusiestDay    time.Time
	LeastBusyDay  time.Time
	// Percentages are in the 0-100 range and 0 when there are no events.
	OnlinePercent  float64
	PrivatePercent float64
	AllDayPercent  float64
}

// Summarize aggregates the events starting on a date in [from, to]. Dates are read in the
// location of from. Weeks start on Monday.
func Summarize(events []event.Event, from, to time.Time) StatsSummary {
	loc := from.Location()
	from = event.StartOfDay(from)
	to = event.StartOfDay(to.In(loc))

	days := make([]DailyStats, 0, event.DaysBetween(from, to)+1)
	for date := from; !date.After(to); date = date.AddDate(0, 0, 1) {
		days = append(days, DailyStats{Date: date})
	}

	summary := StatsSummary{StartDate: from, EndDate: to}
	bySubject := make(map[string]*SubjectStats)
	byWeekday := make(map[time.Weekday]int)
	byWeek := make(map[time.Time]int)
	byMonth := make(map[time.Time]int)
	var online, private, allDay int

	for _, e := range events {
		start := e.StartTime.In(loc)
		idx := event.DaysBetween(from, start)
		if idx < 0 || idx >= len(days) {
			continue
		}
		duration := e.Duration()

		day := &days[idx]
		day.Events++
		day.TotalTime += duration
		day.Subjects = addSubject(day.Subjects, e.Subject, duration)

		s, ok := bySubject[e.Subject]
		if !ok {
			s = &SubjectStats{Subject: e.Subject}
			bySubject[e.Subject] = s
		}
		s.Events++
		s.Duration += duration

		byWeekday[start.Weekday()]++
		byWeek[weekStart(day.Date)]++
		byMonth[time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, loc)]++

		summary.TotalEvents++
		summary.TotalTime += duration
		if strings.EqualFold(strings.TrimSpace(e.Location), "online") {
			online++
		}
		if e.Private {
			private++
		}
		if e.AllDay {
			allDay++
		}
	}

	summary.Days = days
	for _, s := range bySubject {
		summary.Subjects = append(summary.Subjects, *s)
	}
	sort.Slice(summary.Subjects, func(i, j int) bool {
		a, b := summary.Subjects[i], summary.Subjects[j]
		if a.Events != b.Events {
			return a.Events > b.Events
		}
		return a.Subject < b.Subject
	})
	for _, d := range []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday, time.Sunday} {
		summary.Weekdays = append(summary.Weekdays, WeekdayStats{Weekday: d, Events: byWeekday[d]})
	}
	summary.Weeks = periods(byWeek)
	summary.Months = periods(byMonth)

	if len(days) > 0 {
		summary.AveragePerDay = float64(summary.TotalEvents) / float64(len(days))
		busiest, least := days[0], days[0]
		for _, d := range days[1:] {
			if d.Events > busiest.Events {
				busiest = d
			}
			if d.Events < least.Events {
				least = d
			}
		}
		summary.BusiestDay = busiest.Date
		summary.LeastBusyDay = least.Date
	}
	summary.OnlinePercent = percent(online, summary.TotalEvents)
	summary.PrivatePercent = percent(private, summary.TotalEvents)
	summary.AllDayPercent = percent(allDay, summary.TotalEvents)
	return summary
}

func addSubject(subjects []SubjectStats, subject string, duration time.Duration) []SubjectStats {
	for i := range subjects {
		if subjects[i].Subject == subject {
			subjects[i].Events++
			subjects[i].Duration += duration
			return subjects
		}
	}
	return append(subjects, SubjectStats{Subject: subject, Events: 1, Duration: duration})
}

func weekStart(date time.Time) time.Time {
	offset := (int(date.Weekday()) + 6) % 7
	return date.AddDate(0, 0, -offset)
}

func periods(counts map[time.Time]int) []PeriodStats {
	result := make([]PeriodStats, 0, len(counts))
	for start, n := range counts {
		result = append(result, PeriodStats{Start: start, Events: n})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Start.Before(result[j].Start)
	})
	return result
}

func percent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) * 100 / float64(total)
}

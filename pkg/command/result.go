package command

import (
	"fmt"
	"strings"

	"github.com/klokku/klokku-calendar/pkg/event"
	"github.com/klokku/klokku-calendar/pkg/registry"
	"github.com/klokku/klokku-calendar/pkg/stats"
)

// Result is what one command produced. Only the fields that apply are set.
type Result struct {
	Message   string
	Events    []event.Event
	Calendars []*registry.Calendar
	Active    string
	Stats     *stats.StatsSummary
	// Exit asks the command loop to stop.
	Exit bool
}

// Format renders a result as text for the command loop.
func Format(r Result) string {
	var b strings.Builder
	if r.Message != "" {
		b.WriteString(r.Message)
		b.WriteString("\n")
	}
	for _, e := range r.Events {
		b.WriteString(FormatEvent(e))
		b.WriteString("\n")
	}
	for _, cal := range r.Calendars {
		marker := " "
		if cal.Name == r.Active {
			marker = "*"
		}
		fmt.Fprintf(&b, "%s %s (%s)\n", marker, cal.Name, cal.Location())
	}
	if r.Stats != nil {
		b.WriteString(formatStats(*r.Stats))
	}
	return b.String()
}

func FormatEvent(e event.Event) string {
	var b strings.Builder
	b.WriteString("- ")
	b.WriteString(e.Subject)
	if e.AllDay {
		fmt.Fprintf(&b, " on %s (all day)", e.StartTime.Format(event.DateLayout))
	} else {
		fmt.Fprintf(&b, " from %s to %s", e.StartTime.Format(event.DateTimeLayout), e.EndTime.Format(event.DateTimeLayout))
	}
	if e.Location != "" {
		fmt.Fprintf(&b, " at %s", e.Location)
	}
	if e.IsRecurring() {
		fmt.Fprintf(&b, " [repeats %s]", e.Recurrence.Weekdays)
	}
	if e.Private {
		b.WriteString(" (private)")
	}
	return b.String()
}

func formatStats(s stats.StatsSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Dashboard %s to %s\n", s.StartDate.Format(event.DateLayout), s.EndDate.Format(event.DateLayout))
	fmt.Fprintf(&b, "Total events: %d\n", s.TotalEvents)
	fmt.Fprintf(&b, "Average events per day: %.2f\n", s.AveragePerDay)
	if !s.BusiestDay.IsZero() {
		fmt.Fprintf(&b, "Busiest day: %s\n", s.BusiestDay.Format(event.DateLayout))
		fmt.Fprintf(&b, "Least busy day: %s\n", s.LeastBusyDay.Format(event.DateLayout))
	}
	if len(s.Subjects) > 0 {
		b.WriteString("By subject:\n")
		for _, subject := range s.Subjects {
			fmt.Fprintf(&b, "  %s: %d\n", subject.Subject, subject.Events)
		}
	}
	b.WriteString("By weekday:\n")
	for _, w := range s.Weekdays {
		fmt.Fprintf(&b, "  %s: %d\n", w.Weekday, w.Events)
	}
	if len(s.Weeks) > 0 {
		b.WriteString("By week:\n")
		for _, w := range s.Weeks {
			fmt.Fprintf(&b, "  %s: %d\n", w.Start.Format(event.DateLayout), w.Events)
		}
	}
	if len(s.Months) > 0 {
		b.WriteString("By month:\n")
		for _, m := range s.Months {
			fmt.Fprintf(&b, "  %s: %d\n", m.Start.Format("2006-01"), m.Events)
		}
	}
	fmt.Fprintf(&b, "Online: %.1f%%\n", s.OnlinePercent)
	fmt.Fprintf(&b, "Private: %.1f%%\n", s.PrivatePercent)
	fmt.Fprintf(&b, "All day: %.1f%%\n", s.AllDayPercent)
	return b.String()
}

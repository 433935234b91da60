package calendar_io

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/google/uuid"
	"github.com/klokku/klokku-calendar/pkg/event"
	log "github.com/sirupsen/logrus"
	"github.com/teambition/rrule-go"
)

const (
	icsDateTimeLayout = "20060102T150405"
	icsDateLayout     = "20060102"
)

var rruleDays = []rrule.Weekday{rrule.SU, rrule.MO, rrule.TU, rrule.WE, rrule.TH, rrule.FR, rrule.SA}

// WriteICS writes the events as one VCALENDAR. A series whose stored occurrences still follow
// its weekly rule becomes one VEVENT with an RRULE; every other event is written on its own.
func WriteICS(w io.Writer, name string, loc *time.Location, events []event.Event, stamp time.Time) error {
	cal := ical.NewCalendarFor("klokku-calendar")
	cal.SetMethod(ical.MethodPublish)
	cal.SetXWRCalName(name)
	cal.SetXWRTimezone(loc.String())

	series := make(map[uuid.UUID][]event.Event)
	order := make([]uuid.UUID, 0)
	for _, e := range events {
		if !e.IsRecurring() {
			addVEvent(cal, e.ID.String(), e, stamp)
			continue
		}
		id := e.SeriesID()
		if _, seen := series[id]; !seen {
			order = append(order, id)
		}
		series[id] = append(series[id], e)
	}

	for _, id := range order {
		members := series[id]
		rule, ok := seriesRule(members)
		if !ok {
			log.Debugf("series %s of %q no longer follows its rule, writing %d occurrences", id, members[0].Subject, len(members))
			for _, m := range members {
				addVEvent(cal, m.ID.String(), m, stamp)
			}
			continue
		}
		ve := addVEvent(cal, id.String(), members[0], stamp)
		ve.SetProperty(ical.ComponentPropertyRrule, rule.String())
	}

	_, err := io.WriteString(w, cal.Serialize())
	return err
}

func addVEvent(cal *ical.Calendar, uid string, e event.Event, stamp time.Time) *ical.VEvent {
	ve := cal.AddEvent(uid)
	ve.SetDtStampTime(stamp)
	ve.SetSummary(e.Subject)
	if e.AllDay {
		ve.SetAllDayStartAt(e.StartTime)
		ve.SetAllDayEndAt(e.EndTime)
	} else {
		tzid := ical.WithTZID(e.StartTime.Location().String())
		ve.SetProperty(ical.ComponentPropertyDtStart, e.StartTime.Format(icsDateTimeLayout), tzid)
		ve.SetProperty(ical.ComponentPropertyDtEnd, e.EndTime.Format(icsDateTimeLayout), tzid)
	}
	if e.Description != "" {
		ve.SetDescription(e.Description)
	}
	if e.Location != "" {
		ve.SetLocation(e.Location)
	}
	if e.Private {
		ve.SetProperty(ical.ComponentPropertyClass, "PRIVATE")
	}
	return ve
}

// seriesRule returns the weekly rule that reproduces members, which are ordered by start. The
// second result is false when edits made the series irregular.
func seriesRule(members []event.Event) (rrule.ROption, bool) {
	first := members[0]
	rec := first.Recurrence
	rule := rrule.ROption{Freq: rrule.WEEKLY, Byweekday: toRRuleDays(rec.Weekdays)}
	switch first.Kind {
	case event.KindRecurringBySequence:
		rule.Count = len(members)
	case event.KindRecurringUntil:
		// UNTIL bounds the start of an occurrence, the stored boundary its end.
		rule.Until = rec.Until.Add(-first.Duration())
	default:
		return rule, false
	}

	check := rule
	check.Dtstart = first.StartTime
	r, err := rrule.NewRRule(check)
	if err != nil {
		return rule, false
	}
	starts := r.All()
	if len(starts) != len(members) {
		return rule, false
	}
	for i, m := range members {
		if !starts[i].Equal(m.StartTime) || m.Duration() != first.Duration() {
			return rule, false
		}
	}
	return rule, true
}

func toRRuleDays(w event.Weekdays) []rrule.Weekday {
	days := make([]rrule.Weekday, 0, 7)
	for _, d := range w.Days() {
		days = append(days, rruleDays[d])
	}
	return days
}

func fromRRuleDays(days []rrule.Weekday) event.Weekdays {
	var w event.Weekdays
	for _, d := range days {
		w |= event.NewWeekdays(time.Weekday((d.Day() + 1) % 7))
	}
	return w
}

// ReadICS reads every VEVENT of an iCalendar stream. Weekly and daily rules with a count or an
// end become series; any other rule is expanded into single events, at most
// event.MaxOccurrences per VEVENT. Floating times are read in loc.
func ReadICS(r io.Reader, loc *time.Location) ([]event.Event, error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read ics: %w", err)
	}
	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return nil, &event.ValidationError{Field: "ics", Reason: err.Error()}
	}

	events := make([]event.Event, 0)
	for _, ve := range cal.Events() {
		imported, err := readVEvent(ve, loc)
		if err != nil {
			return nil, err
		}
		events = append(events, imported...)
	}
	return events, nil
}

func readVEvent(ve *ical.VEvent, loc *time.Location) ([]event.Event, error) {
	record, err := vEventRecord(ve, loc)
	if err != nil {
		return nil, err
	}
	rruleProp := ve.GetProperty(ical.ComponentPropertyRrule)
	if rruleProp == nil || rruleProp.Value == "" {
		e, err := record.Event()
		if err != nil {
			return nil, err
		}
		return []event.Event{e}, nil
	}

	opt, err := rrule.StrToROptionInLocation(rruleProp.Value, record.Start.Location())
	if err != nil {
		return nil, &event.ValidationError{Field: "rrule", Reason: fmt.Sprintf("%q: %v", rruleProp.Value, err)}
	}
	if weekdays, ok := asWeekdayRule(opt, record); ok {
		if opt.Count > 0 {
			return event.ExpandBySequence(record.Fields(), weekdays, opt.Count)
		}
		return event.ExpandUntil(record.Fields(), weekdays, opt.Until.In(record.Start.Location()).Add(record.End.Sub(record.Start)))
	}
	return expandRule(*opt, record)
}

// asWeekdayRule reports whether opt is a plain daily or weekly rule that the series model can
// hold, and returns its weekday set.
func asWeekdayRule(opt *rrule.ROption, record Record) (event.Weekdays, bool) {
	if opt.Interval > 1 || (opt.Count == 0 && opt.Until.IsZero()) {
		return 0, false
	}
	if len(opt.Bysetpos)+len(opt.Bymonth)+len(opt.Bymonthday)+len(opt.Byyearday)+len(opt.Byweekno)+
		len(opt.Byhour)+len(opt.Byminute)+len(opt.Bysecond)+len(opt.Byeaster) > 0 {
		return 0, false
	}
	if !record.AllDay && !event.SameDate(record.Start, record.End) {
		return 0, false
	}
	switch opt.Freq {
	case rrule.DAILY:
		if len(opt.Byweekday) > 0 {
			return fromRRuleDays(opt.Byweekday), true
		}
		return event.NewWeekdays(time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday, time.Sunday), true
	case rrule.WEEKLY:
		if len(opt.Byweekday) > 0 {
			return fromRRuleDays(opt.Byweekday), true
		}
		return event.NewWeekdays(record.Start.Weekday()), true
	}
	return 0, false
}

func expandRule(opt rrule.ROption, record Record) ([]event.Event, error) {
	opt.Dtstart = record.Start
	if opt.Count == 0 && opt.Until.IsZero() {
		opt.Count = event.MaxOccurrences
	}
	r, err := rrule.NewRRule(opt)
	if err != nil {
		return nil, &event.ValidationError{Field: "rrule", Reason: err.Error()}
	}
	starts := r.All()
	if len(starts) > event.MaxOccurrences {
		log.Debugf("truncating %q to %d occurrences", record.Subject, event.MaxOccurrences)
		starts = starts[:event.MaxOccurrences]
	}
	duration := record.End.Sub(record.Start)
	events := make([]event.Event, 0, len(starts))
	for _, start := range starts {
		occurrence := record
		occurrence.Start = start
		occurrence.End = start.Add(duration)
		e, err := occurrence.Event()
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, nil
}

func vEventRecord(ve *ical.VEvent, loc *time.Location) (Record, error) {
	var record Record
	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		record.Subject = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyDescription); p != nil {
		record.Description = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyLocation); p != nil {
		record.Location = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyClass); p != nil {
		record.Private = strings.EqualFold(p.Value, "PRIVATE") || strings.EqualFold(p.Value, "CONFIDENTIAL")
	}

	dtStart := ve.GetProperty(ical.ComponentPropertyDtStart)
	if dtStart == nil {
		return record, &event.ValidationError{Field: "ics", Reason: fmt.Sprintf("%q has no DTSTART", record.Subject)}
	}
	if !strings.Contains(dtStart.Value, "T") {
		start, err := time.ParseInLocation(icsDateLayout, dtStart.Value, loc)
		if err != nil {
			return record, &event.ValidationError{Field: "ics", Reason: fmt.Sprintf("%q: bad DTSTART %q", record.Subject, dtStart.Value)}
		}
		record.AllDay = true
		record.Start = start
		record.End = start
		return record, nil
	}

	start, err := icsTime(dtStart, loc)
	if err != nil {
		return record, &event.ValidationError{Field: "ics", Reason: fmt.Sprintf("%q: %v", record.Subject, err)}
	}
	record.Start = start
	record.End = start
	if dtEnd := ve.GetProperty(ical.ComponentPropertyDtEnd); dtEnd != nil {
		if record.End, err = icsTime(dtEnd, loc); err != nil {
			return record, &event.ValidationError{Field: "ics", Reason: fmt.Sprintf("%q: %v", record.Subject, err)}
		}
	}
	return record, nil
}

// icsTime reads a DATE-TIME value: UTC with a Z suffix, zoned through TZID, or floating in loc.
func icsTime(p *ical.IANAProperty, loc *time.Location) (time.Time, error) {
	value := strings.TrimSpace(p.Value)
	if strings.HasSuffix(value, "Z") {
		t, err := time.Parse(icsDateTimeLayout+"Z", value)
		if err != nil {
			return time.Time{}, err
		}
		return t.In(loc), nil
	}
	if tzids, ok := p.ICalParameters[string(ical.ParameterTzid)]; ok && len(tzids) > 0 {
		zone, err := time.LoadLocation(tzids[0])
		if err != nil {
			return time.Time{}, fmt.Errorf("unknown TZID %q", tzids[0])
		}
		loc = zone
	}
	return time.ParseInLocation(icsDateTimeLayout, value, loc)
}

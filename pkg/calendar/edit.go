package calendar

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/klokku/klokku-calendar/pkg/event"
	log "github.com/sirupsen/logrus"
)

type Scope int

const (
	// ScopeSingle selects one event by subject, start and end.
	ScopeSingle Scope = iota
	// ScopeFollowing selects the events with the subject starting at or after Start.
	ScopeFollowing
	// ScopeAll selects every event with the subject.
	ScopeAll
)

type Selector struct {
	Scope   Scope
	Subject string
	Start   time.Time
	End     time.Time
}

// Change sets one property to a raw value, as it appears in a command.
type Change struct {
	Property string
	Value    string
}

const (
	PropertySubject     = "subject"
	PropertyName        = "name"
	PropertyStart       = "start"
	PropertyEnd         = "end"
	PropertyDescription = "description"
	PropertyLocation    = "location"
	PropertyVisibility  = "visibility"
	PropertyWeekdays    = "weekdays"
	PropertyOccurrences = "occurrences"
	PropertyUntil       = "until"
)

type edits struct {
	subject     *string
	description *string
	location    *string
	private     *bool
	start       string
	end         string
	weekdays    *event.Weekdays
	occurrences *int
	until       string
}

func parseChanges(changes []Change) (edits, error) {
	var ed edits
	if len(changes) == 0 {
		return ed, &event.ValidationError{Field: "property", Reason: "no change given"}
	}
	for _, c := range changes {
		value := c.Value
		switch strings.ToLower(c.Property) {
		case PropertySubject, PropertyName:
			ed.subject = &value
		case PropertyDescription:
			ed.description = &value
		case PropertyLocation:
			ed.location = &value
		case PropertyVisibility:
			private, err := ParseVisibility(value)
			if err != nil {
				return ed, err
			}
			ed.private = &private
		case PropertyStart:
			ed.start = value
		case PropertyEnd:
			ed.end = value
		case PropertyWeekdays:
			w, err := event.ParseWeekdays(value)
			if err != nil {
				return ed, err
			}
			ed.weekdays = &w
		case PropertyOccurrences:
			n, err := strconv.Atoi(value)
			if err != nil || n <= 0 {
				return ed, &event.ValidationError{Field: "occurrences", Reason: fmt.Sprintf("%q is not a positive number", value)}
			}
			ed.occurrences = &n
		case PropertyUntil:
			ed.until = value
		default:
			return ed, &event.ValidationError{Field: "property", Reason: fmt.Sprintf("unknown property %q", c.Property)}
		}
	}
	if ed.occurrences != nil && ed.until != "" {
		return ed, &event.ValidationError{Field: "property", Reason: "occurrences and until cannot both be set"}
	}
	return ed, nil
}

// ParseVisibility maps public|private to the private flag.
func ParseVisibility(value string) (bool, error) {
	switch strings.ToLower(value) {
	case "public":
		return false, nil
	case "private":
		return true, nil
	}
	return false, &event.ValidationError{Field: "visibility", Reason: fmt.Sprintf("%q is neither public nor private", value)}
}

func (ed edits) changesRule() bool {
	return ed.weekdays != nil || ed.occurrences != nil || ed.until != ""
}

func (ed edits) changesTime() bool {
	return ed.start != "" || ed.end != ""
}

// apply sets the changed properties on f. A new start without a new end keeps the duration.
// HH:mm values are placed on the date of f.
func (ed edits) apply(f event.Fields, loc *time.Location) (event.Fields, error) {
	if ed.subject != nil {
		f.Subject = *ed.subject
	}
	if ed.description != nil {
		f.Description = *ed.description
	}
	if ed.location != nil {
		f.Location = *ed.location
	}
	if ed.private != nil {
		f.Private = *ed.private
	}
	if ed.start != "" {
		start, err := event.ParseMoment(ed.start, f.Start, loc)
		if err != nil {
			return f, err
		}
		duration := f.End.Sub(f.Start)
		f.Start = start
		if ed.end == "" {
			f.End = start.Add(duration)
		}
	}
	if ed.end != "" {
		end, err := event.ParseMoment(ed.end, f.Start, loc)
		if err != nil {
			return f, err
		}
		f.End = end
	}
	return f, nil
}

type editPlan struct {
	remove []event.Event
	update []event.Event
	insert []event.Event
}

func (p *editPlan) merge(other editPlan) {
	p.remove = append(p.remove, other.remove...)
	p.update = append(p.update, other.update...)
	p.insert = append(p.insert, other.insert...)
}

// Edit changes the selected events. Every new version is conflict checked against the rest of
// the calendar; if any of them conflicts nothing changes. It returns the new versions.
func (s *Service) Edit(ctx context.Context, sel Selector, changes ...Change) ([]event.Event, error) {
	if strings.TrimSpace(sel.Subject) == "" {
		return nil, &event.ValidationError{Field: "subject", Reason: "must not be empty"}
	}
	ed, err := parseChanges(changes)
	if err != nil {
		return nil, err
	}

	var plan editPlan
	err = s.repo.WithTransaction(ctx, func(repo Repository) error {
		var err error
		switch sel.Scope {
		case ScopeSingle:
			plan, err = s.planSingle(ctx, repo, sel, ed)
		case ScopeFollowing, ScopeAll:
			plan, err = s.planSeries(ctx, repo, sel, ed)
		default:
			err = &event.ValidationError{Field: "scope", Reason: fmt.Sprintf("unknown scope %d", sel.Scope)}
		}
		if err != nil {
			return err
		}
		return commit(ctx, repo, plan)
	})
	if err != nil {
		return nil, err
	}
	log.Debugf("edited %q: %d removed, %d inserted, %d updated", sel.Subject, len(plan.remove), len(plan.insert), len(plan.update))
	s.notify(ctx, MutationUpdated, append(plan.insert, plan.update...))
	return plan.insert, nil
}

// commit removes first so new versions are only checked against what stays.
func commit(ctx context.Context, repo Repository, plan editPlan) error {
	for _, e := range plan.remove {
		if err := repo.DeleteEvent(ctx, e.ID); err != nil {
			return fmt.Errorf("failed to delete event: %w", err)
		}
	}
	for _, e := range plan.update {
		if err := repo.UpdateEvent(ctx, e); err != nil {
			return fmt.Errorf("failed to update event: %w", err)
		}
	}
	for _, e := range plan.insert {
		if err := insert(ctx, repo, e, AutoDecline); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) planSingle(ctx context.Context, repo Repository, sel Selector, ed edits) (editPlan, error) {
	if ed.changesRule() {
		return editPlan{}, &event.ValidationError{Field: "property", Reason: "weekdays, occurrences and until apply to a series"}
	}
	candidates, err := repo.GetEvents(ctx, sel.Start, sel.Start.Add(time.Nanosecond))
	if err != nil {
		return editPlan{}, fmt.Errorf("failed to get events: %w", err)
	}
	for _, old := range candidates {
		if old.Matches(sel.Subject, sel.Start, sel.End) {
			return s.planReplace(old, ed)
		}
	}
	return editPlan{}, event.EventNotFound(sel.Subject, sel.Start)
}

func (s *Service) planReplace(old event.Event, ed edits) (editPlan, error) {
	f, err := ed.apply(old.Fields(), s.loc)
	if err != nil {
		return editPlan{}, err
	}
	next, err := event.Rebuild(old, f)
	if err != nil {
		return editPlan{}, err
	}
	return editPlan{remove: []event.Event{old}, insert: []event.Event{next}}, nil
}

func (s *Service) planSeries(ctx context.Context, repo Repository, sel Selector, ed edits) (editPlan, error) {
	all, err := repo.GetAllEvents(ctx)
	if err != nil {
		return editPlan{}, fmt.Errorf("failed to get events: %w", err)
	}
	from := sel.Start
	if sel.Scope == ScopeAll {
		from = time.Time{}
	}

	var plan editPlan
	var seriesIDs []uuid.UUID
	seen := make(map[uuid.UUID]bool)
	matched := 0
	for _, e := range all {
		if e.Subject != sel.Subject || e.StartTime.Before(from) {
			continue
		}
		matched++
		if !e.IsRecurring() {
			if ed.changesRule() {
				return editPlan{}, &event.ValidationError{Field: "property", Reason: fmt.Sprintf("%q is not a recurring event", e.Subject)}
			}
			single, err := s.planReplace(e, ed)
			if err != nil {
				return editPlan{}, err
			}
			plan.merge(single)
			continue
		}
		if !seen[e.SeriesID()] {
			seen[e.SeriesID()] = true
			seriesIDs = append(seriesIDs, e.SeriesID())
		}
	}
	if matched == 0 {
		return editPlan{}, event.EventNotFound(sel.Subject, sel.Start)
	}

	for _, id := range seriesIDs {
		members, err := repo.GetSeries(ctx, id)
		if err != nil {
			return editPlan{}, err
		}
		part, err := s.planSeriesPart(members, sel.Subject, from, ed)
		if err != nil {
			return editPlan{}, err
		}
		plan.merge(part)
	}
	return plan, nil
}

// planSeriesPart edits the members of one series named subject that start at or after from.
// Members that stay behind, earlier ones or ones renamed on their own, keep the series id and
// are trimmed to what remains. The edited part then becomes a new series.
func (s *Service) planSeriesPart(members []event.Event, subject string, from time.Time, ed edits) (editPlan, error) {
	var affected, remaining []event.Event
	for _, e := range members {
		if e.Subject == subject && !e.StartTime.Before(from) {
			affected = append(affected, e)
		} else {
			remaining = append(remaining, e)
		}
	}
	anchor := affected[0]
	seriesID := anchor.SeriesID()

	var next []event.Event
	var err error
	if ed.changesTime() || ed.changesRule() {
		next, err = s.reexpand(anchor, len(affected), ed)
	} else {
		next, err = s.rebuildInPlace(affected, ed)
	}
	if err != nil {
		return editPlan{}, err
	}
	if len(remaining) == 0 {
		next = event.LinkSeries(next, seriesID)
	}

	plan := editPlan{remove: affected, insert: next}
	for _, e := range remaining {
		switch e.Kind {
		case event.KindRecurringBySequence:
			e.Recurrence.Occurrences = len(remaining)
		case event.KindRecurringUntil:
			e.Recurrence.Until = remaining[len(remaining)-1].EndTime
		}
		plan.update = append(plan.update, e)
	}
	return plan, nil
}

// reexpand runs the expansion again from the anchor with the edited template and rule.
func (s *Service) reexpand(anchor event.Event, remaining int, ed edits) ([]event.Event, error) {
	f, err := ed.apply(anchor.Fields(), s.loc)
	if err != nil {
		return nil, err
	}
	rec := anchor.Recurrence
	weekdays := rec.Weekdays
	if ed.weekdays != nil {
		weekdays = *ed.weekdays
	}

	switch {
	case ed.occurrences != nil:
		return event.ExpandBySequence(f, weekdays, *ed.occurrences)
	case ed.until != "":
		boundary, err := event.ParseUntil(ed.until, s.loc)
		if err != nil {
			return nil, err
		}
		return event.ExpandUntil(f, weekdays, boundary)
	case anchor.Kind == event.KindRecurringUntil:
		return event.ExpandUntil(f, weekdays, rec.Until)
	default:
		return event.ExpandBySequence(f, weekdays, remaining)
	}
}

// rebuildInPlace applies property edits to every occurrence without moving any of them.
func (s *Service) rebuildInPlace(affected []event.Event, ed edits) ([]event.Event, error) {
	rec := affected[0].Recurrence
	rec.SeriesID = uuid.New()
	if affected[0].Kind == event.KindRecurringBySequence {
		rec.Occurrences = len(affected)
	}
	next := make([]event.Event, 0, len(affected))
	for _, old := range affected {
		f, err := ed.apply(old.Fields(), s.loc)
		if err != nil {
			return nil, err
		}
		e, err := event.BuildOccurrence(f, old.Kind, rec)
		if err != nil {
			return nil, err
		}
		e.ID = old.ID
		next = append(next, e)
	}
	return next, nil
}

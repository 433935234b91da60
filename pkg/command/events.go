package command

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/klokku/klokku-calendar/pkg/calendar"
	"github.com/klokku/klokku-calendar/pkg/event"
)

// create event [--autoDecline] <name> (from <dt> to <dt> | on <date>)
// [repeats <weekdays> (for <n> times | until <date>)]
// [description <text>] [location <text>] [visibility <public|private>]
func (d *Dispatcher) createEvent(ctx context.Context, c *cursor) (Result, error) {
	cal := d.registry.Active()
	loc := cal.Location()
	policy := d.policy
	if c.accept("--autoDecline") {
		policy = calendar.AutoDecline
	}

	subject, err := c.value("event name")
	if err != nil {
		return Result{}, err
	}
	f := event.Fields{Subject: subject}
	switch {
	case c.accept("from"):
		if f.Start, err = c.dateTime("start", loc); err != nil {
			return Result{}, err
		}
		if err := c.expect("to"); err != nil {
			return Result{}, err
		}
		if f.End, err = c.dateTime("end", loc); err != nil {
			return Result{}, err
		}
	case c.accept("on"):
		if f.Start, err = c.date("date", loc); err != nil {
			return Result{}, err
		}
		f.End = f.Start
		f.AllDay = true
	default:
		return Result{}, c.fail("expected from <date-time> to <date-time> or on <date>")
	}

	var (
		weekdays    string
		occurrences int
		until       time.Time
	)
	if c.accept("repeats") {
		if weekdays, err = c.value("weekdays"); err != nil {
			return Result{}, err
		}
		switch {
		case c.accept("for"):
			if occurrences, err = c.number("number of occurrences"); err != nil {
				return Result{}, err
			}
			if err := c.expect("times"); err != nil {
				return Result{}, err
			}
		case c.accept("until"):
			if until, err = c.until(loc); err != nil {
				return Result{}, err
			}
		default:
			return Result{}, c.fail("expected for <n> times or until <date>")
		}
	}

	for c.more() {
		keyword, _ := c.value("property")
		value, err := c.value(keyword + " value")
		if err != nil {
			return Result{}, err
		}
		switch strings.ToLower(keyword) {
		case "description":
			f.Description = value
		case "location":
			f.Location = value
		case "visibility":
			if f.Private, err = calendar.ParseVisibility(value); err != nil {
				return Result{}, c.fail("visibility %q is neither public nor private", value)
			}
		default:
			return Result{}, c.fail("unexpected %q", keyword)
		}
	}

	events, err := buildEvents(f, weekdays, occurrences, until)
	if err != nil {
		return Result{}, err
	}
	if err := cal.Store.CreateSeries(ctx, events, policy); err != nil {
		return Result{}, err
	}
	return Result{Message: fmt.Sprintf("Created %s in %s", plural(len(events), "event"), cal.Name), Events: events}, nil
}

func buildEvents(f event.Fields, weekdayCodes string, occurrences int, until time.Time) ([]event.Event, error) {
	if weekdayCodes == "" {
		var (
			e   event.Event
			err error
		)
		if f.AllDay {
			e, err = event.BuildAllDay(f, f.Start)
		} else {
			e, err = event.BuildSingle(f)
		}
		if err != nil {
			return nil, err
		}
		return []event.Event{e}, nil
	}
	weekdays, err := event.ParseWeekdays(weekdayCodes)
	if err != nil {
		return nil, err
	}
	if until.IsZero() {
		return event.ExpandBySequence(f, weekdays, occurrences)
	}
	return event.ExpandUntil(f, weekdays, until)
}

// edit event <property> <name> from <dt> to <dt> with <value>
func (d *Dispatcher) editEvent(ctx context.Context, c *cursor) (Result, error) {
	cal := d.registry.Active()
	loc := cal.Location()
	property, err := c.value("property")
	if err != nil {
		return Result{}, err
	}
	sel := calendar.Selector{Scope: calendar.ScopeSingle}
	if sel.Subject, err = c.value("event name"); err != nil {
		return Result{}, err
	}
	if err := c.expect("from"); err != nil {
		return Result{}, err
	}
	if sel.Start, err = c.dateTime("start", loc); err != nil {
		return Result{}, err
	}
	if err := c.expect("to"); err != nil {
		return Result{}, err
	}
	if sel.End, err = c.dateTime("end", loc); err != nil {
		return Result{}, err
	}
	return d.edit(ctx, c, cal.Store, sel, property)
}

// edit events <property> <name> [from <dt>] with <value>
func (d *Dispatcher) editEvents(ctx context.Context, c *cursor) (Result, error) {
	cal := d.registry.Active()
	property, err := c.value("property")
	if err != nil {
		return Result{}, err
	}
	sel := calendar.Selector{Scope: calendar.ScopeAll}
	if sel.Subject, err = c.value("event name"); err != nil {
		return Result{}, err
	}
	if c.accept("from") {
		sel.Scope = calendar.ScopeFollowing
		if sel.Start, err = c.dateTime("start", cal.Location()); err != nil {
			return Result{}, err
		}
	}
	return d.edit(ctx, c, cal.Store, sel, property)
}

func (d *Dispatcher) edit(ctx context.Context, c *cursor, store *calendar.Service, sel calendar.Selector, property string) (Result, error) {
	value, err := c.keywordValue("with", "new value")
	if err != nil {
		return Result{}, err
	}
	if err := c.end(); err != nil {
		return Result{}, err
	}
	edited, err := store.Edit(ctx, sel, calendar.Change{Property: property, Value: value})
	if err != nil {
		return Result{}, err
	}
	return Result{Message: fmt.Sprintf("Edited %s", plural(len(edited), "event")), Events: edited}, nil
}

// print events (on <date> | from <dt> to <dt>)
func (d *Dispatcher) printEvents(ctx context.Context, c *cursor) (Result, error) {
	cal := d.registry.Active()
	loc := cal.Location()
	var events []event.Event
	switch {
	case c.accept("on"):
		date, err := c.date("date", loc)
		if err != nil {
			return Result{}, err
		}
		if err := c.end(); err != nil {
			return Result{}, err
		}
		if events, err = cal.Store.Query(ctx, date); err != nil {
			return Result{}, err
		}
	case c.accept("from"):
		from, err := c.dateTime("start", loc)
		if err != nil {
			return Result{}, err
		}
		if err := c.expect("to"); err != nil {
			return Result{}, err
		}
		to, err := c.dateTime("end", loc)
		if err != nil {
			return Result{}, err
		}
		if err := c.end(); err != nil {
			return Result{}, err
		}
		if events, err = cal.Store.QueryRange(ctx, from, to); err != nil {
			return Result{}, err
		}
	default:
		return Result{}, c.fail("expected on <date> or from <date-time> to <date-time>")
	}
	if len(events) == 0 {
		return Result{Message: "No events"}, nil
	}
	return Result{Events: events}, nil
}

// show status on <dt>
func (d *Dispatcher) showStatus(ctx context.Context, c *cursor) (Result, error) {
	cal := d.registry.Active()
	if err := c.expect("on"); err != nil {
		return Result{}, err
	}
	at, err := c.dateTime("date-time", cal.Location())
	if err != nil {
		return Result{}, err
	}
	if err := c.end(); err != nil {
		return Result{}, err
	}
	busy, err := cal.Store.Status(ctx, at)
	if err != nil {
		return Result{}, err
	}
	if len(busy) == 0 {
		return Result{Message: "Available"}, nil
	}
	return Result{Message: "Busy", Events: busy}, nil
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

package command

import (
	"context"
	"fmt"
	"time"

	"github.com/klokku/klokku-calendar/pkg/event"
)

// create calendar --name <name> --timezone <tz>
func (d *Dispatcher) createCalendar(ctx context.Context, c *cursor) (Result, error) {
	name, err := c.keywordValue("--name", "calendar name")
	if err != nil {
		return Result{}, err
	}
	timezone, err := c.keywordValue("--timezone", "timezone")
	if err != nil {
		return Result{}, err
	}
	if err := c.end(); err != nil {
		return Result{}, err
	}
	cal, err := d.registry.CreateCalendar(ctx, name, timezone)
	if err != nil {
		return Result{}, err
	}
	return Result{Message: fmt.Sprintf("Created calendar %s in %s", cal.Name, cal.Location())}, nil
}

// edit calendar --name <name> --property <prop> <value>
func (d *Dispatcher) editCalendar(ctx context.Context, c *cursor) (Result, error) {
	name, err := c.keywordValue("--name", "calendar name")
	if err != nil {
		return Result{}, err
	}
	property, err := c.keywordValue("--property", "property")
	if err != nil {
		return Result{}, err
	}
	value, err := c.value(property + " value")
	if err != nil {
		return Result{}, err
	}
	if err := c.end(); err != nil {
		return Result{}, err
	}
	if err := d.registry.EditCalendar(ctx, name, property, value); err != nil {
		return Result{}, err
	}
	return Result{Message: fmt.Sprintf("Set %s of calendar %s to %s", property, name, value)}, nil
}

// use calendar --name <name>
func (d *Dispatcher) useCalendar(ctx context.Context, c *cursor) (Result, error) {
	name, err := c.keywordValue("--name", "calendar name")
	if err != nil {
		return Result{}, err
	}
	if err := c.end(); err != nil {
		return Result{}, err
	}
	if err := d.registry.UseCalendar(ctx, name); err != nil {
		return Result{}, err
	}
	return Result{Message: fmt.Sprintf("Using calendar %s", name)}, nil
}

// delete calendar --name <name>
func (d *Dispatcher) deleteCalendar(ctx context.Context, c *cursor) (Result, error) {
	name, err := c.keywordValue("--name", "calendar name")
	if err != nil {
		return Result{}, err
	}
	if err := c.end(); err != nil {
		return Result{}, err
	}
	if err := d.registry.DeleteCalendar(ctx, name); err != nil {
		return Result{}, err
	}
	return Result{Message: fmt.Sprintf("Deleted calendar %s, using %s", name, d.registry.Active().Name)}, nil
}

// print calendars
func (d *Dispatcher) printCalendars(_ context.Context, c *cursor) (Result, error) {
	if err := c.end(); err != nil {
		return Result{}, err
	}
	return Result{Calendars: d.registry.Calendars(), Active: d.registry.Active().Name}, nil
}

// copy event <name> on <dt> --target <cal> to <dt>
func (d *Dispatcher) copyEvent(ctx context.Context, c *cursor) (Result, error) {
	subject, err := c.value("event name")
	if err != nil {
		return Result{}, err
	}
	if err := c.expect("on"); err != nil {
		return Result{}, err
	}
	start, err := c.dateTime("start", d.registry.Active().Location())
	if err != nil {
		return Result{}, err
	}
	target, err := c.keywordValue("--target", "target calendar")
	if err != nil {
		return Result{}, err
	}
	if err := c.expect("to"); err != nil {
		return Result{}, err
	}
	targetToken, err := c.dateTimeToken("target date-time")
	if err != nil {
		return Result{}, err
	}
	if err := c.end(); err != nil {
		return Result{}, err
	}
	dst, err := d.registry.Calendar(target)
	if err != nil {
		return Result{}, err
	}
	targetStart, err := event.ParseDateTime(targetToken, dst.Location())
	if err != nil {
		return Result{}, err
	}
	copies, err := d.registry.CopyEvent(ctx, subject, start, target, targetStart)
	if err != nil {
		return Result{}, err
	}
	return copied(copies, target), nil
}

// copy events on <date> --target <cal> <date>
// copy events between <date> and <date> --target <cal> <date>
func (d *Dispatcher) copyEvents(ctx context.Context, c *cursor) (Result, error) {
	loc := d.registry.Active().Location()
	var (
		from, to time.Time
		between  bool
		err      error
	)
	switch {
	case c.accept("on"):
		if from, err = c.date("date", loc); err != nil {
			return Result{}, err
		}
	case c.accept("between"):
		between = true
		if from, err = c.date("start date", loc); err != nil {
			return Result{}, err
		}
		if err := c.expect("and"); err != nil {
			return Result{}, err
		}
		if to, err = c.date("end date", loc); err != nil {
			return Result{}, err
		}
	default:
		return Result{}, c.fail("expected on <date> or between <date> and <date>")
	}
	target, err := c.keywordValue("--target", "target calendar")
	if err != nil {
		return Result{}, err
	}
	targetToken, err := c.dateToken("target date")
	if err != nil {
		return Result{}, err
	}
	if err := c.end(); err != nil {
		return Result{}, err
	}
	dst, err := d.registry.Calendar(target)
	if err != nil {
		return Result{}, err
	}
	targetDate, err := event.ParseDate(targetToken, dst.Location())
	if err != nil {
		return Result{}, err
	}
	var copies []event.Event
	if between {
		copies, err = d.registry.CopyEventsBetween(ctx, from, to, target, targetDate)
	} else {
		copies, err = d.registry.CopyEventsOnDate(ctx, from, target, targetDate)
	}
	if err != nil {
		return Result{}, err
	}
	return copied(copies, target), nil
}

func copied(copies []event.Event, target string) Result {
	return Result{Message: fmt.Sprintf("Copied %s to %s", plural(len(copies), "event"), target), Events: copies}
}

package command

import (
	"context"
	"strings"

	"github.com/klokku/klokku-calendar/pkg/calendar"
	"github.com/klokku/klokku-calendar/pkg/calendar_io"
	"github.com/klokku/klokku-calendar/pkg/registry"
	"github.com/klokku/klokku-calendar/pkg/stats"
	log "github.com/sirupsen/logrus"
)

type handlerFunc func(ctx context.Context, c *cursor) (Result, error)

// Dispatcher turns command lines into registry and calendar operations. One line runs exactly
// one operation.
type Dispatcher struct {
	registry *registry.Registry
	files    *calendar_io.Service
	stats    stats.StatsService
	// policy applies to created and imported events unless --autoDecline is given.
	policy   calendar.ConflictPolicy
	handlers map[string]handlerFunc
}

func NewDispatcher(reg *registry.Registry, files *calendar_io.Service, statsService stats.StatsService, policy calendar.ConflictPolicy) *Dispatcher {
	d := &Dispatcher{
		registry: reg,
		files:    files,
		stats:    statsService,
		policy:   policy,
	}
	d.handlers = map[string]handlerFunc{
		"create event":    d.createEvent,
		"edit event":      d.editEvent,
		"edit events":     d.editEvents,
		"print events":    d.printEvents,
		"show status":     d.showStatus,
		"create calendar": d.createCalendar,
		"edit calendar":   d.editCalendar,
		"use calendar":    d.useCalendar,
		"delete calendar": d.deleteCalendar,
		"print calendars": d.printCalendars,
		"copy event":      d.copyEvent,
		"copy events":     d.copyEvents,
		"export cal":      d.exportCalendar,
		"import cal":      d.importCalendar,
		"show dashboard":  d.showDashboard,
	}
	return d
}

// Execute parses and runs one line. Grammar failures are *ParseError; everything else comes
// from the calendar model.
func (d *Dispatcher) Execute(ctx context.Context, line string) (Result, error) {
	tokens, err := Tokenize(line)
	if err != nil {
		return Result{}, err
	}
	c := &cursor{line: line, tokens: tokens}
	if len(tokens) == 0 {
		return Result{}, c.fail("empty command")
	}
	if strings.EqualFold(tokens[0], "exit") {
		c.pos = 1
		if err := c.end(); err != nil {
			return Result{}, err
		}
		return Result{Exit: true}, nil
	}
	if len(tokens) < 2 {
		return Result{}, c.fail("unknown command %q", tokens[0])
	}
	key := strings.ToLower(tokens[0] + " " + tokens[1])
	handler, ok := d.handlers[key]
	if !ok {
		return Result{}, c.fail("unknown command %q", tokens[0]+" "+tokens[1])
	}
	c.pos = 2
	log.Debugf("executing %q", line)
	return handler(ctx, c)
}

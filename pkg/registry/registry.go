package registry

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/klokku/klokku-calendar/internal/event_bus"
	"github.com/klokku/klokku-calendar/pkg/calendar"
	"github.com/klokku/klokku-calendar/pkg/event"
	log "github.com/sirupsen/logrus"
)

// Calendar is one named, timezone scoped event store.
type Calendar struct {
	Name  string
	Store *calendar.Service
}

func (c *Calendar) Location() *time.Location {
	return c.Store.Location()
}

// Registry holds the calendars by name and remembers which one is active. It is never empty.
type Registry struct {
	calendars map[string]*Calendar
	active    string
	eventBus  *event_bus.EventBus
}

// New returns a registry holding one calendar, which is active. eventBus may be nil.
func New(eventBus *event_bus.EventBus, name, timezone string) (*Registry, error) {
	r := &Registry{
		calendars: make(map[string]*Calendar),
		eventBus:  eventBus,
	}
	if _, err := r.CreateCalendar(context.Background(), name, timezone); err != nil {
		return nil, err
	}
	r.active = name
	return r, nil
}

func LoadLocation(timezone string) (*time.Location, error) {
	if strings.TrimSpace(timezone) == "" {
		return nil, &event.ValidationError{Field: "timezone", Reason: "is required"}
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, &event.ValidationError{Field: "timezone", Reason: fmt.Sprintf("unknown timezone %q", timezone)}
	}
	return loc, nil
}

func (r *Registry) CreateCalendar(ctx context.Context, name, timezone string) (*Calendar, error) {
	if err := r.checkFreeName(name); err != nil {
		return nil, err
	}
	loc, err := LoadLocation(timezone)
	if err != nil {
		return nil, err
	}

	cal := &Calendar{Name: name, Store: calendar.NewService(calendar.NewMemoryRepository(), loc)}
	cal.Store.OnChange(func(ctx context.Context, m calendar.Mutation) {
		subjects := make([]string, 0, len(m.Events))
		for _, e := range m.Events {
			subjects = append(subjects, e.Subject)
		}
		r.publish(ctx, event_bus.CalendarEventsChangedEvent, event_bus.CalendarEventsChanged{
			Calendar: cal.Name,
			Change:   string(m.Kind),
			Subjects: subjects,
			Count:    len(m.Events),
		})
	})
	r.calendars[name] = cal
	log.Debugf("created calendar %q in %s", name, loc)
	r.publish(ctx, event_bus.CalendarCreatedEvent, event_bus.CalendarCreated{Name: name, Timezone: loc.String()})
	return cal, nil
}

func (r *Registry) checkFreeName(name string) error {
	if strings.TrimSpace(name) == "" {
		return &event.ValidationError{Field: "name", Reason: "calendar name must not be empty"}
	}
	if _, exists := r.calendars[name]; exists {
		return &event.ValidationError{Field: "name", Reason: fmt.Sprintf("calendar %q already exists", name)}
	}
	return nil
}

// RenameCalendar moves the calendar to a new key. Its events and timezone are unchanged and
// the active selector follows it.
func (r *Registry) RenameCalendar(ctx context.Context, oldName, newName string) error {
	cal, err := r.Calendar(oldName)
	if err != nil {
		return err
	}
	if oldName == newName {
		return nil
	}
	if err := r.checkFreeName(newName); err != nil {
		return err
	}
	delete(r.calendars, oldName)
	cal.Name = newName
	r.calendars[newName] = cal
	if r.active == oldName {
		r.active = newName
	}
	r.publish(ctx, event_bus.CalendarRenamedEvent, event_bus.CalendarRenamed{OldName: oldName, NewName: newName})
	return nil
}

// SetTimezone moves every event of the calendar into the new zone, keeping instants.
func (r *Registry) SetTimezone(ctx context.Context, name, timezone string) error {
	cal, err := r.Calendar(name)
	if err != nil {
		return err
	}
	loc, err := LoadLocation(timezone)
	if err != nil {
		return err
	}
	old := cal.Location().String()
	if err := cal.Store.SetLocation(ctx, loc); err != nil {
		return fmt.Errorf("failed to change timezone of %q: %w", name, err)
	}
	r.publish(ctx, event_bus.CalendarTimezoneChangedEvent, event_bus.CalendarTimezoneChanged{
		Name:        name,
		OldTimezone: old,
		NewTimezone: loc.String(),
	})
	return nil
}

// EditCalendar changes the name or the timezone property.
func (r *Registry) EditCalendar(ctx context.Context, name, property, value string) error {
	switch strings.ToLower(property) {
	case "name":
		return r.RenameCalendar(ctx, name, value)
	case "timezone":
		return r.SetTimezone(ctx, name, value)
	}
	return &event.ValidationError{Field: "property", Reason: fmt.Sprintf("calendar property %q is neither name nor timezone", property)}
}

func (r *Registry) UseCalendar(ctx context.Context, name string) error {
	if _, err := r.Calendar(name); err != nil {
		return err
	}
	r.active = name
	r.publish(ctx, event_bus.CalendarActivatedEvent, event_bus.CalendarActivated{Name: name})
	return nil
}

// DeleteCalendar removes a calendar with all its events. The last calendar cannot be removed.
// When the active calendar goes, the first remaining one by name becomes active.
func (r *Registry) DeleteCalendar(ctx context.Context, name string) error {
	if _, err := r.Calendar(name); err != nil {
		return err
	}
	if len(r.calendars) == 1 {
		return &event.ValidationError{Field: "name", Reason: fmt.Sprintf("%q is the last calendar", name)}
	}
	delete(r.calendars, name)
	if r.active == name {
		r.active = r.Calendars()[0].Name
	}
	r.publish(ctx, event_bus.CalendarDeletedEvent, event_bus.CalendarDeleted{Name: name})
	return nil
}

func (r *Registry) Active() *Calendar {
	return r.calendars[r.active]
}

func (r *Registry) Calendar(name string) (*Calendar, error) {
	cal, ok := r.calendars[name]
	if !ok {
		return nil, &event.NotFoundError{What: "calendar", Key: name}
	}
	return cal, nil
}

// Calendars lists every calendar ordered by name.
func (r *Registry) Calendars() []*Calendar {
	result := make([]*Calendar, 0, len(r.calendars))
	for _, cal := range r.calendars {
		result = append(result, cal)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result
}

func (r *Registry) publish(ctx context.Context, eventType event_bus.EventType, data any) {
	if r.eventBus == nil {
		return
	}
	if err := r.eventBus.Publish(event_bus.NewEvent(ctx, eventType, data)); err != nil {
		log.Debugf("publishing %s: %v", eventType, err)
	}
}

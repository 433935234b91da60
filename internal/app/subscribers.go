package app

import (
	"github.com/klokku/klokku-calendar/internal/event_bus"
	log "github.com/sirupsen/logrus"
)

// SubscribeLogging traces registry and calendar changes published on bus.
func SubscribeLogging(bus *event_bus.EventBus) {
	event_bus.SubscribeTyped(bus, event_bus.CalendarCreatedEvent, func(e event_bus.EventT[event_bus.CalendarCreated]) error {
		log.Debugf("calendar %s created in %s", e.Data.Name, e.Data.Timezone)
		return nil
	})
	event_bus.SubscribeTyped(bus, event_bus.CalendarRenamedEvent, func(e event_bus.EventT[event_bus.CalendarRenamed]) error {
		log.Debugf("calendar %s renamed to %s", e.Data.OldName, e.Data.NewName)
		return nil
	})
	event_bus.SubscribeTyped(bus, event_bus.CalendarTimezoneChangedEvent, func(e event_bus.EventT[event_bus.CalendarTimezoneChanged]) error {
		log.Debugf("calendar %s moved from %s to %s", e.Data.Name, e.Data.OldTimezone, e.Data.NewTimezone)
		return nil
	})
	event_bus.SubscribeTyped(bus, event_bus.CalendarDeletedEvent, func(e event_bus.EventT[event_bus.CalendarDeleted]) error {
		log.Debugf("calendar %s deleted", e.Data.Name)
		return nil
	})
	event_bus.SubscribeTyped(bus, event_bus.CalendarActivatedEvent, func(e event_bus.EventT[event_bus.CalendarActivated]) error {
		log.Debugf("using calendar %s", e.Data.Name)
		return nil
	})
	event_bus.SubscribeTyped(bus, event_bus.CalendarEventsChangedEvent, func(e event_bus.EventT[event_bus.CalendarEventsChanged]) error {
		log.Tracef("calendar %s: %d events %s %v", e.Data.Calendar, e.Data.Count, e.Data.Change, e.Data.Subjects)
		return nil
	})
}

package event_bus

const (
	CalendarCreatedEvent         EventType = "calendar.created"
	CalendarRenamedEvent         EventType = "calendar.renamed"
	CalendarTimezoneChangedEvent EventType = "calendar.timezone.changed"
	CalendarDeletedEvent         EventType = "calendar.deleted"
	CalendarActivatedEvent       EventType = "calendar.activated"
	CalendarEventsChangedEvent   EventType = "calendar.events.changed"
)

type CalendarCreated struct {
	Name     string
	Timezone string
}

type CalendarRenamed struct {
	OldName string
	NewName string
}

type CalendarTimezoneChanged struct {
	Name        string
	OldTimezone string
	NewTimezone string
}

type CalendarDeleted struct {
	Name string
}

type CalendarActivated struct {
	Name string
}

// CalendarEventsChanged is published after a committed create, edit, delete or timezone move.
type CalendarEventsChanged struct {
	Calendar string
	// Change is one of created, updated, deleted, moved.
	Change   string
	Subjects []string
	Count    int
}

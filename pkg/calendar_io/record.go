package calendar_io

import (
	"time"

	"github.com/klokku/klokku-calendar/pkg/event"
)

// Record is the flat shape an event takes in import and export files. Recurrence is not part
// of it; series are written occurrence by occurrence unless the format has a rule syntax.
type Record struct {
	Subject     string
	Start       time.Time
	End         time.Time
	AllDay      bool
	Description string
	Location    string
	Private     bool
}

func RecordFromEvent(e event.Event) Record {
	return Record{
		Subject:     e.Subject,
		Start:       e.StartTime,
		End:         e.EndTime,
		AllDay:      e.AllDay,
		Description: e.Description,
		Location:    e.Location,
		Private:     e.Private,
	}
}

func (r Record) Fields() event.Fields {
	return event.Fields{
		Subject:     r.Subject,
		Start:       r.Start,
		End:         r.End,
		Description: r.Description,
		Location:    r.Location,
		Private:     r.Private,
		AllDay:      r.AllDay,
	}
}

// Event builds a single event from the record.
func (r Record) Event() (event.Event, error) {
	if r.AllDay {
		return event.BuildAllDay(r.Fields(), r.Start)
	}
	return event.BuildSingle(r.Fields())
}

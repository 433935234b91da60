package registry

import (
	"net/http"

	"github.com/klokku/klokku-calendar/internal/rest"
	"github.com/klokku/klokku-calendar/pkg/event"
)

type Handler struct {
	registry *Registry
}

type CalendarDTO struct {
	Name     string `json:"name"`
	Timezone string `json:"timezone"`
	Active   bool   `json:"active"`
}

type EventDTO struct {
	ID          string `json:"id"`
	Subject     string `json:"subject"`
	Start       string `json:"start"`
	End         string `json:"end"`
	AllDay      bool   `json:"allDay"`
	Private     bool   `json:"private"`
	Description string `json:"description,omitempty"`
	Location    string `json:"location,omitempty"`
	Kind        string `json:"kind"`
	SeriesID    string `json:"seriesId,omitempty"`
	Weekdays    string `json:"weekdays,omitempty"`
}

type StatusDTO struct {
	Busy   bool       `json:"busy"`
	Events []EventDTO `json:"events"`
}

func NewHandler(r *Registry) *Handler {
	return &Handler{r}
}

func EventToDTO(e event.Event) EventDTO {
	dto := EventDTO{
		ID:          e.ID.String(),
		Subject:     e.Subject,
		Start:       e.StartTime.Format(event.DateTimeLayout),
		End:         e.EndTime.Format(event.DateTimeLayout),
		AllDay:      e.AllDay,
		Private:     e.Private,
		Description: e.Description,
		Location:    e.Location,
		Kind:        e.Kind.String(),
	}
	if e.IsRecurring() {
		dto.SeriesID = e.SeriesID().String()
		dto.Weekdays = e.Recurrence.Weekdays.String()
	}
	return dto
}

func EventsToDTO(events []event.Event) []EventDTO {
	dtos := make([]EventDTO, 0, len(events))
	for _, e := range events {
		dtos = append(dtos, EventToDTO(e))
	}
	return dtos
}

func (h *Handler) ListCalendars(w http.ResponseWriter, r *http.Request) {
	active := h.registry.Active()
	calendars := h.registry.Calendars()
	dtos := make([]CalendarDTO, 0, len(calendars))
	for _, cal := range calendars {
		dtos = append(dtos, CalendarDTO{
			Name:     cal.Name,
			Timezone: cal.Location().String(),
			Active:   cal == active,
		})
	}
	rest.WriteJSON(w, http.StatusOK, dtos)
}

// GetEvents answers ?date=yyyy-MM-dd or ?from=..&to=.. (yyyy-MM-ddTHH:mm). The optional
// calendar parameter defaults to the active calendar.
func (h *Handler) GetEvents(w http.ResponseWriter, r *http.Request) {
	cal, ok := h.calendarFrom(w, r)
	if !ok {
		return
	}
	query := r.URL.Query()
	loc := cal.Location()

	var events []event.Event
	if dateString := query.Get("date"); dateString != "" {
		date, err := event.ParseDate(dateString, loc)
		if err != nil {
			rest.WriteError(w, "Invalid date format", err)
			return
		}
		if events, err = cal.Store.Query(r.Context(), date); err != nil {
			rest.WriteError(w, "Failed to query events", err)
			return
		}
	} else {
		from, err := event.ParseDateTime(query.Get("from"), loc)
		if err != nil {
			rest.WriteError(w, "Invalid from (date-time) format", err)
			return
		}
		to, err := event.ParseDateTime(query.Get("to"), loc)
		if err != nil {
			rest.WriteError(w, "Invalid to (date-time) format", err)
			return
		}
		if events, err = cal.Store.QueryRange(r.Context(), from, to); err != nil {
			rest.WriteError(w, "Failed to query events", err)
			return
		}
	}
	rest.WriteJSON(w, http.StatusOK, EventsToDTO(events))
}

func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	cal, ok := h.calendarFrom(w, r)
	if !ok {
		return
	}
	at, err := event.ParseDateTime(r.URL.Query().Get("at"), cal.Location())
	if err != nil {
		rest.WriteError(w, "Invalid at (date-time) format", err)
		return
	}
	busy, err := cal.Store.Status(r.Context(), at)
	if err != nil {
		rest.WriteError(w, "Failed to get status", err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, StatusDTO{Busy: len(busy) > 0, Events: EventsToDTO(busy)})
}

func (h *Handler) calendarFrom(w http.ResponseWriter, r *http.Request) (*Calendar, bool) {
	name := r.URL.Query().Get("calendar")
	if name == "" {
		return h.registry.Active(), true
	}
	cal, err := h.registry.Calendar(name)
	if err != nil {
		rest.WriteError(w, "Unknown calendar", err)
		return nil, false
	}
	return cal, true
}

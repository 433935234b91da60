package command

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/klokku/klokku-calendar/internal/rest"
	"github.com/klokku/klokku-calendar/pkg/event"
	"github.com/klokku/klokku-calendar/pkg/registry"
)

type CommandRequest struct {
	Command string `json:"command"`
}

type CommandResponse struct {
	Output string              `json:"output"`
	Events []registry.EventDTO `json:"events,omitempty"`
}

type Handler struct {
	dispatcher *Dispatcher
}

func NewHandler(dispatcher *Dispatcher) *Handler {
	return &Handler{dispatcher}
}

func (h *Handler) Execute(w http.ResponseWriter, r *http.Request) {
	var req CommandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rest.WriteStatusError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	result, err := h.dispatcher.Execute(r.Context(), req.Command)
	if err != nil {
		if errors.Is(err, ErrParse) {
			rest.WriteStatusError(w, http.StatusBadRequest, "Invalid command", err)
			return
		}
		rest.WriteError(w, "Command failed", err)
		return
	}
	if result.Exit {
		rest.WriteError(w, "Invalid command", &event.ValidationError{Field: "command", Reason: "exit is only available in the command loop"})
		return
	}
	response := CommandResponse{Output: Format(result)}
	if len(result.Events) > 0 {
		response.Events = registry.EventsToDTO(result.Events)
	}
	rest.WriteJSON(w, http.StatusOK, response)
}

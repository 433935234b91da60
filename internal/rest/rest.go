package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/klokku/klokku-calendar/pkg/event"
	log "github.com/sirupsen/logrus"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// StatusFor maps the calendar error taxonomy onto HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, event.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, event.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, event.ErrConflict):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// WriteError answers with an ErrorResponse. The status comes from StatusFor.
func WriteError(w http.ResponseWriter, title string, err error) {
	WriteStatusError(w, StatusFor(err), title, err)
}

func WriteStatusError(w http.ResponseWriter, status int, title string, err error) {
	if status == http.StatusInternalServerError {
		log.Errorf("%s: %v", title, err)
	} else {
		log.Debugf("%s: %v", title, err)
	}
	WriteJSON(w, status, ErrorResponse{Error: title, Details: err.Error()})
}

func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

package app

import (
	"github.com/gorilla/mux"
)

// RegisterRoutes registers all API endpoints.
func RegisterRoutes(r *mux.Router, deps *Dependencies) {

	// Calendars
	r.HandleFunc("/api/calendars", deps.RegistryHandler.ListCalendars).Methods("GET")
	r.HandleFunc("/api/calendar/events", deps.RegistryHandler.GetEvents).Methods("GET")
	r.HandleFunc("/api/calendar/status", deps.RegistryHandler.GetStatus).Queries("at", "{at}").Methods("GET")

	// Stats
	r.HandleFunc("/api/stats", deps.StatsHandler.GetStats).Queries("from", "{from}", "to", "{to}").Methods("GET")

	// Commands
	r.HandleFunc("/api/command", deps.CommandHandler.Execute).Methods("POST")
}

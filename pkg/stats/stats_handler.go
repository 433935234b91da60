package stats

import (
	"net/http"
	"time"

	"github.com/klokku/klokku-calendar/internal/rest"
	"github.com/klokku/klokku-calendar/pkg/event"
)

type DailyStatsDTO struct {
	Date      string            `json:"date"`
	Subjects  []SubjectStatsDTO `json:"subjects"`
	Events    int               `json:"events"`
	TotalTime int               `json:"totalTime"`
}

type SubjectStatsDTO struct {
	Subject  string `json:"subject"`
	Events   int    `json:"events"`
	Duration int    `json:"duration"`
}

type CountDTO struct {
	Key    string `json:"key"`
	Events int    `json:"events"`
}

type StatsSummaryDTO struct {
	StartDate      string            `json:"startDate"`
	EndDate        string            `json:"endDate"`
	Days           []DailyStatsDTO   `json:"days"`
	Subjects       []SubjectStatsDTO `json:"subjects"`
	Weekdays       []CountDTO        `json:"weekdays"`
	Weeks          []CountDTO        `json:"weeks"`
	Months         []CountDTO        `json:"months"`
	TotalEvents    int               `json:"totalEvents"`
	TotalTime      int               `json:"totalTime"`
	AveragePerDay  float64           `json:"averagePerDay"`
	BusiestDay     string            `json:"busiestDay"`
	LeastBusyDay   string            `json:"leastBusyDay"`
	OnlinePercent  float64           `json:"onlinePercent"`
	PrivatePercent float64           `json:"privatePercent"`
	AllDayPercent  float64           `json:"allDayPercent"`
}

type StatsHandler struct {
	statsService     StatsService
	csvStatsRenderer StatsRenderer
}

func NewStatsHandler(statsService StatsService, csvStatsRenderer StatsRenderer) *StatsHandler {
	return &StatsHandler{statsService, csvStatsRenderer}
}

// GetStats answers ?from=yyyy-MM-dd&to=yyyy-MM-dd with JSON, or with CSV for Accept: text/csv.
func (handler *StatsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	fromDate, err := event.ParseDate(r.URL.Query().Get("from"), time.UTC)
	if err != nil {
		rest.WriteError(w, "Invalid from format", err)
		return
	}
	toDate, err := event.ParseDate(r.URL.Query().Get("to"), time.UTC)
	if err != nil {
		rest.WriteError(w, "Invalid to format", err)
		return
	}
	stats, err := handler.statsService.GetStats(r.Context(), fromDate, toDate)
	if err != nil {
		rest.WriteError(w, "Failed to get stats", err)
		return
	}

	if r.Header.Get("Accept") == "text/csv" {
		csv, err := handler.csvStatsRenderer.RenderStats(stats)
		if err != nil {
			rest.WriteError(w, "Failed to render stats", err)
			return
		}
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(csv)); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}
	rest.WriteJSON(w, http.StatusOK, convertToJsonResponse(&stats))
}

func convertToJsonResponse(stats *StatsSummary) *StatsSummaryDTO {
	days := make([]DailyStatsDTO, 0, len(stats.Days))
	for _, day := range stats.Days {
		days = append(days, DailyStatsDTO{
			Date:      day.Date.Format(event.DateLayout),
			Subjects:  subjectsToDTO(day.Subjects),
			Events:    day.Events,
			TotalTime: int(day.TotalTime.Seconds()),
		})
	}
	weekdays := make([]CountDTO, 0, len(stats.Weekdays))
	for _, w := range stats.Weekdays {
		weekdays = append(weekdays, CountDTO{Key: w.Weekday.String(), Events: w.Events})
	}

	dto := &StatsSummaryDTO{
		StartDate:      stats.StartDate.Format(event.DateLayout),
		EndDate:        stats.EndDate.Format(event.DateLayout),
		Days:           days,
		Subjects:       subjectsToDTO(stats.Subjects),
		Weekdays:       weekdays,
		Weeks:          periodsToDTO(stats.Weeks, event.DateLayout),
		Months:         periodsToDTO(stats.Months, "2006-01"),
		TotalEvents:    stats.TotalEvents,
		TotalTime:      int(stats.TotalTime.Seconds()),
		AveragePerDay:  stats.AveragePerDay,
		OnlinePercent:  stats.OnlinePercent,
		PrivatePercent: stats.PrivatePercent,
		AllDayPercent:  stats.AllDayPercent,
	}
	if !stats.BusiestDay.IsZero() {
		dto.BusiestDay = stats.BusiestDay.Format(event.DateLayout)
		dto.LeastBusyDay = stats.LeastBusyDay.Format(event.DateLayout)
	}
	return dto
}

func subjectsToDTO(subjects []SubjectStats) []SubjectStatsDTO {
	dtos := make([]SubjectStatsDTO, 0, len(subjects))
	for _, s := range subjects {
		dtos = append(dtos, SubjectStatsDTO{Subject: s.Subject, Events: s.Events, Duration: int(s.Duration.Seconds())})
	}
	return dtos
}

func periodsToDTO(periods []PeriodStats, layout string) []CountDTO {
	dtos := make([]CountDTO, 0, len(periods))
	for _, p := range periods {
		dtos = append(dtos, CountDTO{Key: p.Start.Format(layout), Events: p.Events})
	}
	return dtos
}

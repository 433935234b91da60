package stats

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

type StatsRenderer interface {
	RenderStats(stats StatsSummary) (string, error)
}

type CsvStatsRendererImpl struct {
}

func NewCsvStatsRenderer() *CsvStatsRendererImpl {
	return &CsvStatsRendererImpl{}
}

// RenderStats writes one row per day with the time spent per subject, followed by the event
// counts and the totals per subject.
func (t *CsvStatsRendererImpl) RenderStats(stats StatsSummary) (string, error) {
	subjects := make([]string, 0, len(stats.Subjects))
	for _, s := range stats.Subjects {
		subjects = append(subjects, s.Subject)
	}
	sort.Strings(subjects)

	header := make([]string, 0, len(subjects)+2)
	header = append(header, "")
	header = append(header, subjects...)
	header = append(header, "SUM")

	statsByDay := make([][]string, 0, len(stats.Days))
	for _, dailyStats := range stats.Days {
		statsByDay = append(statsByDay, getStatsForDay(dailyStats, subjects))
	}

	bySubject := make(map[string]SubjectStats, len(stats.Subjects))
	for _, s := range stats.Subjects {
		bySubject[s.Subject] = s
	}
	eventCounts := make([]string, 0, len(subjects)+2)
	eventCounts = append(eventCounts, "Events")
	totals := make([]string, 0, len(subjects)+2)
	totals = append(totals, "Total")
	for _, subject := range subjects {
		eventCounts = append(eventCounts, strconv.Itoa(bySubject[subject].Events))
		totals = append(totals, durationToString(bySubject[subject].Duration))
	}
	eventCounts = append(eventCounts, strconv.Itoa(stats.TotalEvents))
	totals = append(totals, durationToString(stats.TotalTime))

	data := make([][]string, 0, len(statsByDay)+3)
	data = append(data, header)
	data = append(data, statsByDay...)
	data = append(data, eventCounts, totals)

	var b bytes.Buffer
	writer := csv.NewWriter(&b)
	for _, row := range data {
		err := writer.Write(row)
		if err != nil {
			log.Errorf("Error writing to csv: %v", err)
			return "", err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		log.Errorf("Error writing to csv: %v", err)
		return "", err
	}

	return b.String(), nil
}

func getStatsForDay(dailyStats DailyStats, subjects []string) []string {
	daySubjects := slices.Clone(dailyStats.Subjects)
	sort.Slice(daySubjects, func(i, j int) bool {
		return daySubjects[i].Subject < daySubjects[j].Subject
	})
	dayStats := make([]string, 0, len(subjects)+2)
	dayStats = append(dayStats, dailyStats.Date.Format("01/02/2006"))
	for _, name := range subjects {
		idx, found := slices.BinarySearchFunc(daySubjects, name, func(s SubjectStats, name string) int {
			return strings.Compare(s.Subject, name)
		})
		if found {
			dayStats = append(dayStats, durationToString(daySubjects[idx].Duration))
		} else {
			dayStats = append(dayStats, "00:00:00")
		}
	}
	dayStats = append(dayStats, durationToString(dailyStats.TotalTime))
	return dayStats
}

func durationToString(duration time.Duration) string {
	seconds := int(duration.Seconds())
	return fmt.Sprintf("%02d:%02d:%02d", seconds/3600, seconds/60%60, seconds%60)
}

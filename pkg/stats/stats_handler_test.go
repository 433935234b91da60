package stats

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/klokku/klokku-calendar/internal/test_utils"
	"github.com/klokku/klokku-calendar/pkg/calendar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupHandlerTest(t *testing.T) *StatsHandler {
	loc := test_utils.Location(t, "America/New_York")
	store := calendar.NewService(calendar.NewMemoryRepository(), loc)
	require.NoError(t, store.CreateSeries(context.Background(), weekOfEvents(t, loc), calendar.AllowConflicts))
	service := NewStatsServiceImpl(func() calendar.Calendar { return store })
	return NewStatsHandler(service, NewCsvStatsRenderer())
}

func TestStatsHandler_GetStats(t *testing.T) {
	handler := setupHandlerTest(t)

	t.Run("json", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/stats?from=2025-11-10&to=2025-11-16", nil)
		w := httptest.NewRecorder()

		handler.GetStats(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		var dto StatsSummaryDTO
		require.NoError(t, json.NewDecoder(w.Body).Decode(&dto))
		assert.Equal(t, 4, dto.TotalEvents)
		assert.Equal(t, 26*3600, dto.TotalTime)
		assert.Equal(t, "2025-11-11", dto.BusiestDay)
		assert.Len(t, dto.Days, 7)
		assert.Equal(t, "Standup", dto.Subjects[0].Subject)
		assert.Equal(t, "Monday", dto.Weekdays[0].Key)
		assert.Equal(t, "2025-11", dto.Months[0].Key)
	})

	t.Run("csv", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/stats?from=2025-11-10&to=2025-11-13", nil)
		req.Header.Set("Accept", "text/csv")
		w := httptest.NewRecorder()

		handler.GetStats(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
		assert.True(t, strings.HasPrefix(w.Body.String(), ",Conference,Lunch,Standup,SUM\n"))
	})

	t.Run("invalid dates", func(t *testing.T) {
		for _, query := range []string{"from=10.11.2025&to=2025-11-16", "from=2025-11-10", "from=2025-11-16&to=2025-11-10"} {
			req := httptest.NewRequest(http.MethodGet, "/api/stats?"+query, nil)
			w := httptest.NewRecorder()

			handler.GetStats(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code, query)
		}
	})
}

package app

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/klokku/klokku-calendar/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupApplication(t *testing.T) *Application {
	cfg := config.Defaults()
	cfg.Calendar.Name = "Work"
	cfg.Export.Dir = t.TempDir()
	application, err := NewApplication(cfg)
	require.NoError(t, err)
	return application
}

func TestApplication_RunHeadless(t *testing.T) {
	t.Run("runs every line and stops at exit", func(t *testing.T) {
		application := setupApplication(t)
		var out bytes.Buffer

		err := application.Run(context.Background(), Session{
			Mode: ModeHeadless,
			In: strings.NewReader(`create event Standup from 2025-11-11T11:00 to 2025-11-11T12:00

# comments are skipped
create event --autoDecline Standup2 from 2025-11-11T11:30 to 2025-11-11T12:30
show status on 2025-11-11T11:30
exit
print events on 2025-11-11
`),
			Out: &out,
		})

		require.NoError(t, err)
		assert.Equal(t, `> create event Standup from 2025-11-11T11:00 to 2025-11-11T12:00
Created 1 event in Work
- Standup from 2025-11-11T11:00 to 2025-11-11T12:00
> create event --autoDecline Standup2 from 2025-11-11T11:30 to 2025-11-11T12:30
Error: "Standup2" (2025-11-11T11:30 - 2025-11-11T12:30) conflicts with "Standup" (2025-11-11T11:00 - 2025-11-11T12:00)
> show status on 2025-11-11T11:30
Busy
- Standup from 2025-11-11T11:00 to 2025-11-11T12:00
> exit
`, out.String())
	})

	t.Run("a command file without exit fails", func(t *testing.T) {
		application := setupApplication(t)
		var out bytes.Buffer

		err := application.Run(context.Background(), Session{
			Mode: ModeHeadless,
			In:   strings.NewReader("print calendars\n"),
			Out:  &out,
		})

		assert.ErrorIs(t, err, ErrMissingExit)
		assert.Contains(t, out.String(), "* Work (America/New_York)")
	})
}

func TestApplication_RunLongLine(t *testing.T) {
	application := setupApplication(t)
	var out bytes.Buffer
	description := strings.Repeat("a", 100*1024)

	err := application.Run(context.Background(), Session{
		Mode: ModeHeadless,
		In:   strings.NewReader(`create event Notes on 2025-11-11 description "` + description + "\"\nexit\n"),
		Out:  &out,
	})

	require.NoError(t, err)
	assert.Contains(t, out.String(), "Created 1 event in Work\n")
	assert.NotContains(t, out.String(), "Error:")
}

func TestApplication_RunInteractive(t *testing.T) {
	application := setupApplication(t)
	var out bytes.Buffer

	err := application.Run(context.Background(), Session{
		Mode:   ModeInteractive,
		In:     strings.NewReader("use calendar Work\nprint calendars\n"),
		Out:    &out,
		Prompt: "calendar> ",
	})

	require.NoError(t, err)
	assert.Equal(t, `calendar> Error: cannot parse "use calendar Work": expected "--name" but found "Work"
calendar> * Work (America/New_York)
calendar> `, out.String())
}

func TestParseMode(t *testing.T) {
	mode, err := ParseMode("Headless")
	require.NoError(t, err)
	assert.Equal(t, ModeHeadless, mode)

	_, err = ParseMode("batch")
	assert.Error(t, err)
}

func TestApplication_Routes(t *testing.T) {
	application := setupApplication(t)

	tests := []struct {
		name   string
		method string
		url    string
		body   string
		status int
	}{
		{"calendars", http.MethodGet, "/api/calendars", "", http.StatusOK},
		{"events", http.MethodGet, "/api/calendar/events?date=2025-11-11", "", http.StatusOK},
		{"status", http.MethodGet, "/api/calendar/status?at=2025-11-11T11:00", "", http.StatusOK},
		{"stats", http.MethodGet, "/api/stats?from=2025-11-10&to=2025-11-16", "", http.StatusOK},
		{"command", http.MethodPost, "/api/command", `{"command": "print calendars"}`, http.StatusOK},
		{"stats without dates", http.MethodGet, "/api/stats", "", http.StatusNotFound},
		{"wrong method", http.MethodDelete, "/api/calendars", "", http.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.url, strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			application.Router().ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
		})
	}
}

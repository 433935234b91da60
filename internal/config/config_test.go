package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("defaults without a file", func(t *testing.T) {
		cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))

		require.NoError(t, err)
		assert.Equal(t, Defaults(), cfg)
	})

	t.Run("file overrides defaults and env overrides the file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "application.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`
calendar:
  name: Work
  timezone: Europe/Berlin
  autodecline: true
export:
  dir: /tmp/exports
`), 0o644))
		t.Setenv("CALENDAR_SERVER_ADDR", ":9090")
		t.Setenv("CALENDAR_LOG_LEVEL", "debug")

		cfg, err := Load(path)

		require.NoError(t, err)
		assert.Equal(t, Application{
			Calendar: Calendar{Name: "Work", Timezone: "Europe/Berlin", AutoDecline: true},
			Server:   Server{Addr: ":9090"},
			Export:   Export{Dir: "/tmp/exports"},
			Log:      Log{Level: "debug"},
		}, cfg)
	})

	t.Run("malformed file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "application.yaml")
		require.NoError(t, os.WriteFile(path, []byte("calendar: [unclosed"), 0o644))

		_, err := Load(path)
		assert.Error(t, err)
	})
}

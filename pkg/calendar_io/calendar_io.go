package calendar_io

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klokku/klokku-calendar/internal/utils"
	"github.com/klokku/klokku-calendar/pkg/calendar"
	"github.com/klokku/klokku-calendar/pkg/event"
	log "github.com/sirupsen/logrus"
)

type Format string

const (
	FormatCSV Format = "csv"
	FormatICS Format = "ics"
)

// FormatOf picks the file format from the extension of filename.
func FormatOf(filename string) (Format, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return FormatCSV, nil
	case ".ics", ".ical":
		return FormatICS, nil
	}
	return "", &event.ValidationError{Field: "filename", Reason: fmt.Sprintf("%q is neither .csv nor .ics", filename)}
}

// Service reads and writes calendar files below a base directory.
type Service struct {
	dir   string
	clock utils.Clock
}

func NewService(dir string, clock utils.Clock) *Service {
	return &Service{dir: dir, clock: clock}
}

// Path resolves filename against the base directory. Absolute names are kept.
func (s *Service) Path(filename string) (string, error) {
	if strings.TrimSpace(filename) == "" {
		return "", &event.ValidationError{Field: "filename", Reason: "is required"}
	}
	path := filename
	if !filepath.IsAbs(path) {
		path = filepath.Join(s.dir, filename)
	}
	return filepath.Abs(path)
}

// Export writes every event of cal to filename and returns the absolute path written.
func (s *Service) Export(ctx context.Context, name string, cal calendar.Calendar, filename string) (string, error) {
	format, err := FormatOf(filename)
	if err != nil {
		return "", err
	}
	path, err := s.Path(filename)
	if err != nil {
		return "", err
	}
	events, err := cal.Events(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to get events: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()
	if err := s.Write(f, format, name, cal, events); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close %s: %w", path, err)
	}
	log.Debugf("exported %d events of %q to %s", len(events), name, path)
	return path, nil
}

func (s *Service) Write(w io.Writer, format Format, name string, cal calendar.Calendar, events []event.Event) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, events)
	case FormatICS:
		return WriteICS(w, name, cal.Location(), events, s.clock.Now())
	}
	return &event.ValidationError{Field: "format", Reason: fmt.Sprintf("unsupported format %q", format)}
}

// Import adds the events of filename to cal in one batch. Either every event is added or none.
func (s *Service) Import(ctx context.Context, cal calendar.Calendar, filename string, policy calendar.ConflictPolicy) ([]event.Event, error) {
	format, err := FormatOf(filename)
	if err != nil {
		return nil, err
	}
	path, err := s.Path(filename)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &event.NotFoundError{What: "file", Key: path}
		}
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	events, err := s.Read(f, format, cal)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return events, nil
	}
	if err := cal.CreateSeries(ctx, events, policy); err != nil {
		return nil, err
	}
	log.Debugf("imported %d events from %s", len(events), path)
	return events, nil
}

func (s *Service) Read(r io.Reader, format Format, cal calendar.Calendar) ([]event.Event, error) {
	switch format {
	case FormatCSV:
		return ReadCSV(r, cal.Location())
	case FormatICS:
		return ReadICS(r, cal.Location())
	}
	return nil, &event.ValidationError{Field: "format", Reason: fmt.Sprintf("unsupported format %q", format)}
}

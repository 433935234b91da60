package calendar_io

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/klokku/klokku-calendar/pkg/event"
)

const (
	csvDateLayout = "01/02/2006"
	csvTimeLayout = "3:04:05 PM"
	csvTrue       = "TRUE"
	csvFalse      = "FALSE"
)

var csvHeader = []string{"Subject", "Start Date", "Start Time", "End Date", "End Time", "All Day Event", "Description", "Location", "Private"}

// WriteCSV writes one row per event. All-day rows leave the times empty and repeat the start
// date as end date.
func WriteCSV(w io.Writer, events []event.Event) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, e := range events {
		if err := writer.Write(csvRow(RecordFromEvent(e))); err != nil {
			return fmt.Errorf("failed to write %q: %w", e.Subject, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

func csvRow(r Record) []string {
	row := []string{r.Subject, r.Start.Format(csvDateLayout), "", r.End.Format(csvDateLayout), "", csvBool(r.AllDay), r.Description, r.Location, csvBool(r.Private)}
	if r.AllDay {
		row[3] = row[1]
	} else {
		row[2] = r.Start.Format(csvTimeLayout)
		row[4] = r.End.Format(csvTimeLayout)
	}
	return row
}

func csvBool(b bool) string {
	if b {
		return csvTrue
	}
	return csvFalse
}

// ReadCSV reads rows written by WriteCSV. Dates and times are read in loc.
func ReadCSV(r io.Reader, loc *time.Location) ([]event.Event, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = len(csvHeader)

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, &event.ValidationError{Field: "csv", Reason: "file is empty"}
	}
	if err != nil {
		return nil, &event.ValidationError{Field: "csv", Reason: err.Error()}
	}
	for i, name := range csvHeader {
		if !strings.EqualFold(strings.TrimSpace(header[i]), name) {
			return nil, &event.ValidationError{Field: "csv", Reason: fmt.Sprintf("column %d is %q, expected %q", i+1, header[i], name)}
		}
	}

	events := make([]event.Event, 0)
	for line := 2; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return events, nil
		}
		if err != nil {
			return nil, &event.ValidationError{Field: "csv", Reason: err.Error()}
		}
		record, err := parseCSVRow(row, loc)
		if err != nil {
			return nil, &event.ValidationError{Field: "csv", Reason: fmt.Sprintf("line %d: %v", line, err)}
		}
		e, err := record.Event()
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		events = append(events, e)
	}
}

func parseCSVRow(row []string, loc *time.Location) (Record, error) {
	allDay, err := parseCSVBool(row[5])
	if err != nil {
		return Record{}, err
	}
	private, err := parseCSVBool(row[8])
	if err != nil {
		return Record{}, err
	}
	record := Record{
		Subject:     row[0],
		AllDay:      allDay,
		Description: row[6],
		Location:    row[7],
		Private:     private,
	}
	if allDay {
		record.Start, err = time.ParseInLocation(csvDateLayout, row[1], loc)
		if err != nil {
			return Record{}, fmt.Errorf("start date %q does not match MM/dd/yyyy", row[1])
		}
		record.End = record.Start
		return record, nil
	}
	if record.Start, err = parseCSVMoment(row[1], row[2], loc); err != nil {
		return Record{}, fmt.Errorf("start: %w", err)
	}
	if record.End, err = parseCSVMoment(row[3], row[4], loc); err != nil {
		return Record{}, fmt.Errorf("end: %w", err)
	}
	return record, nil
}

func parseCSVMoment(date, clock string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(csvDateLayout+" "+csvTimeLayout, strings.TrimSpace(date)+" "+strings.TrimSpace(clock), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%q %q does not match MM/dd/yyyy h:mm:ss a", date, clock)
	}
	return t, nil
}

func parseCSVBool(s string) (bool, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case csvTrue:
		return true, nil
	case csvFalse, "":
		return false, nil
	}
	return false, fmt.Errorf("%q is neither TRUE nor FALSE", s)
}

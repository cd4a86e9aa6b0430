// Package ingest parses the two upload formats the analysis accepts: a
// pressure-data CSV (timestamp, pressure in metres head) and a property
// heights CSV (a single column of elevations). Parsing is strict: every
// malformed row is reported, and any malformed row aborts the run.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/multierr"

	"github.com/lmr105/supply-interruption-service/internal/domain"
)

// timestampLayouts are tried in order. Day-first layouts come before
// month-first since logger exports are UK-formatted; all values are read as
// naive UTC (timezone handling is out of scope).
var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	time.RFC3339,
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"2006-01-02",
	"02/01/2006",
}

func parseTimestamp(value string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", value)
}

// ReadPressureCSV parses a pressure-data CSV: a header row, then one row per
// sample with the timestamp in the first column and the pressure in the
// second. Rows are returned sorted by timestamp, mirroring the upstream
// procedure of sorting before analysis.
func ReadPressureCSV(r io.Reader) ([]domain.Reading, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read pressure csv: %w", err)
	}
	if len(rows) < 2 {
		return nil, &domain.MalformedInputError{Field: "pressure_csv", Reason: "no data rows"}
	}

	var errs error
	readings := make([]domain.Reading, 0, len(rows)-1)

	for i, row := range rows[1:] {
		line := i + 2 // 1-based, after the header
		if len(row) < 2 {
			errs = multierr.Append(errs, &domain.MalformedInputError{
				Field: "pressure_csv", Row: line,
				Reason: "expected timestamp and pressure columns",
			})
			continue
		}

		ts, tsErr := parseTimestamp(strings.TrimSpace(row[0]))
		if tsErr != nil {
			errs = multierr.Append(errs, &domain.MalformedInputError{
				Field: "pressure_csv", Row: line, Reason: tsErr.Error(),
			})
			continue
		}

		pressure, pErr := strconv.ParseFloat(strings.TrimSpace(row[1]), 64)
		if pErr != nil {
			errs = multierr.Append(errs, &domain.MalformedInputError{
				Field: "pressure_csv", Row: line,
				Reason: fmt.Sprintf("non-numeric pressure %q", row[1]),
			})
			continue
		}

		readings = append(readings, domain.Reading{Timestamp: ts, Pressure: pressure})
	}

	if errs != nil {
		return nil, errs
	}

	sort.SliceStable(readings, func(i, j int) bool {
		return readings[i].Timestamp.Before(readings[j].Timestamp)
	})
	return readings, nil
}

// ReadHeightsCSV parses the property heights file: one elevation per row, no
// header. A non-numeric first row is malformed input, not a header to skip —
// the upstream procedure reads this file headerless and we preserve that.
func ReadHeightsCSV(r io.Reader) ([]float64, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read heights csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, &domain.MalformedInputError{Field: "heights_csv", Reason: "no data rows"}
	}

	var errs error
	heights := make([]float64, 0, len(rows))

	for i, row := range rows {
		line := i + 1
		if len(row) < 1 || strings.TrimSpace(row[0]) == "" {
			errs = multierr.Append(errs, &domain.MalformedInputError{
				Field: "heights_csv", Row: line, Reason: "empty row",
			})
			continue
		}
		h, hErr := strconv.ParseFloat(strings.TrimSpace(row[0]), 64)
		if hErr != nil {
			errs = multierr.Append(errs, &domain.MalformedInputError{
				Field: "heights_csv", Row: line,
				Reason: fmt.Sprintf("non-numeric height %q", row[0]),
			})
			continue
		}
		heights = append(heights, h)
	}

	if errs != nil {
		return nil, errs
	}
	return heights, nil
}

package domain

import (
	"fmt"
	"sort"
	"time"
)

// Reading is one logger sample: a timestamp and the pressure at the logger
// in metres head.
type Reading struct {
	Timestamp time.Time `json:"timestamp"`
	Pressure  float64   `json:"pressure"`
}

// PropertyGroup is the set of properties sharing one elevation. Supply
// status depends only on elevation, so the group is the unit of analysis.
type PropertyGroup struct {
	Height float64 `json:"height"`
	Count  int     `json:"count"`
}

// MalformedInputError describes input the core refuses to analyse. A
// silently-wrong outage calculation is worse than a refusal, so these abort
// the whole run; no partial output is produced.
type MalformedInputError struct {
	Field  string // input the problem was found in, e.g. "pressure_csv"
	Row    int    // 1-based row in the source, 0 when not row-specific
	Reason string
}

func (e *MalformedInputError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("malformed input: %s row %d: %s", e.Field, e.Row, e.Reason)
	}
	return fmt.Sprintf("malformed input: %s: %s", e.Field, e.Reason)
}

// ValidateReadings checks the extractor's precondition: a non-empty series
// with non-decreasing timestamps. Sorting is the ingestion collaborator's
// job; validation only refuses, it never reorders.
func ValidateReadings(readings []Reading) error {
	if len(readings) == 0 {
		return &MalformedInputError{Field: "readings", Reason: "empty series"}
	}
	for i := 1; i < len(readings); i++ {
		if readings[i].Timestamp.Before(readings[i-1].Timestamp) {
			return &MalformedInputError{
				Field:  "readings",
				Row:    i + 1,
				Reason: fmt.Sprintf("timestamp %s precedes previous %s",
					readings[i].Timestamp.Format(time.RFC3339),
					readings[i-1].Timestamp.Format(time.RFC3339)),
			}
		}
	}
	return nil
}

// GroupProperties collapses raw property heights (duplicates expected) into
// PropertyGroups, ordered by height descending — higher elevations are
// typically the worst affected and lead every report.
func GroupProperties(heights []float64) []PropertyGroup {
	counts := make(map[float64]int, len(heights))
	for _, h := range heights {
		counts[h]++
	}

	groups := make([]PropertyGroup, 0, len(counts))
	for h, n := range counts {
		groups = append(groups, PropertyGroup{Height: h, Count: n})
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Height > groups[j].Height })
	return groups
}

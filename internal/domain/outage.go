package domain

import (
	"sort"
	"time"
)

// Thresholds carries the aggregation constants. They are parameters rather
// than literals so boundary values can be exercised in tests and tuned per
// deployment.
type Thresholds struct {
	// MergeGap is the longest restoration that does not count as a genuine
	// return to service. Interruptions separated by less than this merge.
	MergeGap time.Duration `json:"merge_gap"`

	// MinDuration is the reporting floor: merged outages whose cumulative
	// duration falls below it are dropped.
	MinDuration time.Duration `json:"min_duration"`
}

// DefaultThresholds returns the conventional 1 h merge gap and 3 h
// reporting minimum.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MergeGap:    time.Hour,
		MinDuration: 3 * time.Hour,
	}
}

// AggregatedOutage is a "true" outage for one property group: a run of
// interruption events merged because the restorations between them were too
// brief to count, with the reporting threshold already applied.
type AggregatedOutage struct {
	Height     float64       `json:"height"`
	Count      int           `json:"count"`
	LostAt     time.Time     `json:"lost_at"`
	RegainedAt time.Time     `json:"regained_at"`

	// Cumulative sums the merged event durations plus every folded-in gap.
	Cumulative time.Duration `json:"cumulative"`

	// Open is carried over from a trailing open interruption: the outage was
	// still active at the end of the series and Cumulative is a lower bound.
	Open bool `json:"open,omitempty"`

	// Impact and Cost are filled in during collation, not by the aggregator.
	Impact float64 `json:"impact"`
	Cost   float64 `json:"cost,omitempty"`
}

// AggregateOutages merges one group's interruption events into true outages.
// Events are sorted by loss time here rather than assumed sorted. A gap
// strictly below th.MergeGap folds the next event into the running outage,
// with the gap itself counting toward the cumulative duration; a gap at or
// above it closes the running outage, which is emitted only when its
// cumulative duration reaches th.MinDuration (boundary inclusive).
func AggregateOutages(group PropertyGroup, events []InterruptionEvent, th Thresholds) []AggregatedOutage {
	if len(events) == 0 {
		return nil
	}

	sorted := make([]InterruptionEvent, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].LostAt.Before(sorted[j].LostAt) })

	var out []AggregatedOutage
	running := startOutage(group, sorted[0])

	for _, e := range sorted[1:] {
		gap := e.LostAt.Sub(running.RegainedAt)
		if gap < th.MergeGap {
			running.RegainedAt = e.RegainedAt
			running.Cumulative += gap + e.Duration
			running.Open = e.Open
			continue
		}
		if running.Cumulative >= th.MinDuration {
			out = append(out, running)
		}
		running = startOutage(group, e)
	}

	if running.Cumulative >= th.MinDuration {
		out = append(out, running)
	}
	return out
}

func startOutage(group PropertyGroup, e InterruptionEvent) AggregatedOutage {
	return AggregatedOutage{
		Height:     group.Height,
		Count:      group.Count,
		LostAt:     e.LostAt,
		RegainedAt: e.RegainedAt,
		Cumulative: e.Duration,
		Open:       e.Open,
	}
}

// SortOutages orders outages by height descending. The sort is stable so
// within a height the chronological order from aggregation survives.
func SortOutages(outages []AggregatedOutage) {
	sort.SliceStable(outages, func(i, j int) bool { return outages[i].Height > outages[j].Height })
}

package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func event(lost, regained time.Time) InterruptionEvent {
	return InterruptionEvent{LostAt: lost, RegainedAt: regained, Duration: regained.Sub(lost)}
}

func TestAggregateOutages_MergesSubThresholdGap(t *testing.T) {
	// Two events separated by a 30 min restoration: below the 1 h merge gap,
	// so they fold into one outage whose cumulative duration includes the gap.
	t0 := time.Date(2024, 3, 1, 6, 0, 0, 0, time.UTC)
	group := PropertyGroup{Height: 120, Count: 14}
	first := event(t0, t0.Add(2*time.Hour))
	second := event(t0.Add(2*time.Hour+30*time.Minute), t0.Add(5*time.Hour))

	outages := AggregateOutages(group, []InterruptionEvent{first, second}, DefaultThresholds())

	require.Len(t, outages, 1)
	got := outages[0]
	assert.Equal(t, 120.0, got.Height)
	assert.Equal(t, 14, got.Count)
	assert.Equal(t, first.LostAt, got.LostAt)
	assert.Equal(t, second.RegainedAt, got.RegainedAt)
	// 2h + 30min gap + 2h30m = 5h
	assert.Equal(t, 5*time.Hour, got.Cumulative)
}

func TestAggregateOutages_ChainOfSubThresholdGaps(t *testing.T) {
	// A chain where every gap is under the merge threshold collapses to one
	// outage summing all durations and all gaps.
	t0 := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	group := PropertyGroup{Height: 95, Count: 3}
	events := []InterruptionEvent{
		event(t0, t0.Add(time.Hour)),
		event(t0.Add(time.Hour+20*time.Minute), t0.Add(2*time.Hour)),
		event(t0.Add(2*time.Hour+45*time.Minute), t0.Add(4*time.Hour)),
	}

	outages := AggregateOutages(group, events, DefaultThresholds())

	require.Len(t, outages, 1)
	assert.Equal(t, t0, outages[0].LostAt)
	assert.Equal(t, t0.Add(4*time.Hour), outages[0].RegainedAt)
	// Full span t0..t0+4h with no excluded gaps.
	assert.Equal(t, 4*time.Hour, outages[0].Cumulative)
}

func TestAggregateOutages_SplitsOnGenuineRestoration(t *testing.T) {
	t0 := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	group := PropertyGroup{Height: 110, Count: 7}
	events := []InterruptionEvent{
		event(t0, t0.Add(4*time.Hour)),
		// 90 min restoration: a genuine return to service.
		event(t0.Add(5*time.Hour+30*time.Minute), t0.Add(9*time.Hour)),
	}

	outages := AggregateOutages(group, events, DefaultThresholds())

	require.Len(t, outages, 2)
	assert.Equal(t, 4*time.Hour, outages[0].Cumulative)
	assert.Equal(t, 3*time.Hour+30*time.Minute, outages[1].Cumulative)
}

func TestAggregateOutages_ReportingThresholdBoundary(t *testing.T) {
	t0 := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	group := PropertyGroup{Height: 110, Count: 1}
	th := DefaultThresholds()

	t.Run("exactly minimum duration is included", func(t *testing.T) {
		outages := AggregateOutages(group, []InterruptionEvent{event(t0, t0.Add(3*time.Hour))}, th)
		require.Len(t, outages, 1)
		assert.Equal(t, 3*time.Hour, outages[0].Cumulative)
	})

	t.Run("one second less is excluded", func(t *testing.T) {
		outages := AggregateOutages(group, []InterruptionEvent{event(t0, t0.Add(3*time.Hour-time.Second))}, th)
		assert.Empty(t, outages)
	})
}

func TestAggregateOutages_SortsUnorderedEvents(t *testing.T) {
	t0 := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	group := PropertyGroup{Height: 110, Count: 2}
	late := event(t0.Add(2*time.Hour+15*time.Minute), t0.Add(4*time.Hour))
	early := event(t0, t0.Add(2*time.Hour))

	outages := AggregateOutages(group, []InterruptionEvent{late, early}, DefaultThresholds())

	require.Len(t, outages, 1)
	assert.Equal(t, t0, outages[0].LostAt)
	assert.Equal(t, 4*time.Hour, outages[0].Cumulative)
}

func TestAggregateOutages_GapAtThresholdDoesNotMerge(t *testing.T) {
	t0 := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	group := PropertyGroup{Height: 110, Count: 2}
	events := []InterruptionEvent{
		event(t0, t0.Add(3*time.Hour)),
		// Exactly the merge gap: not "below threshold", so no merge.
		event(t0.Add(4*time.Hour), t0.Add(8*time.Hour)),
	}

	outages := AggregateOutages(group, events, DefaultThresholds())

	require.Len(t, outages, 2)
}

func TestAggregateOutages_CarriesOpenFlag(t *testing.T) {
	t0 := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	group := PropertyGroup{Height: 110, Count: 2}
	closed := event(t0, t0.Add(2*time.Hour))
	open := event(t0.Add(2*time.Hour+30*time.Minute), t0.Add(6*time.Hour))
	open.Open = true

	outages := AggregateOutages(group, []InterruptionEvent{closed, open}, DefaultThresholds())

	require.Len(t, outages, 1)
	assert.True(t, outages[0].Open, "an outage ending in an open interruption is itself open")
}

func TestAggregateOutages_EmptyAndSingle(t *testing.T) {
	t0 := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	group := PropertyGroup{Height: 110, Count: 2}

	assert.Empty(t, AggregateOutages(group, nil, DefaultThresholds()))

	single := AggregateOutages(group, []InterruptionEvent{event(t0, t0.Add(5*time.Hour))}, DefaultThresholds())
	require.Len(t, single, 1)
	assert.Equal(t, 5*time.Hour, single[0].Cumulative)
}

func TestSortOutages_HeightDescendingStable(t *testing.T) {
	t0 := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	outages := []AggregatedOutage{
		{Height: 95, LostAt: t0},
		{Height: 120, LostAt: t0},
		{Height: 95, LostAt: t0.Add(6 * time.Hour)},
		{Height: 140, LostAt: t0},
	}

	SortOutages(outages)

	assert.Equal(t, 140.0, outages[0].Height)
	assert.Equal(t, 120.0, outages[1].Height)
	assert.Equal(t, 95.0, outages[2].Height)
	assert.Equal(t, 95.0, outages[3].Height)
	assert.True(t, outages[2].LostAt.Before(outages[3].LostAt), "chronology within a height survives")
}

func TestGroupProperties(t *testing.T) {
	groups := GroupProperties([]float64{95, 120, 95, 140, 120, 95})

	require.Len(t, groups, 3)
	assert.Equal(t, PropertyGroup{Height: 140, Count: 1}, groups[0])
	assert.Equal(t, PropertyGroup{Height: 120, Count: 2}, groups[1])
	assert.Equal(t, PropertyGroup{Height: 95, Count: 3}, groups[2])
}

func TestValidateReadings(t *testing.T) {
	t0 := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	t.Run("empty series is malformed", func(t *testing.T) {
		err := ValidateReadings(nil)
		var malformed *MalformedInputError
		require.ErrorAs(t, err, &malformed)
		assert.Equal(t, "readings", malformed.Field)
	})

	t.Run("non-decreasing passes, duplicates allowed", func(t *testing.T) {
		readings := []Reading{
			{Timestamp: t0}, {Timestamp: t0}, {Timestamp: t0.Add(time.Hour)},
		}
		assert.NoError(t, ValidateReadings(readings))
	})

	t.Run("out of order is malformed with the row identified", func(t *testing.T) {
		readings := []Reading{
			{Timestamp: t0.Add(time.Hour)}, {Timestamp: t0},
		}
		err := ValidateReadings(readings)
		var malformed *MalformedInputError
		require.ErrorAs(t, err, &malformed)
		assert.Equal(t, 2, malformed.Row)
	})
}

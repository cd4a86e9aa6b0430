package domain

import "time"

// InterruptionEvent is one contiguous period during which a property group
// was out of supply. LostAt never follows RegainedAt.
type InterruptionEvent struct {
	LostAt     time.Time     `json:"lost_at"`
	RegainedAt time.Time     `json:"regained_at"`
	Duration   time.Duration `json:"duration"`

	// Open marks an interruption still active at the end of the series. It
	// is closed at the final timestamp, so Duration is a lower bound on the
	// true interruption, not a fact.
	Open bool `json:"open,omitempty"`
}

// ExtractInterruptions scans a supply signal aligned to readings and emits
// the interruption events it contains, in order. It is a single linear pass
// of a two-state machine seeded by signal[0]: entering false records a loss,
// returning to true emits the event. A scan that ends out of supply emits a
// final Open event closed at the last timestamp.
//
// A uniformly-true signal yields no events. A single-sample series observes
// no transition and also yields no events.
func ExtractInterruptions(readings []Reading, signal []bool) []InterruptionEvent {
	if len(readings) < 2 || len(readings) != len(signal) {
		return nil
	}

	var (
		events      []InterruptionEvent
		interrupted bool
		lostAt      time.Time
	)

	for i := range signal {
		switch {
		case !signal[i] && !interrupted:
			interrupted = true
			lostAt = readings[i].Timestamp
		case signal[i] && interrupted:
			regained := readings[i].Timestamp
			events = append(events, InterruptionEvent{
				LostAt:     lostAt,
				RegainedAt: regained,
				Duration:   regained.Sub(lostAt),
			})
			interrupted = false
		}
	}

	if interrupted {
		last := readings[len(readings)-1].Timestamp
		events = append(events, InterruptionEvent{
			LostAt:     lostAt,
			RegainedAt: last,
			Duration:   last.Sub(lostAt),
			Open:       true,
		})
	}

	return events
}

// StatusSnapshot is the last-known supply state of a property group: the
// state at the final reading and how long it has held, for at-a-glance
// monitoring.
type StatusSnapshot struct {
	InSupply bool          `json:"in_supply"`
	Since    time.Time     `json:"since"`
	Elapsed  time.Duration `json:"elapsed"`
	AsOf     time.Time     `json:"as_of"`
}

// LastKnownStatus reports the supply state at the final reading and the
// elapsed time since that state began. Elapsed is measured against the final
// timestamp, not the wall clock.
func LastKnownStatus(readings []Reading, signal []bool) StatusSnapshot {
	n := len(readings)
	if n == 0 || n != len(signal) {
		return StatusSnapshot{}
	}

	current := signal[n-1]
	since := n - 1
	for since > 0 && signal[since-1] == current {
		since--
	}

	last := readings[n-1].Timestamp
	start := readings[since].Timestamp
	return StatusSnapshot{
		InSupply: current,
		Since:    start,
		Elapsed:  last.Sub(start),
		AsOf:     last,
	}
}

// Package domain models piped-water supply interruptions derived from a
// single pressure logger.
//
// # Measurement Conventions
//
// All elevations and pressures are in metres head. A pressure logger at a
// known elevation samples the main at (roughly) regular intervals; every
// property fed from that main is characterised only by its own elevation, so
// properties sharing an elevation are collapsed into one [PropertyGroup].
//
// Effective supply head:
//
//	effectiveHead = loggerHeight + (pressure - headloss - referenceOffset)
//
//	referenceOffset is the residual head a property needs for nominal
//	supply (3 m by convention). A property at height h is in supply when
//	effectiveHead > h.
//
// Properties at or below the logger elevation use a simpler field rule:
// supply holds whenever the headloss-adjusted pressure is positive. The rule
// is preserved exactly as practised, including a reading of exactly 0 m
// counting as out of supply; it has not been re-derived from the head
// formula, so do not "fix" it without domain sign-off.
//
// # Interruptions and True Outages
//
// Scanning the boolean supply signal left to right yields discrete
// [InterruptionEvent]s. An interruption still active at the final sample is
// closed at the final timestamp and marked Open: its duration is a lower
// bound, not a fact.
//
// Customers do not perceive a restoration shorter than the merge gap (1 h by
// convention) as a genuine return to service, so chains of interruptions
// separated by sub-gap restorations merge into a single [AggregatedOutage],
// with the folded-in gaps counting toward the cumulative duration. Only
// outages whose cumulative duration reaches the reporting minimum (3 h) are
// reported.
//
// # Impact
//
// Impact is a customer-minutes-lost style metric: outage hours times
// affected properties, normalised by the total properties served
// network-wide and scaled to minutes. See [Impact].
package domain

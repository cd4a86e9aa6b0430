package domain

import "time"

// DefaultNetworkProperties is the total number of connected properties
// served network-wide, the normalisation base for the impact metric.
const DefaultNetworkProperties = 1473786

// Impact converts an outage duration and affected-property count into the
// customer-minutes-lost style metric: minutes of equivalent outage per
// average connected property.
func Impact(cumulative time.Duration, affected, networkProperties int) float64 {
	if networkProperties <= 0 {
		return 0
	}
	return cumulative.Hours() * float64(affected) / float64(networkProperties) * 60
}

// ImpactRate expresses a total impact as a rate over the observation window.
func ImpactRate(totalImpact float64, window time.Duration) float64 {
	hours := window.Hours()
	if hours <= 0 {
		return 0
	}
	return totalImpact / hours
}

// Cost converts an impact figure to money at a fixed unit cost. The unit
// cost is configuration, not a domain quantity.
func Cost(impact, unitCost float64) float64 {
	return impact * unitCost
}

package analysis

import (
	"time"

	"github.com/lmr105/supply-interruption-service/internal/domain"
)

// Parameters are the scalar inputs of one analysis run. Thresholds and
// network size arrive from configuration; logger height and headloss are
// per-dataset.
type Parameters struct {
	LoggerHeight    float64           `json:"logger_height"`
	Headloss        float64           `json:"headloss,omitempty"`
	ReferenceOffset float64           `json:"reference_offset"`
	Thresholds      domain.Thresholds `json:"thresholds"`

	NetworkProperties int `json:"network_properties"`

	// UnitCost is the money-per-impact-unit conversion; zero disables cost
	// figures in the output.
	UnitCost float64 `json:"unit_cost,omitempty"`
}

// DefaultParameters returns run parameters with the conventional constants
// filled in.
func DefaultParameters(loggerHeight float64) Parameters {
	return Parameters{
		LoggerHeight:      loggerHeight,
		ReferenceOffset:   domain.DefaultReferenceOffset,
		Thresholds:        domain.DefaultThresholds(),
		NetworkProperties: domain.DefaultNetworkProperties,
	}
}

// withDefaults fills unset threshold and normalisation fields so callers that
// only supply a logger height still get the conventional behaviour.
func (p Parameters) withDefaults() Parameters {
	if p.Thresholds.MergeGap == 0 {
		p.Thresholds.MergeGap = domain.DefaultThresholds().MergeGap
	}
	if p.Thresholds.MinDuration == 0 {
		p.Thresholds.MinDuration = domain.DefaultThresholds().MinDuration
	}
	if p.NetworkProperties == 0 {
		p.NetworkProperties = domain.DefaultNetworkProperties
	}
	return p
}

// GroupResult is the full per-elevation output: the raw interruption list,
// the aggregated outages, and the last-known supply state.
type GroupResult struct {
	Group domain.PropertyGroup `json:"group"`

	// AlwaysInSupply marks a group with no interruptions at all; report
	// formatting renders it as the "in supply all times" sentinel row.
	AlwaysInSupply bool `json:"always_in_supply"`

	Interruptions []domain.InterruptionEvent `json:"interruptions,omitempty"`
	Outages       []domain.AggregatedOutage  `json:"outages,omitempty"`
	LastStatus    domain.StatusSnapshot      `json:"last_status"`
}

// Result is one complete analysis run.
type Result struct {
	RunID      string     `json:"run_id"`
	AnalyzedAt time.Time  `json:"analyzed_at"`
	Parameters Parameters `json:"parameters"`

	// Observation window, taken from the first and last reading.
	WindowStart time.Time `json:"window_start"`
	WindowEnd   time.Time `json:"window_end"`

	// Groups ordered by height descending.
	Groups []GroupResult `json:"groups"`

	// Outages across all groups, height descending, impact figures filled.
	Outages []domain.AggregatedOutage `json:"outages"`

	TotalImpact   float64 `json:"total_impact"`
	ImpactPerHour float64 `json:"impact_per_hour"`
	TotalCost     float64 `json:"total_cost,omitempty"`
}

// Window returns the observation span.
func (r *Result) Window() time.Duration {
	return r.WindowEnd.Sub(r.WindowStart)
}

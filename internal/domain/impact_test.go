package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestImpact(t *testing.T) {
	t.Run("reference scenario", func(t *testing.T) {
		// 3 h outage affecting 100 properties against the full network:
		// (3 * 100 / 1473786) * 60 ≈ 0.01221.
		got := Impact(3*time.Hour, 100, DefaultNetworkProperties)
		assert.InDelta(t, 0.0122134, got, 1e-6)
	})

	t.Run("scales linearly with count and duration", func(t *testing.T) {
		base := Impact(2*time.Hour, 50, DefaultNetworkProperties)
		assert.InDelta(t, 2*base, Impact(4*time.Hour, 50, DefaultNetworkProperties), 1e-12)
		assert.InDelta(t, 2*base, Impact(2*time.Hour, 100, DefaultNetworkProperties), 1e-12)
	})

	t.Run("degenerate inputs", func(t *testing.T) {
		assert.Zero(t, Impact(3*time.Hour, 100, 0))
		assert.Zero(t, Impact(3*time.Hour, 100, -5))
		assert.Zero(t, Impact(0, 100, DefaultNetworkProperties))
	})
}

func TestImpactRate(t *testing.T) {
	assert.InDelta(t, 0.5, ImpactRate(12, 24*time.Hour), 1e-12)
	assert.Zero(t, ImpactRate(12, 0))
	assert.Zero(t, ImpactRate(12, -time.Hour))
}

func TestCost(t *testing.T) {
	assert.InDelta(t, 61.5, Cost(0.5, 123), 1e-12)
	assert.Zero(t, Cost(0.5, 0))
}

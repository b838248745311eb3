package model

import (
	"math"
	"testing"
)

// TestNeutralQuality tests the neutral quality fallback.
func TestNeutralQuality(t *testing.T) {
	t.Parallel()

	q := NeutralQuality()
	for name, v := range map[string]float64{
		"Compression": q.Compression,
		"Blocking":    q.Blocking,
		"Noise":       q.Noise,
		"Resolution":  q.Resolution,
		"Overall":     q.Overall,
	} {
		if v != 0.5 {
			t.Errorf("%s = %f, want 0.5", name, v)
		}
	}
}

// TestWeightedOverall tests the fixed-weight combination.
func TestWeightedOverall(t *testing.T) {
	t.Parallel()

	t.Run("weights sum to one", func(t *testing.T) {
		t.Parallel()
		sum := QualityWeightCompression + QualityWeightBlocking +
			QualityWeightNoise + QualityWeightResolution
		if math.Abs(sum-1.0) > 1e-9 {
			t.Errorf("weights sum to %f, want 1.0", sum)
		}
	})

	t.Run("perfect components yield 1.0", func(t *testing.T) {
		t.Parallel()
		if got := WeightedOverall(1, 1, 1, 1); math.Abs(got-1.0) > 1e-9 {
			t.Errorf("WeightedOverall(1,1,1,1) = %f, want 1.0", got)
		}
	})

	t.Run("weights are applied per component", func(t *testing.T) {
		t.Parallel()
		if got := WeightedOverall(1, 0, 0, 0); math.Abs(got-QualityWeightCompression) > 1e-9 {
			t.Errorf("compression-only = %f, want %f", got, QualityWeightCompression)
		}
		if got := WeightedOverall(0, 0, 0, 1); math.Abs(got-QualityWeightResolution) > 1e-9 {
			t.Errorf("resolution-only = %f, want %f", got, QualityWeightResolution)
		}
	})
}

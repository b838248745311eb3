package fusion

import (
	"testing"

	"github.com/trustscan-dev/trustscan/internal/model"
)

func TestValidateTables(t *testing.T) {
	t.Parallel()

	if err := validateTables(); err != nil {
		t.Fatalf("validateTables() = %v, want nil", err)
	}
}

func TestTierFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		quality float64
		want    string
	}{
		{0.0, "very_low_quality"},
		{0.29, "very_low_quality"},
		{0.3, "low_quality"},
		{0.49, "low_quality"},
		{0.5, "moderate_quality"},
		{0.69, "moderate_quality"},
		{0.7, "good_quality"},
		{1.0, "good_quality"},
		{-0.1, "very_low_quality"}, // clamped
		{1.1, "good_quality"},      // clamped
	}
	for _, tt := range tests {
		if got := tierFor(tt.quality); got.Name != tt.want {
			t.Errorf("tierFor(%v) = %q, want %q", tt.quality, got.Name, tt.want)
		}
	}
}

func TestDecisionBandsExhaustive(t *testing.T) {
	t.Parallel()

	// Every adjusted score in [0, 1] must map to exactly one decision in
	// every tier.
	for _, tier := range dampeningTiers {
		if tier.Forced != "" {
			continue
		}
		for score := 0.0; score <= 1.0; score += 0.01 {
			matched := 0
			var first model.Decision
			for _, band := range tier.Bands {
				if band.matches(score) {
					if matched == 0 {
						first = band.Decision
					}
					matched++
				}
			}
			if matched == 0 {
				t.Fatalf("tier %q: score %.2f matches no band", tier.Name, score)
			}
			if first == "" {
				t.Fatalf("tier %q: score %.2f resolved to empty decision", tier.Name, score)
			}
		}
	}
}

func TestDampeningFactorsMonotonic(t *testing.T) {
	t.Parallel()

	prev := 0.0
	for _, tier := range dampeningTiers {
		if tier.Factor < prev {
			t.Fatalf("tier %q factor %v below previous %v", tier.Name, tier.Factor, prev)
		}
		prev = tier.Factor
	}
	if prev != 1.0 {
		t.Fatalf("top tier factor = %v, want 1.0", prev)
	}
}

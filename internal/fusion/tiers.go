package fusion

import (
	"fmt"
	"math"

	"github.com/trustscan-dev/trustscan/internal/model"
)

// Signal weights for the raw fused score. Vision is the most reliable
// single signal; audio and temporal split the remainder evenly.
// The weights are fixed constants and must sum to 1.0 (checked at
// package init).
const (
	VisionWeight   = 0.4
	AudioWeight    = 0.3
	TemporalWeight = 0.3
)

// decisionBand maps a score range onto a decision. Bands are evaluated
// in order; the first matching band wins, and a band with no threshold
// condition (Above == false, Below == false) is the fallback.
type decisionBand struct {
	// Above, when true, matches scores strictly greater than Threshold.
	Above bool

	// Below, when true, matches scores strictly less than Threshold.
	Below bool

	// Threshold is the band boundary; unused for the fallback band.
	Threshold float64

	// Decision is the verdict for this band.
	Decision model.Decision

	// Confidence is the label reported for this band.
	Confidence model.ConfidenceLevel

	// Reason is the base explanation for this band.
	Reason string
}

// matches reports whether score falls in this band.
func (b decisionBand) matches(score float64) bool {
	switch {
	case b.Above:
		return score > b.Threshold
	case b.Below:
		return score < b.Threshold
	default:
		return true
	}
}

// dampeningTier describes one quality range and how it discounts the raw
// fused score. Tier ranges are half-open [Min, Max) except the top tier,
// which is closed at 1.0; a quality value exactly on a boundary belongs
// to the higher tier.
type dampeningTier struct {
	// Name identifies the tier in logs.
	Name string

	// Min and Max delimit the quality.Overall range.
	Min float64
	Max float64

	// Factor multiplies the raw score; lower quality means a smaller
	// factor. Factors are monotonically non-decreasing across tiers.
	Factor float64

	// Forced, when set, bypasses decision banding entirely: the tier
	// always yields this decision with ForcedConfidence and ForcedReason.
	Forced           model.Decision
	ForcedConfidence model.ConfidenceLevel
	ForcedReason     string

	// Bands is the ordered decision table for non-forced tiers.
	Bands []decisionBand
}

// contains reports whether q falls in this tier's quality range.
// The top tier (Max == 1) is closed at the top.
func (t dampeningTier) contains(q float64) bool {
	if t.Max >= 1 {
		return q >= t.Min && q <= 1
	}
	return q >= t.Min && q < t.Max
}

// dampeningTiers is the fixed calibration table. It is a structured,
// enumerable constant validated at package init, not runtime-shaped
// configuration.
var dampeningTiers = []dampeningTier{
	{
		Name:             "very_low_quality",
		Min:              0.0,
		Max:              0.3,
		Factor:           0.4,
		Forced:           model.DecisionAmbiguous,
		ForcedConfidence: model.ConfidenceLow,
		ForcedReason:     "very low quality input - cannot make reliable assessment",
	},
	{
		Name:             "low_quality",
		Min:              0.3,
		Max:              0.5,
		Factor:           0.6,
		Forced:           model.DecisionAmbiguous,
		ForcedConfidence: model.ConfidenceLow,
		ForcedReason:     "low quality input - limited confidence",
	},
	{
		Name:   "moderate_quality",
		Min:    0.5,
		Max:    0.7,
		Factor: 0.85,
		Bands: []decisionBand{
			{Above: true, Threshold: 0.65, Decision: model.DecisionLikelyReal,
				Confidence: model.ConfidenceMedium,
				Reason:     "moderate quality - signals indicate real content"},
			{Below: true, Threshold: 0.35, Decision: model.DecisionLikelyFake,
				Confidence: model.ConfidenceMedium,
				Reason:     "moderate quality - multiple suspicious signals"},
			{Decision: model.DecisionAmbiguous,
				Confidence: model.ConfidenceLow,
				Reason:     "moderate quality - mixed signals"},
		},
	},
	{
		Name:   "good_quality",
		Min:    0.7,
		Max:    1.0,
		Factor: 1.0,
		Bands: []decisionBand{
			{Above: true, Threshold: 0.7, Decision: model.DecisionReal,
				Confidence: model.ConfidenceHigh,
				Reason:     "high quality input - strong real signals"},
			{Below: true, Threshold: 0.3, Decision: model.DecisionFake,
				Confidence: model.ConfidenceHigh,
				Reason:     "high quality input - strong deepfake signals"},
			{Above: true, Threshold: 0.55, Decision: model.DecisionLikelyReal,
				Confidence: model.ConfidenceMedium,
				Reason:     "good quality - signals lean toward real"},
			{Below: true, Threshold: 0.45, Decision: model.DecisionLikelyFake,
				Confidence: model.ConfidenceMedium,
				Reason:     "good quality - signals lean toward fake"},
			{Decision: model.DecisionAmbiguous,
				Confidence: model.ConfidenceLow,
				Reason:     "good quality - balanced signals, cannot determine"},
		},
	},
}

// tierFor returns the dampening tier for a quality value, clamping
// out-of-range input to the nearest tier.
func tierFor(quality float64) dampeningTier {
	for _, t := range dampeningTiers {
		if t.contains(quality) {
			return t
		}
	}
	if quality < 0 {
		return dampeningTiers[0]
	}
	return dampeningTiers[len(dampeningTiers)-1]
}

// validateTables checks the structural invariants of the calibration
// tables: signal weights sum to 1, tiers tile [0, 1] contiguously,
// factors are monotonically non-decreasing, and every tier either forces
// a decision or carries an exhaustive band list (trailing fallback).
func validateTables() error {
	if math.Abs(VisionWeight+AudioWeight+TemporalWeight-1.0) > 1e-9 {
		return fmt.Errorf("signal weights sum to %v, want 1.0",
			VisionWeight+AudioWeight+TemporalWeight)
	}

	prev := 0.0
	prevFactor := 0.0
	for _, t := range dampeningTiers {
		if t.Min != prev {
			return fmt.Errorf("tier %q starts at %v, want %v (tiers must tile [0,1])", t.Name, t.Min, prev)
		}
		if t.Max <= t.Min {
			return fmt.Errorf("tier %q has empty range [%v,%v)", t.Name, t.Min, t.Max)
		}
		if t.Factor < prevFactor {
			return fmt.Errorf("tier %q factor %v decreases below %v", t.Name, t.Factor, prevFactor)
		}
		if t.Forced == "" {
			if len(t.Bands) == 0 {
				return fmt.Errorf("tier %q has neither forced decision nor bands", t.Name)
			}
			last := t.Bands[len(t.Bands)-1]
			if last.Above || last.Below {
				return fmt.Errorf("tier %q band list has no fallback band", t.Name)
			}
		}
		prev = t.Max
		prevFactor = t.Factor
	}
	if prev != 1.0 {
		return fmt.Errorf("tiers end at %v, want 1.0", prev)
	}
	return nil
}

func init() {
	if err := validateTables(); err != nil {
		panic("fusion: invalid calibration tables: " + err.Error())
	}
}

package model

// Decision is the categorical authenticity verdict attached to a trust score.
//
// Design decision: we use string-typed constants rather than iota integers
// because decisions are primarily a wire/report value ("Likely Real") and
// have no meaningful ordering to exploit; severity-style sorting never
// happens on decisions.
type Decision string

// The five possible decisions. Real/Fake are only reachable when input
// quality is high enough for the top dampening tier; degraded input is
// capped at the "Likely" bands or forced to Ambiguous.
const (
	DecisionReal       Decision = "Real"
	DecisionLikelyReal Decision = "Likely Real"
	DecisionAmbiguous  Decision = "Ambiguous"
	DecisionLikelyFake Decision = "Likely Fake"
	DecisionFake       Decision = "Fake"
)

// String returns the human-readable decision label.
func (d Decision) String() string { return string(d) }

// ConfidenceLevel labels how much the engine trusts its own decision.
// It is tier-dependent, not derived from the adjusted score alone:
// low-quality tiers never report high confidence even for extreme scores.
type ConfidenceLevel string

// Confidence labels from least to most confident.
const (
	ConfidenceLow    ConfidenceLevel = "low"
	ConfidenceMedium ConfidenceLevel = "medium"
	ConfidenceHigh   ConfidenceLevel = "high"
)

// String returns the confidence label.
func (c ConfidenceLevel) String() string { return string(c) }

package model

// AdversarialResult reports how a scoring function degrades under the
// fixed catalog of synthetic attacks.
type AdversarialResult struct {
	// OriginalScore is the baseline score on the undegraded frames.
	OriginalScore float64 `json:"original_score"`

	// Attacks maps attack names ("compression_medium", "crop_medium", ...)
	// to their outcomes. When the scoring function never fails the map
	// contains exactly one entry per catalog attack.
	Attacks map[string]AttackOutcome `json:"attacks"`
}

// AttackOutcome is the result of re-scoring under a single attack.
type AttackOutcome struct {
	// Score is the trust score on the degraded frames. Meaningless when
	// Failed is true.
	Score float64 `json:"score"`

	// Degradation is |original − attacked|, always non-negative.
	Degradation float64 `json:"degradation"`

	// Failed marks an attack whose scoring call returned an error.
	// A failed attack never aborts evaluation of the remaining catalog.
	Failed bool `json:"failed,omitempty"`

	// Error is the string form of the scoring error when Failed is true.
	Error string `json:"error,omitempty"`
}

// WorstDegradation returns the largest degradation across successful
// attacks and the attack name that produced it. Returns ("", 0) when no
// attack succeeded.
func (r *AdversarialResult) WorstDegradation() (string, float64) {
	var worstName string
	var worst float64
	for name, outcome := range r.Attacks {
		if outcome.Failed {
			continue
		}
		if outcome.Degradation > worst || worstName == "" {
			worstName = name
			worst = outcome.Degradation
		}
	}
	return worstName, worst
}

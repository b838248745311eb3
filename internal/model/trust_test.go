package model

import "testing"

// TestTrustReport_Signal tests per-signal lookup with neutral fallback.
func TestTrustReport_Signal(t *testing.T) {
	t.Parallel()

	report := &TrustReport{
		Signals: map[string]SignalScore{
			SignalVision: {Value: 0.8, Confidence: 0.9},
		},
	}

	t.Run("returns the stored score", func(t *testing.T) {
		t.Parallel()
		got := report.Signal(SignalVision)
		if got.Value != 0.8 || got.Confidence != 0.9 {
			t.Errorf("Signal(vision) = %+v, want {0.8 0.9}", got)
		}
	})

	t.Run("missing signal falls back to neutral", func(t *testing.T) {
		t.Parallel()
		if got := report.Signal(SignalAudio); got != NeutralSignal() {
			t.Errorf("Signal(audio) = %+v, want neutral", got)
		}
	})

	t.Run("nil map falls back to neutral", func(t *testing.T) {
		t.Parallel()
		empty := &TrustReport{}
		if got := empty.Signal(SignalTemporal); got != NeutralSignal() {
			t.Errorf("Signal(temporal) = %+v, want neutral", got)
		}
	})
}

// TestAdversarialResult_WorstDegradation tests worst-attack selection.
func TestAdversarialResult_WorstDegradation(t *testing.T) {
	t.Parallel()

	t.Run("picks the largest successful degradation", func(t *testing.T) {
		t.Parallel()
		r := &AdversarialResult{
			OriginalScore: 0.8,
			Attacks: map[string]AttackOutcome{
				"compression_low":  {Score: 0.75, Degradation: 0.05},
				"noise_medium":     {Score: 0.5, Degradation: 0.3},
				"blur_medium":      {Failed: true, Error: "score failed"},
				"crop_medium":      {Score: 0.7, Degradation: 0.1},
			},
		}
		name, worst := r.WorstDegradation()
		if name != "noise_medium" {
			t.Errorf("worst attack = %q, want noise_medium", name)
		}
		if worst != 0.3 {
			t.Errorf("worst degradation = %f, want 0.3", worst)
		}
	})

	t.Run("all failed yields empty", func(t *testing.T) {
		t.Parallel()
		r := &AdversarialResult{
			Attacks: map[string]AttackOutcome{
				"noise_medium": {Failed: true},
			},
		}
		name, worst := r.WorstDegradation()
		if name != "" || worst != 0 {
			t.Errorf("WorstDegradation() = (%q, %f), want (\"\", 0)", name, worst)
		}
	})
}

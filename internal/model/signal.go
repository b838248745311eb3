package model

// Signal name constants. These are the keys used in TrustReport.Signals
// and in the reason-insight ordering of the fusion engine.
const (
	// SignalVision is the visual-artifact signal derived from per-frame
	// texture analysis (Laplacian variance, edge density).
	SignalVision = "vision"

	// SignalAudio is the audio-spectral signal derived from spectral
	// flatness, rolloff, and zero-crossing rate.
	SignalAudio = "audio"

	// SignalTemporal is the temporal-consistency signal derived from
	// frame-to-frame differences and motion stability.
	SignalTemporal = "temporal"
)

// SignalScore is the uniform envelope every signal provider returns.
// Value is the authenticity estimate (1.0 = authentic, 0.0 = manipulated);
// Confidence expresses how much the provider trusts its own value.
// Both lie in [0, 1].
//
// A SignalScore is immutable once returned by a provider; consumers must
// never mutate it. A missing or failed signal is represented by
// NeutralSignal(), never by a nil pointer or a zero struct.
type SignalScore struct {
	// Value is the authenticity estimate in [0, 1].
	Value float64 `json:"value"`

	// Confidence is the provider's self-assessed reliability in [0, 1].
	// Zero confidence marks a signal that contributed no evidence
	// (e.g., no audio track present).
	Confidence float64 `json:"confidence"`
}

// NeutralSignal returns the neutral default score used when a provider
// returned nothing or failed: ambiguous value, zero confidence.
//
// Design decision: the neutral value is 0.5 everywhere, so an absent
// signal pulls the fused score toward "ambiguous" rather than toward
// "fake".
func NeutralSignal() SignalScore {
	return SignalScore{Value: 0.5, Confidence: 0}
}

// Valid reports whether both fields lie in [0, 1].
func (s SignalScore) Valid() bool {
	return s.Value >= 0 && s.Value <= 1 && s.Confidence >= 0 && s.Confidence <= 1
}

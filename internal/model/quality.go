package model

// Fixed weights for the overall quality combination. They sum to 1.0,
// which keeps Overall inside [0, 1] whenever every component is in [0, 1].
// Compression and resolution dominate because they gate how much texture
// detail survives for the downstream signal providers.
const (
	QualityWeightCompression = 0.3
	QualityWeightBlocking    = 0.2
	QualityWeightNoise       = 0.2
	QualityWeightResolution  = 0.3
)

// QualityAssessment describes how analyzable the input media is.
// Every component is a score in [0, 1] where higher means better quality
// (less compression, fewer blocking artifacts, less noise, more pixels).
//
// The fusion engine consumes Overall to dampen confidence: heavily
// degraded input cannot support a confident authenticity decision no
// matter what the signals say.
type QualityAssessment struct {
	// Compression scores the amount of surviving edge detail.
	Compression float64 `json:"compression"`

	// Blocking scores the absence of block-boundary artifacts.
	Blocking float64 `json:"blocking"`

	// Noise scores the absence of sensor or re-encode noise.
	Noise float64 `json:"noise"`

	// Resolution scores the pixel count against a 720p reference.
	Resolution float64 `json:"resolution"`

	// Overall is the fixed-weight linear combination of the components.
	Overall float64 `json:"overall"`
}

// NeutralQuality returns the assessment used when no frames are available.
// All components are 0.5: unknown quality is treated as ambiguous rather
// than as either pristine or worthless input.
//
// Design decision: we use 0.5 consistently across every fallback path.
// A 0.0 fallback would force every empty-input analysis into the harshest
// dampening tier, which overstates what we actually know.
func NeutralQuality() QualityAssessment {
	return QualityAssessment{
		Compression: 0.5,
		Blocking:    0.5,
		Noise:       0.5,
		Resolution:  0.5,
		Overall:     0.5,
	}
}

// WeightedOverall combines the four components with the fixed weights.
func WeightedOverall(compression, blocking, noise, resolution float64) float64 {
	return QualityWeightCompression*compression +
		QualityWeightBlocking*blocking +
		QualityWeightNoise*noise +
		QualityWeightResolution*resolution
}

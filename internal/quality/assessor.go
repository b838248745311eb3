package quality

import (
	"github.com/trustscan-dev/trustscan/internal/media"
	"github.com/trustscan-dev/trustscan/internal/model"
)

// Tuning constants for the individual quality metrics. The reference
// points come from measurements on typical consumer video: uncompressed
// footage keeps edge density at or above 0.15, noise residuals sit in the
// 2-10 range, and 720p is the resolution at which the signal providers
// stop losing detail.
const (
	// compressionEdgeFloor is the edge density at or above which a frame
	// counts as uncompressed.
	compressionEdgeFloor = 0.15

	// blockingVarianceScale normalizes gradient-magnitude variance;
	// higher variance suggests block-boundary artifacts.
	blockingVarianceScale = 10000

	// noiseCleanCeiling is the median residual below which a frame counts
	// as clean; noiseWorstRange is the residual span from clean to
	// unusable.
	noiseCleanCeiling = 10
	noiseWorstRange   = 20

	// Resolution references.
	goodPixels = 1280 * 720
	okPixels   = 640 * 480

	// maxSampleFrames bounds the deterministic frame sample.
	// Sampling policy: at most 5 evenly spaced frames in input order
	// (media.SampleFrames), so repeated assessments of the same sequence
	// are reproducible.
	maxSampleFrames = 5
)

// Assessor derives an input-quality assessment from sampled frames.
// It is stateless and safe for concurrent use.
//
// The assessment is total: Assess never fails. An empty frame sequence
// yields the neutral all-0.5 assessment (see model.NeutralQuality for the
// rationale behind that policy).
type Assessor struct{}

// NewAssessor creates a quality assessor.
func NewAssessor() *Assessor {
	return &Assessor{}
}

// Assess computes the four quality sub-metrics over a deterministic
// sample of at most 5 evenly spaced frames and combines them with the
// fixed weights from the model package.
func (a *Assessor) Assess(frames []media.Frame) model.QualityAssessment {
	sample := media.SampleFrames(frames, maxSampleFrames)
	if len(sample) == 0 {
		return model.NeutralQuality()
	}

	var compression, blocking, noise, resolution float64
	for _, f := range sample {
		compression += compressionScore(f)
		blocking += blockingScore(f)
		noise += noiseScore(f)
		resolution += resolutionScore(f)
	}
	n := float64(len(sample))
	compression /= n
	blocking /= n
	noise /= n
	resolution /= n

	return model.QualityAssessment{
		Compression: compression,
		Blocking:    blocking,
		Noise:       noise,
		Resolution:  resolution,
		Overall:     model.WeightedOverall(compression, blocking, noise, resolution),
	}
}

// compressionScore scores surviving edge detail. Heavy compression
// smears edges, so low edge density maps below 1.0 proportionally.
func compressionScore(f media.Frame) float64 {
	density := media.EdgeDensity(f)
	if density >= compressionEdgeFloor {
		return 1.0
	}
	return density / compressionEdgeFloor
}

// blockingScore scores the absence of block-boundary artifacts using
// gradient-magnitude variance as a proxy.
func blockingScore(f media.Frame) float64 {
	v := media.Variance(media.GradientMagnitudes(f))
	score := 1.0 - v/blockingVarianceScale
	if score < 0 {
		return 0
	}
	return score
}

// noiseScore scores the absence of noise using the median-filter
// residual. Residuals up to the clean ceiling are full score; beyond it
// the score decays linearly to zero.
func noiseScore(f media.Frame) float64 {
	residual := media.MedianResidual(f)
	if residual <= noiseCleanCeiling {
		return 1.0
	}
	score := 1.0 - (residual-noiseCleanCeiling)/noiseWorstRange
	if score < 0 {
		return 0
	}
	return score
}

// resolutionScore scores pixel count: 720p and above is full score,
// VGA is acceptable, anything smaller degrades with a 0.3 floor.
func resolutionScore(f media.Frame) float64 {
	pixels := f.Width * f.Height
	switch {
	case pixels >= goodPixels:
		return 1.0
	case pixels >= okPixels:
		return 0.7
	default:
		score := float64(pixels) / float64(okPixels)
		if score < 0.3 {
			return 0.3
		}
		return score
	}
}

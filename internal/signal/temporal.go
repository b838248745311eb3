package signal

import (
	"context"

	"github.com/trustscan-dev/trustscan/internal/media"
	"github.com/trustscan-dev/trustscan/internal/model"
)

// Temporal tuning constants.
const (
	// diffSuspicious is the mean frame-to-frame difference at which a
	// sequence reads as fully inconsistent; typical stable footage sits
	// in the 5-15 range.
	diffSuspicious = 20.0

	// diffVarianceScale normalizes the variance of the frame differences;
	// erratic change between otherwise similar frames is a synthesis tell.
	diffVarianceScale = 10.0

	// motionVarianceScale normalizes the variance of motion magnitudes.
	motionVarianceScale = 5.0

	// motionPairs caps how many consecutive frame pairs contribute to the
	// motion sub-score.
	motionPairs = 10

	// Sub-score weights inside the temporal signal.
	consistencyWeight = 0.5
	stabilityWeight   = 0.3
	motionWeight      = 0.2
)

// TemporalProvider detects inconsistencies that only show up across time.
// Synthesized media often looks clean frame by frame while flickering or
// jittering between frames.
type TemporalProvider struct{}

// NewTemporalProvider creates the temporal signal provider.
func NewTemporalProvider() *TemporalProvider {
	return &TemporalProvider{}
}

// Name returns the signal name.
func (p *TemporalProvider) Name() string { return model.SignalTemporal }

// Analyze scores frame-to-frame consistency, difference stability, and
// motion stability. Sequences shorter than two frames carry no temporal
// evidence and yield the neutral score.
func (p *TemporalProvider) Analyze(ctx context.Context, m *media.Media) (model.SignalScore, error) {
	if len(m.Frames) < 2 {
		return model.NeutralSignal(), nil
	}
	if err := ctx.Err(); err != nil {
		return model.NeutralSignal(), err
	}

	diffs := frameDiffs(m.Frames)

	combined := consistencyWeight*consistencyScore(diffs) +
		stabilityWeight*stabilityScore(diffs) +
		motionWeight*motionScore(m.Frames)

	return model.SignalScore{Value: combined, Confidence: 1.0}, nil
}

// frameDiffs returns the mean absolute difference of each consecutive
// frame pair.
func frameDiffs(frames []media.Frame) []float64 {
	diffs := make([]float64, 0, len(frames)-1)
	for i := 0; i < len(frames)-1; i++ {
		diffs = append(diffs, media.MeanAbsDiff(frames[i], frames[i+1]))
	}
	return diffs
}

// consistencyScore maps the average frame difference onto [0, 1];
// large differences read as temporal instability.
func consistencyScore(diffs []float64) float64 {
	avg := media.Mean(diffs)
	score := 1.0 - avg/diffSuspicious
	if score < 0 {
		return 0
	}
	return score
}

// stabilityScore rewards steady change: the variance of the differences
// should be small for real footage. Fewer than two pairs is ambiguous.
func stabilityScore(diffs []float64) float64 {
	if len(diffs) < 2 {
		return 0.5
	}
	score := 1.0 - media.Variance(diffs)/diffVarianceScale
	if score < 0 {
		return 0
	}
	return score
}

// motionScore is a cheap optical-flow stand-in: it measures how evenly
// motion energy is distributed over the first few frame pairs. Dense
// optical flow is an external extractor concern; the gradient-weighted
// difference captures the same stability property at frame granularity.
func motionScore(frames []media.Frame) float64 {
	pairs := len(frames) - 1
	if pairs > motionPairs {
		pairs = motionPairs
	}
	if pairs < 2 {
		return 0.5
	}

	magnitudes := make([]float64, 0, pairs)
	for i := 0; i < pairs; i++ {
		d := media.MeanAbsDiff(frames[i], frames[i+1])
		g := media.Mean(media.GradientMagnitudes(frames[i+1]))
		// Motion magnitude proxy: pixel change normalized by how much
		// structure the frame has to move.
		if g > 0 {
			magnitudes = append(magnitudes, d/(1+g/64))
		} else {
			magnitudes = append(magnitudes, d)
		}
	}

	score := 1.0 - media.Variance(magnitudes)/motionVarianceScale
	if score < 0 {
		return 0
	}
	return score
}

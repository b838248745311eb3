package signal

import (
	"context"

	"github.com/trustscan-dev/trustscan/internal/media"
	"github.com/trustscan-dev/trustscan/internal/model"
)

// Vision tuning constants.
const (
	// laplacianNormal is the Laplacian variance of a typically sharp
	// frame; lower variance means over-smoothing, a classic synthesis
	// artifact.
	laplacianNormal = 1000.0

	// Edge density of natural frames plateaus between these bounds;
	// both very few and very many edges are suspicious.
	edgeDensityLow  = 0.1
	edgeDensityHigh = 0.3

	// Sub-score weights inside the vision signal.
	artifactWeight = 0.6
	edgeWeight     = 0.4

	// visionSampleFrames bounds per-analysis work; evenly spaced
	// deterministic sampling keeps results reproducible.
	visionSampleFrames = 5
)

// VisionProvider detects visual synthesis artifacts in individual frames.
// It combines an over-smoothing score (Laplacian variance) with an
// edge-consistency score (edge density plateau).
type VisionProvider struct{}

// NewVisionProvider creates the vision signal provider.
func NewVisionProvider() *VisionProvider {
	return &VisionProvider{}
}

// Name returns the signal name.
func (p *VisionProvider) Name() string { return model.SignalVision }

// Analyze scores the sampled frames and averages per-frame results.
// Empty input yields the neutral score.
func (p *VisionProvider) Analyze(ctx context.Context, m *media.Media) (model.SignalScore, error) {
	sample := media.SampleFrames(m.Frames, visionSampleFrames)
	if len(sample) == 0 {
		return model.NeutralSignal(), nil
	}

	var sum float64
	for _, f := range sample {
		if err := ctx.Err(); err != nil {
			return model.NeutralSignal(), err
		}
		sum += frameScore(f)
	}
	return model.SignalScore{
		Value:      sum / float64(len(sample)),
		Confidence: 1.0,
	}, nil
}

// frameScore combines the artifact and edge sub-scores for one frame.
func frameScore(f media.Frame) float64 {
	return artifactWeight*artifactScore(f) + edgeWeight*edgeConsistencyScore(f)
}

// artifactScore maps Laplacian variance onto [0, 1]. Low variance means
// the frame is over-smoothed, which reads as suspicious.
func artifactScore(f media.Frame) float64 {
	v := media.LaplacianVariance(f)
	score := v / laplacianNormal
	if score > 1.0 {
		return 1.0
	}
	return score
}

// edgeConsistencyScore rewards the moderate edge density of natural
// frames and penalizes both directions of deviation.
func edgeConsistencyScore(f media.Frame) float64 {
	density := media.EdgeDensity(f)
	switch {
	case density >= edgeDensityLow && density <= edgeDensityHigh:
		return 1.0
	case density < edgeDensityLow:
		return density / edgeDensityLow
	default:
		score := 1.0 - (density-edgeDensityHigh)/edgeDensityHigh
		if score < 0 {
			return 0
		}
		return score
	}
}

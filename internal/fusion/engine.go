package fusion

import (
	"log/slog"
	"math"
	"time"

	"github.com/trustscan-dev/trustscan/internal/model"
)

// Signal insight messages appended to the reason when an individual
// signal value drops below insightThreshold. Order is fixed: temporal
// first, then vision, then audio.
const (
	insightThreshold = 0.4

	insightTemporal = "high temporal inconsistency"
	insightVision   = "visual artifacts detected"
	insightAudio    = "synthetic audio characteristics"
)

// Engine fuses per-signal scores and an input-quality assessment into a
// single calibrated trust report. It is stateless and safe for
// concurrent use; every calibration constant lives in the tables in
// tiers.go.
type Engine struct {
	logger *slog.Logger
}

// NewEngine returns a fusion engine that logs tier selection at debug
// level through logger. A nil logger disables logging.
func NewEngine(logger *slog.Logger) *Engine {
	return &Engine{logger: logger}
}

// Fuse combines the three signal scores and the quality assessment into
// a trust report.
//
// The raw score is a fixed-weight linear combination of the signal
// values. Quality then dampens it through the tier table: the lower the
// input quality, the smaller the multiplier and the weaker the decision
// the engine is allowed to make. Decision banding runs on the
// full-precision adjusted score; only the reported Score is rounded to
// two decimals.
func (e *Engine) Fuse(vision, audio, temporal model.SignalScore, quality model.QualityAssessment) *model.TrustReport {
	raw := VisionWeight*vision.Value + AudioWeight*audio.Value + TemporalWeight*temporal.Value

	tier := tierFor(quality.Overall)
	adjusted := raw * tier.Factor

	var (
		decision   model.Decision
		confidence model.ConfidenceLevel
		reason     string
	)
	if tier.Forced != "" {
		decision = tier.Forced
		confidence = tier.ForcedConfidence
		reason = tier.ForcedReason
	} else {
		for _, band := range tier.Bands {
			if band.matches(adjusted) {
				decision = band.Decision
				confidence = band.Confidence
				reason = band.Reason
				break
			}
		}
	}

	reason = appendInsights(reason, vision, audio, temporal)

	if e.logger != nil {
		e.logger.Debug("fused trust score",
			slog.Float64("raw", raw),
			slog.Float64("quality", quality.Overall),
			slog.String("tier", tier.Name),
			slog.Float64("adjusted", adjusted),
			slog.String("decision", decision.String()))
	}

	return &model.TrustReport{
		AnalyzedAt: time.Now().UTC(),
		Score:      round2(adjusted),
		Decision:   decision,
		Confidence: confidence,
		Reason:     reason,
		Signals: map[string]model.SignalScore{
			model.SignalVision:   vision,
			model.SignalAudio:    audio,
			model.SignalTemporal: temporal,
		},
		Quality: quality,
	}
}

// appendInsights adds per-signal explanations for suspicious signals in
// a fixed order so reports stay diff-friendly.
func appendInsights(reason string, vision, audio, temporal model.SignalScore) string {
	insights := ""
	add := func(msg string) {
		if insights != "" {
			insights += ", "
		}
		insights += msg
	}
	if temporal.Value < insightThreshold {
		add(insightTemporal)
	}
	if vision.Value < insightThreshold {
		add(insightVision)
	}
	if audio.Value < insightThreshold {
		add(insightAudio)
	}
	if insights == "" {
		return reason
	}
	return reason + " (" + insights + ")"
}

// round2 rounds to two decimal digits for external reporting.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	exif "github.com/dsoprea/go-exif/v3"
	"golang.org/x/crypto/sha3"

	"github.com/trustscan-dev/trustscan/internal/adversarial"
	"github.com/trustscan-dev/trustscan/internal/fusion"
	"github.com/trustscan-dev/trustscan/internal/media"
	"github.com/trustscan-dev/trustscan/internal/model"
	"github.com/trustscan-dev/trustscan/internal/quality"
	"github.com/trustscan-dev/trustscan/internal/signal"
)

// LoadStep decodes the input path into frames and optional audio.
type LoadStep struct{}

// NewLoadStep creates the media loading step.
func NewLoadStep() *LoadStep {
	return &LoadStep{}
}

// Name returns the step name.
func (s *LoadStep) Name() string { return "load" }

// Do decodes the input. A file that cannot be decoded is a critical
// failure: nothing downstream can run without frames.
func (s *LoadStep) Do(_ context.Context, a *Analysis) error {
	if a.Media != nil {
		return nil // caller supplied decoded media directly
	}
	m, err := media.Load(a.Path)
	if err != nil {
		return fmt.Errorf("load %s: %w", a.Path, err)
	}
	a.Media = m
	return nil
}

// ProvenanceStep fingerprints the input file and extracts editing
// software traces from its EXIF metadata.
type ProvenanceStep struct {
	logger *slog.Logger
}

// NewProvenanceStep creates the provenance step.
func NewProvenanceStep(logger *slog.Logger) *ProvenanceStep {
	return &ProvenanceStep{logger: logger}
}

// Name returns the step name.
func (s *ProvenanceStep) Name() string { return "provenance" }

// Do records the SHA3-256 fingerprint of the input file and any
// editing-software tags found in its metadata. Provenance is
// best-effort enrichment: an unreadable file or absent EXIF block skips
// the step without failing the analysis.
func (s *ProvenanceStep) Do(_ context.Context, a *Analysis) error {
	data, err := os.ReadFile(a.Path)
	if err != nil {
		s.logger.Debug("provenance skipped",
			slog.String("file", a.Path),
			slog.String("error", err.Error()))
		return nil
	}

	hash := sha3.Sum256(data)
	a.Provenance = &model.Provenance{
		Fingerprint:    fmt.Sprintf("%x", hash),
		SoftwareTraces: softwareTraces(data),
	}
	return nil
}

// softwareTraces returns EXIF software tag values, the strongest
// metadata hint that an editor or generator touched the file.
func softwareTraces(data []byte) []string {
	rawExif, err := exif.SearchAndExtractExif(data)
	if err != nil || rawExif == nil {
		return nil
	}
	entries, _, err := exif.GetFlatExifData(rawExif, nil)
	if err != nil {
		return nil
	}

	var traces []string
	for _, entry := range entries {
		switch entry.TagName {
		case "Software", "ProcessingSoftware", "HostComputer":
			if entry.Formatted != "" {
				traces = append(traces, entry.TagName+": "+entry.Formatted)
			}
		}
	}
	return traces
}

// QualityStep assesses input quality from a deterministic frame sample.
type QualityStep struct {
	assessor *quality.Assessor
}

// NewQualityStep creates the quality assessment step.
func NewQualityStep(assessor *quality.Assessor) *QualityStep {
	return &QualityStep{assessor: assessor}
}

// Name returns the step name.
func (s *QualityStep) Name() string { return "quality" }

// Do fills in the quality assessment. Empty input resolves to the
// neutral assessment inside the assessor.
func (s *QualityStep) Do(_ context.Context, a *Analysis) error {
	a.Quality = s.assessor.Assess(a.Media.Frames)
	return nil
}

// SignalStep runs one signal provider and stores its score.
type SignalStep struct {
	provider signal.Provider
	logger   *slog.Logger
}

// NewSignalStep wraps a provider as a pipeline step.
func NewSignalStep(provider signal.Provider, logger *slog.Logger) *SignalStep {
	return &SignalStep{provider: provider, logger: logger}
}

// Name returns the wrapped provider's signal name.
func (s *SignalStep) Name() string { return s.provider.Name() }

// Do stores the provider's score. A provider failure resolves locally to
// the neutral score; a missing signal is never an analysis error.
func (s *SignalStep) Do(ctx context.Context, a *Analysis) error {
	score, err := s.provider.Analyze(ctx, a.Media)
	if err != nil {
		s.logger.Warn("signal provider failed, using neutral score",
			slog.String("signal", s.provider.Name()),
			slog.String("file", a.Path),
			slog.String("error", err.Error()))
		score = model.NeutralSignal()
	}
	a.Signals[s.provider.Name()] = score
	return nil
}

// FusionStep turns the accumulated signals and quality into the report.
type FusionStep struct {
	engine *fusion.Engine
}

// NewFusionStep creates the fusion step.
func NewFusionStep(engine *fusion.Engine) *FusionStep {
	return &FusionStep{engine: engine}
}

// Name returns the step name.
func (s *FusionStep) Name() string { return "fusion" }

// Do fuses the evidence gathered so far. Signals that never ran default
// to neutral through the accumulator.
func (s *FusionStep) Do(_ context.Context, a *Analysis) error {
	report := s.engine.Fuse(
		a.Signal(model.SignalVision),
		a.Signal(model.SignalAudio),
		a.Signal(model.SignalTemporal),
		a.Quality,
	)
	report.File = a.Path
	report.Provenance = a.Provenance
	a.Report = report
	return nil
}

// RobustnessStep replays the attack catalog against the vision signal
// and attaches the degradation profile to the report.
type RobustnessStep struct {
	tester *adversarial.Tester
	logger *slog.Logger
}

// NewRobustnessStep creates the robustness step.
func NewRobustnessStep(tester *adversarial.Tester, logger *slog.Logger) *RobustnessStep {
	return &RobustnessStep{tester: tester, logger: logger}
}

// Name returns the step name.
func (s *RobustnessStep) Name() string { return "robustness" }

// Do runs the attack catalog. The score function wraps the vision
// provider only, since the frame transforms do not touch audio. A
// robustness failure is recorded on the report and does not fail the
// analysis that already produced a score.
func (s *RobustnessStep) Do(ctx context.Context, a *Analysis) error {
	vision := signal.NewVisionProvider()
	scoreFn := func(ctx context.Context, frames []media.Frame) (float64, error) {
		score, err := vision.Analyze(ctx, &media.Media{Frames: frames})
		if err != nil {
			return 0, err
		}
		return score.Value, nil
	}

	result, err := s.tester.Test(ctx, a.Media.Frames, scoreFn)
	if err != nil {
		s.logger.Warn("robustness test failed",
			slog.String("file", a.Path),
			slog.String("error", err.Error()))
		a.Report.Error = err.Error()
		return nil
	}
	a.Report.Adversarial = result
	return nil
}

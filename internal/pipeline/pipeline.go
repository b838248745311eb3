package pipeline

import (
	"context"
	"log/slog"

	"github.com/trustscan-dev/trustscan/internal/adversarial"
	"github.com/trustscan-dev/trustscan/internal/fusion"
	"github.com/trustscan-dev/trustscan/internal/media"
	"github.com/trustscan-dev/trustscan/internal/model"
	"github.com/trustscan-dev/trustscan/internal/quality"
	"github.com/trustscan-dev/trustscan/internal/signal"
)

// Analysis is the accumulator passed between pipeline steps. Each step
// fills in its part; the fusion step turns the accumulated evidence into
// the final report.
type Analysis struct {
	// Path is the input file or directory being analyzed.
	Path string

	// Media holds the decoded frames and audio once the load step ran.
	Media *media.Media

	// Signals collects per-provider scores keyed by signal name.
	Signals map[string]model.SignalScore

	// Quality is the input-quality assessment used for dampening.
	Quality model.QualityAssessment

	// Provenance holds the fingerprint and metadata traces when the
	// provenance step ran.
	Provenance *model.Provenance

	// Report is the fused result; set by the fusion step, then enriched
	// by later steps (robustness, provenance).
	Report *model.TrustReport
}

// NewAnalysis creates an empty accumulator for one input path.
func NewAnalysis(path string) *Analysis {
	return &Analysis{
		Path:    path,
		Signals: make(map[string]model.SignalScore),
	}
}

// Signal returns the accumulated score for name, defaulting to neutral.
// A provider that never ran is indistinguishable from one that returned
// no evidence.
func (a *Analysis) Signal(name string) model.SignalScore {
	if s, ok := a.Signals[name]; ok {
		return s
	}
	return model.NeutralSignal()
}

// Step is one stage of the analysis pipeline. Steps run in sequence,
// each receiving the accumulator filled by its predecessors.
//
// Design decision: we use an interface rather than function types because
// it lets steps carry configuration (providers, engines, flags) and
// provides a Name() method for logging.
type Step interface {
	// Do executes the step. A critical failure returns an error and,
	// unless the pipeline continues on error, aborts the run; recoverable
	// conditions are resolved inside the step (neutral signals, skipped
	// enrichment) and return nil.
	Do(ctx context.Context, a *Analysis) error

	// Name returns the step's name for logging.
	Name() string
}

// Pipeline executes an ordered list of steps over one Analysis.
type Pipeline struct {
	// steps is the ordered list of steps.
	steps []Step

	// logger is used for structured logging during execution.
	logger *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger. Defaults to slog.Default.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) { p.logger = logger }
}

// New creates an empty pipeline; add stages with AddSteps.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{steps: make([]Step, 0)}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// AddSteps appends steps in execution order.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs all steps in order. Cancellation is checked between
// steps; steps handle their own timeouts internally.
func (p *Pipeline) Execute(ctx context.Context, a *Analysis) error {
	for _, step := range p.steps {
		select {
		case <-ctx.Done():
			p.logger.Warn("analysis cancelled",
				slog.String("step", step.Name()),
				slog.String("file", a.Path))
			return ctx.Err()
		default:
		}

		p.logger.Debug("executing step",
			slog.String("step", step.Name()),
			slog.String("file", a.Path))

		if err := step.Do(ctx, a); err != nil {
			p.logger.Error("step failed",
				slog.String("step", step.Name()),
				slog.String("file", a.Path),
				slog.String("error", err.Error()))
			return err
		}
	}
	return nil
}

// Config selects the stages of a default pipeline.
type Config struct {
	// Robustness enables the adversarial replay stage.
	Robustness bool

	// Provenance enables fingerprinting and metadata trace extraction.
	// Only meaningful for file-backed inputs.
	Provenance bool

	// Logger is used by the pipeline and its steps.
	Logger *slog.Logger
}

// Default builds the standard analysis pipeline: load, provenance,
// quality, one step per built-in signal provider, fusion, and optionally
// robustness.
func Default(cfg Config) *Pipeline {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	p := New(WithLogger(cfg.Logger))
	p.AddSteps(NewLoadStep())
	if cfg.Provenance {
		p.AddSteps(NewProvenanceStep(cfg.Logger))
	}
	p.AddSteps(NewQualityStep(quality.NewAssessor()))
	for _, provider := range signal.BuiltinProviders() {
		p.AddSteps(NewSignalStep(provider, cfg.Logger))
	}
	p.AddSteps(NewFusionStep(fusion.NewEngine(cfg.Logger)))
	if cfg.Robustness {
		p.AddSteps(NewRobustnessStep(adversarial.NewTester(cfg.Logger), cfg.Logger))
	}
	return p
}

// Analyze is the single-input entry point: it runs the default pipeline
// over path and returns the finished report.
func Analyze(ctx context.Context, path string, cfg Config) (*model.TrustReport, error) {
	a := NewAnalysis(path)
	if err := Default(cfg).Execute(ctx, a); err != nil {
		return nil, err
	}
	return a.Report, nil
}

package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/trustscan-dev/trustscan/internal/model"
)

// SimpleWriter outputs human-readable text reports.
// This format is designed for terminal display.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors by default because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
type SimpleWriter struct {
	baseWriter

	// verbose enables per-signal and per-attack detail.
	verbose bool

	// titler capitalizes signal and attack names for display.
	titler cases.Caser
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
		titler:     cases.Title(language.English),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the trust report in human-readable format.
func (w *SimpleWriter) Write(report *model.TrustReport) (int, error) {
	var sb strings.Builder

	sb.WriteString("=== Trust Analysis Report ===\n")
	if report.File != "" {
		fmt.Fprintf(&sb, "File:       %s\n", report.File)
	}
	if !report.AnalyzedAt.IsZero() {
		fmt.Fprintf(&sb, "Analyzed:   %s\n", report.AnalyzedAt.Format("2006-01-02 15:04:05 MST"))
	}
	fmt.Fprintf(&sb, "Trust Score: %.2f\n", report.Score)
	fmt.Fprintf(&sb, "Decision:    %s (confidence: %s)\n", report.Decision, report.Confidence)
	fmt.Fprintf(&sb, "Reason:      %s\n", report.Reason)

	w.writeSignals(&sb, report)
	w.writeQuality(&sb, report)
	w.writeAdversarial(&sb, report)
	w.writeProvenance(&sb, report)

	if report.Error != "" {
		fmt.Fprintf(&sb, "\nWarning: %s\n", report.Error)
	}

	return io.WriteString(w.output, sb.String())
}

func (w *SimpleWriter) writeSignals(sb *strings.Builder, report *model.TrustReport) {
	if len(report.Signals) == 0 {
		return
	}
	sb.WriteString("\nSignal Breakdown:\n")
	for _, name := range sortedKeys(report.Signals) {
		s := report.Signals[name]
		fmt.Fprintf(sb, "  %-10s value=%.2f confidence=%.2f\n", w.titler.String(name)+":", s.Value, s.Confidence)
	}
}

func (w *SimpleWriter) writeQuality(sb *strings.Builder, report *model.TrustReport) {
	q := report.Quality
	fmt.Fprintf(sb, "\nInput Quality: %.2f\n", q.Overall)
	if w.verbose {
		fmt.Fprintf(sb, "  Compression: %.2f\n", q.Compression)
		fmt.Fprintf(sb, "  Blocking:    %.2f\n", q.Blocking)
		fmt.Fprintf(sb, "  Noise:       %.2f\n", q.Noise)
		fmt.Fprintf(sb, "  Resolution:  %.2f\n", q.Resolution)
	}
}

func (w *SimpleWriter) writeAdversarial(sb *strings.Builder, report *model.TrustReport) {
	adv := report.Adversarial
	if adv == nil {
		return
	}
	fmt.Fprintf(sb, "\nAdversarial Robustness (baseline %.2f):\n", adv.OriginalScore)
	for _, name := range sortedKeys(adv.Attacks) {
		outcome := adv.Attacks[name]
		if outcome.Failed {
			fmt.Fprintf(sb, "  %-20s FAILED: %s\n", name, outcome.Error)
			continue
		}
		fmt.Fprintf(sb, "  %-20s score=%.2f degradation=%.2f\n", name, outcome.Score, outcome.Degradation)
	}
	_, worst := adv.WorstDegradation()
	fmt.Fprintf(sb, "  Worst degradation: %.2f\n", worst)
}

func (w *SimpleWriter) writeProvenance(sb *strings.Builder, report *model.TrustReport) {
	p := report.Provenance
	if p == nil {
		return
	}
	sb.WriteString("\nProvenance:\n")
	if p.Fingerprint != "" {
		fmt.Fprintf(sb, "  Fingerprint: %s\n", p.Fingerprint)
	}
	for _, trace := range p.SoftwareTraces {
		fmt.Fprintf(sb, "  Software:    %s\n", trace)
	}
}

// WriteJob outputs the batch job summary in human-readable format.
func (w *SimpleWriter) WriteJob(job *model.BatchJob) (int, error) {
	var sb strings.Builder

	sb.WriteString("=== Batch Job Summary ===\n")
	fmt.Fprintf(&sb, "Job:       %s\n", job.ID)
	fmt.Fprintf(&sb, "Status:    %s\n", job.Status)
	fmt.Fprintf(&sb, "Progress:  %d/%d (%.0f%%)\n", job.Completed, job.Total, job.Progress())

	if len(job.Results) > 0 {
		sb.WriteString("\nResults:\n")
		for _, r := range job.Results {
			fmt.Fprintf(&sb, "  %-30s score=%.2f decision=%s\n",
				r.File, r.Report.Score, r.Report.Decision)
		}
	}
	if len(job.Errors) > 0 {
		sb.WriteString("\nErrors:\n")
		for _, e := range job.Errors {
			fmt.Fprintf(&sb, "  %-30s %s\n", e.File, e.Error)
		}
	}

	return io.WriteString(w.output, sb.String())
}

// sortedKeys returns map keys in lexical order so output is stable.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

package report

import (
	"fmt"
	"io"

	"github.com/nao1215/markdown"

	"github.com/trustscan-dev/trustscan/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides type-safe tables, lists, and headings.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs the trust report in Markdown format.
func (w *MarkdownWriter) Write(report *model.TrustReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Trust Analysis Report")
	md.PlainText("")

	rows := [][]string{
		{"Trust Score", fmt.Sprintf("%.2f", report.Score)},
		{"Decision", report.Decision.String()},
		{"Confidence", report.Confidence.String()},
		{"Reason", report.Reason},
	}
	if report.File != "" {
		rows = append([][]string{{"File", report.File}}, rows...)
	}
	if !report.AnalyzedAt.IsZero() {
		rows = append(rows, []string{"Analyzed", report.AnalyzedAt.Format("2006-01-02 15:04:05 MST")})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})

	w.writeSignals(md, report)
	w.writeQuality(md, report)
	w.writeAdversarial(md, report)
	w.writeProvenance(md, report)

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeSignals(md *markdown.Markdown, report *model.TrustReport) {
	if len(report.Signals) == 0 {
		return
	}
	md.H2("Signal Breakdown")
	rows := make([][]string, 0, len(report.Signals))
	for _, name := range sortedKeys(report.Signals) {
		s := report.Signals[name]
		rows = append(rows, []string{
			name,
			fmt.Sprintf("%.2f", s.Value),
			fmt.Sprintf("%.2f", s.Confidence),
		})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Signal", "Value", "Confidence"},
		Rows:   rows,
	})
}

func (w *MarkdownWriter) writeQuality(md *markdown.Markdown, report *model.TrustReport) {
	q := report.Quality
	md.H2("Input Quality")
	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Score"},
		Rows: [][]string{
			{"Compression", fmt.Sprintf("%.2f", q.Compression)},
			{"Blocking", fmt.Sprintf("%.2f", q.Blocking)},
			{"Noise", fmt.Sprintf("%.2f", q.Noise)},
			{"Resolution", fmt.Sprintf("%.2f", q.Resolution)},
			{"Overall", fmt.Sprintf("%.2f", q.Overall)},
		},
	})
}

func (w *MarkdownWriter) writeAdversarial(md *markdown.Markdown, report *model.TrustReport) {
	adv := report.Adversarial
	if adv == nil {
		return
	}
	md.H2("Adversarial Robustness")
	md.PlainTextf("Baseline score: %.2f", adv.OriginalScore)

	rows := make([][]string, 0, len(adv.Attacks))
	for _, name := range sortedKeys(adv.Attacks) {
		outcome := adv.Attacks[name]
		if outcome.Failed {
			rows = append(rows, []string{name, "failed", outcome.Error})
			continue
		}
		rows = append(rows, []string{
			name,
			fmt.Sprintf("%.2f", outcome.Score),
			fmt.Sprintf("%.2f", outcome.Degradation),
		})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Attack", "Score", "Degradation"},
		Rows:   rows,
	})
}

func (w *MarkdownWriter) writeProvenance(md *markdown.Markdown, report *model.TrustReport) {
	p := report.Provenance
	if p == nil {
		return
	}
	md.H2("Provenance")
	items := make([]string, 0, 1+len(p.SoftwareTraces))
	if p.Fingerprint != "" {
		items = append(items, "Fingerprint: "+p.Fingerprint)
	}
	for _, trace := range p.SoftwareTraces {
		items = append(items, "Software trace: "+trace)
	}
	md.BulletList(items...)
}

// WriteJob outputs the batch job summary in Markdown format.
func (w *MarkdownWriter) WriteJob(job *model.BatchJob) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Batch Job Summary")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Job", job.ID.String()},
			{"Status", job.Status.String()},
			{"Total", fmt.Sprintf("%d", job.Total)},
			{"Completed", fmt.Sprintf("%d", job.Completed)},
			{"Errors", fmt.Sprintf("%d", len(job.Errors))},
		},
	})

	if len(job.Results) > 0 {
		md.H2("Results")
		rows := make([][]string, 0, len(job.Results))
		for _, r := range job.Results {
			rows = append(rows, []string{
				r.File,
				fmt.Sprintf("%.2f", r.Report.Score),
				r.Report.Decision.String(),
			})
		}
		md.Table(markdown.TableSet{
			Header: []string{"File", "Score", "Decision"},
			Rows:   rows,
		})
	}

	if len(job.Errors) > 0 {
		md.H2("Errors")
		rows := make([][]string, 0, len(job.Errors))
		for _, e := range job.Errors {
			rows = append(rows, []string{e.File, e.Error})
		}
		md.Table(markdown.TableSet{
			Header: []string{"File", "Error"},
			Rows:   rows,
		})
	}

	return len(md.String()), md.Build()
}

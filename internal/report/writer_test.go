package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/trustscan-dev/trustscan/internal/model"
)

func sampleReport() *model.TrustReport {
	return &model.TrustReport{
		File:       "clip.mp4",
		AnalyzedAt: time.Date(2026, 8, 26, 10, 0, 0, 0, time.UTC),
		Score:      0.8,
		Decision:   model.DecisionReal,
		Confidence: model.ConfidenceHigh,
		Reason:     "high quality input - strong real signals",
		Signals: map[string]model.SignalScore{
			model.SignalVision:   {Value: 0.82, Confidence: 1.0},
			model.SignalAudio:    {Value: 0.78, Confidence: 1.0},
			model.SignalTemporal: {Value: 0.8, Confidence: 1.0},
		},
		Quality: model.QualityAssessment{
			Compression: 0.9, Blocking: 0.85, Noise: 0.88, Resolution: 1.0, Overall: 0.91,
		},
		Adversarial: &model.AdversarialResult{
			OriginalScore: 0.8,
			Attacks: map[string]model.AttackOutcome{
				"compression_low": {Score: 0.78, Degradation: 0.02},
				"noise_medium":    {Failed: true, Error: "score failed"},
			},
		},
		Provenance: &model.Provenance{
			Fingerprint:    "deadbeef",
			SoftwareTraces: []string{"Software: Adobe Premiere"},
		},
	}
}

func sampleJob() *model.BatchJob {
	now := time.Date(2026, 8, 26, 10, 0, 0, 0, time.UTC)
	return &model.BatchJob{
		ID:        uuid.MustParse("7b2f54c8-12ab-4f6e-9c01-3d92c0de4b11"),
		Files:     []model.FileRef{{Path: "a.mp4"}, {Path: "b.mp4"}},
		Total:     2,
		Completed: 2,
		Status:    model.JobCompleted,
		Results: []model.FileResult{
			{Index: 0, File: "a.mp4", Report: sampleReport()},
		},
		Errors: []model.FileError{
			{Index: 1, File: "b.mp4", Error: "decode failed"},
		},
		StartTime: now,
		EndTime:   &now,
	}
}

func TestJSONWriterWrite(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w := NewJSONWriter(&buf)

	n, err := w.Write(sampleReport())
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if n != buf.Len() {
		t.Errorf("Write() = %d bytes, buffer has %d", n, buf.Len())
	}

	var got model.TrustReport
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if got.Score != 0.8 || got.Decision != model.DecisionReal {
		t.Errorf("roundtrip = score %v decision %v", got.Score, got.Decision)
	}
}

func TestJSONWriterPrettyPrint(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w := NewJSONWriter(&buf, WithPrettyPrint())
	if _, err := w.Write(sampleReport()); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if !strings.Contains(buf.String(), "\n  ") {
		t.Error("pretty-printed output has no indentation")
	}
}

func TestJSONWriterWriteJob(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if _, err := NewJSONWriter(&buf).WriteJob(sampleJob()); err != nil {
		t.Fatalf("WriteJob() error = %v", err)
	}
	var got model.BatchJob
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if got.Total != 2 || got.Status != model.JobCompleted {
		t.Errorf("roundtrip = total %d status %s", got.Total, got.Status)
	}
}

func TestSimpleWriterWrite(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w := NewSimpleWriter(&buf, WithVerbose(true))
	if _, err := w.Write(sampleReport()); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"Trust Score: 0.80",
		"Decision:    Real (confidence: high)",
		"Vision:",
		"Input Quality: 0.91",
		"Compression: 0.90",
		"compression_low",
		"FAILED: score failed",
		"Fingerprint: deadbeef",
		"Adobe Premiere",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\n%s", want, out)
		}
	}
}

func TestSimpleWriterWriteJob(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if _, err := NewSimpleWriter(&buf).WriteJob(sampleJob()); err != nil {
		t.Fatalf("WriteJob() error = %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"Status:    completed",
		"Progress:  2/2 (100%)",
		"a.mp4",
		"decode failed",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\n%s", want, out)
		}
	}
}

func TestMarkdownWriterWrite(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if _, err := NewMarkdownWriter(&buf).Write(sampleReport()); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"# Trust Analysis Report",
		"## Signal Breakdown",
		"## Input Quality",
		"## Adversarial Robustness",
		"## Provenance",
		"Trust Score",
		"0.80",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\n%s", want, out)
		}
	}
}

func TestMarkdownWriterWriteJob(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if _, err := NewMarkdownWriter(&buf).WriteJob(sampleJob()); err != nil {
		t.Fatalf("WriteJob() error = %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"# Batch Job Summary",
		"## Results",
		"## Errors",
		"decode failed",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\n%s", want, out)
		}
	}
}

type failWriter struct{ err error }

func (w *failWriter) Write(*model.TrustReport) (int, error) { return 0, w.err }
func (w *failWriter) WriteJob(*model.BatchJob) (int, error) { return 0, w.err }

func TestMultiWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes to all writers", func(t *testing.T) {
		t.Parallel()

		var a, b bytes.Buffer
		mw := NewMultiWriter(NewJSONWriter(&a), NewSimpleWriter(&b))
		if _, err := mw.Write(sampleReport()); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
		if a.Len() == 0 || b.Len() == 0 {
			t.Error("one of the writers received no output")
		}
	})

	t.Run("stops on first error", func(t *testing.T) {
		t.Parallel()

		wantErr := errors.New("disk full")
		var after bytes.Buffer
		mw := NewMultiWriter(&failWriter{err: wantErr}, NewJSONWriter(&after))
		if _, err := mw.Write(sampleReport()); !errors.Is(err, wantErr) {
			t.Fatalf("Write() error = %v, want %v", err, wantErr)
		}
		if after.Len() != 0 {
			t.Error("writer after the failing one still received output")
		}
	})
}

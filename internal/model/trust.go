package model

import "time"

// TrustReport is the result of one analysis call: the fused trust score,
// the categorical decision, and the evidence behind them.
//
// A TrustReport is created once by the fusion engine and is immutable
// after construction; it is never partially updated. Optional sections
// (adversarial, provenance) are attached by the pipeline before the
// report leaves the process.
//
// Design decision: one flat result struct rather than many small ones;
// it serializes directly and maps 1:1 onto the JSON shape callers consume.
type TrustReport struct {
	// File is the analyzed input as given by the caller.
	File string `json:"file,omitempty"`

	// AnalyzedAt is the timestamp of the analysis.
	AnalyzedAt time.Time `json:"analyzed_at"`

	// Score is the fused, quality-calibrated trust score in [0, 1],
	// rounded to two decimal digits for external consumption. Decision
	// banding happens on the full-precision value before rounding.
	Score float64 `json:"trust_score"`

	// Decision is the categorical verdict.
	Decision Decision `json:"decision"`

	// Confidence labels how reliable the decision is given input quality.
	Confidence ConfidenceLevel `json:"confidence"`

	// Reason is the human-readable explanation, including per-signal
	// insights when an individual signal is suspicious.
	Reason string `json:"reason"`

	// Signals is the per-signal breakdown keyed by signal name.
	Signals map[string]SignalScore `json:"signals"`

	// Quality is the input-quality assessment used for dampening.
	Quality QualityAssessment `json:"quality_assessment"`

	// Adversarial holds robustness results when the caller requested them.
	Adversarial *AdversarialResult `json:"adversarial,omitempty"`

	// Provenance holds content fingerprint and metadata traces when the
	// input was ingested from a file.
	Provenance *Provenance `json:"provenance,omitempty"`

	// Error is the string form of a non-fatal analysis error, if any.
	Error string `json:"error,omitempty"`
}

// Signal returns the named signal score, or the neutral default when the
// signal is missing. Callers never observe a zero-struct score.
func (r *TrustReport) Signal(name string) SignalScore {
	if s, ok := r.Signals[name]; ok {
		return s
	}
	return NeutralSignal()
}

// Provenance carries content-identity information collected at ingest.
type Provenance struct {
	// Fingerprint is the SHA3-256 hex digest of the input file.
	// It lets callers verify later that a report refers to the exact
	// bytes they hold.
	Fingerprint string `json:"fingerprint,omitempty"`

	// SoftwareTraces lists editing-software names found in the input's
	// EXIF metadata. A populated list is not proof of manipulation but
	// is surfaced so reviewers can weigh it.
	SoftwareTraces []string `json:"software_traces,omitempty"`
}

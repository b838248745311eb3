// Package pipeline sequences the stages of one media analysis: load,
// provenance, quality assessment, signal extraction, fusion, and
// optional robustness replay.
//
// Recoverable conditions (a failed signal provider, absent metadata)
// are resolved inside their steps; only an undecodable input aborts a
// run.
package pipeline

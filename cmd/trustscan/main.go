// Package main provides the entry point for the trustscan CLI.
//
// trustscan is a trust fusion and calibration engine for media
// authenticity analysis. It combines weak per-signal detector scores
// (vision, audio, temporal) into one calibrated trust score with a
// categorical decision and a human-readable reason.
//
// Usage:
//
//	trustscan analyze <file|frame-dir>
//	trustscan analyze --robustness <file>
//	trustscan serve
//
// See --help for all available options.
package main

// main is the entry point for trustscan.
func main() {
	Execute()
}

// Package server exposes the analysis engine as a JSON HTTP API: single
// and batch analysis, robustness testing, job polling, and report history.
package server

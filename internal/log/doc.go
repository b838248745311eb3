// Package log provides structured logging setup for trustscan.
//
// Loggers wrap their handler in a ScoreHandler so score-like float
// attributes are rounded to the same two-decimal precision reports use.
package log

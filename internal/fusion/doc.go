// Package fusion combines per-signal authenticity scores and an
// input-quality assessment into one calibrated trust score with a
// categorical decision.
//
// Calibration is table-driven: the dampening tiers and decision bands
// are fixed, enumerable constants validated at package init. Low input
// quality never raises a score; it only discounts it and weakens the
// decision the engine is permitted to make.
package fusion

// Package model defines the data structures shared across TrustScan:
// signal scores, quality assessments, trust reports, adversarial results,
// and batch job records.
package model

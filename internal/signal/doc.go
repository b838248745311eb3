// Package signal implements the independent authenticity signal
// providers: visual artifacts, audio spectrum, and temporal consistency.
// Each provider is individually weak; the fusion engine combines them
// into one calibrated trust score.
package signal

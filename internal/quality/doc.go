// Package quality assesses how analyzable an input frame sequence is.
// The overall score gates confidence dampening in the fusion engine:
// heavily compressed, noisy, or low-resolution input cannot support a
// confident authenticity decision.
package quality

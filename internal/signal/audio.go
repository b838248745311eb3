package signal

import (
	"context"
	"math"

	"github.com/trustscan-dev/trustscan/internal/media"
	"github.com/trustscan-dev/trustscan/internal/model"
)

// Audio tuning constants.
const (
	// naturalRolloff is the spectral rolloff point (as a fraction of the
	// Nyquist frequency) typical of natural speech recordings.
	naturalRolloff = 0.85

	// rolloffEnergy is the cumulative-energy fraction defining the
	// rolloff frequency.
	rolloffEnergy = 0.85

	// Natural speech keeps its zero-crossing rate in this band.
	zcrLow  = 0.05
	zcrHigh = 0.15

	// Sub-score weights inside the audio signal.
	flatnessWeight = 0.5
	rolloffWeight  = 0.3
	zcrWeight      = 0.2

	// DFT windowing: audioWindows evenly spaced windows of
	// audioWindowSize samples each. The naive DFT is O(n^2) per window,
	// which is fine at this size.
	audioWindowSize = 1024
	audioWindows    = 8
)

// AudioProvider detects synthetic voice characteristics from the audio
// track's spectrum. Text-to-speech output tends to have a flatter
// spectrum, a shifted rolloff, and atypical zero-crossing rates compared
// to natural speech.
type AudioProvider struct{}

// NewAudioProvider creates the audio signal provider.
func NewAudioProvider() *AudioProvider {
	return &AudioProvider{}
}

// Name returns the signal name.
func (p *AudioProvider) Name() string { return model.SignalAudio }

// Analyze scores the audio track. Media without a usable audio track
// yields the neutral score: absence of audio is not evidence either way.
func (p *AudioProvider) Analyze(ctx context.Context, m *media.Media) (model.SignalScore, error) {
	if !m.HasAudio() {
		return model.NeutralSignal(), nil
	}
	if err := ctx.Err(); err != nil {
		return model.NeutralSignal(), err
	}

	spectra := windowedSpectra(m.Audio.Samples)
	if len(spectra) == 0 {
		return model.NeutralSignal(), nil
	}

	combined := flatnessWeight*flatnessScore(spectra) +
		rolloffWeight*rolloffScore(spectra) +
		zcrWeight*zcrScore(m.Audio.Samples)

	return model.SignalScore{Value: combined, Confidence: 1.0}, nil
}

// windowedSpectra computes the power spectrum of up to audioWindows
// evenly spaced sample windows.
func windowedSpectra(samples []float64) [][]float64 {
	if len(samples) < audioWindowSize {
		return nil
	}
	windows := audioWindows
	maxStarts := len(samples) - audioWindowSize + 1
	if windows > maxStarts {
		windows = maxStarts
	}

	spectra := make([][]float64, 0, windows)
	for w := 0; w < windows; w++ {
		start := w * maxStarts / windows
		spectra = append(spectra, powerSpectrum(samples[start:start+audioWindowSize]))
	}
	return spectra
}

// powerSpectrum returns the single-sided power spectrum of a window via
// a direct DFT with a Hann taper.
func powerSpectrum(window []float64) []float64 {
	n := len(window)
	tapered := make([]float64, n)
	for i, s := range window {
		hann := 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
		tapered[i] = s * hann
	}

	bins := n / 2
	power := make([]float64, bins)
	for k := 0; k < bins; k++ {
		var re, im float64
		for t := 0; t < n; t++ {
			angle := -2 * math.Pi * float64(k) * float64(t) / float64(n)
			re += tapered[t] * math.Cos(angle)
			im += tapered[t] * math.Sin(angle)
		}
		power[k] = re*re + im*im
	}
	return power
}

// flatnessScore maps mean spectral flatness onto [0, 1]. Flatness is the
// geometric mean over the arithmetic mean of the power spectrum; synthetic
// audio scores higher flatness than natural speech, so the score is
// 1 − flatness.
func flatnessScore(spectra [][]float64) float64 {
	var sum float64
	for _, power := range spectra {
		sum += spectralFlatness(power)
	}
	score := 1.0 - sum/float64(len(spectra))
	return clamp01(score)
}

// spectralFlatness computes geometric/arithmetic mean of one spectrum.
func spectralFlatness(power []float64) float64 {
	const eps = 1e-12
	var logSum, sum float64
	for _, p := range power {
		logSum += math.Log(p + eps)
		sum += p + eps
	}
	n := float64(len(power))
	geo := math.Exp(logSum / n)
	arith := sum / n
	if arith == 0 {
		return 0
	}
	return geo / arith
}

// rolloffScore penalizes deviation of the spectral rolloff point from
// the natural-speech reference.
func rolloffScore(spectra [][]float64) float64 {
	var sum float64
	for _, power := range spectra {
		sum += spectralRolloff(power)
	}
	rolloff := sum / float64(len(spectra))
	deviation := math.Abs(rolloff - naturalRolloff)
	return clamp01(1.0 - deviation*2)
}

// spectralRolloff returns the fraction of the Nyquist band below which
// rolloffEnergy of the spectral energy lies.
func spectralRolloff(power []float64) float64 {
	var total float64
	for _, p := range power {
		total += p
	}
	if total == 0 {
		return 0
	}
	target := total * rolloffEnergy
	var cum float64
	for k, p := range power {
		cum += p
		if cum >= target {
			return float64(k) / float64(len(power))
		}
	}
	return 1.0
}

// zcrScore rewards the zero-crossing rate band of natural speech.
func zcrScore(samples []float64) float64 {
	if len(samples) < 2 {
		return 0.5
	}
	crossings := 0
	for i := 1; i < len(samples); i++ {
		if (samples[i-1] >= 0) != (samples[i] >= 0) {
			crossings++
		}
	}
	zcr := float64(crossings) / float64(len(samples)-1)

	switch {
	case zcr >= zcrLow && zcr <= zcrHigh:
		return 1.0
	case zcr < zcrLow:
		return zcr / zcrLow
	default:
		return clamp01(1.0 - (zcr-zcrHigh)/zcrHigh)
	}
}

// clamp01 clamps v into [0, 1].
func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

package signal

import (
	"context"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/trustscan-dev/trustscan/internal/media"
	"github.com/trustscan-dev/trustscan/internal/model"
)

// sineClip synthesizes a pure tone.
func sineClip(freq float64, sampleRate, n int) *media.Clip {
	samples := make([]float64, n)
	for i := range samples {
		samples[i] = 0.8 * math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate))
	}
	return &media.Clip{SampleRate: sampleRate, Samples: samples}
}

// noiseClip synthesizes deterministic wideband noise.
func noiseClip(sampleRate, n int) *media.Clip {
	rng := rand.New(rand.NewPCG(7, 7))
	samples := make([]float64, n)
	for i := range samples {
		samples[i] = rng.Float64()*2 - 1
	}
	return &media.Clip{SampleRate: sampleRate, Samples: samples}
}

// TestAudioProvider_Analyze tests the audio spectral signal.
func TestAudioProvider_Analyze(t *testing.T) {
	t.Parallel()

	provider := NewAudioProvider()

	t.Run("missing audio yields the neutral score", func(t *testing.T) {
		t.Parallel()
		m := &media.Media{Frames: []media.Frame{texturedFrame(16, 16, 0)}}
		got, err := provider.Analyze(context.Background(), m)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != model.NeutralSignal() {
			t.Errorf("score = %+v, want neutral", got)
		}
	})

	t.Run("clip shorter than one window yields the neutral score", func(t *testing.T) {
		t.Parallel()
		m := &media.Media{Audio: &media.Clip{SampleRate: 16000, Samples: make([]float64, 100)}}
		got, err := provider.Analyze(context.Background(), m)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != model.NeutralSignal() {
			t.Errorf("score = %+v, want neutral", got)
		}
	})

	t.Run("tonal audio scores within bounds with full confidence", func(t *testing.T) {
		t.Parallel()
		m := &media.Media{Audio: sineClip(440, 16000, 8192)}
		got, err := provider.Analyze(context.Background(), m)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Value < 0 || got.Value > 1 {
			t.Errorf("Value = %f, want within [0, 1]", got.Value)
		}
		if got.Confidence != 1.0 {
			t.Errorf("Confidence = %f, want 1.0", got.Confidence)
		}
	})

	t.Run("wideband noise scores below a pure tone", func(t *testing.T) {
		t.Parallel()
		tone, err := provider.Analyze(context.Background(),
			&media.Media{Audio: sineClip(440, 16000, 8192)})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		noise, err := provider.Analyze(context.Background(),
			&media.Media{Audio: noiseClip(16000, 8192)})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		// Noise has a flat spectrum and a high zero-crossing rate, both
		// synthetic-voice markers.
		if noise.Value >= tone.Value {
			t.Errorf("noise = %f should score below tone = %f", noise.Value, tone.Value)
		}
	})

	t.Run("analysis is deterministic", func(t *testing.T) {
		t.Parallel()
		m := &media.Media{Audio: sineClip(220, 16000, 4096)}
		a, err := provider.Analyze(context.Background(), m)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		b, err := provider.Analyze(context.Background(), m)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if a != b {
			t.Errorf("repeated analyses differ: %+v vs %+v", a, b)
		}
	})

	t.Run("cancelled context aborts with neutral", func(t *testing.T) {
		t.Parallel()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		m := &media.Media{Audio: sineClip(440, 16000, 2048)}
		got, err := provider.Analyze(ctx, m)
		if err == nil {
			t.Fatal("expected context error")
		}
		if got != model.NeutralSignal() {
			t.Errorf("score = %+v, want neutral on cancellation", got)
		}
	})
}

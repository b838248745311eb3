package signal

import (
	"context"
	"testing"

	"github.com/trustscan-dev/trustscan/internal/media"
	"github.com/trustscan-dev/trustscan/internal/model"
)

// TestVisionProvider_Analyze tests the visual artifact signal.
func TestVisionProvider_Analyze(t *testing.T) {
	t.Parallel()

	provider := NewVisionProvider()

	t.Run("empty input yields the neutral score", func(t *testing.T) {
		t.Parallel()
		got, err := provider.Analyze(context.Background(), &media.Media{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != model.NeutralSignal() {
			t.Errorf("score = %+v, want neutral", got)
		}
	})

	t.Run("over-smoothed frames score near zero", func(t *testing.T) {
		t.Parallel()
		m := &media.Media{Frames: []media.Frame{uniformFrame(32, 32, 128)}}
		got, err := provider.Analyze(context.Background(), m)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		// A flat frame has neither texture variance nor edges.
		if got.Value != 0 {
			t.Errorf("Value = %f, want 0 for a flat frame", got.Value)
		}
		if got.Confidence != 1.0 {
			t.Errorf("Confidence = %f, want 1.0", got.Confidence)
		}
	})

	t.Run("textured frames score higher than flat frames", func(t *testing.T) {
		t.Parallel()
		textured, err := provider.Analyze(context.Background(),
			&media.Media{Frames: []media.Frame{texturedFrame(48, 48, 0)}})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		flat, err := provider.Analyze(context.Background(),
			&media.Media{Frames: []media.Frame{uniformFrame(48, 48, 128)}})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if textured.Value <= flat.Value {
			t.Errorf("textured = %f should exceed flat = %f", textured.Value, flat.Value)
		}
		if textured.Value < 0 || textured.Value > 1 {
			t.Errorf("Value = %f, want within [0, 1]", textured.Value)
		}
	})

	t.Run("analysis is deterministic", func(t *testing.T) {
		t.Parallel()
		frames := make([]media.Frame, 20)
		for i := range frames {
			frames[i] = texturedFrame(32, 32, i)
		}
		m := &media.Media{Frames: frames}

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

		m := &media.Media{Frames: []media.Frame{texturedFrame(32, 32, 0)}}
		got, err := provider.Analyze(ctx, m)
		if err == nil {
			t.Fatal("expected context error")
		}
		if got != model.NeutralSignal() {
			t.Errorf("score = %+v, want neutral on cancellation", got)
		}
	})
}

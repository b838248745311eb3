package media

import (
	"image"
	"image/color"
	"testing"
)

// texturedFrame builds a deterministic textured frame for tests.
func texturedFrame(width, height, seed int) Frame {
	f := NewFrame(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			f.Set(x, y, uint8((x*7+y*13+seed*31)%256))
		}
	}
	return f
}

// TestFrame_Accessors tests pixel access and emptiness.
func TestFrame_Accessors(t *testing.T) {
	t.Parallel()

	f := NewFrame(4, 3)
	if f.Empty() {
		t.Error("allocated frame should not be empty")
	}
	if len(f.Pix) != 12 {
		t.Errorf("len(Pix) = %d, want 12", len(f.Pix))
	}

	f.Set(2, 1, 200)
	if got := f.At(2, 1); got != 200 {
		t.Errorf("At(2,1) = %d, want 200", got)
	}
	if got := f.Pix[1*4+2]; got != 200 {
		t.Errorf("Pix[6] = %d, want 200", got)
	}

	if !(Frame{}).Empty() {
		t.Error("zero frame should be empty")
	}
}

// TestFrame_Clone tests deep copying.
func TestFrame_Clone(t *testing.T) {
	t.Parallel()

	orig := texturedFrame(8, 8, 1)
	cp := orig.Clone()
	cp.Set(0, 0, orig.At(0, 0)+1)

	if orig.At(0, 0) == cp.At(0, 0) {
		t.Error("clone shares pixel storage with the original")
	}

	frames := CloneFrames([]Frame{texturedFrame(4, 4, 0), texturedFrame(4, 4, 1)})
	frames[0].Set(0, 0, 7)
	if len(frames) != 2 {
		t.Fatalf("CloneFrames returned %d frames, want 2", len(frames))
	}
}

// TestFrame_GrayRoundTrip tests conversion to and from image.Gray.
func TestFrame_GrayRoundTrip(t *testing.T) {
	t.Parallel()

	orig := texturedFrame(16, 12, 2)
	back := FromGray(orig.ToGray())

	if back.Width != orig.Width || back.Height != orig.Height {
		t.Fatalf("dimensions = %dx%d, want %dx%d", back.Width, back.Height, orig.Width, orig.Height)
	}
	for i := range orig.Pix {
		if orig.Pix[i] != back.Pix[i] {
			t.Fatalf("pixel %d = %d, want %d", i, back.Pix[i], orig.Pix[i])
		}
	}
}

// TestFromImage tests color-to-luminance conversion.
func TestFromImage(t *testing.T) {
	t.Parallel()

	t.Run("white maps to 255", func(t *testing.T) {
		t.Parallel()
		img := image.NewRGBA(image.Rect(0, 0, 2, 2))
		for y := 0; y < 2; y++ {
			for x := 0; x < 2; x++ {
				img.Set(x, y, color.White)
			}
		}
		f := FromImage(img)
		if f.At(0, 0) != 255 {
			t.Errorf("white pixel = %d, want 255", f.At(0, 0))
		}
	})

	t.Run("black maps to 0", func(t *testing.T) {
		t.Parallel()
		img := image.NewRGBA(image.Rect(0, 0, 2, 2))
		f := FromImage(img)
		if f.At(0, 0) != 0 {
			t.Errorf("black pixel = %d, want 0", f.At(0, 0))
		}
	})

	t.Run("green is brighter than blue", func(t *testing.T) {
		t.Parallel()
		img := image.NewRGBA(image.Rect(0, 0, 2, 1))
		img.Set(0, 0, color.RGBA{G: 255, A: 255})
		img.Set(1, 0, color.RGBA{B: 255, A: 255})
		f := FromImage(img)
		if f.At(0, 0) <= f.At(1, 0) {
			t.Errorf("luma(green)=%d should exceed luma(blue)=%d", f.At(0, 0), f.At(1, 0))
		}
	})

	t.Run("gray input takes the fast path", func(t *testing.T) {
		t.Parallel()
		gray := texturedFrame(6, 6, 3).ToGray()
		f := FromImage(gray)
		if f.Width != 6 || f.Height != 6 {
			t.Errorf("dimensions = %dx%d, want 6x6", f.Width, f.Height)
		}
	})
}

// TestFrame_Mean tests average pixel value.
func TestFrame_Mean(t *testing.T) {
	t.Parallel()

	f := NewFrame(2, 2)
	f.Pix = []uint8{0, 100, 100, 200}
	if got := f.Mean(); got != 100 {
		t.Errorf("Mean() = %f, want 100", got)
	}

	if got := (Frame{}).Mean(); got != 0 {
		t.Errorf("empty Mean() = %f, want 0", got)
	}
}

// TestSampleFrames tests deterministic even sampling.
func TestSampleFrames(t *testing.T) {
	t.Parallel()

	frames := make([]Frame, 10)
	for i := range frames {
		frames[i] = texturedFrame(2, 2, i)
	}

	t.Run("short input passes through", func(t *testing.T) {
		t.Parallel()
		got := SampleFrames(frames[:3], 5)
		if len(got) != 3 {
			t.Errorf("len = %d, want 3", len(got))
		}
	})

	t.Run("long input is downsampled evenly", func(t *testing.T) {
		t.Parallel()
		got := SampleFrames(frames, 5)
		if len(got) != 5 {
			t.Fatalf("len = %d, want 5", len(got))
		}
		// Indices 0, 2, 4, 6, 8 for 10 frames sampled to 5.
		for i, f := range got {
			if f.At(0, 0) != frames[i*2].At(0, 0) {
				t.Errorf("sample %d does not match input index %d", i, i*2)
			}
		}
	})

	t.Run("repeated calls select the same frames", func(t *testing.T) {
		t.Parallel()
		a := SampleFrames(frames, 4)
		b := SampleFrames(frames, 4)
		for i := range a {
			if a[i].At(1, 1) != b[i].At(1, 1) {
				t.Fatalf("sampling is not deterministic at index %d", i)
			}
		}
	})

	t.Run("degenerate arguments", func(t *testing.T) {
		t.Parallel()
		if got := SampleFrames(frames, 0); got != nil {
			t.Error("max=0 should return nil")
		}
		if got := SampleFrames(nil, 5); got != nil {
			t.Error("empty input should return nil")
		}
	})
}

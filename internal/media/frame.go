package media

import (
	"errors"
	"image"
)

// ErrEmptyFrame is returned when a frame has no pixels.
var ErrEmptyFrame = errors.New("frame has no pixels")

// Frame is a single grayscale video frame.
//
// Design decision: the signal math (Laplacian variance, edge density,
// frame differencing) operates on luminance only, so we store 8-bit
// grayscale rather than full color. That keeps attack transforms and
// per-frame copies cheap and makes frames trivially convertible to
// image.Gray for JPEG re-encoding.
type Frame struct {
	// Width and Height are the frame dimensions in pixels.
	Width  int
	Height int

	// Pix holds row-major luminance values, len == Width*Height.
	Pix []uint8
}

// NewFrame allocates a zeroed frame of the given dimensions.
func NewFrame(width, height int) Frame {
	return Frame{Width: width, Height: height, Pix: make([]uint8, width*height)}
}

// At returns the pixel at (x, y). The caller must stay in bounds.
func (f Frame) At(x, y int) uint8 {
	return f.Pix[y*f.Width+x]
}

// Set writes the pixel at (x, y). The caller must stay in bounds.
func (f Frame) Set(x, y int, v uint8) {
	f.Pix[y*f.Width+x] = v
}

// Empty reports whether the frame carries no pixel data.
func (f Frame) Empty() bool {
	return f.Width <= 0 || f.Height <= 0 || len(f.Pix) == 0
}

// Clone returns a deep copy. Attack transforms always operate on clones
// so the caller's original frames are never mutated.
func (f Frame) Clone() Frame {
	cp := f
	cp.Pix = append([]uint8(nil), f.Pix...)
	return cp
}

// CloneFrames deep-copies a frame sequence.
func CloneFrames(frames []Frame) []Frame {
	out := make([]Frame, len(frames))
	for i, f := range frames {
		out[i] = f.Clone()
	}
	return out
}

// ToGray converts the frame to an image.Gray sharing no memory with it.
func (f Frame) ToGray() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, f.Width, f.Height))
	copy(img.Pix, f.Pix)
	return img
}

// FromGray builds a Frame from an image.Gray, copying the pixels.
func FromGray(img *image.Gray) Frame {
	b := img.Bounds()
	out := NewFrame(b.Dx(), b.Dy())
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			out.Set(x, y, img.GrayAt(b.Min.X+x, b.Min.Y+y).Y)
		}
	}
	return out
}

// FromImage converts any image to a grayscale Frame using the standard
// luma coefficients applied by image/color.
func FromImage(img image.Image) Frame {
	if gray, ok := img.(*image.Gray); ok {
		return FromGray(gray)
	}
	b := img.Bounds()
	out := NewFrame(b.Dx(), b.Dy())
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			r, g, bl, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			// 16-bit channels; BT.601 luma then scale to 8 bits.
			luma := (299*r + 587*g + 114*bl) / 1000
			out.Set(x, y, uint8(luma>>8))
		}
	}
	return out
}

// Mean returns the average pixel value, or 0 for an empty frame.
func (f Frame) Mean() float64 {
	if len(f.Pix) == 0 {
		return 0
	}
	var sum float64
	for _, p := range f.Pix {
		sum += float64(p)
	}
	return sum / float64(len(f.Pix))
}

// SampleFrames returns at most max evenly spaced frames from the input,
// preserving order. The sampling is deterministic: index i of the sample
// maps to input index i*len(frames)/max, so repeated calls on the same
// sequence select the same frames and analysis results are reproducible.
func SampleFrames(frames []Frame, max int) []Frame {
	if max <= 0 || len(frames) == 0 {
		return nil
	}
	if len(frames) <= max {
		return frames
	}
	out := make([]Frame, 0, max)
	for i := 0; i < max; i++ {
		out = append(out, frames[i*len(frames)/max])
	}
	return out
}

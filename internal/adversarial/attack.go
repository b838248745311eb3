package adversarial

import (
	"bytes"
	"fmt"
	"image/jpeg"
	"math"
	"math/rand/v2"

	"github.com/trustscan-dev/trustscan/internal/media"
)

// Attack kinds.
const (
	KindCompression = "compression"
	KindNoise       = "noise"
	KindBlur        = "blur"
	KindResolution  = "resolution"
	KindCrop        = "crop"
)

// Intensity labels.
const (
	IntensityLow    = "low"
	IntensityMedium = "medium"
	IntensityHigh   = "high"
)

// noiseSeed fixes the Gaussian noise stream so the noise attack is
// deterministic per call and robustness runs are reproducible.
const noiseSeed = 0x7472757374 // "trust"

// Attack is one catalog entry: a degradation kind at a fixed intensity
// with its concrete parameter.
type Attack struct {
	// Kind names the degradation family.
	Kind string

	// Intensity is the calibrated severity label.
	Intensity string

	// Param is the kind-specific intensity parameter: JPEG quality for
	// compression, noise sigma, blur kernel size, downscale factor for
	// resolution, or per-edge crop fraction.
	Param float64
}

// Name returns the catalog key, e.g. "compression_low".
func (a Attack) Name() string {
	return a.Kind + "_" + a.Intensity
}

// Apply runs the attack over a deep copy of frames. The input sequence
// is never mutated.
func (a Attack) Apply(frames []media.Frame) ([]media.Frame, error) {
	out := make([]media.Frame, len(frames))
	for i, f := range frames {
		attacked, err := a.applyFrame(f.Clone())
		if err != nil {
			return nil, fmt.Errorf("%s attack on frame %d: %w", a.Name(), i, err)
		}
		out[i] = attacked
	}
	return out, nil
}

func (a Attack) applyFrame(f media.Frame) (media.Frame, error) {
	if f.Empty() {
		return f, media.ErrEmptyFrame
	}
	switch a.Kind {
	case KindCompression:
		return recompress(f, int(a.Param))
	case KindNoise:
		return addGaussianNoise(f, a.Param), nil
	case KindBlur:
		return gaussianBlur(f, int(a.Param)), nil
	case KindResolution:
		return downUpscale(f, a.Param), nil
	case KindCrop:
		return cropAndRestore(f, a.Param), nil
	default:
		return f, fmt.Errorf("unknown attack kind %q", a.Kind)
	}
}

// Catalog returns the fixed attack table: three compression intensities
// plus medium noise, blur, resolution, and crop. Always 7 entries, in
// this order.
func Catalog() []Attack {
	return []Attack{
		{Kind: KindCompression, Intensity: IntensityLow, Param: 80},
		{Kind: KindCompression, Intensity: IntensityMedium, Param: 50},
		{Kind: KindCompression, Intensity: IntensityHigh, Param: 20},
		{Kind: KindNoise, Intensity: IntensityMedium, Param: 25},
		{Kind: KindBlur, Intensity: IntensityMedium, Param: 5},
		{Kind: KindResolution, Intensity: IntensityMedium, Param: 0.5},
		{Kind: KindCrop, Intensity: IntensityMedium, Param: 0.2},
	}
}

// recompress simulates lossy distribution by round-tripping the frame
// through a JPEG encode at the given quality.
func recompress(f media.Frame, quality int) (media.Frame, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, f.ToGray(), &jpeg.Options{Quality: quality}); err != nil {
		return media.Frame{}, fmt.Errorf("jpeg encode: %w", err)
	}
	img, err := jpeg.Decode(&buf)
	if err != nil {
		return media.Frame{}, fmt.Errorf("jpeg decode: %w", err)
	}
	return media.FromImage(img), nil
}

// addGaussianNoise adds zero-mean Gaussian noise with the given sigma,
// clipping to the valid pixel range. The random stream is fixed-seed so
// repeated runs degrade identically.
func addGaussianNoise(f media.Frame, sigma float64) media.Frame {
	rng := rand.New(rand.NewPCG(noiseSeed, noiseSeed))
	for i, p := range f.Pix {
		v := float64(p) + rng.NormFloat64()*sigma
		f.Pix[i] = clampPix(v)
	}
	return f
}

// gaussianBlur applies a separable Gaussian blur with the given odd
// kernel size. Sigma is derived from the kernel size the same way
// OpenCV derives it when none is given.
func gaussianBlur(f media.Frame, kernel int) media.Frame {
	if kernel < 3 {
		return f
	}
	if kernel%2 == 0 {
		kernel++
	}
	sigma := 0.3*(float64(kernel-1)*0.5-1) + 0.8
	taps := gaussianKernel(kernel, sigma)
	half := kernel / 2

	// Horizontal pass into a scratch frame, then vertical back.
	tmp := media.NewFrame(f.Width, f.Height)
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			var acc float64
			for k := -half; k <= half; k++ {
				acc += taps[k+half] * float64(f.At(clampIdx(x+k, f.Width), y))
			}
			tmp.Set(x, y, clampPix(acc))
		}
	}
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			var acc float64
			for k := -half; k <= half; k++ {
				acc += taps[k+half] * float64(tmp.At(x, clampIdx(y+k, f.Height)))
			}
			f.Set(x, y, clampPix(acc))
		}
	}
	return f
}

func gaussianKernel(size int, sigma float64) []float64 {
	taps := make([]float64, size)
	half := size / 2
	var sum float64
	for i := range taps {
		d := float64(i - half)
		taps[i] = math.Exp(-d * d / (2 * sigma * sigma))
		sum += taps[i]
	}
	for i := range taps {
		taps[i] /= sum
	}
	return taps
}

// downUpscale shrinks the frame by scale and stretches it back to the
// original dimensions, destroying high-frequency detail.
func downUpscale(f media.Frame, scale float64) media.Frame {
	w := int(float64(f.Width) * scale)
	h := int(float64(f.Height) * scale)
	if w < 1 || h < 1 {
		w, h = 1, 1
	}
	small := resizeBilinear(f, w, h)
	return resizeBilinear(small, f.Width, f.Height)
}

// cropAndRestore removes the given fraction from every edge and
// stretches the remainder back to the original dimensions.
func cropAndRestore(f media.Frame, pct float64) media.Frame {
	cw := int(float64(f.Width) * pct)
	ch := int(float64(f.Height) * pct)
	w := f.Width - 2*cw
	h := f.Height - 2*ch
	if w < 1 || h < 1 {
		return f
	}
	cropped := media.NewFrame(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			cropped.Set(x, y, f.At(x+cw, y+ch))
		}
	}
	return resizeBilinear(cropped, f.Width, f.Height)
}

// resizeBilinear resamples src to the given dimensions.
func resizeBilinear(src media.Frame, width, height int) media.Frame {
	out := media.NewFrame(width, height)
	if src.Empty() {
		return out
	}
	xr := float64(src.Width) / float64(width)
	yr := float64(src.Height) / float64(height)
	for y := 0; y < height; y++ {
		sy := (float64(y) + 0.5) * yr
		y0 := clampIdx(int(sy-0.5), src.Height)
		y1 := clampIdx(y0+1, src.Height)
		fy := sy - 0.5 - float64(y0)
		if fy < 0 {
			fy = 0
		}
		for x := 0; x < width; x++ {
			sx := (float64(x) + 0.5) * xr
			x0 := clampIdx(int(sx-0.5), src.Width)
			x1 := clampIdx(x0+1, src.Width)
			fx := sx - 0.5 - float64(x0)
			if fx < 0 {
				fx = 0
			}
			top := float64(src.At(x0, y0))*(1-fx) + float64(src.At(x1, y0))*fx
			bot := float64(src.At(x0, y1))*(1-fx) + float64(src.At(x1, y1))*fx
			out.Set(x, y, clampPix(top*(1-fy)+bot*fy))
		}
	}
	return out
}

func clampPix(v float64) uint8 {
	switch {
	case v < 0:
		return 0
	case v > 255:
		return 255
	default:
		return uint8(math.Round(v))
	}
}

func clampIdx(i, n int) int {
	switch {
	case i < 0:
		return 0
	case i >= n:
		return n - 1
	default:
		return i
	}
}

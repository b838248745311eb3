package media

import "math"

// Pixel-level operations shared by the quality assessor, the vision and
// temporal signal providers, and the adversarial attack transforms.
// All functions are pure: they never mutate their input frames.

// Laplacian returns the discrete Laplacian response at every interior
// pixel using the standard 4-neighbour kernel. Border pixels are skipped.
func Laplacian(f Frame) []float64 {
	if f.Width < 3 || f.Height < 3 {
		return nil
	}
	out := make([]float64, 0, (f.Width-2)*(f.Height-2))
	for y := 1; y < f.Height-1; y++ {
		for x := 1; x < f.Width-1; x++ {
			center := float64(f.At(x, y))
			v := float64(f.At(x-1, y)) + float64(f.At(x+1, y)) +
				float64(f.At(x, y-1)) + float64(f.At(x, y+1)) - 4*center
			out = append(out, v)
		}
	}
	return out
}

// LaplacianVariance returns the variance of the Laplacian response, the
// classic sharpness/over-smoothing measure. Returns 0 for tiny frames.
func LaplacianVariance(f Frame) float64 {
	return variance(Laplacian(f))
}

// GradientMagnitudes returns the Sobel gradient magnitude at every
// interior pixel.
func GradientMagnitudes(f Frame) []float64 {
	if f.Width < 3 || f.Height < 3 {
		return nil
	}
	out := make([]float64, 0, (f.Width-2)*(f.Height-2))
	for y := 1; y < f.Height-1; y++ {
		for x := 1; x < f.Width-1; x++ {
			gx := -float64(f.At(x-1, y-1)) + float64(f.At(x+1, y-1)) +
				-2*float64(f.At(x-1, y)) + 2*float64(f.At(x+1, y)) +
				-float64(f.At(x-1, y+1)) + float64(f.At(x+1, y+1))
			gy := -float64(f.At(x-1, y-1)) - 2*float64(f.At(x, y-1)) - float64(f.At(x+1, y-1)) +
				float64(f.At(x-1, y+1)) + 2*float64(f.At(x, y+1)) + float64(f.At(x+1, y+1))
			out = append(out, math.Sqrt(gx*gx+gy*gy))
		}
	}
	return out
}

// edgeThreshold is the gradient magnitude above which a pixel counts as
// an edge. Chosen so that typical natural frames land in the 0.1-0.3
// edge-density band the scoring plateaus expect.
const edgeThreshold = 128

// EdgeDensity returns the fraction of interior pixels whose gradient
// magnitude exceeds the edge threshold, in [0, 1].
func EdgeDensity(f Frame) float64 {
	mags := GradientMagnitudes(f)
	if len(mags) == 0 {
		return 0
	}
	edges := 0
	for _, m := range mags {
		if m > edgeThreshold {
			edges++
		}
	}
	return float64(edges) / float64(len(mags))
}

// MedianResidual returns the mean absolute difference between each
// interior pixel and the median of its 3x3 neighbourhood, used as a
// noise-level estimate.
func MedianResidual(f Frame) float64 {
	if f.Width < 3 || f.Height < 3 {
		return 0
	}
	var sum float64
	var count int
	var window [9]uint8
	for y := 1; y < f.Height-1; y++ {
		for x := 1; x < f.Width-1; x++ {
			i := 0
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					window[i] = f.At(x+dx, y+dy)
					i++
				}
			}
			med := median9(window)
			d := float64(f.At(x, y)) - float64(med)
			if d < 0 {
				d = -d
			}
			sum += d
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

// MeanAbsDiff returns the mean absolute pixel difference between two
// frames of identical dimensions. Mismatched frames return the maximum
// difference so they read as maximally inconsistent.
func MeanAbsDiff(a, b Frame) float64 {
	if a.Width != b.Width || a.Height != b.Height || len(a.Pix) == 0 {
		return 255
	}
	var sum float64
	for i := range a.Pix {
		d := int(a.Pix[i]) - int(b.Pix[i])
		if d < 0 {
			d = -d
		}
		sum += float64(d)
	}
	return sum / float64(len(a.Pix))
}

// variance returns the population variance of vs, 0 when len(vs) < 1.
func variance(vs []float64) float64 {
	if len(vs) == 0 {
		return 0
	}
	var mean float64
	for _, v := range vs {
		mean += v
	}
	mean /= float64(len(vs))
	var sum float64
	for _, v := range vs {
		d := v - mean
		sum += d * d
	}
	return sum / float64(len(vs))
}

// Variance is the exported form of variance for sibling packages.
func Variance(vs []float64) float64 { return variance(vs) }

// Mean returns the arithmetic mean of vs, 0 when empty.
func Mean(vs []float64) float64 {
	if len(vs) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vs {
		sum += v
	}
	return sum / float64(len(vs))
}

// median9 returns the median of a 9-element window using a small
// insertion sort; allocation-free on the hot path.
func median9(w [9]uint8) uint8 {
	for i := 1; i < len(w); i++ {
		for j := i; j > 0 && w[j-1] > w[j]; j-- {
			w[j-1], w[j] = w[j], w[j-1]
		}
	}
	return w[4]
}

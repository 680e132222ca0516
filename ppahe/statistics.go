package ppahe

import (
	"image"
	"math"

	"github.com/nvr-ai/go-ppahe/images/kernels"
)

// Statistics holds the per-pixel activity measures that drive window sizing.
// Both grids have the image's dimensions and are never modified after creation.
type Statistics struct {
	// Variance is the Gaussian-weighted local variance, E[I²] - E[I]².
	Variance *kernels.FloatGrid
	// Gradient is the central-difference gradient magnitude of the raw image.
	Gradient *kernels.FloatGrid
}

// ComputeStatistics estimates local variance and gradient magnitude of img.
// sigma is the standard deviation of the Gaussian used for the local moments;
// 0 disables smoothing, which makes the variance identically zero.
func ComputeStatistics(img *image.Gray, sigma float64) Statistics {
	return computeStatistics(img, sigma, 1, nil)
}

func computeStatistics(img *image.Gray, sigma float64, workers int, pool *kernels.Pool) Statistics {
	opt := kernels.Options{
		Sigma:   sigma,
		Edge:    kernels.EdgeMirror,
		Pool:    pool,
		Workers: workers,
	}
	mean := kernels.GaussianBlur(kernels.FromGray(img, false), opt)
	meanSq := kernels.GaussianBlur(kernels.FromGray(img, true), opt)

	// Reuse the second-moment grid for the variance.
	for i, m := range mean.Values {
		meanSq.Values[i] -= m * m
	}

	return Statistics{
		Variance: meanSq,
		Gradient: gradientMagnitude(img),
	}
}

// gradientMagnitude returns sqrt(gx² + gy²) with central differences inside
// the image and one-sided differences on its borders. A dimension of length 1
// contributes no gradient.
func gradientMagnitude(img *image.Gray) *kernels.FloatGrid {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	g := kernels.NewFloatGrid(w, h)

	at := func(x, y int) float64 { return float64(img.Pix[y*img.Stride+x]) }

	for y := 0; y < h; y++ {
		row := g.Row(y)
		for x := 0; x < w; x++ {
			gx := derivative(x, w, func(i int) float64 { return at(i, y) })
			gy := derivative(y, h, func(i int) float64 { return at(x, i) })
			row[x] = math.Sqrt(gx*gx + gy*gy)
		}
	}
	return g
}

// derivative is the first difference of f at i along an axis of length n.
func derivative(i, n int, f func(int) float64) float64 {
	switch {
	case n < 2:
		return 0
	case i == 0:
		return f(1) - f(0)
	case i == n-1:
		return f(n-1) - f(n-2)
	default:
		return (f(i+1) - f(i-1)) / 2
	}
}

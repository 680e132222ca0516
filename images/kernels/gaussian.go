package kernels

import "math"

// DefaultTruncate is the number of standard deviations covered by a Gaussian
// kernel before it is cut off.
const DefaultTruncate = 4.0

// Options configures a GaussianBlur call.
type Options struct {
	Sigma    float64  // Standard deviation in pixels. 0 returns a copy.
	Truncate float64  // Kernel radius in sigmas; 0 means DefaultTruncate.
	Edge     EdgeMode // Edge sampling mode.
	Pool     *Pool    // Optional buffer pool for the intermediate pass.
	Workers  int      // Row/column parallelism, see Workers.
}

// GaussianKernel returns the normalized 1-D Gaussian weights for sigma.
// The radius is int(truncate*sigma + 0.5), so the kernel has 2*radius+1 taps.
//
// Arguments:
// - sigma: Standard deviation of the Gaussian (must be > 0).
// - truncate: Radius in standard deviations.
//
// Returns:
// - The weights, summing to 1.
func GaussianKernel(sigma, truncate float64) []float64 {
	radius := int(truncate*sigma + 0.5)
	weights := make([]float64, 2*radius+1)
	denom := 2.0 * sigma * sigma

	sum := 0.0
	for i := range weights {
		x := float64(i - radius)
		weights[i] = math.Exp(-(x * x) / denom)
		sum += weights[i]
	}
	for i := range weights {
		weights[i] /= sum
	}
	return weights
}

// GaussianBlur applies a separable Gaussian blur to src and returns a new grid.
// The horizontal pass is written into an intermediate grid (pooled when
// opt.Pool is set), the vertical pass into the result. Each output sample is a
// fixed-order weighted sum, so the result does not depend on opt.Workers.
func GaussianBlur(src *FloatGrid, opt Options) *FloatGrid {
	dst := NewFloatGrid(src.Width, src.Height)
	if opt.Sigma <= 0 || len(src.Values) == 0 {
		copy(dst.Values, src.Values)
		return dst
	}
	truncate := opt.Truncate
	if truncate <= 0 {
		truncate = DefaultTruncate
	}
	weights := GaussianKernel(opt.Sigma, truncate)

	tmp := opt.Pool.GetGrid(src.Width, src.Height)
	blurHorizontal(src, tmp, weights, opt.Edge, opt.Workers)
	blurVertical(tmp, dst, weights, opt.Edge, opt.Workers)
	opt.Pool.PutGrid(tmp)

	return dst
}

// blurHorizontal correlates every row of src with weights.
func blurHorizontal(src, dst *FloatGrid, weights []float64, edge EdgeMode, workers int) {
	r := len(weights) / 2
	xs := coordTable(src.Width, r, edge)

	Parallel(src.Height, workers, func(start, end int) {
		for y := start; y < end; y++ {
			in := src.Row(y)
			out := dst.Row(y)
			for x := range out {
				// xs is offset by r: xs[x+k] maps x+k-r.
				taps := xs[x : x+len(weights)]
				sum := 0.0
				for k, w := range weights {
					sum += w * in[taps[k]]
				}
				out[x] = sum
			}
		}
	})
}

// blurVertical correlates every column of src with weights. Work is split by
// column bands; each goroutine still walks its columns row by row.
func blurVertical(src, dst *FloatGrid, weights []float64, edge EdgeMode, workers int) {
	r := len(weights) / 2
	ys := coordTable(src.Height, r, edge)

	Parallel(src.Width, workers, func(start, end int) {
		for y := 0; y < src.Height; y++ {
			taps := ys[y : y+len(weights)]
			out := dst.Row(y)[start:end]
			for i := range out {
				x := start + i
				sum := 0.0
				for k, w := range weights {
					sum += w * src.Values[taps[k]*src.Width+x]
				}
				out[i] = sum
			}
		}
	})
}

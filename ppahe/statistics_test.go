package ppahe

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ramp(width int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, width, 1))
	for x := 0; x < width; x++ {
		img.Pix[x] = uint8(x)
	}
	return img
}

func TestComputeStatisticsConstantImage(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 12, 9))
	for i := range img.Pix {
		img.Pix[i] = 90
	}

	stats := ComputeStatistics(img, 2)
	require.Equal(t, 12, stats.Variance.Width)
	require.Equal(t, 9, stats.Variance.Height)
	for i := range stats.Variance.Values {
		assert.InDelta(t, 0, stats.Variance.Values[i], 1e-6)
		assert.Zero(t, stats.Gradient.Values[i])
	}
}

func TestComputeStatisticsZeroSigma(t *testing.T) {
	img := ramp(32)
	stats := ComputeStatistics(img, 0)
	for _, v := range stats.Variance.Values {
		assert.Zero(t, v)
	}
}

func TestGradientMagnitudeLinearPlane(t *testing.T) {
	// I = 3x + 4y has |grad| = 5 everywhere, including the one-sided borders.
	img := image.NewGray(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.Pix[y*img.Stride+x] = uint8(3*x + 4*y)
		}
	}
	g := gradientMagnitude(img)
	for _, v := range g.Values {
		assert.InDelta(t, 5, v, 1e-12)
	}
}

func TestGradientMagnitudeSinglePixel(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 1, 1))
	img.Pix[0] = 200
	assert.Equal(t, []float64{0}, gradientMagnitude(img).Values)
}

func TestComputeStatisticsRamp(t *testing.T) {
	stats := ComputeStatistics(ramp(256), 2)

	// Away from the borders the blur window sees a pure ramp, so the local
	// variance is the same everywhere.
	interior := stats.Variance.At(128, 0)
	assert.Positive(t, interior)
	for x := 8; x < 248; x++ {
		assert.InDelta(t, interior, stats.Variance.At(x, 0), 1e-6, "x=%d", x)
		assert.InDelta(t, 1, stats.Gradient.At(x, 0), 1e-12)
	}
	// Mirroring at the border folds the ramp back onto itself.
	assert.Less(t, stats.Variance.At(0, 0), interior)
	assert.Less(t, stats.Variance.At(255, 0), interior)
}

func TestComputeStatisticsWorkersAgree(t *testing.T) {
	img := noise(40, 33, 5)
	want := computeStatistics(img, 1.5, 1, nil)
	for _, workers := range []int{2, 3, 8} {
		got := computeStatistics(img, 1.5, workers, nil)
		assert.Equal(t, want.Variance.Values, got.Variance.Values, "workers=%d", workers)
		assert.Equal(t, want.Gradient.Values, got.Gradient.Values, "workers=%d", workers)
	}
}

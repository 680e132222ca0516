package ppahe

import (
	"image"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// normEpsilon guards the min-max normalization of constant maps.
const normEpsilon = 1e-8

// WindowMap holds one odd neighborhood side length per pixel, row-major.
type WindowMap struct {
	Width     int
	Height    int
	MinWindow int
	MaxWindow int
	Sizes     []int
}

// At returns the window size assigned to pixel (x, y).
func (m *WindowMap) At(x, y int) int { return m.Sizes[y*m.Width+x] }

// MapWindowSizes turns the statistics into per-pixel window sizes. Variance and
// gradient are normalized to [0, 1] independently and averaged; high activity
// maps towards minWindow, flat regions towards maxWindow. Every size is forced
// odd and clamped into [minWindow, maxWindow].
func MapWindowSizes(stats Statistics, minWindow, maxWindow int) (*WindowMap, error) {
	if err := validateWindowBounds(minWindow, maxWindow); err != nil {
		return nil, err
	}

	w, h := stats.Variance.Width, stats.Variance.Height
	m := &WindowMap{
		Width:     w,
		Height:    h,
		MinWindow: minWindow,
		MaxWindow: maxWindow,
		Sizes:     make([]int, w*h),
	}
	if len(m.Sizes) == 0 {
		return m, nil
	}

	variance := stats.Variance.Values
	gradient := stats.Gradient.Values
	vMin, vMax := floats.Min(variance), floats.Max(variance)
	gMin, gMax := floats.Min(gradient), floats.Max(gradient)
	vScale := vMax - vMin + normEpsilon
	gScale := gMax - gMin + normEpsilon
	span := float64(maxWindow - minWindow)

	for i := range m.Sizes {
		combined := ((variance[i]-vMin)/vScale + (gradient[i]-gMin)/gScale) / 2
		raw := math.RoundToEven(float64(maxWindow) - combined*span)
		size := int(math.Floor(raw/2))*2 + 1
		m.Sizes[i] = min(max(size, minWindow), maxWindow)
	}
	return m, nil
}

// WindowSummary describes the distribution of a WindowMap.
type WindowSummary struct {
	Min    int
	Max    int
	Mean   float64
	StdDev float64
}

// Summary reports the range, mean and standard deviation of the window sizes.
func (m *WindowMap) Summary() WindowSummary {
	if len(m.Sizes) == 0 {
		return WindowSummary{}
	}
	values := make([]float64, len(m.Sizes))
	for i, s := range m.Sizes {
		values[i] = float64(s)
	}
	mean, std := stat.MeanStdDev(values, nil)
	if len(values) == 1 {
		std = 0
	}
	return WindowSummary{
		Min:    int(floats.Min(values)),
		Max:    int(floats.Max(values)),
		Mean:   mean,
		StdDev: std,
	}
}

// Image renders the map as an 8-bit image: MinWindow is black and MaxWindow is
// white. A map with MinWindow == MaxWindow renders mid-gray.
func (m *WindowMap) Image() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, m.Width, m.Height))
	span := m.MaxWindow - m.MinWindow
	for i, s := range m.Sizes {
		if span == 0 {
			img.Pix[i] = 128
			continue
		}
		img.Pix[i] = uint8((s - m.MinWindow) * 255 / span)
	}
	return img
}

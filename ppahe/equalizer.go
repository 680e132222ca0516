package ppahe

import (
	"math"

	"github.com/chewxy/math32"
)

// Equalizer maps a neighborhood's center value through the neighborhood's
// contrast-limited CDF. It owns scratch buffers, so each goroutine needs its
// own Equalizer; the zero value is not usable.
type Equalizer struct {
	clipLimit float64
	bins      int
	mode      Mode

	// binOf maps an intensity to its histogram bin, -1 when outside [0, bins-1].
	binOf [256]int
	// edges are the left bin edges, k*(bins-1)/bins.
	edges []float64
	hist  []int
	cdf   []int
}

// NewEqualizer returns an Equalizer for the given clip limit, bin count and
// mode. Arguments are assumed valid (see Config.Validate).
func NewEqualizer(clipLimit float64, bins int, mode Mode) *Equalizer {
	e := &Equalizer{
		clipLimit: clipLimit,
		bins:      bins,
		mode:      mode,
		edges:     make([]float64, bins),
		hist:      make([]int, bins),
		cdf:       make([]int, bins),
	}
	top := float64(bins - 1)
	for v := range e.binOf {
		if v > bins-1 {
			e.binOf[v] = -1
			continue
		}
		// The last bin is closed: v == bins-1 belongs to it.
		e.binOf[v] = min(int(float64(v)*float64(bins)/top), bins-1)
	}
	for k := range e.edges {
		e.edges[k] = float64(k) * top / float64(bins)
	}
	return e
}

// Equalize returns the enhanced intensity for center given its neighborhood.
// Degenerate neighborhoods, whose samples all share one bin or whose clipped
// CDF is flat, return center unchanged.
func (e *Equalizer) Equalize(nb Neighborhood, center uint8) uint8 {
	if !e.histogram(nb) {
		return center
	}

	clipHeight := int(math.Floor(float64(nb.Len()) * e.clipLimit / float64(e.bins)))
	if e.mode == ModeApproximate {
		clipHistogramOnce(e.hist, clipHeight)
	} else {
		clipHistogram(e.hist, clipHeight)
	}

	sum := 0
	for i, c := range e.hist {
		sum += c
		e.cdf[i] = sum
	}
	lo, hi := e.cdf[0], e.cdf[e.bins-1]
	if lo == hi {
		return center
	}

	var v int
	if e.mode == ModeApproximate {
		v = e.lookup(center, lo, hi)
	} else {
		v = e.interpolate(center, lo, hi)
	}
	return uint8(min(max(v, 0), e.bins-1))
}

// histogram fills e.hist from nb and reports whether more than one bin is
// occupied.
func (e *Equalizer) histogram(nb Neighborhood) bool {
	clear(e.hist)
	occupied := 0
	for i := 0; i < nb.Size(); i++ {
		for _, v := range nb.Row(i) {
			b := e.binOf[v]
			if b < 0 {
				continue
			}
			if e.hist[b] == 0 {
				occupied++
			}
			e.hist[b]++
		}
	}
	return occupied > 1
}

// scaled is the CDF at bin k rescaled from [lo, hi] to [0, bins-1].
func (e *Equalizer) scaled(k, lo, hi int) float64 {
	return float64((e.cdf[k]-lo)*(e.bins-1)) / float64(hi-lo)
}

// interpolate evaluates the rescaled CDF at center, piecewise-linearly between
// left bin edges, and truncates towards zero.
func (e *Equalizer) interpolate(center uint8, lo, hi int) int {
	x := float64(center)
	last := e.bins - 1
	if x <= e.edges[0] {
		return int(e.scaled(0, lo, hi))
	}
	if x >= e.edges[last] {
		return int(e.scaled(last, lo, hi))
	}

	j := min(int(x*float64(e.bins)/float64(last)), last-1)
	for j > 0 && e.edges[j] > x {
		j--
	}
	for j < last-1 && e.edges[j+1] <= x {
		j++
	}

	f0, f1 := e.scaled(j, lo, hi), e.scaled(j+1, lo, hi)
	slope := (f1 - f0) / (e.edges[j+1] - e.edges[j])
	return int(slope*(x-e.edges[j]) + f0)
}

// lookup reads the rescaled CDF at center's bin in float32, without
// interpolation. Intensities above the bin range use the last bin.
func (e *Equalizer) lookup(center uint8, lo, hi int) int {
	b := e.binOf[center]
	if b < 0 {
		b = e.bins - 1
	}
	v := float32((e.cdf[b]-lo)*(e.bins-1)) / float32(hi-lo)
	return int(math32.Floor(v))
}

// clipHistogram caps every bin at clipHeight and redistributes the clipped
// excess evenly, each bin capped again at clipHeight. The excess is then
// recomputed from the capped histogram, so whatever the second cap rejects is
// not carried into another round. Redistribution also stops when the per-bin
// share rounds to zero. Counts lost to the caps or to the undivided remainder
// are dropped and returned; the total never grows.
func clipHistogram(hist []int, clipHeight int) (dropped int) {
	n := len(hist)
	total := 0
	for _, c := range hist {
		total += c
	}

	excess := capHistogram(hist, clipHeight)
	for excess > 0 {
		step := excess / n
		if step == 0 {
			break
		}
		for i, c := range hist {
			hist[i] = min(c+step, clipHeight)
		}
		excess = 0
		for _, c := range hist {
			excess += max(c-clipHeight, 0)
		}
	}

	for _, c := range hist {
		total -= c
	}
	return total
}

// capHistogram clamps every bin to clipHeight and returns the removed count.
func capHistogram(hist []int, clipHeight int) (excess int) {
	for i, c := range hist {
		if c > clipHeight {
			excess += c - clipHeight
			hist[i] = clipHeight
		}
	}
	return excess
}

// clipHistogramOnce is the single-pass variant: cap, add excess/n to every bin
// without re-capping, then one extra count to each of the first excess%n bins.
func clipHistogramOnce(hist []int, clipHeight int) {
	n := len(hist)
	excess := capHistogram(hist, clipHeight)
	if excess == 0 {
		return
	}
	step, leftover := excess/n, excess%n
	for i := range hist {
		hist[i] += step
		if i < leftover {
			hist[i]++
		}
	}
}

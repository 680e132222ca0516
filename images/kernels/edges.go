package kernels

// EdgeMode defines how sampling behaves outside the grid bounds.
// - Clamp: repeats edge samples (a a | a b c d | d d).
// - Mirror: half-sample symmetric, the edge sample is repeated (b a | a b c d | d c).
// - Reflect: whole-sample symmetric, the edge sample is not repeated (c b | a b c d | c b).
// - Wrap: tiles the grid (c d | a b c d | a b).
type EdgeMode int

const (
	EdgeClamp EdgeMode = iota
	EdgeMirror
	EdgeReflect
	EdgeWrap
)

// String returns the edge mode name.
func (m EdgeMode) String() string {
	switch m {
	case EdgeClamp:
		return "clamp"
	case EdgeMirror:
		return "mirror"
	case EdgeReflect:
		return "reflect"
	case EdgeWrap:
		return "wrap"
	default:
		return "unknown"
	}
}

// MapCoord maps an index i to [0, n) according to edge mode.
// Indices any distance outside the range are folded repeatedly, so padding wider
// than the grid itself is still well defined. A grid of length 1 always maps to 0.
func MapCoord(i, n int, mode EdgeMode) int {
	if n <= 1 {
		return 0
	}
	if i >= 0 && i < n {
		return i
	}

	switch mode {
	case EdgeMirror:
		period := 2 * n
		i %= period
		if i < 0 {
			i += period
		}
		if i >= n {
			i = period - i - 1
		}
		return i
	case EdgeReflect:
		period := 2 * (n - 1)
		i %= period
		if i < 0 {
			i += period
		}
		if i >= n {
			i = period - i
		}
		return i
	case EdgeWrap:
		i %= n
		if i < 0 {
			i += n
		}
		return i
	default:
		if i < 0 {
			return 0
		}
		return n - 1
	}
}

// coordTable precomputes MapCoord for the indices [-pad, n+pad) so hot loops
// can index a slice instead of branching per sample.
func coordTable(n, pad int, mode EdgeMode) []int {
	table := make([]int, n+2*pad)
	for i := range table {
		table[i] = MapCoord(i-pad, n, mode)
	}
	return table
}

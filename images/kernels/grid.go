package kernels

import (
	"image"
	"sync"
)

// FloatGrid is a dense row-major grid of float64 samples.
type FloatGrid struct {
	Width  int
	Height int
	Values []float64
}

// NewFloatGrid allocates a zeroed w x h grid.
func NewFloatGrid(w, h int) *FloatGrid {
	return &FloatGrid{Width: w, Height: h, Values: make([]float64, w*h)}
}

// FromGray copies the visible pixels of img into a new grid.
// When square is true each sample is stored squared.
func FromGray(img *image.Gray, square bool) *FloatGrid {
	b := img.Bounds()
	g := NewFloatGrid(b.Dx(), b.Dy())
	for y := 0; y < g.Height; y++ {
		src := img.Pix[y*img.Stride : y*img.Stride+g.Width]
		dst := g.Row(y)
		for x, v := range src {
			f := float64(v)
			if square {
				f *= f
			}
			dst[x] = f
		}
	}
	return g
}

func (g *FloatGrid) At(x, y int) float64     { return g.Values[y*g.Width+x] }
func (g *FloatGrid) Set(x, y int, v float64) { g.Values[y*g.Width+x] = v }

// Row returns the backing slice of row y.
func (g *FloatGrid) Row(y int) []float64 {
	return g.Values[y*g.Width : (y+1)*g.Width]
}

// Pool lets callers reuse intermediate grids between calls to reduce GC pressure
// when the same image size is processed repeatedly. A nil *Pool allocates.
type Pool struct {
	grids sync.Pool // *FloatGrid
}

// GetGrid returns a w x h grid. Its contents are unspecified; callers overwrite it.
func (p *Pool) GetGrid(w, h int) *FloatGrid {
	if p == nil {
		return NewFloatGrid(w, h)
	}
	if v := p.grids.Get(); v != nil {
		g := v.(*FloatGrid)
		if cap(g.Values) >= w*h {
			g.Width, g.Height = w, h
			g.Values = g.Values[:w*h]
			return g
		}
	}
	return NewFloatGrid(w, h)
}

// PutGrid returns g to the pool.
func (p *Pool) PutGrid(g *FloatGrid) {
	if p == nil || g == nil {
		return
	}
	p.grids.Put(g)
}

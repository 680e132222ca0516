package ppahe

import (
	"image"

	"github.com/nvr-ai/go-ppahe/images/kernels"
)

// Padded is a reflect-padded copy of an image, shared read-only by every
// neighborhood lookup of one Enhance call. With Pad = maxWindow/2, the
// neighborhood of any pixel at any window size up to maxWindow lies inside it.
type Padded struct {
	Width  int // padded width, image width + 2*Pad
	Height int // padded height, image height + 2*Pad
	Pad    int
	Pix    []uint8
}

// Pad builds the padded source for img with padding maxWindow/2 on every side,
// mirroring interior samples outward without repeating the edge sample.
func Pad(img *image.Gray, maxWindow int) *Padded {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	p := maxWindow / 2

	out := &Padded{
		Width:  w + 2*p,
		Height: h + 2*p,
		Pad:    p,
	}
	out.Pix = make([]uint8, out.Width*out.Height)

	xs := make([]int, out.Width)
	for i := range xs {
		xs[i] = kernels.MapCoord(i-p, w, kernels.EdgeReflect)
	}
	for py := 0; py < out.Height; py++ {
		sy := kernels.MapCoord(py-p, h, kernels.EdgeReflect)
		src := img.Pix[sy*img.Stride : sy*img.Stride+w]
		dst := out.Pix[py*out.Width : (py+1)*out.Width]
		for px, sx := range xs {
			dst[px] = src[sx]
		}
	}
	return out
}

// Neighborhood returns the size x size view centered on image pixel (y, x).
// size must be odd and at most 2*Pad+1.
func (p *Padded) Neighborhood(y, x, size int) Neighborhood {
	half := size / 2
	top := y + p.Pad - half
	left := x + p.Pad - half
	off := top*p.Width + left
	return Neighborhood{
		pix:    p.Pix[off : off+(size-1)*p.Width+size],
		stride: p.Width,
		size:   size,
	}
}

// Neighborhood is a square, zero-copy view into a Padded buffer.
type Neighborhood struct {
	pix    []uint8
	stride int
	size   int
}

// NewNeighborhood wraps a dense size x size block of samples.
func NewNeighborhood(pix []uint8, size int) Neighborhood {
	return Neighborhood{pix: pix[:size*size], stride: size, size: size}
}

// Size is the side length.
func (n Neighborhood) Size() int { return n.size }

// Len is the number of samples, Size()².
func (n Neighborhood) Len() int { return n.size * n.size }

// Row returns row i of the view.
func (n Neighborhood) Row(i int) []uint8 {
	return n.pix[i*n.stride : i*n.stride+n.size]
}

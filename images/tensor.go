package images

import (
	"fmt"
	"image"

	"gorgonia.org/tensor"

	"github.com/nvr-ai/go-ppahe/ppahe"
)

// FromTensor copies a Uint8 tensor of shape (H, W) or (H, W, 1) into a new
// *image.Gray. Any other dtype or shape is a *ppahe.InputFormatError.
func FromTensor(t *tensor.Dense) (*image.Gray, error) {
	if t == nil {
		return nil, &ppahe.InputFormatError{Reason: "tensor is nil"}
	}
	if t.Dtype() != tensor.Uint8 {
		return nil, &ppahe.InputFormatError{Reason: fmt.Sprintf("tensor dtype %v, want uint8", t.Dtype())}
	}

	shape := t.Shape()
	switch {
	case len(shape) == 2:
	case len(shape) == 3 && shape[2] == 1:
	default:
		return nil, &ppahe.InputFormatError{Reason: fmt.Sprintf("tensor shape %v, want (H, W) or (H, W, 1)", shape)}
	}
	h, w := shape[0], shape[1]
	if h == 0 || w == 0 {
		return nil, &ppahe.InputFormatError{Reason: fmt.Sprintf("tensor shape %v is empty", shape)}
	}

	if t.IsView() {
		t = t.Materialize().(*tensor.Dense)
	}
	data, ok := t.Data().([]uint8)
	if !ok || len(data) != h*w {
		return nil, &ppahe.InputFormatError{Reason: "tensor data is not a dense uint8 slice"}
	}

	img := image.NewGray(image.Rect(0, 0, w, h))
	copy(img.Pix, data)
	return img, nil
}

// ToTensor copies the visible pixels of img into a new (H, W) Uint8 tensor.
//
// @example
//
//	t := images.ToTensor(enhanced)
//	fmt.Println(t.Shape()) // (480, 640)
func ToTensor(img *image.Gray) *tensor.Dense {
	b := img.Bounds()
	data := make([]uint8, b.Dx()*b.Dy())
	for y := 0; y < b.Dy(); y++ {
		copy(data[y*b.Dx():(y+1)*b.Dx()], img.Pix[y*img.Stride:])
	}
	return tensor.New(tensor.WithShape(b.Dy(), b.Dx()), tensor.Of(tensor.Uint8), tensor.WithBacking(data))
}

package images

import (
	"fmt"
	"image"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"

	"github.com/nvr-ai/go-ppahe/ppahe"
)

// FromMat copies a single-channel 8-bit Mat into a new *image.Gray.
//
// Arguments:
// - mat: A CV_8UC1 Mat.
//
// Returns:
// - The gray image, or a *ppahe.InputFormatError for empty or multi-channel Mats.
func FromMat(mat gocv.Mat) (*image.Gray, error) {
	if mat.Empty() {
		return nil, &ppahe.InputFormatError{Reason: "mat is empty"}
	}
	if mat.Type() != gocv.MatTypeCV8UC1 {
		return nil, &ppahe.InputFormatError{
			Reason: fmt.Sprintf("mat type %v has %d channels, want CV_8UC1", mat.Type(), mat.Channels()),
		}
	}

	rows, cols := mat.Rows(), mat.Cols()
	data := mat.ToBytes()
	if len(data) != rows*cols {
		return nil, &ppahe.InputFormatError{Reason: fmt.Sprintf("mat holds %d bytes, want %d", len(data), rows*cols)}
	}

	img := image.NewGray(image.Rect(0, 0, cols, rows))
	copy(img.Pix, data)
	return img, nil
}

// ToMat copies the visible pixels of img into a new CV_8UC1 Mat. The caller
// owns the Mat and must Close it.
func ToMat(img *image.Gray) (gocv.Mat, error) {
	b := img.Bounds()
	if b.Empty() {
		return gocv.NewMat(), &ppahe.InputFormatError{Reason: "image is empty"}
	}

	data := make([]byte, b.Dx()*b.Dy())
	for y := 0; y < b.Dy(); y++ {
		copy(data[y*b.Dx():(y+1)*b.Dx()], img.Pix[y*img.Stride:])
	}

	mat, err := gocv.NewMatFromBytes(b.Dy(), b.Dx(), gocv.MatTypeCV8UC1, data)
	if err != nil {
		return gocv.NewMat(), errors.Wrap(err, "failed to create mat")
	}
	return mat, nil
}

package images

import (
	"image"
	"math"

	"github.com/nfnt/resize"
)

// FitDimensions scales (width, height) so the longer side is at most maxDim,
// preserving the aspect ratio. Sizes already within bounds, or maxDim <= 0,
// are returned unchanged. Neither side drops below 1.
func FitDimensions(width, height, maxDim int) (int, int) {
	longest := max(width, height)
	if maxDim <= 0 || longest <= maxDim {
		return width, height
	}
	scale := float64(maxDim) / float64(longest)
	w := max(int(math.Round(float64(width)*scale)), 1)
	h := max(int(math.Round(float64(height)*scale)), 1)
	return w, h
}

// Downscale shrinks img with a Lanczos3 filter so that neither side exceeds
// maxDim. Images that already fit are returned as is.
//
// Arguments:
//   - img: The gray image to shrink.
//   - maxDim: The maximum width and height; 0 disables downscaling.
//
// Returns:
//   - *image.Gray: The resized image.
func Downscale(img *image.Gray, maxDim int) *image.Gray {
	b := img.Bounds()
	w, h := FitDimensions(b.Dx(), b.Dy(), maxDim)
	return Resize(img, w, h)
}

// Resize scales img to exactly width x height with a Lanczos3 filter.
func Resize(img *image.Gray, width, height int) *image.Gray {
	b := img.Bounds()
	if b.Dx() == width && b.Dy() == height {
		return img
	}
	resized := resize.Resize(uint(width), uint(height), img, resize.Lanczos3)
	if g, ok := resized.(*image.Gray); ok {
		return g
	}
	return ToGray(resized, GrayLuma)
}

package images

import (
	"crypto/md5"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"

	"github.com/nvr-ai/go-ppahe/images/kernels"
)

// GrayMethod selects how color pixels are reduced to one intensity.
type GrayMethod string

const (
	// GrayLuma uses the ITU-R BT.601 luma weights of color.GrayModel.
	GrayLuma GrayMethod = "luma"
	// GrayLightness uses CIE L*, scaled from [0, 1] to [0, 255].
	GrayLightness GrayMethod = "lightness"
)

// ParseGrayMethod resolves a method name; the empty string means GrayLuma.
func ParseGrayMethod(name string) (GrayMethod, error) {
	switch GrayMethod(name) {
	case "", GrayLuma:
		return GrayLuma, nil
	case GrayLightness:
		return GrayLightness, nil
	}
	return "", errors.Errorf("unknown gray method: %q", name)
}

// ToGray converts img to an 8-bit single-channel image with bounds starting at
// the origin. A *image.Gray with GrayLuma is returned as is.
//
// Arguments:
// - img: The source image in any color model.
// - method: The reduction used for color pixels.
//
// Returns:
// - The gray image.
func ToGray(img image.Image, method GrayMethod) *image.Gray {
	if g, ok := img.(*image.Gray); ok && method != GrayLightness {
		return g
	}

	b := img.Bounds()
	dst := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))

	kernels.Parallel(b.Dy(), 0, func(start, end int) {
		for y := start; y < end; y++ {
			row := dst.Pix[y*dst.Stride : y*dst.Stride+b.Dx()]
			for x := range row {
				c := img.At(b.Min.X+x, b.Min.Y+y)
				if method == GrayLightness {
					row[x] = lightness(c)
				} else {
					row[x] = color.GrayModel.Convert(c).(color.Gray).Y
				}
			}
		}
	})
	return dst
}

// lightness maps a color to its CIE L* value. Fully transparent pixels are black.
func lightness(c color.Color) uint8 {
	col, ok := colorful.MakeColor(c)
	if !ok {
		return 0
	}
	l, _, _ := col.Lab()
	return uint8(math.Round(math.Min(math.Max(l, 0), 1) * 255))
}

// Checksum generates a deterministic checksum over the visible pixels of img.
//
// Arguments:
// - img: The image to compute checksum for.
//
// Returns:
// - A hex-encoded MD5 checksum string.
//
// Example:
//
// ```go
//
//	checksum := Checksum(enhanced)
//	fmt.Printf("Output checksum: %s\n", checksum)
//
// ```
func Checksum(img *image.Gray) string {
	b := img.Bounds()
	if b.Empty() {
		return "empty"
	}

	hash := md5.New()
	for y := 0; y < b.Dy(); y++ {
		hash.Write(img.Pix[y*img.Stride : y*img.Stride+b.Dx()])
	}
	return fmt.Sprintf("%x", hash.Sum(nil))
}

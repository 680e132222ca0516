package images

import (
	"bytes"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"path/filepath"
	"strings"

	"github.com/chai2010/webp"
	"github.com/pkg/errors"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// ImageFormat represents supported image formats
type ImageFormat string

// ImageFormat constants
const (
	// FormatJPEG is the JPEG image format.
	FormatJPEG ImageFormat = "jpeg"
	// FormatWebP is the WebP image format.
	FormatWebP ImageFormat = "webp"
	// FormatPNG is the PNG image format.
	FormatPNG ImageFormat = "png"
	// FormatTIFF is the TIFF image format.
	FormatTIFF ImageFormat = "tiff"
	// FormatBMP is the BMP image format.
	FormatBMP ImageFormat = "bmp"
)

// JPEGQuality is the quality used when encoding JPEG output.
const JPEGQuality = 95

var extensions = map[string]ImageFormat{
	".jpg":  FormatJPEG,
	".jpeg": FormatJPEG,
	".png":  FormatPNG,
	".webp": FormatWebP,
	".tif":  FormatTIFF,
	".tiff": FormatTIFF,
	".bmp":  FormatBMP,
}

// ParseFormat resolves a format name such as "png" or "jpg".
func ParseFormat(name string) (ImageFormat, error) {
	f, ok := extensions["."+strings.ToLower(strings.TrimPrefix(name, "."))]
	if !ok {
		return "", errors.Errorf("unsupported image format: %q", name)
	}
	return f, nil
}

// FormatFromPath returns the format implied by the file extension of path.
func FormatFromPath(path string) (ImageFormat, error) {
	ext := filepath.Ext(path)
	if ext == "" {
		return "", errors.Errorf("no file extension: %s", path)
	}
	return ParseFormat(ext)
}

// Supported reports whether path has a decodable image extension.
func Supported(path string) bool {
	_, ok := extensions[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Decode decodes an encoded image of any supported format, sniffing the format
// from its header.
//
// Arguments:
// - data: The encoded image bytes.
//
// Returns:
// - The decoded image, in whatever color model the codec produced.
// - The detected format.
// - An error if the data is empty or cannot be decoded.
func Decode(data []byte) (image.Image, ImageFormat, error) {
	if len(data) == 0 {
		return nil, "", errors.New("empty image data")
	}
	format, err := sniff(data)
	if err != nil {
		return nil, "", err
	}

	r := bytes.NewReader(data)
	var img image.Image
	switch format {
	case FormatJPEG:
		img, err = jpeg.Decode(r)
	case FormatPNG:
		img, err = png.Decode(r)
	case FormatWebP:
		img, err = webp.Decode(r)
	case FormatTIFF:
		img, err = tiff.Decode(r)
	case FormatBMP:
		img, err = bmp.Decode(r)
	}
	if err != nil {
		return nil, "", errors.Wrapf(err, "failed to decode %s", format)
	}
	return img, format, nil
}

// Encode writes img to w in the given format. PNG, WebP, TIFF and BMP output is
// lossless; JPEG uses JPEGQuality.
func Encode(w io.Writer, img image.Image, format ImageFormat) error {
	var err error
	switch format {
	case FormatJPEG:
		err = jpeg.Encode(w, img, &jpeg.Options{Quality: JPEGQuality})
	case FormatPNG:
		err = png.Encode(w, img)
	case FormatWebP:
		err = webp.Encode(w, img, &webp.Options{Lossless: true})
	case FormatTIFF:
		err = tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	case FormatBMP:
		err = bmp.Encode(w, img)
	default:
		return errors.Errorf("unsupported image format: %q", format)
	}
	return errors.Wrapf(err, "failed to encode %s", format)
}

// sniff identifies the container format from its magic bytes.
func sniff(data []byte) (ImageFormat, error) {
	switch {
	case bytes.HasPrefix(data, []byte("\xff\xd8")):
		return FormatJPEG, nil
	case bytes.HasPrefix(data, []byte("\x89PNG\r\n\x1a\n")):
		return FormatPNG, nil
	case len(data) >= 12 && bytes.Equal(data[0:4], []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WEBP")):
		return FormatWebP, nil
	case bytes.HasPrefix(data, []byte("II*\x00")), bytes.HasPrefix(data, []byte("MM\x00*")):
		return FormatTIFF, nil
	case bytes.HasPrefix(data, []byte("BM")):
		return FormatBMP, nil
	}
	return "", errors.New("unrecognized image format")
}

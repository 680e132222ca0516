package util

import (
	"bytes"
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvr-ai/go-ppahe/images"
)

func writeImage(t *testing.T, path string, format images.ImageFormat) {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 8, 8))
	for i := range img.Pix {
		img.Pix[i] = uint8(i * 3)
	}
	var buf bytes.Buffer
	require.NoError(t, images.Encode(&buf, img, format))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

func TestLoadDirectoryImages(t *testing.T) {
	dir := t.TempDir()
	writeImage(t, filepath.Join(dir, "b.png"), images.FormatPNG)
	writeImage(t, filepath.Join(dir, "a.jpg"), images.FormatJPEG)
	writeImage(t, filepath.Join(dir, "c.tiff"), images.FormatTIFF)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("skip"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.png"), 0o755))

	files, err := LoadDirectoryImageFiles(dir)
	require.NoError(t, err)
	require.Len(t, files, 3)

	assert.Equal(t, filepath.Join(dir, "a.jpg"), files[0].Path)
	assert.Equal(t, images.FormatJPEG, files[0].Format)
	assert.Equal(t, images.FormatPNG, files[1].Format)
	assert.Equal(t, images.FormatTIFF, files[2].Format)
	for _, f := range files {
		assert.NotEmpty(t, f.Data)
	}
}

func TestLoadDirectoryImagesMissing(t *testing.T) {
	_, err := LoadDirectoryImageFiles(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestLoadImageFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "frame.bmp")
	writeImage(t, path, images.FormatBMP)

	f, err := LoadImageFile(path)
	require.NoError(t, err)
	assert.Equal(t, images.FormatBMP, f.Format)

	_, err = LoadImageFile(filepath.Join(t.TempDir(), "frame.gif"))
	assert.Error(t, err)
}

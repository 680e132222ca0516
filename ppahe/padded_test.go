package ppahe

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func threeByThree() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, 3, 3))
	copy(img.Pix, []uint8{
		1, 2, 3,
		4, 5, 6,
		7, 8, 9,
	})
	return img
}

func TestPadReflect(t *testing.T) {
	p := Pad(threeByThree(), 5)
	require.Equal(t, 2, p.Pad)
	require.Equal(t, 7, p.Width)
	require.Equal(t, 7, p.Height)

	// Rows and columns map 2 1 | 0 1 2 | 1 0.
	assert.Equal(t, []uint8{9, 8, 7, 8, 9, 8, 7}, p.Pix[0:7])
	assert.Equal(t, []uint8{6, 5, 4, 5, 6, 5, 4}, p.Pix[7:14])
	assert.Equal(t, []uint8{3, 2, 1, 2, 3, 2, 1}, p.Pix[14:21])
	assert.Equal(t, []uint8{3, 2, 1, 2, 3, 2, 1}, p.Pix[42:49])
}

func TestPadFixedWindowOne(t *testing.T) {
	p := Pad(threeByThree(), 1)
	assert.Equal(t, 0, p.Pad)
	assert.Equal(t, []uint8{1, 2, 3, 4, 5, 6, 7, 8, 9}, p.Pix)
}

func TestPaddedNeighborhood(t *testing.T) {
	p := Pad(threeByThree(), 5)

	nb := p.Neighborhood(1, 1, 3)
	require.Equal(t, 3, nb.Size())
	require.Equal(t, 9, nb.Len())
	assert.Equal(t, []uint8{1, 2, 3}, nb.Row(0))
	assert.Equal(t, []uint8{4, 5, 6}, nb.Row(1))
	assert.Equal(t, []uint8{7, 8, 9}, nb.Row(2))

	nb = p.Neighborhood(0, 0, 5)
	assert.Equal(t, 25, nb.Len())
	assert.Equal(t, []uint8{9, 8, 7, 8, 9}, nb.Row(0))
	assert.Equal(t, []uint8{3, 2, 1, 2, 3}, nb.Row(2), "center row holds the pixel")
	assert.Equal(t, uint8(1), nb.Row(2)[2])

	nb = p.Neighborhood(2, 2, 1)
	assert.Equal(t, []uint8{9}, nb.Row(0))
}

func TestPadSubImage(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 6, 6))
	for i := range img.Pix {
		img.Pix[i] = uint8(i)
	}
	sub := img.SubImage(image.Rect(2, 2, 5, 5)).(*image.Gray)

	p := Pad(sub, 3)
	assert.Equal(t, 5, p.Width)
	nb := p.Neighborhood(0, 0, 1)
	assert.Equal(t, []uint8{14}, nb.Row(0))
}

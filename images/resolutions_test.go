package images

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameSizeMegaPixels(t *testing.T) {
	testCases := []struct {
		name     string
		size     FrameSize
		expected float64
	}{
		{"1080p", frameSizes["1080p"], 2.07},
		{"4k", frameSizes["4k"], 8.29},
		{"1mp", frameSizes["1mp"], 1.31},
		{"zero width", FrameSize{Width: 0, Height: 1080}, 0},
		{"negative height", FrameSize{Width: 1920, Height: -1}, 0},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.size.MegaPixels())
		})
	}
}

func TestFrameSizeString(t *testing.T) {
	assert.Equal(t, "720p (1280x720, 0.92MP)", frameSizes["720p"].String())
}

func TestFrameSizesOrdered(t *testing.T) {
	all := FrameSizes()
	require.Len(t, all, len(frameSizes))
	assert.Equal(t, "qvga", all[0].Name)
	assert.Equal(t, "4k", all[len(all)-1].Name)
	for i := 1; i < len(all); i++ {
		assert.LessOrEqual(t, all[i-1].Width*all[i-1].Height, all[i].Width*all[i].Height)
	}
}

func TestParseFrameSize(t *testing.T) {
	f, err := ParseFrameSize(" 720P ")
	require.NoError(t, err)
	assert.Equal(t, FrameSize{Name: "720p", Width: 1280, Height: 720}, f)

	f, err = ParseFrameSize("100x50")
	require.NoError(t, err)
	assert.Equal(t, FrameSize{Name: "100x50", Width: 100, Height: 50}, f)

	for _, bad := range []string{"", "huge", "10x", "x10", "0x10", "10x-2", "axb"} {
		_, err := ParseFrameSize(bad)
		assert.Error(t, err, bad)
	}
}

func TestLargestFrameSizeWithin(t *testing.T) {
	f, ok := LargestFrameSizeWithin(2000, 1100)
	require.True(t, ok)
	assert.Equal(t, "1080p", f.Name)

	f, ok = LargestFrameSizeWithin(1280, 1024)
	require.True(t, ok)
	assert.Equal(t, "1mp", f.Name)

	_, ok = LargestFrameSizeWithin(100, 100)
	assert.False(t, ok)
}

package images

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorgonia.org/tensor"

	"github.com/nvr-ai/go-ppahe/ppahe"
)

func TestTensorRoundTrip(t *testing.T) {
	src := gradientGray(9, 4)

	tt := ToTensor(src)
	assert.Equal(t, tensor.Shape{4, 9}, tt.Shape())
	assert.Equal(t, tensor.Uint8, tt.Dtype())

	back, err := FromTensor(tt)
	require.NoError(t, err)
	assert.Equal(t, src.Pix, back.Pix)
}

func TestFromTensorChannelAxis(t *testing.T) {
	data := []uint8{1, 2, 3, 4, 5, 6}
	tt := tensor.New(tensor.WithShape(2, 3, 1), tensor.WithBacking(data))

	img, err := FromTensor(tt)
	require.NoError(t, err)
	assert.Equal(t, 3, img.Bounds().Dx())
	assert.Equal(t, 2, img.Bounds().Dy())
	assert.Equal(t, data, img.Pix)
}

func TestFromTensorRejects(t *testing.T) {
	tests := map[string]*tensor.Dense{
		"nil":          nil,
		"float32":      tensor.New(tensor.WithShape(2, 2), tensor.WithBacking([]float32{1, 2, 3, 4})),
		"three planes": tensor.New(tensor.WithShape(1, 2, 3), tensor.WithBacking(make([]uint8, 6))),
		"one axis":     tensor.New(tensor.WithShape(4), tensor.WithBacking(make([]uint8, 4))),
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := FromTensor(tt)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ppahe.ErrInputFormat))
		})
	}
}

package images

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"github.com/nvr-ai/go-ppahe/ppahe"
)

func TestMatRoundTrip(t *testing.T) {
	src := gradientGray(23, 11)

	mat, err := ToMat(src)
	require.NoError(t, err)
	defer mat.Close()

	assert.Equal(t, 11, mat.Rows())
	assert.Equal(t, 23, mat.Cols())
	assert.Equal(t, gocv.MatTypeCV8UC1, mat.Type())
	assert.Equal(t, src.Pix[3*src.Stride+5], mat.GetUCharAt(3, 5))

	back, err := FromMat(mat)
	require.NoError(t, err)
	assert.Equal(t, src.Pix, back.Pix)
}

func TestFromMatRejectsColor(t *testing.T) {
	mat := gocv.NewMatWithSize(4, 4, gocv.MatTypeCV8UC3)
	defer mat.Close()

	_, err := FromMat(mat)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ppahe.ErrInputFormat))
}

func TestFromMatRejectsEmpty(t *testing.T) {
	mat := gocv.NewMat()
	defer mat.Close()

	_, err := FromMat(mat)
	assert.True(t, errors.Is(err, ppahe.ErrInputFormat))
}

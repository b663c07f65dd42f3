package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorgonia.org/tensor"
)

func TestGrayPlane_AveragesChannels(t *testing.T) {
	img := tensor.New(
		tensor.WithShape(3, 1, 2),
		tensor.WithBacking([]float32{
			0, 3, // R
			1, 3, // G
			2, 3, // B
		}),
	)

	gray, rows, cols, err := grayPlane(img)
	require.NoError(t, err)

	assert.Equal(t, 1, rows)
	assert.Equal(t, 2, cols)
	assert.InDeltaSlice(t, []float32{1, 3}, gray, 1e-6)
}

func TestGrayPlane_SingleChannel(t *testing.T) {
	img := tensor.New(tensor.WithShape(1, 2, 2), tensor.WithBacking([]float32{1, 2, 3, 4}))

	gray, rows, cols, err := grayPlane(img)
	require.NoError(t, err)

	assert.Equal(t, 2, rows)
	assert.Equal(t, 2, cols)
	assert.InDeltaSlice(t, []float32{1, 2, 3, 4}, gray, 1e-6)
}

func TestGrayPlane_RejectsBadShapes(t *testing.T) {
	_, _, _, err := grayPlane(nil)
	assert.Error(t, err)

	flat := tensor.New(tensor.WithShape(4), tensor.WithBacking([]float32{1, 2, 3, 4}))
	_, _, _, err = grayPlane(flat)
	assert.Error(t, err)
}

func TestNewBlur_Defaults(t *testing.T) {
	b := NewBlur()
	assert.Equal(t, 15, b.Kernel)
	assert.Equal(t, 1.0, b.scale)
}

package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorgonia.org/tensor"
)

var (
	testMean = [3]float32{0.485, 0.456, 0.406}
	testStd  = [3]float32{0.229, 0.224, 0.225}
)

func chw(t *testing.T, shape []int, data []float32) *tensor.Dense {
	t.Helper()
	return tensor.New(tensor.WithShape(shape...), tensor.WithBacking(data))
}

func TestIdentity_Passthrough(t *testing.T) {
	in := chw(t, []int{1, 2, 2}, []float32{0.1, 0.2, 0.3, 0.4})

	out, err := Identity{}.Apply(in)
	require.NoError(t, err)
	assert.Same(t, in, out)
}

func TestNormalizeDenormalize_RoundTrip(t *testing.T) {
	// Unit-range pixels, one per channel corner case included (0 and 1).
	in := chw(t, []int{3, 2, 2}, []float32{
		0, 0.25, 0.5, 1,
		0.1, 0.4, 0.6, 0.9,
		0.2, 0.3, 0.7, 0.8,
	})

	out, err := Chain{
		Normalize{Mean: testMean, Std: testStd},
		Denormalize{Mean: testMean, Std: testStd},
	}.Apply(in)
	require.NoError(t, err)

	inData := in.Data().([]float32)
	outData := out.Data().([]float32)
	require.Len(t, outData, len(inData))
	for i := range inData {
		assert.InDelta(t, float64(inData[i]*255), float64(outData[i]), 1e-2)
	}
}

func TestDenormalize_ClampsToDisplayRange(t *testing.T) {
	in := chw(t, []int{1, 1, 2}, []float32{-10, 10})

	out, err := Denormalize{Std: [3]float32{1, 1, 1}}.Apply(in)
	require.NoError(t, err)

	data := out.Data().([]float32)
	assert.Equal(t, float32(0), data[0])
	assert.Equal(t, float32(255), data[1])
}

func TestNormalize_SingleChannelUsesFirstStats(t *testing.T) {
	in := chw(t, []int{1, 1, 1}, []float32{0.485})

	out, err := Normalize{Mean: testMean, Std: testStd}.Apply(in)
	require.NoError(t, err)

	data := out.Data().([]float32)
	assert.InDelta(t, 0, float64(data[0]), 1e-6)
}

func TestMapChannels_RejectsBadShapes(t *testing.T) {
	flat := tensor.New(tensor.WithShape(4), tensor.WithBacking([]float32{1, 2, 3, 4}))
	_, err := Normalize{Std: [3]float32{1, 1, 1}}.Apply(flat)
	assert.Error(t, err)

	twoChan := chw(t, []int{2, 1, 2}, []float32{1, 2, 3, 4})
	_, err = Normalize{Std: [3]float32{1, 1, 1}}.Apply(twoChan)
	assert.Error(t, err)
}

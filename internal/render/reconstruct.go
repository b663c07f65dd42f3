package render

import (
	"fmt"

	"gorgonia.org/tensor"
)

// Reconstructor turns a model-space tensor back into a displayable one.
// Inputs are CHW float32 with 1 or 3 channels.
type Reconstructor interface {
	Apply(t *tensor.Dense) (*tensor.Dense, error)
}

// Identity returns its input unchanged.
type Identity struct{}

func (Identity) Apply(t *tensor.Dense) (*tensor.Dense, error) { return t, nil }

// Normalize maps unit-range pixels into model space: (x - mean) / std per
// channel. Single-channel inputs use the first mean/std entry.
type Normalize struct {
	Mean [3]float32
	Std  [3]float32
}

func (n Normalize) Apply(t *tensor.Dense) (*tensor.Dense, error) {
	return mapChannels(t, func(c int, v float32) float32 {
		return (v - n.Mean[c]) / n.Std[c]
	})
}

// Denormalize inverts Normalize and rescales into display range:
// clip((x*std + mean) * 255, 0, 255).
type Denormalize struct {
	Mean [3]float32
	Std  [3]float32
}

func (d Denormalize) Apply(t *tensor.Dense) (*tensor.Dense, error) {
	return mapChannels(t, func(c int, v float32) float32 {
		out := (v*d.Std[c] + d.Mean[c]) * 255
		if out < 0 {
			return 0
		}
		if out > 255 {
			return 255
		}
		return out
	})
}

// Chain applies reconstructors left to right.
type Chain []Reconstructor

func (ch Chain) Apply(t *tensor.Dense) (*tensor.Dense, error) {
	var err error
	for _, r := range ch {
		t, err = r.Apply(t)
		if err != nil {
			return nil, err
		}
	}
	return t, nil
}

func mapChannels(t *tensor.Dense, f func(c int, v float32) float32) (*tensor.Dense, error) {
	shape := t.Shape()
	if len(shape) != 3 {
		return nil, fmt.Errorf("expected CHW tensor, got shape %v", shape)
	}
	channels := shape[0]
	if channels != 1 && channels != 3 {
		return nil, fmt.Errorf("expected 1 or 3 channels, got %d", channels)
	}

	in, ok := t.Data().([]float32)
	if !ok {
		return nil, fmt.Errorf("expected float32 tensor, got %T", t.Data())
	}

	plane := shape[1] * shape[2]
	out := make([]float32, len(in))
	for c := 0; c < channels; c++ {
		for i := c * plane; i < (c+1)*plane; i++ {
			out[i] = f(c, in[i])
		}
	}
	return tensor.New(tensor.WithShape(shape...), tensor.WithBacking(out)), nil
}

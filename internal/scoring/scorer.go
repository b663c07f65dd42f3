// Package scoring defines the seam between the evaluation pipeline and an
// anomaly-scoring model, plus a simple statistical baseline.
package scoring

import (
	"context"

	"gorgonia.org/tensor"

	"anombench/internal/dataset"
	"anombench/internal/loader"
)

// Scorer produces a per-pixel anomaly map and a per-image anomaly score for
// one loaded sample. The map is an HW float32 scalar field matching the
// sample's spatial size.
type Scorer interface {
	Score(ctx context.Context, item dataset.Item) (*tensor.Dense, float64, error)
}

// Fitter is implemented by scorers that calibrate on nominal training data
// before evaluation.
type Fitter interface {
	Fit(ctx context.Context, train *loader.Loader) error
}

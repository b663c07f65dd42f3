package scoring

import (
	"context"
	"errors"
	"fmt"
	"image"
	"math"

	"gocv.io/x/gocv"
	"gorgonia.org/tensor"

	"anombench/internal/dataset"
	"anombench/internal/loader"
)

// Blur scores each pixel by its absolute deviation from a Gaussian-smoothed
// copy of the image. Defect-free surfaces are locally smooth, so large
// high-frequency residuals mark anomalies. Fit estimates the nominal residual
// scale on training data and Score divides by it.
type Blur struct {
	Kernel int

	scale float64
}

func NewBlur() *Blur {
	return &Blur{Kernel: 15, scale: 1}
}

// Fit runs one pass over the train loader and calibrates the residual scale
// to the mean per-image maximum residual of nominal samples.
func (b *Blur) Fit(ctx context.Context, train *loader.Loader) error {
	var sum float64
	var count int
	for res := range train.Batches(ctx) {
		if res.Err != nil {
			return fmt.Errorf("fit pass: %w", res.Err)
		}
		for _, item := range res.Batch.Items {
			_, max, err := b.residual(item)
			if err != nil {
				return err
			}
			sum += max
			count++
		}
	}
	if count == 0 {
		return errors.New("fit pass yielded no samples")
	}
	if mean := sum / float64(count); mean > 0 {
		b.scale = mean
	}
	return nil
}

func (b *Blur) Score(ctx context.Context, item dataset.Item) (*tensor.Dense, float64, error) {
	_ = ctx
	seg, max, err := b.residual(item)
	if err != nil {
		return nil, 0, err
	}

	if b.scale != 1 {
		data := seg.Data().([]float32)
		for i := range data {
			data[i] /= float32(b.scale)
		}
		max /= b.scale
	}
	return seg, max, nil
}

// residual computes |gray - gaussian(gray)| and its maximum.
func (b *Blur) residual(item dataset.Item) (*tensor.Dense, float64, error) {
	gray, rows, cols, err := grayPlane(item.Image)
	if err != nil {
		return nil, 0, err
	}

	mat := gocv.NewMatWithSize(rows, cols, gocv.MatTypeCV32F)
	defer mat.Close()
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			mat.SetFloatAt(y, x, gray[y*cols+x])
		}
	}

	kernel := b.Kernel
	if kernel%2 == 0 {
		kernel++
	}

	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(mat, &blurred, image.Pt(kernel, kernel), 0, 0, gocv.BorderDefault)

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(mat, blurred, &diff)

	data := make([]float32, rows*cols)
	var max float64
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			v := diff.GetFloatAt(y, x)
			data[y*cols+x] = v
			max = math.Max(max, float64(v))
		}
	}
	return tensor.New(tensor.WithShape(rows, cols), tensor.WithBacking(data)), max, nil
}

// grayPlane averages the CHW channels into one luminance plane.
func grayPlane(t *tensor.Dense) ([]float32, int, int, error) {
	if t == nil {
		return nil, 0, 0, errors.New("nil image tensor")
	}
	shape := t.Shape()
	if len(shape) != 3 {
		return nil, 0, 0, fmt.Errorf("expected CHW tensor, got shape %v", shape)
	}
	channels, rows, cols := shape[0], shape[1], shape[2]

	data, ok := t.Data().([]float32)
	if !ok {
		return nil, 0, 0, fmt.Errorf("expected float32 tensor, got %T", t.Data())
	}

	plane := rows * cols
	gray := make([]float32, plane)
	for c := 0; c < channels; c++ {
		for i := 0; i < plane; i++ {
			gray[i] += data[c*plane+i]
		}
	}
	for i := range gray {
		gray[i] /= float32(channels)
	}
	return gray, rows, cols, nil
}

package dataset

import (
	"errors"
	"image"

	"gocv.io/x/gocv"
	"gorgonia.org/tensor"

	"anombench/internal/seed"
)

var (
	imagenetMean = [3]float32{0.485, 0.456, 0.406}
	imagenetStd  = [3]float32{0.229, 0.224, 0.225}
)

type transform struct {
	resize  int
	crop    int
	augment bool
	mean    [3]float32
	std     [3]float32
}

// loadImage decodes, resizes, center-crops and normalizes one image into a
// CHW float32 tensor in RGB channel order.
func (t transform) loadImage(path string) (*tensor.Dense, error) {
	mat := gocv.IMRead(path, gocv.IMReadColor)
	if mat.Empty() {
		return nil, errors.New("decode failed or file missing")
	}
	defer mat.Close()

	resized := gocv.NewMat()
	defer resized.Close()
	gocv.Resize(mat, &resized, image.Pt(t.resize, t.resize), 0, 0, gocv.InterpolationArea)

	cropped := centerCrop(resized, t.crop)
	defer cropped.Close()

	if t.augment {
		t.randomFlip(&cropped)
	}

	return matToCHW(cropped, t.mean, t.std), nil
}

// loadMask decodes a ground-truth mask into a 1HW float32 tensor in {0, 1}.
// Masks are resized with nearest-neighbor interpolation so labels stay binary.
func (t transform) loadMask(path string) (*tensor.Dense, error) {
	mat := gocv.IMRead(path, gocv.IMReadGrayScale)
	if mat.Empty() {
		return nil, errors.New("decode failed or file missing")
	}
	defer mat.Close()

	resized := gocv.NewMat()
	defer resized.Close()
	gocv.Resize(mat, &resized, image.Pt(t.resize, t.resize), 0, 0, gocv.InterpolationNearestNeighbor)

	cropped := centerCrop(resized, t.crop)
	defer cropped.Close()

	rows, cols := cropped.Rows(), cropped.Cols()
	data := make([]float32, rows*cols)
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			if cropped.GetUCharAt(y, x) > 127 {
				data[y*cols+x] = 1
			}
		}
	}
	return tensor.New(tensor.WithShape(1, rows, cols), tensor.WithBacking(data)), nil
}

func (t transform) randomFlip(mat *gocv.Mat) {
	if seed.Float64() < 0.5 {
		flipped := gocv.NewMat()
		gocv.Flip(*mat, &flipped, 1)
		mat.Close()
		*mat = flipped
	}
	if seed.Float64() < 0.5 {
		flipped := gocv.NewMat()
		gocv.Flip(*mat, &flipped, 0)
		mat.Close()
		*mat = flipped
	}
}

func centerCrop(mat gocv.Mat, edge int) gocv.Mat {
	rows, cols := mat.Rows(), mat.Cols()
	if edge >= rows && edge >= cols {
		return mat.Clone()
	}
	x0 := (cols - edge) / 2
	y0 := (rows - edge) / 2
	region := mat.Region(image.Rect(x0, y0, x0+edge, y0+edge))
	defer region.Close()
	return region.Clone()
}

// matToCHW converts a BGR byte Mat to a normalized RGB CHW tensor.
func matToCHW(mat gocv.Mat, mean, std [3]float32) *tensor.Dense {
	rows, cols := mat.Rows(), mat.Cols()
	plane := rows * cols
	data := make([]float32, 3*plane)

	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			px := mat.GetVecbAt(y, x)
			idx := y*cols + x
			data[idx] = (float32(px[2])/255 - mean[0]) / std[0]
			data[plane+idx] = (float32(px[1])/255 - mean[1]) / std[1]
			data[2*plane+idx] = (float32(px[0])/255 - mean[2]) / std[2]
		}
	}
	return tensor.New(tensor.WithShape(3, rows, cols), tensor.WithBacking(data))
}

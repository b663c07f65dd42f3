// Package render writes side-by-side diagnostic figures for evaluated
// samples: reconstructed image, ground-truth mask and predicted anomaly map.
package render

import (
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gocv.io/x/gocv"
	"gorgonia.org/tensor"

	"anombench/internal/apperr"
)

const (
	defaultPathDepth = 4
	defaultPanelSize = 256
)

// Options describes one rendering batch. ImagePaths and Segmentations are
// parallel; MaskPaths and Scores, when present, must match their length. An
// empty string in MaskPaths marks a sample without a ground-truth mask; it is
// rendered as an all-zero panel.
type Options struct {
	OutDir        string
	ImagePaths    []string
	Segmentations []*tensor.Dense
	Scores        []float64
	MaskPaths     []string
	Image         Reconstructor
	Mask          Reconstructor
	PathDepth     int
	PanelSize     int
}

// Segmentations renders one figure per sample under opts.OutDir, named by the
// underscore-joined last PathDepth segments of the image path. Samples whose
// paths share that suffix overwrite each other; output is run-scoped, so that
// is accepted. A sample that fails to render is logged and skipped, the batch
// continues.
func Segmentations(opts Options) error {
	if len(opts.Segmentations) != len(opts.ImagePaths) {
		return apperr.NewShapeMismatch("segmentations vs images", len(opts.ImagePaths), len(opts.Segmentations))
	}
	if opts.MaskPaths != nil && len(opts.MaskPaths) != len(opts.ImagePaths) {
		return apperr.NewShapeMismatch("mask paths vs images", len(opts.ImagePaths), len(opts.MaskPaths))
	}
	if opts.Scores != nil && len(opts.Scores) != len(opts.ImagePaths) {
		return apperr.NewShapeMismatch("anomaly scores vs images", len(opts.ImagePaths), len(opts.Scores))
	}

	if opts.PathDepth <= 0 {
		opts.PathDepth = defaultPathDepth
	}
	if opts.PanelSize <= 0 {
		opts.PanelSize = defaultPanelSize
	}
	if opts.Image == nil {
		opts.Image = Identity{}
	}
	if opts.Mask == nil {
		opts.Mask = Identity{}
	}

	if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	for i, imagePath := range opts.ImagePaths {
		if err := renderOne(opts, i); err != nil {
			slog.Warn("skipping sample, render failed", "image", imagePath, "error", err)
		}
	}
	return nil
}

func renderOne(opts Options, i int) error {
	panels := make([]gocv.Mat, 0, 3)
	defer func() {
		for _, p := range panels {
			p.Close()
		}
	}()

	img, err := imagePanel(opts.ImagePaths[i], opts.Image, opts.PanelSize)
	if err != nil {
		return fmt.Errorf("image panel: %w", err)
	}
	panels = append(panels, img)

	if opts.MaskPaths != nil {
		mask, err := maskPanel(opts.MaskPaths[i], opts.Mask, opts.PanelSize)
		if err != nil {
			return fmt.Errorf("mask panel: %w", err)
		}
		panels = append(panels, mask)
	}

	seg, err := segmentationPanel(opts.Segmentations[i], opts.PanelSize)
	if err != nil {
		return fmt.Errorf("segmentation panel: %w", err)
	}
	panels = append(panels, seg)

	figure := panels[0].Clone()
	defer func() { figure.Close() }()
	for _, p := range panels[1:] {
		combined := gocv.NewMat()
		gocv.Hconcat(figure, p, &combined)
		figure.Close()
		figure = combined
	}

	savePath := filepath.Join(opts.OutDir, saveName(opts.ImagePaths[i], opts.PathDepth))
	if ok := gocv.IMWrite(savePath, figure); !ok {
		return fmt.Errorf("write figure %s", savePath)
	}
	return nil
}

func imagePanel(path string, recon Reconstructor, size int) (gocv.Mat, error) {
	mat := gocv.IMRead(path, gocv.IMReadColor)
	if mat.Empty() {
		return gocv.Mat{}, fmt.Errorf("decode %s", path)
	}
	defer mat.Close()

	t, err := recon.Apply(matToUnitCHW(mat))
	if err != nil {
		return gocv.Mat{}, err
	}
	return chwToPanel(t, size)
}

// maskPanel renders the ground-truth mask, or an all-zero panel when the
// sample has no mask path.
func maskPanel(path string, recon Reconstructor, size int) (gocv.Mat, error) {
	if path == "" {
		return gocv.Zeros(size, size, gocv.MatTypeCV8UC3), nil
	}

	mat := gocv.IMRead(path, gocv.IMReadColor)
	if mat.Empty() {
		return gocv.Mat{}, fmt.Errorf("decode %s", path)
	}
	defer mat.Close()

	t, err := recon.Apply(matToUnitCHW(mat))
	if err != nil {
		return gocv.Mat{}, err
	}
	return chwToPanel(t, size)
}

// segmentationPanel min-max normalizes the anomaly map and renders it through
// a jet colormap.
func segmentationPanel(seg *tensor.Dense, size int) (gocv.Mat, error) {
	data, rows, cols, err := flatten2D(seg)
	if err != nil {
		return gocv.Mat{}, err
	}

	lo, hi := data[0], data[0]
	for _, v := range data {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	span := hi - lo
	if span == 0 {
		span = 1
	}

	bytes := make([]byte, len(data))
	for i, v := range data {
		bytes[i] = byte((v - lo) / span * 255)
	}

	gray, err := gocv.NewMatFromBytes(rows, cols, gocv.MatTypeCV8UC1, bytes)
	if err != nil {
		return gocv.Mat{}, fmt.Errorf("segmentation mat: %w", err)
	}
	defer gray.Close()

	colored := gocv.NewMat()
	defer colored.Close()
	gocv.ApplyColorMap(gray, &colored, gocv.ColormapJet)

	resized := gocv.NewMat()
	gocv.Resize(colored, &resized, image.Pt(size, size), 0, 0, gocv.InterpolationLinear)
	return resized, nil
}

// flatten2D accepts (h,w) and (1,h,w) layouts so map tensors render the same
// regardless of source layout.
func flatten2D(t *tensor.Dense) ([]float32, int, int, error) {
	if t == nil {
		return nil, 0, 0, fmt.Errorf("nil segmentation map")
	}
	shape := t.Shape()
	var rows, cols int
	switch {
	case len(shape) == 2:
		rows, cols = shape[0], shape[1]
	case len(shape) == 3 && shape[0] == 1:
		rows, cols = shape[1], shape[2]
	default:
		return nil, 0, 0, fmt.Errorf("expected 2D scalar field, got shape %v", shape)
	}

	data, ok := t.Data().([]float32)
	if !ok {
		return nil, 0, 0, fmt.Errorf("expected float32 map, got %T", t.Data())
	}
	if len(data) == 0 {
		return nil, 0, 0, fmt.Errorf("empty segmentation map")
	}
	return data, rows, cols, nil
}

// chwToPanel converts a display-range CHW tensor back to a BGR Mat resized to
// the panel edge. Single-channel tensors are replicated across channels.
func chwToPanel(t *tensor.Dense, size int) (gocv.Mat, error) {
	shape := t.Shape()
	if len(shape) != 3 {
		return gocv.Mat{}, fmt.Errorf("expected CHW tensor, got shape %v", shape)
	}
	channels, rows, cols := shape[0], shape[1], shape[2]
	if channels != 1 && channels != 3 {
		return gocv.Mat{}, fmt.Errorf("expected 1 or 3 channels, got %d", channels)
	}

	data, ok := t.Data().([]float32)
	if !ok {
		return gocv.Mat{}, fmt.Errorf("expected float32 tensor, got %T", t.Data())
	}

	plane := rows * cols
	bytes := make([]byte, 3*plane)
	for i := 0; i < plane; i++ {
		r := clampByte(data[i])
		g, b := r, r
		if channels == 3 {
			g = clampByte(data[plane+i])
			b = clampByte(data[2*plane+i])
		}
		bytes[3*i] = b
		bytes[3*i+1] = g
		bytes[3*i+2] = r
	}

	mat, err := gocv.NewMatFromBytes(rows, cols, gocv.MatTypeCV8UC3, bytes)
	if err != nil {
		return gocv.Mat{}, fmt.Errorf("panel mat: %w", err)
	}
	defer mat.Close()

	resized := gocv.NewMat()
	gocv.Resize(mat, &resized, image.Pt(size, size), 0, 0, gocv.InterpolationLinear)
	return resized, nil
}

// matToUnitCHW converts a BGR byte Mat into a unit-range RGB CHW tensor.
func matToUnitCHW(mat gocv.Mat) *tensor.Dense {
	rows, cols := mat.Rows(), mat.Cols()
	plane := rows * cols
	data := make([]float32, 3*plane)
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			px := mat.GetVecbAt(y, x)
			idx := y*cols + x
			data[idx] = float32(px[2]) / 255
			data[plane+idx] = float32(px[1]) / 255
			data[2*plane+idx] = float32(px[0]) / 255
		}
	}
	return tensor.New(tensor.WithShape(3, rows, cols), tensor.WithBacking(data))
}

func clampByte(v float32) byte {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return byte(v)
}

// saveName joins the last depth path segments with underscores. The source
// extension is kept, so the figure format follows the input format.
func saveName(imagePath string, depth int) string {
	segments := strings.Split(filepath.ToSlash(imagePath), "/")
	if len(segments) > depth {
		segments = segments[len(segments)-depth:]
	}
	return strings.Join(segments, "_")
}

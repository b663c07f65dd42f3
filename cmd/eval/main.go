package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gorgonia.org/tensor"

	"anombench/internal/loader"
	"anombench/internal/metrics"
	"anombench/internal/render"
	"anombench/internal/results"
	"anombench/internal/runspec"
	"anombench/internal/scoring"
	"anombench/internal/seed"
	"anombench/internal/storage"
	"anombench/pkg/config/env"
)

// proFPRLimit is the false-positive-rate cutoff of the PRO integral.
const proFPRLimit = 0.3

func main() {
	cfg := parseFlags()
	env.LoadDotEnv()

	var spec *runspec.Spec
	var err error
	if cfg.SpecPath != "" {
		spec, err = runspec.LoadFromFile(cfg.SpecPath)
		if err != nil {
			slog.Error("Failed to load run spec", "path", cfg.SpecPath, "error", err)
			os.Exit(1)
		}
	} else {
		spec = cfg.toSpec()
		if len(spec.Subdatasets) == 0 {
			slog.Error("No subdatasets given, use --subdatasets or --spec")
			os.Exit(1)
		}
	}

	// Seed before anything stochastic runs; shuffling and augmentation draw
	// from the shared source.
	seed.Fix(spec.Seed)

	runDir, err := storage.CreateRunDir(
		spec.Output.Root, spec.Output.Project, spec.Output.Group, spec.Name,
		storage.Mode(spec.Output.Mode),
	)
	if err != nil {
		slog.Error("Failed to allocate run directory", "error", err)
		os.Exit(1)
	}
	slog.Info("Run directory allocated", "dir", runDir, "run", spec.Name)

	bundles, err := loader.BuildBundles(loader.FactoryConfig{
		Name:          spec.Name,
		DataRoot:      spec.DataRoot,
		Subdatasets:   spec.Subdatasets,
		TrainValSplit: spec.Loader.TrainValSplit,
		BatchSize:     spec.Loader.BatchSize,
		Resize:        spec.Loader.Resize,
		ImageSize:     spec.Loader.ImageSize,
		Workers:       spec.Loader.Workers,
		Augment:       spec.Loader.Augment,
	}, nil)
	if err != nil {
		slog.Error("Failed to build dataloaders", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	scorer := scoring.NewBlur()

	var rows [][]float64
	var names []string
	for _, b := range bundles {
		row, err := evalBundle(ctx, cfg, runDir, b, scorer)
		if err != nil {
			slog.Error("Bundle evaluation failed", "subdataset", b.Subdataset, "error", err)
			os.Exit(1)
		}
		rows = append(rows, row)
		names = append(names, b.Subdataset)
	}

	means, err := results.Store(runDir, rows, results.WithRowNames(names))
	if err != nil {
		slog.Error("Failed to store results", "error", err)
		os.Exit(1)
	}
	results.WriteTable(os.Stdout, rows, names)

	slog.Info("Run complete",
		"dir", runDir,
		"datasets", len(rows),
		"mean_instance_auroc", means["mean_"+results.Columns[0]],
	)
}

func evalBundle(ctx context.Context, cfg cliConfig, runDir string, b loader.Bundle, scorer scoring.Scorer) ([]float64, error) {
	slog.Info("Evaluating subdataset", "loader", b.Train.Name, "test_batches", b.Test.Len())

	if fitter, ok := scorer.(scoring.Fitter); ok {
		if err := fitter.Fit(ctx, b.Train); err != nil {
			return nil, fmt.Errorf("fit scorer: %w", err)
		}
	}

	var (
		imagePaths []string
		maskPaths  []string
		segs       []*tensor.Dense
		scores     []float64
		anomalous  []bool
		pixelMaps  [][]float64
		pixelMasks [][]bool
		width      int
	)

	for res := range b.Test.Batches(ctx) {
		if res.Err != nil {
			slog.Warn("Skipping failed batch", "subdataset", b.Subdataset, "error", res.Err)
			continue
		}
		for _, item := range res.Batch.Items {
			seg, score, err := scorer.Score(ctx, item)
			if err != nil {
				slog.Warn("Skipping sample, scoring failed", "image", item.Sample.ImagePath, "error", err)
				continue
			}

			shape := seg.Shape()
			width = shape[len(shape)-1]

			imagePaths = append(imagePaths, item.Sample.ImagePath)
			maskPaths = append(maskPaths, item.Sample.MaskPath)
			segs = append(segs, seg)
			scores = append(scores, score)
			anomalous = append(anomalous, item.Sample.Anomalous)
			pixelMaps = append(pixelMaps, toFloat64(seg))
			pixelMasks = append(pixelMasks, maskBits(item.Mask, seg))
		}
	}

	if len(scores) == 0 {
		return nil, fmt.Errorf("no samples scored for %q", b.Subdataset)
	}

	if cfg.Render {
		if err := renderBundle(cfg, runDir, b, imagePaths, maskPaths, segs, scores); err != nil {
			return nil, err
		}
	}

	return metricsRow(scores, anomalous, pixelMaps, pixelMasks, width), nil
}

func renderBundle(cfg cliConfig, runDir string, b loader.Bundle, imagePaths, maskPaths []string, segs []*tensor.Dense, scores []float64) error {
	maskRecon := render.Denormalize{Std: [3]float32{1, 1, 1}}

	var imageRecon render.Reconstructor = maskRecon
	if stats, ok := b.Test.Dataset().(interface {
		Mean() [3]float32
		Std() [3]float32
	}); ok {
		// Mirror the model's input pipeline and invert it, so figures show
		// exactly what the scorer saw.
		imageRecon = render.Chain{
			render.Normalize{Mean: stats.Mean(), Std: stats.Std()},
			render.Denormalize{Mean: stats.Mean(), Std: stats.Std()},
		}
	}

	err := render.Segmentations(render.Options{
		OutDir:        filepath.Join(runDir, "segmentation_images", b.Subdataset),
		ImagePaths:    imagePaths,
		Segmentations: segs,
		Scores:        scores,
		MaskPaths:     maskPaths,
		Image:         imageRecon,
		Mask:          maskRecon,
		PathDepth:     cfg.PathDepth,
	})
	if err != nil {
		return fmt.Errorf("render segmentations: %w", err)
	}
	return nil
}

func metricsRow(scores []float64, anomalous []bool, pixelMaps [][]float64, pixelMasks [][]bool, width int) []float64 {
	var anomalyMaps [][]float64
	var anomalyMasks [][]bool
	for i, a := range anomalous {
		if a {
			anomalyMaps = append(anomalyMaps, pixelMaps[i])
			anomalyMasks = append(anomalyMasks, pixelMasks[i])
		}
	}

	return []float64{
		metrics.AUROC(scores, anomalous),
		metrics.PixelAUROC(pixelMaps, pixelMasks),
		metrics.PRO(pixelMaps, pixelMasks, width, proFPRLimit),
		metrics.PixelAUROC(anomalyMaps, anomalyMasks),
		metrics.PRO(anomalyMaps, anomalyMasks, width, proFPRLimit),
	}
}

func toFloat64(t *tensor.Dense) []float64 {
	data := t.Data().([]float32)
	out := make([]float64, len(data))
	for i, v := range data {
		out[i] = float64(v)
	}
	return out
}

// maskBits flattens the ground-truth mask to per-pixel labels; samples
// without a mask are all-negative.
func maskBits(mask, seg *tensor.Dense) []bool {
	if mask == nil {
		return make([]bool, seg.Shape().TotalSize())
	}
	data := mask.Data().([]float32)
	out := make([]bool, len(data))
	for i, v := range data {
		out[i] = v > 0.5
	}
	return out
}

package dataset

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const goodLabel = "good"

var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".bmp":  true,
	".tiff": true,
	".tif":  true,
}

// MVTecConfig describes one subdataset view over an MVTec-AD style tree:
// source/classname/train/good, source/classname/test/<defect> and
// source/classname/ground_truth/<defect>.
type MVTecConfig struct {
	Source    string
	Classname string
	Split     Split
	Resize    int
	// ImageSize is the center-crop edge applied after resizing. Zero means
	// no crop beyond Resize.
	ImageSize int
	Augment   bool
	// TrainValSplit is the fraction of good samples retained for training;
	// the remainder is reserved for validation. Zero means keep all.
	TrainValSplit float64
}

// MVTec enumerates an on-disk MVTec-AD subdataset.
type MVTec struct {
	cfg     MVTecConfig
	samples []Sample
	tf      transform
}

func NewMVTec(cfg MVTecConfig) (*MVTec, error) {
	crop := cfg.ImageSize
	if crop == 0 || crop > cfg.Resize {
		crop = cfg.Resize
	}

	m := &MVTec{
		cfg: cfg,
		tf: transform{
			resize:  cfg.Resize,
			crop:    crop,
			augment: cfg.Augment && cfg.Split == SplitTrain,
			mean:    imagenetMean,
			std:     imagenetStd,
		},
	}

	var err error
	switch cfg.Split {
	case SplitTrain:
		m.samples, err = enumerateTrain(cfg)
	case SplitTest:
		m.samples, err = enumerateTest(cfg)
	default:
		err = fmt.Errorf("unknown split %d", cfg.Split)
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (m *MVTec) Len() int            { return len(m.samples) }
func (m *MVTec) Sample(i int) Sample { return m.samples[i] }

func (m *MVTec) Load(i int) (Item, error) {
	s := m.samples[i]

	img, err := m.tf.loadImage(s.ImagePath)
	if err != nil {
		return Item{}, fmt.Errorf("load image %s: %w", s.ImagePath, err)
	}

	item := Item{Sample: s, Image: img}
	if s.MaskPath != "" {
		mask, err := m.tf.loadMask(s.MaskPath)
		if err != nil {
			return Item{}, fmt.Errorf("load mask %s: %w", s.MaskPath, err)
		}
		item.Mask = mask
	}
	return item, nil
}

// Mean returns the per-channel normalization mean applied by Load.
func (m *MVTec) Mean() [3]float32 { return m.tf.mean }

// Std returns the per-channel normalization std applied by Load.
func (m *MVTec) Std() [3]float32 { return m.tf.std }

func enumerateTrain(cfg MVTecConfig) ([]Sample, error) {
	dir := filepath.Join(cfg.Source, cfg.Classname, "train", goodLabel)
	paths, err := listImages(dir)
	if err != nil {
		return nil, fmt.Errorf("enumerate train split for %q: %w", cfg.Classname, err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("subdataset %q has no training images", cfg.Classname)
	}

	if cfg.TrainValSplit > 0 && cfg.TrainValSplit < 1 {
		keep := int(float64(len(paths)) * cfg.TrainValSplit)
		paths = paths[:keep]
	}

	samples := make([]Sample, 0, len(paths))
	for _, p := range paths {
		samples = append(samples, Sample{ImagePath: p, Label: goodLabel})
	}
	return samples, nil
}

func enumerateTest(cfg MVTecConfig) ([]Sample, error) {
	testDir := filepath.Join(cfg.Source, cfg.Classname, "test")
	entries, err := os.ReadDir(testDir)
	if err != nil {
		return nil, fmt.Errorf("enumerate test split for %q: %w", cfg.Classname, err)
	}

	var samples []Sample
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		label := entry.Name()
		paths, err := listImages(filepath.Join(testDir, label))
		if err != nil {
			return nil, fmt.Errorf("enumerate test label %q: %w", label, err)
		}

		for _, p := range paths {
			s := Sample{ImagePath: p, Label: label, Anomalous: label != goodLabel}
			if s.Anomalous {
				s.MaskPath, err = maskFor(cfg, label, p)
				if err != nil {
					return nil, err
				}
			}
			samples = append(samples, s)
		}
	}

	if len(samples) == 0 {
		return nil, fmt.Errorf("subdataset %q has no test images", cfg.Classname)
	}
	return samples, nil
}

func maskFor(cfg MVTecConfig, label, imagePath string) (string, error) {
	stem := strings.TrimSuffix(filepath.Base(imagePath), filepath.Ext(imagePath))
	mask := filepath.Join(cfg.Source, cfg.Classname, "ground_truth", label, stem+"_mask.png")
	if _, err := os.Stat(mask); err != nil {
		return "", fmt.Errorf("ground-truth mask for %s: %w", imagePath, err)
	}
	return mask, nil
}

func listImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if imageExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	return paths, nil
}

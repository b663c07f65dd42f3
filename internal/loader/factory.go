package loader

import (
	"anombench/internal/dataset"
)

// OpenFunc constructs the dataset view for one subdataset and split.
type OpenFunc func(subdataset string, split dataset.Split) (dataset.Dataset, error)

// FactoryConfig describes a full set of per-subdataset loader bundles.
type FactoryConfig struct {
	Name          string
	DataRoot      string
	Subdatasets   []string
	TrainValSplit float64
	BatchSize     int
	Resize        int
	ImageSize     int
	Workers       int
	Augment       bool
}

// Bundle pairs the train and test loaders of one subdataset.
type Bundle struct {
	Subdataset string
	Train      *Loader
	Test       *Loader
}

// BuildBundles builds one bundle per subdataset, in input order. Train
// loaders are shuffled and named {name}_{subdataset}; test loaders are never
// shuffled. No dataset instance is shared between bundles. Dataset
// construction errors propagate unmodified.
func BuildBundles(cfg FactoryConfig, open OpenFunc) ([]Bundle, error) {
	if open == nil {
		open = MVTecOpener(cfg)
	}

	bundles := make([]Bundle, 0, len(cfg.Subdatasets))
	for _, sub := range cfg.Subdatasets {
		trainDS, err := open(sub, dataset.SplitTrain)
		if err != nil {
			return nil, err
		}
		testDS, err := open(sub, dataset.SplitTest)
		if err != nil {
			return nil, err
		}

		train := New(trainDS, Config{
			Name:      cfg.Name + "_" + sub,
			BatchSize: cfg.BatchSize,
			Shuffle:   true,
			Workers:   cfg.Workers,
		})
		test := New(testDS, Config{
			BatchSize: cfg.BatchSize,
			Shuffle:   false,
			Workers:   cfg.Workers,
		})

		bundles = append(bundles, Bundle{Subdataset: sub, Train: train, Test: test})
	}
	return bundles, nil
}

// MVTecOpener opens MVTec-AD subdataset views under cfg.DataRoot. The train
// view honors augmentation and the train/val split; the test view is always
// unaugmented and center-cropped to ImageSize.
func MVTecOpener(cfg FactoryConfig) OpenFunc {
	return func(sub string, split dataset.Split) (dataset.Dataset, error) {
		mc := dataset.MVTecConfig{
			Source:        cfg.DataRoot,
			Classname:     sub,
			Split:         split,
			Resize:        cfg.Resize,
			TrainValSplit: cfg.TrainValSplit,
		}
		switch split {
		case dataset.SplitTrain:
			mc.Augment = cfg.Augment
		case dataset.SplitTest:
			mc.ImageSize = cfg.ImageSize
		}
		return dataset.NewMVTec(mc)
	}
}

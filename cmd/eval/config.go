package main

import (
	"flag"
	"strings"

	"github.com/google/uuid"

	"anombench/internal/runspec"
	"anombench/pkg/config/env"
)

type cliConfig struct {
	SpecPath      string
	Name          string
	DataRoot      string
	Subdatasets   string
	BatchSize     int
	Resize        int
	ImageSize     int
	Workers       int
	TrainValSplit float64
	Augment       bool
	Seed          int64
	OutRoot       string
	Project       string
	Group         string
	Mode          string
	Render        bool
	PathDepth     int
}

func parseFlags() cliConfig {
	cfg := cliConfig{}

	flag.StringVar(&cfg.SpecPath, "spec", "", "Path to run spec YAML (overrides the dataset/loader flags)")
	flag.StringVar(&cfg.Name, "name", "", "Run name (default: random run-<id>)")
	flag.StringVar(&cfg.DataRoot, "data-root", env.GetOr("ANOMBENCH_DATA_ROOT", "data/mvtec"), "Dataset root directory")
	flag.StringVar(&cfg.Subdatasets, "subdatasets", "", "Subdataset names, comma-separated")
	flag.IntVar(&cfg.BatchSize, "batch-size", 32, "Batch size for both splits")
	flag.IntVar(&cfg.Resize, "resize", 256, "Resize edge applied to every sample")
	flag.IntVar(&cfg.ImageSize, "image-size", 224, "Center-crop edge for the test split")
	flag.IntVar(&cfg.Workers, "workers", 2, "Loader workers per split (0 = synchronous)")
	flag.Float64Var(&cfg.TrainValSplit, "train-val-split", 1, "Fraction of nominal samples kept for training")
	flag.BoolVar(&cfg.Augment, "augment", true, "Augment the train split")
	flag.Int64Var(&cfg.Seed, "seed", 0, "Seed for every random source")
	flag.StringVar(&cfg.OutRoot, "out-root", "results", "Root output directory")
	flag.StringVar(&cfg.Project, "project", "anombench", "Project folder under the output root")
	flag.StringVar(&cfg.Group, "group", "experiments", "Group folder under the project")
	flag.StringVar(&cfg.Mode, "mode", "iterate", "Run dir mode: iterate or overwrite")
	flag.BoolVar(&cfg.Render, "render", true, "Write segmentation figures")
	flag.IntVar(&cfg.PathDepth, "path-depth", 4, "Path segments used for figure names")

	flag.Parse()

	if cfg.Name == "" {
		cfg.Name = "run-" + uuid.NewString()[:8]
	}
	return cfg
}

// toSpec builds a run spec from the flags for the quick, spec-less mode.
func (c cliConfig) toSpec() *runspec.Spec {
	var subs []string
	for _, s := range strings.Split(c.Subdatasets, ",") {
		if s = strings.TrimSpace(s); s != "" {
			subs = append(subs, s)
		}
	}

	return &runspec.Spec{
		Name:        c.Name,
		DataRoot:    c.DataRoot,
		Subdatasets: subs,
		Seed:        c.Seed,
		Loader: runspec.Loader{
			BatchSize:     c.BatchSize,
			Resize:        c.Resize,
			ImageSize:     c.ImageSize,
			Workers:       c.Workers,
			TrainValSplit: c.TrainValSplit,
			Augment:       c.Augment,
		},
		Output: runspec.Output{
			Root:    c.OutRoot,
			Project: c.Project,
			Group:   c.Group,
			Mode:    c.Mode,
		},
	}
}

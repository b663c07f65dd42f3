package runspec

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

func LoadFromFile(path string) (*Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read run spec: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Spec, error) {
	var s Spec
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse run spec YAML: %w", err)
	}

	if s.DataRoot == "" {
		return nil, fmt.Errorf("run spec has no data_root")
	}
	if len(s.Subdatasets) == 0 {
		return nil, fmt.Errorf("run spec has no subdatasets")
	}
	for i, sub := range s.Subdatasets {
		if sub == "" {
			return nil, fmt.Errorf("subdataset at index %d is empty", i)
		}
	}

	applyDefaults(&s)
	return &s, nil
}

func applyDefaults(s *Spec) {
	if s.Name == "" {
		s.Name = "run"
	}
	if s.Loader.BatchSize <= 0 {
		s.Loader.BatchSize = 32
	}
	if s.Loader.Resize <= 0 {
		s.Loader.Resize = 256
	}
	if s.Loader.ImageSize <= 0 {
		s.Loader.ImageSize = 224
	}
	if s.Loader.Workers < 0 {
		s.Loader.Workers = 0
	}
	if s.Loader.TrainValSplit <= 0 || s.Loader.TrainValSplit > 1 {
		s.Loader.TrainValSplit = 1
	}
	if s.Output.Root == "" {
		s.Output.Root = "results"
	}
	if s.Output.Project == "" {
		s.Output.Project = "anombench"
	}
	if s.Output.Group == "" {
		s.Output.Group = "experiments"
	}
	if s.Output.Mode == "" {
		s.Output.Mode = "iterate"
	}
}

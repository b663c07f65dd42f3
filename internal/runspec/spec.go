// Package runspec loads YAML run descriptions for the eval binary.
package runspec

// Spec is one evaluation run.
type Spec struct {
	Name        string   `yaml:"name"`
	DataRoot    string   `yaml:"data_root"`
	Subdatasets []string `yaml:"subdatasets"`
	Seed        int64    `yaml:"seed"`
	Loader      Loader   `yaml:"loader"`
	Output      Output   `yaml:"output"`
}

// Loader holds the dataloader parameters of a run.
type Loader struct {
	BatchSize     int     `yaml:"batch_size"`
	Resize        int     `yaml:"resize"`
	ImageSize     int     `yaml:"image_size"`
	Workers       int     `yaml:"workers"`
	TrainValSplit float64 `yaml:"train_val_split"`
	Augment       bool    `yaml:"augment"`
}

// Output holds the run-directory layout parameters.
type Output struct {
	Root    string `yaml:"root"`
	Project string `yaml:"project"`
	Group   string `yaml:"group"`
	Mode    string `yaml:"mode"`
}

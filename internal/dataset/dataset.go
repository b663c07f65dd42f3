// Package dataset enumerates labeled industrial-inspection images and turns
// them into normalized tensors.
package dataset

import "gorgonia.org/tensor"

// Split selects the train or test partition of a subdataset.
type Split int

const (
	SplitTrain Split = iota
	SplitTest
)

func (s Split) String() string {
	switch s {
	case SplitTrain:
		return "train"
	case SplitTest:
		return "test"
	default:
		return "unknown"
	}
}

// Sample is one labeled image record. MaskPath is empty when no ground-truth
// mask exists for the sample (all non-anomalous samples).
type Sample struct {
	ImagePath string
	MaskPath  string
	Label     string
	Anomalous bool
}

// Item is a loaded sample: CHW float32 image tensor, normalized with the
// dataset statistics, plus the binary mask tensor (nil without a mask).
type Item struct {
	Sample Sample
	Image  *tensor.Dense
	Mask   *tensor.Dense
}

// Dataset is an indexable collection of samples. Implementations must be safe
// for concurrent Load calls; loaders fan Load out across workers.
type Dataset interface {
	Len() int
	Sample(i int) Sample
	Load(i int) (Item, error)
}

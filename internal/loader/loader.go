// Package loader batches datasets into named, optionally shuffled iterables
// backed by a bounded worker pool.
package loader

import (
	"context"
	"fmt"

	"anombench/internal/dataset"
	"anombench/internal/seed"
)

// Batch is one group of loaded samples.
type Batch struct {
	Items []dataset.Item
}

// ImagePaths returns the raw file path of every sample in the batch.
func (b Batch) ImagePaths() []string {
	paths := make([]string, len(b.Items))
	for i, item := range b.Items {
		paths[i] = item.Sample.ImagePath
	}
	return paths
}

// MaskPaths returns the mask path per sample, empty where no mask exists.
func (b Batch) MaskPaths() []string {
	paths := make([]string, len(b.Items))
	for i, item := range b.Items {
		paths[i] = item.Sample.MaskPath
	}
	return paths
}

// Anomalous returns the per-sample anomaly label.
func (b Batch) Anomalous() []bool {
	labels := make([]bool, len(b.Items))
	for i, item := range b.Items {
		labels[i] = item.Sample.Anomalous
	}
	return labels
}

type BatchResult struct {
	Batch Batch
	Err   error
}

// Config describes one loader. Train loaders are always shuffled, test
// loaders never are; the factory enforces that, Config just records it.
type Config struct {
	Name      string
	BatchSize int
	Shuffle   bool
	Workers   int
}

// Loader iterates a dataset in batches. Each call to Batches starts a fresh
// pass; a shuffled loader draws a new permutation from the shared seed source
// per pass, an unshuffled one always yields dataset order.
type Loader struct {
	Name string

	ds        dataset.Dataset
	batchSize int
	shuffle   bool
	workers   int
}

func New(ds dataset.Dataset, cfg Config) *Loader {
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 1
	}
	return &Loader{
		Name:      cfg.Name,
		ds:        ds,
		batchSize: batchSize,
		shuffle:   cfg.Shuffle,
		workers:   cfg.Workers,
	}
}

// Dataset returns the underlying dataset view.
func (l *Loader) Dataset() dataset.Dataset { return l.ds }

// Len returns the number of batches in one pass.
func (l *Loader) Len() int {
	n := l.ds.Len()
	return (n + l.batchSize - 1) / l.batchSize
}

// Batches streams one full pass over the dataset. With workers > 0 batches
// are loaded concurrently but emitted in pass order, with at most two batches
// prefetched per worker. The channel closes after the last batch or once ctx
// is cancelled. A failed batch is reported on the channel and the pass
// continues.
func (l *Loader) Batches(ctx context.Context) <-chan BatchResult {
	out := make(chan BatchResult)
	batches := l.plan()

	if l.workers <= 0 {
		go func() {
			defer close(out)
			for _, idxs := range batches {
				select {
				case out <- l.load(idxs):
				case <-ctx.Done():
					return
				}
			}
		}()
		return out
	}

	type job struct {
		idxs []int
		res  chan BatchResult
	}

	jobs := make(chan job)
	// The queue carries per-batch result slots in pass order; its capacity
	// bounds how far workers may run ahead of the consumer.
	queue := make(chan chan BatchResult, 2*l.workers)

	for w := 0; w < l.workers; w++ {
		go func() {
			for j := range jobs {
				j.res <- l.load(j.idxs)
			}
		}()
	}

	go func() {
		defer close(jobs)
		defer close(queue)
		for _, idxs := range batches {
			res := make(chan BatchResult, 1)
			select {
			case jobs <- job{idxs: idxs, res: res}:
			case <-ctx.Done():
				return
			}
			select {
			case queue <- res:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		defer close(out)
		for res := range queue {
			r := <-res
			select {
			case out <- r:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}

func (l *Loader) plan() [][]int {
	n := l.ds.Len()
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	if l.shuffle {
		seed.Shuffle(n, func(i, j int) {
			order[i], order[j] = order[j], order[i]
		})
	}

	var batches [][]int
	for start := 0; start < n; start += l.batchSize {
		end := min(start+l.batchSize, n)
		batches = append(batches, order[start:end])
	}
	return batches
}

func (l *Loader) load(idxs []int) BatchResult {
	items := make([]dataset.Item, 0, len(idxs))
	for _, idx := range idxs {
		item, err := l.ds.Load(idx)
		if err != nil {
			return BatchResult{Err: fmt.Errorf("load sample %d: %w", idx, err)}
		}
		items = append(items, item)
	}
	return BatchResult{Batch: Batch{Items: items}}
}

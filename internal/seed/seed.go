// Package seed owns the process-wide random source consumed by loader
// shuffling and train-time augmentation. Fix must be called before any
// stochastic consumer draws a value; values drawn earlier are unaffected.
package seed

import (
	"math/rand"
	"sync"
	"time"
)

var (
	mu  sync.Mutex
	src = rand.New(rand.NewSource(time.Now().UnixNano()))
)

// Fix resets the shared source to a deterministic state.
func Fix(seed int64) {
	mu.Lock()
	defer mu.Unlock()
	src = rand.New(rand.NewSource(seed))
}

// Int63 draws from the shared source.
func Int63() int64 {
	mu.Lock()
	defer mu.Unlock()
	return src.Int63()
}

// Float64 draws from the shared source.
func Float64() float64 {
	mu.Lock()
	defer mu.Unlock()
	return src.Float64()
}

// Shuffle permutes n elements using the shared source.
func Shuffle(n int, swap func(i, j int)) {
	mu.Lock()
	defer mu.Unlock()
	src.Shuffle(n, swap)
}

// Perm returns a permutation of [0, n) drawn from the shared source.
func Perm(n int) []int {
	mu.Lock()
	defer mu.Unlock()
	return src.Perm(n)
}

package metrics

import (
	"math"
	"sort"
)

const proThresholdSteps = 200

// Region is one connected component of a ground-truth mask, as flat pixel
// indices into the row-major mask.
type Region []int

// Regions labels the 4-connected components of a row-major binary mask.
func Regions(mask []bool, width int) []Region {
	if width <= 0 || len(mask) == 0 {
		return nil
	}
	height := len(mask) / width

	visited := make([]bool, len(mask))
	var regions []Region
	var stack []int

	for start := range mask {
		if !mask[start] || visited[start] {
			continue
		}

		var region Region
		stack = append(stack[:0], start)
		visited[start] = true
		for len(stack) > 0 {
			idx := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			region = append(region, idx)

			y, x := idx/width, idx%width
			for _, n := range [4]int{idx - width, idx + width, idx - 1, idx + 1} {
				if n < 0 || n >= len(mask) || !mask[n] || visited[n] {
					continue
				}
				ny, nx := n/width, n%width
				if (ny != y && nx != x) || ny >= height {
					continue
				}
				visited[n] = true
				stack = append(stack, n)
			}
		}
		regions = append(regions, region)
	}
	return regions
}

// PRO computes the per-region overlap score: the mean fraction of each
// ground-truth region covered by the thresholded anomaly maps, averaged over
// a threshold sweep and integrated over the false-positive-rate axis up to
// fprLimit, normalized to that limit. Maps and masks are parallel per-image
// row-major slices of identical geometry. Returns NaN when no anomalous
// region exists.
func PRO(maps [][]float64, masks [][]bool, width int, fprLimit float64) float64 {
	if len(maps) == 0 || len(maps) != len(masks) || fprLimit <= 0 {
		return math.NaN()
	}

	type image struct {
		scores  []float64
		regions []Region
	}

	var images []image
	var all []float64
	var negatives int
	for i := range maps {
		images = append(images, image{
			scores:  maps[i],
			regions: Regions(masks[i], width),
		})
		all = append(all, maps[i]...)
		for _, m := range masks[i] {
			if !m {
				negatives++
			}
		}
	}

	var totalRegions int
	for _, img := range images {
		totalRegions += len(img.regions)
	}
	if totalRegions == 0 || negatives == 0 {
		return math.NaN()
	}

	sort.Float64s(all)

	// Sweep thresholds from the highest score down, tracing the (FPR, PRO)
	// curve from (0, 0) toward (1, 1).
	type point struct{ fpr, pro float64 }
	points := []point{{0, 0}}

	steps := max(2, min(proThresholdSteps, len(all)))
	for s := 0; s < steps; s++ {
		q := float64(s) / float64(steps-1)
		threshold := all[int(float64(len(all)-1)*(1-q))]

		var falsePositives int
		var overlapSum float64
		for i, img := range images {
			for _, region := range img.regions {
				var hit int
				for _, idx := range region {
					if img.scores[idx] >= threshold {
						hit++
					}
				}
				overlapSum += float64(hit) / float64(len(region))
			}
			for idx, m := range masks[i] {
				if !m && img.scores[idx] >= threshold {
					falsePositives++
				}
			}
		}

		points = append(points, point{
			fpr: float64(falsePositives) / float64(negatives),
			pro: overlapSum / float64(totalRegions),
		})
	}

	sort.Slice(points, func(i, j int) bool {
		if points[i].fpr != points[j].fpr {
			return points[i].fpr < points[j].fpr
		}
		return points[i].pro < points[j].pro
	})

	// Trapezoidal integral over [0, fprLimit], normalized by the limit.
	var area float64
	for i := 1; i < len(points); i++ {
		a, b := points[i-1], points[i]
		if a.fpr >= fprLimit {
			break
		}
		right := b
		if b.fpr > fprLimit {
			// Clip the last segment at the limit.
			w := (fprLimit - a.fpr) / (b.fpr - a.fpr)
			right = point{fpr: fprLimit, pro: a.pro + w*(b.pro-a.pro)}
		}
		area += (right.fpr - a.fpr) * (a.pro + right.pro) / 2
	}
	return area / fprLimit
}

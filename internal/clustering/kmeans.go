package clustering

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/mattear-com/deepshelf/internal/port"
)

const maxIterations = 50

// KMeans partitions vectors into k clusters with Lloyd's algorithm and
// returns one cluster id per input position. Identical vectors, k, and
// seed always produce identical assignments.
func KMeans(vectors [][]float32, k int, seed int64) ([]int, error) {
	n := len(vectors)
	if k < 1 {
		return nil, fmt.Errorf("cluster count must be at least 1, got %d", k)
	}
	if k > n {
		return nil, fmt.Errorf("%w: k=%d, items=%d", port.ErrTooManyClusters, k, n)
	}

	dim := len(vectors[0])
	rng := rand.New(rand.NewSource(seed))

	// Seed the first centroid randomly, then pick the vector farthest from
	// all chosen centroids until k are placed. Spreads the initial
	// centroids across the data and stays reproducible for a fixed seed.
	centroids := make([][]float64, 0, k)
	centroids = append(centroids, toFloat64(vectors[rng.Intn(n)]))
	for len(centroids) < k {
		bestIdx, bestDist := 0, -1.0
		for i, v := range vectors {
			nearest := math.MaxFloat64
			for _, c := range centroids {
				if d := sqDistTo(v, c); d < nearest {
					nearest = d
				}
			}
			if nearest > bestDist {
				bestIdx, bestDist = i, nearest
			}
		}
		centroids = append(centroids, toFloat64(vectors[bestIdx]))
	}

	assign := make([]int, n)
	for i := range assign {
		assign[i] = -1
	}

	for iter := 0; iter < maxIterations; iter++ {
		changed := false
		counts := make([]int, k)
		sums := make([][]float64, k)
		for c := range sums {
			sums[c] = make([]float64, dim)
		}

		for i, v := range vectors {
			best, bestDist := 0, math.MaxFloat64
			for c := range centroids {
				if d := sqDistTo(v, centroids[c]); d < bestDist {
					best, bestDist = c, d
				}
			}
			if assign[i] != best {
				assign[i] = best
				changed = true
			}
			counts[best]++
			for j, x := range v {
				sums[best][j] += float64(x)
			}
		}

		if !changed {
			break
		}

		// Empty clusters keep their previous centroid.
		for c := range centroids {
			if counts[c] == 0 {
				continue
			}
			for j := range centroids[c] {
				centroids[c][j] = sums[c][j] / float64(counts[c])
			}
		}
	}

	return assign, nil
}

func toFloat64(v []float32) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = float64(x)
	}
	return out
}

func sqDistTo(v []float32, c []float64) float64 {
	var d float64
	for j, x := range v {
		diff := float64(x) - c[j]
		d += diff * diff
	}
	return d
}

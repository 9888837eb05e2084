// Package composite aggregates normalised track tensors into a single
// composite field. The reduction runs over the track axis with NaN inputs
// ignored; a slice with no finite inputs stays NaN.
package composite

import (
	"fmt"
	"math"
	"sort"

	"github.com/ctessum/sparse"
	"gonum.org/v1/gonum/stat"

	"github.com/meridian-data/extremetrack/internal/config"
	"github.com/meridian-data/extremetrack/internal/monitoring"
)

// Reduce collapses T[r, θ, p, n, v] to C[r, θ, p, v] with the requested
// aggregate. An empty track axis is not an error: it warns and returns the
// all-NaN composite.
func Reduce(tensor *sparse.DenseArray, method config.CompositeMethod) (*sparse.DenseArray, error) {
	if len(tensor.Shape) != 5 {
		return nil, fmt.Errorf("composite: tensor rank %d, want 5", len(tensor.Shape))
	}
	res, res2, phases, nTracks, nVars := tensor.Shape[0], tensor.Shape[1], tensor.Shape[2], tensor.Shape[3], tensor.Shape[4]

	out := sparse.ZerosDense(res, res2, phases, nVars)
	for i := range out.Elements {
		out.Elements[i] = math.NaN()
	}

	if nTracks == 0 {
		monitoring.Logf("composite: empty track set, returning all-NaN composite")
		return out, nil
	}

	samples := make([]float64, 0, nTracks)
	for r := 0; r < res; r++ {
		for th := 0; th < res2; th++ {
			for p := 0; p < phases; p++ {
				for v := 0; v < nVars; v++ {
					samples = samples[:0]
					for n := 0; n < nTracks; n++ {
						val := tensor.Get(r, th, p, n, v)
						if !math.IsNaN(val) {
							samples = append(samples, val)
						}
					}
					if len(samples) == 0 {
						continue
					}
					out.Set(aggregate(samples, method), r, th, p, v)
				}
			}
		}
	}
	return out, nil
}

func aggregate(samples []float64, method config.CompositeMethod) float64 {
	switch method {
	case config.CompositeMedian:
		sort.Float64s(samples)
		return stat.Quantile(0.5, stat.Empirical, samples, nil)
	case config.CompositeStd:
		if len(samples) == 1 {
			return 0
		}
		return stat.PopStdDev(samples, nil)
	default:
		return stat.Mean(samples, nil)
	}
}

package gen

import (
	"context"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/evolab/engine/eval"
)

// SpeciesInfo is the outcome of a speciation run: the number of distinct
// species found and the radius that produced it.
type SpeciesInfo struct {
	Num    uint64
	Radius float64
}

// NewSpeciesInfo returns the default SpeciesInfo used before any
// speciation has run: a single species at radius 1.0.
func NewSpeciesInfo() SpeciesInfo {
	return SpeciesInfo{Num: 1, Radius: 1.0}
}

// DistCache is a dense N×N pairwise distance matrix, filled lazily once per
// generation, with running max and sum maintained alongside it.
//
// Go methods cannot introduce their own type parameters, so the
// State/Data-typed operations (EnsureDistCache, Speciate, SharedFitness,
// SpeciesSharedFitness) are free functions taking *DistCache as their first
// argument rather than methods, unlike the Rust original's impl block.
type DistCache struct {
	n      int
	cache  []float64
	max    float64
	sum    float64
	filled bool
}

// NewDistCache returns an empty, unfilled cache.
func NewDistCache() *DistCache {
	return &DistCache{}
}

// At returns the cached distance between i and j; EnsureDistCache must
// have been called first.
func (d *DistCache) At(i, j int) float64 {
	return d.cache[i*d.n+j]
}

// Max returns the largest pairwise distance seen.
func (d *DistCache) Max() float64 { return d.max }

// Mean returns sum/(n*n), matching the Rust original's mean() definition
// (the diagonal, all zero, is included in the sum).
func (d *DistCache) Mean() float64 {
	if d.n == 0 {
		return 0
	}
	return d.sum / float64(d.n*d.n)
}

// EnsureDistCache fills the cache for the given members if it has not
// already been filled this generation. When par is true the N² distance
// computations run across a bounded worker pool via errgroup, grounded on
// the teacher's channel+WaitGroup evolution.ParallelEvaluator pattern
// generalized for fail-fast cancellation (a distance error aborts the
// whole fill, mirroring rayon's try_for_each in the original).
func EnsureDistCache[S State[S], D eval.Data](d *DistCache, mems []Member[S], par bool, e eval.Evaluator[S, D]) error {
	if d.filled {
		return nil
	}
	n := len(mems)
	d.n = n
	d.cache = make([]float64, n*n)
	if n <= 1 {
		d.filled = true
		return nil
	}

	compute := func(i, j int) error {
		dist, err := e.Distance(&mems[i].State, &mems[j].State)
		if err != nil {
			return err
		}
		d.cache[i*n+j] = dist
		d.cache[j*n+i] = dist
		return nil
	}

	if !par {
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				if err := compute(i, j); err != nil {
					return err
				}
			}
		}
	} else {
		g, ctx := errgroup.WithContext(context.Background())
		g.SetLimit(runtime.NumCPU())
		for i := 0; i < n; i++ {
			i := i
			g.Go(func() error {
				if err := ctx.Err(); err != nil {
					return err
				}
				for j := i + 1; j < n; j++ {
					if err := compute(i, j); err != nil {
						return err
					}
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
	}

	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			v := d.cache[i*n+j]
			d.sum += v
			if v > d.max {
				d.max = v
			}
		}
	}
	d.filled = true
	return nil
}

// Speciate clusters members (assumed already sorted by fitness descending)
// at the given radius, using the greedy seed-and-claim rule: scanning in
// fitness order, the first unassigned member seeds a new species and every
// other unassigned member within radius of the seed joins it. Returns the
// per-member species id (parallel to mems) and the resulting SpeciesInfo.
func Speciate[S State[S]](d *DistCache, mems []Member[S], radius float64) ([]SpeciesID, SpeciesInfo) {
	n := len(mems)
	ids := make([]SpeciesID, n)
	assigned := make([]bool, n)
	var next SpeciesID = 1
	for i := 0; i < n; i++ {
		if assigned[i] {
			continue
		}
		ids[i] = next
		assigned[i] = true
		for j := i + 1; j < n; j++ {
			if assigned[j] {
				continue
			}
			if d.At(i, j) <= radius {
				ids[j] = next
				assigned[j] = true
			}
		}
		next++
	}
	return ids, SpeciesInfo{Num: uint64(next - 1), Radius: radius}
}

// SharedFitness applies the fitness-sharing transform in place: for each
// member i, selection_fitness[i] = fitness[i] / sum_j max(0, 1 -
// (d[i,j]/radius)^alpha).
func SharedFitness[S State[S]](d *DistCache, mems []Member[S], radius, alpha float64) {
	n := len(mems)
	for i := 0; i < n; i++ {
		share := 0.0
		for j := 0; j < n; j++ {
			dist := d.At(i, j)
			if dist < radius {
				ratio := dist / radius
				share += 1.0 - powShare(ratio, alpha)
			}
		}
		mems[i].SelectionFitness = mems[i].Fitness / share
	}
}

// SpeciesSharedFitness applies SharedFitness with alpha derived from the
// SpeciesInfo: alpha = radius / num_species.
func SpeciesSharedFitness[S State[S]](d *DistCache, mems []Member[S], species SpeciesInfo) {
	alpha := species.Radius / float64(species.Num)
	SharedFitness(d, mems, species.Radius, alpha)
}

func powShare(base, exp float64) float64 {
	if base <= 0 {
		return 0
	}
	return math.Pow(base, exp)
}

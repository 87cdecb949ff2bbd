package kquant

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

type ClusterOptions struct {
	// Number of groups. Must be in [1, number of samples].
	K int
	// Upper bound on Lloyd iterations per attempt.
	MaxIterations int
	// An attempt stops once the summed squared centroid shift of one
	// iteration drops below Epsilon (normalized [0,1] units).
	Epsilon float64
	// Independent restarts. The most compact one wins.
	Attempts int
	// Seed for centroid initialization. 0 seeds from the clock, so repeated
	// runs may return different partitions.
	Seed uint64
	// Goroutines used by the assignment step. Values below 1 mean 1.
	Workers int
	// Optional starting centroids for the first attempt, channels in [0,1].
	// Missing rows are filled with random samples, extra rows are ignored.
	InitialCenters [][3]float64
	Logger         *Logger
}

// DefaultClusterOptions mirrors the classic "10 iterations or shift below 1.0,
// best of 10 random restarts" criteria.
func DefaultClusterOptions(k int) ClusterOptions {
	return ClusterOptions{
		K:             k,
		MaxIterations: 10,
		Epsilon:       1.0,
		Attempts:      10,
		Workers:       1,
	}
}

type Result struct {
	Labels      []int      // len = number of samples, values in [0,K)
	Centroids   *mat.Dense // K×3, channels in [0,1]
	Compactness float64    // sum of squared sample-to-centroid distances
	Iterations  int        // iterations used by the winning attempt
	Attempt     int        // index of the winning attempt
}

// K returns the number of centroids.
func (r Result) K() int {
	if r.Centroids == nil {
		return 0
	}
	k, _ := r.Centroids.Dims()
	return k
}

// Cluster partitions samples (an n×3 matrix) into opt.K groups with Lloyd's
// algorithm and returns the most compact of opt.Attempts runs.
func Cluster(ctx context.Context, samples *mat.Dense, opt ClusterOptions) (Result, error) {
	km, err := newLloyd(samples, opt)
	if err != nil {
		return Result{}, err
	}
	return km.best(ctx, opt, func(attempt int) (*mat.Dense, error) {
		if attempt == 0 && len(opt.InitialCenters) > 0 {
			return km.seededCenters(opt.InitialCenters), nil
		}
		return km.randomCenters(), nil
	})
}

func newLloyd(samples *mat.Dense, opt ClusterOptions) (*lloyd, error) {
	n, dim := samples.Dims()
	if dim != 3 {
		return nil, fmt.Errorf("%w: samples have %d columns, want 3", ErrInvalidOptions, dim)
	}
	if opt.K < 1 || opt.K > n {
		return nil, invalidK(opt.K, n)
	}
	if opt.MaxIterations < 1 || opt.Attempts < 1 {
		return nil, fmt.Errorf("%w: iterations=%d attempts=%d", ErrInvalidOptions, opt.MaxIterations, opt.Attempts)
	}
	if opt.Epsilon < 0 || math.IsNaN(opt.Epsilon) {
		return nil, fmt.Errorf("%w: epsilon=%v", ErrInvalidOptions, opt.Epsilon)
	}
	return &lloyd{
		samples: samples,
		n:       n,
		k:       opt.K,
		workers: max(1, min(opt.Workers, n)),
		rng:     newRand(opt.Seed),
	}, nil
}

// best runs opt.Attempts Lloyd refinements, each starting from seed(attempt),
// and keeps the most compact. Ties keep the earlier attempt.
func (km *lloyd) best(ctx context.Context, opt ClusterOptions, seed func(attempt int) (*mat.Dense, error)) (Result, error) {
	log := opt.Logger
	if log == nil {
		log = NoopLogger()
	}
	start := time.Now()
	var best Result
	for attempt := range opt.Attempts {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		centers, err := seed(attempt)
		if err != nil {
			return Result{}, err
		}
		res := km.run(centers, opt.MaxIterations, opt.Epsilon)
		res.Attempt = attempt
		log.LogAttempt(ctx, attempt, res.Iterations, res.Compactness)
		if attempt == 0 || res.Compactness < best.Compactness {
			best = res
		}
	}
	log.LogCluster(ctx, best, time.Since(start))
	return best, nil
}

func newRand(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// lloyd holds the state shared by all attempts of one Cluster call.
type lloyd struct {
	samples *mat.Dense
	n, k    int
	workers int
	rng     *rand.Rand
}

func (km *lloyd) run(centers *mat.Dense, maxIter int, eps float64) Result {
	labels := make([]int, km.n)
	iter := 0
	for iter < maxIter {
		km.assign(centers, labels)
		next := km.update(labels)
		shift := displacement(centers, next)
		centers = next
		iter++
		if shift < eps {
			break
		}
	}
	// Final pass so labels always point at the nearest final centroid.
	compactness := km.assign(centers, labels)
	return Result{
		Labels:      labels,
		Centroids:   centers,
		Compactness: compactness,
		Iterations:  iter,
	}
}

// randomCenters picks k distinct sample indices (Floyd's sampling).
func (km *lloyd) randomCenters() *mat.Dense {
	centers := mat.NewDense(km.k, 3, nil)
	chosen := make(map[int]struct{}, km.k)
	row := 0
	for j := km.n - km.k; j < km.n; j++ {
		t := km.rng.IntN(j + 1)
		if _, ok := chosen[t]; ok {
			t = j
		}
		chosen[t] = struct{}{}
		copy(centers.RawRowView(row), km.samples.RawRowView(t))
		row++
	}
	return centers
}

func (km *lloyd) seededCenters(seeds [][3]float64) *mat.Dense {
	centers := km.randomCenters()
	for j := 0; j < km.k && j < len(seeds); j++ {
		row := centers.RawRowView(j)
		for c := range 3 {
			row[c] = max(0, min(1, seeds[j][c]))
		}
	}
	return centers
}

// assign labels every sample with its nearest centroid and returns the
// summed squared distances. Ties go to the lowest centroid index.
func (km *lloyd) assign(centers *mat.Dense, labels []int) float64 {
	if km.workers == 1 {
		return km.assignRange(centers, labels, 0, km.n)
	}
	chunk := (km.n + km.workers - 1) / km.workers
	partial := make([]float64, km.workers)
	var g errgroup.Group
	for w := range km.workers {
		lo, hi := w*chunk, min((w+1)*chunk, km.n)
		if lo >= hi {
			continue
		}
		g.Go(func() error {
			partial[w] = km.assignRange(centers, labels, lo, hi)
			return nil
		})
	}
	_ = g.Wait()
	return floats.Sum(partial)
}

func (km *lloyd) assignRange(centers *mat.Dense, labels []int, lo, hi int) float64 {
	var total float64
	for i := lo; i < hi; i++ {
		s := km.samples.RawRowView(i)
		best := 0
		bestD := sqDist(s, centers.RawRowView(0))
		for j := 1; j < km.k; j++ {
			if d := sqDist(s, centers.RawRowView(j)); d < bestD {
				bestD = d
				best = j
			}
		}
		labels[i] = best
		total += bestD
	}
	return total
}

// update returns fresh centroids at the mean of their members. A group with
// no members is moved onto a random sample.
func (km *lloyd) update(labels []int) *mat.Dense {
	next := mat.NewDense(km.k, 3, nil)
	counts := make([]int, km.k)
	for i, l := range labels {
		if l < 0 || l >= km.k {
			invariant("label %d of sample %d outside [0,%d)", l, i, km.k)
		}
		floats.Add(next.RawRowView(l), km.samples.RawRowView(i))
		counts[l]++
	}
	for j, c := range counts {
		row := next.RawRowView(j)
		if c == 0 {
			copy(row, km.samples.RawRowView(km.rng.IntN(km.n)))
			continue
		}
		floats.Scale(1/float64(c), row)
	}
	return next
}

func displacement(prev, next *mat.Dense) float64 {
	k, _ := prev.Dims()
	var shift float64
	for j := range k {
		shift += sqDist(prev.RawRowView(j), next.RawRowView(j))
	}
	return shift
}

func sqDist(a, b []float64) float64 {
	d0 := a[0] - b[0]
	d1 := a[1] - b[1]
	d2 := a[2] - b[2]
	return d0*d0 + d1*d1 + d2*d2
}

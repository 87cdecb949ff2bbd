package kquant

import (
	"context"
	"fmt"
	"slices"

	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"
	"gonum.org/v1/gonum/mat"
)

// ClusterMuesli seeds every attempt with a github.com/muesli/kmeans partition
// and then refines it with the same Lloyd loop as Cluster, so centroids are
// the means of their groups and MaxIterations, Epsilon and Attempts apply.
// opt.Seed only drives empty-group reinitialization: the partitions come from
// the library's own source, so results are not reproducible.
// InitialCenters are rejected.
func ClusterMuesli(ctx context.Context, samples *mat.Dense, opt ClusterOptions) (Result, error) {
	if len(opt.InitialCenters) > 0 {
		return Result{}, fmt.Errorf("%w: initial centers are not supported by the muesli engine", ErrInvalidOptions)
	}
	km, err := newLloyd(samples, opt)
	if err != nil {
		return Result{}, err
	}
	dataset := make(clusters.Observations, km.n)
	for i := range km.n {
		dataset[i] = clusters.Coordinates(slices.Clone(samples.RawRowView(i)))
	}
	return km.best(ctx, opt, func(int) (*mat.Dense, error) {
		cc, err := kmeans.New().Partition(dataset, km.k)
		if err != nil {
			return nil, fmt.Errorf("muesli kmeans: %w", err)
		}
		if len(cc) != km.k {
			invariant("muesli kmeans returned %d clusters, want %d", len(cc), km.k)
		}
		centers := mat.NewDense(km.k, 3, nil)
		for j, c := range cc {
			copy(centers.RawRowView(j), c.Center)
		}
		return centers, nil
	})
}

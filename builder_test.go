package slq

import (
	"context"
	"testing"

	"github.com/hupe1980/slq/governor"
	"github.com/hupe1980/slq/operator"
	"github.com/hupe1980/slq/progress"
	"github.com/hupe1980/slq/rng"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilderIsImmutable(t *testing.T) {
	a := operator.NewDiagonal([]float64{1, 2, 3})
	base := New[float64](a).Degree(10)
	withProbes := base.Probes(5)

	assert.Equal(t, 1, base.Build().NV)
	assert.Equal(t, 5, withProbes.Build().NV)
}

func TestBuilderDefaults(t *testing.T) {
	a := operator.NewDiagonal([]float64{1, 2, 3})
	cfg := New[float64](a).Build()

	assert.Equal(t, 20, cfg.K)
	assert.Equal(t, 1, cfg.NV)
	assert.Equal(t, 1, cfg.NumThreads)
	assert.Equal(t, rng.Rademacher, cfg.Dist)
}

func TestBuilderRunWiresGovernorAndProgress(t *testing.T) {
	a := operator.NewDiagonal([]float64{1, 2, 3, 4})
	gov := governor.New(governor.Config{MaxWorkers: 2})
	prog := progress.New(4)

	var samples int
	err := New[float64](a).
		Degree(3).
		Probes(4).
		Governor(gov).
		Progress(prog).
		Reduce(func(i int, q, Q, nodes, weights []float64) error {
			samples++
			return nil
		}).
		Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 4, samples)
	assert.Equal(t, 4, prog.Count())
}

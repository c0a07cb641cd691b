package slq

import (
	"context"

	"github.com/hupe1980/slq/governor"
	"github.com/hupe1980/slq/internal/kernel"
	"github.com/hupe1980/slq/operator"
	"github.com/hupe1980/slq/progress"
	"github.com/hupe1980/slq/rng"
)

// New creates a Builder for operator a, with defaults k=20, n_v=1,
// num_threads=1, orth=0, ncv=k, dist=Rademacher, seed=0.
//
// The builder is immutable: each method returns a new Builder with the
// updated setting, so a partially configured Builder can be reused as a
// base for several runs without aliasing.
func New[F kernel.Float](a operator.LinearOperator[F]) Builder[F] {
	return Builder[F]{
		a:    a,
		k:    20,
		nv:   1,
		nt:   1,
		dist: rng.Rademacher,
	}
}

// Builder is an immutable fluent builder for a driver Config.
type Builder[F kernel.Float] struct {
	a        operator.LinearOperator[F]
	k        int
	nv       int
	nt       int
	orth     int
	ncv      int
	rtol     F
	seed     int64
	dist     rng.Distribution
	source   rng.Source[F]
	reduce   Reducer[F]
	governor *governor.Controller
	progress *progress.Tracker
	logger   *Logger
	metrics  MetricsCollector
}

// Degree sets the Lanczos degree k.
func (b Builder[F]) Degree(k int) Builder[F] { b.k = k; return b }

// Probes sets n_v, the number of probe samples.
func (b Builder[F]) Probes(nv int) Builder[F] { b.nv = nv; return b }

// Threads sets num_threads.
func (b Builder[F]) Threads(nt int) Builder[F] { b.nt = nt; return b }

// Orth sets the partial re-orthogonalization window.
func (b Builder[F]) Orth(orth int) Builder[F] { b.orth = orth; return b }

// NCV sets the number of resident Lanczos basis columns.
func (b Builder[F]) NCV(ncv int) Builder[F] { b.ncv = ncv; return b }

// RTol sets the relative residual tolerance for early termination.
func (b Builder[F]) RTol(rtol F) Builder[F] { b.rtol = rtol; return b }

// Seed sets the RNG seed.
func (b Builder[F]) Seed(seed int64) Builder[F] { b.seed = seed; return b }

// Dist sets the probe distribution.
func (b Builder[F]) Dist(dist rng.Distribution) Builder[F] { b.dist = dist; return b }

// Source overrides the default rng.Source implementation.
func (b Builder[F]) Source(s rng.Source[F]) Builder[F] { b.source = s; return b }

// Reduce sets the reducer invoked on each completed sample.
func (b Builder[F]) Reduce(f Reducer[F]) Builder[F] { b.reduce = f; return b }

// Governor attaches admission control.
func (b Builder[F]) Governor(c *governor.Controller) Builder[F] { b.governor = c; return b }

// Progress attaches a completed-sample tracker.
func (b Builder[F]) Progress(p *progress.Tracker) Builder[F] { b.progress = p; return b }

// Logger sets the structured logger.
func (b Builder[F]) Logger(l *Logger) Builder[F] { b.logger = l; return b }

// Metrics sets the metrics collector.
func (b Builder[F]) Metrics(m MetricsCollector) Builder[F] { b.metrics = m; return b }

// Build assembles a Config from the builder's current settings. An unset
// Ncv stays 0 and an unset RNG stays nil in the returned Config; Run fills
// them in with K and rng.NewMathRand[F]().
func (b Builder[F]) Build() Config[F] {
	return Config[F]{
		A:          b.a,
		NV:         b.nv,
		K:          b.k,
		Rtol:       b.rtol,
		Orth:       b.orth,
		Ncv:        b.ncv,
		NumThreads: b.nt,
		Seed:       b.seed,
		Dist:       b.dist,
		RNG:        b.source,
		Reduce:     b.reduce,
		Governor:   b.governor,
		Progress:   b.progress,
		Logger:     b.logger,
		Metrics:    b.metrics,
	}
}

// Run builds the Config and invokes the package-level Run.
func (b Builder[F]) Run(ctx context.Context) error {
	return Run(ctx, b.Build())
}

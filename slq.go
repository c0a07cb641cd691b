package slq

import (
	"context"
	"fmt"
	"math"
	"sync/atomic"
	"time"

	"github.com/hupe1980/slq/errs"
	"github.com/hupe1980/slq/governor"
	"github.com/hupe1980/slq/internal/kernel"
	"github.com/hupe1980/slq/lanczos"
	"github.com/hupe1980/slq/operator"
	"github.com/hupe1980/slq/progress"
	"github.com/hupe1980/slq/quadrature"
	"github.com/hupe1980/slq/rng"
	"golang.org/x/sync/errgroup"
)

// Reducer is invoked once per completed sample. i is the sample index in
// [0, n_v); q is the drawn probe (length n); Q is the rotating Lanczos
// basis (n*ncv, column-major); nodes and weights are the k_eff-point
// Gauss-Lanczos quadrature rule. None of the slices may be retained past
// return: the driver overwrites them on the next sample assigned to the
// same worker.
type Reducer[F kernel.Float] func(i int, q, Q, nodes, weights []F) error

// Config holds everything a driver run needs. A and Reduce are required;
// everything else has a documented default.
type Config[F kernel.Float] struct {
	// A is the operator whose spectral sum is being estimated.
	A operator.LinearOperator[F]

	// NV is n_v, the number of probe samples to draw. Must be >= 1.
	NV int

	// K is the Lanczos degree per sample. Must be >= 2.
	K int

	// Rtol is the relative residual tolerance for early termination.
	// Zero disables early termination.
	Rtol F

	// Orth is the number of most-recently-written columns each step
	// re-orthogonalizes against. Must satisfy 0 <= Orth <= Ncv-1.
	Orth int

	// Ncv is the number of resident Lanczos basis columns. Must satisfy
	// 2 <= Ncv <= K. Defaults to K if zero.
	Ncv int

	// NumThreads is the number of worker goroutines. Defaults to 1.
	NumThreads int

	// Seed seeds the RNG. With a stream-stable RNG, worker stream tid
	// draws the same sequence for a given Seed regardless of NumThreads.
	// Samples are assigned to workers dynamically, so a given sample's
	// probe is reproducible across thread counts only when a single
	// worker runs (NumThreads == 1, or n_v fits in one chunk).
	Seed int64

	// Dist selects the isotropic probe distribution.
	Dist rng.Distribution

	// RNG supplies probes. Defaults to rng.NewMathRand[F]().
	RNG rng.Source[F]

	// Reduce consumes each completed sample. Required.
	Reduce Reducer[F]

	// Governor, if non-nil, applies admission control to worker
	// concurrency, per-worker memory, and probe-generation rate.
	Governor *governor.Controller

	// Progress, if non-nil, records completed sample indices and is
	// checked for a cooperative stop request before each new chunk.
	Progress *progress.Tracker

	// Logger, if nil, defaults to a no-op logger.
	Logger *Logger

	// Metrics, if nil, defaults to NoopMetricsCollector.
	Metrics MetricsCollector
}

func (cfg *Config[F]) applyDefaults() {
	if cfg.Ncv == 0 {
		cfg.Ncv = cfg.K
	}
	if cfg.NumThreads <= 0 {
		cfg.NumThreads = 1
	}
	if cfg.RNG == nil {
		cfg.RNG = rng.NewMathRand[F]()
	}
	if cfg.Logger == nil {
		cfg.Logger = NoopLogger()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = NoopMetricsCollector{}
	}
}

func (cfg *Config[F]) validate() error {
	if cfg.A == nil {
		return &InvalidArgumentError{Msg: "A is nil"}
	}
	if cfg.Reduce == nil {
		return &InvalidArgumentError{Msg: "Reduce is nil"}
	}
	if cfg.NV < 1 {
		return &InvalidArgumentError{Msg: "NV must be >= 1"}
	}
	if cfg.K < 2 {
		return &InvalidArgumentError{Msg: "K must be >= 2"}
	}
	if cfg.Ncv < 2 || cfg.Ncv > cfg.K {
		return &InvalidArgumentError{Msg: fmt.Sprintf("Ncv=%d must be in [2,%d]", cfg.Ncv, cfg.K)}
	}
	if cfg.Orth < 0 || cfg.Orth > cfg.Ncv-1 {
		return &InvalidArgumentError{Msg: fmt.Sprintf("Orth=%d must be in [0,%d]", cfg.Orth, cfg.Ncv-1)}
	}
	if cfg.NumThreads < 1 {
		return &InvalidArgumentError{Msg: "NumThreads must be >= 1"}
	}
	n, m := cfg.A.Shape()
	if n != m {
		return &InvalidArgumentError{Msg: fmt.Sprintf("A is not square: shape (%d,%d)", n, m)}
	}
	return nil
}

// workerState holds the buffers one worker allocates once and reuses
// across every sample it processes, per spec's buffer-reuse contract.
type workerState[F kernel.Float] struct {
	tid    int
	q      []F
	ws     *lanczos.Workspace[F]
	result *quadrature.Result[F]
}

func newWorkerState[F kernel.Float](tid, n, k, ncv int) *workerState[F] {
	return &workerState[F]{
		tid:    tid,
		q:      make([]F, n),
		ws:     lanczos.NewWorkspace[F](n, k, ncv),
		result: quadrature.NewResult[F](k),
	}
}

// runSample executes one full sample (probe -> recurrence -> quadrature
// -> reducer) using ws's buffers, returning k_eff.
func runSample[F kernel.Float](cfg *Config[F], ws *workerState[F], i int) (int, error) {
	if err := cfg.RNG.Fill(ws.q, ws.tid, cfg.Dist); err != nil {
		return 0, fmt.Errorf("slq: rng fill: %w", err)
	}

	ws.ws.Reset()
	kEff, err := lanczos.Recurrence(cfg.A, ws.q, cfg.K, cfg.Rtol, cfg.Orth, cfg.Ncv, ws.ws)
	if err != nil {
		return 0, translateError(i, err)
	}

	if err := quadrature.Gauss(ws.ws.Alpha, ws.ws.Beta, kEff, ws.result); err != nil {
		return kEff, translateError(i, err)
	}

	nodes := ws.result.Nodes[:kEff]
	weights := ws.result.Weights[:kEff]
	if err := cfg.Reduce(i, ws.q, ws.ws.Q, nodes, weights); err != nil {
		return kEff, errs.WrapReducer(i, err)
	}

	return kEff, nil
}

// Run drives the parallel Monte Carlo loop described by cfg: it
// initializes cfg.RNG, computes the dynamic chunk size
// max(floor(sqrt(n_v/num_threads)), 1), spawns up to cfg.NumThreads
// workers (no more than there are chunks, so worker ids start at 0) each
// with their own buffers, and dispatches i = 0..n_v-1 to them in
// chunks until either all samples complete or the first error is
// observed. On error, in-flight workers finish their current sample and
// exit; Run returns that first error.
func Run[F kernel.Float](ctx context.Context, cfg Config[F]) error {
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return err
	}

	start := time.Now()
	n, _ := cfg.A.Shape()

	cfg.RNG.Initialize(cfg.NumThreads, cfg.Seed)

	chunkSize := int(math.Sqrt(float64(cfg.NV) / float64(cfg.NumThreads)))
	if chunkSize < 1 {
		chunkSize = 1
	}
	cfg.Logger.LogRunStart(ctx, cfg.NV, cfg.NumThreads, cfg.K, chunkSize)

	numWorkers := cfg.NumThreads
	if numChunks := (cfg.NV + chunkSize - 1) / chunkSize; numWorkers > numChunks {
		numWorkers = numChunks
	}

	var cursor atomic.Int64
	// q (n) + Q (n*ncv) + alpha (k) + beta (k+1) + nodes (k) + weights (k).
	scalarsPerWorker := int64(n + n*cfg.Ncv + 4*cfg.K + 1)

	g, gctx := errgroup.WithContext(ctx)
	for tid := 0; tid < numWorkers; tid++ {
		tid := tid
		g.Go(func() error {
			if err := cfg.Governor.AcquireWorker(gctx); err != nil {
				return err
			}
			defer cfg.Governor.ReleaseWorker()

			if err := cfg.Governor.AcquireScalars(gctx, scalarsPerWorker); err != nil {
				return err
			}
			defer cfg.Governor.ReleaseScalars(scalarsPerWorker)

			ws := newWorkerState[F](tid, n, cfg.K, cfg.Ncv)

			for {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				if cfg.Progress.Stopped() {
					return nil
				}

				lo := cursor.Add(int64(chunkSize)) - int64(chunkSize)
				if lo >= int64(cfg.NV) {
					return nil
				}
				hi := lo + int64(chunkSize)
				if hi > int64(cfg.NV) {
					hi = int64(cfg.NV)
				}

				for i := int(lo); i < int(hi); i++ {
					if gctx.Err() != nil {
						return gctx.Err()
					}
					if err := cfg.Governor.WaitProbe(gctx); err != nil {
						return err
					}

					sampleStart := time.Now()
					kEff, err := runSample(&cfg, ws, i)
					cfg.Metrics.RecordSample(time.Since(sampleStart), kEff, err)
					cfg.Logger.LogSample(gctx, i, kEff, err)
					if err != nil {
						return err
					}
					if kEff < cfg.K {
						cfg.Metrics.RecordEarlyTermination()
						cfg.Logger.LogEarlyTermination(gctx, i, kEff, cfg.K)
					}
					cfg.Progress.MarkDone(i)
				}
			}
		})
	}

	err := g.Wait()
	cfg.Metrics.RecordRun(time.Since(start), cfg.NV, err)
	cfg.Logger.LogRunDone(ctx, cfg.NV, err)
	return err
}

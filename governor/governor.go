// Package governor provides optional admission control for the SLQ
// driver: a memory budget for per-worker Lanczos workspaces, a cap on
// concurrent background workers, and a throttle on probe-generation
// throughput. None of it is required by the core algorithm — a driver run
// with no Controller attached behaves exactly as spec.md describes.
package governor

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// Config holds resource limits for a Controller.
type Config struct {
	// ScalarLimit is the hard limit on the total number of F-sized
	// scalars reserved across all worker workspaces (Q + alpha + beta +
	// nodes + weights + q). If 0, no hard limit is enforced.
	ScalarLimit int64

	// MaxWorkers is the maximum number of concurrent driver workers
	// admitted at once. If 0, defaults to 1.
	MaxWorkers int64

	// ProbesPerSec throttles how many probes per second may begin a
	// Lanczos run, smoothing bursty matvec load on a shared operator. If
	// 0, unlimited.
	ProbesPerSec float64
}

// Controller enforces a Config's limits. A nil *Controller is a valid,
// always-permissive controller, so callers can pass a possibly-nil
// Controller through without a branch at every call site.
type Controller struct {
	cfg Config

	scalarSem  *semaphore.Weighted
	scalarUsed atomic.Int64

	workerSem *semaphore.Weighted

	probeLimiter *rate.Limiter
}

// New creates a Controller from cfg.
func New(cfg Config) *Controller {
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = 1
	}

	c := &Controller{
		cfg:       cfg,
		workerSem: semaphore.NewWeighted(cfg.MaxWorkers),
	}

	if cfg.ScalarLimit > 0 {
		c.scalarSem = semaphore.NewWeighted(cfg.ScalarLimit)
	}
	if cfg.ProbesPerSec > 0 {
		c.probeLimiter = rate.NewLimiter(rate.Limit(cfg.ProbesPerSec), int(cfg.ProbesPerSec)+1)
	}

	return c
}

// AcquireScalars reserves n scalars of workspace memory, blocking until
// available or ctx is canceled.
func (c *Controller) AcquireScalars(ctx context.Context, n int64) error {
	if c == nil || n <= 0 || c.scalarSem == nil {
		return nil
	}
	if err := c.scalarSem.Acquire(ctx, n); err != nil {
		return err
	}
	c.scalarUsed.Add(n)
	return nil
}

// ReleaseScalars releases a reservation made by AcquireScalars.
func (c *Controller) ReleaseScalars(n int64) {
	if c == nil || n <= 0 || c.scalarSem == nil {
		return
	}
	c.scalarSem.Release(n)
	c.scalarUsed.Add(-n)
}

// ScalarsInUse returns the current reserved scalar count.
func (c *Controller) ScalarsInUse() int64 {
	if c == nil {
		return 0
	}
	return c.scalarUsed.Load()
}

// AcquireWorker reserves a worker admission slot, blocking until
// available or ctx is canceled.
func (c *Controller) AcquireWorker(ctx context.Context) error {
	if c == nil {
		return nil
	}
	return c.workerSem.Acquire(ctx, 1)
}

// ReleaseWorker releases a worker admission slot.
func (c *Controller) ReleaseWorker() {
	if c == nil {
		return
	}
	c.workerSem.Release(1)
}

// WaitProbe blocks until the probe-generation rate limiter admits one
// more probe, or ctx is canceled.
func (c *Controller) WaitProbe(ctx context.Context) error {
	if c == nil || c.probeLimiter == nil {
		return nil
	}
	return c.probeLimiter.Wait(ctx)
}

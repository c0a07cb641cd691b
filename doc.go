// Package slq estimates tr(f(A)) for a large symmetric operator A, known
// only through its matrix-vector product, via Stochastic Lanczos
// Quadrature (SLQ).
//
// SLQ draws isotropic probe vectors, runs a Lanczos recurrence on each to
// build a small tridiagonal model of A, turns that model into a Gauss
// quadrature rule over A's spectrum, and hands the rule to a
// caller-supplied reducer for aggregation into a trace estimate.
//
// # Quick start
//
//	a := operator.NewDiagonal([]float64{1, 2, 3, 4, 5})
//
//	var mu sync.Mutex // the reducer is called from several workers at once
//	var estimate float64
//	var n int64
//	reducer := func(i int, q, Q, nodes, weights []float64) error {
//	    mu.Lock()
//	    defer mu.Unlock()
//	    for j, w := range weights {
//	        estimate += w * math.Log(nodes[j])
//	    }
//	    n++
//	    return nil
//	}
//
//	err := slq.New(a).
//	    Degree(5).
//	    Probes(1000).
//	    Threads(4).
//	    Seed(1).
//	    Reduce(reducer).
//	    Run(context.Background())
//
// # Reducer
//
// The reducer is the sole extension point: it receives (i, q, Q, nodes,
// weights) for each completed sample and is responsible for whatever
// aggregation the caller needs, from a running Hutchinson-style trace
// estimate to a full quadrature dump via samplelog.Wrap.
//
// # Optional admission control and progress tracking
//
// A Config may attach a *governor.Controller to bound per-worker memory
// and background concurrency, and a *progress.Tracker to record completed
// sample indices and expose a cooperative stop flag. Neither changes the
// driver's core semantics; a Config with neither behaves exactly as the
// unadorned algorithm.
package slq

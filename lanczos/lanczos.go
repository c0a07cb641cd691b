// Package lanczos implements a numerically careful Lanczos three-term
// recurrence (Paige's A1/A27 variant) with configurable partial
// re-orthogonalization and a rotating ncv-column basis buffer, so memory
// stays bounded independent of the requested degree k.
package lanczos

import (
	"fmt"
	"math"

	"github.com/hupe1980/slq/errs"
	"github.com/hupe1980/slq/internal/kernel"
	"github.com/hupe1980/slq/operator"
)

// Workspace holds the caller-owned buffers for one Lanczos run: the
// rotating basis Q and the tridiagonal coefficients alpha/beta. It is
// sized once and reused across samples by the SLQ driver.
type Workspace[F kernel.Float] struct {
	N, K, Ncv int
	Q         []F // column-major, N*Ncv: column c occupies Q[c*N : c*N+N]
	Alpha     []F // length K
	Beta      []F // length K+1; Beta[0] is the sentinel zero
}

// NewWorkspace allocates a Workspace for an operator of order n, a
// requested degree k, and a window of ncv resident columns.
func NewWorkspace[F kernel.Float](n, k, ncv int) *Workspace[F] {
	return &Workspace[F]{
		N:     n,
		K:     k,
		Ncv:   ncv,
		Q:     make([]F, n*ncv),
		Alpha: make([]F, k),
		Beta:  make([]F, k+1),
	}
}

// Col returns the c'th resident column of Q as a slice view.
func (w *Workspace[F]) Col(c int) []F {
	return w.Q[c*w.N : c*w.N+w.N]
}

// Reset zeroes Alpha and Beta. Q is not zeroed: every resident column is
// overwritten before it is read.
func (w *Workspace[F]) Reset() {
	for i := range w.Alpha {
		w.Alpha[i] = 0
	}
	for i := range w.Beta {
		w.Beta[i] = 0
	}
}

// Recurrence runs the Lanczos three-term recurrence starting from q0,
// writing up to k steps of (alpha, beta) and the rotating basis into ws.
// q0 is overwritten with working residual state, per the core's ownership
// contract. It returns the number of steps actually completed, k_eff,
// which is less than k only when an invariant subspace was detected.
//
// Preconditions: ncv >= 2, 0 <= orth <= ncv-1, ncv <= k, rtol >= 0,
// A.Shape() == (n, n) with n == len(q0) == ws.N, ws.K >= k, ws.Ncv >= ncv.
func Recurrence[F kernel.Float](a operator.LinearOperator[F], q0 []F, k int, rtol F, orth, ncv int, ws *Workspace[F]) (kEff int, err error) {
	n, m := a.Shape()
	if err := validate(n, m, len(q0), k, orth, ncv, rtol, ws); err != nil {
		return 0, err
	}

	q0Norm := kernel.Nrm2(q0)
	if q0Norm == 0 {
		return 0, &errs.ZeroStartVectorError{}
	}

	ws.Beta[0] = 0
	first := ws.Col(0)
	kernel.Copy(first, q0)
	kernel.Scale(1/q0Norm, first)

	residualTol := F(math.Sqrt(float64(n))) * rtol
	v := q0 // residual buffer aliases the caller's starting vector storage

	pos := [3]int{ncv - 1, 0, 1}

	for j := 0; j < k; j++ {
		p, c, next := pos[0], pos[1], pos[2]
		qc := ws.Col(c)

		if err := a.MatVec(v, qc); err != nil {
			return kEff, errs.WrapOperator(err)
		}
		if !kernel.AllFinite(v) {
			return kEff, &errs.NonFiniteInputError{Where: "matvec"}
		}

		kernel.Axpy(-ws.Beta[j], ws.Col(p), v)
		ws.Alpha[j] = kernel.Dot(qc, v)
		kernel.Axpy(-ws.Alpha[j], qc, v)

		if orth > 0 {
			reorthogonalize(v, ws, j, ncv, orth)
		}

		bn := kernel.Nrm2(v)
		ws.Beta[j+1] = bn

		if !isFinite(ws.Alpha[j]) || !isFinite(bn) {
			return kEff, &errs.NonFiniteInputError{Where: "alpha/beta"}
		}

		kEff = j + 1

		if bn < residualTol || j+1 == k {
			break
		}

		kernel.Scale(1/bn, v)
		kernel.Copy(ws.Col(next), v)

		pos = [3]int{c, next, (j + 2) % ncv}
	}

	return kEff, nil
}

// reorthogonalize projects v, in one modified Gram-Schmidt pass, against
// the orth most-recently-written Lanczos vectors preceding the current
// step j, other than the current column itself. Because the rotating
// window's physical column for logical vector index t is t mod ncv, and
// orth <= ncv-1 by precondition, this never revisits the current column.
func reorthogonalize[F kernel.Float](v []F, ws *Workspace[F], j, ncv, orth int) {
	m := orth
	if j < m {
		m = j
	}
	for t := j - 1; t >= j-m; t-- {
		phys := t % ncv
		qt := ws.Col(phys)
		proj := kernel.Dot(qt, v)
		kernel.Axpy(-proj, qt, v)
	}
}

func isFinite[F kernel.Float](x F) bool {
	f := float64(x)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func validate[F kernel.Float](n, m, q0Len, k, orth, ncv int, rtol F, ws *Workspace[F]) error {
	if n != m {
		return &errs.InvalidArgumentError{Msg: fmt.Sprintf("operator not square: shape (%d,%d)", n, m)}
	}
	if n < 1 {
		return &errs.InvalidArgumentError{Msg: "n must be >= 1"}
	}
	if q0Len != n {
		return &errs.InvalidArgumentError{Msg: fmt.Sprintf("len(q0)=%d != n=%d", q0Len, n)}
	}
	if ncv < 2 {
		return &errs.InvalidArgumentError{Msg: "ncv must be >= 2"}
	}
	if ncv > k {
		return &errs.InvalidArgumentError{Msg: fmt.Sprintf("ncv=%d must be <= k=%d", ncv, k)}
	}
	if orth < 0 || orth > ncv-1 {
		return &errs.InvalidArgumentError{Msg: fmt.Sprintf("orth=%d must be in [0,%d]", orth, ncv-1)}
	}
	if rtol < 0 {
		return &errs.InvalidArgumentError{Msg: "rtol must be >= 0"}
	}
	if ws == nil {
		return &errs.InvalidArgumentError{Msg: "workspace is nil"}
	}
	if ws.N != n {
		return &errs.InvalidArgumentError{Msg: fmt.Sprintf("workspace.N=%d != n=%d", ws.N, n)}
	}
	if ws.Ncv < ncv {
		return &errs.InvalidArgumentError{Msg: fmt.Sprintf("workspace.Ncv=%d < ncv=%d", ws.Ncv, ncv)}
	}
	if len(ws.Alpha) < k {
		return &errs.InvalidArgumentError{Msg: fmt.Sprintf("workspace.Alpha too short: %d < %d", len(ws.Alpha), k)}
	}
	if len(ws.Beta) < k+1 {
		return &errs.InvalidArgumentError{Msg: fmt.Sprintf("workspace.Beta too short: %d < %d", len(ws.Beta), k+1)}
	}
	if len(ws.Q) < n*ncv {
		return &errs.InvalidArgumentError{Msg: "workspace.Q too small"}
	}
	return nil
}

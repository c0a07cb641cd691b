// Package quadrature turns the (alpha, beta) coefficients of a real
// symmetric tridiagonal matrix produced by the lanczos package into the
// nodes and weights of the corresponding Gauss-Lanczos quadrature rule
// (the Golub-Welsch construction).
package quadrature

import (
	"fmt"
	"math"
	"sort"

	"github.com/hupe1980/slq/errs"
	"github.com/hupe1980/slq/internal/kernel"
	"gonum.org/v1/gonum/mat"
)

// Result holds the k-point quadrature rule: Nodes are the Ritz values in
// non-decreasing order, Weights are the squared first components of the
// corresponding normalized eigenvectors. Sum(Weights) == 1 to machine
// precision because the eigenvector matrix is orthogonal.
type Result[F kernel.Float] struct {
	Nodes   []F
	Weights []F
}

// NewResult allocates a Result sized for k nodes/weights.
func NewResult[F kernel.Float](k int) *Result[F] {
	return &Result[F]{Nodes: make([]F, k), Weights: make([]F, k)}
}

// Gauss computes the Gauss-Lanczos quadrature rule for the k-order
// tridiagonal matrix with diagonal alpha[0:k) and off-diagonal beta[1:k).
// beta[0] is ignored, matching the lanczos package's sentinel convention.
//
// The eigendecomposition is delegated to gonum's symmetric eigensolver
// rather than exploiting the tridiagonal structure directly; for the
// degrees k this kernel targets (a few hundred at most) the extra cost is
// negligible next to the cost of the matvecs that produced (alpha, beta).
func Gauss[F kernel.Float](alpha, beta []F, k int, out *Result[F]) error {
	if err := validate(alpha, beta, k, out); err != nil {
		return err
	}

	data := make([]float64, k*k)
	for i := 0; i < k; i++ {
		a := float64(alpha[i])
		if isNaNOrInf(a) {
			return &errs.NonFiniteInputError{Where: "alpha"}
		}
		data[i*k+i] = a
		if i+1 < k {
			b := float64(beta[i+1])
			if isNaNOrInf(b) {
				return &errs.NonFiniteInputError{Where: "beta"}
			}
			data[i*k+i+1] = b
			data[(i+1)*k+i] = b
		}
	}

	sym := mat.NewSymDense(k, data)

	var eig mat.EigenSym
	if ok := eig.Factorize(sym, true); !ok {
		return fmt.Errorf("quadrature: tridiagonal eigendecomposition failed to converge")
	}

	values := eig.Values(nil)
	var vectors mat.Dense
	eig.VectorsTo(&vectors)

	type pair struct {
		val F
		row float64
	}
	pairs := make([]pair, k)
	for i := 0; i < k; i++ {
		pairs[i] = pair{val: F(values[i]), row: vectors.At(0, i)}
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].val < pairs[j].val })

	for i, p := range pairs {
		out.Nodes[i] = p.val
		w := p.row * p.row
		out.Weights[i] = F(w)
	}

	return nil
}

func isNaNOrInf(x float64) bool {
	return math.IsNaN(x) || math.IsInf(x, 0)
}

func validate[F kernel.Float](alpha, beta []F, k int, out *Result[F]) error {
	if k < 1 {
		return &errs.InvalidArgumentError{Msg: "k must be >= 1"}
	}
	if len(alpha) < k {
		return &errs.InvalidArgumentError{Msg: fmt.Sprintf("len(alpha)=%d < k=%d", len(alpha), k)}
	}
	if len(beta) < k {
		return &errs.InvalidArgumentError{Msg: fmt.Sprintf("len(beta)=%d < k=%d", len(beta), k)}
	}
	if out == nil {
		return &errs.InvalidArgumentError{Msg: "out is nil"}
	}
	if len(out.Nodes) < k || len(out.Weights) < k {
		return &errs.InvalidArgumentError{Msg: "out buffers too small"}
	}
	return nil
}

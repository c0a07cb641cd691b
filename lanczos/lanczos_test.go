package lanczos

import (
	"math"
	"testing"

	"github.com/hupe1980/slq/errs"
	"github.com/hupe1980/slq/internal/kernel"
	"github.com/hupe1980/slq/operator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uniform(n int) []float64 {
	v := make([]float64, n)
	inv := 1 / math.Sqrt(float64(n))
	for i := range v {
		v[i] = inv
	}
	return v
}

// TestZeroStartVector covers S6: a zero probe fails with ZeroStartVectorError.
func TestZeroStartVector(t *testing.T) {
	a := operator.NewDiagonal([]float64{1, 2, 3})
	ws := NewWorkspace[float64](3, 3, 3)
	q0 := make([]float64, 3)

	_, err := Recurrence[float64](a, q0, 3, 1e-8, 2, 3, ws)
	require.Error(t, err)
	var zsv *errs.ZeroStartVectorError
	assert.ErrorAs(t, err, &zsv)
}

// TestInvalidPreconditions covers spec.md precondition rejections.
func TestInvalidPreconditions(t *testing.T) {
	a := operator.NewDiagonal([]float64{1, 2, 3})
	q0 := uniform(3)

	tests := []struct {
		name         string
		k, orth, ncv int
	}{
		{"ncv too small", 3, 0, 1},
		{"ncv exceeds k", 2, 0, 3},
		{"orth exceeds ncv-1", 3, 3, 3},
		{"negative orth", 3, -1, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ws := NewWorkspace[float64](3, tt.k, tt.ncv)
			q := append([]float64(nil), q0...)
			_, err := Recurrence[float64](a, q, tt.k, 1e-8, tt.orth, tt.ncv, ws)
			require.Error(t, err)
			var ia *errs.InvalidArgumentError
			assert.ErrorAs(t, err, &ia)
		})
	}
}

// TestFullReorthTridiagonalizationIdentity checks property (1) and (2):
// ||A Q - Q T - beta[k] q_k e_k^T|| is small, and Q is orthonormal.
func TestFullReorthTridiagonalizationIdentity(t *testing.T) {
	lambda := []float64{1, 2, 3, 4, 5}
	a := operator.NewDiagonal(lambda)
	n, k := 5, 5

	q0 := uniform(n)
	ws := NewWorkspace[float64](n, k, k)
	kEff, err := Recurrence[float64](a, q0, k, 1e-12, k-1, k, ws)
	require.NoError(t, err)
	require.Equal(t, k, kEff)

	// Orthonormality: Q^T Q ~= I.
	for i := 0; i < k; i++ {
		qi := ws.Col(i)
		for j := 0; j < k; j++ {
			qj := ws.Col(j)
			d := kernel.Dot(qi, qj)
			want := 0.0
			if i == j {
				want = 1.0
			}
			assert.InDeltaf(t, want, d, 1e-9, "Q^T Q [%d,%d]", i, j)
		}
	}

	// Tridiagonalization identity, column by column: A q_j - beta[j] q_{j-1}
	// - alpha[j] q_j - beta[j+1] q_{j+1} ~= 0 for interior columns.
	for j := 0; j < k; j++ {
		av := make([]float64, n)
		require.NoError(t, a.MatVec(av, ws.Col(j)))

		resid := append([]float64(nil), av...)
		if j > 0 {
			kernel.Axpy(-ws.Beta[j], ws.Col(j-1), resid)
		}
		kernel.Axpy(-ws.Alpha[j], ws.Col(j), resid)
		if j+1 < k {
			kernel.Axpy(-ws.Beta[j+1], ws.Col(j+1), resid)
		}
		assert.LessOrEqualf(t, kernel.Nrm2(resid), 1e-8, "residual too large at column %d", j)
	}
}

// TestEarlyTermination covers S2: A = I, any q, invariant subspace of
// dimension 1 is detected after the first step.
func TestEarlyTermination(t *testing.T) {
	n := 10
	lambda := make([]float64, n)
	for i := range lambda {
		lambda[i] = 1
	}
	a := operator.NewDiagonal(lambda)
	q0 := uniform(n)

	k, orth, ncv := 4, 3, 4
	ws := NewWorkspace[float64](n, k, ncv)
	kEff, err := Recurrence[float64](a, q0, k, 1e-8, orth, ncv, ws)
	require.NoError(t, err)

	assert.Equal(t, 1, kEff)
	assert.Greater(t, ws.Beta[1], 0.0)
	assert.Less(t, ws.Beta[2], math.Sqrt(float64(n))*1e-8)
}

// TestMinimumNCVRotates covers boundary behavior (9): with ncv=2, orth=0,
// only two physical Q columns are ever touched no matter how large k is.
func TestMinimumNCVRotates(t *testing.T) {
	n, k := 6, 6
	lambda := []float64{1, 2, 3, 4, 5, 6}
	a := operator.NewDiagonal(lambda)
	q0 := uniform(n)

	ws := NewWorkspace[float64](n, k, 2)
	kEff, err := Recurrence[float64](a, q0, k, 1e-14, 0, 2, ws)
	require.NoError(t, err)
	assert.Equal(t, k, kEff)
	assert.Len(t, ws.Q, n*2)
}

// TestDeterministicRepeat covers round-trip property (6): identical inputs
// produce bit-identical (alpha, beta, Q).
func TestDeterministicRepeat(t *testing.T) {
	n, k := 8, 6
	lambda := []float64{1, 2, 3, 4, 5, 6, 7, 8}
	a := operator.NewDiagonal(lambda)

	run := func() *Workspace[float64] {
		q0 := uniform(n)
		ws := NewWorkspace[float64](n, k, 4)
		_, err := Recurrence[float64](a, q0, k, 1e-10, 3, 4, ws)
		require.NoError(t, err)
		return ws
	}

	w1 := run()
	w2 := run()
	assert.Equal(t, w1.Alpha, w2.Alpha)
	assert.Equal(t, w1.Beta, w2.Beta)
	assert.Equal(t, w1.Q, w2.Q)
}

// TestPartialOrthWindowedOrthogonality covers boundary behavior (10): orth =
// ncv-1 restores orthogonality only within the resident window, not
// against evicted columns, when ncv < k.
func TestPartialOrthWindowedOrthogonality(t *testing.T) {
	n, k, ncv := 10, 10, 3
	lambda := make([]float64, n)
	for i := range lambda {
		lambda[i] = float64(i + 1)
	}
	a := operator.NewDiagonal(lambda)
	q0 := uniform(n)

	ws := NewWorkspace[float64](n, k, ncv)
	kEff, err := Recurrence[float64](a, q0, k, 1e-14, ncv-1, ncv, ws)
	require.NoError(t, err)
	assert.Equal(t, k, kEff)

	// The two currently-resident columns after the run are still
	// orthonormal to each other (within the window).
	last := (k - 1) % ncv
	prev := (k - 2) % ncv
	d := kernel.Dot(ws.Col(last), ws.Col(prev))
	assert.InDelta(t, 0.0, d, 1e-8)
}

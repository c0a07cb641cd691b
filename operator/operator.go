// Package operator defines the LinearOperator capability consumed by the
// lanczos and slq packages. The operator abstraction itself — how A is
// stored, whether it is dense, sparse, or matrix-free — is an external
// collaborator; this package only fixes the two-method contract the core
// relies on and provides two small reference implementations for testing
// and simple use cases.
package operator

import (
	"fmt"

	"github.com/hupe1980/slq/internal/kernel"
)

// LinearOperator is a symmetric operator available only through its
// matrix-vector product. Implementations must be safe for concurrent use
// by multiple goroutines: the SLQ driver calls MatVec from worker
// goroutines with no synchronization of its own. The caller guarantees A
// is (numerically) symmetric; behavior is unspecified otherwise.
type LinearOperator[F kernel.Float] interface {
	// Shape returns (n, m). The core requires n == m.
	Shape() (n, m int)

	// MatVec writes A*src into dst. len(src) must equal m, len(dst) must
	// equal n. A non-nil error is treated as an OperatorFailure by callers.
	MatVec(dst, src []F) error
}

// Func adapts a plain function into a LinearOperator.
type Func[F kernel.Float] struct {
	N  int
	Fn func(dst, src []F) error
}

// Shape implements LinearOperator.
func (f Func[F]) Shape() (int, int) { return f.N, f.N }

// MatVec implements LinearOperator.
func (f Func[F]) MatVec(dst, src []F) error { return f.Fn(dst, src) }

// Dense is a reference LinearOperator backed by a dense, row-major,
// symmetric matrix. It exists for tests and small examples; production
// operators are expected to be matrix-free.
type Dense[F kernel.Float] struct {
	n    int
	data []F // row-major n*n
}

// NewDense builds a Dense operator from a row-major n*n slice. It
// verifies symmetry up to a small relative tolerance, standing in for the
// "debug-mode symmetry probe" the core spec leaves as an implementer's
// option rather than performing it on every matvec.
func NewDense[F kernel.Float](n int, data []F) (*Dense[F], error) {
	if n <= 0 {
		return nil, fmt.Errorf("operator: n must be positive, got %d", n)
	}
	if len(data) != n*n {
		return nil, fmt.Errorf("operator: data length %d != n*n (%d)", len(data), n*n)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			a, b := data[i*n+j], data[j*n+i]
			d := a - b
			if d < 0 {
				d = -d
			}
			if float64(d) > 1e-8*(1+float64(abs(a))) {
				return nil, fmt.Errorf("operator: matrix not symmetric at (%d,%d)", i, j)
			}
		}
	}
	return &Dense[F]{n: n, data: data}, nil
}

// NewDiagonal builds a Dense operator whose matrix is diag(lambda).
func NewDiagonal[F kernel.Float](lambda []F) *Dense[F] {
	n := len(lambda)
	data := make([]F, n*n)
	for i, v := range lambda {
		data[i*n+i] = v
	}
	d, _ := NewDense(n, data)
	return d
}

// Shape implements LinearOperator.
func (d *Dense[F]) Shape() (int, int) { return d.n, d.n }

// MatVec implements LinearOperator.
func (d *Dense[F]) MatVec(dst, src []F) error {
	if len(src) != d.n || len(dst) != d.n {
		return fmt.Errorf("operator: dimension mismatch: n=%d len(src)=%d len(dst)=%d", d.n, len(src), len(dst))
	}
	for i := 0; i < d.n; i++ {
		row := d.data[i*d.n : i*d.n+d.n]
		dst[i] = kernel.Dot(row, src)
	}
	return nil
}

func abs[F kernel.Float](v F) F {
	if v < 0 {
		return -v
	}
	return v
}

// Package errs defines the typed error hierarchy shared by the lanczos,
// quadrature, and root slq packages, per the core's error handling design:
// every failure mode is a typed, wrappable error, never a sentinel value
// compared with ==.
package errs

import (
	"errors"
	"fmt"
)

// InvalidArgumentError indicates a precondition violation on the shapes
// or relations between ncv, orth, k, n_v, or num_threads.
type InvalidArgumentError struct {
	Msg string
}

func (e *InvalidArgumentError) Error() string { return "invalid argument: " + e.Msg }

// ZeroStartVectorError indicates the Lanczos starting probe had zero norm.
type ZeroStartVectorError struct{}

func (e *ZeroStartVectorError) Error() string { return "zero start vector" }

// NonFiniteInputError indicates alpha, beta, or a matvec output contained
// a NaN or Inf value.
type NonFiniteInputError struct {
	Where string // e.g. "alpha", "beta", "matvec"
}

func (e *NonFiniteInputError) Error() string {
	return fmt.Sprintf("non-finite input in %s", e.Where)
}

// OperatorFailureError wraps an error returned by the caller's
// LinearOperator.MatVec implementation.
type OperatorFailureError struct {
	Cause error
}

func (e *OperatorFailureError) Error() string { return fmt.Sprintf("operator failure: %v", e.Cause) }
func (e *OperatorFailureError) Unwrap() error { return e.Cause }

// ReducerFailureError wraps an error returned by the caller's reducer.
type ReducerFailureError struct {
	Sample int
	Cause  error
}

func (e *ReducerFailureError) Error() string {
	return fmt.Sprintf("reducer failure at sample %d: %v", e.Sample, e.Cause)
}
func (e *ReducerFailureError) Unwrap() error { return e.Cause }

// WrapOperator classifies an error returned by a matvec call. A
// NonFiniteInputError passes through unchanged; anything else is wrapped
// as an OperatorFailureError.
func WrapOperator(err error) error {
	if err == nil {
		return nil
	}
	var nf *NonFiniteInputError
	if errors.As(err, &nf) {
		return err
	}
	return &OperatorFailureError{Cause: err}
}

// WrapReducer classifies an error returned by a reducer call at sample i.
func WrapReducer(i int, err error) error {
	if err == nil {
		return nil
	}
	return &ReducerFailureError{Sample: i, Cause: err}
}

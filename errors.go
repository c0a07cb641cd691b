package slq

import (
	"errors"
	"fmt"

	"github.com/hupe1980/slq/errs"
)

// InvalidArgumentError indicates a precondition violation among n_v, k,
// ncv, orth, or num_threads.
type InvalidArgumentError = errs.InvalidArgumentError

// ZeroStartVectorError indicates a drawn probe had zero norm.
type ZeroStartVectorError = errs.ZeroStartVectorError

// NonFiniteInputError indicates a matvec, alpha, or beta value was NaN or
// infinite.
type NonFiniteInputError = errs.NonFiniteInputError

// OperatorFailureError wraps an error returned by the operator's MatVec.
type OperatorFailureError = errs.OperatorFailureError

// ReducerFailureError wraps an error returned by the caller's reducer,
// naming the sample index at which it occurred.
type ReducerFailureError = errs.ReducerFailureError

func translateError(sample int, err error) error {
	if err == nil {
		return nil
	}

	var ia *InvalidArgumentError
	if errors.As(err, &ia) {
		return err
	}
	var zs *ZeroStartVectorError
	if errors.As(err, &zs) {
		return fmt.Errorf("slq: sample %d: %w", sample, err)
	}
	var nf *NonFiniteInputError
	if errors.As(err, &nf) {
		return fmt.Errorf("slq: sample %d: %w", sample, err)
	}
	var of *OperatorFailureError
	if errors.As(err, &of) {
		return fmt.Errorf("slq: sample %d: %w", sample, err)
	}
	return err
}

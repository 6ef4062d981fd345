// Package results carries the success/failure envelope service operations
// return instead of raising business failures as errors.
package results

// OperationResult holds either a success or a failure payload. Exactly one
// side is set by a completed operation; both nil means the operation
// panicked or was short-circuited.
type OperationResult[S any, F any] struct {
	Success *S
	Failure *F
}

// NewSuccess wraps a success payload.
func NewSuccess[S any, F any](payload S) OperationResult[S, F] {
	return OperationResult[S, F]{Success: &payload}
}

// NewFailure wraps a failure payload.
func NewFailure[S any, F any](payload F) OperationResult[S, F] {
	return OperationResult[S, F]{Failure: &payload}
}

func (r OperationResult[S, F]) IsSuccess() bool { return r.Success != nil }

func (r OperationResult[S, F]) IsFailure() bool { return r.Failure != nil }

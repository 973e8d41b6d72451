package layerforge

import "errors"

// Sentinel errors shared by all sub-packages. Match with errors.Is.
var (
	// ErrValidation is returned for invalid or missing input to a layer
	// creation or transform operation.
	ErrValidation = errors.New("layerforge: invalid input")

	// ErrRender is returned when a pixel buffer cannot be allocated or drawn.
	ErrRender = errors.New("layerforge: render failed")

	// ErrIO is returned for storage, upload and backend failures.
	ErrIO = errors.New("layerforge: i/o failed")

	// ErrStateInconsistency reports host state that does not match what the
	// core expects, such as a mask editor that closed without a result.
	ErrStateInconsistency = errors.New("layerforge: inconsistent state")
)

// OpError records the operation that failed together with the underlying
// error. Unwrap exposes the sentinel for errors.Is.
type OpError struct {
	Op  string
	Err error
}

func (e *OpError) Error() string {
	if e.Err == nil {
		return e.Op
	}
	return e.Op + ": " + e.Err.Error()
}

func (e *OpError) Unwrap() error { return e.Err }

// Wrap returns an *OpError for op, or nil when err is nil.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &OpError{Op: op, Err: err}
}

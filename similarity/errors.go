package similarity

import "errors"

var (
	// ErrInvalidInput indicates an empty vector or a length mismatch.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedMetric indicates an unknown metric identifier.
	ErrUnsupportedMetric = errors.New("unsupported metric")

	// ErrDegenerateVector indicates a zero-norm vector, for which cosine is undefined.
	ErrDegenerateVector = errors.New("degenerate vector")
)

package similarity

import (
	"fmt"
	"math"
)

// CosineDistance returns 1 - dot(a, b) / (|a| * |b|).
// Identical directions score 0, orthogonal vectors 1 and opposite vectors 2.
func CosineDistance(a, b Vector) (float64, error) {
	if err := validatePair(a, b); err != nil {
		return 0, err
	}

	maxA, err := maxAbs(a)
	if err != nil {
		return 0, fmt.Errorf("first vector: %w", err)
	}
	maxB, err := maxAbs(b)
	if err != nil {
		return 0, fmt.Errorf("second vector: %w", err)
	}
	if maxA == 0 {
		return 0, fmt.Errorf("%w: first vector has zero norm", ErrDegenerateVector)
	}
	if maxB == 0 {
		return 0, fmt.Errorf("%w: second vector has zero norm", ErrDegenerateVector)
	}

	// Components are scaled into [-1, 1] so the sums can neither overflow
	// nor underflow to zero. The cosine is unchanged by the scaling.
	var dot, sumSqA, sumSqB float64
	for i := range a {
		x, y := a[i]/maxA, b[i]/maxB
		dot += x * y
		sumSqA += x * x
		sumSqB += y * y
	}

	// sqrt of the product keeps |v|*|v| exact for equal vectors.
	sim := dot / math.Sqrt(sumSqA*sumSqB)
	// Rounding can push |sim| slightly past 1.
	if sim > 1 {
		sim = 1
	} else if sim < -1 {
		sim = -1
	}
	return 1 - sim, nil
}

// maxAbs returns the largest absolute component of v.
func maxAbs(v Vector) (float64, error) {
	var m float64
	for i, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return 0, fmt.Errorf("%w: component %d is not finite", ErrInvalidInput, i)
		}
		if ax := math.Abs(x); ax > m {
			m = ax
		}
	}
	return m, nil
}

package similarity

import "fmt"

// Candidate is a vector to compare against a query, tagged with a caller id.
type Candidate struct {
	ID     string `json:"id" yaml:"id"`
	Vector Vector `json:"vector" yaml:"vector"`
}

// Result pairs a candidate id with its score.
type Result struct {
	ID    string  `json:"id"`
	Score float64 `json:"score"`
}

// Score computes the distance between query and candidate under metric.
func Score(query, candidate Vector, metric Metric) (float64, error) {
	fn, err := Lookup(metric)
	if err != nil {
		return 0, err
	}
	if err := validatePair(query, candidate); err != nil {
		return 0, err
	}
	return fn(query, candidate)
}

// Rank scores every candidate against query and returns the results in the
// order the candidates were given. The first failing candidate aborts the
// whole call.
func Rank(query Vector, candidates []Candidate, metric Metric) ([]Result, error) {
	fn, err := Lookup(metric)
	if err != nil {
		return nil, err
	}
	if len(query) == 0 {
		return nil, fmt.Errorf("%w: query vector is empty", ErrInvalidInput)
	}

	results := make([]Result, 0, len(candidates))
	for _, c := range candidates {
		if err := validatePair(query, c.Vector); err != nil {
			return nil, fmt.Errorf("candidate %q: %w", c.ID, err)
		}
		score, err := fn(query, c.Vector)
		if err != nil {
			return nil, fmt.Errorf("candidate %q: %w", c.ID, err)
		}
		results = append(results, Result{ID: c.ID, Score: score})
	}
	return results, nil
}

func validatePair(a, b Vector) error {
	if len(a) == 0 || len(b) == 0 {
		return fmt.Errorf("%w: empty vector", ErrInvalidInput)
	}
	if len(a) != len(b) {
		return fmt.Errorf("%w: length mismatch (%d vs %d)", ErrInvalidInput, len(a), len(b))
	}
	return nil
}

// Package similarity scores embedding vectors against each other.
package similarity

import (
	"fmt"
	"sort"
)

// Vector is an embedding produced by an external model for one piece of text.
type Vector []float64

// Metric names a comparison strategy.
type Metric string

const (
	// Cosine reports cosine distance (1 - cosine similarity), in [0, 2].
	Cosine Metric = "cosine"
)

// DefaultMetric is used when no metric is requested.
const DefaultMetric = Cosine

// DistanceFunc computes the distance between two validated vectors of equal,
// non-zero length. Lower values mean more similar.
type DistanceFunc func(a, b Vector) (float64, error)

// metrics is the closed set of supported strategies.
var metrics = map[Metric]DistanceFunc{
	Cosine: CosineDistance,
}

// Lookup returns the distance function registered for m.
func Lookup(m Metric) (DistanceFunc, error) {
	fn, ok := metrics[m]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedMetric, string(m))
	}
	return fn, nil
}

// ParseMetric converts a user-supplied identifier into a Metric.
// An empty string selects DefaultMetric.
func ParseMetric(s string) (Metric, error) {
	if s == "" {
		return DefaultMetric, nil
	}
	m := Metric(s)
	if _, err := Lookup(m); err != nil {
		return "", err
	}
	return m, nil
}

// Supported lists the registered metrics in name order.
func Supported() []Metric {
	out := make([]Metric, 0, len(metrics))
	for m := range metrics {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

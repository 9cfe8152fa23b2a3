package similarity

import (
	"errors"
	"math"
	"testing"
)

func TestRankPreservesOrder(t *testing.T) {
	query := Vector{1, 0}
	candidates := []Candidate{
		{ID: "opposite", Vector: Vector{-1, 0}},
		{ID: "same", Vector: Vector{2, 0}},
		{ID: "orthogonal", Vector: Vector{0, 3}},
		{ID: "diagonal", Vector: Vector{1, 1}},
	}

	results, err := Rank(query, candidates, Cosine)
	if err != nil {
		t.Fatalf("Rank() error = %v", err)
	}
	if len(results) != len(candidates) {
		t.Fatalf("got %d results, want %d", len(results), len(candidates))
	}

	want := []float64{2, 0, 1, 1 - math.Sqrt2/2}
	for i, r := range results {
		if r.ID != candidates[i].ID {
			t.Errorf("results[%d].ID = %q, want %q", i, r.ID, candidates[i].ID)
		}
		if math.Abs(r.Score-want[i]) > tolerance {
			t.Errorf("results[%d].Score = %v, want %v", i, r.Score, want[i])
		}
	}
}

func TestRankAbortsOnFirstFailure(t *testing.T) {
	query := Vector{1, 2, 3}

	tests := []struct {
		name       string
		candidates []Candidate
		wantErr    error
	}{
		{
			name: "length mismatch",
			candidates: []Candidate{
				{ID: "ok", Vector: Vector{3, 2, 1}},
				{ID: "short", Vector: Vector{1, 2, 3, 4}},
			},
			wantErr: ErrInvalidInput,
		},
		{
			name: "zero vector",
			candidates: []Candidate{
				{ID: "zero", Vector: Vector{0, 0, 0}},
				{ID: "ok", Vector: Vector{1, 1, 1}},
			},
			wantErr: ErrDegenerateVector,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := Rank(query, tt.candidates, Cosine)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Rank() error = %v, want %v", err, tt.wantErr)
			}
			if results != nil {
				t.Errorf("Rank() returned partial results %v", results)
			}
		})
	}
}

func TestRankEdgeCases(t *testing.T) {
	results, err := Rank(Vector{1}, nil, Cosine)
	if err != nil || len(results) != 0 {
		t.Errorf("no candidates: got %v, %v", results, err)
	}

	if _, err := Rank(Vector{}, []Candidate{{ID: "a", Vector: Vector{1}}}, Cosine); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("empty query: error = %v, want ErrInvalidInput", err)
	}

	if _, err := Rank(Vector{1}, []Candidate{{ID: "a", Vector: Vector{1}}}, "dot"); !errors.Is(err, ErrUnsupportedMetric) {
		t.Errorf("unknown metric: error = %v, want ErrUnsupportedMetric", err)
	}
}

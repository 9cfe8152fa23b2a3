package similarity

import (
	"errors"
	"math"
	"math/rand"
	"strconv"
	"testing"
)

const tolerance = 1e-9

// Test cosine distance with known vectors
func TestCosineDistance(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Vector
		expected float64
	}{
		{name: "orthogonal", a: Vector{1, 0}, b: Vector{0, 1}, expected: 1},
		{name: "identical", a: Vector{1, 1}, b: Vector{1, 1}, expected: 0},
		{name: "opposite", a: Vector{1, 0, 0}, b: Vector{-1, 0, 0}, expected: 2},
		{name: "45 degrees", a: Vector{1, 0}, b: Vector{1, 1}, expected: 1 - math.Sqrt2/2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Score(tt.a, tt.b, Cosine)
			if err != nil {
				t.Fatalf("Score() error = %v", err)
			}
			if math.Abs(got-tt.expected) > tolerance {
				t.Errorf("Score() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestCosineDistanceRejectsBadInput(t *testing.T) {
	if _, err := CosineDistance(Vector{1, 2, 3}, Vector{1, 2}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("length mismatch: got %v, want ErrInvalidInput", err)
	}
	if _, err := CosineDistance(Vector{math.NaN(), 1}, Vector{1, 1}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("NaN component: got %v, want ErrInvalidInput", err)
	}
	if _, err := Score(Vector{1, 1}, Vector{math.Inf(1), 1}, Cosine); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Inf component: got %v, want ErrInvalidInput", err)
	}
}

func TestCosineExtremeMagnitudes(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Vector
		expected float64
	}{
		{name: "huge self", a: Vector{1e200, 1e200}, b: Vector{1e200, 1e200}, expected: 0},
		{name: "tiny self", a: Vector{1e-170, 1e-170}, b: Vector{1e-170, 1e-170}, expected: 0},
		{name: "tiny scaled copy", a: Vector{1, 2}, b: Vector{1e-170, 2e-170}, expected: 0},
		{name: "huge scaled copy", a: Vector{3, -4}, b: Vector{3e300, -4e300}, expected: 0},
		{name: "subnormal", a: Vector{5e-324, 0}, b: Vector{1, 0}, expected: 0},
		{name: "huge opposite", a: Vector{1e300, 1e300}, b: Vector{-1e300, -1e300}, expected: 2},
		{name: "mixed orthogonal", a: Vector{1e-200, 0}, b: Vector{0, 1e200}, expected: 1},
		{name: "max float", a: Vector{math.MaxFloat64, math.MaxFloat64}, b: Vector{1, 1}, expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Score(tt.a, tt.b, Cosine)
			if err != nil {
				t.Fatalf("Score() error = %v", err)
			}
			if math.Abs(got-tt.expected) > tolerance {
				t.Errorf("Score() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestScoreExactValues(t *testing.T) {
	got, err := Score(Vector{1, 0}, Vector{0, 1}, Cosine)
	if err != nil || got != 1.0 {
		t.Errorf("orthogonal: got %v, %v; want 1.0", got, err)
	}

	got, err = Score(Vector{1, 1}, Vector{1, 1}, Cosine)
	if err != nil || got != 0.0 {
		t.Errorf("identical: got %v, %v; want 0.0", got, err)
	}
}

func TestScoreErrors(t *testing.T) {
	tests := []struct {
		name    string
		a, b    Vector
		metric  Metric
		wantErr error
	}{
		{name: "length mismatch", a: Vector{1, 2, 3}, b: Vector{1, 2, 3, 4}, metric: Cosine, wantErr: ErrInvalidInput},
		{name: "empty query", a: Vector{}, b: Vector{1}, metric: Cosine, wantErr: ErrInvalidInput},
		{name: "empty candidate", a: Vector{1}, b: nil, metric: Cosine, wantErr: ErrInvalidInput},
		{name: "zero query", a: Vector{0, 0, 0}, b: Vector{1, 2, 3}, metric: Cosine, wantErr: ErrDegenerateVector},
		{name: "zero candidate", a: Vector{1, 2, 3}, b: Vector{0, 0, 0}, metric: Cosine, wantErr: ErrDegenerateVector},
		{name: "euclidean", a: Vector{1, 2}, b: Vector{2, 1}, metric: "euclidean", wantErr: ErrUnsupportedMetric},
		{name: "empty metric", a: Vector{1, 2}, b: Vector{2, 1}, metric: "", wantErr: ErrUnsupportedMetric},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Score(tt.a, tt.b, tt.metric)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Score() error = %v, want %v", err, tt.wantErr)
			}
			if math.IsNaN(got) || math.IsInf(got, 0) {
				t.Errorf("Score() leaked non-finite value %v", got)
			}
		})
	}
}

func randomVector(r *rand.Rand, dim int) Vector {
	v := make(Vector, dim)
	for {
		var norm float64
		for i := range v {
			v[i] = r.NormFloat64()
			norm += v[i] * v[i]
		}
		if norm > 0 {
			return v
		}
	}
}

func scale(v Vector, k float64) Vector {
	out := make(Vector, len(v))
	for i := range v {
		out[i] = v[i] * k
	}
	return out
}

func TestCosineProperties(t *testing.T) {
	r := rand.New(rand.NewSource(42))

	for i := 0; i < 500; i++ {
		dim := 1 + r.Intn(64)
		a := randomVector(r, dim)
		b := randomVector(r, dim)

		self, err := Score(a, a, Cosine)
		if err != nil || math.Abs(self) > tolerance {
			t.Fatalf("self distance = %v, %v; want 0", self, err)
		}

		k := math.Pow(10, float64(r.Intn(600)-300)) * (1 + r.Float64())
		scaled, err := Score(a, scale(a, k), Cosine)
		if err != nil || math.Abs(scaled) > tolerance {
			t.Fatalf("scaled distance (k=%v) = %v, %v; want 0", k, scaled, err)
		}

		opposite, err := Score(a, scale(a, -1), Cosine)
		if err != nil || math.Abs(opposite-2) > tolerance {
			t.Fatalf("opposite distance = %v, %v; want 2", opposite, err)
		}

		ab, err1 := Score(a, b, Cosine)
		ba, err2 := Score(b, a, Cosine)
		if err1 != nil || err2 != nil {
			t.Fatalf("unexpected errors: %v, %v", err1, err2)
		}
		if ab != ba {
			t.Fatalf("asymmetric: score(a,b)=%v score(b,a)=%v", ab, ba)
		}
		if ab < 0 || ab > 2 {
			t.Fatalf("distance %v out of [0, 2]", ab)
		}
	}
}

func TestScoreDoesNotMutateInputs(t *testing.T) {
	a := Vector{3, 4}
	b := Vector{-1, 2}
	if _, err := Score(a, b, Cosine); err != nil {
		t.Fatal(err)
	}
	if a[0] != 3 || a[1] != 4 || b[0] != -1 || b[1] != 2 {
		t.Errorf("inputs mutated: a=%v b=%v", a, b)
	}
}

func TestParseMetric(t *testing.T) {
	m, err := ParseMetric("")
	if err != nil || m != Cosine {
		t.Errorf("ParseMetric(\"\") = %q, %v; want cosine", m, err)
	}

	m, err = ParseMetric("cosine")
	if err != nil || m != Cosine {
		t.Errorf("ParseMetric(cosine) = %q, %v", m, err)
	}

	if _, err := ParseMetric("manhattan"); !errors.Is(err, ErrUnsupportedMetric) {
		t.Errorf("ParseMetric(manhattan) error = %v, want ErrUnsupportedMetric", err)
	}
}

func TestSupported(t *testing.T) {
	got := Supported()
	if len(got) != 1 || got[0] != Cosine {
		t.Errorf("Supported() = %v, want [cosine]", got)
	}
}

func BenchmarkScore(b *testing.B) {
	for _, dims := range []int{384, 1536, 3072} {
		q := make(Vector, dims)
		c := make(Vector, dims)
		for i := range q {
			q[i] = float64(i%7) + 0.5
			c[i] = float64(i%11) - 0.25
		}

		b.Run(strconv.Itoa(dims), func(b *testing.B) {
			for b.Loop() {
				if _, err := Score(q, c, Cosine); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

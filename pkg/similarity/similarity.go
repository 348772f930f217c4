package similarity

import (
	"errors"
	"fmt"
	"math"
)

// Dot returns the dot product of a and b.
func Dot[V ~[]float64](a, b V) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d != %d", ErrDimensionMismatch, len(a), len(b))
	}
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum, nil
}

// Magnitude returns the Euclidean norm of v.
func Magnitude[V ~[]float64](v V) float64 {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}

// Cosine returns dot(a, b) / (|a| * |b|), clamped to [-1, 1].
func Cosine[V ~[]float64](a, b V) (float64, error) {
	dot, err := Dot(a, b)
	if err != nil {
		return 0, err
	}
	ma, mb := Magnitude(a), Magnitude(b)
	if ma == 0 || mb == 0 {
		return 0, ErrZeroMagnitude
	}
	return clamp(dot / (ma * mb)), nil
}

// FindMostSimilar returns the index of the corpus entry closest to query and its score.
// Ties go to the lowest index. Zero-magnitude corpus entries are never selected.
func FindMostSimilar[V ~[]float64](query V, corpus []V) (int, float64, error) {
	if len(corpus) == 0 {
		return -1, 0, ErrEmptyCorpus
	}
	if Magnitude(query) == 0 {
		return -1, 0, ErrZeroMagnitude
	}

	best, bestScore := -1, math.Inf(-1)
	for i, candidate := range corpus {
		score, err := Cosine(query, candidate)
		if err != nil {
			if errors.Is(err, ErrZeroMagnitude) {
				continue
			}
			return -1, 0, fmt.Errorf("corpus entry %d: %w", i, err)
		}
		// strict comparison keeps the first occurrence on ties
		if score > bestScore {
			best, bestScore = i, score
		}
	}

	if best < 0 {
		return -1, 0, ErrZeroMagnitude
	}
	return best, bestScore, nil
}

// NormalizeVector returns a new vector with the direction of v and unit magnitude.
func NormalizeVector[V ~[]float64](v V) (V, error) {
	m := Magnitude(v)
	if m == 0 {
		return nil, ErrZeroMagnitude
	}
	out := make(V, len(v))
	for i, x := range v {
		out[i] = x / m
	}
	return out, nil
}

// Normalize returns unit-magnitude copies of vs. The inputs are not modified.
func Normalize[V ~[]float64](vs []V) ([]V, error) {
	out := make([]V, len(vs))
	for i, v := range vs {
		n, err := NormalizeVector(v)
		if err != nil {
			return nil, fmt.Errorf("vector %d: %w", i, err)
		}
		out[i] = n
	}
	return out, nil
}

func clamp(x float64) float64 {
	return math.Max(-1, math.Min(1, x))
}

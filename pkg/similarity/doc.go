// Package similarity compares embedding vectors.
//
// All functions are generic over ~[]float64 so they accept embedding.Vector
// as well as plain slices. Cosine similarity is undefined for zero vectors;
// such inputs are reported with ErrZeroMagnitude instead of producing NaN.
//
//	idx, score, err := similarity.FindMostSimilar(query, corpus)
//	unit, err := similarity.Normalize(corpus)
package similarity

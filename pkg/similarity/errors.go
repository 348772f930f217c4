package similarity

import "errors"

var (
	ErrZeroMagnitude     = errors.New("vector has zero magnitude")
	ErrDimensionMismatch = errors.New("vectors have different dimensions")
	ErrEmptyCorpus       = errors.New("corpus is empty")
)

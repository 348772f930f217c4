package tokenizer

import "errors"

var (
	ErrUnknownModel = errors.New("no tokenizer encoding for model")
	ErrEmptyModel   = errors.New("model name cannot be empty")
)

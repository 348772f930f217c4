package tutor

import "errors"

var (
	ErrManagerNotSet     = errors.New("prompt manager not set")
	ErrLibraryNotSet     = errors.New("template library not set")
	ErrIncompleteRequest = errors.New("question, correct answer and incorrect answer are required")
	ErrAnswersMatch      = errors.New("correct and incorrect answers are the same")
	ErrNoActiveHint      = errors.New("no hint has been requested yet")
	ErrEmptyQuery        = errors.New("empty follow-up query")
)

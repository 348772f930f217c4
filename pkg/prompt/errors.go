package prompt

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidState        = errors.New("operation not allowed in current state")
	ErrEmptyTemplate       = errors.New("template has no messages")
	ErrInvalidRole         = errors.New("invalid message role")
	ErrNoRetrievalStrategy = errors.New("retrieval strategy not set")
	ErrTemplateNotFound    = errors.New("template not found")
	ErrInvalidLibrary      = errors.New("invalid template library")
)

// StateError reports an operation attempted in a state that does not permit it.
type StateError struct {
	Op    string
	State State
}

func (e *StateError) Error() string {
	return fmt.Sprintf("cannot %s in state %q", e.Op, e.State)
}

func (e *StateError) Is(target error) bool {
	return target == ErrInvalidState
}

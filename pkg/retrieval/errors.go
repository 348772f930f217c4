package retrieval

import (
	"errors"
	"fmt"
)

var (
	ErrMissingSlot    = errors.New("missing slot")
	ErrEmbedderNotSet = errors.New("embedder not set")
	ErrInvalidMapping = errors.New("invalid slot mapping")
	ErrMappingsFile   = errors.New("failed to load slot mappings")
)

// MissingSlotError reports a template placeholder that has no resolution.
type MissingSlotError struct {
	Slot   string
	Reason string
}

func (e *MissingSlotError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("missing slot %q: %s", e.Slot, e.Reason)
	}
	return fmt.Sprintf("missing slot %q", e.Slot)
}

func (e *MissingSlotError) Is(target error) bool {
	return target == ErrMissingSlot
}

package retrieval

import (
	"context"
	"maps"
	"regexp"
	"strings"
)

// SlotMap holds the current text for each named slot.
type SlotMap map[string]string

// Clone returns an independent copy. A nil map clones to an empty one.
func (m SlotMap) Clone() SlotMap {
	out := make(SlotMap, len(m))
	maps.Copy(out, m)
	return out
}

// Strategy resolves the placeholders of a template against a slot map.
type Strategy interface {
	// UpdateMap replaces the live slot values.
	UpdateMap(values SlotMap)
	// Map returns a copy of the live slot values.
	Map() SlotMap
	// ResolveSlots substitutes every {slot} placeholder in text.
	ResolveSlots(ctx context.Context, text string) (string, error)
}

var placeholderPattern = regexp.MustCompile(`\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Placeholders returns the distinct slot names referenced by text, in order of first appearance.
func Placeholders(text string) []string {
	var names []string
	seen := make(map[string]bool)
	for _, m := range placeholderPattern.FindAllStringSubmatch(text, -1) {
		if name := m[1]; !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	return names
}

// ResolveFunc produces the replacement text for one slot.
type ResolveFunc func(ctx context.Context, slot string) (string, error)

// Substitute resolves every placeholder in text with resolve, then applies all
// replacements in one pass. Replacement values are never scanned for further
// placeholders, so retrieved text containing braces is inserted verbatim.
func Substitute(ctx context.Context, text string, resolve ResolveFunc) (string, error) {
	names := Placeholders(text)
	if len(names) == 0 {
		return text, nil
	}

	pairs := make([]string, 0, 2*len(names))
	for _, name := range names {
		value, err := resolve(ctx, name)
		if err != nil {
			return "", err
		}
		pairs = append(pairs, "{"+name+"}", value)
	}

	return strings.NewReplacer(pairs...).Replace(text), nil
}

// Literal resolves each placeholder to the slot map value of the same name.
type Literal struct {
	slots SlotMap
}

// NewLiteral creates a Literal strategy seeded with initial.
func NewLiteral(initial SlotMap) *Literal {
	return &Literal{slots: initial.Clone()}
}

func (l *Literal) UpdateMap(values SlotMap) {
	l.slots = values.Clone()
}

func (l *Literal) Map() SlotMap {
	return l.slots.Clone()
}

// ResolveSlots fails with *MissingSlotError when a placeholder is not in the map.
// A slot present with an empty value resolves to the empty string.
func (l *Literal) ResolveSlots(ctx context.Context, text string) (string, error) {
	return Substitute(ctx, text, l.lookup)
}

func (l *Literal) lookup(_ context.Context, slot string) (string, error) {
	value, ok := l.slots[slot]
	if !ok {
		return "", &MissingSlotError{Slot: slot, Reason: "no value in slot map"}
	}
	return value, nil
}

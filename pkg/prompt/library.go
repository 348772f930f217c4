package prompt

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed templates.yaml
var defaultTemplates []byte

// Entry is a named intro template.
type Entry struct {
	Name       string   `yaml:"name"`
	PrettyName string   `yaml:"pretty_name"`
	Messages   Template `yaml:"messages"`
}

// Library holds intro templates keyed by name.
type Library struct {
	entries map[string]Entry
}

// LoadLibrary parses a YAML list of entries. Names must be unique and every
// entry needs at least one message with a known role.
func LoadLibrary(r io.Reader) (*Library, error) {
	var entries []Entry
	if err := yaml.NewDecoder(r).Decode(&entries); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %w", ErrInvalidLibrary, err)
	}

	lib := &Library{entries: make(map[string]Entry, len(entries))}
	for i, e := range entries {
		if e.Name == "" {
			return nil, fmt.Errorf("%w: entry %d has no name", ErrInvalidLibrary, i)
		}
		if _, dup := lib.entries[e.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate entry %q", ErrInvalidLibrary, e.Name)
		}
		if err := e.Messages.Validate(); err != nil {
			return nil, fmt.Errorf("%w: entry %q: %w", ErrInvalidLibrary, e.Name, err)
		}
		if e.PrettyName == "" {
			e.PrettyName = e.Name
		}
		lib.entries[e.Name] = e
	}

	return lib, nil
}

// DefaultLibrary returns the built-in hint templates.
func DefaultLibrary() *Library {
	lib, err := LoadLibrary(bytes.NewReader(defaultTemplates))
	if err != nil {
		panic(fmt.Sprintf("prompt: embedded templates: %v", err))
	}
	return lib
}

// Get returns a copy of the named entry.
func (l *Library) Get(name string) (Entry, error) {
	e, ok := l.entries[name]
	if !ok {
		return Entry{}, fmt.Errorf("%w: %q", ErrTemplateNotFound, name)
	}
	e.Messages = cloneMessages(e.Messages)
	return e, nil
}

// Names returns all entry names, sorted.
func (l *Library) Names() []string {
	names := make([]string, 0, len(l.entries))
	for name := range l.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (l *Library) Len() int {
	return len(l.entries)
}

package prompt

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dmitrymomot/tutorkit/pkg/logger"
	"github.com/dmitrymomot/tutorkit/pkg/retrieval"
)

// Manager assembles the message list for one conversation: an intro template
// rendered through a retrieval strategy, followed by the stored exchange.
// A Manager belongs to a single session and is not safe for concurrent use.
type Manager struct {
	strategy retrieval.Strategy
	intro    Template
	exchange []Message
	sm       *machine
	log      *slog.Logger
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

func WithLogger(l *slog.Logger) ManagerOption {
	return func(m *Manager) {
		if l != nil {
			m.log = l
		}
	}
}

// NewManager creates a Manager in StateEmpty. strategy may be nil and set later.
func NewManager(strategy retrieval.Strategy, opts ...ManagerOption) *Manager {
	m := &Manager{
		strategy: strategy,
		sm:       newMachine(),
		log:      logger.Discard(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.log = m.log.With(logger.Component("prompt"))
	return m
}

func (m *Manager) SetRetrievalStrategy(s retrieval.Strategy) {
	m.strategy = s
}

func (m *Manager) RetrievalStrategy() retrieval.Strategy {
	return m.strategy
}

func (m *Manager) State() State {
	return m.sm.current
}

// SetIntroMessages replaces the intro template and clears the stored exchange.
func (m *Manager) SetIntroMessages(t Template) error {
	if err := t.Validate(); err != nil {
		return err
	}
	if err := m.sm.fire(eventSetIntro, "set intro messages"); err != nil {
		return err
	}
	m.intro = cloneMessages(t)
	m.exchange = nil
	return nil
}

// IntroMessages returns a copy of the unrendered intro template.
func (m *Manager) IntroMessages() Template {
	return cloneMessages(m.intro)
}

// AddStoredMessage appends msg to the exchange. An intro must be set first.
func (m *Manager) AddStoredMessage(msg Message) error {
	if !msg.Role.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidRole, msg.Role)
	}
	if err := m.sm.fire(eventAddMessage, "add stored message"); err != nil {
		return err
	}
	m.exchange = append(m.exchange, msg)
	return nil
}

// ClearStoredMessages drops the exchange and keeps the intro.
func (m *Manager) ClearStoredMessages() {
	// clear is defined for every state
	_ = m.sm.fire(eventClear, "clear stored messages")
	m.exchange = nil
}

// Snapshot is a saved copy of a Manager's intro, exchange and state.
type Snapshot struct {
	intro    Template
	exchange []Message
	state    State
}

// Snapshot captures the current intro, exchange and state for Restore.
func (m *Manager) Snapshot() Snapshot {
	return Snapshot{
		intro:    cloneMessages(m.intro),
		exchange: cloneMessages(m.exchange),
		state:    m.sm.current,
	}
}

// Restore puts back a Snapshot taken from this Manager. The retrieval
// strategy is not part of it.
func (m *Manager) Restore(snap Snapshot) {
	m.intro = cloneMessages(snap.intro)
	m.exchange = cloneMessages(snap.exchange)
	m.sm.current = snap.state
	if m.sm.current == "" {
		m.sm.current = StateEmpty
	}
}

// StoredMessages returns a copy of the exchange.
func (m *Manager) StoredMessages() []Message {
	return cloneMessages(m.exchange)
}

// BuildQuery renders the intro through the retrieval strategy and appends the
// stored exchange. A non-blank userInput is appended as a user turn and also
// recorded in the exchange. On error the manager is left unchanged.
func (m *Manager) BuildQuery(ctx context.Context, userInput string) ([]Message, error) {
	if !m.sm.canFire(eventBuild) {
		return nil, &StateError{Op: "build query", State: m.sm.current}
	}
	if m.strategy == nil {
		return nil, ErrNoRetrievalStrategy
	}

	out := make([]Message, 0, len(m.intro)+len(m.exchange)+1)
	for i, msg := range m.intro {
		content, err := m.strategy.ResolveSlots(ctx, msg.Content)
		if err != nil {
			return nil, fmt.Errorf("render intro message %d: %w", i, err)
		}
		out = append(out, Message{Role: msg.Role, Content: content})
	}
	out = append(out, m.exchange...)

	if strings.TrimSpace(userInput) != "" {
		turn := UserMessage(userInput)
		if err := m.sm.fire(eventAddMessage, "add user message"); err != nil {
			return nil, err
		}
		m.exchange = append(m.exchange, turn)
		out = append(out, turn)
	}

	m.log.DebugContext(ctx, "query built",
		slog.Int("messages", len(out)),
		slog.String("state", m.sm.current.String()),
	)

	return out, nil
}

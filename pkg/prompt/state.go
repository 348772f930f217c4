package prompt

// State is the lifecycle position of a Manager.
type State string

const (
	// StateEmpty has no intro template. Only SetIntroMessages is allowed.
	StateEmpty State = "empty"
	// StateReady has an intro template and no stored exchange.
	StateReady State = "ready"
	// StateActive has an intro template and at least one stored message.
	StateActive State = "active"
)

func (s State) String() string {
	return string(s)
}

type event string

const (
	eventSetIntro   event = "set_intro"
	eventAddMessage event = "add_message"
	eventClear      event = "clear"
	eventBuild      event = "build"
)

// transitions maps from-state and event to the target state.
// A missing entry means the event is not allowed in that state.
var transitions = map[State]map[event]State{
	StateEmpty: {
		eventSetIntro: StateReady,
		eventClear:    StateEmpty,
	},
	StateReady: {
		eventSetIntro:   StateReady,
		eventAddMessage: StateActive,
		eventClear:      StateReady,
		eventBuild:      StateReady,
	},
	StateActive: {
		eventSetIntro:   StateReady,
		eventAddMessage: StateActive,
		eventClear:      StateReady,
		eventBuild:      StateActive,
	},
}

// machine is a minimal table-driven state machine. Not safe for concurrent use.
type machine struct {
	current State
}

func newMachine() *machine {
	return &machine{current: StateEmpty}
}

func (m *machine) target(e event) (State, bool) {
	to, ok := transitions[m.current][e]
	return to, ok
}

func (m *machine) canFire(e event) bool {
	_, ok := m.target(e)
	return ok
}

// fire moves to the target state of e or reports a *StateError naming op.
func (m *machine) fire(e event, op string) error {
	to, ok := m.target(e)
	if !ok {
		return &StateError{Op: op, State: m.current}
	}
	m.current = to
	return nil
}

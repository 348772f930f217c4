// Package prompt builds the message list sent to a chat completion endpoint.
//
// A Manager combines an intro Template, whose message contents carry
// {slot} placeholders, with the stored exchange of user and assistant turns.
// At build time every intro message is rendered through a
// retrieval.Strategy; stored turns are appended unchanged.
//
// The manager moves through three states:
//
//	empty  --SetIntroMessages-->  ready  --AddStoredMessage-->  active
//	                               ^                              |
//	                               +----ClearStoredMessages-------+
//
// BuildQuery is rejected in the empty state with a *StateError that matches
// ErrInvalidState. SetIntroMessages from any state resets to ready.
//
// Intro templates are usually taken from a Library loaded from YAML.
// DefaultLibrary exposes the built-in hint templates:
//
//	lib := prompt.DefaultLibrary()
//	entry, err := lib.Get("hint_sequence")
//	m := prompt.NewManager(retrieval.NewLiteral(slots))
//	_ = m.SetIntroMessages(entry.Messages)
//	messages, err := m.BuildQuery(ctx, "")
package prompt

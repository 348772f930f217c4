package prompt

import (
	"fmt"
	"strings"
)

// Role identifies the author of a chat message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant:
		return true
	}
	return false
}

// Message is a single chat turn.
type Message struct {
	Role    Role   `json:"role" yaml:"role"`
	Content string `json:"content" yaml:"content"`
}

func SystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

func AssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

// Template is an ordered list of messages whose content may hold {slot} placeholders.
type Template []Message

// Validate checks that t is non-empty and every role is known.
func (t Template) Validate() error {
	if len(t) == 0 {
		return ErrEmptyTemplate
	}
	for i, m := range t {
		if !m.Role.Valid() {
			return fmt.Errorf("%w: message %d has role %q", ErrInvalidRole, i, m.Role)
		}
	}
	return nil
}

// ConversationString renders messages as "role: content" blocks separated by blank lines.
func ConversationString(messages []Message) string {
	blocks := make([]string, len(messages))
	for i, m := range messages {
		blocks[i] = string(m.Role) + ": " + m.Content
	}
	return strings.Join(blocks, "\n\n")
}

func cloneMessages(in []Message) []Message {
	if in == nil {
		return nil
	}
	return append([]Message(nil), in...)
}

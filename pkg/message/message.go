// Package message provides a neutral chat message format shared by all
// inference backends, so game code never depends on a provider SDK's types.
package message

import (
	"fmt"
	"time"
)

// ChatMessage is one exchange entry with a role and plain-text content.
type ChatMessage struct {
	typ       MessageType
	content   string
	timestamp time.Time
}

// New creates a chat message with the current timestamp.
func New(typ MessageType, content string) ChatMessage {
	return ChatMessage{
		typ:       typ,
		content:   content,
		timestamp: time.Now(),
	}
}

// NewSystem creates a system-role message.
func NewSystem(content string) ChatMessage {
	return New(MessageTypeSystem, content)
}

// NewUser creates a user-role message.
func NewUser(content string) ChatMessage {
	return New(MessageTypeUser, content)
}

// NewAssistant creates an assistant-role message.
func NewAssistant(content string) ChatMessage {
	return New(MessageTypeAssistant, content)
}

func (m ChatMessage) Type() MessageType    { return m.typ }
func (m ChatMessage) Content() string      { return m.content }
func (m ChatMessage) Timestamp() time.Time { return m.timestamp }

func (m ChatMessage) String() string {
	return fmt.Sprintf("[%s] %s", m.typ, m.content)
}

// Exchange builds the two-message conversation every game decision uses:
// one system context followed by one user prompt.
func Exchange(systemContext, prompt string) []ChatMessage {
	return []ChatMessage{
		NewSystem(systemContext),
		NewUser(prompt),
	}
}

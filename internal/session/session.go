package session

import (
	"time"

	"github.com/google/uuid"
)

// Role identifies the author of a message
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message represents a single chat message
type Message struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Conversation is the ordered history sent to the backend on every turn.
// The first element is always the system message.
type Conversation struct {
	ID       string
	system   Message
	messages []Message
}

// New starts a conversation seeded with the given system prompt
func New(systemPrompt string) *Conversation {
	c := &Conversation{
		system: Message{Role: RoleSystem, Content: systemPrompt},
	}
	c.Reset()
	return c
}

// Reset discards the history and starts over from the system message.
// A fresh ID is assigned so telemetry can tell conversations apart.
func (c *Conversation) Reset() {
	c.ID = uuid.NewString()
	sys := c.system
	sys.Timestamp = time.Now()
	c.messages = []Message{sys}
}

// Append adds one message to the end of the history
func (c *Conversation) Append(role Role, content string) Message {
	msg := Message{
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	}
	c.messages = append(c.messages, msg)
	return msg
}

// Messages returns a copy of the history
func (c *Conversation) Messages() []Message {
	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Len returns the number of messages including the system message
func (c *Conversation) Len() int {
	return len(c.messages)
}

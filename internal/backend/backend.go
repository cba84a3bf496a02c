package backend

import (
	"context"
	"fmt"
	"strings"

	"CohereChat/internal/session"
)

// Client sends the full conversation to a chat provider and returns the
// assistant text. Failures are always *Error values.
type Client interface {
	Send(ctx context.Context, model string, history []session.Message, temperature float64) (string, error)
}

// ChatMessage is a role-tagged message on the wire
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ContentBlock is one element of a structured assistant message
type ContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// ReplyMessage is the nested assistant message of a chat response
type ReplyMessage struct {
	Role    string         `json:"role"`
	Content []ContentBlock `json:"content"`
}

// Reply carries the two shapes a provider may use for assistant content:
// a nested message (preferred) and a flat text field.
type Reply struct {
	Message *ReplyMessage
	Text    string
}

// Content returns the nested message text when present and non-empty,
// otherwise the flat text. Both empty yields "".
func (r Reply) Content() string {
	if r.Message != nil {
		var b strings.Builder
		for _, block := range r.Message.Content {
			if block.Type != "" && block.Type != "text" {
				continue
			}
			b.WriteString(block.Text)
		}
		if b.Len() > 0 {
			return b.String()
		}
	}
	return r.Text
}

func toChatMessages(history []session.Message) []ChatMessage {
	out := make([]ChatMessage, len(history))
	for i, msg := range history {
		out[i] = ChatMessage{Role: string(msg.Role), Content: msg.Content}
	}
	return out
}

// validateRequest checks the preconditions shared by every backend
func validateRequest(history []session.Message, temperature float64) error {
	if len(history) == 0 {
		return invalidRequest("history is empty")
	}
	if history[0].Role != session.RoleSystem {
		return invalidRequest(fmt.Sprintf("history must start with a system message, got %q", history[0].Role))
	}
	if temperature < 0 || temperature > 1 {
		return invalidRequest(fmt.Sprintf("temperature %.2f out of range [0,1]", temperature))
	}
	return nil
}

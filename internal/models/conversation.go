// internal/models/conversation.go
package models

import (
	"strings"
	"time"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ConversationMessage is one turn of the chat transcript. The transcript is
// append-only and owned by the session; workers only ever read it.
type ConversationMessage struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// TranscriptWindow returns the trailing n messages of the transcript, or the
// whole transcript when it is shorter.
func TranscriptWindow(messages []ConversationMessage, n int) []ConversationMessage {
	if n <= 0 || len(messages) <= n {
		return messages
	}
	return messages[len(messages)-n:]
}

// TranscriptBlob flattens messages into "<role>: <content>" lines, preserving
// order, lower-cased for case-insensitive rule matching.
func TranscriptBlob(messages []ConversationMessage) string {
	var b strings.Builder
	for i, msg := range messages {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(msg.Role)
		b.WriteString(": ")
		b.WriteString(msg.Content)
	}
	return strings.ToLower(b.String())
}

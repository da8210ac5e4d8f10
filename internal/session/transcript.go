package session

import (
	"strings"
	"sync"

	"github.com/google/uuid"

	"studyflow/backend/internal/clock"
	"studyflow/backend/internal/model"
)

// Transcript is the chat history shown next to the assistant. User messages
// are appended before the answer arrives and removed again when the question
// fails.
type Transcript struct {
	mu       sync.Mutex
	clock    clock.Clock
	messages []model.ChatMessage
}

func NewTranscript(c clock.Clock) *Transcript {
	if c == nil {
		c = clock.Real{}
	}
	return &Transcript{clock: c, messages: []model.ChatMessage{}}
}

func (t *Transcript) Append(role, content string) model.ChatMessage {
	t.mu.Lock()
	defer t.mu.Unlock()

	msg := model.ChatMessage{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   strings.TrimSpace(content),
		CreatedAt: t.clock.Now(),
	}
	t.messages = append(t.messages, msg)
	return msg
}

// Remove drops the message with the given id. It reports whether anything was
// removed.
func (t *Transcript) Remove(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i := range t.messages {
		if t.messages[i].ID == id {
			t.messages = append(t.messages[:i:i], t.messages[i+1:]...)
			return true
		}
	}
	return false
}

func (t *Transcript) Messages() []model.ChatMessage {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]model.ChatMessage, len(t.messages))
	copy(out, t.messages)
	return out
}

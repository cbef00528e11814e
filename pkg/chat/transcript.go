// Package chat implements the turn cycle shared by every hospitalchat front
// end: the in-memory transcript and the session that submits prompts to the
// agent.
package chat

import "sync"

// Role identifies who authored a Message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one transcript entry. User messages only carry Output.
type Message struct {
	Role           Role   `json:"role"`
	Output         string `json:"output"`
	Explanation    string `json:"explanation,omitempty"`
	HasExplanation bool   `json:"-"`

	// Failed marks an assistant message that carries FallbackMessage
	// because the agent call failed.
	Failed bool `json:"-"`
}

// Transcript is an append-only, ordered list of messages.
// It is safe for concurrent use.
type Transcript struct {
	mu       sync.Mutex
	messages []Message

	// turn serializes Session.Submit calls that share this transcript so a
	// user message is always followed by its own reply.
	turn sync.Mutex
}

// NewTranscript returns an empty transcript.
func NewTranscript() *Transcript {
	return &Transcript{}
}

// Append adds m to the end of the transcript.
func (t *Transcript) Append(m Message) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.messages = append(t.messages, m)
}

// Messages returns a copy of the transcript in insertion order.
func (t *Transcript) Messages() []Message {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]Message, len(t.messages))
	copy(out, t.messages)
	return out
}

// Len returns the number of messages.
func (t *Transcript) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.messages)
}

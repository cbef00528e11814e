package chat

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/papercomputeco/hospitalchat/pkg/agent"
)

// FallbackMessage replaces both the answer and the explanation whenever a
// turn fails for any reason.
const FallbackMessage = "An error occurred while processing your message. " +
	"Please try again or rephrase your message."

// Querier sends one prompt to the agent.
type Querier interface {
	Query(ctx context.Context, text string) (*agent.Response, error)
}

// Reply is the assistant side of a turn.
type Reply struct {
	Output      string `json:"output"`
	Explanation string `json:"intermediate_steps"`

	// Failed is set when Output is FallbackMessage because the call failed.
	Failed bool `json:"-"`

	Elapsed time.Duration `json:"-"`
}

// Session runs turns against a Querier and records them on a Transcript.
type Session struct {
	querier    Querier
	transcript *Transcript
	logger     *slog.Logger
}

// NewSession creates a session. A nil transcript starts a fresh one.
func NewSession(q Querier, t *Transcript, logger *slog.Logger) *Session {
	if t == nil {
		t = NewTranscript()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Session{
		querier:    q,
		transcript: t,
		logger:     logger,
	}
}

// Transcript returns the session's transcript.
func (s *Session) Transcript() *Transcript {
	return s.transcript
}

// Submit appends prompt to the transcript, asks the agent once, appends the
// assistant message and returns it. Any failure yields FallbackMessage for
// both fields. Turns on the same transcript run one at a time.
func (s *Session) Submit(ctx context.Context, prompt string) Reply {
	s.transcript.turn.Lock()
	defer s.transcript.turn.Unlock()

	s.transcript.Append(Message{Role: RoleUser, Output: prompt})

	start := time.Now()
	reply := s.ask(ctx, prompt)
	reply.Elapsed = time.Since(start)

	s.transcript.Append(Message{
		Role:           RoleAssistant,
		Output:         reply.Output,
		Explanation:    reply.Explanation,
		HasExplanation: true,
		Failed:         reply.Failed,
	})

	return reply
}

func (s *Session) ask(ctx context.Context, prompt string) Reply {
	resp, err := s.querier.Query(ctx, prompt)
	if err != nil {
		s.logFailure(err)
		return Reply{
			Output:      FallbackMessage,
			Explanation: FallbackMessage,
			Failed:      true,
		}
	}

	return Reply{
		Output:      resp.Output,
		Explanation: resp.Explanation(),
	}
}

func (s *Session) logFailure(err error) {
	var statusErr *agent.StatusError
	switch {
	case errors.As(err, &statusErr):
		s.logger.Warn("agent returned non-200 status", "status", statusErr.StatusCode, "error", err)
	case errors.Is(err, agent.ErrDecode):
		s.logger.Warn("agent response could not be decoded", "error", err)
	case errors.Is(err, context.Canceled):
		s.logger.Info("agent call canceled")
	case errors.Is(err, context.DeadlineExceeded):
		s.logger.Warn("agent call timed out", "error", err)
	default:
		s.logger.Warn("agent call failed", "error", err)
	}
}

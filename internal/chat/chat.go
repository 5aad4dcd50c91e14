// Package chat maintains the post-analysis conversation transcript. Every
// exchange is bound to the result identifier of one completed analysis; the
// transcript is append-only and survives transport failures.
package chat

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/speakclear-dev/speakclear/internal/api"
	"github.com/speakclear-dev/speakclear/internal/locale"
)

// Role identifies the author of a transcript message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one transcript entry.
type Message struct {
	Role    Role
	Content string
	SentAt  time.Time
}

// Sender performs the chat round trip. *api.Client satisfies it.
type Sender interface {
	Chat(ctx context.Context, resultID, message string) (api.ChatReply, error)
}

// ErrBusy is returned when Send is called while a previous exchange is still
// in flight. The transcript is not modified.
var ErrBusy = errors.New("chat: a message is already awaiting a reply")

// Session is one conversation bound to a result identifier. A reply failure
// is absorbed into the transcript as a localized notice rather than surfaced
// as a session-fatal error.
type Session struct {
	sender   Sender
	resultID string
	lang     locale.Lang

	mu       sync.Mutex
	busy     bool
	messages []Message
}

// NewSession creates an empty conversation for the given result. lang picks
// the language of the failure notice appended when a reply cannot be
// obtained.
func NewSession(sender Sender, resultID string, lang locale.Lang) *Session {
	return &Session{sender: sender, resultID: resultID, lang: lang}
}

// ResultID returns the result identifier this conversation is bound to.
func (s *Session) ResultID() string { return s.resultID }

// Busy reports whether an exchange is currently in flight.
func (s *Session) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

// Send appends the user's message and requests a reply. While the reply is
// outstanding further sends are rejected with ErrBusy. A transport or server
// failure appends a localized unavailability notice as the assistant turn;
// the user's message stays in the transcript either way. The returned Message
// is the assistant turn.
func (s *Session) Send(ctx context.Context, text string) (Message, error) {
	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return Message{}, ErrBusy
	}
	s.busy = true
	s.messages = append(s.messages, Message{Role: RoleUser, Content: text, SentAt: time.Now()})
	s.mu.Unlock()

	// Network round trip happens outside the lock so Messages stays
	// readable while a reply is pending.
	reply, err := s.sender.Chat(ctx, s.resultID, text)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy = false

	var assistant Message
	if err != nil {
		assistant = Message{
			Role:    RoleAssistant,
			Content: locale.ChatUnavailable.In(s.lang),
			SentAt:  time.Now(),
		}
	} else {
		assistant = Message{Role: RoleAssistant, Content: reply.Response, SentAt: time.Now()}
	}
	s.messages = append(s.messages, assistant)
	return assistant, nil
}

// Messages returns a copy of the transcript in send order.
func (s *Session) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

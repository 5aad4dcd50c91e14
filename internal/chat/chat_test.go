package chat

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/speakclear-dev/speakclear/internal/api"
	"github.com/speakclear-dev/speakclear/internal/locale"
)

type fakeSender struct {
	reply   string
	err     error
	calls   int
	lastID  string
	lastMsg string
	started chan struct{}
	release chan struct{}
}

func (f *fakeSender) Chat(_ context.Context, resultID, message string) (api.ChatReply, error) {
	f.calls++
	f.lastID = resultID
	f.lastMsg = message
	if f.started != nil {
		close(f.started)
		<-f.release
	}
	if f.err != nil {
		return api.ChatReply{}, f.err
	}
	return api.ChatReply{Accepted: true, Response: f.reply}, nil
}

func TestSendAppendsBothTurns(t *testing.T) {
	sender := &fakeSender{reply: "Your speech rate is within the typical range."}
	s := NewSession(sender, "result-1", locale.English)

	reply, err := s.Send(t.Context(), "what does my speech rate mean?")
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if reply.Role != RoleAssistant || reply.Content != sender.reply {
		t.Errorf("reply: got %+v", reply)
	}
	if sender.lastID != "result-1" || sender.lastMsg != "what does my speech rate mean?" {
		t.Errorf("sender saw %q/%q", sender.lastID, sender.lastMsg)
	}

	msgs := s.Messages()
	if len(msgs) != 2 {
		t.Fatalf("transcript length: got %d, want 2", len(msgs))
	}
	if msgs[0].Role != RoleUser || msgs[1].Role != RoleAssistant {
		t.Errorf("transcript order: %s then %s", msgs[0].Role, msgs[1].Role)
	}
}

func TestTransportFailureBecomesNotice(t *testing.T) {
	sender := &fakeSender{err: errors.New("connection refused")}
	s := NewSession(sender, "result-1", locale.Arabic)

	reply, err := s.Send(t.Context(), "مرحبا")
	if err != nil {
		t.Fatalf("a transport failure must not surface as a Send error: %v", err)
	}
	if reply.Content != locale.ChatUnavailable.In(locale.Arabic) {
		t.Errorf("notice: got %q", reply.Content)
	}

	// The user's turn survives; the notice stands in for the assistant.
	msgs := s.Messages()
	if len(msgs) != 2 || msgs[0].Content != "مرحبا" {
		t.Errorf("transcript after failure: %+v", msgs)
	}

	// The session recovers for the next exchange.
	sender.err = nil
	sender.reply = "أهلا"
	if _, err := s.Send(t.Context(), "هل تسمعني؟"); err != nil {
		t.Fatalf("Send after recovery failed: %v", err)
	}
	if got := len(s.Messages()); got != 4 {
		t.Errorf("transcript length: got %d, want 4", got)
	}
}

func TestSendWhileBusyRejected(t *testing.T) {
	sender := &fakeSender{
		reply:   "ok",
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	s := NewSession(sender, "result-1", locale.English)

	done := make(chan struct{})
	go func() {
		defer close(done)
		if _, err := s.Send(context.Background(), "first"); err != nil {
			t.Errorf("first Send failed: %v", err)
		}
	}()

	<-sender.started
	if !s.Busy() {
		t.Error("Busy should report true while a reply is outstanding")
	}
	if _, err := s.Send(t.Context(), "second"); !errors.Is(err, ErrBusy) {
		t.Errorf("second Send: got %v, want ErrBusy", err)
	}

	close(sender.release)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("first Send did not finish")
	}

	if s.Busy() {
		t.Error("Busy should clear after the reply lands")
	}
	// The rejected send must not have touched the transcript.
	if got := len(s.Messages()); got != 2 {
		t.Errorf("transcript length: got %d, want 2", got)
	}
	if sender.calls != 1 {
		t.Errorf("sender calls: got %d, want 1", sender.calls)
	}
}

func TestMessagesReturnsCopy(t *testing.T) {
	s := NewSession(&fakeSender{reply: "hi"}, "result-1", locale.English)
	if _, err := s.Send(t.Context(), "hello"); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	msgs := s.Messages()
	msgs[0].Content = "tampered"
	if s.Messages()[0].Content != "hello" {
		t.Error("Messages must return a copy of the transcript")
	}
}

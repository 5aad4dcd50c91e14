package api

import "fmt"

// ContentUnavailableError reports a failed fetch of questions or reading
// prompts. Recoverable: the caller keeps its state and offers a retry.
type ContentUnavailableError struct {
	Resource string // "questions" or "prompt"
	Err      error
}

func (e *ContentUnavailableError) Error() string {
	return fmt.Sprintf("content unavailable: %s: %v", e.Resource, e.Err)
}

func (e *ContentUnavailableError) Unwrap() error { return e.Err }

// SubmissionFailedError reports a failed upload. Diagnostic carries the
// server-provided error text when the response was non-success.
type SubmissionFailedError struct {
	Status     int
	Diagnostic string
	Err        error
}

func (e *SubmissionFailedError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("submission failed: server returned %d: %s", e.Status, e.Diagnostic)
	}
	return fmt.Sprintf("submission failed: %v", e.Err)
}

func (e *SubmissionFailedError) Unwrap() error { return e.Err }

// ChatTransportError reports a failed chat round-trip. The transcript never
// shows this error directly; the chat session substitutes localized copy.
type ChatTransportError struct {
	Err error
}

func (e *ChatTransportError) Error() string {
	return fmt.Sprintf("chat transport failure: %v", e.Err)
}

func (e *ChatTransportError) Unwrap() error { return e.Err }

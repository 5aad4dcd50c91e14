// Package tui implements the terminal user interface using Bubble Tea.
package tui

import (
	"github.com/speakclear-dev/speakclear/internal/api"
	"github.com/speakclear-dev/speakclear/internal/capture"
	"github.com/speakclear-dev/speakclear/internal/locale"
	"github.com/speakclear-dev/speakclear/internal/report"
)

// ============================================================================
// State Transition Messages
// ============================================================================

// StartSessionMsg signals that the user left the welcome screen.
type StartSessionMsg struct{}

// LanguageChosenMsg carries the user's language selection.
type LanguageChosenMsg struct {
	Lang locale.Lang
}

// GoHomeMsg returns the TUI to the welcome screen, discarding the session.
type GoHomeMsg struct{}

// ============================================================================
// Content Messages
// ============================================================================

// ContentLoadedMsg signals that localized questions arrived for a language.
type ContentLoadedMsg struct {
	Lang locale.Lang
}

// ContentErrorMsg signals that content could not be fetched. The language
// selection remains active so the user can retry.
type ContentErrorMsg struct {
	Lang locale.Lang
	Err  error
}

// PromptLoadedMsg carries the reading passage for the current trial.
type PromptLoadedMsg struct {
	Prompt api.ReadingPrompt
}

// PromptErrorMsg signals that a reading passage could not be fetched.
type PromptErrorMsg struct {
	Err error
}

// ============================================================================
// Capture Messages
// ============================================================================

// CaptureStartedMsg signals that the microphone is live.
type CaptureStartedMsg struct {
	PromptIndex int
}

// CaptureErrorMsg signals that the microphone could not be acquired.
type CaptureErrorMsg struct {
	Err error
}

// RecordingSavedMsg signals that a stopped recording was attached to the
// session.
type RecordingSavedMsg struct {
	Artifact capture.Artifact
	AllDone  bool
}

// ============================================================================
// Submission Messages
// ============================================================================

// SubmitDoneMsg carries the analysis result after a successful upload.
type SubmitDoneMsg struct {
	Result *report.Result
}

// SubmitErrorMsg signals a failed upload. All collected data stays intact.
type SubmitErrorMsg struct {
	Err error
}

// ============================================================================
// Chat Messages
// ============================================================================

// ChatReplyMsg carries the assistant turn appended after a send, including
// the localized fallback written on transport failure.
type ChatReplyMsg struct {
	Content string
}

// ============================================================================
// Utility Messages
// ============================================================================

// CtrlCResetMsg resets the Ctrl+C confirmation state after timeout.
type CtrlCResetMsg struct{}

// ErrorMsg is a generic error message for unrecoverable errors.
type ErrorMsg struct {
	Err error
}

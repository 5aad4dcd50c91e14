// Package commands provides Bubble Tea commands for TUI operations.
package commands

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/speakclear-dev/speakclear/internal/capture"
	"github.com/speakclear-dev/speakclear/internal/chat"
	"github.com/speakclear-dev/speakclear/internal/flow"
	"github.com/speakclear-dev/speakclear/internal/locale"
	"github.com/speakclear-dev/speakclear/internal/tui"
)

// contentTimeout bounds the questions and prompt fetches.
const contentTimeout = 30 * time.Second

// LoadContentCmd loads localized questions for the chosen language and
// advances the flow to the assessment. Returns ContentLoadedMsg on success or
// ContentErrorMsg on failure; on failure the selection screen stays active so
// the user can retry.
func LoadContentCmd(fc *flow.Controller, lang locale.Lang) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), contentTimeout)
		defer cancel()

		if err := fc.ChooseLanguage(ctx, lang); err != nil {
			return tui.ContentErrorMsg{Lang: lang, Err: err}
		}
		return tui.ContentLoadedMsg{Lang: lang}
	}
}

// FetchPromptCmd fetches the reading passage for the current trial.
// Returns PromptLoadedMsg or PromptErrorMsg.
func FetchPromptCmd(fc *flow.Controller) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), contentTimeout)
		defer cancel()

		prompt, err := fc.LoadPrompt(ctx)
		if err != nil {
			return tui.PromptErrorMsg{Err: err}
		}
		return tui.PromptLoadedMsg{Prompt: prompt}
	}
}

// StartCaptureCmd requests the microphone for the given trial.
// Returns CaptureStartedMsg when the device is live or CaptureErrorMsg when
// it is denied or busy.
func StartCaptureCmd(sess *capture.Session, promptIndex int) tea.Cmd {
	return func() tea.Msg {
		if err := sess.Start(promptIndex); err != nil {
			return tui.CaptureErrorMsg{Err: err}
		}
		return tui.CaptureStartedMsg{PromptIndex: promptIndex}
	}
}

// StopCaptureCmd finalizes the live recording, attaches it to the session,
// and reports whether all trials now carry a recording.
// Returns RecordingSavedMsg or CaptureErrorMsg.
func StopCaptureCmd(sess *capture.Session, fc *flow.Controller, text, phonemes string) tea.Cmd {
	return func() tea.Msg {
		artifact, err := sess.Stop()
		if err != nil {
			if errors.Is(err, capture.ErrNotRecording) {
				// An overlapping stop already claimed this recording.
				return nil
			}
			return tui.CaptureErrorMsg{Err: err}
		}

		rec := flow.Recording{
			PromptIndex: artifact.PromptIndex,
			WAV:         artifact.WAV,
			Text:        text,
			Phonemes:    phonemes,
		}
		if err := fc.SaveRecording(rec); err != nil {
			return tui.CaptureErrorMsg{Err: err}
		}

		return tui.RecordingSavedMsg{
			Artifact: artifact,
			AllDone:  fc.Step() == flow.StepReviewComplete,
		}
	}
}

// SubmitCmd uploads the collected session for analysis.
// Returns SubmitDoneMsg on success or SubmitErrorMsg on failure; failure
// leaves all answers and recordings intact for a retry.
func SubmitCmd(fc *flow.Controller, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		result, err := fc.Submit(ctx)
		if err != nil {
			return tui.SubmitErrorMsg{Err: err}
		}
		return tui.SubmitDoneMsg{Result: result}
	}
}

// SendChatCmd sends a chat message bound to the session's result id.
// Always returns ChatReplyMsg: a transport failure surfaces as the localized
// unavailability notice in the transcript rather than an error state.
func SendChatCmd(sess *chat.Session, text string, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		reply, err := sess.Send(ctx, text)
		if err != nil {
			// Busy: the in-flight exchange will produce its own reply.
			return nil
		}
		return tui.ChatReplyMsg{Content: reply.Content}
	}
}

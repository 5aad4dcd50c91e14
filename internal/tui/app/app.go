// Package app provides the main TUI application that wires all views together.
package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/speakclear-dev/speakclear/internal/capture"
	"github.com/speakclear-dev/speakclear/internal/chat"
	"github.com/speakclear-dev/speakclear/internal/content"
	"github.com/speakclear-dev/speakclear/internal/flow"
	"github.com/speakclear-dev/speakclear/internal/log"
	"github.com/speakclear-dev/speakclear/internal/tui"
	"github.com/speakclear-dev/speakclear/internal/tui/commands"
	"github.com/speakclear-dev/speakclear/internal/tui/views"
)

// recordTickMsg refreshes the elapsed-time display while recording.
type recordTickMsg struct{}

// App is the main TUI application that wires all views together.
type App struct {
	model *tui.Model

	// View models
	welcomeView  views.WelcomeModel
	languageView views.LanguageModel
	assessView   views.AssessmentModel
	recordView   views.RecordingModel
	reviewView   views.ReviewModel
	resultsView  views.ResultsModel
	chatView     views.ChatModel

	// Questions of the category currently being answered.
	questions []content.Question
	qIndex    int
}

// New creates a new App around the wired model.
func New(model *tui.Model) *App {
	return &App{
		model:       model,
		welcomeView: views.NewWelcomeModel(model.Width, model.Height),
	}
}

// Init returns the initial command for the TUI.
func (a *App) Init() tea.Cmd {
	a.logEvent(log.LogEvent{Event: log.EventSessionStarted})
	return a.welcomeView.Init()
}

// Update handles messages and updates the application state.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.model.Width = msg.Width
		a.model.Height = msg.Height
		// Only propagate to the currently active view
		var cmd tea.Cmd
		switch a.model.State {
		case tui.StateWelcome:
			a.welcomeView, cmd = a.welcomeView.Update(msg)
		case tui.StateLanguage, tui.StateLoading:
			a.languageView, cmd = a.languageView.Update(msg)
		case tui.StateAssessment:
			a.assessView, cmd = a.assessView.Update(msg)
		case tui.StateRecording:
			a.recordView, cmd = a.recordView.Update(msg)
		case tui.StateReview:
			a.reviewView, cmd = a.reviewView.Update(msg)
		case tui.StateResults:
			a.resultsView, cmd = a.resultsView.Update(msg)
		case tui.StateChat:
			a.chatView, cmd = a.chatView.Update(msg)
		}
		return a, cmd

	case tea.KeyMsg:
		if msg.String() == tui.KeyCtrlC {
			if a.model.CtrlCPending {
				// Second press within timeout - release the mic and exit
				a.abortCapture()
				return a, tea.Quit
			}
			// First press - set pending and start timeout
			a.model.CtrlCPending = true
			return a, tea.Tick(time.Second, func(t time.Time) tea.Msg {
				return tui.CtrlCResetMsg{}
			})
		}

	case tui.CtrlCResetMsg:
		a.model.CtrlCPending = false
		return a, nil

	case tui.GoHomeMsg:
		return a.goHome()
	}

	// Route messages based on current state
	switch a.model.State {
	case tui.StateWelcome:
		return a.updateWelcome(msg)

	case tui.StateLanguage, tui.StateLoading:
		return a.updateLanguage(msg)

	case tui.StateAssessment:
		return a.updateAssessment(msg)

	case tui.StateRecording:
		return a.updateRecording(msg)

	case tui.StateReview:
		return a.updateReview(msg)

	case tui.StateSubmitting:
		return a.updateSubmitting(msg)

	case tui.StateResults:
		return a.updateResults(msg)

	case tui.StateChat:
		return a.updateChat(msg)
	}

	return a, nil
}

// View renders the current application state.
func (a *App) View() string {
	var content string
	needsCentering := true

	a.welcomeView.SetCtrlCPending(a.model.CtrlCPending)

	switch a.model.State {
	case tui.StateWelcome:
		content = a.welcomeView.View()

	case tui.StateLanguage, tui.StateLoading:
		a.languageView.SetLoading(a.model.State == tui.StateLoading, a.model.Spinner.View())
		content = a.languageView.View()

	case tui.StateAssessment:
		content = a.assessView.View()

	case tui.StateRecording:
		a.recordView.SetSpinner(a.model.Spinner.View())
		content = a.recordView.View()

	case tui.StateReview:
		content = a.reviewView.View()

	case tui.StateSubmitting:
		content = a.renderSubmittingView()

	case tui.StateResults:
		content = a.resultsView.View()
		needsCentering = false

	case tui.StateChat:
		content = a.chatView.View()
		needsCentering = false

	default:
		content = "Unknown state"
	}

	if needsCentering {
		content = lipgloss.Place(
			a.model.Width,
			a.model.Height,
			lipgloss.Center,
			lipgloss.Center,
			content,
		)
	}

	return content
}

// ============================================================================
// State Update Handlers
// ============================================================================

func (a *App) updateWelcome(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	a.welcomeView, cmd = a.welcomeView.Update(msg)

	if _, ok := msg.(tui.StartSessionMsg); ok {
		if err := a.model.Flow.Start(); err != nil {
			a.model.Err = err
			return a, nil
		}
		a.model.State = tui.StateLanguage
		a.languageView = views.NewLanguageModel(a.model.Width, a.model.Height)
		return a, a.languageView.Init()
	}

	return a, cmd
}

func (a *App) updateLanguage(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	a.languageView, cmd = a.languageView.Update(msg)

	switch msg := msg.(type) {
	case tui.LanguageChosenMsg:
		a.model.State = tui.StateLoading
		a.model.LoadingStartTime = time.Now()
		return a, tea.Batch(
			a.model.Spinner.Tick,
			commands.LoadContentCmd(a.model.Flow, msg.Lang),
		)

	case spinner.TickMsg:
		if a.model.State == tui.StateLoading {
			a.model.Spinner, cmd = a.model.Spinner.Update(msg)
		}
		return a, cmd

	case tui.ContentLoadedMsg:
		a.logEvent(log.LogEvent{
			Event:      log.EventLanguageSelected,
			Language:   string(msg.Lang),
			Categories: len(a.model.Content.Categories()),
			Questions:  len(a.model.Content.Questions()),
		})
		a.model.State = tui.StateAssessment
		a.model.LoadingStartTime = time.Time{}
		a.startCategory()
		return a, a.assessView.Init()

	case tui.ContentErrorMsg:
		a.model.State = tui.StateLanguage
		a.model.LoadingStartTime = time.Time{}
		a.languageView.SetError(msg.Err)
		return a, nil
	}

	return a, cmd
}

func (a *App) updateAssessment(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	a.assessView, cmd = a.assessView.Update(msg)

	if msg, ok := msg.(views.AnswerSubmittedMsg); ok {
		a.model.Flow.Collector().SetAnswer(msg.QuestionID, msg.Value)
		a.qIndex++

		// More questions in this category
		if a.qIndex < len(a.questions) {
			a.newAssessView()
			return a, a.assessView.Init()
		}

		// Category finished - commit it
		category, _, _ := a.model.Flow.CurrentCategory()
		if err := a.model.Flow.SubmitCategory(); err != nil {
			// Shouldn't happen: the view demands an answer per question.
			// Restart the category from its first unanswered question.
			a.model.Err = err
			a.qIndex = 0
			a.newAssessView()
			return a, a.assessView.Init()
		}
		a.logEvent(log.LogEvent{
			Event:    log.EventCategorySubmitted,
			Language: string(a.model.Flow.Language()),
			Category: category,
		})

		if a.model.Flow.Step() == flow.StepRecording {
			return a.enterRecording()
		}

		// Next category
		a.startCategory()
		return a, a.assessView.Init()
	}

	return a, cmd
}

func (a *App) updateRecording(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	a.recordView, cmd = a.recordView.Update(msg)

	switch msg := msg.(type) {
	case spinner.TickMsg:
		a.model.Spinner, cmd = a.model.Spinner.Update(msg)
		return a, cmd

	case recordTickMsg:
		// Re-render elapsed time while the mic is live.
		if a.model.Capture != nil && a.model.Capture.State() == capture.StateRecording {
			return a, tea.Tick(time.Second, func(t time.Time) tea.Msg {
				return recordTickMsg{}
			})
		}
		return a, nil

	case tui.PromptLoadedMsg:
		a.model.Prompt = msg.Prompt
		a.recordView.SetPrompt(msg.Prompt)
		return a, nil

	case tui.PromptErrorMsg:
		a.model.Err = msg.Err
		a.recordView.SetMicError(msg.Err)
		return a, nil

	case views.StartRecordingMsg:
		a.model.Capture = capture.NewSession(a.model.CaptureDevice, a.model.CaptureCfg)
		return a, commands.StartCaptureCmd(a.model.Capture, a.model.Flow.PromptIndex())

	case tui.CaptureStartedMsg:
		a.recordView.SetRecording(true)
		return a, tea.Tick(time.Second, func(t time.Time) tea.Msg {
			return recordTickMsg{}
		})

	case tui.CaptureErrorMsg:
		a.recordView.SetMicError(msg.Err)
		a.model.Capture = nil
		return a, nil

	case views.StopRecordingMsg:
		if a.model.Capture == nil {
			return a, nil
		}
		prompt := a.recordView.Prompt()
		return a, commands.StopCaptureCmd(a.model.Capture, a.model.Flow, prompt.Text, prompt.Phonemes)

	case tui.RecordingSavedMsg:
		a.recordView.SetRecording(false)
		a.model.Capture = nil
		a.logEvent(log.LogEvent{
			Event:       log.EventRecordingSaved,
			Language:    string(a.model.Flow.Language()),
			PromptIndex: msg.Artifact.PromptIndex,
		})

		if msg.AllDone {
			a.model.State = tui.StateReview
			a.reviewView = views.NewReviewModel(
				a.model.Flow.Language(),
				a.model.Flow.Collector().Count(),
				a.model.Flow.Trials(),
				a.model.Width,
				a.model.Height,
			)
			return a, a.reviewView.Init()
		}
		return a.enterRecording()
	}

	return a, cmd
}

func (a *App) updateReview(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	a.reviewView, cmd = a.reviewView.Update(msg)

	switch msg := msg.(type) {
	case views.SubmitSessionMsg:
		a.model.State = tui.StateSubmitting
		timeout := time.Duration(a.model.Cfg.Server.TimeoutSeconds) * time.Second
		return a, tea.Batch(
			a.model.Spinner.Tick,
			commands.SubmitCmd(a.model.Flow, timeout),
		)

	case views.RerecordMsg:
		if err := a.model.Flow.Rerecord(msg.TrialIndex); err != nil {
			a.model.Err = err
			return a, nil
		}
		return a.enterRecording()
	}

	return a, cmd
}

func (a *App) updateSubmitting(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case spinner.TickMsg:
		a.model.Spinner, cmd = a.model.Spinner.Update(msg)
		return a, cmd

	case tui.SubmitDoneMsg:
		a.logEvent(log.LogEvent{
			Event:    log.EventSubmissionSucceeded,
			Language: string(a.model.Flow.Language()),
			ResultID: msg.Result.ID,
		})
		if a.model.Store != nil {
			if _, err := a.model.Store.SaveResult(msg.Result, a.model.Flow.Language()); err != nil {
				a.logEvent(log.LogEvent{Event: log.EventSubmissionSucceeded, Error: err.Error()})
			}
		}
		a.model.State = tui.StateResults
		a.resultsView = views.NewResultsModel(
			msg.Result,
			a.model.Flow.Language(),
			a.model.Width,
			a.model.Height,
		)
		return a, a.resultsView.Init()

	case tui.SubmitErrorMsg:
		a.logEvent(log.LogEvent{
			Event:    log.EventSubmissionFailed,
			Language: string(a.model.Flow.Language()),
			Error:    msg.Err.Error(),
		})
		a.model.State = tui.StateReview
		a.reviewView.SetSubmitError(msg.Err)
		return a, nil
	}

	return a, nil
}

func (a *App) updateResults(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	a.resultsView, cmd = a.resultsView.Update(msg)

	switch msg.(type) {
	case views.EnterChatMsg:
		if a.model.ChatSession == nil {
			a.model.ChatSession = chat.NewSession(
				a.model.Client,
				a.model.Flow.ResultID(),
				a.model.Flow.Language(),
			)
		}
		a.model.State = tui.StateChat
		a.chatView = views.NewChatModel(
			a.model.ChatSession.ResultID(),
			chatHistory(a.model.ChatSession),
			a.model.Width,
			a.model.Height,
		)
		return a, a.chatView.Init()

	case views.NewSessionMsg:
		return a.goHome()
	}

	return a, cmd
}

func (a *App) updateChat(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	a.chatView, cmd = a.chatView.Update(msg)

	switch msg := msg.(type) {
	case views.SendChatMsg:
		a.persistMessage("user", msg.Content)
		a.logEvent(log.LogEvent{
			Event:    log.EventChatSent,
			ResultID: a.model.ChatSession.ResultID(),
		})
		timeout := time.Duration(a.model.Cfg.Server.TimeoutSeconds) * time.Second
		return a, tea.Batch(cmd, commands.SendChatCmd(a.model.ChatSession, msg.Content, timeout))

	case tui.ChatReplyMsg:
		a.persistMessage("assistant", msg.Content)
		return a, func() tea.Msg {
			return views.ChatResponseMsg{Content: msg.Content}
		}

	case views.ExitChatMsg:
		a.model.State = tui.StateResults
		return a, nil
	}

	return a, cmd
}

// ============================================================================
// State Transitions
// ============================================================================

// startCategory loads the current category's questions and shows the first.
func (a *App) startCategory() {
	category, _, _ := a.model.Flow.CurrentCategory()
	a.questions = a.model.Content.QuestionsIn(category)
	a.qIndex = 0
	a.newAssessView()
}

// newAssessView builds the view for the current question.
func (a *App) newAssessView() {
	category, catIdx, catTotal := a.model.Flow.CurrentCategory()
	a.assessView = views.NewAssessmentModel(
		a.questions[a.qIndex],
		a.model.Flow.Language(),
		category,
		a.qIndex,
		len(a.questions),
		catIdx,
		catTotal,
		a.model.Width,
		a.model.Height,
	)
}

// enterRecording sets up the recording view for the flow's current trial and
// fetches its passage.
func (a *App) enterRecording() (tea.Model, tea.Cmd) {
	a.model.State = tui.StateRecording

	recorded := make([]bool, a.model.Flow.Trials())
	for _, rec := range a.model.Flow.Recordings() {
		recorded[rec.PromptIndex] = true
	}

	a.recordView = views.NewRecordingModel(
		a.model.Flow.Language(),
		a.model.Flow.PromptIndex(),
		a.model.Flow.Trials(),
		recorded,
		a.model.Width,
		a.model.Height,
	)
	return a, tea.Batch(
		a.model.Spinner.Tick,
		commands.FetchPromptCmd(a.model.Flow),
	)
}

// goHome discards the session and returns to the welcome screen.
func (a *App) goHome() (tea.Model, tea.Cmd) {
	a.abortCapture()
	a.model.Flow.Restart()
	a.model.ChatSession = nil
	a.model.Err = nil
	a.questions = nil
	a.qIndex = 0
	a.logEvent(log.LogEvent{Event: log.EventSessionRestarted})

	a.model.State = tui.StateWelcome
	a.welcomeView = views.NewWelcomeModel(a.model.Width, a.model.Height)
	return a, a.welcomeView.Init()
}

// ============================================================================
// Helper Methods
// ============================================================================

// abortCapture releases the microphone if a capture session is live.
func (a *App) abortCapture() {
	if a.model.Capture != nil {
		a.model.Capture.Abort()
		a.model.Capture = nil
	}
}

// logEvent appends to the session log, ignoring write failures.
func (a *App) logEvent(event log.LogEvent) {
	if a.model.Logger != nil {
		_ = a.model.Logger.Append(event)
	}
}

// persistMessage stores a transcript entry under the bound result id.
func (a *App) persistMessage(role, content string) {
	if a.model.Store == nil || a.model.ChatSession == nil {
		return
	}
	_ = a.model.Store.AppendMessage(a.model.ChatSession.ResultID(), role, content)
}

// chatHistory converts the chat session transcript for display.
func chatHistory(s *chat.Session) []tui.ChatMessage {
	msgs := s.Messages()
	out := make([]tui.ChatMessage, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, tui.ChatMessage{Role: string(m.Role), Content: m.Content})
	}
	return out
}

// renderSubmittingView renders the upload-in-progress state.
func (a *App) renderSubmittingView() string {
	var b strings.Builder

	b.WriteString(tui.TitleStyle.Render("Analyzing your speech..."))
	b.WriteString("\n\n")

	b.WriteString(fmt.Sprintf("%s Uploading your answers and recording...", a.model.Spinner.View()))
	b.WriteString("\n\n")

	hints := []string{
		"Measuring speech and phoneme rate",
		"Screening for dysarthria indicators",
		"Preparing recommendations",
	}
	for _, hint := range hints {
		b.WriteString(tui.DimStyle.Render("  - " + hint))
		b.WriteString("\n")
	}

	const maxWidth = 70
	boxWidth := maxWidth
	if a.model.Width-4 < boxWidth {
		boxWidth = a.model.Width - 4
	}

	return tui.BoxStyle.
		Width(boxWidth).
		Render(b.String())
}

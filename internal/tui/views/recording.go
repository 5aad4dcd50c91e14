package views

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/speakclear-dev/speakclear/internal/api"
	"github.com/speakclear-dev/speakclear/internal/locale"
	"github.com/speakclear-dev/speakclear/internal/tui"
)

// StartRecordingMsg asks the app to acquire the microphone for the current
// trial.
type StartRecordingMsg struct{}

// StopRecordingMsg asks the app to finalize the live recording.
type StopRecordingMsg struct{}

// RecordingModel is the view model for one read-aloud trial.
type RecordingModel struct {
	prompt      api.ReadingPrompt
	lang        locale.Lang
	trialIndex  int
	trialTotal  int
	recorded    []bool
	isRecording bool
	startedAt   time.Time
	micErr      error
	loading     bool
	spinner     string
	width       int
	height      int
}

// NewRecordingModel creates a new RecordingModel for the given trial.
func NewRecordingModel(lang locale.Lang, trialIndex, trialTotal int, recorded []bool, width, height int) RecordingModel {
	return RecordingModel{
		lang:       lang,
		trialIndex: trialIndex,
		trialTotal: trialTotal,
		recorded:   recorded,
		loading:    true,
		width:      width,
		height:     height,
	}
}

// Init returns the initial command for the recording view.
func (m RecordingModel) Init() tea.Cmd {
	return nil
}

// SetPrompt attaches the fetched reading passage.
func (m *RecordingModel) SetPrompt(p api.ReadingPrompt) {
	m.prompt = p
	m.loading = false
}

// Prompt returns the passage currently displayed.
func (m RecordingModel) Prompt() api.ReadingPrompt {
	return m.prompt
}

// SetSpinner updates the loading spinner frame rendered while the passage is
// being fetched.
func (m *RecordingModel) SetSpinner(frame string) {
	m.spinner = frame
}

// SetRecording marks the microphone as live (or released).
func (m *RecordingModel) SetRecording(recording bool) {
	m.isRecording = recording
	if recording {
		m.startedAt = time.Now()
		m.micErr = nil
	}
}

// SetMicError records a microphone acquisition failure.
func (m *RecordingModel) SetMicError(err error) {
	m.micErr = err
	m.isRecording = false
}

// Update handles messages for the recording view.
func (m RecordingModel) Update(msg tea.Msg) (RecordingModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.loading {
			return m, nil
		}
		switch msg.String() {
		case "r":
			if !m.isRecording {
				return m, func() tea.Msg {
					return StartRecordingMsg{}
				}
			}
		case tui.KeySpace:
			if m.isRecording {
				return m, func() tea.Msg {
					return StopRecordingMsg{}
				}
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	}

	return m, nil
}

// View renders the recording view.
func (m RecordingModel) View() string {
	var b strings.Builder

	// Header with trial progress icons
	b.WriteString(tui.TitleStyle.Render(fmt.Sprintf("Reading %d of %d", m.trialIndex+1, m.trialTotal)))
	b.WriteString("  ")
	for i := 0; i < m.trialTotal; i++ {
		switch {
		case i < len(m.recorded) && m.recorded[i]:
			b.WriteString(tui.TrialDone)
		case i == m.trialIndex:
			b.WriteString(tui.TrialActive)
		default:
			b.WriteString(tui.TrialPending)
		}
		b.WriteString(" ")
	}
	b.WriteString("\n\n")

	if m.loading {
		b.WriteString(fmt.Sprintf("%s Fetching a passage to read...", m.spinner))
		b.WriteString("\n")
	} else {
		b.WriteString("Read the following passage aloud:\n\n")
		b.WriteString(tui.SelectedStyle.Render(m.prompt.Text))
		b.WriteString("\n\n")

		if m.isRecording {
			elapsed := time.Since(m.startedAt).Round(time.Second)
			b.WriteString(tui.ErrorStyle.Render("● Recording"))
			b.WriteString(tui.DimStyle.Render(fmt.Sprintf("  %s", elapsed)))
			b.WriteString("\n\n")
			b.WriteString(tui.DimStyle.Render("Space: Stop and save"))
		} else {
			if m.micErr != nil {
				b.WriteString(tui.ErrorStyle.Render(locale.MicrophoneDenied.In(m.lang)))
				b.WriteString("\n")
				b.WriteString(tui.DimStyle.Render(m.micErr.Error()))
				b.WriteString("\n\n")
			}
			b.WriteString(tui.DimStyle.Render("r: Start recording"))
		}
	}

	boxWidth := maxAssessmentWidth
	if m.width-4 < boxWidth {
		boxWidth = m.width - 4
	}

	return tui.BoxStyle.
		Width(boxWidth).
		Render(b.String())
}

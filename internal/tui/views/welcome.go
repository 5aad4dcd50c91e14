// Package views provides TUI view components for the assessment application.
package views

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/speakclear-dev/speakclear/internal/tui"
)

// maxBoxWidth is the maximum width for centered view boxes.
const maxBoxWidth = 70

// WelcomeModel is the view model for the welcome screen.
type WelcomeModel struct {
	width        int
	height       int
	ctrlCPending bool
}

// NewWelcomeModel creates a new WelcomeModel.
func NewWelcomeModel(width, height int) WelcomeModel {
	return WelcomeModel{width: width, height: height}
}

// Init returns the initial command for the welcome view.
func (m WelcomeModel) Init() tea.Cmd {
	return nil
}

// SetCtrlCPending updates the Ctrl+C confirmation hint.
func (m *WelcomeModel) SetCtrlCPending(pending bool) {
	m.ctrlCPending = pending
}

// Update handles messages for the welcome view.
func (m WelcomeModel) Update(msg tea.Msg) (WelcomeModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == tui.KeyEnter {
			return m, func() tea.Msg {
				return tui.StartSessionMsg{}
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	}

	return m, nil
}

// View renders the welcome view.
func (m WelcomeModel) View() string {
	var b strings.Builder

	b.WriteString(tui.TitleStyle.Render("SpeakClear"))
	b.WriteString("\n\n")
	b.WriteString("A guided speech assessment from your terminal.\n\n")

	steps := []string{
		"Answer a short questionnaire",
		"Read three passages aloud",
		"Receive a speech analysis with recommendations",
	}
	for _, s := range steps {
		b.WriteString(tui.DimStyle.Render("  - " + s))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(tui.SelectedStyle.Render("Press Enter to begin"))
	b.WriteString("\n\n")

	if m.ctrlCPending {
		b.WriteString(tui.WarningStyle.Render("Press Ctrl+C again to exit"))
	} else {
		b.WriteString(tui.DimStyle.Render("Ctrl+C: Exit"))
	}

	boxWidth := maxBoxWidth
	if m.width-4 < boxWidth {
		boxWidth = m.width - 4
	}

	return tui.BoxStyle.
		Width(boxWidth).
		Render(b.String())
}

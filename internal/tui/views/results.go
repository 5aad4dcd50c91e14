package views

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/speakclear-dev/speakclear/internal/locale"
	"github.com/speakclear-dev/speakclear/internal/report"
	"github.com/speakclear-dev/speakclear/internal/tui"
)

// EnterChatMsg asks the app to open the chat bound to the shown result.
type EnterChatMsg struct{}

// NewSessionMsg asks the app to discard everything and start over.
type NewSessionMsg struct{}

// ResultsModel is the view model for the analysis results screen.
type ResultsModel struct {
	result   *report.Result
	lang     locale.Lang
	viewport viewport.Model
	width    int
	height   int
}

// NewResultsModel creates a new ResultsModel showing the formatted report.
func NewResultsModel(result *report.Result, lang locale.Lang, width, height int) ResultsModel {
	vpHeight := height - 10
	if vpHeight < 5 {
		vpHeight = 5
	}
	vpWidth := width - 8
	if vpWidth < 20 {
		vpWidth = 20
	}

	vp := viewport.New(vpWidth, vpHeight)
	vp.SetContent(report.Format(result, lang))

	return ResultsModel{
		result:   result,
		lang:     lang,
		viewport: vp,
		width:    width,
		height:   height,
	}
}

// Init returns the initial command for the results view.
func (m ResultsModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the results view.
func (m ResultsModel) Update(msg tea.Msg) (ResultsModel, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "c":
			return m, func() tea.Msg {
				return EnterChatMsg{}
			}
		case "n":
			return m, func() tea.Msg {
				return NewSessionMsg{}
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		vpHeight := msg.Height - 10
		if vpHeight < 5 {
			vpHeight = 5
		}
		vpWidth := msg.Width - 8
		if vpWidth < 20 {
			vpWidth = 20
		}
		m.viewport.Width = vpWidth
		m.viewport.Height = vpHeight
		return m, nil
	}

	// Viewport handles scrolling keys.
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the results view.
func (m ResultsModel) View() string {
	var b strings.Builder

	b.WriteString(tui.TitleStyle.Render("Your speech analysis"))
	b.WriteString("  ")
	b.WriteString(tui.DimStyle.Render("id: " + m.result.ID))
	b.WriteString("\n\n")

	b.WriteString(m.viewport.View())
	b.WriteString("\n\n")

	b.WriteString(tui.DimStyle.Render("↑↓ to scroll · c: Chat about results · n: New session · Ctrl+C: Exit"))

	return tui.BoxStyle.
		Width(m.width - 4).
		Render(b.String())
}

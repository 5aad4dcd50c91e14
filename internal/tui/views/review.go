package views

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/speakclear-dev/speakclear/internal/locale"
	"github.com/speakclear-dev/speakclear/internal/tui"
)

// SubmitSessionMsg asks the app to upload the collected session.
type SubmitSessionMsg struct{}

// RerecordMsg asks the app to re-record a specific trial.
type RerecordMsg struct {
	TrialIndex int
}

// ReviewModel is the view model for the pre-submission review screen.
type ReviewModel struct {
	lang        locale.Lang
	answerCount int
	trialTotal  int
	selected    int // highlighted trial for re-recording
	submitErr   error
	width       int
	height      int
}

// NewReviewModel creates a new ReviewModel.
func NewReviewModel(lang locale.Lang, answerCount, trialTotal, width, height int) ReviewModel {
	return ReviewModel{
		lang:        lang,
		answerCount: answerCount,
		trialTotal:  trialTotal,
		width:       width,
		height:      height,
	}
}

// Init returns the initial command for the review view.
func (m ReviewModel) Init() tea.Cmd {
	return nil
}

// SetSubmitError records a failed upload so the user can retry.
func (m *ReviewModel) SetSubmitError(err error) {
	m.submitErr = err
}

// Update handles messages for the review view.
func (m ReviewModel) Update(msg tea.Msg) (ReviewModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case tui.KeyUp, "k":
			if m.selected > 0 {
				m.selected--
			}
		case tui.KeyDown, "j":
			if m.selected < m.trialTotal-1 {
				m.selected++
			}
		case "e":
			idx := m.selected
			return m, func() tea.Msg {
				return RerecordMsg{TrialIndex: idx}
			}
		case "s", tui.KeyEnter:
			m.submitErr = nil
			return m, func() tea.Msg {
				return SubmitSessionMsg{}
			}
		case tui.KeyEsc:
			return m, func() tea.Msg {
				return tui.GoHomeMsg{}
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	}

	return m, nil
}

// View renders the review view.
func (m ReviewModel) View() string {
	var b strings.Builder

	b.WriteString(tui.TitleStyle.Render("Ready to submit"))
	b.WriteString("\n\n")

	b.WriteString(fmt.Sprintf("Answers collected: %d\n", m.answerCount))
	b.WriteString("Recordings:\n")
	for i := 0; i < m.trialTotal; i++ {
		if i == m.selected {
			b.WriteString("❯ ")
		} else {
			b.WriteString("  ")
		}
		b.WriteString(fmt.Sprintf("%s Reading %d\n", tui.TrialDone, i+1))
	}

	b.WriteString("\n")

	if m.submitErr != nil {
		b.WriteString(tui.ErrorStyle.Render(locale.SubmitFailed.In(m.lang)))
		b.WriteString("\n")
		b.WriteString(tui.DimStyle.Render(m.submitErr.Error()))
		b.WriteString("\n\n")
	}

	b.WriteString(tui.DimStyle.Render("s: Submit for analysis · e: Re-record selected · Esc: Home"))

	boxWidth := maxBoxWidth
	if m.width-4 < boxWidth {
		boxWidth = m.width - 4
	}

	return tui.BoxStyle.
		Width(boxWidth).
		Render(b.String())
}

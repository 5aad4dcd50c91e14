package views

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/speakclear-dev/speakclear/internal/content"
	"github.com/speakclear-dev/speakclear/internal/locale"
	"github.com/speakclear-dev/speakclear/internal/tui"
)

// maxAssessmentWidth is the maximum width for the assessment box.
const maxAssessmentWidth = 90

// AnswerSubmittedMsg carries the user's answer to the current question.
type AnswerSubmittedMsg struct {
	QuestionID string
	Value      string
}

// EscResetMsg resets the Esc pending state after timeout.
type EscResetMsg struct{}

// assessmentOption represents a selectable answer in the assessment.
type assessmentOption struct {
	label    string
	isCustom bool // free-text entry rendered as an inline input
}

// AssessmentModel is the view model for one questionnaire question.
type AssessmentModel struct {
	question    content.Question
	lang        locale.Lang
	category    string
	qIndex      int
	qTotal      int
	catIndex    int
	catTotal    int
	options     []assessmentOption
	selected    int
	customInput textinput.Model
	escPending  bool // true when waiting for second Esc press
	width       int
	height      int
}

// NewAssessmentModel creates a new AssessmentModel for the given question.
func NewAssessmentModel(q content.Question, lang locale.Lang, category string, qIndex, qTotal, catIndex, catTotal, width, height int) AssessmentModel {
	var options []assessmentOption
	if q.Format == content.FormatChoice {
		for _, choice := range q.Choices(lang) {
			options = append(options, assessmentOption{label: choice})
		}
	} else {
		options = append(options, assessmentOption{isCustom: true})
	}

	ti := textinput.New()
	ti.Placeholder = "Type your answer here..."
	ti.CharLimit = 500
	ti.Width = maxAssessmentWidth - 12

	m := AssessmentModel{
		question:    q,
		lang:        lang,
		category:    category,
		qIndex:      qIndex,
		qTotal:      qTotal,
		catIndex:    catIndex,
		catTotal:    catTotal,
		options:     options,
		customInput: ti,
		width:       width,
		height:      height,
	}
	if q.Format == content.FormatFreeText {
		m.customInput.Focus()
	}
	return m
}

// Init returns the initial command for the assessment view.
func (m AssessmentModel) Init() tea.Cmd {
	if m.question.Format == content.FormatFreeText {
		return textinput.Blink
	}
	return nil
}

// Update handles messages for the assessment view.
func (m AssessmentModel) Update(msg tea.Msg) (AssessmentModel, tea.Cmd) {
	var cmd tea.Cmd

	if _, ok := msg.(EscResetMsg); ok {
		m.escPending = false
		return m, nil
	}

	isOnCustom := m.selected >= 0 && m.selected < len(m.options) && m.options[m.selected].isCustom

	// Typing mode for the free-text entry.
	if isOnCustom {
		switch msg := msg.(type) {
		case tea.KeyMsg:
			switch msg.String() {
			case tui.KeyEnter:
				value := strings.TrimSpace(m.customInput.Value())
				if value != "" {
					m.customInput.Blur()
					id := m.question.ID
					return m, func() tea.Msg {
						return AnswerSubmittedMsg{QuestionID: id, Value: value}
					}
				}
				return m, nil
			case tui.KeyEsc:
				return m.handleEsc()
			default:
				m.customInput, cmd = m.customInput.Update(msg)
				return m, cmd
			}
		default:
			m.customInput, cmd = m.customInput.Update(msg)
			return m, cmd
		}
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case tui.KeyUp, "k":
			if m.selected > 0 {
				m.selected--
			}
			return m, nil

		case tui.KeyDown, "j":
			if m.selected < len(m.options)-1 {
				m.selected++
			}
			return m, nil

		case tui.KeyEnter, tui.KeySpace:
			opt := m.options[m.selected]
			id := m.question.ID
			return m, func() tea.Msg {
				return AnswerSubmittedMsg{QuestionID: id, Value: opt.label}
			}

		case "1", "2", "3", "4", "5", "6", "7", "8", "9":
			// Quick navigate by number (user must press Enter to confirm)
			idx := int(msg.String()[0] - '1')
			if idx >= 0 && idx < len(m.options) {
				m.selected = idx
			}
			return m, nil

		case tui.KeyEsc:
			return m.handleEsc()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	}

	return m, nil
}

// handleEsc implements the double-press Esc to return home.
func (m AssessmentModel) handleEsc() (AssessmentModel, tea.Cmd) {
	if m.escPending {
		return m, func() tea.Msg {
			return tui.GoHomeMsg{}
		}
	}
	m.escPending = true
	return m, tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return EscResetMsg{}
	})
}

// View renders the assessment view.
func (m AssessmentModel) View() string {
	var b strings.Builder

	// Header with category progress
	header := fmt.Sprintf("%s (%d/%d)", m.category, m.catIndex+1, m.catTotal)
	b.WriteString(tui.TitleStyle.Render(header))
	b.WriteString("  ")
	b.WriteString(tui.DimStyle.Render(fmt.Sprintf("Question %d of %d", m.qIndex+1, m.qTotal)))
	b.WriteString("\n\n")

	// Question
	b.WriteString(tui.SelectedStyle.Render(m.question.Prompt(m.lang)))
	b.WriteString("\n\n")

	// Options
	for i, opt := range m.options {
		isSelected := i == m.selected

		if opt.isCustom {
			b.WriteString("❯ ")
			b.WriteString(m.customInput.View())
			b.WriteString("\n")
			continue
		}

		if isSelected {
			b.WriteString("❯ ")
		} else {
			b.WriteString("  ")
		}
		b.WriteString(fmt.Sprintf("%d. ", i+1))
		if isSelected {
			b.WriteString(tui.SelectedStyle.Render(opt.label))
		} else {
			b.WriteString(opt.label)
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")

	// Footer
	b.WriteString(tui.DimStyle.Render("Enter to select · ↑↓ to navigate"))
	b.WriteString(" · ")
	if m.escPending {
		b.WriteString(tui.WarningStyle.Render("Press Esc again to go back to Home"))
	} else {
		b.WriteString(tui.DimStyle.Render("Esc: Home"))
	}

	boxWidth := maxAssessmentWidth
	if m.width-4 < boxWidth {
		boxWidth = m.width - 4
	}

	return tui.BoxStyle.
		Width(boxWidth).
		Render(b.String())
}

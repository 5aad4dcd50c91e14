package views

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/speakclear-dev/speakclear/internal/locale"
	"github.com/speakclear-dev/speakclear/internal/tui"
)

// languageOption pairs a language code with its display label.
type languageOption struct {
	lang  locale.Lang
	label string
}

// LanguageModel is the view model for the language selection screen.
type LanguageModel struct {
	options  []languageOption
	selected int
	loading  bool
	err      error
	spinner  string
	width    int
	height   int
}

// NewLanguageModel creates a new LanguageModel.
func NewLanguageModel(width, height int) LanguageModel {
	options := make([]languageOption, 0, len(locale.Supported))
	for _, lang := range locale.Supported {
		options = append(options, languageOption{lang: lang, label: lang.Name()})
	}
	return LanguageModel{
		options: options,
		width:   width,
		height:  height,
	}
}

// Init returns the initial command for the language view.
func (m LanguageModel) Init() tea.Cmd {
	return nil
}

// SetLoading marks the view as waiting for content. The spinner frame is
// rendered by the app, which owns the shared spinner.
func (m *LanguageModel) SetLoading(loading bool, frame string) {
	m.loading = loading
	m.spinner = frame
}

// SetError records a content fetch failure so the user can retry.
func (m *LanguageModel) SetError(err error) {
	m.err = err
	m.loading = false
}

// Update handles messages for the language view.
func (m LanguageModel) Update(msg tea.Msg) (LanguageModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.loading {
			return m, nil
		}
		switch msg.String() {
		case tui.KeyUp, "k":
			if m.selected > 0 {
				m.selected--
			}
		case tui.KeyDown, "j":
			if m.selected < len(m.options)-1 {
				m.selected++
			}
		case tui.KeyEnter:
			chosen := m.options[m.selected].lang
			m.err = nil
			return m, func() tea.Msg {
				return tui.LanguageChosenMsg{Lang: chosen}
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

// View renders the language view.
func (m LanguageModel) View() string {
	var b strings.Builder

	b.WriteString(tui.TitleStyle.Render("Choose your language"))
	b.WriteString("\n\n")

	for i, opt := range m.options {
		if i == m.selected {
			b.WriteString("❯ ")
			b.WriteString(tui.SelectedStyle.Render(opt.label))
		} else {
			b.WriteString("  ")
			b.WriteString(opt.label)
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")

	if m.loading {
		b.WriteString(fmt.Sprintf("%s %s", m.spinner, locale.LoadingQuestions.In(m.options[m.selected].lang)))
		b.WriteString("\n\n")
	} else if m.err != nil {
		b.WriteString(tui.ErrorStyle.Render(locale.ContentFetchFailed.In(m.options[m.selected].lang)))
		b.WriteString("\n")
		b.WriteString(tui.DimStyle.Render(m.err.Error()))
		b.WriteString("\n\n")
	}

	b.WriteString(tui.DimStyle.Render("Enter to select · ↑↓ to navigate · Esc: Home"))

	boxWidth := maxBoxWidth
	if m.width-4 < boxWidth {
		boxWidth = m.width - 4
	}

	return tui.BoxStyle.
		Width(boxWidth).
		Render(b.String())
}

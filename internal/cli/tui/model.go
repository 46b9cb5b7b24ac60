// Package tui implements the interactive omnibar demo: a Bubble Tea
// program driving the full keystroke-to-suggestions pipeline.
package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/muxpanel/omnibar/internal/domain/autocomplete"
	"github.com/muxpanel/omnibar/internal/domain/entity"
	domurl "github.com/muxpanel/omnibar/internal/domain/url"
	"github.com/muxpanel/omnibar/internal/omnibar"
)

var (
	promptStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("4")).Bold(true)
	ghostStyle    = lipgloss.NewStyle().Faint(true)
	selectedStyle = lipgloss.NewStyle().Reverse(true)
	badgeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("5"))
	helpStyle     = lipgloss.NewStyle().Faint(true)
)

// Model is the Bubble Tea model for the interactive omnibar.
type Model struct {
	input      textinput.Model
	controller *omnibar.Controller
	states     chan omnibar.State
	state      omnibar.State

	searchURL string
	result    string

	ctx context.Context
}

// NewModel creates the interactive omnibar model. searchURL is the %s
// template used when a search row is committed.
func NewModel(ctx context.Context, controller *omnibar.Controller, searchURL string) *Model {
	input := textinput.New()
	input.Prompt = ""
	input.Placeholder = "search or enter address"
	input.Focus()

	states := make(chan omnibar.State, 8)
	controller.OnChange = func(s omnibar.State) {
		select {
		case states <- s:
		default:
		}
	}

	return &Model{
		input:      input,
		controller: controller,
		states:     states,
		searchURL:  searchURL,
		ctx:        ctx,
	}
}

// Result returns the committed URL, empty if the user quit without
// committing.
func (m *Model) Result() string {
	return m.result
}

type stateMsg omnibar.State

func (m *Model) waitForState() tea.Msg {
	return stateMsg(<-m.states)
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	m.state, _ = m.controller.Dispatch(m.ctx, omnibar.FocusGained{})
	return tea.Batch(textinput.Blink, m.waitForState)
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case stateMsg:
		m.state = omnibar.State(msg)
		if m.input.Value() != m.state.Buffer {
			m.input.SetValue(m.state.Buffer)
			m.input.CursorEnd()
		}
		return m, m.waitForState

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			return m, tea.Quit

		case tea.KeyEsc:
			state, eff := m.controller.Dispatch(m.ctx, omnibar.Escape{})
			m.state = state
			if m.input.Value() != state.Buffer {
				m.input.SetValue(state.Buffer)
				m.input.CursorEnd()
			}
			if eff.ShouldBlurToWebView {
				return m, tea.Quit
			}
			return m, nil

		case tea.KeyUp:
			m.state, _ = m.controller.Dispatch(m.ctx, omnibar.MoveSelection{Delta: -1})
			return m, nil

		case tea.KeyDown:
			m.state, _ = m.controller.Dispatch(m.ctx, omnibar.MoveSelection{Delta: 1})
			return m, nil

		case tea.KeyTab, tea.KeyRight:
			if ghost := m.ghost(); ghost != nil && m.input.Position() == len(m.input.Value()) {
				m.input.SetValue(ghost.DisplayText)
				m.input.CursorEnd()
				m.state, _ = m.controller.Dispatch(m.ctx, omnibar.BufferChanged{Text: ghost.DisplayText})
				return m, nil
			}

		case tea.KeyEnter:
			m.commit()
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	before := m.input.Value()
	m.input, cmd = m.input.Update(msg)
	if after := m.input.Value(); after != before {
		m.state, _ = m.controller.Dispatch(m.ctx, omnibar.BufferChanged{Text: after})
	}
	return m, cmd
}

// commit resolves the Enter target: the selected row when one is
// highlighted, otherwise the raw buffer.
func (m *Model) commit() {
	target := strings.TrimSpace(m.input.Value())

	if s, ok := m.state.Selected(); ok {
		switch s.Kind {
		case entity.SuggestionSearch, entity.SuggestionRemoteQuery:
			m.result = domurl.BuildSearchURL(m.searchURL, s.Completion())
		default:
			m.result = s.Completion()
		}
	} else if target != "" {
		if url, ok := domurl.DefaultResolver(target); ok {
			m.result = url
		} else {
			m.result = domurl.BuildSearchURL(m.searchURL, target)
		}
	}

	if m.result != "" {
		m.controller.RecordNavigation(m.ctx, m.result)
	}
}

// ghost computes the inline completion for the current buffer and
// suggestion list, with the caret pinned at the end of typed text.
func (m *Model) ghost() *autocomplete.InlineCompletion {
	typed := m.input.Value()
	return autocomplete.Compute(typed, m.state.Suggestions, true,
		autocomplete.SelectionRange{Loc: len(typed)}, false)
}

// View implements tea.Model.
func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(promptStyle.Render("❯ "))
	b.WriteString(m.input.View())
	if ghost := m.ghost(); ghost != nil {
		b.WriteString(ghostStyle.Render(ghost.DisplayText[len(ghost.TypedText):]))
	}
	b.WriteString("\n\n")

	for i, s := range m.state.Suggestions {
		line := "  " + s.Display()
		if badge := s.Badge(); badge != "" {
			line += "  " + badgeStyle.Render("["+badge+"]")
		}
		if i == m.state.SelectedIndex {
			line = selectedStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("↑/↓ select · tab complete · enter go · esc dismiss · ctrl+c quit"))
	b.WriteString("\n")
	return b.String()
}

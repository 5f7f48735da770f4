package ui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// prompt is a single-line text input shown over the current view.
type prompt struct {
	label    string
	value    []rune
	onSubmit func(m *model, value string) tea.Cmd
	onCancel func(m *model)
}

func newPrompt(label, initial string, onSubmit func(m *model, value string) tea.Cmd) *prompt {
	return &prompt{label: label, value: []rune(initial), onSubmit: onSubmit}
}

// key feeds one key press; done reports whether the prompt should close.
func (p *prompt) key(msg tea.KeyMsg) (submitted, done bool) {
	switch msg.Type {
	case tea.KeyEnter:
		return true, true
	case tea.KeyEsc:
		return false, true
	case tea.KeyBackspace:
		if len(p.value) > 0 {
			p.value = p.value[:len(p.value)-1]
		}
	case tea.KeyCtrlU:
		p.value = nil
	case tea.KeySpace:
		p.value = append(p.value, ' ')
	case tea.KeyRunes:
		p.value = append(p.value, msg.Runes...)
	}
	return false, false
}

func (p *prompt) text() string { return string(p.value) }

// confirm asks a yes/no question before a destructive action.
type confirm struct {
	message string
	onYes   func(m *model) tea.Cmd
}

func (m model) renderPrompt() string {
	p := m.prompt
	body := m.st.title.Render(p.label) + "\n> " + p.text() + "█\n" + m.st.muted.Render("Enter 确认  Esc 取消")
	return m.st.dialog.Render(body)
}

func (m model) renderConfirm() string {
	body := m.st.warning.Render(m.confirm.message) + "\n\n" + m.st.muted.Render("y 确定  n 取消")
	return m.st.dialog.Render(body)
}

// handleOverlayKey routes keys to an open prompt or confirmation. ok is false
// when no overlay is open.
func (m *model) handleOverlayKey(msg tea.KeyMsg) (cmd tea.Cmd, ok bool) {
	if m.confirm != nil {
		c := m.confirm
		switch strings.ToLower(msg.String()) {
		case "y", "enter":
			m.confirm = nil
			return c.onYes(m), true
		case "n", "esc", "q":
			m.confirm = nil
		}
		return nil, true
	}
	if m.prompt != nil {
		p := m.prompt
		submitted, done := p.key(msg)
		if !done {
			return nil, true
		}
		m.prompt = nil
		if submitted {
			return p.onSubmit(m, p.text()), true
		}
		if p.onCancel != nil {
			p.onCancel(m)
		}
		return nil, true
	}
	return nil, false
}

func (m *model) ask(message string, onYes func(m *model) tea.Cmd) {
	m.confirm = &confirm{message: message, onYes: onYes}
}

package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/DaanHessen/grimoire-tui/internal/engine"
	"github.com/DaanHessen/grimoire-tui/internal/gamelog"
)

func (m *model) selectedEntry() (gamelog.Entry, bool) {
	entries := m.game.State().Log.Entries
	if m.logCursor < 0 || m.logCursor >= len(entries) {
		return gamelog.Entry{}, false
	}
	return entries[m.logCursor], true
}

func (m *model) clampLogCursor() {
	n := m.game.State().Log.Len()
	if m.logCursor >= n {
		m.logCursor = n - 1
	}
	if m.logCursor < 0 {
		m.logCursor = 0
	}
}

func (m *model) logKey(msg tea.KeyMsg) tea.Cmd {
	n := m.game.State().Log.Len()
	e, ok := m.selectedEntry()
	switch msg.String() {
	case "up", "k":
		if m.logCursor > 0 {
			m.logCursor--
		}
	case "down", "j":
		if m.logCursor < n-1 {
			m.logCursor++
		}
	case "home", "g":
		m.logCursor = 0
	case "end", "G":
		m.logCursor = n - 1
	case "p":
		m.commit(engine.TogglePhase{})
		m.logCursor = m.game.State().Log.Len() - 1
	case "a", "enter":
		m.prompt = newPrompt("添加记录", "", func(m *model, v string) tea.Cmd {
			if m.commit(engine.AppendLog{Text: v}).Has(engine.ChangeLog) {
				m.logCursor = m.game.State().Log.Len() - 1
			}
			return nil
		})
	case "i":
		if !ok {
			return nil
		}
		after := e.ID
		m.prompt = newPrompt("在此后插入", "", func(m *model, v string) tea.Cmd {
			if m.commit(engine.InsertLog{After: after, Text: v}).Has(engine.ChangeLog) {
				m.logCursor++
			}
			return nil
		})
	case "e":
		if !ok {
			return nil
		}
		id := e.ID
		m.prompt = newPrompt("编辑记录", e.Text, func(m *model, v string) tea.Cmd {
			m.commit(engine.EditLog{ID: id, Text: v})
			return nil
		})
	case "x":
		if !ok {
			return nil
		}
		id := e.ID
		message, _ := engine.Confirmation(engine.DeleteLog{ID: id})
		m.ask(message, func(m *model) tea.Cmd {
			m.commit(engine.DeleteLog{ID: id})
			m.clampLogCursor()
			return nil
		})
	}
	return nil
}

func (m model) renderLog(h int) string {
	l := m.game.State().Log
	var b strings.Builder
	b.WriteString(m.st.muted.Render(fmt.Sprintf("当前 %s  ·  p: %s", l.Phase.Label(), l.NextPhaseLabel())) + "\n\n")
	if l.Len() == 0 {
		b.WriteString(m.st.muted.Render("暂无记录。按 p 开始第一夜，按 a 添加记录。"))
		return b.String()
	}
	rows := h - 2
	if rows < 1 {
		rows = 1
	}
	start := 0
	if m.logCursor >= rows {
		start = m.logCursor - rows + 1
	}
	ctx := l.Contexts()
	for i := start; i < len(l.Entries) && i < start+rows; i++ {
		e := l.Entries[i]
		b.WriteString(m.renderEntry(e, ctx[e.ID], i == m.logCursor) + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m model) renderEntry(e gamelog.Entry, night, selected bool) string {
	cursor := "  "
	if selected {
		cursor = m.st.selected.Render("> ")
	}
	if e.Type == gamelog.TypePhase {
		return cursor + m.st.phase.Render(e.Text)
	}
	icon := m.st.day.Render("☀")
	if night {
		icon = m.st.night.Render("☾")
	}
	text := m.st.text.Render(e.Text)
	switch {
	case selected:
		text = m.st.selected.Render(e.Text)
	case e.Type == gamelog.TypeInfo:
		text = m.st.muted.Render(e.Text)
	}
	return cursor + m.st.muted.Render(e.Time) + " " + icon + " " + text
}

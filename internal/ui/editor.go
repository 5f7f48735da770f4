package ui

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/DaanHessen/grimoire-tui/internal/script"
)

var editorFields = []struct {
	field script.Field
	label string
}{
	{script.FieldTitle, "标题"},
	{script.FieldAuthor, "作者"},
	{script.FieldDescription, "简介"},
}

// scriptEditor holds a draft of a custom script. Nothing reaches the library
// until it is saved.
type scriptEditor struct {
	draft  script.Script
	isNew  bool
	cursor int
	now    func() time.Time
}

func newScriptEditor(s script.Script, isNew bool) *scriptEditor {
	return &scriptEditor{draft: s.Clone(), isNew: isNew, now: time.Now}
}

func (e *scriptEditor) rows() int { return len(editorFields) + len(e.draft.Roles) }

// role returns the role under the cursor, if the cursor is on one.
func (e *scriptEditor) role() (script.Role, bool) {
	i := e.cursor - len(editorFields)
	if i < 0 || i >= len(e.draft.Roles) {
		return script.Role{}, false
	}
	return e.draft.Roles[i], true
}

func (e *scriptEditor) updateRole(fn func(r *script.Role)) {
	if r, ok := e.role(); ok {
		e.draft.UpdateRole(r.ID, fn)
	}
}

func (m *model) editorKey(msg tea.KeyMsg) tea.Cmd {
	e := m.editor
	r, onRole := e.role()
	switch msg.String() {
	case "up", "k":
		if e.cursor > 0 {
			e.cursor--
		}
	case "down", "j":
		if e.cursor < e.rows()-1 {
			e.cursor++
		}
	case "enter":
		if !onRole {
			f := editorFields[e.cursor]
			m.prompt = newPrompt(f.label, e.draft.FieldValue(f.field), func(m *model, v string) tea.Cmd {
				m.editor.draft.SetField(f.field, strings.TrimSpace(v))
				return nil
			})
			return nil
		}
		m.prompt = newPrompt("角色名", r.Name, func(m *model, v string) tea.Cmd {
			m.editor.updateRole(func(r *script.Role) { r.Name = strings.TrimSpace(v) })
			return nil
		})
	case "b":
		if onRole {
			m.prompt = newPrompt("能力", r.Ability, func(m *model, v string) tea.Cmd {
				m.editor.updateRole(func(r *script.Role) { r.Ability = strings.TrimSpace(v) })
				return nil
			})
		}
	case "t":
		e.updateRole(func(r *script.Role) { r.Team = r.Team.Next() })
	case "f":
		e.updateRole(func(r *script.Role) { r.FirstNight = !r.FirstNight })
	case "g":
		e.updateRole(func(r *script.Role) { r.OtherNight = !r.OtherNight })
	case "a":
		e.draft.AddRole(e.now())
		e.cursor = e.rows() - 1
	case "x":
		if !onRole {
			return nil
		}
		id := r.ID
		m.ask("确定要删除这个角色吗？", func(m *model) tea.Cmd {
			if m.editor != nil && m.editor.draft.DeleteRole(id) && m.editor.cursor >= m.editor.rows() {
				m.editor.cursor = m.editor.rows() - 1
			}
			return nil
		})
	case "w", "ctrl+s":
		if strings.TrimSpace(e.draft.Title) == "" {
			m.status = "标题不能为空"
			return nil
		}
		m.editor = nil
		if e.isNew {
			return m.addScript(e.draft, "已创建 "+e.draft.Title)
		}
		return m.updateScript(e.draft)
	case "esc":
		m.editor = nil
	}
	return nil
}

func (m model) renderEditor(h int) string {
	e := m.editor
	var b strings.Builder
	title := "编辑剧本"
	if e.isNew {
		title = "新建剧本"
	}
	b.WriteString(m.st.title.Render(title) + "\n\n")
	lines := make([]string, 0, e.rows())
	for _, f := range editorFields {
		v := e.draft.FieldValue(f.field)
		if v == "" {
			v = m.st.muted.Render("（空）")
		}
		lines = append(lines, f.label+": "+v)
	}
	for _, r := range e.draft.Roles {
		name := r.Name
		if name == "" {
			name = "（未命名）"
		}
		line := m.st.teamStyle(r.Team).Render(r.Team.Label()+" "+name) + wakeFlags(r)
		if r.Ability != "" {
			line += "  " + m.st.muted.Render(r.Ability)
		}
		lines = append(lines, line)
	}
	rows := h - 3
	if rows < 1 {
		rows = 1
	}
	start := 0
	if e.cursor >= rows {
		start = e.cursor - rows + 1
	}
	for i := start; i < len(lines) && i < start+rows; i++ {
		prefix := "  "
		if i == e.cursor {
			prefix = m.st.selected.Render("> ")
		}
		b.WriteString(prefix + lines[i] + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

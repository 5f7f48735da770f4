package ui

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/DaanHessen/grimoire-tui/internal/script"
)

func (m *model) currentScript() (script.Script, bool) {
	if m.lib == nil {
		return script.Script{}, false
	}
	return m.lib.Get(m.scriptID)
}

func (m *model) selectScript(id string) {
	if m.scriptID != id {
		m.roleCursor = 0
		m.expanded = ""
	}
	m.scriptID = id
}

func (m *model) stepScript(step int) {
	all := m.lib.Scripts()
	if len(all) == 0 {
		return
	}
	idx := 0
	for i, s := range all {
		if s.ID == m.scriptID {
			idx = i
		}
	}
	idx = (idx + step + len(all)) % len(all)
	m.selectScript(all[idx].ID)
}

// visibleRoles lists the filtered roles in team display order.
func visibleRoles(s script.Script, query string) []script.Role {
	groups := s.ByTeam(query)
	var out []script.Role
	for _, t := range script.AllTeams {
		out = append(out, groups[t]...)
	}
	return out
}

func (m *model) scriptKey(msg tea.KeyMsg) tea.Cmd {
	if m.lib == nil {
		return nil
	}
	s, ok := m.currentScript()
	roles := visibleRoles(s, m.query)
	switch msg.String() {
	case "[", "left":
		m.stepScript(-1)
	case "]", "right":
		m.stepScript(1)
	case "up", "k":
		if m.roleCursor > 0 {
			m.roleCursor--
		}
	case "down", "j":
		if m.roleCursor < len(roles)-1 {
			m.roleCursor++
		}
	case "enter":
		if m.roleCursor < len(roles) {
			id := roles[m.roleCursor].ID
			if m.expanded == id {
				id = ""
			}
			m.expanded = id
		}
	case "/":
		m.prompt = newPrompt("搜索角色", m.query, func(m *model, v string) tea.Cmd {
			m.query = strings.TrimSpace(v)
			m.roleCursor = 0
			return nil
		})
	case "esc":
		m.query = ""
		m.expanded = ""
	case "o":
		m.prompt = newPrompt("剧本图片路径", "", func(m *model, v string) tea.Cmd {
			return m.startImport(strings.TrimSpace(v))
		})
	case "n":
		m.editor = newScriptEditor(script.Script{Title: "新剧本", Type: script.TypeCustom}, true)
	case "E":
		if !ok {
			return nil
		}
		if !s.Custom() {
			m.status = "内置剧本不可修改"
			return nil
		}
		m.editor = newScriptEditor(s, false)
	case "X":
		if !ok || !s.Custom() {
			m.status = "内置剧本不可删除"
			return nil
		}
		id := s.ID
		m.ask("确定要删除这个剧本吗？", func(m *model) tea.Cmd { return m.deleteScript(id) })
	case "y":
		if !ok {
			return nil
		}
		qr, err := script.QRText(s)
		if err != nil {
			m.status = "无法生成二维码: " + err.Error()
			return nil
		}
		m.qr = qr
	case "s":
		if !ok {
			return nil
		}
		m.prompt = newPrompt("导出到 (.json 或 .png)", slug(s.Title)+".json", func(m *model, v string) tea.Cmd {
			m.exportScript(s, strings.TrimSpace(v))
			return nil
		})
	case "I":
		m.prompt = newPrompt("导入剧本文件", "", func(m *model, v string) tea.Cmd {
			return m.importFile(strings.TrimSpace(v))
		})
	}
	return nil
}

func slug(title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return "script"
	}
	return strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == ' ' {
			return '_'
		}
		return r
	}, title)
}

func (m *model) exportScript(s script.Script, path string) {
	var (
		data []byte
		err  error
	)
	if strings.EqualFold(filepath.Ext(path), ".png") {
		data, err = script.QR(s, 512)
	} else {
		data, err = script.Encode(s)
	}
	if err == nil {
		err = os.WriteFile(path, data, 0o644)
	}
	if err != nil {
		log.Printf("export %s: %v", path, err)
		m.status = "导出失败: " + err.Error()
		return
	}
	m.status = "已导出到 " + path
}

func (m *model) importFile(path string) tea.Cmd {
	data, err := os.ReadFile(path)
	if err != nil {
		m.status = "无法读取文件: " + err.Error()
		return nil
	}
	s, err := script.Decode(data, time.Now())
	if err != nil {
		m.status = "导入失败: " + err.Error()
		return nil
	}
	return m.addScript(s, "已导入 "+s.Title)
}

// Optical import ---------------------------------------------------------------

type ocrState struct {
	gen      int
	progress float64
	running  bool
}

type ocrProgressMsg struct {
	gen int
	p   float64
	ch  <-chan tea.Msg
}

type ocrDoneMsg struct {
	gen int
	s   script.Script
	err error
}

func waitFor(ch <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return nil
		}
		return msg
	}
}

// startImport reads path and recognizes it off the update loop. Progress and
// the result arrive as messages tagged with the import generation.
func (m *model) startImport(path string) tea.Cmd {
	if m.importer == nil {
		m.status = "文字识别不可用"
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		m.status = "无法读取图片: " + err.Error()
		return nil
	}
	m.ocr.gen++
	m.ocr.running = true
	m.ocr.progress = 0
	gen, ctx, imp := m.ocr.gen, m.ctx, m.importer
	ch := make(chan tea.Msg, 16)
	go func() {
		defer close(ch)
		s, err := imp.Import(ctx, data, func(p float64) {
			select {
			case ch <- ocrProgressMsg{gen: gen, p: p, ch: ch}:
			default:
			}
		})
		ch <- ocrDoneMsg{gen: gen, s: s, err: err}
	}()
	return waitFor(ch)
}

func (m *model) finishImport(msg ocrDoneMsg) tea.Cmd {
	if msg.gen != m.ocr.gen || errors.Is(msg.err, script.ErrSuperseded) {
		return nil
	}
	m.ocr.running = false
	if msg.err != nil {
		log.Printf("import script: %v", msg.err)
		m.status = "识别失败，请重试"
		return nil
	}
	what := "已识别 " + msg.s.Title
	if script.IsPlaceholder(msg.s.Roles) {
		what = "未识别到角色，请手动编辑"
	}
	return m.addScript(msg.s, what)
}

// Rendering ------------------------------------------------------------------

func (m model) renderScripts(h int) string {
	if m.lib == nil {
		return m.st.muted.Render("没有可用的剧本")
	}
	listW := m.width / 4
	if listW < 16 {
		listW = 16
	}
	var list strings.Builder
	for _, s := range m.lib.Scripts() {
		title := s.Title
		if s.Custom() {
			title = "✎ " + title
		}
		if s.ID == m.scriptID {
			list.WriteString(m.st.selected.Render("> "+title) + "\n")
		} else {
			list.WriteString(m.st.text.Render("  "+title) + "\n")
		}
	}
	left := lipgloss.NewStyle().Width(listW).MaxHeight(h).Render(strings.TrimRight(list.String(), "\n"))
	right := lipgloss.NewStyle().Width(m.width - listW - 2).MaxHeight(h).Render(m.renderScriptDetail())
	return lipgloss.JoinHorizontal(lipgloss.Top, left, "  ", right)
}

func (m model) renderScriptDetail() string {
	s, ok := m.currentScript()
	if !ok {
		return m.st.muted.Render("未选择剧本")
	}
	var b strings.Builder
	b.WriteString(m.st.title.Render(s.Title))
	if s.Author != "" {
		b.WriteString(m.st.muted.Render("  作者: " + s.Author))
	}
	b.WriteString("\n")
	if s.Description != "" {
		b.WriteString(m.markdown(s.Description, "") + "\n")
	}
	if m.ocr.running {
		b.WriteString(m.st.warning.Render(fmt.Sprintf("识别中 %3.0f%%", m.ocr.progress*100)) + "\n")
	}
	if m.query != "" {
		b.WriteString(m.st.warning.Render("搜索: "+m.query) + "\n")
	}
	b.WriteString("\n")

	groups := s.ByTeam(m.query)
	idx := 0
	for _, t := range script.AllTeams {
		roles := groups[t]
		if len(roles) == 0 {
			continue
		}
		b.WriteString(m.st.teamStyle(t).Bold(true).Render(fmt.Sprintf("%s (%d)", t.Label(), len(roles))) + "\n")
		for _, r := range roles {
			line := m.st.teamStyle(t).Render("  " + r.Name)
			if idx == m.roleCursor {
				line = m.st.selected.Render("> " + r.Name)
			}
			b.WriteString(line + wakeFlags(r) + "\n")
			if r.ID == m.expanded {
				b.WriteString(m.renderAbility(r) + "\n")
			}
			idx++
		}
	}
	if idx == 0 {
		b.WriteString(m.st.muted.Render("没有匹配的角色") + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func wakeFlags(r script.Role) string {
	var flags []string
	if r.FirstNight {
		flags = append(flags, "首夜唤醒")
	}
	if r.OtherNight {
		flags = append(flags, "每夜唤醒")
	}
	if len(flags) == 0 {
		return ""
	}
	return "  [" + strings.Join(flags, " ") + "]"
}

func (m model) renderAbility(r script.Role) string {
	ability := r.Ability
	if ability == "" {
		ability = "（暂无能力描述）"
	}
	return m.markdown("> "+ability, "    ")
}

// markdown renders md with glamour, falling back to indented muted text.
func (m model) markdown(md, indent string) string {
	if m.md != nil {
		if out, err := m.md.Render(md); err == nil {
			return strings.Trim(out, "\n")
		}
	}
	return indent + m.st.muted.Render(strings.TrimPrefix(md, "> "))
}

package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/DaanHessen/grimoire-tui/internal/engine"
	"github.com/DaanHessen/grimoire-tui/internal/script"
	"github.com/DaanHessen/grimoire-tui/internal/seating"
)

// grimoireTop is the first terminal row of the seating canvas.
const grimoireTop = 2

// mouseHooks switches the terminal into all-motion reporting while a drag is
// in flight, so motion and release are seen even off the seat labels.
type mouseHooks struct {
	pending []tea.Cmd
}

func (h *mouseHooks) Attach(seating.Input) { h.pending = append(h.pending, tea.EnableMouseAllMotion) }
func (h *mouseHooks) Detach(seating.Input) { h.pending = append(h.pending, tea.EnableMouseCellMotion) }

func (h *mouseHooks) flush() tea.Cmd {
	if len(h.pending) == 0 {
		return nil
	}
	cmds := h.pending
	h.pending = nil
	return tea.Sequence(cmds...)
}

func (m model) grimoireSize() (w, h int) {
	h = m.height - grimoireTop - lipgloss.Height(m.renderFooter())
	if h < 3 {
		h = 3
	}
	w = m.width
	if w < 10 {
		w = 10
	}
	return w, h
}

func (m model) renderGrimoire() string { return m.seatCanvas().render() }

func (m model) seatCanvas() *canvas {
	w, h := m.grimoireSize()
	c := newCanvas(w, h)
	st := m.game.State()
	n := len(st.Players)
	pw, ph := float64(w)*cellW, float64(h)*cellH

	dragID := -1
	if m.drag.Dragging() {
		dragID = m.drag.PlayerID()
	}

	// Centre first so seat labels shift around it rather than the reverse.
	cx, cy := w/2, h/2
	c.put(cy-1, cx, st.Log.Phase.Label(), m.st.phase, -1)
	if d, ok := st.Distribution(); ok {
		parts := make([]string, 0, len(script.AllTeams))
		for _, t := range script.AllTeams {
			parts = append(parts, fmt.Sprintf("%s %d", t.Label(), d.Count(t)))
		}
		c.put(cy, cx, strings.Join(parts, "  "), m.st.muted, -1)
	}
	c.put(cy+1, cx, fmt.Sprintf("%d 名玩家", n), m.st.muted, -1)

	for i, p := range st.Players {
		col, row := toCell(seating.Position(float64(i), n, pw, ph))
		label := fmt.Sprintf("%d %s", i+1, p.Name)
		style := m.st.text
		if p.IsDead {
			label = "☠ " + label
			style = m.st.dead
		}
		switch {
		case p.ID == dragID:
			style = m.st.muted
		case i == m.seat:
			style = m.st.selected.Strikethrough(p.IsDead)
		}
		c.put(row, col, label, style, i)
		if p.Role != nil {
			c.put(row+1, col, p.Role.Name, m.st.teamStyle(p.Role.Team), i)
		}
	}

	if dragID >= 0 {
		if gap, ok := m.drag.Gap(); ok {
			ind := seating.IndicatorAt(gap, n, pw, ph)
			col, row := toCell(ind.At)
			c.put(row, col, indicatorGlyph(ind.Rotation), m.st.warning, -1)
		}
		if p, ok := st.Player(dragID); ok {
			col, row := toCell(m.drag.Pointer())
			c.put(row, col, p.Name, m.st.selected, -1)
		}
	}
	return c
}

func (m *model) handleMouse(msg tea.MouseMsg) tea.Cmd {
	w, h := m.grimoireSize()
	col, row := msg.X, msg.Y-grimoireTop
	p := toPixels(col, row)
	center := seating.Point{X: float64(w) * cellW / 2, Y: float64(h) * cellH / 2}
	players := m.game.State().Players

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			break
		}
		// A press while still dragging means the last release was lost.
		m.drag.Cancel()
		i := m.seatCanvas().hitTest(col, row)
		if i < 0 {
			break
		}
		m.seat = i
		m.drag.Begin(players[i].ID, p, seating.InputMouse)
	case tea.MouseActionMotion:
		m.drag.Move(p, center, len(players))
	case tea.MouseActionRelease:
		drop, ok := m.drag.End()
		if !ok {
			break
		}
		if m.commit(engine.ReorderPlayer{ID: drop.PlayerID, Gap: drop.Gap}).Has(engine.ChangePlayers) {
			m.seat = engine.PlayerIndex(m.game.State().Players, drop.PlayerID)
		}
	}
	return m.hooks.flush()
}

func (m *model) selectedPlayer() (engine.Player, bool) {
	players := m.game.State().Players
	if m.seat < 0 || m.seat >= len(players) {
		return engine.Player{}, false
	}
	return players[m.seat], true
}

func (m *model) grimoireKey(msg tea.KeyMsg) tea.Cmd {
	players := m.game.State().Players
	n := len(players)
	p, ok := m.selectedPlayer()
	switch msg.String() {
	case "left", "h":
		m.seat = (m.seat - 1 + n) % n
	case "right", "l":
		m.seat = (m.seat + 1) % n
	case "H", "L":
		if !ok || n < 2 {
			return nil
		}
		gap := m.seat + 2
		if msg.String() == "H" {
			gap = m.seat - 1
		}
		switch {
		case gap > n:
			gap = 0
		case gap < 0:
			gap = n
		}
		m.commit(engine.ReorderPlayer{ID: p.ID, Gap: gap})
		m.seat = engine.PlayerIndex(m.game.State().Players, p.ID)
	case "a":
		m.commit(engine.AddPlayer{})
		m.seat = len(m.game.State().Players) - 1
	case "x":
		if ok {
			m.commit(engine.RemovePlayer{ID: p.ID})
		}
	case "r", "enter":
		if ok && m.drag.BeginEdit() {
			id := p.ID
			m.prompt = newPrompt("玩家名字", p.Name, func(m *model, v string) tea.Cmd {
				m.drag.EndEdit()
				m.commit(engine.RenamePlayer{ID: id, Name: v})
				return nil
			})
			m.prompt.onCancel = func(m *model) { m.drag.EndEdit() }
		}
	case "d":
		if ok {
			m.commit(engine.ToggleDead{ID: p.ID})
		}
	case "o":
		if ok {
			m.openPicker(p)
		}
	case "D":
		m.openDistEditor()
	case "R":
		return m.dispatch(engine.ResetGame{})
	case "N":
		return m.dispatch(engine.NextGame{})
	}
	return nil
}

// Role picker ----------------------------------------------------------------

type rolePicker struct {
	playerID int
	roles    []script.Role
	// cursor 0 is "no role".
	cursor int
}

func (m *model) openPicker(p engine.Player) {
	var roles []script.Role
	if s, ok := m.currentScript(); ok {
		roles = s.Roles
	} else if m.lib != nil {
		roles = m.lib.Catalog()
	}
	pk := &rolePicker{playerID: p.ID, roles: roles}
	if p.Role != nil {
		for i, r := range roles {
			if r.ID == p.Role.ID {
				pk.cursor = i + 1
			}
		}
	}
	m.picker = pk
}

func (m *model) pickerKey(msg tea.KeyMsg) tea.Cmd {
	pk := m.picker
	switch msg.String() {
	case "up", "k":
		if pk.cursor > 0 {
			pk.cursor--
		}
	case "down", "j":
		if pk.cursor < len(pk.roles) {
			pk.cursor++
		}
	case "enter":
		var role *script.Role
		if pk.cursor > 0 {
			r := pk.roles[pk.cursor-1]
			role = &r
		}
		m.picker = nil
		m.commit(engine.AssignRole{ID: pk.playerID, Role: role})
	case "esc", "q":
		m.picker = nil
	}
	return nil
}

func (m model) renderPicker(h int) string {
	pk := m.picker
	lines := []string{"清除角色"}
	for _, r := range pk.roles {
		lines = append(lines, r.Name+"  "+r.Team.Label())
	}
	rows := h - 4
	if rows < 3 {
		rows = 3
	}
	start := 0
	if pk.cursor >= rows {
		start = pk.cursor - rows + 1
	}
	var b strings.Builder
	b.WriteString(m.st.title.Render("选择角色") + "\n")
	for i := start; i < len(lines) && i < start+rows; i++ {
		prefix := "  "
		if i == pk.cursor {
			prefix = "> "
		}
		style := m.st.muted
		if i > 0 {
			style = m.st.teamStyle(pk.roles[i-1].Team)
		}
		if i == pk.cursor {
			style = m.st.selected
		}
		b.WriteString(prefix + style.Render(lines[i]) + "\n")
	}
	return m.st.dialog.Render(strings.TrimRight(b.String(), "\n"))
}

// Distribution editor --------------------------------------------------------

type distEditor struct {
	fields [4]string
	cursor int
}

func (m *model) openDistEditor() {
	d, ok := m.game.State().Distribution()
	if !ok {
		m.status = fmt.Sprintf("至少需要 %d 名玩家", engine.MinPlayers)
		return
	}
	e := &distEditor{}
	for i, t := range script.AllTeams {
		e.fields[i] = fmt.Sprint(d.Count(t))
	}
	m.dist = e
}

func (e *distEditor) distribution() engine.Distribution {
	var d engine.Distribution
	for i, t := range script.AllTeams {
		d = d.WithCount(t, engine.ParseCount(e.fields[i]))
	}
	return d
}

func (m *model) distKey(msg tea.KeyMsg) tea.Cmd {
	e := m.dist
	switch msg.Type {
	case tea.KeyUp, tea.KeyShiftTab:
		e.cursor = (e.cursor + len(e.fields) - 1) % len(e.fields)
	case tea.KeyDown, tea.KeyTab:
		e.cursor = (e.cursor + 1) % len(e.fields)
	case tea.KeyBackspace:
		if f := []rune(e.fields[e.cursor]); len(f) > 0 {
			e.fields[e.cursor] = string(f[:len(f)-1])
		}
	case tea.KeyEsc:
		m.dist = nil
	case tea.KeyEnter:
		m.dist = nil
		m.commit(engine.SetDistribution{Distribution: e.distribution()})
	case tea.KeyCtrlR:
		m.dist = nil
		m.commit(engine.ResetDistribution{})
	case tea.KeyRunes:
		e.fields[e.cursor] += string(msg.Runes)
	}
	return nil
}

func (m model) renderDistEditor() string {
	e := m.dist
	var b strings.Builder
	b.WriteString(m.st.title.Render("角色配置") + "\n")
	for i, t := range script.AllTeams {
		label := m.st.teamStyle(t).Render(fmt.Sprintf("%-4s", t.Label()))
		field := e.fields[i]
		if i == e.cursor {
			field = m.st.selected.Render(field + "█")
		}
		b.WriteString(label + "  " + field + "\n")
	}
	d := e.distribution()
	b.WriteString(m.st.muted.Render(fmt.Sprintf("合计 %d / %d 名玩家", d.Total(), len(m.game.State().Players))) + "\n")
	b.WriteString(m.st.muted.Render("enter 保存  ctrl+r 恢复推荐  esc 取消"))
	return m.st.dialog.Render(b.String())
}

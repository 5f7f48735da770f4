package ui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/DaanHessen/grimoire-tui/internal/engine"
	"github.com/DaanHessen/grimoire-tui/internal/gamelog"
	"github.com/DaanHessen/grimoire-tui/internal/script"
	"github.com/DaanHessen/grimoire-tui/internal/seating"
	"github.com/DaanHessen/grimoire-tui/internal/util"
)

func testModel(t *testing.T) model {
	t.Helper()
	lib := script.NewLibrary(script.MustBuiltin(), nil, nil)
	return initialModel(context.Background(), Deps{
		Game:    engine.NewGame(engine.NewState()),
		Library: lib,
	}, util.Config{}, "test")
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func playerIDs(m model) []int {
	var ids []int
	for _, p := range m.game.State().Players {
		ids = append(ids, p.ID)
	}
	return ids
}

func sameInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestCanvasShiftsOverlappingSpans(t *testing.T) {
	c := newCanvas(40, 3)
	plain := lipgloss.NewStyle()
	c.put(1, 10, "abcd", plain, 0)
	c.put(1, 10, "wxyz", plain, 1)
	if got := c.hitTest(8, 1); got != 0 {
		t.Fatalf("hit at col 8 = %d, want 0", got)
	}
	if got := c.hitTest(13, 1); got != 1 {
		t.Fatalf("hit at col 13 = %d, want 1", got)
	}
	if got := c.hitTest(30, 1); got != -1 {
		t.Fatalf("empty cell hit = %d", got)
	}
	if got := c.render(); got != "\n        abcd wxyz\n" {
		t.Fatalf("render = %q", got)
	}
}

func TestCanvasDropsSpanWithoutRoom(t *testing.T) {
	c := newCanvas(6, 1)
	c.put(0, 3, "abcd", lipgloss.NewStyle(), 0)
	c.put(0, 3, "xy", lipgloss.NewStyle(), 1)
	if got := c.hitTest(5, 0); got != -1 {
		t.Fatalf("second span should be dropped, hit = %d", got)
	}
}

func TestIndicatorGlyph(t *testing.T) {
	cases := map[float64]string{
		0:   "│",
		45:  "╱",
		90:  "─",
		135: "╲",
		180: "│",
		270: "─",
		-45: "╲",
	}
	for deg, want := range cases {
		if got := indicatorGlyph(deg); got != want {
			t.Fatalf("indicatorGlyph(%v) = %q, want %q", deg, got, want)
		}
	}
}

func TestCellPixelRoundTrip(t *testing.T) {
	col, row := toCell(toPixels(7, 3))
	if col != 7 || row != 3 {
		t.Fatalf("round trip = (%d,%d)", col, row)
	}
}

// seatCell finds a canvas cell belonging to seat i.
func seatCell(t *testing.T, m model, i int) (col, row int) {
	t.Helper()
	c := m.seatCanvas()
	for row := 0; row < c.h; row++ {
		for col := 0; col < c.w; col++ {
			if c.hitTest(col, row) == i {
				return col, row
			}
		}
	}
	t.Fatalf("seat %d not drawn", i)
	return 0, 0
}

func TestMouseDragReordersPlayers(t *testing.T) {
	m := testModel(t)
	col, row := seatCell(t, m, 0)

	press := tea.MouseMsg{X: col, Y: row + grimoireTop, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft}
	if cmd := m.handleMouse(press); cmd == nil {
		t.Fatalf("press should switch on all-motion reporting")
	}
	if !m.drag.Dragging() || m.drag.PlayerID() != 1 {
		t.Fatalf("drag state = %v player %d", m.drag.State(), m.drag.PlayerID())
	}

	// Far left of the centre, which is gap 4 of 5.
	_, h := m.grimoireSize()
	m.handleMouse(tea.MouseMsg{X: 0, Y: h/2 + grimoireTop, Action: tea.MouseActionMotion})
	if gap, ok := m.drag.Gap(); !ok || gap != 4 {
		t.Fatalf("gap = %d %v, want 4", gap, ok)
	}
	if view := m.View(); view == "" {
		t.Fatalf("empty view while dragging")
	}

	if cmd := m.handleMouse(tea.MouseMsg{X: 0, Y: h/2 + grimoireTop, Action: tea.MouseActionRelease}); cmd == nil {
		t.Fatalf("release should restore cell-motion reporting")
	}
	if m.drag.State() != seating.Idle {
		t.Fatalf("drag not released")
	}
	if got, want := playerIDs(m), []int{2, 3, 4, 1, 5}; !sameInts(got, want) {
		t.Fatalf("order = %v, want %v", got, want)
	}
	if m.seat != 3 {
		t.Fatalf("selection should follow the moved player, seat = %d", m.seat)
	}
}

func TestReleaseWithoutMoveKeepsOrder(t *testing.T) {
	m := testModel(t)
	col, row := seatCell(t, m, 2)
	m.handleMouse(tea.MouseMsg{X: col, Y: row + grimoireTop, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	m.handleMouse(tea.MouseMsg{X: col, Y: row + grimoireTop, Action: tea.MouseActionRelease})
	if got, want := playerIDs(m), []int{1, 2, 3, 4, 5}; !sameInts(got, want) {
		t.Fatalf("order = %v, want %v", got, want)
	}
}

func TestBlurCancelsDrag(t *testing.T) {
	m := testModel(t)
	col, row := seatCell(t, m, 0)
	m.handleMouse(tea.MouseMsg{X: col, Y: row + grimoireTop, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	next, cmd := m.Update(tea.BlurMsg{})
	if cmd == nil {
		t.Fatalf("blur should release listeners")
	}
	if next.(model).drag.Dragging() {
		t.Fatalf("drag survived blur")
	}
}

func TestKeyboardMoveWrapsAround(t *testing.T) {
	m := testModel(t)
	m.handleKey(key("H"))
	if got, want := playerIDs(m), []int{2, 3, 4, 5, 1}; !sameInts(got, want) {
		t.Fatalf("order = %v, want %v", got, want)
	}
	if m.seat != 4 {
		t.Fatalf("seat = %d", m.seat)
	}
	m.handleKey(key("L"))
	if got, want := playerIDs(m), []int{1, 2, 3, 4, 5}; !sameInts(got, want) {
		t.Fatalf("order after wrap back = %v, want %v", got, want)
	}
}

func TestResetAsksFirst(t *testing.T) {
	m := testModel(t)
	m.handleKey(key("a"))
	if n := len(m.game.State().Players); n != 6 {
		t.Fatalf("players = %d", n)
	}
	m.handleKey(key("R"))
	if m.confirm == nil {
		t.Fatalf("reset should ask for confirmation")
	}
	if n := len(m.game.State().Players); n != 6 {
		t.Fatalf("reset ran before confirmation")
	}
	m.handleKey(key("n"))
	if m.confirm != nil || len(m.game.State().Players) != 6 {
		t.Fatalf("declined reset changed state")
	}
	m.handleKey(key("R"))
	m.handleKey(key("y"))
	if n := len(m.game.State().Players); n != engine.DefaultPlayerCount {
		t.Fatalf("players after reset = %d", n)
	}
}

func TestRenameBlocksDrag(t *testing.T) {
	m := testModel(t)
	m.handleKey(key("r"))
	if m.prompt == nil || m.drag.State() != seating.Editing {
		t.Fatalf("rename should open a prompt in edit mode")
	}
	if m.drag.Begin(1, seating.Point{}, seating.InputMouse) {
		t.Fatalf("drag started while editing")
	}
	m.handleKey(tea.KeyMsg{Type: tea.KeyCtrlU})
	for _, r := range "小明" {
		m.handleKey(key(string(r)))
	}
	m.handleKey(key("enter"))
	if m.drag.State() != seating.Idle {
		t.Fatalf("edit mode not left")
	}
	if p, _ := m.game.State().Player(1); p.Name != "小明" {
		t.Fatalf("name = %q", p.Name)
	}
}

func TestPromptKeys(t *testing.T) {
	p := newPrompt("x", "ab", nil)
	p.key(key("c"))
	p.key(key("backspace"))
	p.key(key(" "))
	p.key(key("d"))
	if submitted, done := p.key(key("enter")); !submitted || !done {
		t.Fatalf("enter = %v %v", submitted, done)
	}
	if p.text() != "ab d" {
		t.Fatalf("text = %q", p.text())
	}
	if submitted, done := p.key(key("esc")); submitted || !done {
		t.Fatalf("esc = %v %v", submitted, done)
	}
}

func TestLogKeys(t *testing.T) {
	m := testModel(t)
	m.setView(viewLog)
	m.handleKey(key("p"))
	m.handleKey(key("a"))
	for _, r := range "查验" {
		m.handleKey(key(string(r)))
	}
	m.handleKey(key("enter"))
	l := m.game.State().Log
	if l.Len() != 2 || l.Entries[0].Type != gamelog.TypePhase || l.Entries[1].Text != "查验" {
		t.Fatalf("entries = %+v", l.Entries)
	}
	if m.logCursor != 1 {
		t.Fatalf("cursor = %d", m.logCursor)
	}
	m.handleKey(key("x"))
	if m.confirm == nil {
		t.Fatalf("delete should ask first")
	}
	m.handleKey(key("y"))
	if l := m.game.State().Log; l.Len() != 1 || m.logCursor != 0 {
		t.Fatalf("after delete len=%d cursor=%d", l.Len(), m.logCursor)
	}
}

func TestDistributionEditorSaves(t *testing.T) {
	m := testModel(t)
	m.handleKey(key("D"))
	if m.dist == nil {
		t.Fatalf("editor not opened")
	}
	m.handleKey(key("backspace"))
	m.handleKey(key("2"))
	m.handleKey(key("enter"))
	st := m.game.State()
	if st.CustomDistribution == nil {
		t.Fatalf("distribution not saved")
	}
	want, _ := engine.Recommended(engine.DefaultPlayerCount)
	want.Townsfolk = 2
	if *st.CustomDistribution != want {
		t.Fatalf("distribution = %+v, want %+v", *st.CustomDistribution, want)
	}
}

func TestRolePickerAssigns(t *testing.T) {
	m := testModel(t)
	s, ok := m.currentScript()
	if !ok || len(s.Roles) == 0 {
		t.Fatalf("no script selected")
	}
	m.handleKey(key("o"))
	m.handleKey(key("j"))
	m.handleKey(key("enter"))
	p, _ := m.game.State().Player(1)
	if p.Role == nil || p.Role.ID != s.Roles[0].ID {
		t.Fatalf("role = %+v, want %s", p.Role, s.Roles[0].ID)
	}
	m.handleKey(key("o"))
	m.handleKey(key("k"))
	m.handleKey(key("enter"))
	if p, _ := m.game.State().Player(1); p.Role != nil {
		t.Fatalf("role not cleared")
	}
}

func TestBuiltinScriptIsReadOnly(t *testing.T) {
	m := testModel(t)
	m.setView(viewScript)
	m.handleKey(key("E"))
	if m.editor != nil {
		t.Fatalf("editor opened for a built-in script")
	}
	m.handleKey(key("X"))
	if m.confirm != nil {
		t.Fatalf("delete offered for a built-in script")
	}
}

func TestEditorCreatesCustomScript(t *testing.T) {
	m := testModel(t)
	m.setView(viewScript)
	m.handleKey(key("n"))
	if m.editor == nil {
		t.Fatalf("editor not opened")
	}
	m.handleKey(key("a"))
	m.handleKey(key("enter"))
	for _, r := range "厨师" {
		m.handleKey(key(string(r)))
	}
	m.handleKey(key("enter"))
	m.handleKey(key("t"))
	cmd := m.handleKey(key("w"))
	if cmd == nil || m.editor != nil {
		t.Fatalf("save should close the editor and return a command")
	}
	msg, ok := cmd().(syncMsg)
	if !ok {
		t.Fatalf("command returned %T", cmd())
	}
	m.applySync(msg)
	s, ok := m.currentScript()
	if !ok || !s.Custom() || s.Title != "新剧本" {
		t.Fatalf("selected = %+v", s)
	}
	if len(s.Roles) != 1 || s.Roles[0].Name != "厨师" || s.Roles[0].Team != script.TeamOutsider {
		t.Fatalf("roles = %+v", s.Roles)
	}
}

func TestStaleImportIsIgnored(t *testing.T) {
	m := testModel(t)
	m.ocr.gen = 2
	m.ocr.running = true
	if cmd := m.finishImport(ocrDoneMsg{gen: 1, s: script.Script{Title: "old"}}); cmd != nil {
		t.Fatalf("stale import produced a command")
	}
	if !m.ocr.running {
		t.Fatalf("stale import cleared the running flag")
	}
	if cmd := m.finishImport(ocrDoneMsg{gen: 2, err: script.ErrSuperseded}); cmd != nil {
		t.Fatalf("superseded import produced a command")
	}
}

func TestViewSwitching(t *testing.T) {
	m := testModel(t)
	m.handleKey(key("tab"))
	if m.view != viewLog {
		t.Fatalf("view = %s", m.view)
	}
	m.handleKey(key("1"))
	if m.view != viewScript {
		t.Fatalf("view = %s", m.view)
	}
	if m.View() == "" {
		t.Fatalf("empty script view")
	}
}

type nopRemote struct{}

func (nopRemote) ListScripts(context.Context) ([]script.Script, error) {
	return nil, nil
}

func (nopRemote) CreateScript(context.Context, script.Script) (string, error) {
	return "r1", nil
}

func (nopRemote) UpdateScript(context.Context, script.Script) error {
	return nil
}

func (nopRemote) DeleteScript(context.Context, string) error {
	return nil
}

func (nopRemote) HasTitle(context.Context, string) (bool, error) {
	return false, nil
}

func TestHeaderMarksLocalOnly(t *testing.T) {
	m := testModel(t)
	if !strings.Contains(m.renderHeader(), localOnlyBadge) {
		t.Fatalf("header without remote lacks %q: %q", localOnlyBadge, m.renderHeader())
	}
	m.lib = script.NewLibrary(script.MustBuiltin(), nil, nopRemote{})
	if strings.Contains(m.renderHeader(), localOnlyBadge) {
		t.Fatalf("header with remote shows %q", localOnlyBadge)
	}
}

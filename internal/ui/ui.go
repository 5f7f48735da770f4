package ui

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/DaanHessen/grimoire-tui/internal/engine"
	"github.com/DaanHessen/grimoire-tui/internal/script"
	"github.com/DaanHessen/grimoire-tui/internal/seating"
	"github.com/DaanHessen/grimoire-tui/internal/util"
)

const (
	viewScript   = "script"
	viewGrimoire = "grimoire"
	viewLog      = "log"
)

var views = []string{viewScript, viewGrimoire, viewLog}

var viewTitles = map[string]string{
	viewScript:   "剧本",
	viewGrimoire: "魔典",
	viewLog:      "记录",
}

// Deps are the collaborators the program drives.
type Deps struct {
	Game     *engine.Game
	Library  *script.Library
	Importer *script.Importer
	// Sync is the outcome of the initial library load, shown once.
	Sync script.SyncResult
}

type model struct {
	ctx      context.Context
	game     *engine.Game
	lib      *script.Library
	importer *script.Importer
	version  string
	theme    string
	st       styles
	md       *glamour.TermRenderer
	view     string
	width    int
	height   int
	status   string
	prompt   *prompt
	confirm  *confirm

	// grimoire
	seat   int
	drag   *seating.Controller
	hooks  *mouseHooks
	dist   *distEditor
	picker *rolePicker

	// log
	logCursor int

	// scripts
	scriptID   string
	query      string
	roleCursor int
	expanded   string
	editor     *scriptEditor
	qr         string
	ocr        ocrState
}

func initialModel(ctx context.Context, deps Deps, cfg util.Config, version string) model {
	hooks := &mouseHooks{}
	m := model{
		ctx:      ctx,
		game:     deps.Game,
		lib:      deps.Library,
		importer: deps.Importer,
		version:  version,
		theme:    cfg.Theme,
		view:     viewGrimoire,
		drag:     seating.NewController(hooks),
		hooks:    hooks,
		width:    80,
		height:   24,
	}
	if m.theme == "" {
		m.theme = "catppuccin"
	}
	m.st = newStyles(paletteFor(m.theme))
	if r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(60)); err == nil {
		m.md = r
	} else {
		log.Printf("markdown renderer unavailable: %v", err)
	}
	if m.lib != nil {
		if all := m.lib.Scripts(); len(all) > 0 {
			m.scriptID = all[0].ID
		}
		if deps.Sync.Err != nil || deps.Sync.Synced {
			m.status = deps.Sync.Status()
		}
	}
	return m
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tea.BlurMsg:
		// A release outside the window never arrives.
		m.drag.Cancel()
		return m, m.hooks.flush()
	case tea.MouseMsg:
		if m.view != viewGrimoire || m.overlayOpen() {
			return m, nil
		}
		return m, m.handleMouse(msg)
	case ocrProgressMsg:
		if msg.gen == m.ocr.gen {
			m.ocr.progress = msg.p
		}
		return m, waitFor(msg.ch)
	case ocrDoneMsg:
		return m, m.finishImport(msg)
	case syncMsg:
		m.applySync(msg)
		return m, nil
	case tea.KeyMsg:
		return m, m.handleKey(msg)
	}
	return m, nil
}

func (m *model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if msg.String() == "ctrl+c" {
		return tea.Quit
	}
	if cmd, ok := m.handleOverlayKey(msg); ok {
		return cmd
	}
	switch {
	case m.qr != "":
		m.qr = ""
		return nil
	case m.dist != nil:
		return m.distKey(msg)
	case m.picker != nil:
		return m.pickerKey(msg)
	case m.editor != nil:
		return m.editorKey(msg)
	}
	switch msg.String() {
	case "q":
		return tea.Quit
	case "tab":
		m.cycleView(1)
		return nil
	case "shift+tab":
		m.cycleView(-1)
		return nil
	case "1", "2", "3":
		m.setView(views[int(msg.String()[0]-'1')])
		return nil
	case "T":
		m.theme = nextThemeName(m.theme, 1)
		m.st = newStyles(paletteFor(m.theme))
		m.status = "主题: " + m.theme
		return nil
	}
	switch m.view {
	case viewGrimoire:
		return m.grimoireKey(msg)
	case viewLog:
		return m.logKey(msg)
	case viewScript:
		return m.scriptKey(msg)
	}
	return nil
}

func (m *model) overlayOpen() bool {
	return m.prompt != nil || m.confirm != nil || m.dist != nil || m.picker != nil || m.qr != ""
}

func (m *model) setView(v string) {
	if m.view == viewGrimoire && v != viewGrimoire {
		m.drag.Cancel()
	}
	m.view = v
}

func (m *model) cycleView(step int) {
	idx := 0
	for i, v := range views {
		if v == m.view {
			idx = i
		}
	}
	idx = (idx + step + len(views)) % len(views)
	m.setView(views[idx])
}

// dispatch runs a, asking first when the action is destructive.
func (m *model) dispatch(a engine.Action) tea.Cmd {
	if message, ok := engine.Confirmation(a); ok {
		m.ask(message, func(m *model) tea.Cmd {
			m.commit(a)
			return nil
		})
		return nil
	}
	m.commit(a)
	return nil
}

func (m *model) commit(a engine.Action) engine.Change {
	changed, err := m.game.Dispatch(m.ctx, a)
	if err != nil {
		log.Printf("save state: %v", err)
		m.status = "保存失败: " + err.Error()
	}
	if changed.Has(engine.ChangePlayers) {
		if n := len(m.game.State().Players); m.seat >= n {
			m.seat = n - 1
		}
	}
	return changed
}

// Library commands -----------------------------------------------------------

// syncMsg reports the outcome of a library write that ran off the update loop.
type syncMsg struct {
	what     string
	res      script.SyncResult
	err      error
	selectID string
}

func (m *model) applySync(msg syncMsg) {
	switch {
	case errors.Is(msg.err, script.ErrBuiltin):
		m.status = "内置剧本不可修改"
		return
	case msg.err != nil:
		log.Printf("%s: %v", msg.what, msg.err)
		m.status = msg.what + "失败: " + msg.err.Error()
		return
	}
	if msg.res.Err != nil {
		log.Printf("%s: remote: %v", msg.what, msg.res.Err)
	}
	m.status = msg.what + ", " + msg.res.Status()
	if msg.selectID != "" {
		m.selectScript(msg.selectID)
	}
	if _, ok := m.currentScript(); !ok {
		if all := m.lib.Scripts(); len(all) > 0 {
			m.selectScript(all[0].ID)
		}
	}
}

func (m *model) addScript(s script.Script, what string) tea.Cmd {
	ctx, lib := m.ctx, m.lib
	return func() tea.Msg {
		added, res := lib.Add(ctx, s)
		return syncMsg{what: what, res: res, selectID: added.ID}
	}
}

func (m *model) updateScript(s script.Script) tea.Cmd {
	ctx, lib := m.ctx, m.lib
	return func() tea.Msg {
		res, err := lib.Update(ctx, s)
		return syncMsg{what: "剧本已保存", res: res, err: err, selectID: s.ID}
	}
}

func (m *model) deleteScript(id string) tea.Cmd {
	ctx, lib := m.ctx, m.lib
	return func() tea.Msg {
		res, err := lib.Delete(ctx, id)
		return syncMsg{what: "剧本已删除", res: res, err: err}
	}
}

// Layout rendering -----------------------------------------------------------

func (m model) View() string {
	header := m.renderHeader()
	footer := m.renderFooter()
	bodyH := m.height - lipgloss.Height(header) - lipgloss.Height(footer)
	if bodyH < 1 {
		bodyH = 1
	}
	var body string
	switch {
	case m.confirm != nil:
		body = m.center(m.renderConfirm(), bodyH)
	case m.prompt != nil:
		body = m.center(m.renderPrompt(), bodyH)
	case m.qr != "":
		body = m.center(m.qr, bodyH)
	case m.dist != nil:
		body = m.center(m.renderDistEditor(), bodyH)
	case m.picker != nil:
		body = m.center(m.renderPicker(bodyH), bodyH)
	case m.editor != nil:
		body = m.renderEditor(bodyH)
	default:
		switch m.view {
		case viewGrimoire:
			body = m.renderGrimoire()
		case viewLog:
			body = m.renderLog(bodyH)
		case viewScript:
			body = m.renderScripts(bodyH)
		}
	}
	body = lipgloss.NewStyle().Height(bodyH).MaxHeight(bodyH).Render(body)
	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

func (m model) center(s string, h int) string {
	return lipgloss.Place(m.width, h, lipgloss.Center, lipgloss.Center, s)
}

// localOnlyBadge marks a session without a remote script store.
const localOnlyBadge = "仅本地"

func (m model) renderHeader() string {
	tabs := make([]string, 0, len(views))
	for i, v := range views {
		label := fmt.Sprintf("%d %s", i+1, viewTitles[v])
		if v == m.view {
			tabs = append(tabs, m.st.tabOn.Render(label))
		} else {
			tabs = append(tabs, m.st.tab.Render(label))
		}
	}
	left := m.st.title.Render("Grimoire")
	if m.version != "" {
		left += m.st.muted.Render(" " + m.version)
	}
	left += " " + strings.Join(tabs, "")
	right := m.st.phase.Render(m.game.State().Log.Phase.Label())
	if m.lib != nil && !m.lib.HasRemote() {
		right = m.st.muted.Render(localOnlyBadge) + " " + right
	}
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right + "\n"
}

func (m model) renderFooter() string {
	var help string
	switch m.view {
	case viewGrimoire:
		help = "←/→ 选择  H/L 移动  a 添加  x 移除  r 改名  d 死亡  o 角色  D 配置  R 重置  N 下一局"
	case viewLog:
		help = "↑/↓ 选择  p 切换阶段  a 记录  i 插入  e 编辑  x 删除"
	case viewScript:
		help = "[/] 剧本  ↑/↓ 角色  / 搜索  enter 展开  o 识别  n 新建  E 编辑  X 删除  s 导出  I 导入  y 二维码"
	}
	if m.editor != nil {
		help = "↑/↓ 选择  enter 修改  b 能力  t 阵营  f 首夜  g 每夜  a 添加角色  x 删除角色  w 保存  esc 放弃"
	}
	line := m.st.muted.Render(help + "  tab 切换  T 主题  q 退出")
	if m.status != "" {
		line = m.st.warning.Render(m.status) + "\n" + line
	}
	return line
}

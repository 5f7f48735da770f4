package ui

import (
	"sort"

	"github.com/charmbracelet/lipgloss"

	"github.com/DaanHessen/grimoire-tui/internal/script"
)

type palette struct {
	Text      lipgloss.Color
	Muted     lipgloss.Color
	Accent    lipgloss.Color
	AccentAlt lipgloss.Color
	Border    lipgloss.Color
	Warning   lipgloss.Color
	Night     lipgloss.Color
	Day       lipgloss.Color
	Townsfolk lipgloss.Color
	Outsider  lipgloss.Color
	Minion    lipgloss.Color
	Demon     lipgloss.Color
}

var palettes = map[string]palette{
	"catppuccin": {
		Text:      lipgloss.Color("#cdd6f4"),
		Muted:     lipgloss.Color("#6c7086"),
		Accent:    lipgloss.Color("#cba6f7"),
		AccentAlt: lipgloss.Color("#f5c2e7"),
		Border:    lipgloss.Color("#585b70"),
		Warning:   lipgloss.Color("#f9e2af"),
		Night:     lipgloss.Color("#89b4fa"),
		Day:       lipgloss.Color("#fab387"),
		Townsfolk: lipgloss.Color("#89dceb"),
		Outsider:  lipgloss.Color("#94e2d5"),
		Minion:    lipgloss.Color("#eba0ac"),
		Demon:     lipgloss.Color("#f38ba8"),
	},
	"dracula": {
		Text:      lipgloss.Color("#f8f8f2"),
		Muted:     lipgloss.Color("#6272a4"),
		Accent:    lipgloss.Color("#ff79c6"),
		AccentAlt: lipgloss.Color("#bd93f9"),
		Border:    lipgloss.Color("#44475a"),
		Warning:   lipgloss.Color("#f1fa8c"),
		Night:     lipgloss.Color("#8be9fd"),
		Day:       lipgloss.Color("#ffb86c"),
		Townsfolk: lipgloss.Color("#8be9fd"),
		Outsider:  lipgloss.Color("#50fa7b"),
		Minion:    lipgloss.Color("#ffb86c"),
		Demon:     lipgloss.Color("#ff5555"),
	},
	"gruvbox": {
		Text:      lipgloss.Color("#ebdbb2"),
		Muted:     lipgloss.Color("#928374"),
		Accent:    lipgloss.Color("#fabd2f"),
		AccentAlt: lipgloss.Color("#d3869b"),
		Border:    lipgloss.Color("#665c54"),
		Warning:   lipgloss.Color("#fe8019"),
		Night:     lipgloss.Color("#83a598"),
		Day:       lipgloss.Color("#fabd2f"),
		Townsfolk: lipgloss.Color("#83a598"),
		Outsider:  lipgloss.Color("#8ec07c"),
		Minion:    lipgloss.Color("#fe8019"),
		Demon:     lipgloss.Color("#fb4934"),
	},
	"solarized_dark": {
		Text:      lipgloss.Color("#fdf6e3"),
		Muted:     lipgloss.Color("#657b83"),
		Accent:    lipgloss.Color("#b58900"),
		AccentAlt: lipgloss.Color("#268bd2"),
		Border:    lipgloss.Color("#586e75"),
		Warning:   lipgloss.Color("#cb4b16"),
		Night:     lipgloss.Color("#268bd2"),
		Day:       lipgloss.Color("#b58900"),
		Townsfolk: lipgloss.Color("#2aa198"),
		Outsider:  lipgloss.Color("#859900"),
		Minion:    lipgloss.Color("#cb4b16"),
		Demon:     lipgloss.Color("#dc322f"),
	},
}

func paletteFor(name string) palette {
	if p, ok := palettes[name]; ok {
		return p
	}
	return palettes["catppuccin"]
}

func themeNames() []string {
	names := make([]string, 0, len(palettes))
	for k := range palettes {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func nextThemeName(current string, step int) string {
	names := themeNames()
	if len(names) == 0 {
		return current
	}
	idx := 0
	for i, name := range names {
		if name == current {
			idx = i
			break
		}
	}
	idx = (idx + step) % len(names)
	if idx < 0 {
		idx += len(names)
	}
	return names[idx]
}

type styles struct {
	title    lipgloss.Style
	tab      lipgloss.Style
	tabOn    lipgloss.Style
	muted    lipgloss.Style
	text     lipgloss.Style
	selected lipgloss.Style
	warning  lipgloss.Style
	dead     lipgloss.Style
	night    lipgloss.Style
	day      lipgloss.Style
	phase    lipgloss.Style
	dialog   lipgloss.Style
	team     map[script.Team]lipgloss.Style
}

func newStyles(p palette) styles {
	return styles{
		title:    lipgloss.NewStyle().Bold(true).Foreground(p.Accent),
		tab:      lipgloss.NewStyle().Foreground(p.Muted).Padding(0, 1),
		tabOn:    lipgloss.NewStyle().Bold(true).Foreground(p.Accent).Underline(true).Padding(0, 1),
		muted:    lipgloss.NewStyle().Foreground(p.Muted),
		text:     lipgloss.NewStyle().Foreground(p.Text),
		selected: lipgloss.NewStyle().Bold(true).Foreground(p.AccentAlt),
		warning:  lipgloss.NewStyle().Foreground(p.Warning),
		dead:     lipgloss.NewStyle().Foreground(p.Muted).Strikethrough(true),
		night:    lipgloss.NewStyle().Foreground(p.Night),
		day:      lipgloss.NewStyle().Foreground(p.Day),
		phase:    lipgloss.NewStyle().Bold(true).Foreground(p.Accent),
		dialog:   lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(p.Border).Padding(0, 2),
		team: map[script.Team]lipgloss.Style{
			script.TeamTownsfolk: lipgloss.NewStyle().Foreground(p.Townsfolk),
			script.TeamOutsider:  lipgloss.NewStyle().Foreground(p.Outsider),
			script.TeamMinion:    lipgloss.NewStyle().Foreground(p.Minion),
			script.TeamDemon:     lipgloss.NewStyle().Bold(true).Foreground(p.Demon),
		},
	}
}

func (s styles) teamStyle(t script.Team) lipgloss.Style {
	if st, ok := s.team[t]; ok {
		return st
	}
	return s.text
}

package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/DaanHessen/grimoire-tui/internal/util"
)

// Run boots the TUI program and blocks until it exits.
func Run(ctx context.Context, deps Deps, cfg util.Config, version string) error {
	m := initialModel(ctx, deps, cfg, version)
	program := tea.NewProgram(m,
		tea.WithContext(ctx),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithReportFocus(),
	)
	_, err := program.Run()
	return err
}

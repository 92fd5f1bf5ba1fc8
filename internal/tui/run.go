package tui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"
)

// Run starts the browser and blocks until the user quits or ctx is done.
// Loads still in flight when the browser exits are cancelled.
func Run(ctx context.Context, svc Service, ignores IgnoreStore, opts Options) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := New(runCtx, svc, ignores, opts)
	defer m.Close()

	p := tea.NewProgram(m, tea.WithContext(runCtx), tea.WithAltScreen())
	_, err := p.Run()

	if err != nil && errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

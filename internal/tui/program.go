package tui

import (
	"context"

	"vidsparrow/internal/session"

	tea "github.com/charmbracelet/bubbletea"
)

// Watch registers a callback that fires whenever session state changes
type Watch func(fn func())

// Run starts the terminal program and blocks until the user quits
func Run(ctx context.Context, d *session.Dispatcher, watches ...Watch) error {
	p := tea.NewProgram(NewModel(ctx, d), tea.WithAltScreen(), tea.WithContext(ctx))

	// Send from a goroutine: callbacks may fire inside Update
	notify := func() { go p.Send(changedMsg{}) }
	for _, w := range watches {
		w(notify)
	}

	_, err := p.Run()
	return err
}

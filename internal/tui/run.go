package tui

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Veraticus/trash-scanner/internal/assistant"
)

// Run starts the interactive app and blocks until the user quits.
func Run(ctx context.Context, app *assistant.App, opts ...Option) error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	cleanupTerminal := func() {
		// Best effort; the program may already have restored the terminal.
		_, _ = os.Stdout.Write([]byte("\033[?1049l")) // Exit alternate screen
		_, _ = os.Stdout.Write([]byte("\033[?25h"))   // Show cursor
		_, _ = os.Stdout.Write([]byte("\033[m"))      // Reset colors
	}
	defer cleanupTerminal()

	go func() {
		select {
		case <-sigChan:
			cleanupTerminal()
			cancel()
		case <-ctx.Done():
		}
	}()

	m := New(ctx, app, opts...)
	final, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if fm, ok := final.(Model); ok {
		fm.Close()
	} else {
		m.Close()
	}
	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}

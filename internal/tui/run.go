package tui

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/robfig/cron/v3"

	appLog "valentine/internal/log"
)

// Run shows the proposal full-screen until the user quits or ctx is
// cancelled. The session and music are torn down on every exit path.
func Run(ctx context.Context, deps Deps) error {
	m := New(ctx, deps)
	defer deps.Session.Close()
	if deps.Music != nil {
		defer deps.Music.Stop()
	}

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	// The countdown on the invitation card ticks once per second.
	c := cron.New(cron.WithSeconds())
	if _, err := c.AddFunc("@every 1s", func() {
		p.Send(countdownMsg(time.Now()))
	}); err != nil {
		return fmt.Errorf("tui: schedule countdown: %w", err)
	}
	c.Start()
	defer func() { <-c.Stop().Done() }()

	appLog.Info("proposal started")
	_, err := p.Run()
	if err != nil && errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	if err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	appLog.Info("proposal closed", "view", deps.Session.Snapshot().View.String())
	return nil
}

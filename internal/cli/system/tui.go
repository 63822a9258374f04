package system

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/streakly/internal/cli"
	"github.com/julianstephens/streakly/internal/notifier"
	"github.com/julianstephens/streakly/internal/tui"
)

type TuiCmd struct{}

func (c *TuiCmd) Run(ctx *cli.Context) error {
	if err := ctx.Load(); err != nil {
		return err
	}

	// Perform automatic backup on TUI startup (after successful load)
	ctx.PerformAutomaticBackup()

	// Console toasts would corrupt the alternate screen; the model shows them instead
	recorder := &notifier.Recorder{}
	ctx.Habits.SetNotifier(notifier.Multi{recorder, cli.TrayNotifier(ctx.Config)})

	p := tea.NewProgram(tui.NewModel(ctx.Habits, recorder), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui exited with error: %w", err)
	}
	return nil
}

package habits

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/julianstephens/streakly/internal/cli"
)

type ExportCmd struct {
	Out string `help:"Write the snapshot to this file instead of stdout." type:"path"`
}

func (c *ExportCmd) Run(ctx *cli.Context) error {
	if err := ctx.Load(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(ctx.Habits.Export(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	if c.Out == "" {
		ctx.Println(string(data))
		return nil
	}

	if err := os.WriteFile(c.Out, append(data, '\n'), 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", c.Out, err)
	}
	ctx.Printf("✓ Exported %d habit(s) to %s\n", len(ctx.Habits.Habits()), c.Out)
	return nil
}

type ImportCmd struct {
	File  string `arg:"" help:"Snapshot file produced by 'streakly export'." type:"existingfile"`
	Force bool   `help:"Replace existing habits without asking."`
}

func (c *ImportCmd) Run(ctx *cli.Context) error {
	if err := ctx.Load(); err != nil {
		return err
	}

	data, err := os.ReadFile(c.File)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", c.File, err)
	}

	if existing := len(ctx.Habits.Habits()); existing > 0 && !c.Force {
		ok, err := ctx.Confirm(fmt.Sprintf("This will replace %d existing habit(s). Continue?", existing))
		if err != nil {
			return err
		}
		if !ok {
			ctx.Println("Import cancelled.")
			return nil
		}
	}

	ctx.PerformAutomaticBackup()

	n, err := ctx.Habits.Import(data)
	if err != nil {
		return err
	}
	ctx.Printf("✓ Imported %d habit(s) from %s\n", n, c.File)
	return nil
}

package system

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/julianstephens/streakly/internal/cli"
	"github.com/julianstephens/streakly/internal/config"
)

type InitCmd struct {
	Force  bool   `help:"Force reset by deleting existing storage before initialization."`
	Source string `help:"Source store path or connection string to copy data from."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	if c.Force && ctx.FileBacked() {
		path := ctx.Provider.GetConfigPath()
		// Don't delete if it's the source (user error protection)
		if c.Source != "" {
			absPath, err := filepath.Abs(path)
			if err == nil {
				path = absPath
			}
			absSource, err := filepath.Abs(c.Source)
			if err == nil && absSource == path {
				return fmt.Errorf("cannot use --force when source and destination are the same: %s", path)
			}
		}
		if _, err := os.Stat(path); err == nil {
			// Close first to prevent file locking issues
			if err := ctx.Provider.Close(); err != nil {
				return fmt.Errorf("failed to close existing storage: %w", err)
			}
			if err := os.Remove(path); err != nil {
				return fmt.Errorf("failed to delete existing storage: %w", err)
			}
			ctx.Reset()
			ctx.Printf("Deleted existing storage at: %s\n", path)
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("failed to access existing storage: %w", err)
		}
	}

	if err := ctx.Provider.Init(); err != nil {
		return err
	}
	ctx.Printf("Initialized streakly storage at: %s\n", ctx.Provider.GetConfigPath())

	if err := writeDefaultConfig(ctx); err != nil {
		return err
	}

	if c.Source != "" {
		ctx.Printf("Copying data from: %s\n", c.Source)
		n, err := copyEntries(ctx, c.Source)
		if err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		ctx.Printf("Copied %d entries.\n", n)
	}

	// Seeds the default badge set on a fresh store
	return ctx.Load()
}

// writeDefaultConfig creates config.yaml with default settings if it is missing.
func writeDefaultConfig(ctx *cli.Context) error {
	if ctx.Config == nil || ctx.Config.ConfigDir == "" {
		return nil
	}
	path := filepath.Join(ctx.Config.ConfigDir, config.FileName)
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	if err := os.MkdirAll(ctx.Config.ConfigDir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := config.WriteFile(path, config.Defaults()); err != nil {
		return err
	}
	ctx.Printf("Wrote default settings to: %s\n", path)
	return nil
}

// copyEntries copies every key from the source store into the destination.
func copyEntries(ctx *cli.Context, source string) (int, error) {
	ref, err := config.ExpandPath(source)
	if err != nil {
		return 0, err
	}
	src, err := cli.OpenProvider(ref, config.DetectKind(ref))
	if err != nil {
		return 0, err
	}
	if err := src.Load(); err != nil {
		return 0, fmt.Errorf("failed to load source storage: %w", err)
	}
	defer src.Close()

	keys, err := src.Keys()
	if err != nil {
		return 0, fmt.Errorf("failed to list source entries: %w", err)
	}
	for _, key := range keys {
		value, err := src.Get(key)
		if err != nil {
			return 0, fmt.Errorf("failed to read %q from source: %w", key, err)
		}
		if err := ctx.Provider.Put(key, value); err != nil {
			return 0, fmt.Errorf("failed to write %q: %w", key, err)
		}
		ctx.Printf("  Copied %s\n", key)
	}
	return len(keys), nil
}

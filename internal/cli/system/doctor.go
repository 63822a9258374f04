package system

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/streakly/internal/backup"
	"github.com/julianstephens/streakly/internal/cli"
	"github.com/julianstephens/streakly/internal/constants"
	"github.com/julianstephens/streakly/internal/notifier"
	"github.com/julianstephens/streakly/internal/storage"
)

type DoctorCmd struct{}

type check struct {
	name     string
	run      func(*cli.Context) error
	warnOnly bool
	needsDB  bool
	skip     func(*cli.Context) string
}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	ctx.Println("Running diagnostics...")
	ctx.Println()

	hasError := false
	reachable := false

	checks := []check{
		{name: "Storage reachable", run: func(ctx *cli.Context) error {
			if err := checkStorageReachable(ctx); err != nil {
				return err
			}
			reachable = true
			return nil
		}},
		{name: "Schema version", run: checkSchemaVersion, needsDB: true},
		{name: "Migrations complete", run: checkMigrationsComplete, needsDB: true},
		{name: "Backups present", run: checkBackupsPresent, warnOnly: true, skip: func(ctx *cli.Context) string {
			if !ctx.FileBacked() {
				return "PostgreSQL storage"
			}
			return ""
		}},
		{name: "Data validation", run: checkValidation, needsDB: true},
		{name: "Clock/timezone", run: checkClockTimezone},
		{name: "Tray notifications", run: checkTray, warnOnly: true, skip: func(ctx *cli.Context) string {
			if cli.TrayNotifier(ctx.Config) == nil {
				return "disabled in config"
			}
			return ""
		}},
	}

	for _, c := range checks {
		if c.needsDB && !reachable {
			ctx.Printf("⊘ %s: SKIPPED (storage not reachable)\n", c.name)
			continue
		}
		if c.skip != nil {
			if reason := c.skip(ctx); reason != "" {
				ctx.Printf("⊘ %s: SKIPPED (%s)\n", c.name, reason)
				continue
			}
		}

		err := c.run(ctx)
		switch {
		case err == nil:
			ctx.Printf("✓ %s: OK\n", c.name)
		case c.warnOnly:
			ctx.Printf("⚠ %s: WARNING\n", c.name)
			ctx.Printf("   %v\n", err)
		default:
			ctx.Printf("❌ %s: FAIL\n", c.name)
			ctx.Printf("   Error: %v\n", err)
			hasError = true
		}
	}

	ctx.Println()
	if hasError {
		ctx.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}

	ctx.Println("All diagnostics passed!")
	return nil
}

func checkStorageReachable(ctx *cli.Context) error {
	if err := ctx.Provider.Load(); err != nil {
		return fmt.Errorf("failed to load storage: %w", err)
	}
	if _, err := ctx.Provider.Keys(); err != nil {
		return fmt.Errorf("failed to query storage: %w", err)
	}
	return nil
}

func schemaVersion(ctx *cli.Context) (current, latest int, ok bool, err error) {
	store, isDB := ctx.Provider.(migrator)
	if !isDB {
		// JSON store doesn't have a schema
		return 0, 0, false, nil
	}
	current, latest, err = store.SchemaVersion()
	if err != nil {
		return 0, 0, true, fmt.Errorf("failed to get schema version: %w", err)
	}
	return current, latest, true, nil
}

func checkSchemaVersion(ctx *cli.Context) error {
	current, latest, ok, err := schemaVersion(ctx)
	if err != nil || !ok {
		return err
	}
	if current > latest {
		return fmt.Errorf("database schema version (%d) is newer than supported version (%d)", current, latest)
	}
	return nil
}

func checkMigrationsComplete(ctx *cli.Context) error {
	current, latest, ok, err := schemaVersion(ctx)
	if err != nil || !ok {
		return err
	}
	if current < latest {
		return fmt.Errorf("migrations incomplete: current version %d, latest version %d", current, latest)
	}
	return nil
}

func checkBackupsPresent(ctx *cli.Context) error {
	mgr := backup.NewManager(ctx.Provider.GetConfigPath())
	backups, err := mgr.ListBackups()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}
	if len(backups) == 0 {
		return fmt.Errorf("no backups found - consider creating one with 'streakly backup create'")
	}
	return nil
}

// checkValidation compares the raw stored records with what survives loading;
// invalid records are dropped on load, so any difference is reported.
func checkValidation(ctx *cli.Context) error {
	stored, err := countRecords(ctx.Provider, constants.HabitsKey)
	if err != nil {
		return err
	}
	if err := ctx.Load(); err != nil {
		return fmt.Errorf("failed to load habits: %w", err)
	}
	if kept := len(ctx.Habits.Habits()); kept < stored {
		return fmt.Errorf("%d of %d stored habit record(s) are invalid and will be ignored", stored-kept, stored)
	}
	return nil
}

func countRecords(p storage.Provider, key string) (int, error) {
	data, err := p.Get(key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read %s: %w", key, err)
	}
	var records []json.RawMessage
	if err := json.Unmarshal(data, &records); err != nil {
		return 0, fmt.Errorf("stored %s entry is not a JSON array: %w", key, err)
	}
	return len(records), nil
}

func checkClockTimezone(ctx *cli.Context) error {
	now := time.Now()

	// Check if time is in a reasonable range (after 2020 and before 2100)
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}

	if ctx.Config != nil && ctx.Config.Location != nil {
		name, _ := now.In(ctx.Config.Location).Zone()
		ctx.Printf("   Note: calendar days use %s (%s)\n", ctx.Config.Location, name)
	}
	return nil
}

func checkTray(ctx *cli.Context) error {
	tray, ok := cli.TrayNotifier(ctx.Config).(*notifier.Tray)
	if !ok || !tray.Available() {
		return notifier.ErrTrayNotRunning
	}
	return nil
}

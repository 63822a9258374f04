package system

import (
	"fmt"
	"os"

	"github.com/julianstephens/streakly/internal/cli"
)

// migrator is implemented by the database-backed stores.
type migrator interface {
	Migrate(logFn func(string)) (int, error)
	SchemaVersion() (current, latest int, err error)
}

type MigrateCmd struct{}

func (c *MigrateCmd) Run(ctx *cli.Context) error {
	store, ok := ctx.Provider.(migrator)
	if !ok {
		return fmt.Errorf("migrate command only supports database storage (SQLite or PostgreSQL)")
	}

	if ctx.FileBacked() {
		if _, err := os.Stat(ctx.Provider.GetConfigPath()); os.IsNotExist(err) {
			return fmt.Errorf("storage not initialized, run 'streakly init' first")
		}
	}
	defer ctx.Provider.Close()

	count, err := store.Migrate(func(msg string) {
		ctx.Println(msg)
	})
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	if count == 0 {
		ctx.Println("No migrations to apply. Database is up to date.")
	} else {
		ctx.Printf("\nSuccessfully applied %d migration(s).\n", count)
	}
	return nil
}

package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/streakly/internal/cli"
	"github.com/julianstephens/streakly/internal/cli/backups"
	"github.com/julianstephens/streakly/internal/cli/habits"
	"github.com/julianstephens/streakly/internal/cli/system"
	"github.com/julianstephens/streakly/internal/config"
	"github.com/julianstephens/streakly/internal/constants"
	"github.com/julianstephens/streakly/internal/errors"
	habitstore "github.com/julianstephens/streakly/internal/habits"
	"github.com/julianstephens/streakly/internal/keyring"
	"github.com/julianstephens/streakly/internal/logger"
)

var CLI struct {
	Version  kong.VersionFlag
	Config   string `help:"Store file path (.db or .json) or PostgreSQL connection string. Credentials must NOT be embedded in the connection string; use the OS keyring or STREAKLY_DB_CONNECTION instead." type:"string" default:"${default_config}" env:"STREAKLY_CONFIG"`
	Debug    bool   `help:"Log debug output to stderr." env:"STREAKLY_DEBUG"`
	Timezone string `help:"IANA timezone that defines calendar days (default: local)."`

	Init    system.InitCmd    `cmd:"" help:"Initialize streakly storage."`
	Migrate system.MigrateCmd `cmd:"" help:"Run database migrations."`
	Doctor  system.DoctorCmd  `cmd:"" help:"Run health checks and diagnostics."`
	Tui     system.TuiCmd     `cmd:"" help:"Launch the interactive TUI." default:"1"`

	Habit        habits.HabitCmd        `cmd:"" help:"Manage habits."`
	Today        habits.TodayCmd        `cmd:"" help:"Show today's habit status."`
	Calendar     habits.CalendarCmd     `cmd:"" help:"Show a month of completions."`
	Insights     habits.InsightsCmd     `cmd:"" help:"Show streak and category statistics."`
	Achievements habits.AchievementsCmd `cmd:"" help:"List achievements."`
	Export       habits.ExportCmd       `cmd:"" help:"Export habits and achievements as JSON."`
	Import       habits.ImportCmd       `cmd:"" help:"Replace habits and achievements from an export."`

	Backup struct {
		Create  backups.BackupCreateCmd  `cmd:"" help:"Create a manual backup." default:"1"`
		List    backups.BackupListCmd    `cmd:"" help:"List available backups."`
		Restore backups.BackupRestoreCmd `cmd:"" help:"Restore from a backup."`
	} `cmd:"" help:"Manage store backups."`
	Keyring system.KeyringCmd `cmd:"" help:"Manage the PostgreSQL connection string in the OS keyring."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Habit tracker with streaks and achievements"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"version":        constants.Version,
			"default_config": constants.DefaultConfigPath,
		},
	)

	cfg, err := config.Load(config.Options{
		StoragePath:   CLI.Config,
		Timezone:      CLI.Timezone,
		Debug:         CLI.Debug,
		KeyringLookup: keyring.GetConnectionString,
	})
	if err != nil {
		errors.Fatal(err)
	}

	if err := logger.Init(logger.Config{
		Debug:     cfg.Debug,
		ConfigDir: cfg.ConfigDir,
		Level:     cfg.LogLevel,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logging: %v\n", err)
	}
	logger.Debug("Configuration loaded", "storage", cfg.StorageKind, "source", cfg.Source, "timezone", cfg.Timezone)

	provider, err := cli.OpenProvider(cfg.Storage, cfg.StorageKind)
	if err != nil {
		errors.Fatal(err)
	}
	defer provider.Close()

	store := habitstore.New(provider,
		habitstore.WithLocation(cfg.Location),
		habitstore.WithNotifier(cli.NewNotifier(cfg, os.Stdout)),
	)

	appCtx := &cli.Context{
		Provider: provider,
		Habits:   store,
		Config:   cfg,
		Out:      os.Stdout,
		In:       os.Stdin,
	}

	if err := ctx.Run(appCtx); err != nil {
		provider.Close()
		errors.Fatal(err)
	}
}

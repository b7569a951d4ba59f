package main

import (
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/habitlit/internal/cli"
	"github.com/julianstephens/habitlit/internal/cli/backups"
	"github.com/julianstephens/habitlit/internal/cli/data"
	"github.com/julianstephens/habitlit/internal/cli/habits"
	"github.com/julianstephens/habitlit/internal/cli/system"
	"github.com/julianstephens/habitlit/internal/config"
	"github.com/julianstephens/habitlit/internal/constants"
	"github.com/julianstephens/habitlit/internal/errors"
	"github.com/julianstephens/habitlit/internal/logger"
	"github.com/julianstephens/habitlit/internal/notifier"
	"github.com/julianstephens/habitlit/internal/service"
)

var CLI struct {
	Version  kong.VersionFlag
	Config   string `help:"Path to config.toml." type:"path" default:"~/.config/habitlit/config.toml"`
	DB       string `help:"Database file (.db or .json) or PostgreSQL connection string. Overrides the config file." name:"db"`
	Timezone string `help:"IANA timezone used to decide what day it is. Overrides the config file."`
	Debug    bool   `help:"Log debug output to stderr."`

	Init   system.InitCmd   `cmd:"" help:"Initialize habitlit storage and config."`
	Doctor system.DoctorCmd `cmd:"" help:"Run health checks and diagnostics."`
	Tui    system.TuiCmd    `cmd:"" help:"Launch the interactive TUI." default:"1"`
	Remind system.RemindCmd `cmd:"" help:"Send reminders for habits that are due."`

	Add    habits.AddCmd    `cmd:"" help:"Add a habit."`
	List   habits.ListCmd   `cmd:"" help:"List habits and today's progress."`
	Toggle habits.ToggleCmd `cmd:"" help:"Mark or unmark a habit as done today."`
	Delete habits.DeleteCmd `cmd:"" help:"Delete a habit and its history."`
	Stats  habits.StatsCmd  `cmd:"" help:"Show streak statistics."`

	Export data.ExportCmd `cmd:"" help:"Export habits to a JSON file."`
	Import data.ImportCmd `cmd:"" help:"Import habits from a JSON export."`
	Reset  data.ResetCmd  `cmd:"" help:"Delete all habits (a backup is taken first)."`

	Backup struct {
		Create  backups.CreateCmd  `cmd:"" help:"Create a manual backup." default:"1"`
		List    backups.ListCmd    `cmd:"" help:"List available backups."`
		Restore backups.RestoreCmd `cmd:"" help:"Restore from a backup."`
	} `cmd:"" help:"Manage database backups."`

	Keyring struct {
		Set    system.KeyringSetCmd    `cmd:"" help:"Store a PostgreSQL connection string in the OS keyring."`
		Delete system.KeyringDeleteCmd `cmd:"" help:"Remove the stored connection string."`
		Status system.KeyringStatusCmd `cmd:"" help:"Check keyring availability."`
	} `cmd:"" help:"Manage database credentials in the OS keyring."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Local-first habit tracker with daily streaks"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{"version": constants.Version},
	)

	cfg, err := config.Load(CLI.Config)
	if err != nil {
		errors.Fatal(err)
	}
	if CLI.Timezone != "" {
		cfg.Timezone = CLI.Timezone
		if err := cfg.Validate(); err != nil {
			errors.Fatal(err)
		}
	}

	if err := logger.Init(logger.Config{
		Debug:     CLI.Debug || cfg.Debug,
		ConfigDir: filepath.Dir(CLI.Config),
	}); err != nil {
		errors.Fatalf("failed to initialize logger: %v", err)
	}

	location, secret := cli.ResolveDatabase(CLI.DB, cfg)
	store, err := cli.OpenStore(location, secret)
	if err != nil {
		errors.Fatal(err)
	}
	defer store.Close()

	appCtx := &cli.Context{
		Store:      store,
		Service:    service.New(store, service.WithLocation(cfg.Location())),
		Config:     cfg,
		ConfigPath: CLI.Config,
		Notifier:   notifier.New(),
		Out:        os.Stdout,
		In:         os.Stdin,
	}

	logger.Debug("starting", "command", ctx.Command(), "store", store.Path())
	if err := ctx.Run(appCtx); err != nil {
		store.Close()
		errors.Fatal(err)
	}
}

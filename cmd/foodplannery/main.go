package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/foodplannery/internal/cli"
	"github.com/julianstephens/foodplannery/internal/cli/account"
	"github.com/julianstephens/foodplannery/internal/cli/backups"
	"github.com/julianstephens/foodplannery/internal/cli/consults"
	"github.com/julianstephens/foodplannery/internal/cli/meals"
	"github.com/julianstephens/foodplannery/internal/cli/system"
	"github.com/julianstephens/foodplannery/internal/config"
	"github.com/julianstephens/foodplannery/internal/constants"
	"github.com/julianstephens/foodplannery/internal/errors"
	"github.com/julianstephens/foodplannery/internal/lockfile"
	"github.com/julianstephens/foodplannery/internal/logger"
)

type app struct {
	Version kong.VersionFlag
	Config  string `help:"Config file path." type:"string" default:"${config_path}"`
	Storage string `help:"Storage to use instead of the configured one: a .db or .json file, ':memory:', 'keyring' or a PostgreSQL connection string without a password."`
	Debug   bool   `help:"Log debug output to stderr."`

	Init    system.InitCmd     `cmd:"" help:"Initialize foodplannery storage."`
	Tui     system.TuiCmd      `cmd:"" help:"Launch the interactive TUI." default:"1"`
	Login   account.LoginCmd   `cmd:"" help:"Sign in with a one-time code."`
	Logout  account.LogoutCmd  `cmd:"" help:"Sign out."`
	Whoami  account.WhoamiCmd  `cmd:"" help:"Show the signed-in account."`
	Profile account.ProfileCmd `cmd:"" help:"Show or update your profile."`
	Meal    struct {
		Add    meals.MealAddCmd    `cmd:"" help:"Plan a meal."`
		Edit   meals.MealEditCmd   `cmd:"" help:"Edit a planned meal."`
		Delete meals.MealDeleteCmd `cmd:"" help:"Delete a planned meal."`
		Done   meals.MealDoneCmd   `cmd:"" help:"Toggle whether a meal was eaten."`
		List   meals.MealListCmd   `cmd:"" help:"List the meals for a day." default:"1"`
		Month  meals.MealMonthCmd  `cmd:"" help:"Show a month calendar of planned meals."`
	} `cmd:"" help:"Manage planned meals."`
	Consult struct {
		Request consults.ConsultRequestCmd `cmd:"" help:"Request a consultation."`
		Cancel  consults.ConsultCancelCmd  `cmd:"" help:"Cancel a consultation."`
		List    consults.ConsultListCmd    `cmd:"" help:"List consultations." default:"1"`
	} `cmd:"" help:"Manage dietitian consultations."`
	Backup struct {
		Create  backups.BackupCreateCmd  `cmd:"" help:"Create a manual backup." default:"1"`
		List    backups.BackupListCmd    `cmd:"" help:"List available backups."`
		Restore backups.BackupRestoreCmd `cmd:"" help:"Restore from a backup."`
	} `cmd:"" help:"Manage data backups."`
	DB struct {
		SetConnection   system.DBSetConnectionCmd   `cmd:"" help:"Store a PostgreSQL connection string in the OS keyring."`
		ClearConnection system.DBClearConnectionCmd `cmd:"" help:"Remove the stored connection string."`
		Status          system.DBStatusCmd          `cmd:"" help:"Show storage and keyring status." default:"1"`
	} `cmd:"" name:"db" help:"Manage the database connection."`
	Doctor    system.DoctorCmd   `cmd:"" help:"Run health checks on storage and data."`
	Validate  system.ValidateCmd `cmd:"" help:"Check stored meals and consultations for problems."`
	DebugInfo system.DebugCmd    `cmd:"" name:"debug" help:"Inspect raw storage."`
}

var CLI app

func kongOptions() []kong.Option {
	return []kong.Option{
		kong.Name("foodplannery"),
		kong.Description("Meal planner with dietitian consultations"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"version":     constants.Version,
			"config_path": constants.DefaultConfigPath,
		},
	}
}

// needsLock reports whether command opens file-backed storage. Keyring
// commands never touch the store.
func needsLock(command string) bool {
	return command != "db" && !strings.HasPrefix(command, "db ")
}

func main() {
	ctx := kong.Parse(&CLI, kongOptions()...)

	cfg, err := config.Load(CLI.Config)
	if err != nil {
		errors.Fatal(err)
	}
	if CLI.Storage != "" {
		cfg.Storage = CLI.Storage
	}
	if CLI.Debug {
		cfg.Debug = true
	}

	if err := logger.Init(logger.Config{Debug: cfg.Debug, LogDir: cfg.LogDirectory()}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logger: %v\n", err)
	}
	logger.Debug("Starting", "command", ctx.Command(), "storage", cfg.Storage)

	store, err := cli.NewProvider(cfg.Storage)
	if err != nil {
		errors.Fatal(err)
	}

	var lock *lockfile.Lock
	if path, ok := cli.LockPath(cfg.Storage); ok && needsLock(ctx.Command()) {
		lock, err = lockfile.Acquire(path)
		if err != nil {
			errors.Fatal(err)
		}
	}

	appCtx := &cli.Context{
		Store:  store,
		Config: cfg,
	}
	err = ctx.Run(appCtx)

	if closeErr := store.Close(); closeErr != nil {
		logger.Warn("Failed to close storage", "error", closeErr)
	}
	if releaseErr := lock.Release(); releaseErr != nil {
		logger.Warn("Failed to release lock", "error", releaseErr)
	}
	errors.Fatal(err)
}

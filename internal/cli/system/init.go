package system

import (
	"fmt"
	"os"

	"github.com/julianstephens/foodplannery/internal/cli"
	"github.com/julianstephens/foodplannery/internal/logger"
)

type InitCmd struct {
	Force bool `help:"Delete the existing database file before initializing."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	if c.Force {
		if err := c.reset(ctx); err != nil {
			return err
		}
	}

	if err := ctx.Init(); err != nil {
		return err
	}
	ctx.Printf("Initialized foodplannery storage at: %s\n", ctx.Store.GetConfigPath())

	// Write a config file with the defaults the first time around
	if ctx.Config == nil || ctx.Config.Path() == "" {
		return nil
	}
	if _, err := os.Stat(ctx.Config.Path()); os.IsNotExist(err) {
		if err := ctx.Config.Save(); err != nil {
			return err
		}
		ctx.Printf("Wrote default config to: %s\n", ctx.Config.Path())
	}
	return nil
}

// reset removes a file-backed database. Server and memory stores are left alone.
func (c *InitCmd) reset(ctx *cli.Context) error {
	if _, ok := cli.LockPath(ctx.Store.GetConfigPath()); !ok {
		logger.Warn("--force only applies to file storage", "storage", ctx.Store.GetConfigPath())
		return nil
	}

	path := ctx.Store.GetConfigPath()
	if _, err := os.Stat(path); err == nil {
		if err := ctx.Store.Close(); err != nil {
			return fmt.Errorf("failed to close existing database: %w", err)
		}
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("failed to delete existing database: %w", err)
		}
		ctx.Printf("Deleted existing database at: %s\n", path)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to access existing database: %w", err)
	}
	return nil
}

package system

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/julianstephens/habitlit/internal/cli"
	"github.com/julianstephens/habitlit/internal/config"
)

type InitCmd struct {
	Force  bool   `help:"Delete the existing database before initializing."`
	Source string `help:"Database path or connection string to copy habits from."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	if c.Force {
		if err := c.removeExisting(ctx); err != nil {
			return err
		}
	}

	if err := ctx.Store.Open(); err != nil {
		return err
	}
	ctx.Printf("Initialized habitlit storage at: %s\n", ctx.Store.Path())

	if ctx.ConfigPath != "" {
		if _, err := os.Stat(ctx.ConfigPath); os.IsNotExist(err) {
			if err := config.Save(ctx.ConfigPath, ctx.Config); err != nil {
				return fmt.Errorf("failed to write config: %w", err)
			}
			ctx.Printf("Wrote default config to: %s\n", ctx.ConfigPath)
		}
	}

	if c.Source != "" {
		ctx.Printf("Copying habits from: %s\n", c.Source)
		n, err := c.copyFrom(ctx)
		if err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		ctx.Printf("Copied %d habit(s)\n", n)
	}
	return nil
}

func (c *InitCmd) removeExisting(ctx *cli.Context) error {
	if !ctx.IsFileStore() {
		return fmt.Errorf("--force only applies to file databases; use 'habitlit reset' for PostgreSQL")
	}

	dbPath := ctx.Store.Path()
	if c.Source != "" {
		absDB, err1 := filepath.Abs(dbPath)
		absSrc, err2 := filepath.Abs(config.ExpandHome(c.Source))
		if err1 == nil && err2 == nil && absDB == absSrc {
			return fmt.Errorf("cannot use --force when source and destination are the same: %s", dbPath)
		}
	}

	if _, err := os.Stat(dbPath); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to access existing database: %w", err)
	}

	if err := ctx.Store.Close(); err != nil {
		return fmt.Errorf("failed to close existing database: %w", err)
	}
	if err := os.Remove(dbPath); err != nil {
		return fmt.Errorf("failed to delete existing database: %w", err)
	}
	ctx.Printf("Deleted existing database at: %s\n", dbPath)
	return nil
}

func (c *InitCmd) copyFrom(ctx *cli.Context) (int, error) {
	source, err := cli.OpenStore(c.Source, false)
	if err != nil {
		return 0, err
	}
	defer source.Close()

	habits, err := source.GetAll()
	if err != nil {
		return 0, fmt.Errorf("failed to read source database: %w", err)
	}
	return ctx.Service.Import(habits)
}

package data

import (
	"fmt"
	"os"

	"github.com/julianstephens/habitlit/internal/cli"
	"github.com/julianstephens/habitlit/internal/config"
	"github.com/julianstephens/habitlit/internal/storage"
)

// ExportCmd writes every habit to a JSON document readable by ImportCmd and
// by the JSON storage provider.
type ExportCmd struct {
	File  string `arg:"" help:"Destination JSON file." type:"path"`
	Force bool   `help:"Overwrite the destination if it exists." short:"f"`
}

func (c *ExportCmd) Run(ctx *cli.Context) error {
	path := config.ExpandHome(c.File)
	if _, err := os.Stat(path); err == nil {
		if !c.Force {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("failed to remove %s: %w", path, err)
		}
	}

	habits, err := ctx.Service.Export()
	if err != nil {
		return err
	}

	out := storage.NewJSONStore(path)
	defer out.Close()
	for _, h := range habits {
		if err := out.Insert(h); err != nil {
			return fmt.Errorf("failed to export habit %s: %w", h.ID, err)
		}
	}

	ctx.Printf("✓ Exported %d habit(s) to %s\n", len(habits), path)
	return nil
}

type ImportCmd struct {
	File string `arg:"" help:"JSON file produced by export." type:"existingfile"`
}

func (c *ImportCmd) Run(ctx *cli.Context) error {
	path := config.ExpandHome(c.File)
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("import file not found: %s", path)
	}

	in := storage.NewJSONStore(path)
	defer in.Close()
	habits, err := in.GetAll()
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	ctx.PerformAutomaticBackup()

	imported, err := ctx.Service.Import(habits)
	if err != nil {
		return err
	}

	ctx.Printf("✓ Imported %d habit(s)", imported)
	if skipped := len(habits) - imported; skipped > 0 {
		ctx.Printf(", skipped %d already present", skipped)
	}
	ctx.Println()
	return nil
}

type ResetCmd struct {
	Yes bool `help:"Skip the confirmation prompt." short:"y"`
}

func (c *ResetCmd) Run(ctx *cli.Context) error {
	if !c.Yes {
		ok, err := ctx.Confirm("Delete ALL habits and completion history?")
		if err != nil {
			return err
		}
		if !ok {
			ctx.Println("Reset cancelled.")
			return nil
		}
	}

	ctx.PerformAutomaticBackup()

	if err := ctx.Service.Reset(); err != nil {
		return err
	}
	ctx.Println("✓ All habits removed.")
	return nil
}

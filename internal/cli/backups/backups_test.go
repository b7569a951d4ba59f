package backups

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/habitlit/internal/cli/clitest"
	"github.com/julianstephens/habitlit/internal/models"
	"github.com/julianstephens/habitlit/internal/storage"
)

func TestListEmpty(t *testing.T) {
	ctx, out := clitest.New(t, "")

	require.NoError(t, (&ListCmd{}).Run(ctx))
	assert.Contains(t, out.String(), "No backups found.")
}

func TestCreateListRestore(t *testing.T) {
	ctx, out := clitest.New(t, "")

	_, err := ctx.Service.AddHabit(models.CreateHabitData{Name: "Read"})
	require.NoError(t, err)

	require.NoError(t, (&CreateCmd{}).Run(ctx))
	assert.Contains(t, out.String(), "✓ Backup created: ")

	out.Reset()
	require.NoError(t, (&ListCmd{}).Run(ctx))
	assert.Contains(t, out.String(), "Available backups (1 total")

	_, err = ctx.Service.AddHabit(models.CreateHabitData{Name: "Run"})
	require.NoError(t, err)

	list, err := filepath.Glob(filepath.Join(filepath.Dir(ctx.Store.Path()), "backups", "*"))
	require.NoError(t, err)
	require.Len(t, list, 1)

	out.Reset()
	require.NoError(t, (&RestoreCmd{BackupFile: filepath.Base(list[0]), Yes: true}).Run(ctx))
	assert.Contains(t, out.String(), "Database restored successfully")
	assert.Contains(t, out.String(), "Previous database saved as")

	habits, err := ctx.Service.ListHabits()
	require.NoError(t, err)
	require.Len(t, habits, 1)
	assert.Equal(t, "Read", habits[0].Name)
}

func TestRestoreCancelled(t *testing.T) {
	ctx, out := clitest.New(t, "no\n")

	_, err := ctx.Service.AddHabit(models.CreateHabitData{Name: "Read"})
	require.NoError(t, err)
	require.NoError(t, (&CreateCmd{}).Run(ctx))

	list, err := filepath.Glob(filepath.Join(filepath.Dir(ctx.Store.Path()), "backups", "*"))
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, (&RestoreCmd{BackupFile: list[0]}).Run(ctx))
	assert.Contains(t, out.String(), "Restore cancelled.")
}

func TestRestoreMissingFile(t *testing.T) {
	ctx, _ := clitest.New(t, "")

	err := (&RestoreCmd{BackupFile: "nope.db", Yes: true}).Run(ctx)
	assert.ErrorContains(t, err, "backup file not found")
}

func TestPostgresNotSupported(t *testing.T) {
	ctx, _ := clitest.NewWithStore(t, storage.NewPostgresStore("postgres://localhost/habitlit"), "")

	assert.ErrorIs(t, (&CreateCmd{}).Run(ctx), errNotFileStore)
}

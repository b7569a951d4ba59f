// Package clitest builds command contexts over throwaway stores.
package clitest

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/habitlit/internal/cli"
	"github.com/julianstephens/habitlit/internal/config"
	"github.com/julianstephens/habitlit/internal/constants"
	"github.com/julianstephens/habitlit/internal/service"
	"github.com/julianstephens/habitlit/internal/storage"
)

// Now is the fixed instant every test context reports as the current time.
var Now = time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)

// New returns a context backed by a SQLite file in a temp dir. input is what
// the command reads from stdin; the returned buffer collects its output.
func New(t *testing.T, input string) (*cli.Context, *bytes.Buffer) {
	t.Helper()
	return NewWithStore(t, storage.NewSQLiteStore(filepath.Join(t.TempDir(), constants.DefaultDBName)), input)
}

func NewWithStore(t *testing.T, store storage.Provider, input string) (*cli.Context, *bytes.Buffer) {
	t.Helper()
	t.Cleanup(func() { store.Close() })

	cfg := config.Default()
	cfg.Database = store.Path()
	cfg.Timezone = "UTC"

	out := &bytes.Buffer{}
	return &cli.Context{
		Store: store,
		Service: service.New(store,
			service.WithClock(func() time.Time { return Now }),
			service.WithLocation(time.UTC)),
		Config: cfg,
		Out:    out,
		In:     strings.NewReader(input),
	}, out
}

package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/julianstephens/habitlit/internal/backup"
	"github.com/julianstephens/habitlit/internal/config"
	"github.com/julianstephens/habitlit/internal/constants"
	"github.com/julianstephens/habitlit/internal/keyring"
	"github.com/julianstephens/habitlit/internal/logger"
	"github.com/julianstephens/habitlit/internal/models"
	"github.com/julianstephens/habitlit/internal/notifier"
	"github.com/julianstephens/habitlit/internal/service"
	"github.com/julianstephens/habitlit/internal/storage"
)

// Context is handed to every command's Run method.
type Context struct {
	Store      storage.Provider
	Service    *service.Service
	Config     *config.Config
	ConfigPath string
	Notifier   notifier.Sender
	Out        io.Writer
	In         io.Reader
}

func (c *Context) Printf(format string, args ...any) {
	fmt.Fprintf(c.Out, format, args...)
}

func (c *Context) Println(args ...any) {
	fmt.Fprintln(c.Out, args...)
}

// Confirm asks a yes/no question on Out and reads the answer from In.
// Anything but y or yes is a no.
func (c *Context) Confirm(prompt string) (bool, error) {
	c.Printf("%s [y/N]: ", prompt)
	answer, err := bufio.NewReader(c.In).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes", nil
}

// IsFileStore reports whether the store lives in a local file that the
// backup manager can snapshot.
func (c *Context) IsFileStore() bool {
	_, isPG := c.Store.(*storage.PostgresStore)
	return !isPG
}

// PerformAutomaticBackup snapshots file-backed stores and only logs failures.
func (c *Context) PerformAutomaticBackup() {
	if !c.IsFileStore() {
		return
	}
	if _, err := os.Stat(c.Store.Path()); err != nil {
		return
	}
	if _, err := backup.NewManager(c.Store.Path()).Create(); err != nil {
		logger.Warn("automatic backup failed", "error", err)
	}
}

// ResolveHabit finds a habit by exact id, then by case-insensitive name.
func (c *Context) ResolveHabit(ref string) (models.Habit, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return models.Habit{}, fmt.Errorf("%w: habit id or name is required", service.ErrInvalidInput)
	}

	if h, err := c.Service.GetHabit(ref); err == nil {
		return h, nil
	} else if !errors.Is(err, storage.ErrNotFound) {
		return models.Habit{}, err
	}

	habits, err := c.Service.ListHabits()
	if err != nil {
		return models.Habit{}, err
	}

	var matches []models.Habit
	for _, h := range habits {
		if strings.EqualFold(strings.TrimSpace(h.Name), ref) {
			matches = append(matches, h)
		}
	}

	switch len(matches) {
	case 0:
		return models.Habit{}, fmt.Errorf("habit %q: %w", ref, storage.ErrNotFound)
	case 1:
		return matches[0], nil
	default:
		ids := make([]string, len(matches))
		for i, h := range matches {
			ids[i] = h.ID
		}
		return models.Habit{}, fmt.Errorf("%w: %d habits are named %q, use an id (%s)",
			service.ErrInvalidInput, len(matches), ref, strings.Join(ids, ", "))
	}
}

// ResolveDatabase picks the store location: the --db flag, then
// HABITLIT_DB_CONNECTION, then a connection string saved in the OS keyring,
// then the config file. secret reports whether the location came from a
// place where an embedded password is acceptable.
func ResolveDatabase(flag string, cfg *config.Config) (location string, secret bool) {
	if flag != "" {
		return flag, false
	}
	if env := os.Getenv(constants.EnvDBConnection); env != "" {
		return env, true
	}
	connStr, err := keyring.GetConnectionString()
	if err == nil {
		return connStr, true
	}
	if !errors.Is(err, keyring.ErrNotFound) {
		logger.Debug("keyring lookup failed", "error", err)
	}
	return cfg.Database, false
}

// OpenStore builds the provider for a location without opening it:
// postgres:// URLs use PostgreSQL, *.json files the JSON store, anything
// else SQLite.
func OpenStore(location string, secret bool) (storage.Provider, error) {
	if storage.IsPostgresConnString(location) {
		if storage.HasEmbeddedCredentials(location) && !secret {
			return nil, fmt.Errorf("%w: store it with 'habitlit keyring set' or use .pgpass", storage.ErrEmbeddedCredentials)
		}
		return storage.NewPostgresStore(location), nil
	}

	path := config.ExpandHome(location)
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return storage.NewJSONStore(path), nil
	}
	return storage.NewSQLiteStore(path), nil
}

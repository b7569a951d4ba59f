package storage

import (
	"database/sql"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/habitlit/internal/logger"
	"github.com/julianstephens/habitlit/internal/migration"
	"github.com/julianstephens/habitlit/internal/models"
	"github.com/julianstephens/habitlit/migrations"
)

type SQLiteStore struct {
	path string

	mu sync.Mutex
	sqlStore
}

func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{
		path: path,
		sqlStore: sqlStore{
			dialect: migration.SQLite,
		},
	}
}

// Open creates the database file and schema on first use. Calling it again
// is a no-op; every other method calls it implicitly.
func (s *SQLiteStore) Open() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		return nil
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return unavailable(fmt.Errorf("failed to create data directory: %w", err))
	}

	db, err := sql.Open("sqlite", s.path+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return unavailable(fmt.Errorf("failed to open database: %w", err))
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return unavailable(fmt.Errorf("failed to open database: %w", err))
	}

	if err := runMigrations(db, "sqlite", migration.SQLite); err != nil {
		db.Close()
		return unavailable(fmt.Errorf("failed to run migrations: %w", err))
	}

	s.db = db
	logger.Debug("Opened sqlite store", "path", s.path)
	return nil
}

func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *SQLiteStore) Path() string {
	return s.path
}

// DB returns the underlying connection, or nil before Open.
func (s *SQLiteStore) DB() *sql.DB {
	return s.db
}

func (s *SQLiteStore) Insert(habit models.Habit) error {
	if err := s.Open(); err != nil {
		return err
	}
	return s.insert(habit)
}

func (s *SQLiteStore) Get(id string) (models.Habit, error) {
	if err := s.Open(); err != nil {
		return models.Habit{}, err
	}
	return s.get(id)
}

func (s *SQLiteStore) GetAll() ([]models.Habit, error) {
	if err := s.Open(); err != nil {
		return nil, err
	}
	return s.list("")
}

func (s *SQLiteStore) GetByCategory(category string) ([]models.Habit, error) {
	if err := s.Open(); err != nil {
		return nil, err
	}
	return s.list("category = ?", category)
}

func (s *SQLiteStore) Replace(habit models.Habit) error {
	if err := s.Open(); err != nil {
		return err
	}
	return s.replace(habit)
}

func (s *SQLiteStore) Delete(id string) error {
	if err := s.Open(); err != nil {
		return err
	}
	return s.delete(id)
}

func (s *SQLiteStore) Clear() error {
	if err := s.Open(); err != nil {
		return err
	}
	return s.clear()
}

// Check verifies the schema tables exist and the schema version matches the
// embedded migrations.
func (s *SQLiteStore) Check() error {
	if err := s.Open(); err != nil {
		return err
	}
	for _, table := range []string{"schema_version", "habits", "habit_completions"} {
		ok, err := s.tableExists(table)
		if err != nil {
			return unavailable(err)
		}
		if !ok {
			return unavailable(fmt.Errorf("table %s is missing", table))
		}
	}
	return s.checkSchema("sqlite")
}

// tableExists checks if a table exists in the SQLite database.
// The check is case-insensitive to match SQLite's behavior.
func (s *SQLiteStore) tableExists(tableName string) (bool, error) {
	var count int
	row := s.db.QueryRow("SELECT count(*) FROM sqlite_master WHERE type='table' AND name COLLATE NOCASE = ?", tableName)
	if err := row.Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *sqlStore) checkSchema(dir string) error {
	subFS, err := fs.Sub(migrations.FS, dir)
	if err != nil {
		return err
	}
	return migration.NewRunner(s.db, subFS, s.dialect).ValidateVersion()
}

// runMigrations applies the embedded migrations for dir ("sqlite" or "postgres").
func runMigrations(db *sql.DB, dir string, dialect migration.Dialect) error {
	subFS, err := fs.Sub(migrations.FS, dir)
	if err != nil {
		return fmt.Errorf("failed to access %s migrations: %w", dir, err)
	}

	runner := migration.NewRunner(db, subFS, dialect)
	_, err = runner.ApplyMigrations(func(msg string) {
		logger.Debug(msg, "dialect", dir)
	})
	return err
}

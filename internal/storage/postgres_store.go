package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"

	_ "github.com/lib/pq"

	"github.com/julianstephens/habitlit/internal/logger"
	"github.com/julianstephens/habitlit/internal/migration"
	"github.com/julianstephens/habitlit/internal/models"
)

// ErrEmbeddedCredentials is returned for connection strings carrying a password
var ErrEmbeddedCredentials = errors.New("connection string contains embedded credentials")

type PostgresStore struct {
	connStr string

	mu sync.Mutex
	sqlStore
}

func NewPostgresStore(connStr string) *PostgresStore {
	return &PostgresStore{
		connStr: connStr,
		sqlStore: sqlStore{
			dialect: migration.Postgres,
		},
	}
}

// IsPostgresConnString reports whether s selects the PostgreSQL provider.
func IsPostgresConnString(s string) bool {
	return strings.HasPrefix(s, "postgres://") || strings.HasPrefix(s, "postgresql://")
}

// HasEmbeddedCredentials reports whether a URL-style connection string
// carries a password in its userinfo or query.
func HasEmbeddedCredentials(connStr string) bool {
	u, err := url.Parse(connStr)
	if err != nil {
		return false
	}
	if _, ok := u.User.Password(); ok {
		return true
	}
	return u.Query().Has("password")
}

func (s *PostgresStore) Open() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		return nil
	}

	db, err := sql.Open("postgres", s.connStr)
	if err != nil {
		return unavailable(fmt.Errorf("failed to open database: %w", err))
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return unavailable(fmt.Errorf("failed to connect to database: %w", err))
	}

	if err := runMigrations(db, "postgres", migration.Postgres); err != nil {
		db.Close()
		return unavailable(fmt.Errorf("failed to run migrations: %w", err))
	}

	s.db = db
	logger.Debug("Opened postgres store")
	return nil
}

func (s *PostgresStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// Path returns the connection string with any password redacted.
func (s *PostgresStore) Path() string {
	u, err := url.Parse(s.connStr)
	if err != nil {
		return "postgres"
	}
	return u.Redacted()
}

func (s *PostgresStore) Check() error {
	if err := s.Open(); err != nil {
		return err
	}
	return s.checkSchema("postgres")
}

func (s *PostgresStore) Insert(habit models.Habit) error {
	if err := s.Open(); err != nil {
		return err
	}
	return s.insert(habit)
}

func (s *PostgresStore) Get(id string) (models.Habit, error) {
	if err := s.Open(); err != nil {
		return models.Habit{}, err
	}
	return s.get(id)
}

func (s *PostgresStore) GetAll() ([]models.Habit, error) {
	if err := s.Open(); err != nil {
		return nil, err
	}
	return s.list("")
}

func (s *PostgresStore) GetByCategory(category string) ([]models.Habit, error) {
	if err := s.Open(); err != nil {
		return nil, err
	}
	return s.list("category = ?", category)
}

func (s *PostgresStore) Replace(habit models.Habit) error {
	if err := s.Open(); err != nil {
		return err
	}
	return s.replace(habit)
}

func (s *PostgresStore) Delete(id string) error {
	if err := s.Open(); err != nil {
		return err
	}
	return s.delete(id)
}

func (s *PostgresStore) Clear() error {
	if err := s.Open(); err != nil {
		return err
	}
	return s.clear()
}

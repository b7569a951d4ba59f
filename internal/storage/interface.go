package storage

import "github.com/julianstephens/habitlit/internal/models"

// Provider is durable keyed storage for habits. Every operation is a
// single-record transaction; nothing spans two habits atomically.
type Provider interface {
	// Lifecycle
	Open() error
	Close() error
	Path() string
	// Check reports whether the backing store is readable and its schema current.
	Check() error

	// Habits
	Insert(models.Habit) error
	Get(id string) (models.Habit, error)
	GetAll() ([]models.Habit, error)
	GetByCategory(category string) ([]models.Habit, error)
	Replace(models.Habit) error
	Delete(id string) error
	Clear() error
}

var (
	_ Provider = (*SQLiteStore)(nil)
	_ Provider = (*PostgresStore)(nil)
	_ Provider = (*JSONStore)(nil)
)

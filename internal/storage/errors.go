package storage

import (
	"errors"
	"fmt"
)

var (
	// ErrStorageUnavailable is returned when the platform cannot provide storage
	// (unwritable directory, unreachable database, corrupt file, ...)
	ErrStorageUnavailable = errors.New("storage unavailable")
	// ErrNotFound is returned when an operation references an unknown habit id
	ErrNotFound = errors.New("habit not found")
	// ErrDuplicateKey is returned when inserting a habit whose id already exists
	ErrDuplicateKey = errors.New("habit id already exists")
)

func unavailable(err error) error {
	return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
}

func notFound(id string) error {
	return fmt.Errorf("habit %s: %w", id, ErrNotFound)
}

func duplicate(id string) error {
	return fmt.Errorf("habit %s: %w", id, ErrDuplicateKey)
}

package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/julianstephens/habitlit/internal/models"
)

const jsonStoreVersion = 1

// Document is the on-disk layout of a JSONStore and of exported data
type Document struct {
	Version int                     `json:"version"`
	Habits  map[string]models.Habit `json:"habits"`
}

// JSONStore keeps every habit in a single JSON document. Each mutation
// rewrites the file through a temporary file and rename.
type JSONStore struct {
	path string

	mu  sync.Mutex
	doc *Document
}

func NewJSONStore(path string) *JSONStore {
	return &JSONStore{
		path: path,
	}
}

func (s *JSONStore) Open() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.openLocked()
}

func (s *JSONStore) openLocked() error {
	if s.doc != nil {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return unavailable(fmt.Errorf("failed to create data directory: %w", err))
	}

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		s.doc = &Document{Version: jsonStoreVersion, Habits: make(map[string]models.Habit)}
		return s.saveLocked()
	}
	if err != nil {
		return unavailable(fmt.Errorf("failed to read storage: %w", err))
	}

	doc := &Document{}
	if err := json.Unmarshal(data, doc); err != nil {
		return unavailable(fmt.Errorf("failed to parse storage: %w", err))
	}
	if doc.Version > jsonStoreVersion {
		return unavailable(fmt.Errorf("storage version %d is newer than supported version %d", doc.Version, jsonStoreVersion))
	}
	if doc.Habits == nil {
		doc.Habits = make(map[string]models.Habit)
	}

	s.doc = doc
	return nil
}

func (s *JSONStore) saveLocked() error {
	data, err := json.MarshalIndent(s.doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize storage: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return unavailable(fmt.Errorf("failed to write storage: %w", err))
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return unavailable(fmt.Errorf("failed to write storage: %w", err))
	}
	return nil
}

func (s *JSONStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc = nil
	return nil
}

func (s *JSONStore) Path() string {
	return s.path
}

// Check reloads the document from disk to confirm it is readable.
func (s *JSONStore) Check() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc = nil
	return s.openLocked()
}

func (s *JSONStore) Insert(habit models.Habit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.openLocked(); err != nil {
		return err
	}

	if _, ok := s.doc.Habits[habit.ID]; ok {
		return duplicate(habit.ID)
	}
	s.doc.Habits[habit.ID] = habit.Clone()
	if err := s.saveLocked(); err != nil {
		delete(s.doc.Habits, habit.ID)
		return err
	}
	return nil
}

func (s *JSONStore) Get(id string) (models.Habit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.openLocked(); err != nil {
		return models.Habit{}, err
	}

	h, ok := s.doc.Habits[id]
	if !ok {
		return models.Habit{}, notFound(id)
	}
	return h.Clone(), nil
}

func (s *JSONStore) GetAll() ([]models.Habit, error) {
	return s.filter(func(models.Habit) bool { return true })
}

func (s *JSONStore) GetByCategory(category string) ([]models.Habit, error) {
	return s.filter(func(h models.Habit) bool { return h.Category == category })
}

func (s *JSONStore) filter(keep func(models.Habit) bool) ([]models.Habit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.openLocked(); err != nil {
		return nil, err
	}

	habits := []models.Habit{}
	for _, h := range s.doc.Habits {
		if keep(h) {
			habits = append(habits, h.Clone())
		}
	}
	sort.Slice(habits, func(i, j int) bool {
		if !habits[i].CreatedAt.Equal(habits[j].CreatedAt) {
			return habits[i].CreatedAt.Before(habits[j].CreatedAt)
		}
		return habits[i].ID < habits[j].ID
	})
	return habits, nil
}

func (s *JSONStore) Replace(habit models.Habit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.openLocked(); err != nil {
		return err
	}

	prev, ok := s.doc.Habits[habit.ID]
	if !ok {
		return notFound(habit.ID)
	}
	s.doc.Habits[habit.ID] = habit.Clone()
	if err := s.saveLocked(); err != nil {
		s.doc.Habits[habit.ID] = prev
		return err
	}
	return nil
}

func (s *JSONStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.openLocked(); err != nil {
		return err
	}

	prev, ok := s.doc.Habits[id]
	if !ok {
		return notFound(id)
	}
	delete(s.doc.Habits, id)
	if err := s.saveLocked(); err != nil {
		s.doc.Habits[id] = prev
		return err
	}
	return nil
}

func (s *JSONStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.openLocked(); err != nil {
		return err
	}

	prev := s.doc.Habits
	s.doc.Habits = make(map[string]models.Habit)
	if err := s.saveLocked(); err != nil {
		s.doc.Habits = prev
		return err
	}
	return nil
}

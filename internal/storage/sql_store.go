package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/julianstephens/habitlit/internal/migration"
	"github.com/julianstephens/habitlit/internal/models"
	"github.com/julianstephens/habitlit/internal/utils"
)

const habitColumns = `id, name, description, category, reminder_time, created_at, current_streak, longest_streak`

// timestampLayout is fixed-width so created_at sorts chronologically as text.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

// sqlStore holds the habit queries shared by the SQLite and PostgreSQL
// providers. Queries are written with ? placeholders and rebound per dialect.
type sqlStore struct {
	db      *sql.DB
	dialect migration.Dialect
}

func (s *sqlStore) rebind(query string) string {
	if s.dialect != migration.Postgres {
		return query
	}

	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *sqlStore) tx(fn func(*sql.Tx) error) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (s *sqlStore) exists(tx *sql.Tx, id string) (bool, error) {
	var one int
	err := tx.QueryRow(s.rebind(`SELECT 1 FROM habits WHERE id = ?`), id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *sqlStore) insert(habit models.Habit) error {
	return s.tx(func(tx *sql.Tx) error {
		found, err := s.exists(tx, habit.ID)
		if err != nil {
			return err
		}
		if found {
			return duplicate(habit.ID)
		}

		_, err = tx.Exec(s.rebind(`
			INSERT INTO habits (`+habitColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
			habit.ID, habit.Name, habit.Description, habit.Category, habit.ReminderTime,
			formatTimestamp(habit.CreatedAt), habit.CurrentStreak, habit.LongestStreak)
		if err != nil {
			return fmt.Errorf("failed to insert habit: %w", err)
		}

		return s.writeCompletions(tx, habit)
	})
}

func (s *sqlStore) replace(habit models.Habit) error {
	return s.tx(func(tx *sql.Tx) error {
		result, err := tx.Exec(s.rebind(`
			UPDATE habits SET
				name = ?, description = ?, category = ?, reminder_time = ?,
				created_at = ?, current_streak = ?, longest_streak = ?
			WHERE id = ?`),
			habit.Name, habit.Description, habit.Category, habit.ReminderTime,
			formatTimestamp(habit.CreatedAt), habit.CurrentStreak, habit.LongestStreak,
			habit.ID)
		if err != nil {
			return fmt.Errorf("failed to update habit: %w", err)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			return notFound(habit.ID)
		}

		if _, err := tx.Exec(s.rebind(`DELETE FROM habit_completions WHERE habit_id = ?`), habit.ID); err != nil {
			return fmt.Errorf("failed to clear completions: %w", err)
		}
		return s.writeCompletions(tx, habit)
	})
}

func (s *sqlStore) writeCompletions(tx *sql.Tx, habit models.Habit) error {
	if len(habit.CompletedDates) == 0 {
		return nil
	}

	stmt, err := tx.Prepare(s.rebind(`INSERT INTO habit_completions (habit_id, day) VALUES (?, ?)`))
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, day := range habit.CompletedDates {
		if _, err := stmt.Exec(habit.ID, string(day)); err != nil {
			return fmt.Errorf("failed to write completion %s: %w", day, err)
		}
	}
	return nil
}

func (s *sqlStore) get(id string) (models.Habit, error) {
	row := s.db.QueryRow(s.rebind(`SELECT `+habitColumns+` FROM habits WHERE id = ?`), id)

	h, err := scanHabit(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Habit{}, notFound(id)
	}
	if err != nil {
		return models.Habit{}, err
	}

	rows, err := s.db.Query(s.rebind(`SELECT habit_id, day FROM habit_completions WHERE habit_id = ? ORDER BY day`), id)
	if err != nil {
		return models.Habit{}, err
	}
	defer rows.Close()

	days, err := scanCompletions(rows)
	if err != nil {
		return models.Habit{}, err
	}
	if d, ok := days[id]; ok {
		h.CompletedDates = d
	}

	return h, nil
}

// list loads habits matching where (a SQL fragment over habits) and attaches
// their completions. Order is created_at then id, stable between mutations.
func (s *sqlStore) list(where string, args ...any) ([]models.Habit, error) {
	query := `SELECT ` + habitColumns + ` FROM habits`
	completionsQuery := `SELECT habit_id, day FROM habit_completions`
	if where != "" {
		query += " WHERE " + where
		completionsQuery += " WHERE habit_id IN (SELECT id FROM habits WHERE " + where + ")"
	}
	query += " ORDER BY created_at, id"
	completionsQuery += " ORDER BY habit_id, day"

	rows, err := s.db.Query(s.rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	habits := []models.Habit{}
	for rows.Next() {
		h, err := scanHabit(rows)
		if err != nil {
			return nil, err
		}
		habits = append(habits, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	crows, err := s.db.Query(s.rebind(completionsQuery), args...)
	if err != nil {
		return nil, err
	}
	defer crows.Close()

	days, err := scanCompletions(crows)
	if err != nil {
		return nil, err
	}
	for i := range habits {
		if d, ok := days[habits[i].ID]; ok {
			habits[i].CompletedDates = d
		}
	}

	return habits, nil
}

func (s *sqlStore) delete(id string) error {
	return s.tx(func(tx *sql.Tx) error {
		if _, err := tx.Exec(s.rebind(`DELETE FROM habit_completions WHERE habit_id = ?`), id); err != nil {
			return err
		}

		result, err := tx.Exec(s.rebind(`DELETE FROM habits WHERE id = ?`), id)
		if err != nil {
			return err
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			return notFound(id)
		}
		return nil
	})
}

func (s *sqlStore) clear() error {
	return s.tx(func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM habit_completions`); err != nil {
			return err
		}
		_, err := tx.Exec(`DELETE FROM habits`)
		return err
	})
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanHabit(row rowScanner) (models.Habit, error) {
	var h models.Habit
	var createdAt string

	err := row.Scan(&h.ID, &h.Name, &h.Description, &h.Category, &h.ReminderTime,
		&createdAt, &h.CurrentStreak, &h.LongestStreak)
	if err != nil {
		return models.Habit{}, err
	}

	h.CreatedAt, err = time.Parse(timestampLayout, createdAt)
	if err != nil {
		return models.Habit{}, fmt.Errorf("failed to parse created_at for habit %s: %w", h.ID, err)
	}
	h.CompletedDates = []utils.DayKey{}

	return h, nil
}

func scanCompletions(rows *sql.Rows) (map[string][]utils.DayKey, error) {
	days := make(map[string][]utils.DayKey)
	for rows.Next() {
		var habitID, day string
		if err := rows.Scan(&habitID, &day); err != nil {
			return nil, err
		}
		days[habitID] = append(days[habitID], utils.DayKey(day))
	}
	return days, rows.Err()
}

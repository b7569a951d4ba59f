package tui

import (
	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/habitlit/internal/models"
	"github.com/julianstephens/habitlit/internal/service"
	"github.com/julianstephens/habitlit/internal/tui/components/habitlist"
)

type SessionState int

const (
	StateHabits SessionState = iota
	StateAddHabit
	StateConfirmDelete
)

type HabitFormModel struct {
	Name         string
	Description  string
	Category     string
	ReminderTime string
}

func (f *HabitFormModel) data() models.CreateHabitData {
	return models.CreateHabitData{
		Name:         f.Name,
		Description:  f.Description,
		Category:     f.Category,
		ReminderTime: f.ReminderTime,
	}
}

type Model struct {
	svc       *service.Service
	state     SessionState
	keys      KeyMap
	help      help.Model
	habitList habitlist.Model
	form      *huh.Form
	habitForm *HabitFormModel

	habits []models.Habit
	stats  models.HabitStats

	// inFlight holds habits with a toggle or delete awaiting the store.
	// Further actions on them are dropped until the result arrives.
	inFlight map[string]bool

	deleteID   string
	deleteName string

	err      error
	loading  bool
	quitting bool
	width    int
	height   int
}

func NewModel(svc *service.Service) Model {
	return Model{
		svc:       svc,
		state:     StateHabits,
		keys:      DefaultKeyMap(),
		help:      help.New(),
		habitList: habitlist.New(0, 0),
		inFlight:  make(map[string]bool),
		loading:   true,
	}
}

func (m Model) Init() tea.Cmd {
	return loadHabits(m.svc)
}

// Pending reports whether an operation on the habit is in flight.
func (m Model) Pending(id string) bool {
	return m.inFlight[id]
}

func (m Model) Habits() []models.Habit {
	return m.habits
}

func (m Model) Err() error {
	return m.err
}

func (m Model) State() SessionState {
	return m.state
}

func (m *Model) refreshList() {
	m.habitList.SetHabits(m.habits, m.svc.Today(), m.inFlight)
}

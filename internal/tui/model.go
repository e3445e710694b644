package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"dailyPlanner/internal/logger"
	"dailyPlanner/internal/models/task"
	"dailyPlanner/internal/planner"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

const DefaultCallTimeout = 15 * time.Second

const timeLayout = "15:04"

// Поля формы добавления/редактирования
const (
	FormFieldTitle = iota
	FormFieldTime
	FormFieldDescription
	FormFieldCount
)

type mode int

const (
	modeBrowse mode = iota
	modeForm
	modeConfirmDelete
)

// RefreshedMsg приходит от фонового обновления (worker.RefreshWorker)
type RefreshedMsg struct {
	Err error
}

// mutationMsg - результат операции с бэкендом, запущенной из интерфейса
type mutationMsg struct {
	action string
	err    error
}

// Model - состояние терминального интерфейса поверх planner.Planner
type Model struct {
	planner     *planner.Planner
	ctx         context.Context
	callTimeout time.Duration

	width    int
	height   int
	selected int
	mode     mode

	formInputs []textinput.Model
	formField  int
	editingID  string // пусто при добавлении

	status    string
	statusErr bool
	busy      bool
}

type Option func(*Model)

// WithContext задаёт родительский контекст для вызовов бэкенда
func WithContext(ctx context.Context) Option {
	return func(m *Model) {
		if ctx != nil {
			m.ctx = ctx
		}
	}
}

func WithCallTimeout(d time.Duration) Option {
	return func(m *Model) {
		if d > 0 {
			m.callTimeout = d
		}
	}
}

func New(p *planner.Planner, opts ...Option) Model {
	m := Model{
		planner:     p,
		ctx:         context.Background(),
		callTimeout: DefaultCallTimeout,
		formInputs:  make([]textinput.Model, FormFieldCount),
	}
	for _, opt := range opts {
		opt(&m)
	}

	for i := range m.formInputs {
		ti := textinput.New()
		ti.CharLimit = 200
		ti.Width = 40
		switch i {
		case FormFieldTitle:
			ti.Placeholder = "Title"
		case FormFieldTime:
			ti.Placeholder = "HH:MM"
			ti.CharLimit = 5
			ti.Width = 5
		case FormFieldDescription:
			ti.Placeholder = "Description"
			ti.CharLimit = 1000
		}
		m.formInputs[i] = ti
	}
	return m
}

func (m Model) Init() tea.Cmd {
	return m.refreshCmd()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case RefreshedMsg:
		m.busy = false
		if msg.Err != nil {
			m.setError("обновление", msg.Err)
		} else if m.statusErr {
			m.status, m.statusErr = "", false
		}
		m.selected = m.clampSelection()
		return m, nil

	case mutationMsg:
		m.busy = false
		if msg.err != nil {
			m.setError(msg.action, msg.err)
		} else {
			m.status, m.statusErr = msg.action+": готово", false
		}
		m.selected = m.clampSelection()
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case modeForm:
			return m.updateForm(msg)
		case modeConfirmDelete:
			return m.updateConfirmDelete(msg)
		}
		return m.updateBrowse(msg)
	}
	return m, nil
}

func (m Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "left", "h":
		m.moveDate(-1)
	case "right", "l":
		m.moveDate(1)
	case "[":
		m.moveDate(-7)
	case "]":
		m.moveDate(7)
	case "t":
		m.planner.Today()
		m.selected = 0

	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}
	case "down", "j":
		if m.selected < len(m.planner.Tasks())-1 {
			m.selected++
		}

	case " ", "x":
		t, ok := m.selectedTask()
		if !ok {
			return m, nil
		}
		m.busy = true
		return m, m.mutate("переключение статуса", func(ctx context.Context) error {
			return m.planner.ToggleStatus(ctx, t.ID)
		})

	case "a":
		return m.openForm(nil)
	case "e":
		t, ok := m.selectedTask()
		if !ok {
			return m, nil
		}
		return m.openForm(&t)

	case "d":
		if _, ok := m.selectedTask(); ok {
			m.mode = modeConfirmDelete
		}

	case "r":
		m.busy = true
		return m, m.refreshCmd()
	}
	return m, nil
}

func (m Model) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.mode = modeBrowse
	if msg.String() != "y" {
		return m, nil
	}

	t, ok := m.selectedTask()
	if !ok {
		return m, nil
	}
	m.busy = true
	return m, m.mutate("удаление", func(ctx context.Context) error {
		return m.planner.Delete(ctx, t.ID)
	})
}

func (m Model) openForm(t *task.Task) (tea.Model, tea.Cmd) {
	m.mode = modeForm
	m.formField = FormFieldTitle
	m.editingID = ""
	m.status, m.statusErr = "", false

	values := [FormFieldCount]string{}
	if t != nil {
		m.editingID = t.ID
		values[FormFieldTitle] = t.Title
		values[FormFieldTime] = t.Deadline.In(m.planner.Location()).Format(timeLayout)
		values[FormFieldDescription] = t.Description
	}

	for i := range m.formInputs {
		m.formInputs[i].SetValue(values[i])
		m.formInputs[i].Blur()
	}
	m.formInputs[FormFieldTitle].Focus()
	return m, textinput.Blink
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit

	case "esc":
		m.mode = modeBrowse
		return m, nil

	case "tab", "down":
		m.focusField((m.formField + 1) % FormFieldCount)
		return m, textinput.Blink

	case "shift+tab", "up":
		m.focusField((m.formField + FormFieldCount - 1) % FormFieldCount)
		return m, textinput.Blink

	case "enter":
		return m.submitForm()
	}

	var cmd tea.Cmd
	m.formInputs[m.formField], cmd = m.formInputs[m.formField].Update(msg)
	return m, cmd
}

func (m *Model) focusField(field int) {
	m.formInputs[m.formField].Blur()
	m.formField = field
	m.formInputs[m.formField].Focus()
}

func (m Model) submitForm() (tea.Model, tea.Cmd) {
	title := strings.TrimSpace(m.formInputs[FormFieldTitle].Value())
	if title == "" {
		m.setError("сохранение", errors.New("название не может быть пустым"))
		return m, nil
	}

	clock, err := time.Parse(timeLayout, strings.TrimSpace(m.formInputs[FormFieldTime].Value()))
	if err != nil {
		m.setError("сохранение", errors.New("время должно быть в формате HH:MM"))
		return m, nil
	}
	description := strings.TrimSpace(m.formInputs[FormFieldDescription].Value())

	m.mode = modeBrowse
	m.busy = true

	if m.editingID == "" {
		draft := task.Draft{
			Title:       title,
			Description: description,
			Deadline:    atClock(m.planner.SelectedDate(), clock),
			Status:      task.StatusToDo,
		}
		return m, m.mutate("добавление", func(ctx context.Context) error {
			return m.planner.Create(ctx, draft)
		})
	}

	t, ok := m.planner.Find(m.editingID)
	if !ok {
		m.busy = false
		m.setError("редактирование", fmt.Errorf("задача %s больше не существует", m.editingID))
		return m, nil
	}
	t.Title = title
	t.Description = description
	t.Deadline = atClock(t.Deadline.In(m.planner.Location()), clock)

	return m, m.mutate("редактирование", func(ctx context.Context) error {
		return m.planner.Update(ctx, t)
	})
}

// atClock ставит часы и минуты clock на дату day, сохраняя её часовой пояс
func atClock(day, clock time.Time) time.Time {
	y, mo, d := day.Date()
	return time.Date(y, mo, d, clock.Hour(), clock.Minute(), 0, 0, day.Location())
}

func (m Model) mutate(action string, fn func(ctx context.Context) error) tea.Cmd {
	parent, timeout := m.ctx, m.callTimeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(parent, timeout)
		defer cancel()
		return mutationMsg{action: action, err: fn(ctx)}
	}
}

func (m Model) refreshCmd() tea.Cmd {
	p, parent, timeout := m.planner, m.ctx, m.callTimeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(parent, timeout)
		defer cancel()
		return RefreshedMsg{Err: p.Refresh(ctx)}
	}
}

func (m *Model) moveDate(days int) {
	m.planner.ShiftDate(days)
	m.selected = 0
}

func (m *Model) setError(action string, err error) {
	logger.Warn("TUI: Операция завершилась ошибкой", zap.String("action", action), zap.Error(err))
	m.status = fmt.Sprintf("%s: %v", action, err)
	m.statusErr = true
}

func (m Model) selectedTask() (task.Task, bool) {
	tasks := m.planner.Tasks()
	if m.selected < 0 || m.selected >= len(tasks) {
		return task.Task{}, false
	}
	return tasks[m.selected], true
}

func (m Model) clampSelection() int {
	n := len(m.planner.Tasks())
	if n == 0 || m.selected < 0 {
		return 0
	}
	if m.selected >= n {
		return n - 1
	}
	return m.selected
}

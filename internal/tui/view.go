package tui

import (
	"fmt"
	"strings"
	"time"

	"dailyPlanner/internal/models/task"
	"dailyPlanner/internal/planner"

	"github.com/charmbracelet/lipgloss"
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	selectedStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("62")).
			Foreground(lipgloss.Color("230"))

	markedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	completedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Strikethrough(true)

	descriptionStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("241"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	borderStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)
)

const calendarWidth = 22

func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	if m.mode == modeForm {
		return m.renderForm()
	}

	scheduleWidth := m.width - calendarWidth - 8
	if scheduleWidth < 20 {
		scheduleWidth = 20
	}
	panelHeight := m.height - 4
	if panelHeight < 10 {
		panelHeight = 10
	}

	content := lipgloss.JoinHorizontal(
		lipgloss.Top,
		borderStyle.Width(calendarWidth).Height(panelHeight).Render(m.renderCalendar()),
		borderStyle.Width(scheduleWidth).Height(panelHeight).Render(m.renderSchedule(scheduleWidth)),
	)

	return lipgloss.JoinVertical(lipgloss.Left, content, m.renderStatus(), m.renderHelp())
}

// renderCalendar рисует месяц выбранного дня, неделя начинается с понедельника
func (m Model) renderCalendar() string {
	date := m.planner.SelectedDate()
	year, month, selectedDay := date.Date()
	marked := m.planner.DaysWithTasks(year, month)

	lines := []string{
		titleStyle.Render("Daily Planner"),
		"",
		fmt.Sprintf("%s %d", month, year),
		"Mo Tu We Th Fr Sa Su",
	}

	first := time.Date(year, month, 1, 0, 0, 0, 0, date.Location())
	offset := (int(first.Weekday()) + 6) % 7
	daysInMonth := first.AddDate(0, 1, -1).Day()

	var row strings.Builder
	row.WriteString(strings.Repeat("   ", offset))
	for day := 1; day <= daysInMonth; day++ {
		cell := fmt.Sprintf("%2d", day)
		switch {
		case day == selectedDay:
			cell = selectedStyle.Render(cell)
		case marked[day]:
			cell = markedStyle.Render(cell)
		}
		row.WriteString(cell)

		if marked[day] {
			row.WriteString("*")
		} else {
			row.WriteString(" ")
		}

		if (offset+day)%7 == 0 || day == daysInMonth {
			lines = append(lines, strings.TrimRight(row.String(), " "))
			row.Reset()
		}
	}

	return strings.Join(lines, "\n")
}

func (m Model) renderSchedule(width int) string {
	date := m.planner.SelectedDate()
	tasks := m.planner.Tasks()

	lines := []string{
		titleStyle.Render("Today's schedule"),
		planner.Day(date),
		strings.Repeat("─", width-2),
	}

	if len(tasks) == 0 {
		lines = append(lines, descriptionStyle.Render("No tasks for this day"))
	}

	for i, t := range tasks {
		line := fmt.Sprintf("%s %s %s", checkbox(t.Status), t.Deadline.Format(timeLayout), t.Title)
		switch {
		case i == m.selected:
			line = selectedStyle.Render(line)
		case t.Status == task.StatusCompleted:
			line = completedStyle.Render(line)
		}
		lines = append(lines, line)

		if t.Description != "" {
			lines = append(lines, "      "+descriptionStyle.Render(t.Description))
		}
	}

	return strings.Join(lines, "\n")
}

func checkbox(s task.Status) string {
	if s == task.StatusCompleted {
		return "[x]"
	}
	return "[ ]"
}

func (m Model) renderStatus() string {
	switch {
	case m.mode == modeConfirmDelete:
		if t, ok := m.selectedTask(); ok {
			return fmt.Sprintf(" Delete %q? y: confirm • any other key: cancel", t.Title)
		}
	case m.busy:
		return " ..."
	case m.statusErr:
		return " " + errorStyle.Render(m.status)
	}
	return " " + m.status
}

func (m Model) renderHelp() string {
	return " ←/→: day • [/]: week • t: today • ↑/↓: select • x: toggle • a: add • e: edit • d: delete • r: refresh • q: quit"
}

func (m Model) renderForm() string {
	header := "Add task for " + m.planner.SelectedDate().Format("02 Jan 2006")
	if m.editingID != "" {
		header = "Edit task"
	}

	labels := [FormFieldCount]string{
		FormFieldTitle:       "Title",
		FormFieldTime:        "Time",
		FormFieldDescription: "Description",
	}

	lines := []string{titleStyle.Render(header), ""}
	for i, input := range m.formInputs {
		label := fmt.Sprintf("%-12s", labels[i])
		if i == m.formField {
			label = selectedStyle.Render(label)
		}
		lines = append(lines, label+" "+input.View())
	}

	lines = append(lines, "")
	if m.statusErr {
		lines = append(lines, errorStyle.Render(m.status))
	}
	lines = append(lines, "tab: next field • enter: save • esc: cancel")

	return borderStyle.Render(strings.Join(lines, "\n"))
}

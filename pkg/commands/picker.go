package commands

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// RunSelection is a variable alias for runSelection, so it can be stubbed in tests.
var RunSelection = runSelection

type pickerModel struct {
	Label    string
	Choices  []string
	cursor   int
	selected int
}

func (m pickerModel) Init() tea.Cmd { return nil }

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil
		case "down", "j":
			if m.cursor < len(m.Choices)-1 {
				m.cursor++
			}
			return m, nil
		case "home", "g":
			m.cursor = 0
			return m, nil
		case "end", "G":
			m.cursor = len(m.Choices) - 1
			return m, nil
		case "enter", " ":
			m.selected = m.cursor
			return m, tea.Quit
		case "ctrl+c", "q", "esc":
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m pickerModel) View() string {
	var b strings.Builder
	b.WriteString(m.Label + "\n")
	b.WriteString("Use ↑/↓ to navigate, press space or enter to select, q to cancel\n\n")
	for i, choice := range m.Choices {
		cursor := " "
		if m.cursor == i {
			cursor = ">"
		}
		check := " "
		if m.selected == i {
			check = "x"
		}
		fmt.Fprintf(&b, "%s [%s] %s\n", cursor, check, choice)
	}
	return b.String()
}

// newPickerModel creates a picker with nothing selected
func newPickerModel(label string, choices []string) pickerModel {
	return pickerModel{
		Label:    label,
		Choices:  choices,
		selected: -1,
	}
}

func runSelection(label string, opts []string) (string, error) {
	if len(opts) == 0 {
		return "", fmt.Errorf("nothing to choose from")
	}
	p := tea.NewProgram(newPickerModel(label, opts))
	finalModel, err := p.Run()
	if err != nil {
		return "", err
	}
	selIdx := finalModel.(pickerModel).selected
	if selIdx < 0 || selIdx >= len(opts) {
		return "", fmt.Errorf("no selection made")
	}
	return opts[selIdx], nil
}

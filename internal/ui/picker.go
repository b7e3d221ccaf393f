package ui

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// ErrNothingToPick is returned when every item is disabled.
var ErrNothingToPick = errors.New("no selectable items")

// PickerItem is one entry shown in the interactive picker.
type PickerItem struct {
	Label    string // e.g. wallet name
	SubLabel string // shown dimmed, e.g. "ready" or the bridge URL
	Value    string // returned on selection
	Disabled bool   // listed but not selectable, e.g. a wallet that failed to init
}

type pickerModel struct {
	title    string
	items    []PickerItem
	cursor   int
	selected *PickerItem
	quitting bool
}

func newPicker(title string, items []PickerItem) pickerModel {
	m := pickerModel{title: title, items: items}
	m.cursor = m.next(-1, 1)
	return m
}

// next returns the first enabled index after from in direction dir, or from
// when there is none.
func (m pickerModel) next(from, dir int) int {
	for i := from + dir; i >= 0 && i < len(m.items); i += dir {
		if !m.items[i].Disabled {
			return i
		}
	}
	return from
}

func (m pickerModel) Init() tea.Cmd { return nil }

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "q", "ctrl+c", "esc":
		m.quitting = true
		return m, tea.Quit
	case "up", "k":
		m.cursor = m.next(m.cursor, -1)
	case "down", "j":
		m.cursor = m.next(m.cursor, 1)
	case "enter", " ":
		if m.cursor >= 0 && m.cursor < len(m.items) && !m.items[m.cursor].Disabled {
			item := m.items[m.cursor]
			m.selected = &item
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m pickerModel) View() string {
	if m.quitting {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("\n")
	sb.WriteString(StyleTitle.Render("  "+m.title) + "\n\n")

	for i, item := range m.items {
		prefix := "    "
		if i == m.cursor {
			prefix = "  ▸ "
		}
		label := StyleValue.Render(item.Label)
		if item.Disabled {
			label = StyleMeta.Render(item.Label)
		}
		line := prefix + label
		if item.SubLabel != "" {
			line += "  " + StyleMeta.Render(item.SubLabel)
		}
		if i == m.cursor {
			line = StyleSelected.Render(line)
		}
		sb.WriteString(line + "\n")
	}

	sb.WriteString("\n")
	sb.WriteString(StyleMeta.Render("  [ ↑↓ / jk ] navigate   [ Enter ] select   [ q ] cancel") + "\n")
	return sb.String()
}

// PickItem runs an interactive list picker and returns the selected item's
// Value. It returns ("", nil) when the user cancels.
func PickItem(title string, items []PickerItem) (string, error) {
	m := newPicker(title, items)
	if m.cursor < 0 {
		return "", ErrNothingToPick
	}
	final, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	if err != nil {
		return "", fmt.Errorf("picker: %w", err)
	}
	fm := final.(pickerModel)
	if fm.quitting || fm.selected == nil {
		return "", nil
	}
	return fm.selected.Value, nil
}

package components

import (
	"strconv"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/skilltrack/skilltrack/internal/ui/theme"
)

// MenuItem is one entry of a Menu. Description is shown under the
// selected entry.
type MenuItem struct {
	Label       string
	Description string
	Action      func() tea.Cmd
	Disabled    bool
}

// Menu is a vertical menu. Arrow keys wrap around and skip disabled
// entries; digits 1-9 activate the matching entry directly.
type Menu struct {
	Items    []MenuItem
	Selected int
}

func NewMenu(items []MenuItem) Menu {
	m := Menu{Items: items, Selected: -1}
	m.Selected = m.step(-1, 1)
	return m
}

func (m Menu) Init() tea.Cmd {
	return nil
}

// step returns the next enabled index after from in direction dir, or
// Selected when there is none.
func (m Menu) step(from, dir int) int {
	n := len(m.Items)
	for k := 1; k <= n; k++ {
		i := ((from+dir*k)%n + n) % n
		if !m.Items[i].Disabled {
			return i
		}
	}
	return m.Selected
}

func (m Menu) activate(i int) tea.Cmd {
	if i < 0 || i >= len(m.Items) {
		return nil
	}
	item := m.Items[i]
	if item.Disabled || item.Action == nil {
		return nil
	}
	return item.Action()
}

func (m Menu) Update(msg tea.Msg) (Menu, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok || len(m.Items) == 0 {
		return m, nil
	}

	switch key := kmsg.String(); key {
	case "up", "k":
		m.Selected = m.step(m.Selected, -1)
	case "down", "j", "tab":
		m.Selected = m.step(m.Selected, 1)
	case "enter":
		return m, m.activate(m.Selected)
	default:
		if n, err := strconv.Atoi(key); err == nil && n >= 1 && n <= min(len(m.Items), 9) {
			if m.Items[n-1].Disabled {
				return m, nil
			}
			m.Selected = n - 1
			return m, m.activate(n - 1)
		}
	}
	return m, nil
}

func (m Menu) View() string {
	var b strings.Builder
	for i, item := range m.Items {
		label := strconv.Itoa(i+1) + ". " + item.Label
		switch {
		case item.Disabled:
			b.WriteString(lipgloss.NewStyle().Foreground(theme.TextDim).Render("    " + label))
		case i == m.Selected:
			b.WriteString(lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render("  ▸ " + label))
			if item.Description != "" {
				b.WriteString("\n" + theme.Hint.Render("       "+item.Description))
			}
		default:
			b.WriteString(lipgloss.NewStyle().Foreground(theme.Text).Render("    " + label))
		}
		b.WriteString("\n")
	}
	return b.String()
}

package components

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
)

func TestMenu_SkipsDisabled(t *testing.T) {
	var picked string
	m := NewMenu([]MenuItem{
		{Label: "Dashboard", Disabled: true},
		{Label: "My Courses", Action: func() tea.Cmd { picked = "courses"; return nil }},
		{Label: "Quit", Action: func() tea.Cmd { picked = "quit"; return nil }},
	})
	if m.Selected != 1 {
		t.Fatalf("Selected = %d, want first enabled item 1", m.Selected)
	}

	m, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyUp})
	if m.Selected != 2 {
		t.Errorf("up should wrap past the disabled item to 2, got %d", m.Selected)
	}

	m, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	if m.Selected != 1 {
		t.Errorf("down should wrap past the disabled item to 1, got %d", m.Selected)
	}
	m.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if picked != "courses" {
		t.Errorf("picked = %q, want courses", picked)
	}
}

func TestMenu_DigitShortcuts(t *testing.T) {
	var picked string
	m := NewMenu([]MenuItem{
		{Label: "Dashboard", Disabled: true},
		{Label: "Activity", Action: func() tea.Cmd { picked = "activity"; return nil }},
		{Label: "Quit", Description: "Leave skilltrack", Action: func() tea.Cmd { picked = "quit"; return nil }},
	})

	m, _ = m.Update(tea.KeyPressMsg{Code: '1', Text: "1"})
	if picked != "" || m.Selected != 1 {
		t.Errorf("digit for a disabled item acted: picked = %q, Selected = %d", picked, m.Selected)
	}
	m, _ = m.Update(tea.KeyPressMsg{Code: '9', Text: "9"})
	if picked != "" {
		t.Errorf("digit past the last item acted: picked = %q", picked)
	}
	m, _ = m.Update(tea.KeyPressMsg{Code: '3', Text: "3"})
	if picked != "quit" || m.Selected != 2 {
		t.Errorf("picked = %q, Selected = %d, want quit at 2", picked, m.Selected)
	}
	if !strings.Contains(m.View(), "Leave skilltrack") {
		t.Error("expected the selected item's description in the view")
	}
}

func TestMenu_AllDisabled(t *testing.T) {
	m := NewMenu([]MenuItem{{Label: "Dashboard", Disabled: true}})
	m, cmd := m.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd != nil {
		t.Error("expected no command from a menu without enabled items")
	}
	if m.Selected != -1 {
		t.Errorf("Selected = %d, want -1", m.Selected)
	}
}

func TestProgressBar_Clamps(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{-5, 0},
		{50, 50},
		{140, 100},
	}
	for _, tt := range tests {
		p := NewProgressBar("", tt.in, true, 40)
		if p.Percent != tt.want {
			t.Errorf("NewProgressBar(%d).Percent = %d, want %d", tt.in, p.Percent, tt.want)
		}
		if !strings.Contains(p.View(), "%") {
			t.Errorf("expected percent label in %q", p.View())
		}
	}
}

func TestTextInput_EditClearsVerdict(t *testing.T) {
	in := NewTextInput("Your answer", 40)
	in.Submit(false)
	if !strings.Contains(in.View(), "✗") {
		t.Fatal("expected incorrect mark after Submit(false)")
	}

	in, _ = in.Update(tea.KeyPressMsg{Code: 'a', Text: "a"})
	if strings.Contains(in.View(), "✗") {
		t.Error("expected mark to clear after editing")
	}
	if in.Value() != "a" {
		t.Errorf("Value = %q, want a", in.Value())
	}

	in.Reset()
	if in.Value() != "" {
		t.Errorf("Value after Reset = %q", in.Value())
	}
}

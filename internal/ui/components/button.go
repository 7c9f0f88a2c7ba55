package components

import (
	"github.com/skilltrack/skilltrack/internal/ui/theme"
)

// Button is a styled, key-driven button. Key is shown in the label.
type Button struct {
	Label   string
	Key     string
	Enabled bool
}

// NewButton creates a new button.
func NewButton(label, key string, enabled bool) Button {
	return Button{
		Label:   label,
		Key:     key,
		Enabled: enabled,
	}
}

// View renders the button.
func (b Button) View() string {
	label := b.Label
	if b.Key != "" {
		label += " (" + b.Key + ")"
	}
	if b.Enabled {
		return theme.ButtonActive.Render(label)
	}
	return theme.ButtonInactive.Render(label)
}

// Package activity shows the audit log: logins, navigation, completed
// tasks and answer attempts.
package activity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image/color"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/skilltrack/skilltrack/internal/screen"
	"github.com/skilltrack/skilltrack/internal/session"
	"github.com/skilltrack/skilltrack/internal/store"
	"github.com/skilltrack/skilltrack/internal/ui/layout"
	"github.com/skilltrack/skilltrack/internal/ui/theme"
)

const pageSize = 50

type eventsLoadedMsg struct {
	Events []store.Event
	Err    error
}

// ActivityScreen lists recent events. Employees see their own; managers
// see everyone's.
type ActivityScreen struct {
	env      *screen.Env
	session  *session.Session
	events   []store.Event
	selected int
	expanded map[int]bool
	loaded   bool
	errMsg   string
}

var _ screen.Screen = (*ActivityScreen)(nil)
var _ screen.KeyHintProvider = (*ActivityScreen)(nil)

func New(env *screen.Env, s *session.Session) *ActivityScreen {
	return &ActivityScreen{
		env:      env,
		session:  s,
		expanded: make(map[int]bool),
	}
}

func (a *ActivityScreen) Init() tea.Cmd {
	opts := store.QueryOpts{Limit: pageSize}
	if !a.session.IsManager() {
		opts.UserID = a.session.UserID
	}
	events := a.env.Store.Events()
	return func() tea.Msg {
		evs, err := events.Query(context.Background(), opts)
		return eventsLoadedMsg{Events: evs, Err: err}
	}
}

func (a *ActivityScreen) Title() string {
	return "Activity"
}

func (a *ActivityScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Details"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Esc", Description: "Back"},
	}
}

func (a *ActivityScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case eventsLoadedMsg:
		if msg.Err != nil {
			a.errMsg = msg.Err.Error()
		} else {
			a.events = msg.Events
		}
		a.loaded = true
		return a, nil

	case tea.KeyPressMsg:
		switch msg.String() {
		case "up", "k":
			if a.selected > 0 {
				a.selected--
			}
		case "down", "j":
			if a.selected < len(a.events)-1 {
				a.selected++
			}
		case "enter":
			a.expanded[a.selected] = !a.expanded[a.selected]
		}
	}
	return a, nil
}

func (a *ActivityScreen) View(width, height int) string {
	if a.errMsg != "" {
		return layout.RenderNotice("Error: "+a.errMsg, theme.Error, width, height)
	}
	if !a.loaded {
		return layout.RenderNotice("Loading activity...", theme.TextDim, width, height)
	}
	if len(a.events) == 0 {
		return layout.RenderNotice("No activity yet.", theme.TextDim, width, height)
	}

	// Keep the selected row on screen.
	first := max(0, a.selected-height/2)

	var b strings.Builder
	b.WriteString("\n")
	for i := first; i < len(a.events); i++ {
		ev := a.events[i]
		prefix := "  "
		if i == a.selected {
			prefix = "> "
		}
		line := fmt.Sprintf("%s%s  %-15s  %-10s  %s",
			prefix,
			ev.CreatedAt.Local().Format("2006-01-02 15:04"),
			ev.Kind,
			ev.CourseID,
			Summary(ev))

		style := lipgloss.NewStyle().Foreground(kindColor(ev.Kind))
		if i == a.selected {
			style = style.Bold(true)
		}
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, style.Render(line)))
		b.WriteString("\n")

		if a.expanded[i] {
			b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
				theme.Hint.Render(indentJSON(ev.Payload))))
			b.WriteString("\n")
		}
	}
	return b.String()
}

// Summary renders the interesting part of an event payload on one line.
func Summary(ev store.Event) string {
	var p map[string]any
	if err := json.Unmarshal(ev.Payload, &p); err != nil {
		return ""
	}
	switch ev.Kind {
	case store.EventNavigate:
		return fmt.Sprintf("moved to item %v", p["index"])
	case store.EventTaskCompleted:
		return fmt.Sprintf("completed %v", p["task_id"])
	case store.EventAnswerAttempt:
		verdict := "incorrect"
		switch {
		case p["error"] != nil:
			verdict = "check failed"
		case p["correct"] == true:
			verdict = "correct"
		}
		return fmt.Sprintf("%v: %q %s", p["task_id"], p["submitted"], verdict)
	case store.EventLLMRequest:
		return fmt.Sprintf("%v via %v (%v ms)", p["purpose"], p["model"], p["latency_ms"])
	}
	return ""
}

func indentJSON(raw json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "    ", "  "); err != nil {
		return "    " + string(raw)
	}
	return "    " + buf.String()
}

func kindColor(kind string) color.Color {
	switch kind {
	case store.EventTaskCompleted:
		return theme.Success
	case store.EventAnswerAttempt:
		return theme.Accent
	case store.EventLogin, store.EventLogout:
		return theme.TextDim
	default:
		return theme.Text
	}
}

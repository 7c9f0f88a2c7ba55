// Package manager shows the team dashboard: headline stats and the
// completion table of the manager's courses.
package manager

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/skilltrack/skilltrack/internal/dashboard"
	"github.com/skilltrack/skilltrack/internal/screen"
	"github.com/skilltrack/skilltrack/internal/session"
	"github.com/skilltrack/skilltrack/internal/ui/components"
	"github.com/skilltrack/skilltrack/internal/ui/layout"
	"github.com/skilltrack/skilltrack/internal/ui/theme"
)

type dashboardLoadedMsg struct {
	View *dashboard.ManagerView
	Err  error
}

// ManagerScreen renders dashboard.ManagerView.
type ManagerScreen struct {
	env     *screen.Env
	session *session.Session
	view    *dashboard.ManagerView
	errMsg  string
}

var _ screen.Screen = (*ManagerScreen)(nil)
var _ screen.KeyHintProvider = (*ManagerScreen)(nil)

func New(env *screen.Env, s *session.Session) *ManagerScreen {
	return &ManagerScreen{env: env, session: s}
}

func (m *ManagerScreen) Init() tea.Cmd {
	svc, owner := m.env.Dashboard, m.session.UserID
	return func() tea.Msg {
		v, err := svc.Manager(context.Background(), owner)
		return dashboardLoadedMsg{View: v, Err: err}
	}
}

func (m *ManagerScreen) Title() string {
	return "Team Dashboard"
}

func (m *ManagerScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "R", Description: "Refresh"},
		{Key: "Esc", Description: "Back"},
	}
}

func (m *ManagerScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case dashboardLoadedMsg:
		if msg.Err != nil {
			m.env.Log().Sugar().Warnw("loading manager dashboard", "error", msg.Err)
			m.errMsg = "Failed to load the dashboard. Press R to retry."
			return m, nil
		}
		m.errMsg = ""
		m.view = msg.View
	case tea.KeyPressMsg:
		if msg.String() == "r" {
			return m, m.Init()
		}
	}
	return m, nil
}

func (m *ManagerScreen) View(width, height int) string {
	if m.errMsg != "" {
		return layout.RenderNotice(m.errMsg, theme.Error, width, height)
	}
	if m.view == nil {
		return layout.RenderNotice("Loading dashboard...", theme.TextDim, width, height)
	}

	cw := min(width-4, 100)
	sections := []string{
		renderStats(m.view.Stats, cw),
		"",
		theme.Selected.Render("Your Courses"),
		renderTable(m.view.Courses, cw, layout.IsCompactWidth(width)),
	}
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, "\n"+lipgloss.JoinVertical(lipgloss.Left, sections...))
}

func renderStats(s dashboard.Stats, width int) string {
	cardWidth := (width - 4) / 3
	card := func(label, value string) string {
		return theme.StatCard.Width(cardWidth).Render(
			theme.Hint.Render(label) + "\n" + theme.Title.Render(value))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top,
		card("Total Employees", fmt.Sprint(s.TotalEmployees)),
		"  ",
		card("Active Courses", fmt.Sprint(s.ActiveCourses)),
		"  ",
		card("Overall Completion", fmt.Sprintf("%d%%", s.OverallCompletion)),
	)
}

func renderTable(rows []dashboard.CourseRow, width int, compact bool) string {
	if len(rows) == 0 {
		return theme.Hint.Render("You have not created any courses yet. Use `skilltrack course import` to add some.")
	}

	nameWidth := 34
	if compact {
		nameWidth = 22
	}

	var b strings.Builder
	header := fmt.Sprintf("%-*s  %-10s  %8s  %9s  ", nameWidth, "Course", "Deadline", "Assigned", "Completed")
	b.WriteString(theme.Hint.Render(header + "Progress"))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", width)))
	b.WriteString("\n")

	barWidth := max(width-lipgloss.Width(header), 12)
	for _, r := range rows {
		name := r.Name
		if len(name) > nameWidth {
			name = name[:nameWidth-3] + "..."
		}
		deadline := r.Deadline
		if deadline == "" {
			deadline = "-"
		}
		pct := 0
		if r.Assigned > 0 {
			pct = r.Completed * 100 / r.Assigned
		}
		line := fmt.Sprintf("%-*s  %-10s  %8d  %9d  ", nameWidth, name, deadline, r.Assigned, r.Completed)
		b.WriteString(theme.Body.Render(line))
		b.WriteString(components.NewProgressBar("", pct, true, barWidth).View())
		b.WriteString("\n")
	}
	return b.String()
}

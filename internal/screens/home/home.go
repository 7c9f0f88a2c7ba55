package home

import (
	"context"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"go.uber.org/zap"

	"github.com/skilltrack/skilltrack/internal/router"
	"github.com/skilltrack/skilltrack/internal/screen"
	"github.com/skilltrack/skilltrack/internal/screens/activity"
	"github.com/skilltrack/skilltrack/internal/screens/catalog"
	"github.com/skilltrack/skilltrack/internal/screens/manager"
	"github.com/skilltrack/skilltrack/internal/session"
	"github.com/skilltrack/skilltrack/internal/ui/components"
	"github.com/skilltrack/skilltrack/internal/ui/theme"
)

type loggedOutMsg struct{}

// HomeScreen is the role-dependent main menu.
type HomeScreen struct {
	env          *screen.Env
	session      *session.Session
	loginFactory func() screen.Screen
	menu         components.Menu
}

var _ screen.Screen = (*HomeScreen)(nil)

// New creates a HomeScreen for s. loginFactory builds the screen shown
// after logging out.
func New(env *screen.Env, s *session.Session, loginFactory func() screen.Screen) *HomeScreen {
	h := &HomeScreen{env: env, session: s, loginFactory: loginFactory}

	push := func(build func() screen.Screen) func() tea.Cmd {
		return func() tea.Cmd {
			return func() tea.Msg { return router.PushScreenMsg{Screen: build()} }
		}
	}

	var items []components.MenuItem
	if s.IsManager() {
		items = append(items, components.MenuItem{
			Label:       "Team Dashboard",
			Description: "Completion across the courses you own",
			Action:      push(func() screen.Screen { return manager.New(env, s) }),
		})
	} else {
		items = append(items, components.MenuItem{
			Label:       "My Courses",
			Description: "Courses assigned to you",
			Action:      push(func() screen.Screen { return catalog.New(env, s) }),
		})
	}
	items = append(items,
		components.MenuItem{
			Label:       "Activity",
			Description: "Recent logins, answers and progress",
			Action:      push(func() screen.Screen { return activity.New(env, s) }),
		},
		components.MenuItem{Label: "Log Out", Action: h.logout},
		components.MenuItem{Label: "Quit", Action: func() tea.Cmd { return tea.Quit }},
	)
	h.menu = components.NewMenu(items)
	return h
}

func (h *HomeScreen) logout() tea.Cmd {
	env, s := h.env, h.session
	return func() tea.Msg {
		if err := env.Sessions.Logout(context.Background(), s); err != nil {
			env.Log().Warn("logout", zap.Error(err))
		}
		if env.OnLogin != nil {
			if err := env.OnLogin(nil); err != nil {
				env.Log().Warn("clearing current session", zap.Error(err))
			}
		}
		return loggedOutMsg{}
	}
}

func (h *HomeScreen) Init() tea.Cmd {
	return nil
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if _, ok := msg.(loggedOutMsg); ok {
		next := h.loginFactory()
		return h, tea.Batch(
			func() tea.Msg { return screen.SessionChangedMsg{} },
			func() tea.Msg { return router.ReplaceScreenMsg{Screen: next} },
		)
	}

	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) View(width, height int) string {
	role := "Employee"
	if h.session.IsManager() {
		role = "Manager"
	}

	sections := []string{
		theme.Title.Render("Hello, " + h.session.Name),
		theme.Subtitle.Render(role + " · " + h.session.Email),
		"",
		strings.TrimRight(h.menu.View(), "\n"),
	}

	card := theme.Card.Width(min(width-4, 56)).Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, card)
}

func (h *HomeScreen) Title() string {
	return "Home"
}

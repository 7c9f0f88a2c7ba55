// Package login asks for an email address and starts a session. There is
// no password; the role follows from the address.
package login

import (
	"context"
	"errors"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"go.uber.org/zap"

	"github.com/skilltrack/skilltrack/internal/router"
	"github.com/skilltrack/skilltrack/internal/screen"
	"github.com/skilltrack/skilltrack/internal/session"
	"github.com/skilltrack/skilltrack/internal/ui/components"
	"github.com/skilltrack/skilltrack/internal/ui/layout"
	"github.com/skilltrack/skilltrack/internal/ui/theme"
)

type loginDoneMsg struct {
	Session *session.Session
	Err     error
}

// LoginScreen is the first screen when no session is active.
type LoginScreen struct {
	env         *screen.Env
	homeFactory func(*session.Session) screen.Screen
	input       components.TextInput
	pending     bool
	errMsg      string
}

var _ screen.Screen = (*LoginScreen)(nil)
var _ screen.KeyHintProvider = (*LoginScreen)(nil)

// New creates a LoginScreen that replaces itself with homeFactory's screen
// once logged in.
func New(env *screen.Env, homeFactory func(*session.Session) screen.Screen) *LoginScreen {
	return &LoginScreen{
		env:         env,
		homeFactory: homeFactory,
		input:       components.NewTextInput("you@company.com", 254),
	}
}

func (l *LoginScreen) Init() tea.Cmd {
	return l.input.Init()
}

func (l *LoginScreen) Title() string {
	return "Log In"
}

func (l *LoginScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Log in"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

func (l *LoginScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case loginDoneMsg:
		l.pending = false
		if msg.Err != nil {
			l.errMsg = describe(msg.Err)
			return l, nil
		}
		if l.env.OnLogin != nil {
			if err := l.env.OnLogin(msg.Session); err != nil {
				l.env.Log().Warn("saving current session", zap.Error(err))
			}
		}
		next := l.homeFactory(msg.Session)
		return l, tea.Batch(
			func() tea.Msg { return screen.SessionChangedMsg{Session: msg.Session} },
			func() tea.Msg { return router.ReplaceScreenMsg{Screen: next} },
		)

	case tea.KeyPressMsg:
		if msg.String() == "enter" {
			return l, l.submit()
		}
	}

	var cmd tea.Cmd
	l.input, cmd = l.input.Update(msg)
	return l, cmd
}

func (l *LoginScreen) submit() tea.Cmd {
	email := strings.TrimSpace(l.input.Value())
	if email == "" || l.pending {
		return nil
	}
	l.pending = true
	l.errMsg = ""
	sessions := l.env.Sessions
	return func() tea.Msg {
		s, err := sessions.Login(context.Background(), email)
		return loginDoneMsg{Session: s, Err: err}
	}
}

func describe(err error) string {
	if errors.Is(err, session.ErrInvalidEmail) {
		return "Please enter a valid email address."
	}
	return "Login failed. Please try again."
}

func (l *LoginScreen) View(width, height int) string {
	var sections []string

	sections = append(sections,
		theme.Title.Render("Welcome to skilltrack"),
		"",
		theme.Subtitle.Render("Log in with your work email. Addresses containing \"manager\" open the manager view."),
		"",
		"Email: "+l.input.View(),
	)

	switch {
	case l.pending:
		sections = append(sections, "", theme.Hint.Render("Logging in..."))
	case l.errMsg != "":
		sections = append(sections, "", theme.Incorrect.Render(l.errMsg))
	}

	card := theme.Card.Width(min(width-4, 72)).Render(lipgloss.JoinVertical(lipgloss.Center, sections...))
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, card)
}

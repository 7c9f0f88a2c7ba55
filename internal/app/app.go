package app

import (
	"fmt"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"go.uber.org/zap"

	"github.com/skilltrack/skilltrack/internal/router"
	"github.com/skilltrack/skilltrack/internal/screen"
	"github.com/skilltrack/skilltrack/internal/screens/home"
	"github.com/skilltrack/skilltrack/internal/screens/login"
	"github.com/skilltrack/skilltrack/internal/session"
	"github.com/skilltrack/skilltrack/internal/ui/layout"
)

// Options configures the TUI. A nil Session starts on the login screen.
type Options struct {
	Env     *screen.Env
	Session *session.Session
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router  *router.Router
	session *session.Session
	logger  *zap.Logger
	width   int
	height  int
}

// newAppModel creates the root model starting on home or login.
func newAppModel(opts Options) AppModel {
	env := opts.Env
	var (
		homeFactory  func(*session.Session) screen.Screen
		loginFactory func() screen.Screen
	)
	homeFactory = func(s *session.Session) screen.Screen {
		return home.New(env, s, loginFactory)
	}
	loginFactory = func() screen.Screen {
		return login.New(env, homeFactory)
	}

	var first screen.Screen
	if opts.Session != nil {
		first = homeFactory(opts.Session)
	} else {
		first = loginFactory()
	}
	return AppModel{
		router:  router.New(first),
		session: opts.Session,
		logger:  env.Log(),
	}
}

func (m AppModel) Init() tea.Cmd {
	return m.router.Active().Init()
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case screen.SessionChangedMsg:
		m.session = msg.Session
		if msg.Session != nil {
			m.logger.Info("tui session started", zap.String("user_id", msg.Session.UserID))
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if bi, ok := m.router.Active().(screen.BackInterceptor); ok && bi.InterceptsBack() {
				break
			}
			if m.router.Depth() > 1 {
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
			return m, nil
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}

	if layout.IsTooSmall(m.width, m.height) {
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
		return v
	}

	active := m.router.Active()
	title := ""
	if active != nil {
		title = active.Title()
	}

	user := ""
	if m.session != nil {
		user = fmt.Sprintf("%s (%s)  ", m.session.Name, m.session.Role)
	}
	header := layout.RenderHeader(title, user, m.width)

	var footerHints []layout.KeyHint
	if khp, ok := active.(screen.KeyHintProvider); ok {
		footerHints = khp.KeyHints()
	} else if m.router.Depth() > 1 {
		footerHints = []layout.KeyHint{
			{Key: "Esc", Description: "Back"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	} else {
		footerHints = []layout.KeyHint{
			{Key: "↑↓", Description: "Navigate"},
			{Key: "Enter", Description: "Select"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}

	footer := layout.RenderFooter(footerHints, m.width)

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := max(m.height-headerHeight-footerHeight, 0)

	content := m.router.View(m.width, contentHeight)
	frame := layout.RenderFrame(header, content, footer, m.width, m.height)

	v.SetContent(frame)
	return v
}

// Run starts the Bubble Tea program and blocks until it exits.
func Run(opts Options) error {
	p := tea.NewProgram(newAppModel(opts))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}

// Package catalog lists the courses assigned to an employee.
package catalog

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/skilltrack/skilltrack/internal/dashboard"
	"github.com/skilltrack/skilltrack/internal/router"
	"github.com/skilltrack/skilltrack/internal/screen"
	"github.com/skilltrack/skilltrack/internal/screens/viewer"
	"github.com/skilltrack/skilltrack/internal/session"
	"github.com/skilltrack/skilltrack/internal/ui/components"
	"github.com/skilltrack/skilltrack/internal/ui/layout"
	"github.com/skilltrack/skilltrack/internal/ui/theme"
)

type cardsLoadedMsg struct {
	Cards []dashboard.CourseCard
	Err   error
}

// CatalogScreen shows assigned courses with their progress.
type CatalogScreen struct {
	env      *screen.Env
	session  *session.Session
	cards    []dashboard.CourseCard
	selected int
	loaded   bool
	errMsg   string
	hint     string
	open     func(dashboard.CourseCard) screen.Screen
}

var _ screen.Screen = (*CatalogScreen)(nil)
var _ screen.KeyHintProvider = (*CatalogScreen)(nil)
var _ screen.Resumer = (*CatalogScreen)(nil)

// New creates a CatalogScreen for the employee in s.
func New(env *screen.Env, s *session.Session) *CatalogScreen {
	return &CatalogScreen{
		env:     env,
		session: s,
		open: func(c dashboard.CourseCard) screen.Screen {
			return viewer.New(env, s, c.CourseID, c.Name)
		},
	}
}

func (c *CatalogScreen) Init() tea.Cmd {
	return c.load()
}

// Resume reloads progress after returning from the viewer.
func (c *CatalogScreen) Resume() tea.Cmd {
	c.hint = ""
	return c.load()
}

func (c *CatalogScreen) load() tea.Cmd {
	svc, userID := c.env.Dashboard, c.session.UserID
	return func() tea.Msg {
		cards, err := svc.Employee(context.Background(), userID)
		return cardsLoadedMsg{Cards: cards, Err: err}
	}
}

func (c *CatalogScreen) Title() string {
	return "My Courses"
}

func (c *CatalogScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Open"},
		{Key: "Esc", Description: "Back"},
	}
}

func (c *CatalogScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case cardsLoadedMsg:
		c.loaded = true
		if msg.Err != nil {
			c.env.Log().Sugar().Warnw("loading assigned courses", "error", msg.Err)
			c.errMsg = "Failed to load your courses. Please try again."
			return c, nil
		}
		c.errMsg = ""
		c.cards = msg.Cards
		c.selected = min(c.selected, max(len(c.cards)-1, 0))
		return c, nil

	case tea.KeyPressMsg:
		switch msg.String() {
		case "up", "k":
			if c.selected > 0 {
				c.selected--
			}
			c.hint = ""
		case "down", "j":
			if c.selected < len(c.cards)-1 {
				c.selected++
			}
			c.hint = ""
		case "enter":
			if c.selected >= len(c.cards) {
				return c, nil
			}
			card := c.cards[c.selected]
			if !card.Openable() {
				c.hint = "You have already completed this course."
				return c, nil
			}
			next := c.open(card)
			return c, func() tea.Msg { return router.PushScreenMsg{Screen: next} }
		}
	}
	return c, nil
}

func (c *CatalogScreen) View(width, height int) string {
	switch {
	case c.errMsg != "":
		return layout.RenderNotice(c.errMsg, theme.Error, width, height)
	case !c.loaded:
		return layout.RenderNotice("Loading your courses...", theme.TextDim, width, height)
	case len(c.cards) == 0:
		return layout.RenderNotice("No courses have been assigned to you yet.", theme.TextDim, width, height)
	}

	cw := min(width-4, 90)
	var b strings.Builder
	b.WriteString("\n")
	for i, card := range c.cards {
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, renderCard(card, i == c.selected, cw)))
		b.WriteString("\n")
	}
	if c.hint != "" {
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, theme.Warning.Render(c.hint)))
	}
	return b.String()
}

func renderCard(card dashboard.CourseCard, selected bool, width int) string {
	name := theme.Unselected.Render(card.Name)
	if selected {
		name = theme.Selected.Render("▸ " + card.Name)
	}

	deadline := "No deadline"
	if card.Deadline != "" {
		deadline = "Due " + card.Deadline
	}
	meta := theme.Hint.Render(fmt.Sprintf("%s · %d items", deadline, card.Items))

	status := theme.Selected.Render(string(card.Status))
	if card.Status == dashboard.StatusCompleted {
		status = theme.Correct.Render(string(card.Status))
	}

	bar := components.NewProgressBar("", card.Percent, true, width-lipgloss.Width(status)-8).View()

	border := theme.Border
	if selected {
		border = theme.Primary
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1).
		Width(width).
		Render(lipgloss.JoinVertical(lipgloss.Left, name, meta, bar+"  "+status))
}

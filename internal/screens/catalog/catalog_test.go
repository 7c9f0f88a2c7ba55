package catalog

import (
	"errors"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/skilltrack/skilltrack/internal/dashboard"
	"github.com/skilltrack/skilltrack/internal/router"
	"github.com/skilltrack/skilltrack/internal/screen"
	"github.com/skilltrack/skilltrack/internal/session"
)

type stubScreen string

func (s stubScreen) Init() tea.Cmd                           { return nil }
func (s stubScreen) Update(tea.Msg) (screen.Screen, tea.Cmd) { return s, nil }
func (s stubScreen) View(int, int) string                    { return string(s) }
func (s stubScreen) Title() string                           { return string(s) }

func loadedCatalog() *CatalogScreen {
	c := New(&screen.Env{}, &session.Session{UserID: "u1"})
	c.open = func(card dashboard.CourseCard) screen.Screen { return stubScreen(card.Name) }
	c.Update(cardsLoadedMsg{Cards: []dashboard.CourseCard{
		{CourseID: "c5", Name: "Project Management Basics", Deadline: "2024-05-20", Items: 2, Percent: 100, Status: dashboard.StatusCompleted},
		{CourseID: "c1", Name: "Introduction to React", Deadline: "2024-06-15", Items: 4, Percent: 50, Status: dashboard.StatusContinue},
	}})
	return c
}

func TestCatalog_CompletedCourseNotOpenable(t *testing.T) {
	c := loadedCatalog()

	_, cmd := c.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd != nil {
		t.Error("expected no command when opening a completed course")
	}
	if c.hint == "" {
		t.Error("expected a hint explaining the course is completed")
	}
}

func TestCatalog_OpenCourse(t *testing.T) {
	c := loadedCatalog()
	c.Update(tea.KeyPressMsg{Code: tea.KeyDown})

	_, cmd := c.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected a push command")
	}
	push, ok := cmd().(router.PushScreenMsg)
	if !ok {
		t.Fatalf("expected PushScreenMsg, got %T", cmd())
	}
	if push.Screen.Title() != "Introduction to React" {
		t.Errorf("opened %q", push.Screen.Title())
	}
}

func TestCatalog_View(t *testing.T) {
	c := loadedCatalog()
	view := c.View(100, 30)
	for _, want := range []string{"Introduction to React", "Continue Course", "Completed", "Due 2024-06-15"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestCatalog_LoadError(t *testing.T) {
	c := New(&screen.Env{}, &session.Session{UserID: "u1"})
	c.Update(cardsLoadedMsg{Err: errors.New("disk gone")})
	if !strings.Contains(c.View(100, 30), "Failed to load your courses") {
		t.Error("expected load error message")
	}
}

func TestCatalog_Empty(t *testing.T) {
	c := New(&screen.Env{}, &session.Session{UserID: "u1"})
	c.Update(cardsLoadedMsg{})
	if !strings.Contains(c.View(100, 30), "No courses have been assigned") {
		t.Error("expected empty-state message")
	}
}

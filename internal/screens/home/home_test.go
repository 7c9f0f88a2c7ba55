package home

import (
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/skilltrack/skilltrack/internal/router"
	"github.com/skilltrack/skilltrack/internal/screen"
	"github.com/skilltrack/skilltrack/internal/screens/catalog"
	"github.com/skilltrack/skilltrack/internal/screens/manager"
	"github.com/skilltrack/skilltrack/internal/session"
)

func labels(h *HomeScreen) []string {
	var out []string
	for _, it := range h.menu.Items {
		out = append(out, it.Label)
	}
	return out
}

func TestHome_MenuDependsOnRole(t *testing.T) {
	env := &screen.Env{}
	emp := New(env, &session.Session{Name: "alice", Role: session.RoleEmployee}, nil)
	mgr := New(env, &session.Session{Name: "boss", Role: session.RoleManager}, nil)

	if got := labels(emp)[0]; got != "My Courses" {
		t.Errorf("employee first item = %q, want My Courses", got)
	}
	if got := labels(mgr)[0]; got != "Team Dashboard" {
		t.Errorf("manager first item = %q, want Team Dashboard", got)
	}
}

func TestHome_EnterPushesRoleScreen(t *testing.T) {
	tests := []struct {
		role  session.Role
		check func(screen.Screen) bool
	}{
		{session.RoleEmployee, func(s screen.Screen) bool { _, ok := s.(*catalog.CatalogScreen); return ok }},
		{session.RoleManager, func(s screen.Screen) bool { _, ok := s.(*manager.ManagerScreen); return ok }},
	}
	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			h := New(&screen.Env{}, &session.Session{Role: tt.role}, nil)
			_, cmd := h.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
			if cmd == nil {
				t.Fatal("expected a command on Enter")
			}
			push, ok := cmd().(router.PushScreenMsg)
			if !ok {
				t.Fatalf("expected PushScreenMsg, got %T", cmd())
			}
			if !tt.check(push.Screen) {
				t.Errorf("pushed unexpected screen %T", push.Screen)
			}
		})
	}
}

func TestHome_View(t *testing.T) {
	h := New(&screen.Env{}, &session.Session{Name: "alice", Email: "alice@example.com", Role: session.RoleEmployee}, nil)
	if view := h.View(100, 30); view == "" {
		t.Error("expected non-empty view")
	}
}

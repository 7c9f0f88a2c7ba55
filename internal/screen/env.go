package screen

import (
	"go.uber.org/zap"

	"github.com/skilltrack/skilltrack/internal/course"
	"github.com/skilltrack/skilltrack/internal/dashboard"
	"github.com/skilltrack/skilltrack/internal/session"
	"github.com/skilltrack/skilltrack/internal/store"
)

// Env carries the services shared by all screens.
type Env struct {
	Store     *store.Store
	Sessions  *session.Manager
	Dashboard *dashboard.Service
	// Verifier grades answers; screens wrap it with per-user auditing.
	Verifier course.AnswerVerifier
	Logger   *zap.Logger
	// OnLogin is called after a successful login and on logout with nil.
	OnLogin func(*session.Session) error
}

// SessionChangedMsg tells the app who is logged in. A nil Session means
// logged out.
type SessionChangedMsg struct {
	Session *session.Session
}

// Log returns the env logger, or a no-op logger when none is set.
func (e *Env) Log() *zap.Logger {
	if e == nil || e.Logger == nil {
		return zap.NewNop()
	}
	return e.Logger
}

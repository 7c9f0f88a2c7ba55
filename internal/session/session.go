// Package session implements explicit login sessions. A Session is created
// at login, passed to every component that acts on behalf of the user and
// destroyed at logout.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/skilltrack/skilltrack/internal/store"
)

// Role determines which screens and commands a user can reach.
type Role string

const (
	RoleEmployee Role = "employee"
	RoleManager  Role = "manager"
)

var (
	ErrNoSession         = errors.New("no active session, run `skilltrack login <email>`")
	ErrInvalidEmail      = errors.New("invalid email address")
	ErrAlreadyRegistered = errors.New("email already registered")
)

// Session is the logged-in user.
type Session struct {
	ID        string
	UserID    string
	Email     string
	Name      string
	Role      Role
	CreatedAt time.Time
}

// IsManager reports whether the session belongs to a manager.
func (s *Session) IsManager() bool { return s.Role == RoleManager }

// RoleForEmail applies the demo rule: addresses containing "manager" are
// managers.
func RoleForEmail(email string) Role {
	if strings.Contains(strings.ToLower(email), "manager") {
		return RoleManager
	}
	return RoleEmployee
}

// NameForEmail returns the local part of the address.
func NameForEmail(email string) string {
	name, _, _ := strings.Cut(email, "@")
	return name
}

// Manager creates, resumes and ends sessions.
type Manager struct {
	users    store.UserRepo
	sessions store.SessionRepo
	events   store.EventRepo
	logger   *zap.Logger
	validate *validator.Validate
	now      func() time.Time
}

func NewManager(users store.UserRepo, sessions store.SessionRepo, events store.EventRepo, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		users:    users,
		sessions: sessions,
		events:   events,
		logger:   logger,
		validate: validator.New(),
		now:      time.Now,
	}
}

func (m *Manager) normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := m.validate.Var(email, "required,email"); err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidEmail, email)
	}
	return email, nil
}

// Register creates a user explicitly. An empty name defaults to the local
// part of the email and an empty role to the email rule.
func (m *Manager) Register(ctx context.Context, email, name string, role Role) (*store.User, error) {
	email, err := m.normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if name = strings.TrimSpace(name); name == "" {
		name = NameForEmail(email)
	}
	if role == "" {
		role = RoleForEmail(email)
	}
	if role != RoleEmployee && role != RoleManager {
		return nil, fmt.Errorf("unknown role %q", role)
	}

	u := &store.User{ID: uuid.NewString(), Email: email, Name: name, Role: string(role), CreatedAt: m.now()}
	if err := m.users.Create(ctx, u); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, fmt.Errorf("%w: %s", ErrAlreadyRegistered, email)
		}
		return nil, err
	}
	m.logger.Info("user registered", zap.String("user_id", u.ID), zap.String("role", u.Role))
	return u, nil
}

// Login starts a session for email, creating the user on first login.
// There is no password check.
func (m *Manager) Login(ctx context.Context, email string) (*Session, error) {
	email, err := m.normalizeEmail(email)
	if err != nil {
		return nil, err
	}

	u, err := m.users.ByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		u, err = m.Register(ctx, email, "", "")
	}
	if err != nil {
		return nil, fmt.Errorf("login %s: %w", email, err)
	}

	row := store.SessionRow{ID: uuid.NewString(), UserID: u.ID, CreatedAt: m.now()}
	if err := m.sessions.Create(ctx, row); err != nil {
		return nil, fmt.Errorf("login %s: %w", email, err)
	}
	m.audit(ctx, store.EventLogin, u.ID, row.ID)

	return newSession(row, u), nil
}

// Resume returns the session with the given id, or ErrNoSession.
func (m *Manager) Resume(ctx context.Context, id string) (*Session, error) {
	if id == "" {
		return nil, ErrNoSession
	}
	row, err := m.sessions.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("resume session: %w", err)
	}
	u, err := m.users.ByID(ctx, row.UserID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("resume session: %w", err)
	}
	return newSession(*row, u), nil
}

// Logout destroys the session.
func (m *Manager) Logout(ctx context.Context, s *Session) error {
	if s == nil {
		return ErrNoSession
	}
	if err := m.sessions.Delete(ctx, s.ID); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	m.audit(ctx, store.EventLogout, s.UserID, s.ID)
	return nil
}

func (m *Manager) audit(ctx context.Context, kind, userID, sessionID string) {
	if m.events == nil {
		return
	}
	err := m.events.Append(ctx, store.Event{Kind: kind, UserID: userID}, map[string]string{"session_id": sessionID})
	if err != nil {
		m.logger.Warn("recording session event", zap.String("kind", kind), zap.Error(err))
	}
}

func newSession(row store.SessionRow, u *store.User) *Session {
	return &Session{
		ID:        row.ID,
		UserID:    u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      Role(u.Role),
		CreatedAt: row.CreatedAt,
	}
}

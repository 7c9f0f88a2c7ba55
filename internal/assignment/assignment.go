// Package assignment hands courses to employees.
package assignment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/skilltrack/skilltrack/internal/course"
	"github.com/skilltrack/skilltrack/internal/session"
	"github.com/skilltrack/skilltrack/internal/store"
)

var (
	ErrNotManager  = errors.New("only managers can assign courses")
	ErrNotOwner    = errors.New("course belongs to another manager")
	ErrNotEmployee = errors.New("courses can only be assigned to employees")
	ErrBadDeadline = errors.New("deadline must be a date in YYYY-MM-DD form")
)

// Registrar creates accounts for employees that have never logged in.
type Registrar interface {
	Register(ctx context.Context, email, name string, role session.Role) (*store.User, error)
}

// Result summarises an Assign call.
type Result struct {
	Assigned   []store.User
	Registered []string
}

// Service manages assignments on behalf of a logged-in manager.
type Service struct {
	courses     store.CourseRepo
	users       store.UserRepo
	assignments store.AssignmentRepo
	registrar   Registrar
	logger      *zap.Logger
	validate    *validator.Validate
}

// New returns a Service. A nil registrar makes unknown emails an error.
func New(courses store.CourseRepo, users store.UserRepo, assignments store.AssignmentRepo, registrar Registrar, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		courses:     courses,
		users:       users,
		assignments: assignments,
		registrar:   registrar,
		logger:      logger,
		validate:    validator.New(),
	}
}

// Assign gives courseID to every employee in emails. An empty deadline
// falls back to the course deadline. Re-assigning refreshes the deadline
// and keeps progress.
func (s *Service) Assign(ctx context.Context, manager *session.Session, courseID string, emails []string, deadline string) (*Result, error) {
	c, err := s.ownedCourse(ctx, manager, courseID)
	if err != nil {
		return nil, err
	}
	if deadline == "" {
		deadline = c.Deadline
	}
	if err := s.validate.Var(deadline, "omitempty,datetime=2006-01-02"); err != nil {
		return nil, fmt.Errorf("%w: %q", ErrBadDeadline, deadline)
	}

	res := &Result{}
	for _, email := range emails {
		u, created, err := s.employee(ctx, email)
		if err != nil {
			return res, err
		}
		if created {
			res.Registered = append(res.Registered, u.Email)
		}
		if err := s.assignments.Upsert(ctx, store.Assignment{CourseID: c.ID, UserID: u.ID, Deadline: deadline}); err != nil {
			return res, err
		}
		res.Assigned = append(res.Assigned, *u)
	}

	s.logger.Info("course assigned",
		zap.String("course_id", c.ID),
		zap.String("manager_id", manager.UserID),
		zap.Int("employees", len(res.Assigned)),
		zap.Int("registered", len(res.Registered)))
	return res, nil
}

// Unassign removes the assignment and reports whether one existed.
// Progress is kept so a later re-assignment resumes where it stopped.
func (s *Service) Unassign(ctx context.Context, manager *session.Session, courseID, email string) (bool, error) {
	if _, err := s.ownedCourse(ctx, manager, courseID); err != nil {
		return false, err
	}
	u, err := s.users.ByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	ok, err := s.assignments.Delete(ctx, courseID, u.ID)
	if err != nil {
		return false, err
	}
	if ok {
		s.logger.Info("course unassigned", zap.String("course_id", courseID), zap.String("user_id", u.ID))
	}
	return ok, nil
}

// ForEmployee lists the assignments of userID.
func (s *Service) ForEmployee(ctx context.Context, userID string) ([]store.Assignment, error) {
	return s.assignments.ForUser(ctx, userID)
}

// IsAssigned reports whether userID may open courseID.
func (s *Service) IsAssigned(ctx context.Context, userID, courseID string) (bool, error) {
	list, err := s.assignments.ForUser(ctx, userID)
	if err != nil {
		return false, err
	}
	for _, a := range list {
		if a.CourseID == courseID {
			return true, nil
		}
	}
	return false, nil
}

func (s *Service) ownedCourse(ctx context.Context, manager *session.Session, courseID string) (*course.Course, error) {
	if manager == nil || !manager.IsManager() {
		return nil, ErrNotManager
	}
	c, err := s.courses.Course(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if c.OwnerID != "" && c.OwnerID != manager.UserID {
		return nil, fmt.Errorf("%w: %s", ErrNotOwner, courseID)
	}
	return c, nil
}

func (s *Service) employee(ctx context.Context, email string) (*store.User, bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := s.users.ByEmail(ctx, email)
	switch {
	case errors.Is(err, store.ErrNotFound):
		if s.registrar == nil {
			return nil, false, fmt.Errorf("no user with email %s", email)
		}
		u, err = s.registrar.Register(ctx, email, "", session.RoleEmployee)
		if err != nil {
			return nil, false, err
		}
		return u, true, nil
	case err != nil:
		return nil, false, err
	case u.Role != string(session.RoleEmployee):
		return nil, false, fmt.Errorf("%w: %s", ErrNotEmployee, email)
	}
	return u, false, nil
}

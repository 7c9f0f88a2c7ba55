package authoring

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/skilltrack/skilltrack/internal/course"
	"github.com/skilltrack/skilltrack/internal/session"
	"github.com/skilltrack/skilltrack/internal/store"
)

var (
	ErrNotManager = errors.New("only managers can edit courses")
	ErrNotOwner   = errors.New("course belongs to another manager")
)

// Service stores drafts as courses owned by the editing manager.
type Service struct {
	courses store.CourseRepo
	logger  *zap.Logger
}

func NewService(courses store.CourseRepo, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{courses: courses, logger: logger}
}

// Save validates d and creates or replaces the course. A draft without an
// id gets a new one.
func (s *Service) Save(ctx context.Context, owner *session.Session, d *Draft) (*course.Course, error) {
	if owner == nil || !owner.IsManager() {
		return nil, ErrNotManager
	}
	d.fillIDs()
	if err := d.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkOwner(ctx, owner, d.ID, true); err != nil {
		return nil, err
	}

	c := d.Course(owner.UserID)
	if err := s.courses.Save(ctx, c); err != nil {
		return nil, err
	}
	s.logger.Info("course saved",
		zap.String("course_id", c.ID),
		zap.String("owner_id", owner.UserID),
		zap.Int("items", len(c.Items)))
	return c, nil
}

// Load returns the course as an editable draft.
func (s *Service) Load(ctx context.Context, id string) (*Draft, error) {
	c, err := s.courses.Course(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromCourse(c), nil
}

// Delete removes a course owned by owner.
func (s *Service) Delete(ctx context.Context, owner *session.Session, id string) error {
	if owner == nil || !owner.IsManager() {
		return ErrNotManager
	}
	if err := s.checkOwner(ctx, owner, id, false); err != nil {
		return err
	}
	if err := s.courses.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("course deleted", zap.String("course_id", id))
	return nil
}

// ImportDrafts saves every draft for owner and returns the stored courses.
func (s *Service) ImportDrafts(ctx context.Context, owner *session.Session, drafts []*Draft) ([]*course.Course, error) {
	out := make([]*course.Course, 0, len(drafts))
	for _, d := range drafts {
		c, err := s.Save(ctx, owner, d)
		if err != nil {
			return out, fmt.Errorf("import %q: %w", d.Name, err)
		}
		out = append(out, c)
	}
	return out, nil
}

// checkOwner fails when course id exists and belongs to someone else. A
// missing course passes only when allowMissing is set.
func (s *Service) checkOwner(ctx context.Context, owner *session.Session, id string, allowMissing bool) error {
	existing, err := s.courses.Course(ctx, id)
	switch {
	case errors.Is(err, course.ErrNotFound):
		if allowMissing {
			return nil
		}
		return err
	case err != nil:
		return err
	case existing.OwnerID != "" && existing.OwnerID != owner.UserID:
		return fmt.Errorf("%w: %s", ErrNotOwner, id)
	}
	return nil
}

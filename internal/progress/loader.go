package progress

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/skilltrack/skilltrack/internal/course"
)

// Deps are the collaborators needed to open a course for viewing.
type Deps struct {
	Content  course.ContentProvider
	Progress course.ProgressStore
	Verifier course.AnswerVerifier
	Logger   *zap.Logger
}

// Load fetches the course content and the employee's stored progress in
// parallel and builds an engine from them. Any failure is reported as
// ErrContentLoad.
func Load(ctx context.Context, deps Deps, courseID string) (*Engine, error) {
	var (
		c     *course.Course
		state course.State
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		c, err = deps.Content.Course(gctx, courseID)
		if err != nil {
			return fmt.Errorf("content: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		state, err = deps.Progress.LoadProgress(gctx, courseID)
		if err != nil {
			return fmt.Errorf("progress: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%w: course %s: %w", ErrContentLoad, courseID, err)
	}

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Debug("course loaded",
		zap.String("course_id", courseID),
		zap.Int("items", len(c.Items)),
		zap.Int("index", state.CurrentIndex))

	return New(c, state, Options{
		Verifier: deps.Verifier,
		Store:    deps.Progress,
		Logger:   logger,
	}), nil
}

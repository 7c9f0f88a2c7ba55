package grading

import (
	"context"

	"go.uber.org/zap"

	"github.com/skilltrack/skilltrack/internal/course"
	"github.com/skilltrack/skilltrack/internal/store"
)

type auditedVerifier struct {
	inner  course.AnswerVerifier
	events store.EventRepo
	userID string
	logger *zap.Logger
}

// WithAudit records every verification as an answer_attempt event for
// userID. Recording failures are logged and do not affect the verdict.
func WithAudit(v course.AnswerVerifier, events store.EventRepo, userID string, logger *zap.Logger) course.AnswerVerifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &auditedVerifier{inner: v, events: events, userID: userID, logger: logger}
}

func (a *auditedVerifier) Verify(ctx context.Context, courseID, taskID, submitted string) (bool, error) {
	ok, err := a.inner.Verify(ctx, courseID, taskID, submitted)

	attempt := store.AnswerAttempt{TaskID: taskID, Submitted: submitted, Correct: ok}
	if err != nil {
		attempt.Error = err.Error()
	}
	if rerr := a.events.AppendAnswerAttempt(ctx, a.userID, courseID, attempt); rerr != nil {
		a.logger.Warn("recording answer attempt", zap.String("task_id", taskID), zap.Error(rerr))
	}
	return ok, err
}

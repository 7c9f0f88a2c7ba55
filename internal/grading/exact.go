// Package grading provides the answer verifiers used by the progress
// engine.
package grading

import (
	"context"
	"fmt"

	"github.com/skilltrack/skilltrack/internal/course"
)

// ExactVerifier compares submissions with the stored answer using
// course.MatchAnswer.
type ExactVerifier struct {
	content course.ContentProvider
}

func NewExactVerifier(content course.ContentProvider) *ExactVerifier {
	return &ExactVerifier{content: content}
}

// Verify returns false for ids that do not name a task of the course.
func (v *ExactVerifier) Verify(ctx context.Context, courseID, taskID, submitted string) (bool, error) {
	task, ok, err := lookupTask(ctx, v.content, courseID, taskID)
	if err != nil || !ok {
		return false, err
	}
	return course.MatchAnswer(task.Answer, submitted), nil
}

func lookupTask(ctx context.Context, content course.ContentProvider, courseID, taskID string) (course.Item, bool, error) {
	c, err := content.Course(ctx, courseID)
	if err != nil {
		return course.Item{}, false, fmt.Errorf("load course %s: %w", courseID, err)
	}
	task, ok := c.Task(taskID)
	return task, ok, nil
}

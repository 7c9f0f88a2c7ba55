package course

import "context"

// State is the persisted position of one employee within one course.
// CurrentIndex equal to the number of items means the course is completed.
type State struct {
	CurrentIndex     int
	CompletedTaskIDs []string
}

// Update is a single persistence notification. CompletedTaskID is set when
// the update records a newly completed task.
type Update struct {
	CourseID        string
	Index           int
	CompletedTaskID string
}

// ContentProvider returns course content by id.
type ContentProvider interface {
	Course(ctx context.Context, courseID string) (*Course, error)
}

// ProgressStore loads and saves the progress of the current employee.
type ProgressStore interface {
	LoadProgress(ctx context.Context, courseID string) (State, error)
	SaveProgress(ctx context.Context, u Update) error
}

// AnswerVerifier decides whether a submitted answer is correct. A non-nil
// error is a transient failure and says nothing about correctness.
type AnswerVerifier interface {
	Verify(ctx context.Context, courseID, taskID, submitted string) (bool, error)
}

package progress

import "errors"

var (
	// ErrContentLoad means the course content or the stored progress could
	// not be fetched. The viewer shows a blocking error.
	ErrContentLoad = errors.New("failed to load course content or progress")

	// ErrAnswerCheck means the answer verifier failed transiently. The
	// current task stays gated.
	ErrAnswerCheck = errors.New("error checking answer")

	// ErrGatingViolation is returned by Advance when a forward move would
	// skip an unanswered task.
	ErrGatingViolation = errors.New("current task must be answered correctly before proceeding")

	// ErrOutOfRange is returned by Advance for a target outside [0, len(items)].
	ErrOutOfRange = errors.New("target index out of range")
)

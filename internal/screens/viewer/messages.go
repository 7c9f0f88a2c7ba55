package viewer

import "github.com/skilltrack/skilltrack/internal/progress"

// engineLoadedMsg is sent when the course and stored progress are loaded.
type engineLoadedMsg struct {
	Engine *progress.Engine
	Err    error
}

// answerCheckedMsg carries a verifier verdict back to the UI goroutine.
type answerCheckedMsg struct {
	Check   progress.Check
	Correct bool
	Err     error
}

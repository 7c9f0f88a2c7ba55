package progress

import "fmt"

// Texts shown to the employee by every front end.
const (
	TextCorrect    = "Correct!"
	TextIncorrect  = "Incorrect. Please try again."
	TextCheckError = "Error checking answer. Please try again later."
	TextGated      = "Please answer the current task correctly before proceeding."
	TextLoadError  = "Failed to load course content or progress. Please try again."
	TextCompleted  = "Congratulations, you have completed the course!"
)

// Position renders "Item i of n" for the current view, or "Completed".
func (v View) Position() string {
	if v.Completed {
		return "Completed"
	}
	return fmt.Sprintf("Item %d of %d", v.Index+1, v.Total)
}

// Package course defines the course content model shared by the progress
// engine, the store and the authoring tools.
package course

import "errors"

// ErrNotFound is returned by a ContentProvider when the course does not exist.
var ErrNotFound = errors.New("course not found")

// Kind distinguishes lesson items from task items.
type Kind string

const (
	KindLesson Kind = "lesson"
	KindTask   Kind = "task"
)

// Valid reports whether k is a known item kind.
func (k Kind) Valid() bool {
	return k == KindLesson || k == KindTask
}

// Item is one entry in a course's ordered content. Lessons carry Title and
// Body; tasks carry Question and Answer.
type Item struct {
	ID       string
	Kind     Kind
	Title    string
	Body     string
	Question string
	Answer   string
}

// IsTask reports whether the item gates forward navigation.
func (it Item) IsTask() bool { return it.Kind == KindTask }

// IsLesson reports whether the item is read-only content.
func (it Item) IsLesson() bool { return it.Kind == KindLesson }

// Course is an ordered sequence of items plus its catalog metadata.
type Course struct {
	ID          string
	Name        string
	Description string
	Deadline    string // YYYY-MM-DD, empty when none
	OwnerID     string
	Items       []Item
}

// Task returns the task with the given id.
func (c *Course) Task(id string) (Item, bool) {
	for _, it := range c.Items {
		if it.IsTask() && it.ID == id {
			return it, true
		}
	}
	return Item{}, false
}

// TaskIDs returns the set of task ids in the course.
func (c *Course) TaskIDs() map[string]bool {
	ids := make(map[string]bool)
	for _, it := range c.Items {
		if it.IsTask() {
			ids[it.ID] = true
		}
	}
	return ids
}

// Len returns the number of items.
func (c *Course) Len() int { return len(c.Items) }

// Package progress implements the course progress engine: the current
// position of one employee in one course, the set of tasks they answered
// correctly, and the gating rule that keeps them from skipping tasks.
package progress

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/skilltrack/skilltrack/internal/course"
)

// DefaultPersistTimeout bounds a single background progress write.
const DefaultPersistTimeout = 5 * time.Second

// DefaultCheckTimeout bounds one answer verification by a front end.
const DefaultCheckTimeout = 30 * time.Second

// Outcome is the result of the last answer check on the current item.
type Outcome int

const (
	OutcomeUnknown Outcome = iota
	OutcomeCorrect
	OutcomeIncorrect
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCorrect:
		return "correct"
	case OutcomeIncorrect:
		return "incorrect"
	default:
		return "unknown"
	}
}

// View is what the presentation layer renders for the current position.
// When Completed is true, Item is the zero value.
type View struct {
	Index     int
	Total     int
	Item      course.Item
	Completed bool
	Answered  bool // the item is a task already in the completed set
}

// Options configures collaborators of an Engine.
type Options struct {
	Verifier       course.AnswerVerifier
	Store          course.ProgressStore // nil disables persistence
	Logger         *zap.Logger
	PersistTimeout time.Duration
}

// Engine tracks one employee's progress through one course. It is driven
// by a single goroutine; only the background persistence runs elsewhere.
type Engine struct {
	courseID   string
	courseName string
	items      []course.Item
	current    int
	visit      int // bumped on every move; stamps checks
	completed  map[string]bool
	outcome    Outcome

	verifier       course.AnswerVerifier
	store          course.ProgressStore
	logger         *zap.Logger
	persistTimeout time.Duration

	mu       sync.Mutex
	queue    []course.Update
	draining bool
	wg       sync.WaitGroup
}

// New builds an engine for c starting from the given stored state. The
// index is clamped into [0, len(items)] and completed ids that do not name
// a task of the course are dropped.
func New(c *course.Course, state course.State, opts Options) *Engine {
	e := &Engine{
		courseID:       c.ID,
		courseName:     c.Name,
		items:          append([]course.Item(nil), c.Items...),
		completed:      make(map[string]bool),
		verifier:       opts.Verifier,
		store:          opts.Store,
		logger:         opts.Logger,
		persistTimeout: opts.PersistTimeout,
	}
	if e.logger == nil {
		e.logger = zap.NewNop()
	}
	if e.persistTimeout <= 0 {
		e.persistTimeout = DefaultPersistTimeout
	}

	e.current = min(max(state.CurrentIndex, 0), len(e.items))

	tasks := c.TaskIDs()
	for _, id := range state.CompletedTaskIDs {
		if tasks[id] {
			e.completed[id] = true
		} else {
			e.logger.Debug("dropping unknown completed task",
				zap.String("course_id", c.ID), zap.String("task_id", id))
		}
	}
	return e
}

// CourseID returns the id of the course being viewed.
func (e *Engine) CourseID() string { return e.courseID }

// CourseName returns the display name of the course.
func (e *Engine) CourseName() string { return e.courseName }

// Len returns the number of items in the course.
func (e *Engine) Len() int { return len(e.items) }

// Index returns the current position.
func (e *Engine) Index() int { return e.current }

// Outcome returns the last answer outcome for the current item.
func (e *Engine) Outcome() Outcome { return e.outcome }

// IsCompleted reports whether the engine is past the last item.
func (e *Engine) IsCompleted() bool { return e.current >= len(e.items) }

// CurrentView returns the item at the current position, or a completed
// marker once the employee is past the last item.
func (e *Engine) CurrentView() View {
	v := View{Index: e.current, Total: len(e.items)}
	if e.IsCompleted() {
		v.Completed = true
		return v
	}
	v.Item = e.items[e.current]
	v.Answered = v.Item.IsTask() && e.completed[v.Item.ID]
	return v
}

// State returns a snapshot of the current position and completed tasks.
func (e *Engine) State() course.State {
	ids := make([]string, 0, len(e.completed))
	for id := range e.completed {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return course.State{CurrentIndex: e.current, CompletedTaskIDs: ids}
}

// ProgressPercent returns the floored share of items passed, 0 for an
// empty course and 100 once completed.
func (e *Engine) ProgressPercent() int {
	return Percent(e.current, len(e.items))
}

// Percent applies the progress formula to a raw index and item count.
func Percent(index, total int) int {
	if total <= 0 {
		return 0
	}
	if index >= total {
		return 100
	}
	if index <= 0 {
		return 0
	}
	return index * 100 / total
}

// CanAdvance reports whether a single forward step is allowed.
func (e *Engine) CanAdvance() bool {
	if e.IsCompleted() {
		return false
	}
	return e.passable(e.current)
}

// CanRetreat reports whether a backward step is possible.
func (e *Engine) CanRetreat() bool { return e.current > 0 }

func (e *Engine) passable(i int) bool {
	it := e.items[i]
	if !it.IsTask() || e.completed[it.ID] {
		return true
	}
	return i == e.current && e.outcome == OutcomeCorrect
}

// Advance moves to target. Forward moves fail with ErrGatingViolation when
// any task in [current, target) is still unanswered; backward moves are
// never gated.
func (e *Engine) Advance(target int) error {
	if target < 0 || target > len(e.items) {
		return fmt.Errorf("%w: %d not in [0, %d]", ErrOutOfRange, target, len(e.items))
	}
	for i := e.current; i < target; i++ {
		if !e.passable(i) {
			return fmt.Errorf("%w: task %q at item %d", ErrGatingViolation, e.items[i].ID, i+1)
		}
	}

	e.current = target
	e.visit++
	e.outcome = OutcomeUnknown
	e.persist(course.Update{CourseID: e.courseID, Index: target})
	return nil
}

// Next advances by one item.
func (e *Engine) Next() error { return e.Advance(e.current + 1) }

// Previous steps back by one item.
func (e *Engine) Previous() error { return e.Advance(e.current - 1) }

// Check is an answer submission captured from the engine so the verifier
// round-trip can run on another goroutine. Apply it with ApplyCheck.
type Check struct {
	CourseID  string
	TaskID    string
	Index     int
	Visit     int
	Submitted string
}

// BeginCheck captures a submission for the current item. It returns false
// when the current item is not a task.
func (e *Engine) BeginCheck(submitted string) (Check, bool) {
	if e.IsCompleted() || !e.items[e.current].IsTask() {
		return Check{}, false
	}
	return Check{
		CourseID:  e.courseID,
		TaskID:    e.items[e.current].ID,
		Index:     e.current,
		Visit:     e.visit,
		Submitted: submitted,
	}, true
}

// Verify asks the verifier about c. It touches no engine state and is safe
// to call off the owning goroutine.
func (e *Engine) Verify(ctx context.Context, c Check) (bool, error) {
	if e.verifier == nil {
		return false, fmt.Errorf("%w: no answer verifier configured", ErrAnswerCheck)
	}
	ok, err := e.verifier.Verify(ctx, c.CourseID, c.TaskID, c.Submitted)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrAnswerCheck, err)
	}
	return ok, nil
}

// IsCurrent reports whether c was taken on the engine's current visit to
// its item. Leaving the item and coming back starts a new visit.
func (e *Engine) IsCurrent(c Check) bool {
	return c.Visit == e.visit && c.Index == e.current && !e.IsCompleted() && e.items[e.current].ID == c.TaskID
}

// ApplyCheck records the verdict for c. A verdict from an earlier visit
// (see IsCurrent) is discarded. Verifier errors leave the
// state untouched and are returned wrapped in ErrAnswerCheck.
func (e *Engine) ApplyCheck(c Check, correct bool, err error) (Outcome, error) {
	if err != nil {
		if !errors.Is(err, ErrAnswerCheck) {
			err = fmt.Errorf("%w: %w", ErrAnswerCheck, err)
		}
		return e.outcome, err
	}
	if !e.IsCurrent(c) {
		e.logger.Debug("discarding stale answer check",
			zap.String("course_id", e.courseID), zap.String("task_id", c.TaskID))
		return e.outcome, nil
	}

	if !correct {
		e.outcome = OutcomeIncorrect
		return e.outcome, nil
	}
	e.outcome = OutcomeCorrect
	if !e.completed[c.TaskID] {
		e.completed[c.TaskID] = true
		e.persist(course.Update{CourseID: e.courseID, Index: e.current, CompletedTaskID: c.TaskID})
	}
	return e.outcome, nil
}

// CheckAnswer verifies submitted against the current task and records the
// result. On anything but a task it is a no-op returning OutcomeUnknown.
func (e *Engine) CheckAnswer(ctx context.Context, submitted string) (Outcome, error) {
	c, ok := e.BeginCheck(submitted)
	if !ok {
		return OutcomeUnknown, nil
	}
	correct, err := e.Verify(ctx, c)
	return e.ApplyCheck(c, correct, err)
}

// Wait blocks until queued progress writes have been attempted.
func (e *Engine) Wait() { e.wg.Wait() }

// persist queues u for a background write. Writes are applied in order by
// a single drain goroutine; failures are logged and dropped.
func (e *Engine) persist(u course.Update) {
	if e.store == nil {
		return
	}
	e.mu.Lock()
	e.queue = append(e.queue, u)
	if e.draining {
		e.mu.Unlock()
		return
	}
	e.draining = true
	e.wg.Add(1)
	e.mu.Unlock()

	go e.drain()
}

func (e *Engine) drain() {
	defer e.wg.Done()
	for {
		e.mu.Lock()
		if len(e.queue) == 0 {
			e.draining = false
			e.mu.Unlock()
			return
		}
		u := e.queue[0]
		e.queue = e.queue[1:]
		e.mu.Unlock()

		ctx, cancel := context.WithTimeout(context.Background(), e.persistTimeout)
		err := e.store.SaveProgress(ctx, u)
		cancel()
		if err != nil {
			e.logger.Warn("progress update lost",
				zap.String("course_id", u.CourseID),
				zap.Int("index", u.Index),
				zap.String("completed_task_id", u.CompletedTaskID),
				zap.Error(err))
		}
	}
}

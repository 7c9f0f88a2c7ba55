// Package viewer walks an employee through a course one item at a time.
// Forward navigation is gated by the progress engine.
package viewer

import (
	"context"
	"errors"

	tea "charm.land/bubbletea/v2"

	"github.com/skilltrack/skilltrack/internal/grading"
	"github.com/skilltrack/skilltrack/internal/progress"
	"github.com/skilltrack/skilltrack/internal/router"
	"github.com/skilltrack/skilltrack/internal/screen"
	"github.com/skilltrack/skilltrack/internal/session"
	"github.com/skilltrack/skilltrack/internal/store"
	"github.com/skilltrack/skilltrack/internal/ui/components"
	"github.com/skilltrack/skilltrack/internal/ui/layout"
)

const (
	msgCorrect    = progress.TextCorrect
	msgIncorrect  = progress.TextIncorrect
	msgCheckError = progress.TextCheckError
	msgGated      = progress.TextGated
	msgLoadError  = progress.TextLoadError
	msgCompleted  = progress.TextCompleted
)

type loadFunc func(ctx context.Context) (*progress.Engine, error)

// ViewerScreen renders one course for one employee.
type ViewerScreen struct {
	title    string
	load     loadFunc
	engine   *progress.Engine
	loadErr  error
	input    components.TextInput
	checking bool
	feedback string
	hint     string
	leaving  bool
}

var _ screen.Screen = (*ViewerScreen)(nil)
var _ screen.KeyHintProvider = (*ViewerScreen)(nil)
var _ screen.BackInterceptor = (*ViewerScreen)(nil)

// New creates a viewer for courseID. Answers are graded by env.Verifier and
// every attempt is recorded in the event log for s.
func New(env *screen.Env, s *session.Session, courseID, title string) *ViewerScreen {
	deps := progress.Deps{
		Content:  env.Store.Courses(),
		Progress: store.UserProgress{Repo: env.Store.Progress(), UserID: s.UserID},
		Verifier: grading.WithAudit(env.Verifier, env.Store.Events(), s.UserID, env.Log()),
		Logger:   env.Log(),
	}
	return newViewer(title, func(ctx context.Context) (*progress.Engine, error) {
		return progress.Load(ctx, deps, courseID)
	})
}

func newViewer(title string, load loadFunc) *ViewerScreen {
	return &ViewerScreen{
		title: title,
		load:  load,
		input: components.NewTextInput("Type your answer...", 200),
	}
}

func (v *ViewerScreen) Init() tea.Cmd {
	return tea.Batch(v.loadCmd(), v.input.Init())
}

func (v *ViewerScreen) loadCmd() tea.Cmd {
	load := v.load
	return func() tea.Msg {
		e, err := load(context.Background())
		return engineLoadedMsg{Engine: e, Err: err}
	}
}

func (v *ViewerScreen) Title() string {
	if v.engine != nil {
		return v.engine.CourseName()
	}
	return v.title
}

func (v *ViewerScreen) InterceptsBack() bool { return true }

func (v *ViewerScreen) KeyHints() []layout.KeyHint {
	switch {
	case v.loadErr != nil:
		return []layout.KeyHint{
			{Key: "R", Description: "Retry"},
			{Key: "Esc", Description: "Back"},
		}
	case v.engine == nil:
		return []layout.KeyHint{{Key: "Esc", Description: "Back"}}
	case v.onTask():
		return []layout.KeyHint{
			{Key: "Enter", Description: "Check answer"},
			{Key: "←", Description: "Previous"},
			{Key: "→", Description: "Next"},
			{Key: "Esc", Description: "Back"},
		}
	}
	return []layout.KeyHint{
		{Key: "← / p", Description: "Previous"},
		{Key: "→ / n", Description: "Next"},
		{Key: "Esc", Description: "Back"},
	}
}

// onTask reports whether the current item takes an answer.
func (v *ViewerScreen) onTask() bool {
	if v.engine == nil {
		return false
	}
	view := v.engine.CurrentView()
	return !view.Completed && view.Item.IsTask()
}

func (v *ViewerScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case engineLoadedMsg:
		if msg.Err != nil {
			v.loadErr = msg.Err
			return v, nil
		}
		v.loadErr = nil
		v.engine = msg.Engine
		return v, nil

	case answerCheckedMsg:
		return v.handleChecked(msg)

	case tea.KeyPressMsg:
		return v.handleKey(msg)
	}

	if v.onTask() {
		var cmd tea.Cmd
		v.input, cmd = v.input.Update(msg)
		return v, cmd
	}
	return v, nil
}

func (v *ViewerScreen) handleKey(msg tea.KeyPressMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()
	if key == "esc" {
		return v, v.leave()
	}

	if v.loadErr != nil {
		if key == "r" {
			v.loadErr = nil
			return v, v.loadCmd()
		}
		return v, nil
	}
	if v.engine == nil {
		return v, nil
	}

	onTask := v.onTask()
	switch {
	case key == "right" || key == "pgdown" || (!onTask && key == "n"):
		v.next()
		return v, nil
	case key == "left" || key == "pgup" || (!onTask && key == "p"):
		v.previous()
		return v, nil
	case key == "enter" && onTask:
		return v, v.submit()
	case key == "enter" && v.engine.IsCompleted():
		return v, v.leave()
	}

	if onTask {
		var cmd tea.Cmd
		v.input, cmd = v.input.Update(msg)
		return v, cmd
	}
	return v, nil
}

func (v *ViewerScreen) next() {
	if !v.engine.CanAdvance() {
		if !v.engine.IsCompleted() {
			v.hint = msgGated
		}
		return
	}
	if err := v.engine.Next(); err != nil {
		v.hint = msgGated
		return
	}
	v.resetItemState()
}

func (v *ViewerScreen) previous() {
	if !v.engine.CanRetreat() {
		return
	}
	if err := v.engine.Previous(); err == nil {
		v.resetItemState()
	}
}

func (v *ViewerScreen) resetItemState() {
	v.hint = ""
	v.feedback = ""
	v.input.Reset()
}

// submit starts an answer check. The verifier runs in a command so a slow
// grader never blocks rendering. Only one check is outstanding at a time,
// even across navigation.
func (v *ViewerScreen) submit() tea.Cmd {
	if v.checking {
		return nil
	}
	check, ok := v.engine.BeginCheck(v.input.Value())
	if !ok {
		return nil
	}
	v.checking = true
	v.hint = ""
	v.feedback = ""
	e := v.engine
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), progress.DefaultCheckTimeout)
		defer cancel()
		correct, err := e.Verify(ctx, check)
		return answerCheckedMsg{Check: check, Correct: correct, Err: err}
	}
}

func (v *ViewerScreen) handleChecked(msg answerCheckedMsg) (screen.Screen, tea.Cmd) {
	if v.engine == nil {
		return v, nil
	}
	v.checking = false
	stale := !v.engine.IsCurrent(msg.Check)
	outcome, err := v.engine.ApplyCheck(msg.Check, msg.Correct, msg.Err)
	if stale {
		return v, nil
	}
	switch {
	case errors.Is(err, progress.ErrAnswerCheck):
		v.feedback = msgCheckError
	case outcome == progress.OutcomeCorrect:
		v.feedback = msgCorrect
		v.input.Submit(true)
	case outcome == progress.OutcomeIncorrect:
		v.feedback = msgIncorrect
		v.input.Submit(false)
	}
	return v, nil
}

// leave pops the viewer once pending progress writes are done.
func (v *ViewerScreen) leave() tea.Cmd {
	if v.leaving {
		return nil
	}
	v.leaving = true
	e := v.engine
	return func() tea.Msg {
		if e != nil {
			e.Wait()
		}
		return router.PopScreenMsg{}
	}
}

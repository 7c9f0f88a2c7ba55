package viewer

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/skilltrack/skilltrack/internal/course"
	"github.com/skilltrack/skilltrack/internal/progress"
	"github.com/skilltrack/skilltrack/internal/router"
	"github.com/skilltrack/skilltrack/internal/screen"
)

// answerKey grades by exact match against a fixed table.
type answerKey struct {
	answers map[string]string
	err     error
}

func (k answerKey) Verify(_ context.Context, _, taskID, submitted string) (bool, error) {
	if k.err != nil {
		return false, k.err
	}
	return course.MatchAnswer(k.answers[taskID], submitted), nil
}

func reactCourse() *course.Course {
	return &course.Course{
		ID:   "c1",
		Name: "Introduction to React",
		Items: []course.Item{
			{ID: "l1", Kind: course.KindLesson, Title: "What is React?", Body: "React is a JavaScript library for building user interfaces."},
			{ID: "t1", Kind: course.KindTask, Question: "What function renders a React element into the DOM?", Answer: "ReactDOM.render"},
			{ID: "l2", Kind: course.KindLesson, Title: "Components and Props", Body: "Props are inputs to components."},
			{ID: "t2", Kind: course.KindTask, Question: "How do you pass data from a parent component to a child component?", Answer: "props"},
		},
	}
}

func loadedViewer(t *testing.T, state course.State, v course.AnswerVerifier) *ViewerScreen {
	t.Helper()
	e := progress.New(reactCourse(), state, progress.Options{Verifier: v})
	s := newViewer("Introduction to React", func(context.Context) (*progress.Engine, error) { return e, nil })
	s.Update(s.loadCmd()())
	if s.engine == nil {
		t.Fatal("expected engine after load")
	}
	return s
}

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func specialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

func typeText(s *ViewerScreen, text string) {
	for _, r := range text {
		s.Update(keyPress(r))
	}
}

// submit presses Enter and feeds the verifier result back in.
func submit(t *testing.T, s *ViewerScreen) {
	t.Helper()
	_, cmd := s.Update(specialKey(tea.KeyEnter))
	if cmd == nil {
		t.Fatal("expected a check command on Enter")
	}
	s.Update(cmd())
}

func reactKey() answerKey {
	return answerKey{answers: map[string]string{"t1": "ReactDOM.render", "t2": "props"}}
}

func TestViewer_LessonThenGatedTask(t *testing.T) {
	s := loadedViewer(t, course.State{}, reactKey())

	view := s.View(100, 30)
	for _, want := range []string{"Item 1 of 4", "What is React?"} {
		if !strings.Contains(view, want) {
			t.Errorf("lesson view missing %q", want)
		}
	}

	s.Update(specialKey(tea.KeyRight))
	if s.engine.Index() != 1 {
		t.Fatalf("Index = %d after next on lesson, want 1", s.engine.Index())
	}
	if !strings.Contains(s.View(100, 30), "Item 2 of 4") {
		t.Error("expected Item 2 of 4")
	}

	s.Update(specialKey(tea.KeyRight))
	if s.engine.Index() != 1 {
		t.Errorf("advanced past unanswered task to %d", s.engine.Index())
	}
	if !strings.Contains(s.View(100, 30), msgGated) {
		t.Error("expected gating hint")
	}
}

func TestViewer_AnswerTask(t *testing.T) {
	s := loadedViewer(t, course.State{CurrentIndex: 1}, reactKey())

	typeText(s, "document.write")
	submit(t, s)
	if s.feedback != msgIncorrect {
		t.Errorf("feedback = %q, want %q", s.feedback, msgIncorrect)
	}
	if s.engine.CanAdvance() {
		t.Error("incorrect answer must not unlock the next item")
	}

	s.input.Reset()
	typeText(s, "  reactdom.render ")
	submit(t, s)
	if s.feedback != msgCorrect {
		t.Errorf("feedback = %q, want %q", s.feedback, msgCorrect)
	}
	if !strings.Contains(s.View(100, 30), msgCorrect) {
		t.Error("expected Correct! in view")
	}

	s.Update(specialKey(tea.KeyRight))
	if s.engine.Index() != 2 {
		t.Errorf("Index = %d, want 2", s.engine.Index())
	}
	if s.feedback != "" || s.input.Value() != "" {
		t.Error("expected feedback and input cleared after navigating")
	}
}

func TestViewer_LettersOnTaskGoToInput(t *testing.T) {
	s := loadedViewer(t, course.State{CurrentIndex: 1}, reactKey())

	typeText(s, "np")
	if s.engine.Index() != 1 {
		t.Errorf("letter keys navigated on a task: Index = %d", s.engine.Index())
	}
	if s.input.Value() != "np" {
		t.Errorf("input = %q, want np", s.input.Value())
	}
}

func TestViewer_PreviousFromTask(t *testing.T) {
	s := loadedViewer(t, course.State{CurrentIndex: 1}, reactKey())

	s.Update(specialKey(tea.KeyLeft))
	if s.engine.Index() != 0 {
		t.Errorf("Index = %d, want 0", s.engine.Index())
	}
	s.Update(keyPress('p'))
	if s.engine.Index() != 0 {
		t.Errorf("moved before the first item: %d", s.engine.Index())
	}
}

func TestViewer_VerifierError(t *testing.T) {
	s := loadedViewer(t, course.State{CurrentIndex: 1}, answerKey{err: errors.New("grader offline")})

	typeText(s, "ReactDOM.render")
	submit(t, s)
	if s.feedback != msgCheckError {
		t.Errorf("feedback = %q, want %q", s.feedback, msgCheckError)
	}
	if s.engine.Outcome() != progress.OutcomeUnknown {
		t.Errorf("Outcome = %v, want unknown", s.engine.Outcome())
	}
}

func TestViewer_StaleVerdictIgnored(t *testing.T) {
	s := loadedViewer(t, course.State{CurrentIndex: 1}, reactKey())

	typeText(s, "ReactDOM.render")
	_, cmd := s.Update(specialKey(tea.KeyEnter))
	if cmd == nil {
		t.Fatal("expected a check command")
	}
	s.Update(specialKey(tea.KeyLeft))
	s.Update(cmd())

	if s.feedback != "" {
		t.Errorf("stale verdict produced feedback %q", s.feedback)
	}
	s.Update(specialKey(tea.KeyRight))
	s.Update(specialKey(tea.KeyRight))
	if s.engine.Index() != 1 {
		t.Errorf("stale verdict unlocked the task: Index = %d", s.engine.Index())
	}
}

func TestViewer_OneCheckAtATimeAcrossNavigation(t *testing.T) {
	s := loadedViewer(t, course.State{CurrentIndex: 1}, reactKey())

	typeText(s, "ReactDOM.render")
	_, first := s.Update(specialKey(tea.KeyEnter))
	if first == nil {
		t.Fatal("expected a check command")
	}

	s.Update(specialKey(tea.KeyLeft))
	s.Update(specialKey(tea.KeyRight))
	if s.engine.Index() != 1 {
		t.Fatalf("Index = %d, want 1", s.engine.Index())
	}
	typeText(s, "wrong")
	if _, cmd := s.Update(specialKey(tea.KeyEnter)); cmd != nil {
		t.Fatal("second check started while the first was outstanding")
	}

	s.Update(first())
	if s.feedback != "" {
		t.Errorf("verdict from the earlier visit produced feedback %q", s.feedback)
	}
	if s.engine.CanAdvance() {
		t.Error("verdict from the earlier visit unlocked the task")
	}
	if s.input.Value() != "wrong" {
		t.Errorf("input = %q, want wrong", s.input.Value())
	}

	submit(t, s)
	if s.feedback != msgIncorrect {
		t.Errorf("feedback = %q, want %q", s.feedback, msgIncorrect)
	}
	if s.engine.CanAdvance() {
		t.Error("incorrect answer must not unlock the next item")
	}
}

func TestViewer_Completed(t *testing.T) {
	s := loadedViewer(t, course.State{CurrentIndex: 4, CompletedTaskIDs: []string{"t1", "t2"}}, reactKey())

	view := s.View(100, 30)
	if !strings.Contains(view, msgCompleted) {
		t.Error("expected completion message")
	}
	if !strings.Contains(view, "100%") {
		t.Error("expected 100% progress")
	}

	_, cmd := s.Update(specialKey(tea.KeyEnter))
	if cmd == nil {
		t.Fatal("expected Enter on the completed view to leave")
	}
	if _, ok := cmd().(router.PopScreenMsg); !ok {
		t.Error("expected PopScreenMsg")
	}
}

func TestViewer_LoadFailure(t *testing.T) {
	calls := 0
	s := newViewer("Introduction to React", func(context.Context) (*progress.Engine, error) {
		calls++
		return nil, progress.ErrContentLoad
	})
	s.Update(s.loadCmd()())

	if !strings.Contains(s.View(100, 30), msgLoadError) {
		t.Error("expected load error view")
	}
	s.Update(specialKey(tea.KeyRight))

	_, cmd := s.Update(keyPress('r'))
	if cmd == nil {
		t.Fatal("expected retry command")
	}
	s.Update(cmd())
	if calls != 2 {
		t.Errorf("load called %d times, want 2", calls)
	}
}

func TestViewer_EscWaitsAndPops(t *testing.T) {
	s := loadedViewer(t, course.State{}, reactKey())

	var _ screen.BackInterceptor = s
	_, cmd := s.Update(specialKey(tea.KeyEscape))
	if cmd == nil {
		t.Fatal("expected a command on Esc")
	}
	if _, ok := cmd().(router.PopScreenMsg); !ok {
		t.Error("expected PopScreenMsg")
	}
	if _, again := s.Update(specialKey(tea.KeyEscape)); again != nil {
		t.Error("expected a second Esc to be ignored while leaving")
	}
}

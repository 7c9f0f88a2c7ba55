package course

import "testing"

func TestMatchAnswer(t *testing.T) {
	tests := []struct {
		expected  string
		submitted string
		want      bool
	}{
		{"ReactDOM.render", "ReactDOM.render", true},
		{"ReactDOM.render", "reactdom.RENDER", true},
		{"props", "  props\n", true},
		{"grid-template-columns", "grid-template-rows", false},
		{"Uncontrolled changes or continuous growth in a project's scope",
			"uncontrolled  changes or\tcontinuous growth in a project's scope", true},
		{"X", "", false},
		{"X", "   ", false},
		{"", "", false},
		{"Straße", "STRASSE", false},
		{"ÉCOLE", "école", true},
	}

	for _, tc := range tests {
		got := MatchAnswer(tc.expected, tc.submitted)
		if got != tc.want {
			t.Errorf("MatchAnswer(%q, %q) = %v, want %v", tc.expected, tc.submitted, got, tc.want)
		}
	}
}

func TestNormalizeAnswer(t *testing.T) {
	if got := NormalizeAnswer("  a \t b\n\nc "); got != "a b c" {
		t.Errorf("NormalizeAnswer = %q, want %q", got, "a b c")
	}
}

func TestCourse_TaskLookup(t *testing.T) {
	c := &Course{
		ID: "c1",
		Items: []Item{
			{ID: "l1", Kind: KindLesson, Title: "Intro"},
			{ID: "t1", Kind: KindTask, Question: "Q?", Answer: "A"},
		},
	}

	if _, ok := c.Task("l1"); ok {
		t.Error("lesson id should not resolve as a task")
	}
	task, ok := c.Task("t1")
	if !ok || task.Answer != "A" {
		t.Errorf("Task(t1) = %+v, %v", task, ok)
	}
	ids := c.TaskIDs()
	if len(ids) != 1 || !ids["t1"] {
		t.Errorf("TaskIDs = %v", ids)
	}
	if !KindTask.Valid() || Kind("quiz").Valid() {
		t.Error("Kind.Valid mismatch")
	}
}

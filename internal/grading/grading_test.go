package grading

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skilltrack/skilltrack/internal/course"
	"github.com/skilltrack/skilltrack/internal/llm"
	"github.com/skilltrack/skilltrack/internal/store"
)

type fakeContent map[string]*course.Course

func (f fakeContent) Course(_ context.Context, id string) (*course.Course, error) {
	c, ok := f[id]
	if !ok {
		return nil, course.ErrNotFound
	}
	return c, nil
}

func pmCourse() fakeContent {
	return fakeContent{"c5": {
		ID:   "c5",
		Name: "Project Management Basics",
		Items: []course.Item{
			{ID: "l20", Kind: course.KindLesson, Title: "Scope"},
			{ID: "t20", Kind: course.KindTask,
				Question: "What is scope creep?",
				Answer:   "Uncontrolled changes or continuous growth in a project's scope"},
		},
	}}
}

func TestExactVerifier(t *testing.T) {
	v := NewExactVerifier(pmCourse())
	ctx := context.Background()

	tests := []struct {
		name      string
		courseID  string
		taskID    string
		submitted string
		want      bool
		wantErr   error
	}{
		{"exact", "c5", "t20", "Uncontrolled changes or continuous growth in a project's scope", true, nil},
		{"case and spacing", "c5", "t20", "  uncontrolled CHANGES or continuous growth in a project's   scope ", true, nil},
		{"paraphrase rejected", "c5", "t20", "when the project keeps growing", false, nil},
		{"lesson id", "c5", "l20", "anything", false, nil},
		{"unknown task", "c5", "t99", "anything", false, nil},
		{"unknown course", "c9", "t20", "anything", false, course.ErrNotFound},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := v.Verify(ctx, tc.courseID, tc.taskID, tc.submitted)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestAssistedVerifier(t *testing.T) {
	ctx := context.Background()
	mock := llm.NewMockProvider(
		llm.MockResponse{Content: json.RawMessage(`{"correct":true,"reason":"same meaning"}`)},
		llm.MockResponse{Content: json.RawMessage(`{"correct":false,"reason":"too vague"}`)},
		llm.MockResponse{Err: &llm.ErrProviderUnavailable{Err: errors.New("down")}},
	)
	v := NewAssistedVerifier(pmCourse(), mock, nil)

	ok, err := v.Verify(ctx, "c5", "t20", "uncontrolled changes or continuous growth in a project's scope")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Zero(t, mock.CallCount(), "exact matches skip the model")

	ok, err = v.Verify(ctx, "c5", "t20", "   ")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, mock.CallCount())

	ok, err = v.Verify(ctx, "c5", "t20", "the scope keeps expanding without control")
	require.NoError(t, err)
	assert.True(t, ok)
	calls := mock.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, VerdictSchema, calls[0].Schema)
	assert.Contains(t, calls[0].Messages[0].Content, "Reference answer: Uncontrolled changes")

	ok, err = v.Verify(ctx, "c5", "t20", "bad planning")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = v.Verify(ctx, "c5", "t20", "another try")
	var unavail *llm.ErrProviderUnavailable
	require.ErrorAs(t, err, &unavail)
}

type recordingEvents struct {
	store.EventRepo
	attempts []store.AnswerAttempt
	err      error
}

func (r *recordingEvents) AppendAnswerAttempt(_ context.Context, userID, courseID string, a store.AnswerAttempt) error {
	r.attempts = append(r.attempts, a)
	return r.err
}

type failingVerifier struct{}

func (failingVerifier) Verify(context.Context, string, string, string) (bool, error) {
	return false, errors.New("timeout")
}

func TestWithAudit(t *testing.T) {
	ctx := context.Background()
	events := &recordingEvents{}

	v := WithAudit(NewExactVerifier(pmCourse()), events, "u1", nil)
	ok, err := v.Verify(ctx, "c5", "t20", "wrong")
	require.NoError(t, err)
	assert.False(t, ok)

	events.err = errors.New("db locked")
	_, err = WithAudit(failingVerifier{}, events, "u1", nil).Verify(ctx, "c5", "t20", "x")
	require.EqualError(t, err, "timeout")

	require.Len(t, events.attempts, 2)
	assert.Equal(t, store.AnswerAttempt{TaskID: "t20", Submitted: "wrong"}, events.attempts[0])
	assert.Equal(t, "timeout", events.attempts[1].Error)
}

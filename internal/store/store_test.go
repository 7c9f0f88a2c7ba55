package store

import (
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skilltrack/skilltrack/internal/course"
	"github.com/skilltrack/skilltrack/internal/llm"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	s, err := Open("file:" + name + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func seedUser(t *testing.T, s *Store, id, email, role string) {
	t.Helper()
	require.NoError(t, s.Users().Create(context.Background(), &User{ID: id, Email: email, Name: id, Role: role}))
}

func reactCourse() *course.Course {
	return &course.Course{
		ID:          "c1",
		Name:        "Introduction to React",
		Description: "Learn the basics of React.",
		Deadline:    "2024-12-31",
		OwnerID:     "m1",
		Items: []course.Item{
			{ID: "l1", Kind: course.KindLesson, Title: "What is React?", Body: "A JavaScript library."},
			{ID: "t1", Kind: course.KindTask, Question: "Which method renders?", Answer: "ReactDOM.render"},
			{ID: "l2", Kind: course.KindLesson, Title: "Components", Body: "Building blocks."},
			{ID: "t2", Kind: course.KindTask, Question: "What passes data down?", Answer: "props"},
		},
	}
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)

	tests := []struct {
		pragma string
		want   string
	}{
		{"foreign_keys", "1"},
		{"synchronous", "1"},
	}
	for _, tt := range tests {
		var got string
		require.NoError(t, s.DB().QueryRow("PRAGMA "+tt.pragma).Scan(&got))
		assert.Equal(t, tt.want, got, "PRAGMA %s", tt.pragma)
	}
}

func TestFileDatabaseUsesWAL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "skilltrack.db")
	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	var mode string
	require.NoError(t, s.DB().QueryRow("PRAGMA journal_mode").Scan(&mode))
	assert.Equal(t, "wal", mode)
}

func TestUsers(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	users := s.Users()

	require.NoError(t, users.Create(ctx, &User{ID: "u1", Email: " Alice@Example.com ", Name: "alice", Role: "employee"}))
	seedUser(t, s, "m1", "boss.manager@example.com", "manager")

	u, err := users.ByEmail(ctx, "ALICE@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)
	assert.Equal(t, "alice@example.com", u.Email)

	_, err = users.ByID(ctx, "nobody")
	require.ErrorIs(t, err, ErrNotFound)

	err = users.Create(ctx, &User{ID: "u2", Email: "alice@example.com", Role: "employee"})
	require.ErrorIs(t, err, ErrConflict)

	emps, err := users.List(ctx, "employee")
	require.NoError(t, err)
	require.Len(t, emps, 1)
	all, err := users.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestSessions(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	seedUser(t, s, "u1", "a@example.com", "employee")

	now := time.Unix(1700000000, 0)
	require.NoError(t, s.Sessions().Create(ctx, SessionRow{ID: "s1", UserID: "u1", CreatedAt: now}))

	got, err := s.Sessions().Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "u1", got.UserID)
	assert.True(t, got.CreatedAt.Equal(now))

	require.NoError(t, s.Sessions().Delete(ctx, "s1"))
	_, err = s.Sessions().Get(ctx, "s1")
	require.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, s.Sessions().Delete(ctx, "s1"))

	err = s.Sessions().Create(ctx, SessionRow{ID: "s2", UserID: "ghost", CreatedAt: now})
	require.Error(t, err, "foreign key to users")
}

func TestCourses_SaveLoadReplace(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	repo := s.Courses()

	c := reactCourse()
	require.NoError(t, repo.Save(ctx, c))

	got, err := repo.Course(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, c, got)

	c.Name = "React 101"
	c.Items = []course.Item{c.Items[3], c.Items[0]}
	require.NoError(t, repo.Save(ctx, c))

	got, err = repo.Course(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "React 101", got.Name)
	require.Len(t, got.Items, 2)
	assert.Equal(t, "t2", got.Items[0].ID)
	assert.Equal(t, course.KindLesson, got.Items[1].Kind)

	_, err = repo.Course(ctx, "missing")
	require.ErrorIs(t, err, course.ErrNotFound)
}

func TestCourses_ListAndDelete(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	repo := s.Courses()

	require.NoError(t, repo.Save(ctx, reactCourse()))
	require.NoError(t, repo.Save(ctx, &course.Course{ID: "c3", Name: "Advanced CSS Techniques", OwnerID: "m2"}))

	all, err := repo.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "c3", all[0].ID, "ordered by name")
	assert.Equal(t, 0, all[0].ItemCount)
	assert.Equal(t, 4, all[1].ItemCount)

	mine, err := repo.List(ctx, "m1")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "c1", mine[0].ID)

	require.NoError(t, repo.Delete(ctx, "c1"))
	require.ErrorIs(t, repo.Delete(ctx, "c1"), course.ErrNotFound)

	var n int
	require.NoError(t, s.DB().QueryRow("SELECT COUNT(*) FROM items").Scan(&n))
	assert.Zero(t, n, "items cascade with the course")
}

func TestProgress(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	seedUser(t, s, "u1", "a@example.com", "employee")
	seedUser(t, s, "u2", "b@example.com", "employee")
	require.NoError(t, s.Courses().Save(ctx, reactCourse()))

	bound := UserProgress{Repo: s.Progress(), UserID: "u1"}

	st, err := bound.LoadProgress(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, course.State{}, st)

	require.NoError(t, bound.SaveProgress(ctx, course.Update{CourseID: "c1", Index: 1}))
	require.NoError(t, bound.SaveProgress(ctx, course.Update{CourseID: "c1", Index: 1, CompletedTaskID: "t1"}))
	require.NoError(t, bound.SaveProgress(ctx, course.Update{CourseID: "c1", Index: 1, CompletedTaskID: "t1"}))
	require.NoError(t, bound.SaveProgress(ctx, course.Update{CourseID: "c1", Index: 2}))

	st, err = bound.LoadProgress(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, course.State{CurrentIndex: 2, CompletedTaskIDs: []string{"t1"}}, st)

	other, err := s.Progress().Load(ctx, "u2", "c1")
	require.NoError(t, err)
	assert.Zero(t, other.CurrentIndex, "progress is per user")

	pos, err := s.Progress().Positions(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"u1": 2}, pos)

	events, err := s.Events().Query(ctx, QueryOpts{UserID: "u1"})
	require.NoError(t, err)
	require.Len(t, events, 4)
	assert.Equal(t, EventNavigate, events[0].Kind)
	assert.Equal(t, EventTaskCompleted, events[1].Kind)

	require.NoError(t, s.Progress().Reset(ctx, "u1", "c1"))
	st, err = bound.LoadProgress(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, course.State{}, st)
}

func TestAssignments(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	seedUser(t, s, "u1", "a@example.com", "employee")
	require.NoError(t, s.Courses().Save(ctx, reactCourse()))
	repo := s.Assignments()

	require.NoError(t, repo.Upsert(ctx, Assignment{CourseID: "c1", UserID: "u1", Deadline: "2024-12-31"}))
	require.NoError(t, repo.Upsert(ctx, Assignment{CourseID: "c1", UserID: "u1", Deadline: "2025-01-31"}))

	mine, err := repo.ForUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "2025-01-31", mine[0].Deadline)

	byCourse, err := repo.ForCourse(ctx, "c1")
	require.NoError(t, err)
	assert.Len(t, byCourse, 1)

	removed, err := repo.Delete(ctx, "c1", "u1")
	require.NoError(t, err)
	assert.True(t, removed)
	removed, err = repo.Delete(ctx, "c1", "u1")
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestEvents(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	events := s.Events()

	require.NoError(t, events.Append(ctx, Event{Kind: EventLogin, UserID: "u1"}, nil))
	require.NoError(t, events.AppendAnswerAttempt(ctx, "u1", "c1", AnswerAttempt{TaskID: "t1", Submitted: "props", Correct: true}))
	require.NoError(t, events.RecordLLMRequest(ctx, llm.RequestRecord{Model: "mock", Purpose: "grading", Success: true}))

	all, err := events.Query(ctx, QueryOpts{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, EventLLMRequest, all[0].Kind, "newest first")
	assert.Greater(t, all[0].Seq, all[1].Seq)

	attempts, err := events.Query(ctx, QueryOpts{Kind: EventAnswerAttempt})
	require.NoError(t, err)
	require.Len(t, attempts, 1)
	var a AnswerAttempt
	require.NoError(t, json.Unmarshal(attempts[0].Payload, &a))
	assert.True(t, a.Correct)
	assert.Equal(t, "c1", attempts[0].CourseID)

	page, err := events.Query(ctx, QueryOpts{Limit: 1, Before: all[0].Seq})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, EventAnswerAttempt, page[0].Kind)
}

func TestDefaultDBPath(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("SKILLTRACK_DB", "")
	t.Setenv("XDG_DATA_HOME", dir)

	p, err := DefaultDBPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "skilltrack", "skilltrack.db"), p)

	t.Setenv("SKILLTRACK_DB", filepath.Join(dir, "custom", "x.db"))
	p, err = DefaultDBPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "custom", "x.db"), p)
}

package dashboard

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skilltrack/skilltrack/internal/course"
	"github.com/skilltrack/skilltrack/internal/store"
)

func openStore(t *testing.T) *store.Store {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	st, err := store.Open("file:" + name + "?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func items(kinds string) []course.Item {
	out := make([]course.Item, len(kinds))
	for i, k := range kinds {
		id := string(k) + string(rune('0'+i))
		if k == 'l' {
			out[i] = course.Item{ID: id, Kind: course.KindLesson, Title: id, Body: id}
		} else {
			out[i] = course.Item{ID: id, Kind: course.KindTask, Question: id, Answer: id}
		}
	}
	return out
}

// seed builds two managers, three employees and three courses:
// c1 (4 items, m1), c3 (3 items, m1, unassigned), c5 (2 items, m2).
func seed(t *testing.T, st *store.Store) {
	t.Helper()
	ctx := context.Background()
	for _, u := range []store.User{
		{ID: "m1", Email: "manager@example.com", Role: "manager"},
		{ID: "m2", Email: "other.manager@example.com", Role: "manager"},
		{ID: "u1", Email: "alice@example.com", Role: "employee"},
		{ID: "u2", Email: "bob@example.com", Role: "employee"},
		{ID: "u3", Email: "carol@example.com", Role: "employee"},
	} {
		require.NoError(t, st.Users().Create(ctx, &u))
	}
	for _, c := range []*course.Course{
		{ID: "c1", Name: "Introduction to React", Deadline: "2024-06-15", OwnerID: "m1", Items: items("ltlt")},
		{ID: "c3", Name: "Advanced CSS Techniques", Deadline: "2024-07-01", OwnerID: "m1", Items: items("llt")},
		{ID: "c5", Name: "Project Management Basics", Deadline: "2024-05-20", OwnerID: "m2", Items: items("lt")},
	} {
		require.NoError(t, st.Courses().Save(ctx, c))
	}
	for _, a := range []store.Assignment{
		{CourseID: "c1", UserID: "u1"},
		{CourseID: "c1", UserID: "u2", Deadline: "2024-08-01"},
		{CourseID: "c1", UserID: "u3"},
		{CourseID: "c5", UserID: "u1", Deadline: "2024-05-20"},
	} {
		require.NoError(t, st.Assignments().Upsert(ctx, a))
	}
	require.NoError(t, st.Progress().Save(ctx, "u1", course.Update{CourseID: "c1", Index: 2, CompletedTaskID: "t1"}))
	require.NoError(t, st.Progress().Save(ctx, "u2", course.Update{CourseID: "c1", Index: 4, CompletedTaskID: "t3"}))
	require.NoError(t, st.Progress().Save(ctx, "u1", course.Update{CourseID: "c5", Index: 2, CompletedTaskID: "t1"}))
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		percent int
		want    Status
	}{
		{0, StatusStart},
		{1, StatusContinue},
		{99, StatusContinue},
		{100, StatusCompleted},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusFor(tt.percent), "percent %d", tt.percent)
	}
}

func TestEmployee(t *testing.T) {
	st := openStore(t)
	seed(t, st)
	svc := New(st)
	ctx := context.Background()

	cards, err := svc.Employee(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, cards, 2)

	assert.Equal(t, "c5", cards[0].CourseID)
	assert.Equal(t, 100, cards[0].Percent)
	assert.Equal(t, StatusCompleted, cards[0].Status)
	assert.False(t, cards[0].Openable())

	assert.Equal(t, "c1", cards[1].CourseID)
	assert.Equal(t, "2024-06-15", cards[1].Deadline)
	assert.Equal(t, 50, cards[1].Percent)
	assert.Equal(t, StatusContinue, cards[1].Status)
	assert.True(t, cards[1].Openable())

	cards, err = svc.Employee(ctx, "u3")
	require.NoError(t, err)
	require.Len(t, cards, 1)
	assert.Equal(t, 0, cards[0].Percent)
	assert.Equal(t, StatusStart, cards[0].Status)

	cards, err = svc.Employee(ctx, "u2")
	require.NoError(t, err)
	require.Len(t, cards, 1)
	assert.Equal(t, "2024-08-01", cards[0].Deadline)
}

func TestManager(t *testing.T) {
	st := openStore(t)
	seed(t, st)
	svc := New(st)

	view, err := svc.Manager(context.Background(), "m1")
	require.NoError(t, err)

	assert.Equal(t, Stats{TotalEmployees: 3, ActiveCourses: 1, OverallCompletion: 33}, view.Stats)
	require.Len(t, view.Courses, 2)

	rows := map[string]CourseRow{}
	for _, r := range view.Courses {
		rows[r.CourseID] = r
	}
	assert.Equal(t, 3, rows["c1"].Assigned)
	assert.Equal(t, 1, rows["c1"].Completed)
	assert.Equal(t, 4, rows["c1"].Items)
	assert.Equal(t, 0, rows["c3"].Assigned)
}

func TestManager_NoCourses(t *testing.T) {
	st := openStore(t)
	view, err := New(st).Manager(context.Background(), "m1")
	require.NoError(t, err)
	assert.Equal(t, Stats{}, view.Stats)
	assert.Empty(t, view.Courses)
}

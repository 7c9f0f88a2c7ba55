package cmd

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skilltrack/skilltrack/internal/authoring"
	"github.com/skilltrack/skilltrack/internal/course"
	"github.com/skilltrack/skilltrack/internal/session"
	"github.com/skilltrack/skilltrack/internal/store"
)

func editFixture(t *testing.T) (*authoring.Service, *session.Manager, string) {
	t.Helper()
	st, err := store.Open("file:" + t.Name() + "?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	sessions := session.NewManager(st.Users(), st.Sessions(), st.Events(), nil)
	svc := authoring.NewService(st.Courses(), nil)
	owner, err := sessions.Login(context.Background(), "manager@example.com")
	require.NoError(t, err)

	c, err := svc.Save(context.Background(), owner, &authoring.Draft{Name: "Advanced CSS Techniques"})
	require.NoError(t, err)
	return svc, sessions, c.ID
}

func kinds(c *course.Course) []course.Kind {
	out := make([]course.Kind, len(c.Items))
	for i, it := range c.Items {
		out[i] = it.Kind
	}
	return out
}

func TestEditCourse(t *testing.T) {
	ctx := context.Background()
	svc, sessions, id := editFixture(t)
	owner, err := sessions.Login(ctx, "manager@example.com")
	require.NoError(t, err)

	var lessonID, taskID string
	_, err = editCourse(ctx, svc, owner, id, func(d *authoring.Draft) error {
		lessonID, err = addItem(d, 0, func(d *authoring.Draft) string {
			return d.AddLesson("Flexbox", "Flexbox lays out items in one dimension.")
		})
		return err
	})
	require.NoError(t, err)

	c, err := editCourse(ctx, svc, owner, id, func(d *authoring.Draft) error {
		taskID, err = addItem(d, 1, func(d *authoring.Draft) string { return d.AddTask("Which property enables flexbox?", "display: flex") })
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, []course.Kind{course.KindTask, course.KindLesson}, kinds(c))
	assert.Equal(t, taskID, c.Items[0].ID)

	answer := "display:flex"
	c, err = editCourse(ctx, svc, owner, id, func(d *authoring.Draft) error {
		it, err := findItem(d, taskID)
		if err != nil {
			return err
		}
		return d.UpdateItem(taskID, itemEdit{Answer: &answer}.apply(it))
	})
	require.NoError(t, err)
	assert.Equal(t, "display:flex", c.Items[0].Answer)
	assert.Equal(t, "Which property enables flexbox?", c.Items[0].Question)

	c, err = editCourse(ctx, svc, owner, id, func(d *authoring.Draft) error { return d.MoveItem(taskID, 1) })
	require.NoError(t, err)
	assert.Equal(t, []course.Kind{course.KindLesson, course.KindTask}, kinds(c))

	c, err = editCourse(ctx, svc, owner, id, func(d *authoring.Draft) error { return d.RemoveItem(lessonID) })
	require.NoError(t, err)
	assert.Equal(t, 1, c.Len())
}

func TestEditCourse_Rejects(t *testing.T) {
	ctx := context.Background()
	svc, sessions, id := editFixture(t)
	owner, err := sessions.Login(ctx, "manager@example.com")
	require.NoError(t, err)
	other, err := sessions.Login(ctx, "other.manager@example.com")
	require.NoError(t, err)
	employee, err := sessions.Login(ctx, "alice@example.com")
	require.NoError(t, err)

	addLesson := func(d *authoring.Draft) error { d.AddLesson("Grid", "Grid lays out in two dimensions."); return nil }

	_, err = editCourse(ctx, svc, other, id, addLesson)
	require.ErrorIs(t, err, authoring.ErrNotOwner)

	_, err = editCourse(ctx, svc, employee, id, addLesson)
	require.ErrorIs(t, err, authoring.ErrNotManager)

	_, err = editCourse(ctx, svc, owner, "missing", addLesson)
	require.ErrorIs(t, err, course.ErrNotFound)

	_, err = editCourse(ctx, svc, owner, id, func(d *authoring.Draft) error { return d.RemoveItem("l-nope") })
	require.ErrorIs(t, err, authoring.ErrItemNotFound)

	_, err = editCourse(ctx, svc, owner, id, func(d *authoring.Draft) error { d.AddTask("Empty answer?", ""); return nil })
	var verr *authoring.ValidationError
	require.ErrorAs(t, err, &verr)

	d, err := svc.Load(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, d.Items)
}

func TestItemEdit(t *testing.T) {
	title := "New title"
	it := authoring.ItemDraft{ID: "l1", Kind: course.KindLesson, Title: "Old", Content: "Body"}

	got := itemEdit{Title: &title}.apply(it)
	assert.Equal(t, "New title", got.Title)
	assert.Equal(t, "Body", got.Content)
	assert.True(t, itemEdit{}.empty())
	assert.False(t, itemEdit{Title: &title}.empty())
}

func TestExportFile(t *testing.T) {
	drafts, err := authoring.DemoCatalog()
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "courses.json")
	require.NoError(t, exportFile(path, drafts))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	back, err := authoring.Import(f)
	require.NoError(t, err)
	assert.Len(t, back, len(drafts))

	err = exportFile(filepath.Join(t.TempDir(), "missing", "courses.json"), drafts)
	require.Error(t, err)
}

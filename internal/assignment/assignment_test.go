package assignment

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skilltrack/skilltrack/internal/course"
	"github.com/skilltrack/skilltrack/internal/session"
	"github.com/skilltrack/skilltrack/internal/store"
)

type fixture struct {
	st      *store.Store
	svc     *Service
	manager *session.Session
	ctx     context.Context
}

func setup(t *testing.T) *fixture {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	st, err := store.Open("file:" + name + "?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	ctx := context.Background()
	sessions := session.NewManager(st.Users(), st.Sessions(), st.Events(), nil)
	mgr, err := sessions.Login(ctx, "manager@example.com")
	require.NoError(t, err)
	_, err = sessions.Login(ctx, "alice@example.com")
	require.NoError(t, err)

	require.NoError(t, st.Courses().Save(ctx, &course.Course{
		ID: "c1", Name: "Introduction to React", Deadline: "2024-06-15", OwnerID: mgr.UserID,
		Items: []course.Item{{ID: "l1", Kind: course.KindLesson, Title: "What is React?", Body: "A library."}},
	}))

	return &fixture{
		st:      st,
		svc:     New(st.Courses(), st.Users(), st.Assignments(), sessions, nil),
		manager: mgr,
		ctx:     ctx,
	}
}

func TestAssign(t *testing.T) {
	f := setup(t)

	res, err := f.svc.Assign(f.ctx, f.manager, "c1", []string{"Alice@Example.com", "bob@example.com"}, "")
	require.NoError(t, err)
	require.Len(t, res.Assigned, 2)
	assert.Equal(t, []string{"bob@example.com"}, res.Registered)

	bob, err := f.st.Users().ByEmail(f.ctx, "bob@example.com")
	require.NoError(t, err)
	assert.Equal(t, "employee", bob.Role)

	list, err := f.svc.ForEmployee(f.ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "2024-06-15", list[0].Deadline)

	_, err = f.svc.Assign(f.ctx, f.manager, "c1", []string{"bob@example.com"}, "2024-09-01")
	require.NoError(t, err)
	list, err = f.svc.ForEmployee(f.ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "2024-09-01", list[0].Deadline)

	ok, err := f.svc.IsAssigned(f.ctx, bob.ID, "c1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestAssign_Rejects(t *testing.T) {
	f := setup(t)
	other := &session.Session{UserID: "someone-else", Role: session.RoleManager}
	employee := &session.Session{UserID: "u1", Role: session.RoleEmployee}

	_, err := f.svc.Assign(f.ctx, employee, "c1", []string{"alice@example.com"}, "")
	require.ErrorIs(t, err, ErrNotManager)

	_, err = f.svc.Assign(f.ctx, other, "c1", []string{"alice@example.com"}, "")
	require.ErrorIs(t, err, ErrNotOwner)

	_, err = f.svc.Assign(f.ctx, f.manager, "missing", []string{"alice@example.com"}, "")
	require.ErrorIs(t, err, course.ErrNotFound)

	_, err = f.svc.Assign(f.ctx, f.manager, "c1", []string{"alice@example.com"}, "next week")
	require.ErrorIs(t, err, ErrBadDeadline)

	_, err = f.svc.Assign(f.ctx, f.manager, "c1", []string{"manager@example.com"}, "")
	require.ErrorIs(t, err, ErrNotEmployee)

	_, err = f.svc.Assign(f.ctx, f.manager, "c1", []string{"not-an-email"}, "")
	require.ErrorIs(t, err, session.ErrInvalidEmail)
}

func TestUnassign(t *testing.T) {
	f := setup(t)
	_, err := f.svc.Assign(f.ctx, f.manager, "c1", []string{"alice@example.com"}, "")
	require.NoError(t, err)

	ok, err := f.svc.Unassign(f.ctx, f.manager, "c1", "alice@example.com")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = f.svc.Unassign(f.ctx, f.manager, "c1", "alice@example.com")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = f.svc.Unassign(f.ctx, f.manager, "c1", "nobody@example.com")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAssign_WithoutRegistrar(t *testing.T) {
	f := setup(t)
	svc := New(f.st.Courses(), f.st.Users(), f.st.Assignments(), nil, nil)

	_, err := svc.Assign(f.ctx, f.manager, "c1", []string{"carol@example.com"}, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no user with email carol@example.com")
}

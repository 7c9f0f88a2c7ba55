package progress

import (
	"context"
	"errors"
	"sync"

	"github.com/skilltrack/skilltrack/internal/course"
)

func lesson(id string) course.Item {
	return course.Item{ID: id, Kind: course.KindLesson, Title: "Lesson " + id, Body: "body"}
}

func task(id, answer string) course.Item {
	return course.Item{ID: id, Kind: course.KindTask, Question: "Question " + id, Answer: answer}
}

func testCourse(items ...course.Item) *course.Course {
	return &course.Course{ID: "c1", Name: "Test Course", Items: items}
}

// matchVerifier checks answers against the course with course.MatchAnswer.
type matchVerifier struct {
	c     *course.Course
	err   error
	calls int
}

func (v *matchVerifier) Verify(_ context.Context, _, taskID, submitted string) (bool, error) {
	v.calls++
	if v.err != nil {
		return false, v.err
	}
	t, ok := v.c.Task(taskID)
	if !ok {
		return false, nil
	}
	return course.MatchAnswer(t.Answer, submitted), nil
}

type memStore struct {
	mu      sync.Mutex
	state   course.State
	loadErr error
	saveErr error
	updates []course.Update
}

func (s *memStore) LoadProgress(context.Context, string) (course.State, error) {
	if s.loadErr != nil {
		return course.State{}, s.loadErr
	}
	return s.state, nil
}

func (s *memStore) SaveProgress(_ context.Context, u course.Update) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updates = append(s.updates, u)
	return s.saveErr
}

func (s *memStore) Updates() []course.Update {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]course.Update(nil), s.updates...)
}

type memContent struct {
	courses map[string]*course.Course
	err     error
}

func (m *memContent) Course(_ context.Context, id string) (*course.Course, error) {
	if m.err != nil {
		return nil, m.err
	}
	c, ok := m.courses[id]
	if !ok {
		return nil, course.ErrNotFound
	}
	return c, nil
}

var errUnavailable = errors.New("verifier unavailable")

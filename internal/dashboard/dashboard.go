// Package dashboard builds the read models behind the employee and manager
// home screens.
package dashboard

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/skilltrack/skilltrack/internal/progress"
	"github.com/skilltrack/skilltrack/internal/store"
)

// Status is the call to action shown next to an assigned course.
type Status string

const (
	StatusStart     Status = "Start Course"
	StatusContinue  Status = "Continue Course"
	StatusCompleted Status = "Completed"
)

// StatusFor maps a progress percentage to its label.
func StatusFor(percent int) Status {
	switch {
	case percent >= 100:
		return StatusCompleted
	case percent <= 0:
		return StatusStart
	default:
		return StatusContinue
	}
}

// CourseCard is one assigned course on the employee dashboard.
type CourseCard struct {
	CourseID    string
	Name        string
	Description string
	Deadline    string
	Items       int
	Index       int
	Percent     int
	Status      Status
}

// Openable reports whether the viewer may be started from this card.
func (c CourseCard) Openable() bool { return c.Status != StatusCompleted }

// CourseRow is one owned course on the manager dashboard.
type CourseRow struct {
	CourseID  string
	Name      string
	Deadline  string
	Items     int
	Assigned  int
	Completed int
}

// Stats are the manager dashboard headline numbers.
type Stats struct {
	TotalEmployees    int
	ActiveCourses     int
	OverallCompletion int
}

// ManagerView is everything the manager dashboard shows.
type ManagerView struct {
	Stats   Stats
	Courses []CourseRow
}

// Service reads dashboards from the store.
type Service struct {
	users       store.UserRepo
	courses     store.CourseRepo
	assignments store.AssignmentRepo
	progress    store.ProgressRepo
}

func New(st *store.Store) *Service {
	return &Service{
		users:       st.Users(),
		courses:     st.Courses(),
		assignments: st.Assignments(),
		progress:    st.Progress(),
	}
}

// Employee returns the courses assigned to userID ordered by deadline,
// undated courses last.
func (s *Service) Employee(ctx context.Context, userID string) ([]CourseCard, error) {
	assigned, err := s.assignments.ForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	summaries, err := s.summaries(ctx)
	if err != nil {
		return nil, err
	}

	cards := make([]CourseCard, 0, len(assigned))
	for _, a := range assigned {
		sum, ok := summaries[a.CourseID]
		if !ok {
			continue
		}
		st, err := s.progress.Load(ctx, userID, a.CourseID)
		if err != nil {
			return nil, fmt.Errorf("dashboard for %s: %w", a.CourseID, err)
		}
		pct := progress.Percent(st.CurrentIndex, sum.ItemCount)
		cards = append(cards, CourseCard{
			CourseID:    sum.ID,
			Name:        sum.Name,
			Description: sum.Description,
			Deadline:    cmp.Or(a.Deadline, sum.Deadline),
			Items:       sum.ItemCount,
			Index:       st.CurrentIndex,
			Percent:     pct,
			Status:      StatusFor(pct),
		})
	}

	slices.SortStableFunc(cards, func(a, b CourseCard) int {
		switch {
		case a.Deadline == b.Deadline:
			return cmp.Compare(a.Name, b.Name)
		case a.Deadline == "":
			return 1
		case b.Deadline == "":
			return -1
		}
		return cmp.Compare(a.Deadline, b.Deadline)
	})
	return cards, nil
}

// Manager returns the courses owned by ownerID with assignment counts.
// An assignment is completed when the employee's stored index has passed
// every item.
func (s *Service) Manager(ctx context.Context, ownerID string) (*ManagerView, error) {
	employees, err := s.users.List(ctx, "employee")
	if err != nil {
		return nil, err
	}
	owned, err := s.courses.List(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	view := &ManagerView{Stats: Stats{TotalEmployees: len(employees)}}
	var assignedTotal, completedTotal int
	for _, c := range owned {
		row := CourseRow{CourseID: c.ID, Name: c.Name, Deadline: c.Deadline, Items: c.ItemCount}

		assigned, err := s.assignments.ForCourse(ctx, c.ID)
		if err != nil {
			return nil, err
		}
		positions, err := s.progress.Positions(ctx, c.ID)
		if err != nil {
			return nil, err
		}
		for _, a := range assigned {
			row.Assigned++
			if progress.Percent(positions[a.UserID], c.ItemCount) == 100 {
				row.Completed++
			}
		}

		if row.Assigned > 0 {
			view.Stats.ActiveCourses++
		}
		assignedTotal += row.Assigned
		completedTotal += row.Completed
		view.Courses = append(view.Courses, row)
	}
	if assignedTotal > 0 {
		view.Stats.OverallCompletion = completedTotal * 100 / assignedTotal
	}
	return view, nil
}

func (s *Service) summaries(ctx context.Context) (map[string]store.CourseSummary, error) {
	list, err := s.courses.List(ctx, "")
	if err != nil {
		return nil, err
	}
	out := make(map[string]store.CourseSummary, len(list))
	for _, c := range list {
		out[c.ID] = c
	}
	return out, nil
}

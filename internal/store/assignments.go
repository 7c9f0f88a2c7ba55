package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// Assignment links an employee to a course with an optional deadline.
type Assignment struct {
	CourseID   string
	UserID     string
	Deadline   string
	AssignedAt time.Time
}

// AssignmentRepo manages course assignments.
type AssignmentRepo interface {
	// Upsert creates the assignment or refreshes its deadline.
	Upsert(ctx context.Context, a Assignment) error
	// Delete reports whether an assignment was removed.
	Delete(ctx context.Context, courseID, userID string) (bool, error)
	ForUser(ctx context.Context, userID string) ([]Assignment, error)
	ForCourse(ctx context.Context, courseID string) ([]Assignment, error)
}

type assignmentRepo struct {
	db *sql.DB
}

func (r *assignmentRepo) Upsert(ctx context.Context, a Assignment) error {
	if a.AssignedAt.IsZero() {
		a.AssignedAt = time.Now()
	}
	_, err := execQ(ctx, r.db, sqlb.Insert("assignments").
		Columns("course_id", "user_id", "deadline", "assigned_at").
		Values(a.CourseID, a.UserID, a.Deadline, a.AssignedAt.Unix()).
		OnConflict(
			entsql.ConflictColumns("course_id", "user_id"),
			entsql.ResolveWith(func(s *entsql.UpdateSet) { s.SetExcluded("deadline") }),
		))
	if err != nil {
		return fmt.Errorf("assign %s to %s: %w", a.CourseID, a.UserID, err)
	}
	return nil
}

func (r *assignmentRepo) Delete(ctx context.Context, courseID, userID string) (bool, error) {
	res, err := execQ(ctx, r.db, sqlb.Delete("assignments").
		Where(entsql.And(entsql.EQ("course_id", courseID), entsql.EQ("user_id", userID))))
	if err != nil {
		return false, fmt.Errorf("unassign: %w", err)
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *assignmentRepo) ForUser(ctx context.Context, userID string) ([]Assignment, error) {
	return r.list(ctx, entsql.EQ("user_id", userID))
}

func (r *assignmentRepo) ForCourse(ctx context.Context, courseID string) ([]Assignment, error) {
	return r.list(ctx, entsql.EQ("course_id", courseID))
}

func (r *assignmentRepo) list(ctx context.Context, p *entsql.Predicate) ([]Assignment, error) {
	rows, err := queryQ(ctx, r.db, sqlb.Select("course_id", "user_id", "deadline", "assigned_at").
		From(sqlb.Table("assignments")).
		Where(p).
		OrderBy("assigned_at", "course_id", "user_id"))
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	defer rows.Close()

	var out []Assignment
	for rows.Next() {
		var (
			a  Assignment
			at int64
		)
		if err := rows.Scan(&a.CourseID, &a.UserID, &a.Deadline, &at); err != nil {
			return nil, fmt.Errorf("scan assignment: %w", err)
		}
		a.AssignedAt = time.Unix(at, 0)
		out = append(out, a)
	}
	return out, rows.Err()
}

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/skilltrack/skilltrack/internal/course"
)

// ProgressRepo stores each employee's position and completed tasks per
// course.
type ProgressRepo interface {
	Load(ctx context.Context, userID, courseID string) (course.State, error)
	Save(ctx context.Context, userID string, u course.Update) error
	// Positions returns the stored index of every user with progress in
	// the course.
	Positions(ctx context.Context, courseID string) (map[string]int, error)
	Reset(ctx context.Context, userID, courseID string) error
}

type progressRepo struct {
	db *sql.DB
}

// Load returns the stored state, or the zero state if the user has not
// opened the course yet.
func (r *progressRepo) Load(ctx context.Context, userID, courseID string) (course.State, error) {
	var st course.State
	err := queryRowQ(ctx, r.db, sqlb.Select("current_index").
		From(sqlb.Table("progress")).
		Where(entsql.And(entsql.EQ("user_id", userID), entsql.EQ("course_id", courseID)))).
		Scan(&st.CurrentIndex)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return st, fmt.Errorf("query progress: %w", err)
	}

	rows, err := queryQ(ctx, r.db, sqlb.Select("task_id").
		From(sqlb.Table("completed_tasks")).
		Where(entsql.And(entsql.EQ("user_id", userID), entsql.EQ("course_id", courseID))).
		OrderBy("task_id"))
	if err != nil {
		return st, fmt.Errorf("query completed tasks: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return st, fmt.Errorf("scan completed task: %w", err)
		}
		st.CompletedTaskIDs = append(st.CompletedTaskIDs, id)
	}
	return st, rows.Err()
}

// Save records the new index and, when set, the completed task, and
// appends the matching audit event.
func (r *progressRepo) Save(ctx context.Context, userID string, u course.Update) error {
	now := time.Now()
	return inTx(ctx, r.db, func(tx *sql.Tx) error {
		_, err := execQ(ctx, tx, sqlb.Insert("progress").
			Columns("user_id", "course_id", "current_index", "updated_at").
			Values(userID, u.CourseID, u.Index, now.Unix()).
			OnConflict(
				entsql.ConflictColumns("user_id", "course_id"),
				entsql.ResolveWith(func(s *entsql.UpdateSet) {
					s.SetExcluded("current_index")
					s.SetExcluded("updated_at")
				}),
			))
		if err != nil {
			return fmt.Errorf("save progress: %w", err)
		}

		ev := Event{Kind: EventNavigate, UserID: userID, CourseID: u.CourseID, CreatedAt: now}
		payload := map[string]any{"index": u.Index}
		if u.CompletedTaskID != "" {
			_, err := execQ(ctx, tx, sqlb.Insert("completed_tasks").
				Columns("user_id", "course_id", "task_id", "completed_at").
				Values(userID, u.CourseID, u.CompletedTaskID, now.Unix()).
				OnConflict(entsql.ConflictColumns("user_id", "course_id", "task_id"), entsql.DoNothing()))
			if err != nil {
				return fmt.Errorf("save completed task: %w", err)
			}
			ev.Kind = EventTaskCompleted
			payload["task_id"] = u.CompletedTaskID
		}
		return appendEvent(ctx, tx, ev, payload)
	})
}

func (r *progressRepo) Positions(ctx context.Context, courseID string) (map[string]int, error) {
	rows, err := queryQ(ctx, r.db, sqlb.Select("user_id", "current_index").
		From(sqlb.Table("progress")).
		Where(entsql.EQ("course_id", courseID)))
	if err != nil {
		return nil, fmt.Errorf("query positions: %w", err)
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var (
			uid string
			idx int
		)
		if err := rows.Scan(&uid, &idx); err != nil {
			return nil, fmt.Errorf("scan position: %w", err)
		}
		out[uid] = idx
	}
	return out, rows.Err()
}

// Reset forgets the user's position and completed tasks in the course.
func (r *progressRepo) Reset(ctx context.Context, userID, courseID string) error {
	where := func() *entsql.Predicate {
		return entsql.And(entsql.EQ("user_id", userID), entsql.EQ("course_id", courseID))
	}
	return inTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := execQ(ctx, tx, sqlb.Delete("progress").Where(where())); err != nil {
			return fmt.Errorf("reset progress: %w", err)
		}
		if _, err := execQ(ctx, tx, sqlb.Delete("completed_tasks").Where(where())); err != nil {
			return fmt.Errorf("reset completed tasks: %w", err)
		}
		return nil
	})
}

// UserProgress binds a ProgressRepo to one user so it can serve as the
// engine's course.ProgressStore.
type UserProgress struct {
	Repo   ProgressRepo
	UserID string
}

func (p UserProgress) LoadProgress(ctx context.Context, courseID string) (course.State, error) {
	return p.Repo.Load(ctx, p.UserID, courseID)
}

func (p UserProgress) SaveProgress(ctx context.Context, u course.Update) error {
	return p.Repo.Save(ctx, p.UserID, u)
}

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

// CourseSummary is a catalog row without item content.
type CourseSummary struct {
	ID          string
	Name        string
	Description string
	Deadline    string
	OwnerID     string
	ItemCount   int
	UpdatedAt   time.Time
}

// CourseRepo stores courses and their ordered items. It satisfies
// course.ContentProvider.
type CourseRepo interface {
	course.ContentProvider
	// Save creates the course or replaces its metadata and items.
	Save(ctx context.Context, c *course.Course) error
	// List returns all courses ordered by name; a non-empty ownerID
	// restricts the result to that owner's courses.
	List(ctx context.Context, ownerID string) ([]CourseSummary, error)
	Delete(ctx context.Context, id string) error
}

type courseRepo struct {
	db *sql.DB
}

var itemCols = []string{"course_id", "id", "position", "kind", "title", "body", "question", "answer"}

func (r *courseRepo) Course(ctx context.Context, id string) (*course.Course, error) {
	c := &course.Course{}
	err := queryRowQ(ctx, r.db, sqlb.Select("id", "name", "description", "deadline", "owner_id").
		From(sqlb.Table("courses")).
		Where(entsql.EQ("id", id))).
		Scan(&c.ID, &c.Name, &c.Description, &c.Deadline, &c.OwnerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("course %s: %w", id, course.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query course: %w", err)
	}

	rows, err := queryQ(ctx, r.db, sqlb.Select(itemCols[1:]...).
		From(sqlb.Table("items")).
		Where(entsql.EQ("course_id", id)).
		OrderBy("position"))
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			it   course.Item
			pos  int
			kind string
		)
		if err := rows.Scan(&it.ID, &pos, &kind, &it.Title, &it.Body, &it.Question, &it.Answer); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		it.Kind = course.Kind(kind)
		c.Items = append(c.Items, it)
	}
	return c, rows.Err()
}

func (r *courseRepo) Save(ctx context.Context, c *course.Course) error {
	now := time.Now().Unix()
	return inTx(ctx, r.db, func(tx *sql.Tx) error {
		_, err := execQ(ctx, tx, sqlb.Insert("courses").
			Columns("id", "name", "description", "deadline", "owner_id", "created_at", "updated_at").
			Values(c.ID, c.Name, c.Description, c.Deadline, c.OwnerID, now, now).
			OnConflict(
				entsql.ConflictColumns("id"),
				entsql.ResolveWith(func(u *entsql.UpdateSet) {
					u.SetExcluded("name")
					u.SetExcluded("description")
					u.SetExcluded("deadline")
					u.SetExcluded("owner_id")
					u.SetExcluded("updated_at")
				}),
			))
		if err != nil {
			return fmt.Errorf("save course %s: %w", c.ID, err)
		}

		if _, err := execQ(ctx, tx, sqlb.Delete("items").Where(entsql.EQ("course_id", c.ID))); err != nil {
			return fmt.Errorf("clear items: %w", err)
		}
		if len(c.Items) == 0 {
			return nil
		}
		ins := sqlb.Insert("items").Columns(itemCols...)
		for i, it := range c.Items {
			ins.Values(c.ID, it.ID, i, string(it.Kind), it.Title, it.Body, it.Question, it.Answer)
		}
		if _, err := execQ(ctx, tx, ins); err != nil {
			return fmt.Errorf("insert items: %w", err)
		}
		return nil
	})
}

func (r *courseRepo) List(ctx context.Context, ownerID string) ([]CourseSummary, error) {
	sel := sqlb.Select("id", "name", "description", "deadline", "owner_id", "updated_at").
		From(sqlb.Table("courses")).
		OrderBy("name", "id")
	if ownerID != "" {
		sel.Where(entsql.EQ("owner_id", ownerID))
	}
	rows, err := queryQ(ctx, r.db, sel)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}

	var out []CourseSummary
	for rows.Next() {
		var (
			cs      CourseSummary
			updated int64
		)
		if err := rows.Scan(&cs.ID, &cs.Name, &cs.Description, &cs.Deadline, &cs.OwnerID, &updated); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan course: %w", err)
		}
		cs.UpdatedAt = time.Unix(updated, 0)
		out = append(out, cs)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	counts, err := r.itemCounts(ctx)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].ItemCount = counts[out[i].ID]
	}
	return out, nil
}

func (r *courseRepo) itemCounts(ctx context.Context) (map[string]int, error) {
	rows, err := queryQ(ctx, r.db, sqlb.Select("course_id", entsql.Count("*")).
		From(sqlb.Table("items")).
		GroupBy("course_id"))
	if err != nil {
		return nil, fmt.Errorf("count items: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var (
			id string
			n  int
		)
		if err := rows.Scan(&id, &n); err != nil {
			return nil, fmt.Errorf("scan item count: %w", err)
		}
		counts[id] = n
	}
	return counts, rows.Err()
}

// Delete removes the course with its items, assignments and progress.
func (r *courseRepo) Delete(ctx context.Context, id string) error {
	res, err := execQ(ctx, r.db, sqlb.Delete("courses").Where(entsql.EQ("id", id)))
	if err != nil {
		return fmt.Errorf("delete course: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("course %s: %w", id, course.ErrNotFound)
	}
	return nil
}

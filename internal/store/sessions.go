package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// SessionRow is a persisted login session.
type SessionRow struct {
	ID        string
	UserID    string
	CreatedAt time.Time
}

// SessionRepo persists login sessions.
type SessionRepo interface {
	Create(ctx context.Context, s SessionRow) error
	Get(ctx context.Context, id string) (*SessionRow, error)
	Delete(ctx context.Context, id string) error
}

type sessionRepo struct {
	db *sql.DB
}

func (r *sessionRepo) Create(ctx context.Context, s SessionRow) error {
	_, err := execQ(ctx, r.db, sqlb.Insert("sessions").
		Columns("id", "user_id", "created_at").
		Values(s.ID, s.UserID, s.CreatedAt.Unix()))
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

func (r *sessionRepo) Get(ctx context.Context, id string) (*SessionRow, error) {
	var (
		s       SessionRow
		created int64
	)
	err := queryRowQ(ctx, r.db, sqlb.Select("id", "user_id", "created_at").
		From(sqlb.Table("sessions")).
		Where(entsql.EQ("id", id))).
		Scan(&s.ID, &s.UserID, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query session: %w", err)
	}
	s.CreatedAt = time.Unix(created, 0)
	return &s, nil
}

// Delete removes the session. Deleting a missing session is not an error.
func (r *sessionRepo) Delete(ctx context.Context, id string) error {
	if _, err := execQ(ctx, r.db, sqlb.Delete("sessions").Where(entsql.EQ("id", id))); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

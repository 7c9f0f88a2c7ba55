package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// User is an employee or manager account.
type User struct {
	ID        string
	Email     string
	Name      string
	Role      string
	CreatedAt time.Time
}

// UserRepo manages user accounts. Emails are stored lower-cased.
type UserRepo interface {
	Create(ctx context.Context, u *User) error
	ByID(ctx context.Context, id string) (*User, error)
	ByEmail(ctx context.Context, email string) (*User, error)
	// List returns users ordered by email; an empty role lists everyone.
	List(ctx context.Context, role string) ([]User, error)
}

type userRepo struct {
	db *sql.DB
}

var userCols = []string{"id", "email", "name", "role", "created_at"}

func (r *userRepo) Create(ctx context.Context, u *User) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	_, err := execQ(ctx, r.db, sqlb.Insert("users").
		Columns(userCols...).
		Values(u.ID, u.Email, u.Name, u.Role, u.CreatedAt.Unix()))
	if err != nil {
		return fmt.Errorf("create user %s: %w", u.Email, err)
	}
	return nil
}

func (r *userRepo) ByID(ctx context.Context, id string) (*User, error) {
	return r.one(ctx, entsql.EQ("id", id))
}

func (r *userRepo) ByEmail(ctx context.Context, email string) (*User, error) {
	return r.one(ctx, entsql.EQ("email", strings.ToLower(strings.TrimSpace(email))))
}

func (r *userRepo) one(ctx context.Context, p *entsql.Predicate) (*User, error) {
	row := queryRowQ(ctx, r.db, sqlb.Select(userCols...).From(sqlb.Table("users")).Where(p))
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}
	return u, nil
}

func (r *userRepo) List(ctx context.Context, role string) ([]User, error) {
	sel := sqlb.Select(userCols...).From(sqlb.Table("users")).OrderBy("email")
	if role != "" {
		sel.Where(entsql.EQ("role", role))
	}
	rows, err := queryQ(ctx, r.db, sel)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		out = append(out, *u)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(s scanner) (*User, error) {
	var (
		u       User
		created int64
	)
	if err := s.Scan(&u.ID, &u.Email, &u.Name, &u.Role, &created); err != nil {
		return nil, err
	}
	u.CreatedAt = time.Unix(created, 0)
	return &u, nil
}

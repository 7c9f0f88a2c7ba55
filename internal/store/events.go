package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/skilltrack/skilltrack/internal/llm"
)

// Event kinds in the audit log.
const (
	EventLogin         = "login"
	EventLogout        = "logout"
	EventNavigate      = "navigate"
	EventTaskCompleted = "task_completed"
	EventAnswerAttempt = "answer_attempt"
	EventLLMRequest    = "llm_request"
)

// Event is one audit log entry. Payload is kind-specific JSON.
type Event struct {
	Seq       int64
	ID        string
	Kind      string
	UserID    string
	CourseID  string
	Payload   json.RawMessage
	CreatedAt time.Time
}

// QueryOpts filters and paginates event queries. Results are newest first.
type QueryOpts struct {
	UserID string
	Kind   string
	Limit  int   // 0 = unlimited
	Before int64 // seq < Before when > 0
}

// AnswerAttempt is the payload of an answer_attempt event.
type AnswerAttempt struct {
	TaskID    string `json:"task_id"`
	Submitted string `json:"submitted"`
	Correct   bool   `json:"correct"`
	Error     string `json:"error,omitempty"`
}

// EventRepo appends to and reads the audit log. It also serves as the
// LLM request recorder.
type EventRepo interface {
	Append(ctx context.Context, ev Event, payload any) error
	AppendAnswerAttempt(ctx context.Context, userID, courseID string, a AnswerAttempt) error
	RecordLLMRequest(ctx context.Context, rec llm.RequestRecord) error
	Query(ctx context.Context, opts QueryOpts) ([]Event, error)
}

type eventRepo struct {
	db *sql.DB
}

func (r *eventRepo) Append(ctx context.Context, ev Event, payload any) error {
	return appendEvent(ctx, r.db, ev, payload)
}

func (r *eventRepo) AppendAnswerAttempt(ctx context.Context, userID, courseID string, a AnswerAttempt) error {
	return appendEvent(ctx, r.db, Event{Kind: EventAnswerAttempt, UserID: userID, CourseID: courseID}, a)
}

func (r *eventRepo) RecordLLMRequest(ctx context.Context, rec llm.RequestRecord) error {
	return appendEvent(ctx, r.db, Event{Kind: EventLLMRequest}, map[string]any{
		"model":         rec.Model,
		"purpose":       rec.Purpose,
		"input_tokens":  rec.InputTokens,
		"output_tokens": rec.OutputTokens,
		"latency_ms":    rec.LatencyMs,
		"success":       rec.Success,
		"error":         rec.Error,
		"prompt":        rec.Prompt,
		"output":        rec.Output,
	})
}

func appendEvent(ctx context.Context, q querier, ev Event, payload any) error {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now()
	}
	data := []byte("{}")
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal %s payload: %w", ev.Kind, err)
		}
		data = b
	}
	_, err := execQ(ctx, q, sqlb.Insert("events").
		Columns("id", "kind", "user_id", "course_id", "payload", "created_at").
		Values(ev.ID, ev.Kind, ev.UserID, ev.CourseID, string(data), ev.CreatedAt.UnixMilli()))
	if err != nil {
		return fmt.Errorf("append %s event: %w", ev.Kind, err)
	}
	return nil
}

func (r *eventRepo) Query(ctx context.Context, opts QueryOpts) ([]Event, error) {
	sel := sqlb.Select("seq", "id", "kind", "user_id", "course_id", "payload", "created_at").
		From(sqlb.Table("events")).
		OrderBy(entsql.Desc("seq"))
	var preds []*entsql.Predicate
	if opts.UserID != "" {
		preds = append(preds, entsql.EQ("user_id", opts.UserID))
	}
	if opts.Kind != "" {
		preds = append(preds, entsql.EQ("kind", opts.Kind))
	}
	if opts.Before > 0 {
		preds = append(preds, entsql.LT("seq", opts.Before))
	}
	if len(preds) > 0 {
		sel.Where(entsql.And(preds...))
	}
	if opts.Limit > 0 {
		sel.Limit(opts.Limit)
	}

	rows, err := queryQ(ctx, r.db, sel)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var (
			ev      Event
			payload string
			created int64
		)
		if err := rows.Scan(&ev.Seq, &ev.ID, &ev.Kind, &ev.UserID, &ev.CourseID, &payload, &created); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		ev.Payload = json.RawMessage(payload)
		ev.CreatedAt = time.UnixMilli(created)
		out = append(out, ev)
	}
	return out, rows.Err()
}

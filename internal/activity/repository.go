// Package activity keeps an append-only audit trail of image mutations.
// The content store stays the source of truth; nothing here is read back
// to serve image operations.
package activity

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Action names a mutating image operation.
type Action string

const (
	ActionUpload  Action = "upload"
	ActionReplace Action = "replace"
	ActionDelete  Action = "delete"
)

// Event is one recorded mutation.
type Event struct {
	ID        int64     `json:"id"`
	Action    Action    `json:"action"`
	FileName  string    `json:"file_name"`
	CDNURL    string    `json:"cdn_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Repository handles activity persistence in PostgreSQL.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new Repository with the given connection pool.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Record inserts e.
func (r *Repository) Record(ctx context.Context, e Event) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO image_events (action, file_name, cdn_url) VALUES ($1, $2, $3)`,
		string(e.Action), e.FileName, e.CDNURL,
	)
	if err != nil {
		return fmt.Errorf("record event: %w", err)
	}
	return nil
}

// Recent returns up to limit events, newest first.
func (r *Repository) Recent(ctx context.Context, limit int) ([]Event, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, action, file_name, cdn_url, created_at
		 FROM image_events
		 ORDER BY created_at DESC, id DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}

	events, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Event, error) {
		var e Event
		var action string
		err := row.Scan(&e.ID, &action, &e.FileName, &e.CDNURL, &e.CreatedAt)
		e.Action = Action(action)
		return e, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan events: %w", err)
	}
	return events, nil
}

// Discard is a recorder that drops every event. It is used when no
// database is configured.
type Discard struct{}

// Record implements the image service recorder.
func (Discard) Record(context.Context, Event) error { return nil }

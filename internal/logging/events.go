package logging

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Schema creates the session_events table. The store runs it with its own
// migrations.
const Schema = `
CREATE TABLE IF NOT EXISTS session_events (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id  TEXT NOT NULL,
	kind        TEXT NOT NULL,
	detail      TEXT,
	created_at  TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_session_events_session ON session_events(session_id, id);
`

// #region log-event
// LogEvent appends an entry to the session_events table.
func LogEvent(ctx context.Context, db *sql.DB, e Event) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	_, err := db.ExecContext(ctx,
		`INSERT INTO session_events (session_id, kind, detail, created_at)
		 VALUES (?, ?, ?, ?)`,
		e.SessionID,
		e.Kind,
		nullIfEmpty(e.Detail),
		e.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("log event: %w", err)
	}
	return nil
}

// #endregion log-event

// #region recent-events
// RecentEvents returns up to limit events for a session, oldest first.
// An empty sessionID matches every session.
func RecentEvents(ctx context.Context, db *sql.DB, sessionID string, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.QueryContext(ctx,
		`SELECT id, session_id, kind, detail, created_at FROM (
			SELECT * FROM session_events
			WHERE (? = '' OR session_id = ?)
			ORDER BY id DESC LIMIT ?
		 ) ORDER BY id ASC`,
		sessionID, sessionID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var e Event
		var detail sql.NullString
		var created string
		if err := rows.Scan(&e.ID, &e.SessionID, &e.Kind, &detail, &created); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		e.Detail = detail.String
		e.CreatedAt, err = time.Parse(time.RFC3339Nano, created)
		if err != nil {
			return nil, fmt.Errorf("parse event time: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// #endregion recent-events

// #region helpers
func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// #endregion helpers

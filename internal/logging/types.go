package logging

import "time"

// #region event
// Event is a single row in the session_events table.
type Event struct {
	ID        int64     `json:"id"`
	SessionID string    `json:"session_id"`
	Kind      string    `json:"kind"` // "scenario_loaded" | "reset" | "scorer_error"
	Detail    string    `json:"detail,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// #endregion event

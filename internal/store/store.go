package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/danielpatrickdp/chatpls/internal/gameplay"
	"github.com/danielpatrickdp/chatpls/internal/logging"
	"github.com/danielpatrickdp/chatpls/internal/scoring"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS rounds (
	round_id         TEXT PRIMARY KEY,
	session_id       TEXT NOT NULL,
	scenario_id      TEXT NOT NULL,
	model_id         TEXT NOT NULL,
	answer           TEXT NOT NULL,
	score            REAL,
	end_state        TEXT,
	end_reason       TEXT,
	components_json  TEXT NOT NULL,
	transcript_json  TEXT,
	latency_ms       INTEGER NOT NULL,
	error            TEXT,
	created_at       TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_rounds_scenario ON rounds(scenario_id, created_at);
`

// timeLayout has a fixed width so created_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// #endregion schema

// #region store-struct
// Store is the SQLite round ledger. It implements gameplay.RoundRecorder and
// gameplay.EventRecorder.
type Store struct {
	db *sql.DB
}

// #endregion store-struct

// #region constructor
// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	s, err := NewStoreWithDB(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	log.Printf("[STORE] opened %s", dbPath)
	return s, nil
}

// NewStoreWithDB runs migrations on an already open database.
func NewStoreWithDB(db *sql.DB) (*Store, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	if _, err := db.Exec(logging.Schema); err != nil {
		return nil, fmt.Errorf("migrate events: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB.
func (s *Store) DB() *sql.DB {
	return s.db
}

// #endregion constructor

// #region record-round
// RecordRound stores a finished submission.
func (s *Store) RecordRound(ctx context.Context, r gameplay.Round) error {
	_, err := s.InsertRound(ctx, r)
	return err
}

// InsertRound stores a finished submission and returns its id.
func (s *Store) InsertRound(ctx context.Context, r gameplay.Round) (string, error) {
	id := uuid.New().String()
	at := r.At
	if at.IsZero() {
		at = time.Now()
	}

	var (
		score      interface{}
		endState   interface{}
		endReason  interface{}
		transcript interface{}
		components = scoring.MakeScoreVector(0)
	)
	if r.Result != nil {
		score = r.Result.Score
		endState = string(r.Result.EndState)
		endReason = string(r.Result.EndReason)
		components = r.Result.ComponentScores
		tj, err := json.Marshal(r.Result.Transcript)
		if err != nil {
			return "", fmt.Errorf("marshal transcript: %w", err)
		}
		transcript = string(tj)
	}
	cj, err := json.Marshal(components)
	if err != nil {
		return "", fmt.Errorf("marshal components: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO rounds (round_id, session_id, scenario_id, model_id, answer, score, end_state, end_reason,
		                     components_json, transcript_json, latency_ms, error, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, r.SessionID, r.ScenarioID, r.ModelID, r.Answer, score, endState, endReason,
		string(cj), transcript, r.Latency.Milliseconds(), nullIfEmpty(r.Err),
		at.UTC().Format(timeLayout),
	)
	if err != nil {
		return "", fmt.Errorf("insert round: %w", err)
	}
	return id, nil
}

// #endregion record-round

// #region events
// RecordEvent appends to the session event log.
func (s *Store) RecordEvent(ctx context.Context, sessionID, kind, detail string) error {
	return s.LogEvent(ctx, logging.Event{SessionID: sessionID, Kind: kind, Detail: detail})
}

// LogEvent appends e to the session event log.
func (s *Store) LogEvent(ctx context.Context, e logging.Event) error {
	return logging.LogEvent(ctx, s.db, e)
}

// Events returns up to limit recent events of a session, oldest first.
func (s *Store) Events(ctx context.Context, sessionID string, limit int) ([]logging.Event, error) {
	return logging.RecentEvents(ctx, s.db, sessionID, limit)
}

// #endregion events

// #region queries
const roundColumns = `round_id, session_id, scenario_id, model_id, answer, score, end_state, end_reason,
	components_json, transcript_json, latency_ms, error, created_at`

// GetRound fetches a single round by id.
func (s *Store) GetRound(ctx context.Context, id string) (RoundRecord, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+roundColumns+` FROM rounds WHERE round_id = ?`, id)
	rec, err := scanRound(row)
	if errors.Is(err, sql.ErrNoRows) {
		return RoundRecord{}, fmt.Errorf("%w: %s", ErrRoundNotFound, id)
	}
	return rec, err
}

// ListRounds returns the most recent rounds, newest first. An empty
// scenarioID matches every scenario; limit <= 0 means 20.
func (s *Store) ListRounds(ctx context.Context, scenarioID string, limit int) ([]RoundRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+roundColumns+` FROM rounds
		 WHERE (? = '' OR scenario_id = ?)
		 ORDER BY created_at DESC, rowid DESC LIMIT ?`,
		scenarioID, scenarioID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query rounds: %w", err)
	}
	defer rows.Close()

	var out []RoundRecord
	for rows.Next() {
		rec, err := scanRound(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRound(sc scanner) (RoundRecord, error) {
	var (
		rec                  RoundRecord
		score                sql.NullFloat64
		endState, endReason  sql.NullString
		componentsJSON       string
		transcriptJSON, errS sql.NullString
		created              string
	)
	err := sc.Scan(&rec.RoundID, &rec.SessionID, &rec.ScenarioID, &rec.ModelID, &rec.Answer, &score,
		&endState, &endReason, &componentsJSON, &transcriptJSON, &rec.LatencyMs, &errS, &created)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return RoundRecord{}, err
		}
		return RoundRecord{}, fmt.Errorf("scan round: %w", err)
	}

	if score.Valid {
		v := score.Float64
		rec.Score = &v
	}
	rec.EndState = gameplay.EndState(endState.String)
	rec.EndReason = gameplay.EndReason(endReason.String)
	rec.Error = errS.String
	if err := json.Unmarshal([]byte(componentsJSON), &rec.ComponentScores); err != nil {
		return RoundRecord{}, fmt.Errorf("unmarshal components: %w", err)
	}
	if transcriptJSON.Valid {
		if err := json.Unmarshal([]byte(transcriptJSON.String), &rec.Transcript); err != nil {
			return RoundRecord{}, fmt.Errorf("unmarshal transcript: %w", err)
		}
	}
	rec.CreatedAt, err = time.Parse(timeLayout, created)
	if err != nil {
		return RoundRecord{}, fmt.Errorf("parse created_at: %w", err)
	}
	return rec, nil
}

// #endregion queries

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

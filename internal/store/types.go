package store

import (
	"errors"
	"time"

	"github.com/danielpatrickdp/chatpls/internal/gameplay"
	"github.com/danielpatrickdp/chatpls/internal/scoring"
)

// ErrRoundNotFound is returned by GetRound for an unknown id.
var ErrRoundNotFound = errors.New("round not found")

// #region round-record
// RoundRecord is one stored submission. Score is nil when the scorer failed.
type RoundRecord struct {
	RoundID         string                     `json:"round_id"`
	SessionID       string                     `json:"session_id"`
	ScenarioID      string                     `json:"scenario_id"`
	ModelID         string                     `json:"model_id"`
	Answer          string                     `json:"answer"`
	Score           *float64                   `json:"score"`
	EndState        gameplay.EndState          `json:"end_state,omitempty"`
	EndReason       gameplay.EndReason         `json:"end_reason,omitempty"`
	ComponentScores scoring.ScoreVector        `json:"component_scores"`
	Transcript      []gameplay.TranscriptEntry `json:"transcript,omitempty"`
	LatencyMs       int64                      `json:"latency_ms"`
	Error           string                     `json:"error,omitempty"`
	CreatedAt       time.Time                  `json:"created_at"`
}

// #endregion round-record

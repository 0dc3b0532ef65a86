package gameplay

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/danielpatrickdp/chatpls/internal/scoring"
)

// #region phase
// Phase is the session state machine position.
type Phase string

const (
	PhaseIdle             Phase = "idle"
	PhaseReady            Phase = "ready"
	PhaseScoring          Phase = "scoring"
	PhaseScenarioComplete Phase = "scenario_complete"
	PhaseFailed           Phase = "failed"
)

// ModelState tracks one named responder.
type ModelState string

const (
	ModelIdle    ModelState = "idle"
	ModelLoading ModelState = "loading"
	ModelDone    ModelState = "done"
	ModelError   ModelState = "error"
)

// ModelStatus is the last known state of a responder.
type ModelStatus struct {
	State     ModelState `json:"state"`
	LatencyMs int64      `json:"latency_ms,omitempty"`
	Error     string     `json:"error,omitempty"`
}

// DefaultModelID is used when SubmitAnswer gets an empty model id.
const DefaultModelID = "you"

// #endregion phase

// #region snapshot
// Snapshot is an immutable copy of session state.
type Snapshot struct {
	SessionID      string                 `json:"session_id"`
	Phase          Phase                  `json:"phase"`
	Scenario       *ScenarioConfig        `json:"scenario,omitempty"`
	ScoringWeights scoring.ScoreVector    `json:"scoring_weights"`
	LatestResult   *RunResult             `json:"latest_result,omitempty"`
	History        []RunResult            `json:"history"`
	ModelStatuses  map[string]ModelStatus `json:"model_statuses"`
}

// #endregion snapshot

// #region recorder
// Round is one submission as seen by a RoundRecorder. Result is nil when
// the scorer failed.
type Round struct {
	SessionID  string
	ScenarioID string
	ModelID    string
	Answer     string
	Result     *RunResult
	Latency    time.Duration
	Err        string
	At         time.Time
}

// RoundRecorder receives every finished submission.
type RoundRecorder interface {
	RecordRound(ctx context.Context, r Round) error
}

// EventRecorder is implemented by recorders that also keep a session event
// log. Session checks for it on the configured RoundRecorder.
type EventRecorder interface {
	RecordEvent(ctx context.Context, sessionID, kind, detail string) error
}

// Session event kinds.
const (
	EventScenarioLoaded = "scenario_loaded"
	EventReset          = "reset"
	EventScorerError    = "scorer_error"
)

// RunFunc evaluates one round. RunSingleTurn is the default.
type RunFunc func(ctx context.Context, in RunInput, scorer SemanticScorer) (RunResult, error)

// #endregion recorder

// #region session
// Session sequences scenario loading and answer submission and publishes
// derived views to subscribers after every state change.
type Session struct {
	id       string
	scorer   SemanticScorer
	run      RunFunc
	now      func() time.Time
	recorder RoundRecorder

	mu         sync.Mutex
	phase      Phase
	scenario   *ScenarioConfig
	weights    scoring.ScoreVector
	latest     *RunResult
	history    []RunResult
	statuses   map[string]ModelStatus
	modelLocks map[string]*sync.Mutex
	subs       map[int]func(Views)
	nextSub    int

	notifyMu sync.Mutex
}

// Option configures a Session.
type Option func(*Session)

// WithRunner replaces the round evaluator.
func WithRunner(run RunFunc) Option {
	return func(s *Session) { s.run = run }
}

// WithClock replaces time.Now for latency measurement.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithRecorder attaches a sink for finished rounds.
func WithRecorder(r RoundRecorder) Option {
	return func(s *Session) { s.recorder = r }
}

// NewSession creates an idle session scoring with weights and scorer.
func NewSession(weights scoring.ScoreVector, scorer SemanticScorer, opts ...Option) *Session {
	s := &Session{
		id:         uuid.New().String(),
		scorer:     scorer,
		run:        RunSingleTurn,
		now:        time.Now,
		phase:      PhaseIdle,
		weights:    weights,
		statuses:   make(map[string]ModelStatus),
		modelLocks: make(map[string]*sync.Mutex),
		subs:       make(map[int]func(Views)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// #endregion session

// #region load-scenario
// LoadScenario makes sc the active scenario and clears the latest result.
func (s *Session) LoadScenario(sc ScenarioConfig) {
	s.mu.Lock()
	s.phase = PhaseReady
	s.scenario = &sc
	s.latest = nil
	s.mu.Unlock()

	log.Printf("[SESSION] %s loaded scenario %s", s.id, sc.ID)
	s.notify()
	s.event(context.Background(), EventScenarioLoaded, sc.ID)
}

// #endregion load-scenario

// #region submit-answer
// SubmitAnswer scores answer for modelID against the loaded scenario.
// Submissions for the same model id are serialized; different ids run
// independently. Scorer errors are recorded on the model status and returned.
func (s *Session) SubmitAnswer(ctx context.Context, answer, modelID string) (RunResult, error) {
	if modelID == "" {
		modelID = DefaultModelID
	}
	lock := s.modelLock(modelID)
	lock.Lock()
	defer lock.Unlock()

	s.mu.Lock()
	if s.scenario == nil {
		s.mu.Unlock()
		return RunResult{}, ErrNoScenarioLoaded
	}
	scenario := *s.scenario
	weights := s.weights
	startedAt := s.now()
	s.phase = PhaseScoring
	s.statuses[modelID] = ModelStatus{State: ModelLoading}
	s.mu.Unlock()
	s.notify()

	result, err := s.run(ctx, RunInput{
		Scenario:       scenario,
		PlayerAnswer:   answer,
		ScoringWeights: weights,
	}, s.scorer)

	latency := s.now().Sub(startedAt)
	if latency < 0 {
		latency = 0
	}

	round := Round{
		SessionID:  s.id,
		ScenarioID: scenario.ID,
		ModelID:    modelID,
		Answer:     answer,
		Latency:    latency,
		At:         startedAt,
	}

	s.mu.Lock()
	if err != nil {
		s.phase = PhaseFailed
		s.statuses[modelID] = ModelStatus{State: ModelError, LatencyMs: latency.Milliseconds(), Error: err.Error()}
		round.Err = err.Error()
	} else {
		if result.EndState == EndStateCompleted {
			s.phase = PhaseScenarioComplete
		} else {
			s.phase = PhaseFailed
		}
		s.latest = &result
		s.history = append(s.history, result)
		s.statuses[modelID] = ModelStatus{State: ModelDone, LatencyMs: latency.Milliseconds()}
		round.Result = &result
	}
	s.mu.Unlock()

	if err != nil {
		log.Printf("[SESSION] %s model=%s scenario=%s error after %s: %v", s.id, modelID, scenario.ID, latency, err)
	} else {
		log.Printf("[SESSION] %s model=%s scenario=%s score=%.2f end=%s/%s latency=%s",
			s.id, modelID, scenario.ID, result.Score, result.EndState, result.EndReason, latency)
	}
	s.notify()
	s.record(ctx, round)
	if err != nil {
		s.event(ctx, EventScorerError, err.Error())
	}

	if err != nil {
		return RunResult{}, err
	}
	return result, nil
}

func (s *Session) modelLock(modelID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.modelLocks[modelID]
	if !ok {
		l = &sync.Mutex{}
		s.modelLocks[modelID] = l
	}
	return l
}

func (s *Session) record(ctx context.Context, r Round) {
	if s.recorder == nil {
		return
	}
	if err := s.recorder.RecordRound(ctx, r); err != nil {
		log.Printf("[SESSION] %s failed to record round: %v", s.id, err)
	}
}

func (s *Session) event(ctx context.Context, kind, detail string) {
	er, ok := s.recorder.(EventRecorder)
	if !ok {
		return
	}
	if err := er.RecordEvent(ctx, s.id, kind, detail); err != nil {
		log.Printf("[SESSION] %s failed to record %s event: %v", s.id, kind, err)
	}
}

// #endregion submit-answer

// #region reset
// Reset returns the session to idle and forgets scenario, history and statuses.
func (s *Session) Reset() {
	s.mu.Lock()
	s.phase = PhaseIdle
	s.scenario = nil
	s.latest = nil
	s.history = nil
	s.statuses = make(map[string]ModelStatus)
	s.mu.Unlock()

	log.Printf("[SESSION] %s reset", s.id)
	s.notify()
	s.event(context.Background(), EventReset, "")
}

// #endregion reset

// #region snapshot-views
// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	snap := Snapshot{
		SessionID:      s.id,
		Phase:          s.phase,
		ScoringWeights: s.weights,
		History:        append([]RunResult(nil), s.history...),
		ModelStatuses:  make(map[string]ModelStatus, len(s.statuses)),
	}
	if s.scenario != nil {
		sc := *s.scenario
		snap.Scenario = &sc
	}
	if s.latest != nil {
		r := *s.latest
		snap.LatestResult = &r
	}
	for id, st := range s.statuses {
		snap.ModelStatuses[id] = st
	}
	return snap
}

// Views derives the panel view models from the current state.
func (s *Session) Views() Views {
	return DeriveViews(s.Snapshot())
}

// #endregion snapshot-views

// #region subscribe
// Subscribe registers fn to receive views after every state change. fn is
// called synchronously and must not mutate the session. The returned func
// removes the subscription.
func (s *Session) Subscribe(fn func(Views)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// notify publishes the state as of notification time, so the last
// notification always carries the latest state.
func (s *Session) notify() {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	if len(s.subs) == 0 {
		s.mu.Unlock()
		return
	}
	snap := s.snapshotLocked()
	subs := make([]func(Views), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	views := DeriveViews(snap)
	for _, fn := range subs {
		fn(views)
	}
}

// #endregion subscribe

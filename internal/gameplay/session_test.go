package gameplay

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func steppingClock(step time.Duration) func() time.Time {
	var mu sync.Mutex
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(step)
		return now
	}
}

type memRecorder struct {
	mu     sync.Mutex
	rounds []Round
}

func (m *memRecorder) RecordRound(ctx context.Context, r Round) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rounds = append(m.rounds, r)
	return nil
}

func TestSessionFlow(t *testing.T) {
	rec := &memRecorder{}
	s := NewSession(balancedWeights(t), &fakeScorer{value: 0.8},
		WithClock(steppingClock(25*time.Millisecond)),
		WithRecorder(rec))

	var views []Views
	var mu sync.Mutex
	cancel := s.Subscribe(func(v Views) {
		mu.Lock()
		views = append(views, v)
		mu.Unlock()
	})
	defer cancel()

	if got := s.Snapshot().Phase; got != PhaseIdle {
		t.Fatalf("initial phase = %s, want idle", got)
	}

	s.LoadScenario(DemoGreetingScenario())
	if got := s.Snapshot().Phase; got != PhaseReady {
		t.Fatalf("phase after load = %s, want ready", got)
	}

	res, err := s.SubmitAnswer(context.Background(), "Hey! Doing well, thanks. How can I help today?", "")
	if err != nil {
		t.Fatalf("SubmitAnswer: %v", err)
	}
	if res.Score < 70 {
		t.Errorf("score = %v, want >= 70", res.Score)
	}

	snap := s.Snapshot()
	if snap.Phase != PhaseScenarioComplete {
		t.Errorf("phase = %s, want scenario_complete", snap.Phase)
	}
	if len(snap.History) != 1 || snap.LatestResult == nil {
		t.Fatalf("history=%d latest=%v", len(snap.History), snap.LatestResult)
	}
	st, ok := snap.ModelStatuses[DefaultModelID]
	if !ok || st.State != ModelDone {
		t.Fatalf("status = %+v, want done", st)
	}
	if st.LatencyMs < 25 {
		t.Errorf("latency = %dms, want >= 25", st.LatencyMs)
	}

	mu.Lock()
	defer mu.Unlock()
	// load, scoring, done
	if len(views) != 3 {
		t.Fatalf("expected 3 notifications, got %d", len(views))
	}
	if views[1].Right.ModelStatuses[DefaultModelID].State != ModelLoading {
		t.Errorf("second notification should show loading: %+v", views[1].Right.ModelStatuses)
	}
	last := views[2]
	if last.Left.CompletedCount != 1 || last.Left.ScenarioID != "demo-greeting-001" {
		t.Errorf("left panel = %+v", last.Left)
	}
	if last.Right.LatestScore == nil || *last.Right.LatestScore != res.Score {
		t.Errorf("right panel score = %v, want %v", last.Right.LatestScore, res.Score)
	}

	if len(rec.rounds) != 1 || rec.rounds[0].Result == nil || rec.rounds[0].ModelID != DefaultModelID {
		t.Errorf("recorded rounds = %+v", rec.rounds)
	}
}

func TestSessionSubmitWithoutScenario(t *testing.T) {
	scorer := &fakeScorer{value: 1}
	s := NewSession(balancedWeights(t), scorer)

	_, err := s.SubmitAnswer(context.Background(), "hello", "you")
	if !errors.Is(err, ErrNoScenarioLoaded) {
		t.Fatalf("expected ErrNoScenarioLoaded, got %v", err)
	}
	snap := s.Snapshot()
	if snap.Phase != PhaseIdle || len(snap.ModelStatuses) != 0 || len(snap.History) != 0 {
		t.Errorf("state must be untouched: %+v", snap)
	}
	if scorer.calls.Load() != 0 {
		t.Error("scorer must not be called")
	}
}

func TestSessionScorerFailure(t *testing.T) {
	rec := &memRecorder{}
	s := NewSession(balancedWeights(t), &fakeScorer{err: errors.New("timeout")}, WithRecorder(rec))
	s.LoadScenario(DemoGreetingScenario())

	_, err := s.SubmitAnswer(context.Background(), "Hi there, how can I help?", "gpt")
	if !errors.Is(err, ErrScorerFailure) {
		t.Fatalf("expected ErrScorerFailure, got %v", err)
	}

	snap := s.Snapshot()
	if snap.Phase != PhaseFailed {
		t.Errorf("phase = %s, want failed", snap.Phase)
	}
	st := snap.ModelStatuses["gpt"]
	if st.State != ModelError || st.Error == "" {
		t.Errorf("status = %+v, want error with message", st)
	}
	if len(snap.History) != 0 || snap.LatestResult != nil {
		t.Errorf("failed scoring must not add history")
	}
	if len(rec.rounds) != 1 || rec.rounds[0].Result != nil || rec.rounds[0].Err == "" {
		t.Errorf("recorded rounds = %+v", rec.rounds)
	}
}

func TestSessionEmptyAnswerFails(t *testing.T) {
	s := NewSession(balancedWeights(t), &fakeScorer{value: 1})
	s.LoadScenario(DemoGreetingScenario())

	res, err := s.SubmitAnswer(context.Background(), "", "you")
	if err != nil {
		t.Fatalf("SubmitAnswer: %v", err)
	}
	if res.EndReason != EndReasonInvalidOutput {
		t.Errorf("end reason = %s", res.EndReason)
	}
	snap := s.Snapshot()
	if snap.Phase != PhaseFailed || len(snap.History) != 1 {
		t.Errorf("phase=%s history=%d, want failed/1", snap.Phase, len(snap.History))
	}
	if snap.ModelStatuses["you"].State != ModelDone {
		t.Errorf("status = %+v, want done", snap.ModelStatuses["you"])
	}
}

func TestSessionLoadKeepsHistoryResetClears(t *testing.T) {
	s := NewSession(balancedWeights(t), &fakeScorer{value: 0.5})
	s.LoadScenario(DemoGreetingScenario())
	if _, err := s.SubmitAnswer(context.Background(), "Hello! Happy to help.", "you"); err != nil {
		t.Fatalf("SubmitAnswer: %v", err)
	}

	s.LoadScenario(DemoGreetingScenario())
	snap := s.Snapshot()
	if snap.LatestResult != nil {
		t.Error("load should clear the latest result")
	}
	if len(snap.History) != 1 {
		t.Errorf("load should keep history, got %d", len(snap.History))
	}
	if snap.Phase != PhaseReady {
		t.Errorf("phase = %s, want ready", snap.Phase)
	}

	s.Reset()
	snap = s.Snapshot()
	if snap.Phase != PhaseIdle || snap.Scenario != nil || len(snap.History) != 0 || len(snap.ModelStatuses) != 0 {
		t.Errorf("reset left state behind: %+v", snap)
	}
	if _, err := s.SubmitAnswer(context.Background(), "Hi", "you"); !errors.Is(err, ErrNoScenarioLoaded) {
		t.Errorf("expected ErrNoScenarioLoaded after reset, got %v", err)
	}
}

func TestSessionDifferentModelsRunConcurrently(t *testing.T) {
	var started sync.WaitGroup
	started.Add(2)
	release := make(chan struct{})

	runner := func(ctx context.Context, in RunInput, scorer SemanticScorer) (RunResult, error) {
		started.Done()
		<-release
		return RunSingleTurn(ctx, in, scorer)
	}
	s := NewSession(balancedWeights(t), &fakeScorer{value: 0.5}, WithRunner(runner))
	s.LoadScenario(DemoGreetingScenario())

	var wg sync.WaitGroup
	for _, id := range []string{"alpha", "beta"} {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			if _, err := s.SubmitAnswer(context.Background(), "Hello, how can I help?", id); err != nil {
				t.Errorf("%s: %v", id, err)
			}
		}(id)
	}

	both := make(chan struct{})
	go func() {
		started.Wait()
		close(both)
	}()
	select {
	case <-both:
	case <-time.After(2 * time.Second):
		close(release)
		t.Fatal("different models did not run concurrently")
	}

	snap := s.Snapshot()
	for _, id := range []string{"alpha", "beta"} {
		if snap.ModelStatuses[id].State != ModelLoading {
			t.Errorf("%s status = %+v, want loading", id, snap.ModelStatuses[id])
		}
	}
	close(release)
	wg.Wait()

	snap = s.Snapshot()
	if len(snap.History) != 2 {
		t.Fatalf("history = %d, want 2", len(snap.History))
	}
	for _, id := range []string{"alpha", "beta"} {
		if snap.ModelStatuses[id].State != ModelDone {
			t.Errorf("%s status = %+v, want done", id, snap.ModelStatuses[id])
		}
	}
}

func TestSessionSameModelSerialized(t *testing.T) {
	var inFlight, peak atomic.Int32
	runner := func(ctx context.Context, in RunInput, scorer SemanticScorer) (RunResult, error) {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		inFlight.Add(-1)
		return RunSingleTurn(ctx, in, scorer)
	}
	s := NewSession(balancedWeights(t), &fakeScorer{value: 0.5}, WithRunner(runner))
	s.LoadScenario(DemoGreetingScenario())

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.SubmitAnswer(context.Background(), "Hello!", "same"); err != nil {
				t.Errorf("SubmitAnswer: %v", err)
			}
		}()
	}
	wg.Wait()

	if p := peak.Load(); p != 1 {
		t.Errorf("peak in-flight = %d, want 1", p)
	}
	if n := len(s.Snapshot().History); n != 5 {
		t.Errorf("history = %d, want 5", n)
	}
}

func TestSessionUnsubscribe(t *testing.T) {
	s := NewSession(balancedWeights(t), &fakeScorer{value: 0.5})
	var calls atomic.Int32
	cancel := s.Subscribe(func(Views) { calls.Add(1) })

	s.LoadScenario(DemoGreetingScenario())
	cancel()
	s.Reset()

	if n := calls.Load(); n != 1 {
		t.Errorf("calls = %d, want 1", n)
	}
}

func TestSnapshotIsolation(t *testing.T) {
	s := NewSession(balancedWeights(t), &fakeScorer{value: 0.5})
	s.LoadScenario(DemoGreetingScenario())
	if _, err := s.SubmitAnswer(context.Background(), "Hello!", "you"); err != nil {
		t.Fatalf("SubmitAnswer: %v", err)
	}

	snap := s.Snapshot()
	snap.History[0].Score = -1
	snap.ModelStatuses["you"] = ModelStatus{State: ModelError}
	snap.Scenario.ID = "mutated"

	again := s.Snapshot()
	if again.History[0].Score == -1 || again.ModelStatuses["you"].State != ModelDone || again.Scenario.ID == "mutated" {
		t.Error("snapshot mutation leaked into the session")
	}
}

package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielpatrickdp/chatpls/internal/gameplay"
	"github.com/danielpatrickdp/chatpls/internal/scoring"
	"github.com/danielpatrickdp/chatpls/internal/semantic"
)

func tempDB(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleResult() *gameplay.RunResult {
	return &gameplay.RunResult{
		Score:           87.5,
		ComponentScores: scoring.MakeScoreVector(0).With(scoring.Semantic, 0.9).With(scoring.System, 1),
		EndState:        gameplay.EndStateCompleted,
		EndReason:       gameplay.EndReasonAnswered,
		TurnsCompleted:  1,
		Transcript: []gameplay.TranscriptEntry{
			{Role: gameplay.RoleSystem, Content: "sys"},
			{Role: gameplay.RoleUser, Content: "hey"},
			{Role: gameplay.RoleAssistant, Content: "Hi! How can I help?"},
		},
	}
}

func TestInsertAndGetRound(t *testing.T) {
	s := tempDB(t)
	ctx := context.Background()
	at := time.Date(2026, 3, 1, 12, 0, 0, 500, time.UTC)

	id, err := s.InsertRound(ctx, gameplay.Round{
		SessionID:  "sess",
		ScenarioID: "demo-greeting-001",
		ModelID:    "you",
		Answer:     "Hi! How can I help?",
		Result:     sampleResult(),
		Latency:    42 * time.Millisecond,
		At:         at,
	})
	if err != nil {
		t.Fatalf("InsertRound: %v", err)
	}
	if id == "" {
		t.Fatal("expected non-empty round ID")
	}

	rec, err := s.GetRound(ctx, id)
	if err != nil {
		t.Fatalf("GetRound: %v", err)
	}
	if rec.Score == nil || *rec.Score != 87.5 {
		t.Errorf("score = %v", rec.Score)
	}
	if rec.EndState != gameplay.EndStateCompleted || rec.EndReason != gameplay.EndReasonAnswered {
		t.Errorf("end = %s/%s", rec.EndState, rec.EndReason)
	}
	if rec.ComponentScores.Get(scoring.Semantic) != 0.9 {
		t.Errorf("components = %v", rec.ComponentScores)
	}
	if len(rec.Transcript) != 3 || rec.Transcript[2].Content != "Hi! How can I help?" {
		t.Errorf("transcript = %+v", rec.Transcript)
	}
	if rec.LatencyMs != 42 || !rec.CreatedAt.Equal(at) {
		t.Errorf("latency=%d created=%s", rec.LatencyMs, rec.CreatedAt)
	}
}

func TestRecordFailedRound(t *testing.T) {
	s := tempDB(t)
	ctx := context.Background()

	id, err := s.InsertRound(ctx, gameplay.Round{
		SessionID: "sess", ScenarioID: "demo", ModelID: "gpt", Answer: "x", Err: "semantic scorer failed: timeout",
	})
	if err != nil {
		t.Fatalf("InsertRound: %v", err)
	}
	rec, err := s.GetRound(ctx, id)
	if err != nil {
		t.Fatalf("GetRound: %v", err)
	}
	if rec.Score != nil || rec.EndState != "" || rec.Error == "" || rec.Transcript != nil {
		t.Errorf("failed round = %+v", rec)
	}
	if rec.ComponentScores != scoring.MakeScoreVector(0) {
		t.Errorf("components should be zero: %v", rec.ComponentScores)
	}
}

func TestGetRoundNotFound(t *testing.T) {
	s := tempDB(t)
	if _, err := s.GetRound(context.Background(), "nope"); !errors.Is(err, ErrRoundNotFound) {
		t.Fatalf("expected ErrRoundNotFound, got %v", err)
	}
}

func TestListRounds(t *testing.T) {
	s := tempDB(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	for i, sc := range []string{"a", "b", "a", "a"} {
		_, err := s.InsertRound(ctx, gameplay.Round{
			SessionID: "s", ScenarioID: sc, ModelID: "you", Answer: string(rune('w' + i)),
			Result: sampleResult(), At: base.Add(time.Duration(i) * time.Second),
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	all, err := s.ListRounds(ctx, "", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 4 || all[0].Answer != "z" {
		t.Fatalf("expected newest first, got %d rounds starting %q", len(all), all[0].Answer)
	}

	onlyA, _ := s.ListRounds(ctx, "a", 2)
	if len(onlyA) != 2 || onlyA[0].Answer != "z" || onlyA[1].Answer != "y" {
		t.Fatalf("filtered = %+v", onlyA)
	}
}

func TestSessionRecordsIntoStore(t *testing.T) {
	s := tempDB(t)
	ctx := context.Background()
	w, _ := scoring.PresetWeights(scoring.PresetBalanced)

	sess := gameplay.NewSession(w, semantic.Fixed{Value: 0.8}, gameplay.WithRecorder(s))
	sess.LoadScenario(gameplay.DemoGreetingScenario())
	if _, err := sess.SubmitAnswer(ctx, "Hey! Doing well, thanks. How can I help today?", ""); err != nil {
		t.Fatalf("SubmitAnswer: %v", err)
	}
	sess.Reset()

	rounds, err := s.ListRounds(ctx, "demo-greeting-001", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(rounds) != 1 || rounds[0].SessionID != sess.ID() || rounds[0].ModelID != gameplay.DefaultModelID {
		t.Fatalf("rounds = %+v", rounds)
	}

	events, err := s.Events(ctx, sess.ID(), 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 2 || events[0].Kind != gameplay.EventScenarioLoaded || events[1].Kind != gameplay.EventReset {
		t.Fatalf("events = %+v", events)
	}
}

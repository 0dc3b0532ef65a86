package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/danielpatrickdp/chatpls/internal/scoring"
	"github.com/danielpatrickdp/chatpls/internal/store"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to chatpls.db")
	last := flag.Int("last", 20, "show N most recent rounds")
	round := flag.String("round", "", "show single round detail")
	scenario := flag.String("scenario", "", "filter rounds to one scenario id")
	events := flag.String("events", "", "show the event log of a session id (\"all\" for every session)")
	jsonOut := flag.Bool("json", false, "output as JSON instead of table")
	flag.Parse()

	if *dbPath == "" {
		fmt.Fprintln(os.Stderr, "usage: inspect --db path/to/chatpls.db [--last N] [--round id] [--scenario id] [--events session|all] [--json]")
		os.Exit(2)
	}

	st, err := store.NewStore(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()

	ctx := context.Background()
	switch {
	case *round != "":
		err = runDetailMode(ctx, st, *round, *jsonOut)
	case *events != "":
		err = runEventsMode(ctx, st, *events, *last, *jsonOut)
	default:
		err = runListMode(ctx, st, *scenario, *last, *jsonOut)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region list-mode

type listRow struct {
	RoundID    string   `json:"round_id"`
	ScenarioID string   `json:"scenario_id"`
	ModelID    string   `json:"model_id"`
	Score      *float64 `json:"score"`
	End        string   `json:"end"`
	LatencyMs  int64    `json:"latency_ms"`
	CreatedAt  string   `json:"created_at"`
}

func runListMode(ctx context.Context, st *store.Store, scenarioID string, last int, jsonOut bool) error {
	recs, err := st.ListRounds(ctx, scenarioID, last)
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		fmt.Fprintln(os.Stderr, "no rounds found")
		return nil
	}

	// Store returns DESC, reverse for chronological
	rows := make([]listRow, len(recs))
	for i, r := range recs {
		end := "error"
		if r.Error == "" {
			end = fmt.Sprintf("%s/%s", r.EndState, r.EndReason)
		}
		rows[len(recs)-1-i] = listRow{
			RoundID:    r.RoundID,
			ScenarioID: r.ScenarioID,
			ModelID:    r.ModelID,
			Score:      r.Score,
			End:        end,
			LatencyMs:  r.LatencyMs,
			CreatedAt:  r.CreatedAt.Format("2006-01-02T15:04:05Z"),
		}
	}

	if jsonOut {
		return printJSON(rows)
	}
	fmt.Printf("%-10s  %-22s  %-8s  %6s  %-22s  %7s  %s\n",
		"Round", "Scenario", "Model", "Score", "End", "Latency", "Time")
	fmt.Printf("%-10s+-%-22s+-%-8s+-%6s+-%-22s+-%7s+-%s\n",
		"----------", "----------------------", "--------", "------", "----------------------", "-------", "--------------------")
	for _, r := range rows {
		score := "-"
		if r.Score != nil {
			score = fmt.Sprintf("%.2f", *r.Score)
		}
		fmt.Printf("%-10s  %-22s  %-8s  %6s  %-22s  %5dms  %s\n",
			shortID(r.RoundID), r.ScenarioID, r.ModelID, score, r.End, r.LatencyMs, r.CreatedAt)
	}
	return nil
}

// #endregion list-mode

// #region detail-mode

func runDetailMode(ctx context.Context, st *store.Store, roundID string, jsonOut bool) error {
	r, err := st.GetRound(ctx, roundID)
	if err != nil {
		return err
	}
	if jsonOut {
		return printJSON(r)
	}

	fmt.Printf("Round:    %s\n", r.RoundID)
	fmt.Printf("Session:  %s\n", r.SessionID)
	fmt.Printf("Scenario: %s  Model: %s\n", r.ScenarioID, r.ModelID)
	fmt.Printf("Created:  %s  Latency: %dms\n", r.CreatedAt.Format("2006-01-02T15:04:05Z"), r.LatencyMs)
	if r.Error != "" || r.Score == nil {
		fmt.Printf("Error:    %s\n", r.Error)
		return nil
	}
	fmt.Printf("Score:    %.2f  (%s/%s)\n\n", *r.Score, r.EndState, r.EndReason)

	fmt.Println("Components:")
	for _, c := range scoring.Components() {
		fmt.Printf("  %-12s %.3f\n", c, r.ComponentScores[c])
	}
	fmt.Println("\nTranscript:")
	for _, e := range r.Transcript {
		fmt.Printf("  %-9s %s\n", e.Role+":", e.Content)
	}
	return nil
}

// #endregion detail-mode

// #region events-mode

func runEventsMode(ctx context.Context, st *store.Store, sessionID string, last int, jsonOut bool) error {
	if sessionID == "all" {
		sessionID = ""
	}
	evs, err := st.Events(ctx, sessionID, last)
	if err != nil {
		return err
	}
	if jsonOut {
		return printJSON(evs)
	}
	for _, e := range evs {
		fmt.Printf("%s  %-10s  %-16s  %s\n", e.CreatedAt.Format("2006-01-02T15:04:05Z"), shortID(e.SessionID), e.Kind, e.Detail)
	}
	return nil
}

// #endregion events-mode

// #region output

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// #endregion output

package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/danielpatrickdp/chatpls/internal/gameplay"
	"github.com/danielpatrickdp/chatpls/internal/replay"
	"github.com/danielpatrickdp/chatpls/internal/scoring"
	"github.com/danielpatrickdp/chatpls/internal/store"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to chatpls.db (DB mode)")
	fixturePath := flag.String("fixture", "", "path to fixture JSON (fixture mode)")
	scenarioPath := flag.String("scenario", "", "scenario file for DB mode (default: demo greeting)")
	preset := flag.String("weights", string(scoring.PresetBalanced), "weight preset for DB mode")
	limit := flag.Int("limit", 200, "max rounds to replay in DB mode")
	tolerance := flag.Float64("tolerance", 0.01, "allowed score drift in DB mode")
	flag.Parse()

	if (*dbPath == "" && *fixturePath == "") || (*dbPath != "" && *fixturePath != "") {
		fmt.Fprintln(os.Stderr, "usage: replay --db path/to/chatpls.db [--scenario file] [--weights preset]")
		fmt.Fprintln(os.Stderr, "       replay --fixture path/to/fixture.json")
		os.Exit(2)
	}

	var exitCode int
	if *fixturePath != "" {
		exitCode = runFixtureMode(*fixturePath)
	} else {
		exitCode = runDBMode(*dbPath, *scenarioPath, scoring.Preset(*preset), *limit, *tolerance)
	}
	os.Exit(exitCode)
}

// #endregion main

// #region db-extract

// runDBMode re-scores recorded rounds with their recorded semantic
// component pinned, so any divergence comes from rules or weights.
func runDBMode(dbPath, scenarioPath string, preset scoring.Preset, limit int, tolerance float64) int {
	sc := gameplay.DemoGreetingScenario()
	if scenarioPath != "" {
		var err error
		sc, err = gameplay.LoadScenarioFile(scenarioPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "load scenario: %v\n", err)
			return 2
		}
	}
	weights, ok := scoring.PresetWeights(preset)
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown preset %q\n", preset)
		return 2
	}

	st, err := store.NewStore(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		return 2
	}
	defer st.Close()

	ctx := context.Background()
	recs, err := st.ListRounds(ctx, sc.ID, limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "list rounds: %v\n", err)
		return 2
	}

	var (
		rounds   []replay.Round
		expected []replay.Expectation
	)
	// ListRounds is newest first
	for i := len(recs) - 1; i >= 0; i-- {
		r := recs[i]
		if r.Score == nil {
			continue
		}
		rounds = append(rounds, toRound(r))
		expected = append(expected, replay.Expectation{
			RoundID:  r.RoundID,
			Action:   fmt.Sprintf("%s/%s", r.EndState, r.EndReason),
			MinScore: *r.Score - tolerance,
			MaxScore: *r.Score + tolerance,
		})
	}
	if len(rounds) == 0 {
		fmt.Fprintf(os.Stderr, "no scored rounds found for scenario %s\n", sc.ID)
		return 2
	}

	config := replay.DefaultReplayConfig()
	config.Weights = weights
	results := replay.Replay(ctx, sc, rounds, config)
	return printComparison(results, expected)
}

// toRound recovers the raw similarity from the stored semantic component.
func toRound(r store.RoundRecord) replay.Round {
	rd := replay.Round{RoundID: r.RoundID, Answer: r.Answer}
	if r.EndReason != gameplay.EndReasonInvalidOutput {
		sim := r.ComponentScores[scoring.Semantic]*2 - 1
		rd.Similarity = &sim
	}
	return rd
}

// #endregion db-extract

// #region output

func runFixtureMode(path string) int {
	f, err := replay.LoadFixture(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load fixture: %v\n", err)
		return 2
	}

	results := replay.Replay(context.Background(), f.ScenarioConfig(), f.ToRounds(), f.ReplayConfig())
	code := printComparison(results, f.Expectations())

	if f.Walk != nil {
		path, err := replay.WalkFixture(f.Walk)
		if err != nil {
			fmt.Printf("\nWalk %s: error: %v\n", f.Walk.LevelID, err)
			return 1
		}
		match := len(path) == len(f.Walk.ExpectedPath)
		for i := 0; match && i < len(path); i++ {
			match = path[i] == f.Walk.ExpectedPath[i]
		}
		fmt.Printf("\nWalk %s: expected %v, replayed %v", f.Walk.LevelID, f.Walk.ExpectedPath, path)
		if !match {
			fmt.Println(" DIFF")
			return 1
		}
		fmt.Println(" OK")
	}
	return code
}

// printComparison outputs a comparison table and returns exit code.
func printComparison(results []replay.ReplayResult, expected []replay.Expectation) int {
	fmt.Printf("%-38s| %-24s| %-24s| %-8s| %s\n", "Round", "Expected", "Replayed", "Score", "Match")
	fmt.Printf("%-38s+%-25s+%-25s+%-9s+%s\n",
		"--------------------------------------", "-------------------------", "-------------------------", "---------", "------")

	matches := 0
	total := len(results)
	if len(expected) < total {
		total = len(expected)
	}

	for i := 0; i < total; i++ {
		r := results[i]
		e := expected[i]
		match := "DIFF"
		if e.Matches(r) {
			match = "OK"
			matches++
		}
		fmt.Printf("%-38s| %-24s| %-24s| %-8.2f| %s\n", r.RoundID, e.Action, r.Action(), r.Score, match)
	}

	diverge := total - matches
	sum := replay.Summarize(results)
	fmt.Printf("\nSummary: %d total, %d match, %d diverge (mean score %.2f, %d errors)\n",
		total, matches, diverge, sum.MeanScore, sum.Errors)

	if diverge > 0 {
		return 1
	}
	return 0
}

// #endregion output

package main

import (
	"context"
	"encoding/json"
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
	dbPath := flag.String("db", "", "path to chatpls.db")
	scenarioPath := flag.String("scenario", "", "scenario file the rounds were played on (default: demo greeting)")
	preset := flag.String("weights", string(scoring.PresetBalanced), "weight preset the rounds were scored with")
	last := flag.Int("last", 4, "number of most recent scored rounds to export")
	tolerance := flag.Float64("tolerance", 0.5, "score range half-width in the exported expectations")
	outPath := flag.String("out", "", "output fixture JSON path")
	flag.Parse()

	if *dbPath == "" || *outPath == "" {
		fmt.Fprintln(os.Stderr, "usage: fixture-export --db path/to/db --out path/to/fixture.json [--scenario file] [--last N]")
		os.Exit(2)
	}

	if err := run(*dbPath, *scenarioPath, scoring.Preset(*preset), *last, *tolerance, *outPath); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region extract

func run(dbPath, scenarioPath string, preset scoring.Preset, last int, tolerance float64, outPath string) error {
	sc := gameplay.DemoGreetingScenario()
	embed := false
	if scenarioPath != "" {
		var err error
		if sc, err = gameplay.LoadScenarioFile(scenarioPath); err != nil {
			return fmt.Errorf("load scenario: %w", err)
		}
		embed = true
	}

	st, err := store.NewStore(dbPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer st.Close()

	recs, err := st.ListRounds(context.Background(), sc.ID, last*4)
	if err != nil {
		return fmt.Errorf("list rounds: %w", err)
	}

	// newest first; keep the last N scored rounds in chronological order
	var picked []store.RoundRecord
	for _, r := range recs {
		if r.Score == nil {
			continue
		}
		picked = append(picked, r)
		if len(picked) == last {
			break
		}
	}
	if len(picked) == 0 {
		return fmt.Errorf("no scored rounds for scenario %s", sc.ID)
	}

	f := replay.Fixture{
		Description: fmt.Sprintf("Exported %d round(s) of %s from %s", len(picked), sc.ID, dbPath),
		Preset:      preset,
	}
	if embed {
		f.Scenario = &sc
	}
	for i := len(picked) - 1; i >= 0; i-- {
		r := picked[i]
		fr := replay.FixtureRound{RoundID: r.RoundID, Answer: r.Answer}
		if r.EndReason != gameplay.EndReasonInvalidOutput {
			sim := r.ComponentScores[scoring.Semantic]*2 - 1
			fr.Similarity = &sim
		}
		exp := replay.FixtureExpectedResult{
			RoundID: r.RoundID,
			Action:  fmt.Sprintf("%s/%s", r.EndState, r.EndReason),
		}
		if *r.Score > 0 {
			exp.MinScore = scoring.Clamp01((*r.Score-tolerance)/100) * 100
			exp.MaxScore = scoring.Clamp01((*r.Score+tolerance)/100) * 100
		}
		f.Rounds = append(f.Rounds, fr)
		f.ExpectedResults = append(f.ExpectedResults, exp)
	}

	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal fixture: %w", err)
	}
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		return fmt.Errorf("write fixture: %w", err)
	}
	fmt.Printf("Wrote %d rounds to %s\n", len(f.Rounds), outPath)
	return nil
}

// #endregion extract

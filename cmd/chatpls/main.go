package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/danielpatrickdp/chatpls/internal/config"
	"github.com/danielpatrickdp/chatpls/internal/gameplay"
	"github.com/danielpatrickdp/chatpls/internal/scoring"
	"github.com/danielpatrickdp/chatpls/internal/store"
)

// #region main
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	st, err := store.NewStore(cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}
	defer st.Close()

	scorer, closeScorer, err := config.BuildScorer(context.Background(), cfg)
	if err != nil {
		log.Fatalf("failed to build scorer: %v", err)
	}
	defer closeScorer()

	sess := gameplay.NewSession(cfg.Weights(), scorer, gameplay.WithRecorder(st))
	sess.LoadScenario(gameplay.DemoGreetingScenario())

	fmt.Println("ChatPLS ready.")
	fmt.Printf("  DB: %s | Scorer: %s | Weights: %s | Session: %s\n", cfg.DBPath, cfg.Scorer, cfg.Preset, sess.ID())
	fmt.Println("Commands: :load <file>  :demo  :reset  :status  quit")
	printPrompt(sess)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			break
		}
		if strings.HasPrefix(line, ":") {
			command(sess, line)
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		result, err := sess.SubmitAnswer(ctx, line, gameplay.DefaultModelID)
		cancel()
		if err != nil {
			log.Printf("submit error: %v", err)
			continue
		}
		printResult(result)
	}
}

// #endregion main

// #region commands
func command(sess *gameplay.Session, line string) {
	fields := strings.Fields(line)
	switch fields[0] {
	case ":load":
		if len(fields) != 2 {
			fmt.Println("usage: :load <scenario.json|scenario.yaml>")
			return
		}
		sc, err := gameplay.LoadScenarioFile(fields[1])
		if err != nil {
			log.Printf("load error: %v", err)
			return
		}
		sess.LoadScenario(sc)
		printPrompt(sess)
	case ":demo":
		sess.LoadScenario(gameplay.DemoGreetingScenario())
		printPrompt(sess)
	case ":reset":
		sess.Reset()
		fmt.Println("session reset; use :demo or :load to pick a scenario")
	case ":status":
		v := sess.Views()
		fmt.Printf("phase=%s scenario=%s rounds=%d", v.Left.Phase, v.Left.ScenarioID, v.Left.CompletedCount)
		if v.Right.LatestScore != nil {
			fmt.Printf(" latest=%.2f", *v.Right.LatestScore)
		}
		fmt.Println()
	default:
		fmt.Printf("unknown command %s\n", fields[0])
	}
}

// #endregion commands

// #region output
func printPrompt(sess *gameplay.Session) {
	p := sess.Views().Main
	if p.ScenarioID == "" {
		return
	}
	fmt.Printf("\n[%s]\nsystem: %s\nuser:   %s\n\n", p.ScenarioID, p.SystemPrompt, p.UserPrompt)
}

func printResult(r gameplay.RunResult) {
	fmt.Printf("\nscore=%.2f end=%s/%s\n", r.Score, r.EndState, r.EndReason)
	for _, c := range scoring.Components() {
		fmt.Printf("  %-10s %.3f\n", c, r.ComponentScores[c])
	}
	fmt.Println()
}

// #endregion output

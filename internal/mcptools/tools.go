// Package mcptools exposes scoring and level tooling as MCP tools.
package mcptools

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/danielpatrickdp/chatpls/internal/gameplay"
	"github.com/danielpatrickdp/chatpls/internal/levels"
	"github.com/danielpatrickdp/chatpls/internal/scoring"
	"github.com/danielpatrickdp/chatpls/internal/store"
)

// Deps are the collaborators the tools need. Store may be nil.
type Deps struct {
	Scorer  gameplay.SemanticScorer
	Weights scoring.ScoreVector
	Store   *store.Store
}

// Register adds every tool to server.
func Register(server *mcp.Server, d Deps) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "score_answer",
		Description: "Score one answer against a single-turn scenario. Uses the built-in demo scenario unless an inline scenario is given.",
	}, ScoreAnswerHandler(d))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_levels",
		Description: "List the built-in multi-turn level scenarios.",
	}, ListLevelsHandler())

	mcp.AddTool(server, &mcp.Tool{
		Name:        "validate_level",
		Description: "Validate a level scenario given as JSON or YAML and list every structural problem.",
	}, ValidateLevelHandler())

	mcp.AddTool(server, &mcp.Tool{
		Name:        "walk_level",
		Description: "Walk a built-in level with a sequence of turn outcomes and report the turns visited.",
	}, WalkLevelHandler())

	if d.Store != nil {
		mcp.AddTool(server, &mcp.Tool{
			Name:        "recent_rounds",
			Description: "List recently recorded rounds from the round ledger, newest first.",
		}, RecentRoundsHandler(d.Store))
	}
	log.Printf("[MCP] tools registered (ledger=%v)", d.Store != nil)
}

// --- Input types ---

type ScoreAnswerInput struct {
	Answer   string                   `json:"answer"             jsonschema:"The answer to score"`
	Scenario *gameplay.ScenarioConfig `json:"scenario,omitempty" jsonschema:"Optional inline single-turn scenario"`
	Preset   string                   `json:"preset,omitempty"   jsonschema:"Optional weight preset: balanced, parody, strict_facts"`
}

type ListLevelsInput struct{}

type ValidateLevelInput struct {
	Document string `json:"document"         jsonschema:"Level scenario document"`
	Format   string `json:"format,omitempty" jsonschema:"json (default) or yaml"`
}

type WalkLevelInput struct {
	LevelID  string               `json:"level_id" jsonschema:"Built-in level id"`
	Outcomes []levels.TurnOutcome `json:"outcomes" jsonschema:"One outcome per turn, in order"`
}

type RecentRoundsInput struct {
	ScenarioID string `json:"scenario_id,omitempty" jsonschema:"Filter to one scenario"`
	Limit      int    `json:"limit,omitempty"       jsonschema:"Max rounds to return (default 20)"`
}

// --- Handlers ---

func ScoreAnswerHandler(d Deps) func(context.Context, *mcp.CallToolRequest, ScoreAnswerInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input ScoreAnswerInput) (*mcp.CallToolResult, any, error) {
		sc := gameplay.DemoGreetingScenario()
		if input.Scenario != nil {
			sc = *input.Scenario
		}
		weights := d.Weights
		if input.Preset != "" {
			w, ok := scoring.PresetWeights(scoring.Preset(input.Preset))
			if !ok {
				return textResult(fmt.Sprintf("unknown preset %q", input.Preset)), nil, nil
			}
			weights = w
		}

		res, err := gameplay.RunSingleTurn(ctx, gameplay.RunInput{
			Scenario:       sc,
			PlayerAnswer:   input.Answer,
			ScoringWeights: weights,
		}, d.Scorer)
		if err != nil {
			return textResult(fmt.Sprintf("error: %v", err)), nil, nil
		}
		return textResult(jsonString(res)), nil, nil
	}
}

func ListLevelsHandler() func(context.Context, *mcp.CallToolRequest, ListLevelsInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input ListLevelsInput) (*mcp.CallToolResult, any, error) {
		out := []map[string]any{}
		for _, s := range levels.Registry() {
			out = append(out, map[string]any{
				"id":          s.ID,
				"title":       s.Title,
				"description": s.Description,
				"tags":        s.Tags,
				"turns":       len(s.Turns),
				"entry":       s.EntryTurnID,
			})
		}
		return textResult(jsonString(out)), nil, nil
	}
}

func ValidateLevelHandler() func(context.Context, *mcp.CallToolRequest, ValidateLevelInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input ValidateLevelInput) (*mcp.CallToolResult, any, error) {
		format := levels.FormatJSON
		if input.Format == "yaml" || input.Format == "yml" {
			format = levels.FormatYAML
		}
		sc, err := levels.Decode([]byte(input.Document), format)
		if err != nil {
			return textResult(fmt.Sprintf("error: %v", err)), nil, nil
		}
		errs := levels.Validate(sc)
		if errs == nil {
			errs = []string{}
		}
		return textResult(jsonString(map[string]any{
			"scenario_id": sc.ID,
			"valid":       len(errs) == 0,
			"errors":      errs,
		})), nil, nil
	}
}

func WalkLevelHandler() func(context.Context, *mcp.CallToolRequest, WalkLevelInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input WalkLevelInput) (*mcp.CallToolResult, any, error) {
		sc, ok := levels.ByID(input.LevelID)
		if !ok {
			return textResult(fmt.Sprintf("unknown level %q", input.LevelID)), nil, nil
		}
		w, err := levels.NewWalker(sc)
		if err != nil {
			return textResult(fmt.Sprintf("error: %v", err)), nil, nil
		}

		var walkErr string
		for _, o := range input.Outcomes {
			if _, err := w.Advance(o); err != nil {
				walkErr = err.Error()
				break
			}
		}
		return textResult(jsonString(map[string]any{
			"steps":   w.Steps(),
			"current": w.Current().ID,
			"done":    w.Done(),
			"error":   walkErr,
		})), nil, nil
	}
}

func RecentRoundsHandler(st *store.Store) func(context.Context, *mcp.CallToolRequest, RecentRoundsInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input RecentRoundsInput) (*mcp.CallToolResult, any, error) {
		recs, err := st.ListRounds(ctx, input.ScenarioID, input.Limit)
		if err != nil {
			return textResult(fmt.Sprintf("error: %v", err)), nil, nil
		}
		if recs == nil {
			recs = []store.RoundRecord{}
		}
		return textResult(jsonString(recs)), nil, nil
	}
}

// --- Helpers ---

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}

func jsonString(v any) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf(`{"error": "marshal: %v"}`, err)
	}
	return string(data)
}

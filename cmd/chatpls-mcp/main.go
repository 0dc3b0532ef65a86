// chatpls-mcp exposes answer scoring and level tooling as an MCP stdio server.
//
// Environment variables:
//
//	CHATPLS_SCORER   lexical (default), openai, ollama, gemini or codec
//	CHATPLS_WEIGHTS  weight preset (default: balanced)
//	CHATPLS_DB       round ledger; recent_rounds is only offered when set
package main

import (
	"context"
	"log"
	"os"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/danielpatrickdp/chatpls/internal/config"
	"github.com/danielpatrickdp/chatpls/internal/mcptools"
	"github.com/danielpatrickdp/chatpls/internal/store"
)

func main() {
	// stdout carries the protocol
	log.SetOutput(os.Stderr)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx := context.Background()
	scorer, closeScorer, err := config.BuildScorer(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to build scorer: %v", err)
	}
	defer closeScorer()

	deps := mcptools.Deps{Scorer: scorer, Weights: cfg.Weights()}
	if os.Getenv("CHATPLS_DB") != "" {
		st, err := store.NewStore(cfg.DBPath)
		if err != nil {
			log.Fatalf("failed to open store: %v", err)
		}
		defer st.Close()
		deps.Store = st
	}

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "chatpls-mcp",
		Version: "0.1.0",
	}, nil)
	mcptools.Register(server, deps)

	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil {
		log.Fatalf("mcp server: %v", err)
	}
}

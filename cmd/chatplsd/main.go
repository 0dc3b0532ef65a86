package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danielpatrickdp/chatpls/internal/config"
	"github.com/danielpatrickdp/chatpls/internal/gameplay"
	"github.com/danielpatrickdp/chatpls/internal/hub"
	"github.com/danielpatrickdp/chatpls/internal/server"
	"github.com/danielpatrickdp/chatpls/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := store.NewStore(cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}
	defer st.Close()

	scorer, closeScorer, err := config.BuildScorer(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to build scorer: %v", err)
	}
	defer closeScorer()

	h := hub.New()
	go h.Run(ctx)

	sess := gameplay.NewSession(cfg.Weights(), scorer, gameplay.WithRecorder(st))
	srv := server.New(sess, h, st)
	defer srv.Close()
	sess.LoadScenario(gameplay.DemoGreetingScenario())

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.Router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("[HTTP] shutdown: %v", err)
		}
	}()

	log.Printf("[HTTP] chatpls listening on %s (session %s, scorer %s)", cfg.Addr, sess.ID(), cfg.Scorer)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("server error: %v", err)
	}
}

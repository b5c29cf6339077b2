package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/inkwell/internal/api"
	"github.com/dgallion1/inkwell/internal/config"
	"github.com/dgallion1/inkwell/internal/pipeline"
	"github.com/dgallion1/inkwell/internal/render"
	"github.com/dgallion1/inkwell/internal/store"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	permalinks, err := cfg.Permalinks()
	if err != nil {
		log.Error("load permalink formats", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize storage.
	st, err := store.OpenBadger(cfg.DataDir, log)
	if err != nil {
		log.Error("open store", "error", err)
		os.Exit(1)
	}
	go st.RunGC(ctx, cfg.GCInterval)

	renderer := render.New()

	// Initialize pipeline.
	orch := pipeline.NewOrchestrator(cfg, st, renderer, log)
	orch.Start(ctx)

	// Initialize HTTP server.
	srv, err := api.NewServer(st, orch, renderer, permalinks, log, cfg)
	if err != nil {
		log.Error("create server", "error", err)
		os.Exit(1)
	}

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	done := make(chan struct{})
	go func() {
		defer close(done)
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		orch.Stop()
		cancel()
		if err := st.Close(); err != nil {
			log.Error("close store", "error", err)
		}
	}()

	log.Info("starting inkwell", "port", cfg.Port, "permalink_format", cfg.PermalinkFormat)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
	<-done
}

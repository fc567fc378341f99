package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/signalsfoundry/fov-simulator/core"
	"github.com/signalsfoundry/fov-simulator/internal/api"
	"github.com/signalsfoundry/fov-simulator/internal/logging"
	"github.com/signalsfoundry/fov-simulator/internal/observability"
	"github.com/signalsfoundry/fov-simulator/kb"
)

func main() {
	addr := flag.String("addr", ":8080", "listen address for the HTTP API")
	flag.Parse()

	log := logging.NewFromEnv()
	ctx := context.Background()

	shutdownTracing, err := observability.InitTracing(ctx, observability.TracingConfigFromEnv(), log)
	if err != nil {
		log.Error(ctx, "failed to initialise tracing", logging.String("error", err.Error()))
		os.Exit(1)
	}
	defer observability.ShutdownWithTimeout(ctx, shutdownTracing, log)

	collector, err := observability.NewSimCollector(nil)
	if err != nil {
		log.Error(ctx, "failed to initialise metrics collector", logging.String("error", err.Error()))
		os.Exit(1)
	}

	store := kb.NewKnowledgeBase()
	engine := core.NewSimulationEngine(store,
		core.WithLogger(log),
		core.WithRunRecorder(collector),
	)

	mux := api.NewServer(engine, store, log).Routes()
	mux.Handle("/metrics", collector.Handler())

	srv := &http.Server{
		Addr:              *addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "HTTP API listening", logging.String("addr", *addr))
		errCh <- srv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info(ctx, "shutting down", logging.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			log.Error(ctx, "server exited", logging.String("error", err.Error()))
			os.Exit(1)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "graceful shutdown failed", logging.String("error", err.Error()))
		os.Exit(1)
	}
	log.Info(ctx, "server stopped")
}

package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ternarybob/arbor"

	"go-jobsearch-automation/internal/app"
	"go-jobsearch-automation/internal/config"
	"go-jobsearch-automation/internal/logging"
	"go-jobsearch-automation/internal/runner"
	"go-jobsearch-automation/internal/server"
	"go-jobsearch-automation/internal/status"
)

func main() {
	configPath := flag.String("config", config.DefaultPath, "path to the YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		arbor.NewLogger().Fatal().Err(err).Msg("Failed to load config")
	}
	logger := logging.New(cfg.Logging)
	if err := cfg.CheckCredentials(); err != nil {
		logger.Fatal().Err(err).Msg("LinkedIn needs credentials or a cookie export")
	}

	addr := cfg.Server.Addr
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tracker := status.NewTracker()
	deps, err := app.Wire(ctx, cfg, logger, runner.WithObserver(tracker))
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialise")
	}
	defer deps.Close()

	srv := server.New(ctx, tracker, deps.Runner, logger)
	httpServer := &http.Server{Addr: addr, Handler: srv.Router()}

	go func() {
		logger.Info().Str("addr", addr).Msg("Server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("Failed to start server")
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("Server shutdown")
	}
	srv.Wait()
}

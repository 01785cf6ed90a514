package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/ternarybob/arbor"

	"go-jobsearch-automation/internal/app"
	"go-jobsearch-automation/internal/config"
	"go-jobsearch-automation/internal/logging"
	"go-jobsearch-automation/internal/runner"
)

func main() {
	configPath := flag.String("config", config.DefaultPath, "path to the YAML config file")
	flag.Parse()

	//load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		arbor.NewLogger().Fatal().Err(err).Msg("Failed to load config")
	}
	logger := logging.New(cfg.Logging)
	logger.Info().Strs("sites", cfg.Sites).Strs("keywords", cfg.Keywords).Strs("locations", cfg.Locations).Msg("Config loaded")

	if err := cfg.CheckCredentials(); err != nil {
		logger.Fatal().Err(err).Msg("LinkedIn needs credentials or a cookie export")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := app.Wire(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialise")
	}
	defer deps.Close()

	logger.Info().Str("driver", cfg.Browser.Driver).Msg("Starting job search")
	summaries, err := deps.Runner.Run(ctx)
	records := 0
	for _, s := range summaries {
		records += s.Records
	}
	logger.Info().Int("runs", len(summaries)).Int("records", records).Msg("Execution finished")

	if err != nil {
		if runner.IsFatal(err) {
			deps.Close()
			logger.Fatal().Err(err).Msg("Job search aborted")
		}
		logger.Warn().Err(err).Msg("Job search interrupted")
		deps.Close()
		os.Exit(1)
	}
}
